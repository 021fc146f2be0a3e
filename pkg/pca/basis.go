// Package pca fits principal component bases on sets of feature vectors
// and projects new vectors through them. The decomposition works on the
// d x d scatter matrix of the input rather than on the sample matrix
// itself, so the basis always spans the full vector dimensionality even
// when fewer than d samples are available.
package pca

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Basis is an ordered set of orthonormal component vectors sorted by
// descending explained variance. It is immutable once fitted; Truncate
// returns a view sharing the underlying component storage.
type Basis struct {
	components [][]float64
	variances  []float64
	dim        int
}

// Fit computes the principal components of a set of vectors. The input
// is expected to be mean-centered already; Fit does not re-center it.
// All vectors must share the same dimensionality.
func Fit(vectors [][]float64) (*Basis, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("cannot fit basis on empty vector set")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("cannot fit basis on zero-dimensional vectors")
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	// Scatter matrix S[a][b] = sum_n x[n][a]*x[n][b] / (n-1).
	// The normalization only scales the eigenvalues; the component
	// directions are unaffected by it.
	scatter := mat.NewSymDense(dim, nil)
	for a := 0; a < dim; a++ {
		for b := a; b < dim; b++ {
			sum := 0.0
			for _, v := range vectors {
				sum += v[a] * v[b]
			}
			scatter.SetSym(a, b, sum)
		}
	}
	norm := float64(len(vectors) - 1)
	if norm < 1 {
		norm = 1
	}
	scatter.ScaleSym(1/norm, scatter)

	return FromCovariance(scatter)
}

// FromCovariance computes a basis directly from a covariance (or
// scatter) matrix. This entry point is used by the streaming model,
// which maintains its covariance incrementally instead of holding
// samples.
func FromCovariance(cov *mat.SymDense) (*Basis, error) {
	dim := cov.SymmetricDim()

	var eig mat.EigenSym
	if ok := eig.Factorize(cov, true); !ok {
		return nil, fmt.Errorf("eigendecomposition failed")
	}

	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// EigenSym returns eigenvalues in ascending order; the basis is
	// ordered by descending variance.
	basis := &Basis{
		components: make([][]float64, dim),
		variances:  make([]float64, dim),
		dim:        dim,
	}
	for i := 0; i < dim; i++ {
		src := dim - 1 - i
		comp := make([]float64, dim)
		mat.Col(comp, src, &vecs)
		basis.components[i] = comp
		basis.variances[i] = vals[src]
	}

	return basis, nil
}

// Dim returns the dimensionality of the vectors the basis was fitted on.
func (b *Basis) Dim() int {
	return b.dim
}

// Len returns the number of component vectors in the basis.
func (b *Basis) Len() int {
	return len(b.components)
}

// Component returns the i-th component vector (descending variance
// order). The returned slice is the basis's own storage and must not be
// modified.
func (b *Basis) Component(i int) []float64 {
	return b.components[i]
}

// Variance returns the eigenvalue associated with the i-th component.
func (b *Basis) Variance(i int) float64 {
	return b.variances[i]
}

// Truncate returns a basis restricted to the n leading components. If n
// is not smaller than the current length the receiver is returned
// unchanged.
func (b *Basis) Truncate(n int) *Basis {
	if n >= len(b.components) {
		return b
	}
	return &Basis{
		components: b.components[:n],
		variances:  b.variances[:n],
		dim:        b.dim,
	}
}

// ProjectVec projects a single vector onto the basis, producing one
// coordinate per component: out[k] = v . component[k].
func (b *Basis) ProjectVec(v []float64) []float64 {
	out := make([]float64, len(b.components))
	for k, comp := range b.components {
		sum := 0.0
		for i, x := range v {
			sum += x * comp[i]
		}
		out[k] = sum
	}
	return out
}

// Project projects every vector in the set onto the basis.
func (b *Basis) Project(vectors [][]float64) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		out[i] = b.ProjectVec(v)
	}
	return out
}

// Expand maps basis coordinates back into the original vector space:
// out = sum_k coords[k] * component[k]. Together with ProjectVec this
// gives the lossy reconstruction used by the streaming model.
func (b *Basis) Expand(coords []float64) []float64 {
	out := make([]float64, b.dim)
	for k, c := range coords {
		comp := b.components[k]
		for i := range out {
			out[i] += c * comp[i]
		}
	}
	return out
}
