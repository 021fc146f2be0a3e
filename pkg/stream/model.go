// Package stream implements the incremental-compression variant of the
// dimensionality reduction used by the detection pipeline: a persistent
// model that absorbs batches of sample vectors over repeated calls from
// an external tile-serving process and can return a lossy
// reconstruction of a batch.
//
// Unlike pkg/detect, which is stateless per call, a Model deliberately
// accumulates state across Update calls. Callers hold the handle
// explicitly and pass it where it is needed; the package exposes no
// singleton, so two models never share state.
package stream

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"changedetect/pkg/pca"
)

// Model is a persistent dimensionality-reduction model. It maintains
// the running mean and raw second moment of all samples seen so far and
// refits a truncated eigenbasis after every update.
type Model struct {
	// components is the number of leading basis vectors retained for
	// projection and reconstruction
	components int

	// dim is the sample dimensionality, fixed by the first batch
	dim int

	// count is the total number of samples absorbed
	count int

	// sum and moment accumulate sum(x) and sum(x x^T) over all samples
	sum    []float64
	moment *mat.SymDense

	basis *pca.Basis
}

// NewModel creates an empty model that will retain the given number of
// components. The sample dimensionality is fixed by the first Update.
func NewModel(components int) (*Model, error) {
	if components <= 0 {
		return nil, fmt.Errorf("component count must be positive, got %d", components)
	}
	return &Model{components: components}, nil
}

// Count returns the number of samples the model has absorbed.
func (m *Model) Count() int {
	return m.count
}

// Dim returns the sample dimensionality, or 0 before the first update.
func (m *Model) Dim() int {
	return m.dim
}

// Update absorbs a batch of samples into the model and refits the
// basis. All samples across all updates must share one dimensionality.
func (m *Model) Update(batch [][]float64) error {
	if len(batch) == 0 {
		return fmt.Errorf("cannot update model with an empty batch")
	}

	if m.dim == 0 {
		m.dim = len(batch[0])
		if m.dim == 0 {
			return fmt.Errorf("cannot update model with zero-dimensional samples")
		}
		m.sum = make([]float64, m.dim)
		m.moment = mat.NewSymDense(m.dim, nil)
	}

	for i, v := range batch {
		if len(v) != m.dim {
			return fmt.Errorf("sample %d has dimension %d, want %d", i, len(v), m.dim)
		}
		for a := 0; a < m.dim; a++ {
			m.sum[a] += v[a]
			for b := a; b < m.dim; b++ {
				m.moment.SetSym(a, b, m.moment.At(a, b)+v[a]*v[b])
			}
		}
	}
	m.count += len(batch)

	return m.refit()
}

// refit rebuilds the truncated basis from the accumulated moments:
// cov = E[x x^T] - mean mean^T.
func (m *Model) refit() error {
	n := float64(m.count)
	cov := mat.NewSymDense(m.dim, nil)
	for a := 0; a < m.dim; a++ {
		for b := a; b < m.dim; b++ {
			cov.SetSym(a, b, m.moment.At(a, b)/n-(m.sum[a]/n)*(m.sum[b]/n))
		}
	}

	basis, err := pca.FromCovariance(cov)
	if err != nil {
		return fmt.Errorf("failed to refit basis: %w", err)
	}
	m.basis = basis.Truncate(m.components)
	return nil
}

// Apply projects a batch through the current truncated basis and maps
// it back, returning the lossy reconstruction of each sample. The model
// must have absorbed at least one batch first.
func (m *Model) Apply(batch [][]float64) ([][]float64, error) {
	if m.basis == nil {
		return nil, fmt.Errorf("model has not been fitted; call Update first")
	}

	mean := make([]float64, m.dim)
	for a := range mean {
		mean[a] = m.sum[a] / float64(m.count)
	}

	centered := make([][]float64, len(batch))
	for i, v := range batch {
		if len(v) != m.dim {
			return nil, fmt.Errorf("sample %d has dimension %d, want %d", i, len(v), m.dim)
		}
		c := make([]float64, m.dim)
		for a := range c {
			c[a] = v[a] - mean[a]
		}
		centered[i] = c
	}

	out := make([][]float64, len(batch))
	for i, coords := range m.basis.Project(centered) {
		recon := m.basis.Expand(coords)
		for a := range recon {
			recon[a] += mean[a]
		}
		out[i] = recon
	}

	return out, nil
}
