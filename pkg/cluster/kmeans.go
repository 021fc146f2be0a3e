// Package cluster implements the unsupervised grouping stage of the
// change detection pipeline: a k-means partition of projected feature
// vectors followed by selection of the minority cluster, which the
// pipeline treats as the "changed" class.
package cluster

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Result holds a converged k-means partition.
type Result struct {
	// Labels assigns one cluster index in [0, K) to each input vector,
	// in input order
	Labels []int

	// Counts holds the number of vectors assigned to each label
	Counts []int

	// Least is the label with the fewest assigned vectors. Ties are
	// broken toward the first label encountered in the counting pass,
	// i.e. the lowest label index.
	Least int
}

// KMeans partitions vectors into k groups using Lloyd's algorithm with
// k-means++ initialization. The seed makes runs reproducible: the same
// vectors and seed always produce the same partition. It returns an
// error if the vector set is empty, k is not positive, or the
// assignments fail to stabilize within maxIter iterations.
func KMeans(vectors [][]float64, k, maxIter int, seed int64) (*Result, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("cannot cluster an empty vector set")
	}
	if k <= 0 {
		return nil, fmt.Errorf("cluster count must be positive, got %d", k)
	}
	if maxIter <= 0 {
		maxIter = 1
	}

	rng := rand.New(rand.NewSource(seed))
	centers := seedCenters(vectors, k, rng)

	labels := make([]int, len(vectors))
	for i := range labels {
		labels[i] = -1
	}

	converged := false
	for iter := 0; iter < maxIter && !converged; iter++ {
		// Assignment step: nearest center, ties toward the lower index.
		changed := false
		for i, v := range vectors {
			best := 0
			bestDist := floats.Distance(v, centers[0], 2)
			for c := 1; c < k; c++ {
				if d := floats.Distance(v, centers[c], 2); d < bestDist {
					best = c
					bestDist = d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		// Update step: recompute each center as the mean of its members.
		counts := make([]int, k)
		for c := range centers {
			for j := range centers[c] {
				centers[c][j] = 0
			}
		}
		for i, v := range vectors {
			c := labels[i]
			counts[c]++
			floats.Add(centers[c], v)
		}
		var empties []int
		for c := range centers {
			if counts[c] == 0 {
				empties = append(empties, c)
				continue
			}
			floats.Scale(1/float64(counts[c]), centers[c])
		}
		for _, c := range empties {
			// Reseed an emptied cluster to the vector farthest from its
			// assigned center so k groups stay populated where the data
			// permits. Convergence is judged on label stability alone:
			// when every vector already sits on top of its center a
			// reseeded empty cluster can never win an assignment, and
			// treating the reseed itself as progress would spin forever
			// on constant input.
			centers[c] = reseedEmpty(vectors, centers, labels)
		}

		converged = !changed
	}

	if !converged {
		return nil, fmt.Errorf("k-means did not converge within %d iterations", maxIter)
	}

	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	least := 0
	for c := 1; c < k; c++ {
		if counts[c] < counts[least] {
			least = c
		}
	}

	return &Result{Labels: labels, Counts: counts, Least: least}, nil
}

// seedCenters picks k initial centers with the k-means++ rule: the
// first uniformly at random, each subsequent one weighted by squared
// distance to the nearest already-chosen center.
func seedCenters(vectors [][]float64, k int, rng *rand.Rand) [][]float64 {
	centers := make([][]float64, 0, k)

	first := append([]float64(nil), vectors[rng.Intn(len(vectors))]...)
	centers = append(centers, first)

	dists := make([]float64, len(vectors))
	for len(centers) < k {
		total := 0.0
		for i, v := range vectors {
			nearest := floats.Distance(v, centers[0], 2)
			for _, c := range centers[1:] {
				if d := floats.Distance(v, c, 2); d < nearest {
					nearest = d
				}
			}
			dists[i] = nearest * nearest
			total += dists[i]
		}

		var pick int
		if total == 0 {
			// All vectors coincide with existing centers; weighted
			// selection is undefined, fall back to a uniform pick.
			pick = rng.Intn(len(vectors))
		} else {
			target := rng.Float64() * total
			acc := 0.0
			for i, w := range dists {
				acc += w
				if acc >= target {
					pick = i
					break
				}
			}
		}
		centers = append(centers, append([]float64(nil), vectors[pick]...))
	}

	return centers
}

// reseedEmpty returns a copy of the vector farthest from its assigned
// center, used as the replacement position for a cluster that lost all
// of its members.
func reseedEmpty(vectors [][]float64, centers [][]float64, labels []int) []float64 {
	farthest := 0
	farDist := -1.0
	for i, v := range vectors {
		d := floats.Distance(v, centers[labels[i]], 2)
		if d > farDist {
			farthest = i
			farDist = d
		}
	}
	return append([]float64(nil), vectors[farthest]...)
}
