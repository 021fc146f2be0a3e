package detect

import (
	"math"
	"testing"

	"changedetect/pkg/cluster"
	"changedetect/pkg/pca"
	"changedetect/pkg/raster"
)

// rampGrid builds a deterministic non-constant difference image.
func rampGrid(size int) *raster.Grid {
	grid := raster.NewGrid(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			grid.Set(x, y, int32((x*13+y*7)%41))
		}
	}
	return grid
}

// TestBuildVectorSetProperties verifies the vector count, vector
// length, and that centering leaves a zero mean.
func TestBuildVectorSetProperties(t *testing.T) {
	const size = 30
	diff := rampGrid(size)

	vectors, meanVec := buildVectorSet(diff, 5)

	wantCount := (size / 5) * (size / 5)
	if len(vectors) != wantCount {
		t.Fatalf("Expected %d vectors, got %d", wantCount, len(vectors))
	}
	if len(meanVec) != 25 {
		t.Fatalf("Expected mean vector of length 25, got %d", len(meanVec))
	}
	for i, v := range vectors {
		if len(v) != 25 {
			t.Fatalf("vector %d has length %d, want 25", i, len(v))
		}
	}

	// After centering, the per-coordinate mean must vanish.
	for k := 0; k < 25; k++ {
		sum := 0.0
		for _, v := range vectors {
			sum += v[k]
		}
		if math.Abs(sum/float64(len(vectors))) > 1e-9 {
			t.Errorf("coordinate %d mean is %g after centering", k, sum/float64(len(vectors)))
		}
	}
}

// TestBuildVectorSetContent verifies that the first vector is the
// flattened top-left block before centering.
func TestBuildVectorSetContent(t *testing.T) {
	diff := rampGrid(10)

	vectors, meanVec := buildVectorSet(diff, 5)

	for dy := 0; dy < 5; dy++ {
		for dx := 0; dx < 5; dx++ {
			got := vectors[0][dy*5+dx] + meanVec[dy*5+dx]
			want := float64(diff.At(dx, dy))
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("block element (%d,%d): got %f, want %f", dx, dy, got, want)
			}
		}
	}
}

// TestBuildFeatureVectorsCount verifies one feature per interior pixel
// regardless of worker count, and that parallel extraction preserves
// the row-major ordering.
func TestBuildFeatureVectorsCount(t *testing.T) {
	const size = 25
	diff := rampGrid(size)

	vectors, meanVec := buildVectorSet(diff, 5)
	basis, err := pca.Fit(vectors)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	serial := buildFeatureVectors(diff, basis, meanVec, 5, 1)
	parallel := buildFeatureVectors(diff, basis, meanVec, 5, 4)

	wantCount := (size - 4) * (size - 4)
	if len(serial) != wantCount {
		t.Fatalf("Expected %d feature vectors, got %d", wantCount, len(serial))
	}
	if len(parallel) != wantCount {
		t.Fatalf("Expected %d feature vectors from parallel run, got %d", wantCount, len(parallel))
	}

	for i := range serial {
		for k := range serial[i] {
			if serial[i][k] != parallel[i][k] {
				t.Fatalf("feature %d coordinate %d differs between worker counts", i, k)
			}
		}
	}
}

// TestChangeMapBinary verifies the change map holds only 0 and 255 and
// marks exactly the minority cells.
func TestChangeMapBinary(t *testing.T) {
	labels := []int{0, 1, 2, 0, 1, 0, 0, 1, 0}
	cm := buildChangeMap(labels, 2, 3, 3)

	if cm.Width != 3 || cm.Height != 3 {
		t.Fatalf("Expected 3x3 change map, got %dx%d", cm.Width, cm.Height)
	}
	for i, label := range labels {
		want := uint8(0)
		if label == 2 {
			want = 255
		}
		if cm.Pix[i] != want {
			t.Errorf("cell %d: got %d, want %d", i, cm.Pix[i], want)
		}
	}
}

// TestClusterGridMatchesFeatureCount ties the feature vector count to
// the label grid cell count for a reduced size with no exact block fit.
func TestClusterGridMatchesFeatureCount(t *testing.T) {
	const size = 20
	diff := rampGrid(size)

	vectors, meanVec := buildVectorSet(diff, 5)
	basis, err := pca.Fit(vectors)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	features := buildFeatureVectors(diff, basis, meanVec, 5, 2)

	res, err := cluster.KMeans(features, 3, 100, 1)
	if err != nil {
		t.Fatalf("KMeans failed: %v", err)
	}

	cm := buildChangeMap(res.Labels, res.Least, size-4, size-4)
	if len(cm.Pix) != len(features) {
		t.Errorf("Label grid has %d cells, feature set has %d entries", len(cm.Pix), len(features))
	}
}

// TestReconcileFootprintOddMargin verifies the floor-based placement:
// with an odd size difference the extra margin sits on the bottom and
// right.
func TestReconcileFootprintOddMargin(t *testing.T) {
	clean := raster.NewBitmap(4, 4)
	for i := range clean.Pix {
		clean.Pix[i] = 255
	}

	canvas := reconcileFootprint(clean, 7, 7)

	if canvas.Width != 7 || canvas.Height != 7 {
		t.Fatalf("Expected 7x7 canvas, got %dx%d", canvas.Width, canvas.Height)
	}
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			want := uint8(0)
			if x >= 1 && x <= 4 && y >= 1 && y <= 4 {
				want = 255
			}
			if got := canvas.At(x, y); got != want {
				t.Errorf("canvas(%d,%d)=%d, want %d", x, y, got, want)
			}
		}
	}
}
