// Package detect implements unsupervised change detection between two
// co-registered rasters of the same scene captured at different times.
//
// The pipeline follows the classical PCA/k-means approach: the absolute
// difference of the two images is cut into disjoint blocks whose
// flattened vectors define a principal component basis; every interior
// pixel's neighborhood is projected through that basis; the projected
// feature vectors are clustered with k-means; and the minority cluster
// is taken to be the changed class. A morphological erosion suppresses
// isolated false positives before the reduced-resolution change map is
// placed back into the original image footprint.
//
// Each detection run is a pure function of its inputs. No model state
// survives between calls; the streaming variant that keeps a persistent
// compression model lives in pkg/stream and is not used here.
package detect

import (
	"errors"
	"fmt"
	"image"
	"runtime"

	"changedetect/pkg/cluster"
	"changedetect/pkg/morph"
	"changedetect/pkg/pca"
	"changedetect/pkg/raster"
)

// Typed failures surfaced to callers. All of them are detected
// deterministically, so retrying a failed call with the same inputs is
// pointless.
var (
	// ErrShapeMismatch indicates empty inputs or inputs whose
	// dimensions differ
	ErrShapeMismatch = errors.New("input images are empty or differently sized")

	// ErrDegenerateGeometry indicates that the block-aligned reduced
	// image is too small to scan a single neighborhood
	ErrDegenerateGeometry = errors.New("reduced image too small for neighborhood scan")

	// ErrClusteringFailure indicates an empty feature vector set or a
	// clustering run that did not converge
	ErrClusteringFailure = errors.New("feature clustering failed")
)

// Params holds the tunable constants of the pipeline. The defaults
// reproduce the reference behavior; they are parameters rather than
// literals so the algorithm can be exercised at other scales without
// structural changes.
type Params struct {
	// BlockSize is the side length of both the disjoint blocks used to
	// fit the eigenbasis and the overlapping neighborhoods used for
	// per-pixel features. The two are deliberately coupled: block and
	// neighborhood vectors must live in the same space for the shared
	// mean adjustment to make sense. Must be odd.
	BlockSize int

	// Clusters is the number of k-means groups. The smallest group
	// becomes the changed class.
	Clusters int

	// MaxIterations caps the k-means refinement loop
	MaxIterations int

	// Seed fixes the k-means initialization so detection runs are
	// reproducible
	Seed int64

	// Workers is the number of goroutines used for feature extraction.
	// Values below 1 fall back to a single worker.
	Workers int
}

// DefaultParams returns the reference configuration: 5x5 blocks, three
// clusters, and a fixed seed.
func DefaultParams() Params {
	return Params{
		BlockSize:     5,
		Clusters:      3,
		MaxIterations: 100,
		Seed:          1,
		Workers:       runtime.NumCPU(),
	}
}

// Detector runs the change detection pipeline. It holds only
// configuration; all per-call state is allocated inside Detect, so a
// single Detector is safe for concurrent use.
type Detector struct {
	params Params
}

// NewDetector creates a detector with the provided parameters.
func NewDetector(params Params) *Detector {
	return &Detector{params: params}
}

// Detect compares two same-shape single-band rasters and returns a
// binary mask, shaped like the inputs, in which 255 marks the changed
// region and 0 everything else.
func (d *Detector) Detect(pre, post image.Image) (*image.Gray, error) {
	block := d.params.BlockSize
	if block < 3 || block%2 == 0 {
		return nil, fmt.Errorf("block size must be odd and at least 3, got %d", block)
	}

	width, height, err := validateShapes(pre, post)
	if err != nil {
		return nil, err
	}

	// Reduce both images to dimensions evenly divisible by the block
	// size, then promote to signed grids so differencing cannot
	// underflow.
	redWidth := (width / block) * block
	redHeight := (height / block) * block
	margin := block / 2
	if redWidth-2*margin <= 0 || redHeight-2*margin <= 0 {
		return nil, fmt.Errorf("%w: %dx%d reduces to %dx%d with block size %d",
			ErrDegenerateGeometry, width, height, redWidth, redHeight, block)
	}

	gridPre := raster.FromImage(raster.Resize(pre, redWidth, redHeight))
	gridPost := raster.FromImage(raster.Resize(post, redWidth, redHeight))

	diff, err := raster.AbsDiff(gridPre, gridPost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	// Fit the eigenbasis on mean-centered block vectors.
	vectors, meanVec := buildVectorSet(diff, block)
	basis, err := pca.Fit(vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to fit eigenbasis: %w", err)
	}

	// Project every interior neighborhood through the basis. The block
	// mean is reused for the adjustment on purpose; see buildFeatureVectors.
	features := buildFeatureVectors(diff, basis, meanVec, block, d.params.Workers)
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no interior pixels to scan", ErrClusteringFailure)
	}

	res, err := cluster.KMeans(features, d.params.Clusters, d.params.MaxIterations, d.params.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClusteringFailure, err)
	}

	// Reduced-resolution change map: one cell per interior pixel,
	// minority cluster marked as foreground.
	changeMap := buildChangeMap(res.Labels, res.Least, redWidth-2*margin, redHeight-2*margin)

	// Erode with the fixed diamond kernel to drop isolated cells.
	clean := morph.Erode(changeMap, morph.DiamondKernel())

	// Pad the cleaned map back into the original footprint.
	mask := reconcileFootprint(clean, width, height)

	return mask.ToImage(), nil
}

// validateShapes checks that both inputs are non-empty and identically
// sized, returning the common dimensions.
func validateShapes(pre, post image.Image) (width, height int, err error) {
	pb := pre.Bounds()
	qb := post.Bounds()
	if pb.Dx() <= 0 || pb.Dy() <= 0 || qb.Dx() <= 0 || qb.Dy() <= 0 {
		return 0, 0, fmt.Errorf("%w: empty input", ErrShapeMismatch)
	}
	if pb.Dx() != qb.Dx() || pb.Dy() != qb.Dy() {
		return 0, 0, fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrShapeMismatch, pb.Dx(), pb.Dy(), qb.Dx(), qb.Dy())
	}
	return pb.Dx(), pb.Dy(), nil
}

// reconcileFootprint centers the cleaned change map inside a zero
// canvas of the original image size. When the size difference is odd
// the extra margin falls on the bottom/right; this floor-based
// placement matches the reference output byte for byte and must not be
// "corrected".
func reconcileFootprint(clean *raster.Bitmap, width, height int) *raster.Bitmap {
	canvas := raster.NewBitmap(width, height)
	borderX := (width - clean.Width) / 2
	borderY := (height - clean.Height) / 2

	for y := 0; y < clean.Height; y++ {
		for x := 0; x < clean.Width; x++ {
			canvas.Set(borderX+x, borderY+y, clean.At(x, y))
		}
	}

	return canvas
}
