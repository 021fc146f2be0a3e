package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// Resize resamples an image to the given dimensions using nearest
// neighbor interpolation. Nearest neighbor is used for both inputs of a
// detection run so that the two rasters stay comparable pixel-for-pixel
// and the integer band values survive the signed promotion unchanged.
func Resize(img image.Image, width, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.NearestNeighbor)
}
