package detect

import (
	"sync"

	"changedetect/pkg/pca"
	"changedetect/pkg/raster"
)

// buildVectorSet partitions the difference image into disjoint
// block x block tiles in row-major order, flattens each tile into a
// vector of length block*block, and mean-centers the set. It returns
// the centered vectors together with the shared mean vector, which the
// feature projection stage reuses.
func buildVectorSet(diff *raster.Grid, block int) ([][]float64, []float64) {
	dim := block * block
	blocksX := diff.Width / block
	blocksY := diff.Height / block

	vectors := make([][]float64, 0, blocksX*blocksY)
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			vec := make([]float64, dim)
			for dy := 0; dy < block; dy++ {
				for dx := 0; dx < block; dx++ {
					vec[dy*block+dx] = float64(diff.At(bx*block+dx, by*block+dy))
				}
			}
			vectors = append(vectors, vec)
		}
	}

	meanVec := make([]float64, dim)
	for _, v := range vectors {
		for i, x := range v {
			meanVec[i] += x
		}
	}
	if len(vectors) > 0 {
		for i := range meanVec {
			meanVec[i] /= float64(len(vectors))
		}
	}

	for _, v := range vectors {
		for i := range v {
			v[i] -= meanVec[i]
		}
	}

	return vectors, meanVec
}

// buildFeatureVectors scans every interior pixel of the difference
// image, flattens its block x block neighborhood, projects it onto the
// eigenbasis, and subtracts the block mean vector from the projection.
//
// Reusing the block mean here instead of a neighborhood-specific mean
// is intentional and matches the reference algorithm; do not replace it
// with a second, independent mean. When the basis has been truncated,
// only the leading coordinates of the mean are subtracted.
//
// Rows are processed in parallel bands, but the output keeps the strict
// row-major order (outer loop over rows) that the clustering reshape
// depends on.
func buildFeatureVectors(diff *raster.Grid, basis *pca.Basis, meanVec []float64, block, workers int) [][]float64 {
	margin := block / 2
	cols := diff.Width - 2*margin
	rows := diff.Height - 2*margin
	if cols <= 0 || rows <= 0 {
		return nil
	}

	features := make([][]float64, rows*cols)

	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	rowsPerWorker := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		startRow := w * rowsPerWorker
		endRow := min(startRow+rowsPerWorker, rows)
		if startRow >= endRow {
			break
		}

		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			vec := make([]float64, block*block)

			for r := startRow; r < endRow; r++ {
				y := r + margin
				for c := 0; c < cols; c++ {
					x := c + margin
					for dy := 0; dy < block; dy++ {
						for dx := 0; dx < block; dx++ {
							vec[dy*block+dx] = float64(diff.At(x-margin+dx, y-margin+dy))
						}
					}

					proj := basis.ProjectVec(vec)
					for i := range proj {
						if i < len(meanVec) {
							proj[i] -= meanVec[i]
						}
					}
					features[r*cols+c] = proj
				}
			}
		}(startRow, endRow)
	}
	wg.Wait()

	return features
}

// buildChangeMap reshapes the label sequence into its 2D grid and
// binarizes it: cells carrying the minority label become 255, all
// others 0.
func buildChangeMap(labels []int, least, width, height int) *raster.Bitmap {
	cm := raster.NewBitmap(width, height)
	for i, label := range labels {
		if label == least {
			cm.Pix[i] = 255
		}
	}
	return cm
}
