package liveness

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Metrics is the measurement bundle one flash challenge produces. Values are
// reported alongside the verdict so rejected attempts can be diagnosed and
// thresholds recalibrated from production logs.
type Metrics struct {
	BrightnessDeltaPct float64 `json:"brightnessDeltaPct"`
	ColorVariance      float64 `json:"colorVariance"`
	EdgeDensity        float64 `json:"edgeDensity"`
	Uniformity         float64 `json:"uniformity"`
	Nonuniformity      float64 `json:"nonuniformity"`
	Motion             float64 `json:"motion"`
	CompositeScore     float64 `json:"compositeScore"`
}

// centerRegion crops the middle quarter-to-three-quarter window in both
// axes. The capture protocol centres the face, so this window samples skin
// rather than background. The returned Mat references img's data; close it
// before img.
func centerRegion(img gocv.Mat) gocv.Mat {
	rows := img.Rows()
	cols := img.Cols()
	return img.Region(image.Rect(cols/4, rows/4, 3*cols/4, 3*rows/4))
}

// meanBrightness is the mean grayscale luminance of the centre region.
func meanBrightness(img gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray.Mean().Val1
}

// colorVariance averages the per-channel pixel variance of the centre
// region across the three colour channels.
func colorVariance(img gocv.Mat) float64 {
	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(img, &mean, &stdDev)

	total := 0.0
	channels := stdDev.Rows()
	for i := 0; i < channels; i++ {
		sd := stdDev.GetDoubleAt(i, 0)
		total += sd * sd
	}
	if channels == 0 {
		return 0
	}
	return total / float64(channels)
}

// edgeDensity is the fraction of Canny edge pixels in the centre region.
func edgeDensity(img gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	totalPixels := edges.Rows() * edges.Cols()
	if totalPixels == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(edges)) / float64(totalPixels)
}

// luminanceStdDev is the standard deviation of grayscale luminance in the
// centre region.
func luminanceStdDev(img gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	mean := gocv.NewMat()
	defer mean.Close()
	stdDev := gocv.NewMat()
	defer stdDev.Close()
	gocv.MeanStdDev(gray, &mean, &stdDev)
	return stdDev.GetDoubleAt(0, 0)
}

// interFrameDiff is the mean absolute grayscale difference between two
// frames of equal size.
func interFrameDiff(a, b gocv.Mat) float64 {
	grayA := gocv.NewMat()
	defer grayA.Close()
	grayB := gocv.NewMat()
	defer grayB.Close()
	gocv.CvtColor(a, &grayA, gocv.ColorBGRToGray)
	gocv.CvtColor(b, &grayB, gocv.ColorBGRToGray)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(grayA, grayB, &diff)
	return diff.Mean().Val1
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func stdDevOf(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := meanOf(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
