package analyzer

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"

	"go-prakriti-web/pkg/validation"
)

// analysisMaxDimension bounds the image the metrics are computed on. Hints are
// coarse, so a downscaled copy is enough and keeps selection fast.
const analysisMaxDimension = 640

// PhotoAnalyzer turns a selected photo into advisory hints. Hints never block an
// upload and never change the bytes sent for prediction.
type PhotoAnalyzer interface {
	Analyze(img image.Image) PhotoReport
}

// PhotoReport is the outcome of a photo check
type PhotoReport struct {
	Metrics validation.PhotoMetrics
	Hints   []validation.PhotoHint
}

type photoAnalyzer struct {
	metricsCalculator MetricsCalculator
	validator         *validation.PhotoValidator
}

func NewPhotoAnalyzer(validator *validation.PhotoValidator) PhotoAnalyzer {
	if validator == nil {
		validator = validation.NewPhotoValidator()
	}
	return &photoAnalyzer{
		metricsCalculator: NewMetricsCalculator(),
		validator:         validator,
	}
}

func (a *photoAnalyzer) Analyze(img image.Image) PhotoReport {
	if img == nil {
		return PhotoReport{}
	}

	bounds := img.Bounds()
	metrics := validation.PhotoMetrics{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	if metrics.Width == 0 || metrics.Height == 0 {
		return PhotoReport{Metrics: metrics}
	}

	work := img
	if metrics.Width > analysisMaxDimension || metrics.Height > analysisMaxDimension {
		work = resize.Thumbnail(analysisMaxDimension, analysisMaxDimension, img, resize.Bilinear)
	}

	workBounds := work.Bounds()
	gray := image.NewGray(workBounds)
	draw.Draw(gray, workBounds, work, workBounds.Min, draw.Src)

	color := a.metricsCalculator.CalculateColorMetrics(work)
	metrics.Brightness = a.metricsCalculator.CalculateBrightness(gray)
	metrics.LaplacianVar = a.metricsCalculator.CalculateLaplacianVariance(gray)
	metrics.AvgLuminance = color.avgLuminance
	metrics.AvgSaturation = color.avgSaturation
	metrics.ChannelBalance = [3]float64{color.avgR, color.avgG, color.avgB}

	return PhotoReport{
		Metrics: metrics,
		Hints:   a.validator.Validate(metrics),
	}
}
