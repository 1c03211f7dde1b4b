package validation

import (
	"math"
)

// PhotoThresholds defines the limits behind the photo hints
type PhotoThresholds struct {
	// Sharpness
	MinLaplacianVariance float64

	// Brightness (mean gray level, 0-255)
	MinBrightness float64
	MaxBrightness float64

	// Saturation (0-1)
	MaxSaturation float64

	// Channel balance
	MaxChannelImbalance float64

	// The classifier works on 224x224 crops; smaller photos get upscaled.
	MinWidth  int
	MinHeight int
}

// DefaultPhotoThresholds returns the default photo thresholds
func DefaultPhotoThresholds() PhotoThresholds {
	return PhotoThresholds{
		MinLaplacianVariance: 50.0,
		MinBrightness:        60.0,
		MaxBrightness:        225.0,
		MaxSaturation:        0.85,
		MaxChannelImbalance:  0.35,
		MinWidth:             224,
		MinHeight:            224,
	}
}

// PhotoMetrics are the measurements a photo is judged on
type PhotoMetrics struct {
	Width          int
	Height         int
	LaplacianVar   float64
	Brightness     float64
	AvgLuminance   float64
	AvgSaturation  float64
	ChannelBalance [3]float64
}

// HintSeverity ranks a hint. No severity blocks an upload.
type HintSeverity string

const (
	SeverityWarning HintSeverity = "warning"
	SeverityInfo    HintSeverity = "info"
)

// PhotoHint is one piece of advice about the selected photo
type PhotoHint struct {
	Type        string       `json:"type"`
	Message     string       `json:"message"`
	Severity    HintSeverity `json:"severity"`
	ActualValue float64      `json:"actual_value,omitempty"`
	Threshold   float64      `json:"threshold,omitempty"`
}

// PhotoValidator turns photo metrics into hints
type PhotoValidator struct {
	thresholds PhotoThresholds
}

func NewPhotoValidator() *PhotoValidator {
	return &PhotoValidator{
		thresholds: DefaultPhotoThresholds(),
	}
}

func NewPhotoValidatorWithThresholds(thresholds PhotoThresholds) *PhotoValidator {
	return &PhotoValidator{
		thresholds: thresholds,
	}
}

// Validate returns the hints for metrics, most important first
func (pv *PhotoValidator) Validate(metrics PhotoMetrics) []PhotoHint {
	var hints []PhotoHint

	if metrics.Brightness < pv.thresholds.MinBrightness {
		hints = append(hints, PhotoHint{
			Type:        "too_dark",
			Message:     "The photo looks dark. Natural light gives the most reliable result.",
			Severity:    SeverityWarning,
			ActualValue: metrics.Brightness,
			Threshold:   pv.thresholds.MinBrightness,
		})
	} else if metrics.Brightness > pv.thresholds.MaxBrightness {
		hints = append(hints, PhotoHint{
			Type:        "too_bright",
			Message:     "The photo looks overexposed. Avoid flash and direct sunlight.",
			Severity:    SeverityWarning,
			ActualValue: metrics.Brightness,
			Threshold:   pv.thresholds.MaxBrightness,
		})
	}

	if metrics.LaplacianVar < pv.thresholds.MinLaplacianVariance {
		hints = append(hints, PhotoHint{
			Type:        "blurry",
			Message:     "The photo looks blurry. Keep the camera steady and close enough for detail.",
			Severity:    SeverityWarning,
			ActualValue: metrics.LaplacianVar,
			Threshold:   pv.thresholds.MinLaplacianVariance,
		})
	}

	if metrics.AvgSaturation > pv.thresholds.MaxSaturation {
		hints = append(hints, PhotoHint{
			Type:        "oversaturated",
			Message:     "Colors look very strong. Turn off filters and beauty modes.",
			Severity:    SeverityInfo,
			ActualValue: metrics.AvgSaturation,
			Threshold:   pv.thresholds.MaxSaturation,
		})
	}

	if pv.isColorCast(metrics.ChannelBalance) {
		hints = append(hints, PhotoHint{
			Type:      "color_cast",
			Message:   "The lighting tints the photo. Colored lamps can change how the tongue looks.",
			Severity:  SeverityInfo,
			Threshold: pv.thresholds.MaxChannelImbalance,
		})
	}

	if metrics.Width < pv.thresholds.MinWidth || metrics.Height < pv.thresholds.MinHeight {
		hints = append(hints, PhotoHint{
			Type:        "low_resolution",
			Message:     "The photo is small. Move closer so the tongue fills most of the frame.",
			Severity:    SeverityInfo,
			ActualValue: float64(metrics.Width * metrics.Height),
			Threshold:   float64(pv.thresholds.MinWidth * pv.thresholds.MinHeight),
		})
	}

	return hints
}

// isColorCast reports a channel spread larger than the imbalance threshold.
// A tongue photo is naturally red-heavy, so the threshold is loose.
func (pv *PhotoValidator) isColorCast(channels [3]float64) bool {
	max := math.Max(channels[0], math.Max(channels[1], channels[2]))
	min := math.Min(channels[0], math.Min(channels[1], channels[2]))
	return (max - min) > pv.thresholds.MaxChannelImbalance
}

// Messages flattens hints to their messages
func Messages(hints []PhotoHint) []string {
	messages := make([]string, 0, len(hints))
	for _, hint := range hints {
		messages = append(messages, hint.Message)
	}
	return messages
}
