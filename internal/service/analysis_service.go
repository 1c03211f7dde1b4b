package service

import (
	"context"
	"image"
	"mime/multipart"

	"go-prakriti-web/internal/analyzer"
	"go-prakriti-web/internal/predictor"
	"go-prakriti-web/internal/upload"
	"go-prakriti-web/pkg/models"
	"go-prakriti-web/pkg/validation"
)

// Selected is a validated photo together with the advice computed for it
type Selected struct {
	*upload.Selection
	Hints []validation.PhotoHint
}

// AnalysisService defines the operations behind the upload form
type AnalysisService interface {
	// SelectFile validates a multipart upload and prepares its preview and hints
	SelectFile(fh *multipart.FileHeader) (*Selected, error)
	// SelectBytes is SelectFile for content already in memory
	SelectBytes(filename, contentType string, data []byte) (*Selected, error)

	// Predict sends the selection to the prediction service. The returned
	// response carries the selection preview as its image URL.
	Predict(ctx context.Context, sel *Selected) (*models.PredictionResponse, error)

	CheckUpstream(ctx context.Context) error
	Endpoint() string
}

type analysisService struct {
	predictor     predictor.Predictor
	photoAnalyzer analyzer.PhotoAnalyzer
	maxUploadSize int64
	previewMax    int
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	p predictor.Predictor,
	photoAnalyzer analyzer.PhotoAnalyzer,
	maxUploadSize int64,
	previewMax int,
) AnalysisService {
	return &analysisService{
		predictor:     p,
		photoAnalyzer: photoAnalyzer,
		maxUploadSize: maxUploadSize,
		previewMax:    previewMax,
	}
}

func (s *analysisService) SelectFile(fh *multipart.FileHeader) (*Selected, error) {
	sel, img, err := upload.FromFileHeader(fh, s.maxUploadSize, s.previewMax)
	if err != nil {
		return nil, err
	}
	return s.withHints(sel, img), nil
}

func (s *analysisService) SelectBytes(filename, contentType string, data []byte) (*Selected, error) {
	sel, img, err := upload.NewSelection(filename, contentType, data, s.previewMax)
	if err != nil {
		return nil, err
	}
	return s.withHints(sel, img), nil
}

func (s *analysisService) withHints(sel *upload.Selection, img image.Image) *Selected {
	selected := &Selected{Selection: sel}
	if img != nil && s.photoAnalyzer != nil {
		selected.Hints = s.photoAnalyzer.Analyze(img).Hints
	}
	return selected
}

func (s *analysisService) Predict(ctx context.Context, sel *Selected) (*models.PredictionResponse, error) {
	resp, err := s.predictor.Predict(ctx, predictor.Image{
		Filename:    sel.Filename,
		ContentType: sel.MediaType,
		Data:        sel.Data,
	})
	if err != nil {
		return nil, err
	}

	merged := resp.WithImageURL(sel.Preview.DataURI())
	return &merged, nil
}

func (s *analysisService) CheckUpstream(ctx context.Context) error {
	return s.predictor.CheckHealth(ctx)
}

func (s *analysisService) Endpoint() string {
	return s.predictor.Endpoint()
}
