package upload

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	apperrors "go-prakriti-web/internal/errors"
)

const genericMediaType = "application/octet-stream"

// MaxDecodePixels bounds the bitmap NewSelection is willing to decode. Larger
// images are accepted but previewed as-is, without dimensions or hints.
const MaxDecodePixels = 40_000_000

// Selection is a photo accepted for analysis. It lives only in memory and is
// dropped when the user clears it, picks another file or resets.
type Selection struct {
	Filename  string
	MediaType string
	Data      []byte
	Preview   Preview

	// Width and Height are zero when the format could not be decoded locally.
	Width  int
	Height int
}

// Size returns the number of bytes selected
func (s *Selection) Size() int {
	return len(s.Data)
}

// DetectMediaType returns the declared media type unless it is missing or generic,
// in which case the type is sniffed from the content.
func DetectMediaType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != genericMediaType {
		return strings.ToLower(mediaType)
	}
	detected := mimetype.Detect(data).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return genericMediaType
}

// IsImage reports whether mediaType belongs to the image/* family
func IsImage(mediaType string) bool {
	return strings.HasPrefix(mediaType, "image/")
}

// NewSelection validates data and builds its preview. Content that is not
// image/* is rejected with a validation error and nothing is kept.
// previewMax bounds the longer side of the preview thumbnail.
func NewSelection(filename, declaredType string, data []byte, previewMax int) (*Selection, image.Image, error) {
	if len(data) == 0 {
		return nil, nil, apperrors.NewValidationError(apperrors.MsgInvalidImage, fmt.Errorf("empty file %q", filename))
	}

	mediaType := DetectMediaType(declaredType, data)
	if !IsImage(mediaType) {
		return nil, nil, apperrors.NewValidationError(apperrors.MsgInvalidImage,
			fmt.Errorf("file %q has media type %s", filename, mediaType))
	}

	sel := &Selection{
		Filename:  filename,
		MediaType: mediaType,
		Data:      data,
	}

	// Formats the standard decoders do not know (HEIC, TIFF...) and images
	// too large to decode are still accepted; the preview falls back to the
	// original bytes.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxDecodePixels {
		sel.Preview = originalPreview(mediaType, data)
		return sel, nil, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		sel.Preview = originalPreview(mediaType, data)
		return sel, nil, nil
	}

	bounds := img.Bounds()
	sel.Width, sel.Height = bounds.Dx(), bounds.Dy()
	sel.Preview = thumbnailPreview(img, previewMax, mediaType, data)
	return sel, img, nil
}

// FromFileHeader reads a multipart file part into a Selection. maxSize caps the
// number of bytes read; larger files are rejected.
func FromFileHeader(fh *multipart.FileHeader, maxSize int64, previewMax int) (*Selection, image.Image, error) {
	if fh == nil {
		return nil, nil, apperrors.NewValidationError(apperrors.MsgNoSelection, nil)
	}
	if fh.Size > maxSize {
		return nil, nil, apperrors.NewValidationError(
			fmt.Sprintf("Image is too large (max %s)", HumanSize(maxSize)), nil)
	}

	file, err := fh.Open()
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to open upload", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, nil, apperrors.NewInternalError("failed to read upload", err)
	}
	if int64(len(data)) > maxSize {
		return nil, nil, apperrors.NewValidationError(
			fmt.Sprintf("Image is too large (max %s)", HumanSize(maxSize)), nil)
	}

	return NewSelection(fh.Filename, fh.Header.Get("Content-Type"), data, previewMax)
}

// HumanSize formats a byte count the way the upload form advertises limits
func HumanSize(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit:
		return trimZero(float64(n)/(unit*unit)) + "MB"
	case n >= unit:
		return trimZero(float64(n)/unit) + "KB"
	default:
		return fmt.Sprintf("%dB", n)
	}
}

func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
