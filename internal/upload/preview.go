package upload

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"github.com/nfnt/resize"
)

// Preview is the small rendition of a selection shown next to the upload form
// and on the result page.
type Preview struct {
	ContentType string
	Data        []byte
}

// DataURI returns the preview as an inline data: URI
func (p Preview) DataURI() string {
	if len(p.Data) == 0 {
		return ""
	}
	return "data:" + p.ContentType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// IsEmpty reports whether there is nothing to show
func (p Preview) IsEmpty() bool {
	return len(p.Data) == 0
}

func originalPreview(mediaType string, data []byte) Preview {
	return Preview{ContentType: mediaType, Data: data}
}

// thumbnailPreview shrinks img so that its longer side is at most maxDim and
// encodes it as JPEG. Images already small enough keep their original bytes.
func thumbnailPreview(img image.Image, maxDim int, mediaType string, original []byte) Preview {
	bounds := img.Bounds()
	if maxDim <= 0 || (bounds.Dx() <= maxDim && bounds.Dy() <= maxDim) {
		return originalPreview(mediaType, original)
	}

	thumb := resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return originalPreview(mediaType, original)
	}
	return Preview{ContentType: "image/jpeg", Data: buf.Bytes()}
}
