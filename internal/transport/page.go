package transport

import (
	"html/template"
	"strings"
	"time"

	"go-prakriti-web/internal/catalog"
	"go-prakriti-web/internal/render"
	"go-prakriti-web/internal/session"
	"go-prakriti-web/internal/upload"
	"go-prakriti-web/pkg/validation"
)

type selectionView struct {
	Filename string
	Size     string
	Width    int
	Height   int
	Hints    []validation.PhotoHint
}

// pageData feeds index.html
type pageData struct {
	Types          []catalog.Type
	State          string
	Loading        bool
	RefreshSeconds int
	Error          string
	Selection      *selectionView
	Result         *render.ResultView
	ResultImage    template.URL
	MaxUpload      string
	Tips           []string
	Year           int
}

func (h *handler) newPageData(view session.View) pageData {
	data := pageData{
		Types:          h.types.Types(),
		State:          view.State.String(),
		Loading:        view.State.IsBusy(),
		RefreshSeconds: refreshSeconds,
		Error:          view.Error,
		MaxUpload:      upload.HumanSize(h.cfg.MaxUploadSize),
		Tips:           photoTips,
		Year:           time.Now().Year(),
	}

	if sel := view.Selection; sel != nil {
		data.Selection = &selectionView{
			Filename: sel.Filename,
			Size:     upload.HumanSize(int64(sel.Size())),
			Width:    sel.Width,
			Height:   sel.Height,
			Hints:    sel.Hints,
		}
	}

	if view.State == session.StateResult && view.Result != nil {
		result := render.NewResultView(*view.Result, h.types)
		data.Result = &result
		// Only inline image previews are trusted as image sources.
		if strings.HasPrefix(result.ImageURL, "data:image/") {
			data.ResultImage = template.URL(result.ImageURL)
		}
	}
	return data
}
