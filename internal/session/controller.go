// Package session keeps the per-browser state of the upload form: the selected
// photo, the loading flag, the last error and the last result.
package session

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	apperrors "go-prakriti-web/internal/errors"
	"go-prakriti-web/internal/observer"
	"go-prakriti-web/internal/service"
	"go-prakriti-web/pkg/models"
)

// View is a consistent copy of a controller's state
type View struct {
	SessionID string
	State     State
	Selection *service.Selected
	Result    *models.PredictionResponse
	Error     string
}

// Controller owns one session. All methods are safe for concurrent use; the
// prediction call itself runs without holding the lock.
type Controller struct {
	id     string
	svc    service.AnalysisService
	events observer.Subject

	mu        sync.Mutex
	state     State
	selection *service.Selected
	result    *models.PredictionResponse
	errMsg    string
	lastSeen  time.Time

	inflight sync.WaitGroup
}

// NewController creates a controller in the Input state
func NewController(id string, svc service.AnalysisService, events observer.Subject) *Controller {
	return &Controller{
		id:       id,
		svc:      svc,
		events:   events,
		state:    StateInput,
		lastSeen: time.Now(),
	}
}

// ID returns the session id
func (c *Controller) ID() string {
	return c.id
}

// Snapshot returns the current state
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		SessionID: c.id,
		State:     c.state,
		Selection: c.selection,
		Result:    c.result,
		Error:     c.errMsg,
	}
}

// SelectFile replaces the selection with a multipart upload
func (c *Controller) SelectFile(fh *multipart.FileHeader) error {
	if err := c.checkAcceptsInput(); err != nil {
		return err
	}
	sel, err := c.svc.SelectFile(fh)
	return c.applySelection(sel, err, fileName(fh))
}

// SelectBytes replaces the selection with in-memory content
func (c *Controller) SelectBytes(filename, contentType string, data []byte) error {
	if err := c.checkAcceptsInput(); err != nil {
		return err
	}
	sel, err := c.svc.SelectBytes(filename, contentType, data)
	return c.applySelection(sel, err, filename)
}

// RejectMissingFile records a selection attempt that carried no file. The
// previous selection is kept.
func (c *Controller) RejectMissingFile() error {
	if err := c.checkAcceptsInput(); err != nil {
		return err
	}

	c.mu.Lock()
	c.errMsg = apperrors.MsgInvalidImage
	c.state = StateError
	c.mu.Unlock()

	c.publish(observer.Event{Type: observer.SelectionRejected, ErrorMessage: "no file part"})
	return apperrors.NewValidationError(apperrors.MsgInvalidImage, nil)
}

func (c *Controller) applySelection(sel *service.Selected, selErr error, filename string) error {
	c.mu.Lock()
	// The state may have moved on while the file was being decoded.
	switch c.state {
	case StateLoading:
		c.mu.Unlock()
		return apperrors.NewValidationError(apperrors.MsgBusy, nil)
	case StateResult:
		c.mu.Unlock()
		return apperrors.NewValidationError(apperrors.MsgResultShown, nil)
	}

	if selErr != nil {
		// A rejected file also drops the previous selection.
		c.selection = nil
		c.result = nil
		c.errMsg = apperrors.UserMessage(selErr)
		c.state = StateError
		c.mu.Unlock()

		c.publish(observer.Event{Type: observer.SelectionRejected, Filename: filename, ErrorMessage: selErr.Error()})
		return selErr
	}

	c.selection = sel
	c.result = nil
	c.errMsg = ""
	c.state = StateInput
	c.mu.Unlock()

	c.publish(observer.Event{
		Type:     observer.SelectionAccepted,
		Filename: filename,
		Metadata: map[string]interface{}{"media_type": sel.MediaType, "size": sel.Size(), "hints": len(sel.Hints)},
	})
	return nil
}

// Clear drops the selection and any error
func (c *Controller) Clear() error {
	if err := c.checkAcceptsInput(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = nil
	c.errMsg = ""
	if c.state == StateError {
		c.state = StateInput
	}
	return nil
}

// Submit sends the selection for prediction and waits for the outcome
func (c *Controller) Submit(ctx context.Context) error {
	sel, err := c.begin()
	if err != nil {
		return err
	}
	defer c.inflight.Done()

	return c.predict(ctx, sel)
}

// Start is Submit without waiting: the controller is Loading when it returns
// nil, and the outcome is applied when the request settles. ctx must outlive
// the caller's request.
func (c *Controller) Start(ctx context.Context) error {
	sel, err := c.begin()
	if err != nil {
		return err
	}

	go func() {
		defer c.inflight.Done()
		_ = c.predict(ctx, sel)
	}()
	return nil
}

// Wait blocks until no prediction is in flight
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) begin() (*service.Selected, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsBusy() {
		return nil, apperrors.NewValidationError(apperrors.MsgBusy, nil)
	}
	if c.state == StateResult {
		return nil, apperrors.NewValidationError(apperrors.MsgResultShown, nil)
	}
	if c.selection == nil {
		c.errMsg = apperrors.MsgNoSelection
		c.state = StateError
		return nil, apperrors.NewValidationError(apperrors.MsgNoSelection, nil)
	}

	c.errMsg = ""
	c.state = StateLoading
	c.inflight.Add(1)
	return c.selection, nil
}

func (c *Controller) predict(ctx context.Context, sel *service.Selected) error {
	c.publish(observer.Event{Type: observer.PredictionStarted, Filename: sel.Filename})
	started := time.Now()

	resp, err := c.svc.Predict(ctx, sel)
	duration := time.Since(started)

	c.mu.Lock()
	if err != nil {
		c.errMsg = apperrors.UserMessage(err)
		c.state = StateError
	} else {
		c.result = resp
		c.state = StateResult
	}
	c.mu.Unlock()

	if err != nil {
		c.publish(observer.Event{
			Type:         observer.PredictionFailed,
			Filename:     sel.Filename,
			Duration:     duration,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{"error_type": string(apperrors.TypeOf(err))},
		})
		return err
	}

	c.publish(observer.Event{
		Type:     observer.PredictionCompleted,
		Filename: sel.Filename,
		Prakriti: resp.Prediction.Prakriti,
		Duration: duration,
		Metadata: map[string]interface{}{"confidence": resp.Prediction.Confidence},
	})
	return nil
}

// Reset discards the result, selection and error and shows the form again
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state.IsBusy() {
		c.mu.Unlock()
		return apperrors.NewValidationError(apperrors.MsgBusy, nil)
	}
	c.state = StateInput
	c.selection = nil
	c.result = nil
	c.errMsg = ""
	c.mu.Unlock()

	c.publish(observer.Event{Type: observer.SessionReset})
	return nil
}

func (c *Controller) checkAcceptsInput() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateLoading:
		return apperrors.NewValidationError(apperrors.MsgBusy, nil)
	case StateResult:
		return apperrors.NewValidationError(apperrors.MsgResultShown, nil)
	}
	return nil
}

func (c *Controller) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

// idleSince reports when the session was last used and whether it may be evicted
func (c *Controller) idleSince() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen, !c.state.IsBusy()
}

func (c *Controller) publish(event observer.Event) {
	if c.events == nil {
		return
	}
	event.SessionID = c.id
	c.events.NotifyObservers(context.Background(), event)
}

func fileName(fh *multipart.FileHeader) string {
	if fh == nil {
		return ""
	}
	return fh.Filename
}

