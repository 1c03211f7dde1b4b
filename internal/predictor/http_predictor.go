package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	apperrors "go-prakriti-web/internal/errors"
	"go-prakriti-web/pkg/models"
)

const (
	// FormField is the multipart field the prediction service reads the image from
	FormField = "image"

	maxResponseBytes = 4 << 20
	userAgent        = "Go-Prakriti-Web/1.0"
)

// Image is the upload handed to the prediction service
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Predictor interface {
	Predict(ctx context.Context, img Image) (*models.PredictionResponse, error)
	CheckHealth(ctx context.Context) error
	Endpoint() string
}

// HTTPPredictor implements Predictor against the HTTP prediction endpoint
type HTTPPredictor struct {
	endpoint string
	client   *http.Client
}

// NewHTTPPredictor creates a predictor for endpoint. timeout bounds a whole
// request so that a hung service cannot leave a session loading forever.
func NewHTTPPredictor(endpoint string, timeout time.Duration) *HTTPPredictor {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 16 << 10,
	}

	return &HTTPPredictor{
		endpoint: endpoint,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,

			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
	}
}

// Endpoint returns the prediction URL
func (p *HTTPPredictor) Endpoint() string {
	return p.endpoint
}

// Predict uploads img and decodes the service answer. A response with success=false
// or a non-2xx status carrying an error message yields a prediction error with that
// message; anything else that fails yields a network or timeout error.
func (p *HTTPPredictor) Predict(ctx context.Context, img Image) (*models.PredictionResponse, error) {
	body, contentType, err := encodeMultipart(img)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode upload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, body)
	if err != nil {
		return nil, apperrors.NewInternalError("invalid prediction endpoint", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, raw)
	}

	var payload models.PredictionResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewPredictionError(apperrors.MsgPredictionFailed,
			fmt.Errorf("decode prediction response: %w", err))
	}

	if !payload.Success {
		msg := payload.Error
		if msg == "" {
			msg = apperrors.MsgPredictionFailed
		}
		return nil, apperrors.NewPredictionError(msg, nil)
	}

	return &payload, nil
}

// CheckHealth calls the service's health route, a sibling of the predict route
// (".../api/predict" -> ".../api/health").
func (p *HTTPPredictor) CheckHealth(ctx context.Context) error {
	healthURL, err := siblingURL(p.endpoint, "health")
	if err != nil {
		return apperrors.NewInternalError("invalid prediction endpoint", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return apperrors.NewInternalError("invalid health endpoint", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewNetworkError(apperrors.MsgServerUnreachable,
			fmt.Errorf("health check: status code %d", resp.StatusCode))
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(img Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = "upload"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(FormField), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

// statusError reports a non-2xx answer. A JSON body with an "error" field is
// treated as a message from the service and shown verbatim.
func statusError(statusCode int, raw []byte) error {
	cause := fmt.Errorf("prediction service: status code %d", statusCode)

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		appErr := apperrors.NewPredictionError(body.Error, cause)
		if statusCode >= 500 {
			appErr.StatusCode = http.StatusBadGateway
		}
		return appErr
	}
	return apperrors.NewNetworkError(apperrors.MsgServerUnreachable, cause)
}

func transportError(err error) error {
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewTimeoutError(apperrors.MsgServerUnreachable, err)
	}
	return apperrors.NewNetworkError(apperrors.MsgServerUnreachable, err)
}

func siblingURL(endpoint, name string) (string, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(name)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}
