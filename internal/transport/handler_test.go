package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-prakriti-web/internal/analyzer"
	"go-prakriti-web/internal/catalog"
	"go-prakriti-web/internal/config"
	apperrors "go-prakriti-web/internal/errors"
	"go-prakriti-web/internal/observer"
	"go-prakriti-web/internal/predictor"
	"go-prakriti-web/internal/service"
	"go-prakriti-web/internal/session"
	"go-prakriti-web/pkg/models"
)

const pittaJSON = `{
  "success": true,
  "prediction": {"prakriti": "Pitta", "confidence": 82.345, "probabilities": {"Vata": 12.5, "Pitta": 82.3, "Kapha": 5.2}},
  "prakriti_info": {"description": "Pitta represents Fire & Water elements.", "characteristics": ["Warm body temperature"]},
  "diet_recommendation": {
    "guidelines": "Favor cooling foods.",
    "foods_to_favor": ["Coconut water"],
    "foods_to_avoid": ["Hot spices"],
    "meal_plan": {
      "breakfast": {"food": "Rice porridge with coconut milk and dates", "calories": 400},
      "mid_morning": {"food": "Cucumber slices and coconut water", "calories": 150},
      "lunch": {"food": "Steamed rice with greens and dal", "calories": 600},
      "evening_snack": {"food": "Sweet fruits like melon or pear", "calories": 150},
      "dinner": {"food": "Vegetable soup with boiled rice and ghee", "calories": 500}
    }
  }
}`

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	handler   http.Handler
	sessions  *session.Store
	publisher *observer.EventPublisher
	metrics   *observer.MetricsObserver
	hits      *int32
}

// fakeUpstream serves the prediction and health routes of the model service
func fakeUpstream(t *testing.T, predict http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/predict", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if _, _, err := r.FormFile(predictor.FormField); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "No image file provided"}`)
			return
		}
		predict(w, r)
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": "healthy"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func respondJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func newTestEnv(t *testing.T, endpoint string, hits *int32) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Host:                "127.0.0.1",
		Port:                "8080",
		RequestTimeout:      5 * time.Second,
		PredictAPIURL:       endpoint,
		PredictTimeout:      2 * time.Second,
		MaxUploadSize:       1 << 20,
		SessionTTL:          time.Minute,
		MaxSessions:         100,
		PreviewMaxDimension: 64,
		CORSAllowedOrigins:  []string{"http://localhost:5173"},
		GinMode:             "test",
	}

	svc := service.NewAnalysisService(
		predictor.NewHTTPPredictor(cfg.PredictAPIURL, cfg.PredictTimeout),
		analyzer.NewPhotoAnalyzer(nil),
		cfg.MaxUploadSize,
		cfg.PreviewMaxDimension,
	)
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(metrics)
	sessions := session.NewStore(svc, publisher, cfg.SessionTTL, cfg.MaxSessions)

	return &testEnv{
		handler: NewHandler(Dependencies{
			Config:   cfg,
			Service:  svc,
			Sessions: sessions,
			Catalog:  catalog.Default(),
			Metrics:  metrics,
		}),
		sessions:  sessions,
		publisher: publisher,
		metrics:   metrics,
		hits:      hits,
	}
}

func newEnvWithUpstream(t *testing.T, predict http.HandlerFunc) *testEnv {
	srv, hits := fakeUpstream(t, predict)
	return newTestEnv(t, srv.URL+"/api/predict", hits)
}

func (e *testEnv) upstreamHits() int32 {
	return atomic.LoadInt32(e.hits)
}

// browser replays the session cookie like a real browser would
type browser struct {
	t      *testing.T
	env    *testEnv
	cookie *http.Cookie
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.env.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			b.cookie = ck
		}
	}
	return w
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodPost, path, nil))
}

func (b *browser) postFile(path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	body, formType := multipartBody(b.t, filename, contentType, data)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", formType)
	return b.do(req)
}

func (b *browser) controller() *session.Controller {
	b.t.Helper()
	if b.cookie == nil {
		b.t.Fatal("No session cookie")
	}
	ctrl, ok := b.env.sessions.Get(b.cookie.Value)
	if !ok {
		b.t.Fatal("Session not found")
	}
	return ctrl
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, predictor.FormField, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	writer.Close()
	return &body, writer.FormDataContentType()
}

func tonguePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{200, 100, 110, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/" {
		t.Fatalf("Expected 303 to /, got %d %q", w.Code, w.Header().Get("Location"))
	}
}

func TestPage_FullFlow(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))
	b := &browser{t: t, env: env}

	w := b.get("/")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if b.cookie != nil || env.sessions.Len() != 0 {
		t.Fatal("Expected viewing the page not to start a session")
	}
	for _, want := range []string{"Discover Your Prakriti", "Air &amp; Space", "Max 1MB", "Ensure good lighting, preferably natural light"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("Expected upload page to contain %q", want)
		}
	}

	data := tonguePNG(t)
	expectRedirect(t, b.postFile("/select", "tongue.png", "image/png", data))
	if b.cookie == nil || !b.cookie.HttpOnly {
		t.Fatal("Expected an HttpOnly session cookie")
	}

	w = b.get("/")
	if !strings.Contains(w.Body.String(), "tongue.png") || !strings.Contains(w.Body.String(), `src="/preview"`) {
		t.Error("Expected selection and preview on the page")
	}

	w = b.get("/preview")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" || !bytes.Equal(w.Body.Bytes(), data) {
		t.Errorf("Unexpected preview: %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	expectRedirect(t, b.post("/analyze"))
	b.controller().Wait()

	body := b.get("/").Body.String()
	for _, want := range []string{"Your Prakriti Type", "Pitta", "82.3%", "12.5%", "🌅 Breakfast", "1800 kcal", "Analyze Another Image", "data:image/png;base64,"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected result page to contain %q", want)
		}
	}
	if env.upstreamHits() != 1 {
		t.Errorf("Expected exactly one upstream request, got %d", env.upstreamHits())
	}

	expectRedirect(t, b.post("/reset"))
	body = b.get("/").Body.String()
	if strings.Contains(body, "Analyze Another Image") || strings.Contains(body, "82.3%") {
		t.Error("Expected reset to return to the upload view")
	}
	if strings.Contains(body, `role="alert"`) || strings.Contains(body, `src="/preview"`) {
		t.Error("Expected no residual error or preview after reset")
	}
	if w := b.get("/preview"); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 preview after reset, got %d", w.Code)
	}

	env.publisher.Wait()
	got := env.metrics.GetMetrics()
	if got.PredictionsCompleted != 1 || got.Resets != 1 || got.ByPrakriti["Pitta"] != 1 {
		t.Errorf("Unexpected metrics: %+v", got)
	}
}

func TestPage_SelectAndAnalyzeInOneStep(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))
	b := &browser{t: t, env: env}

	expectRedirect(t, b.postFile("/analyze", "tongue.png", "image/png", tonguePNG(t)))
	b.controller().Wait()

	if !strings.Contains(b.get("/").Body.String(), "82.3%") {
		t.Error("Expected result after one-step analyze")
	}
}

func TestPage_InvalidSelectionIssuesNoRequest(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))
	b := &browser{t: t, env: env}

	expectRedirect(t, b.postFile("/select", "report.pdf", "application/pdf", []byte("%PDF-1.4")))
	if body := b.get("/").Body.String(); !strings.Contains(body, apperrors.MsgInvalidImage) {
		t.Errorf("Expected %q on the page", apperrors.MsgInvalidImage)
	}

	expectRedirect(t, b.post("/analyze"))
	if body := b.get("/").Body.String(); !strings.Contains(body, apperrors.MsgNoSelection) {
		t.Errorf("Expected %q on the page", apperrors.MsgNoSelection)
	}
	if env.upstreamHits() != 0 {
		t.Errorf("Expected no upstream request, got %d", env.upstreamHits())
	}

	expectRedirect(t, b.post("/clear"))
	if body := b.get("/").Body.String(); strings.Contains(body, `role="alert"`) {
		t.Error("Expected clear to drop the error")
	}
}

func TestPage_SelectWithoutFileKeepsSelection(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))
	b := &browser{t: t, env: env}

	expectRedirect(t, b.postFile("/select", "tongue.png", "image/png", tonguePNG(t)))
	expectRedirect(t, b.post("/select"))

	body := b.get("/").Body.String()
	if !strings.Contains(body, apperrors.MsgInvalidImage) {
		t.Errorf("Expected %q on the page", apperrors.MsgInvalidImage)
	}
	if !strings.Contains(body, "tongue.png") || !strings.Contains(body, `src="/preview"`) {
		t.Error("Expected the previous selection to be kept")
	}
}

func TestPage_SessionsStartOnlyOnChanges(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))

	for _, path := range []string{"/", "/", "/preview"} {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if len(w.Result().Cookies()) != 0 {
			t.Errorf("Expected no cookie from GET %s", path)
		}
	}
	for _, path := range []string{"/clear", "/reset"} {
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		expectRedirect(t, w)
	}
	if env.sessions.Len() != 0 {
		t.Errorf("Expected no sessions, got %d", env.sessions.Len())
	}
}

func TestPage_CookieRenewedOnUse(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))
	b := &browser{t: t, env: env}

	b.postFile("/select", "tongue.png", "image/png", tonguePNG(t))
	id := b.cookie.Value

	w := b.get("/")
	var renewed *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == sessionCookie {
			renewed = ck
		}
	}
	if renewed == nil || renewed.Value != id || renewed.MaxAge != int(time.Minute.Seconds()) {
		t.Errorf("Expected the session cookie to be issued again, got %+v", renewed)
	}
}

func TestPage_PredictionFailures(t *testing.T) {
	tests := []struct {
		name     string
		upstream http.HandlerFunc
		expected string
	}{
		{"success false with message", respondJSON(http.StatusOK, `{"success": false, "error": "X"}`), `role="alert">X<`},
		{"success false without message", respondJSON(http.StatusOK, `{"success": false}`), apperrors.MsgPredictionFailed},
		{"server error with message", respondJSON(http.StatusInternalServerError, `{"error": "Model crashed"}`), "Model crashed"},
		{"server error without body", respondJSON(http.StatusInternalServerError, ``), apperrors.MsgServerUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnvWithUpstream(t, tt.upstream)
			b := &browser{t: t, env: env}

			b.postFile("/select", "tongue.png", "image/png", tonguePNG(t))
			b.post("/analyze")
			b.controller().Wait()

			body := b.get("/").Body.String()
			if !strings.Contains(body, tt.expected) {
				t.Errorf("Expected page to contain %q", tt.expected)
			}
			if strings.Contains(body, "Your Prakriti Type") {
				t.Error("Expected no result view after a failure")
			}
			if b.controller().Snapshot().State != session.StateError {
				t.Errorf("Expected error state, got %s", b.controller().Snapshot().State)
			}
		})
	}
}

func TestPage_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/api/predict"
	srv.Close()

	var hits int32
	env := newTestEnv(t, endpoint, &hits)
	b := &browser{t: t, env: env}

	b.postFile("/select", "tongue.png", "image/png", tonguePNG(t))
	b.post("/analyze")
	b.controller().Wait()

	if body := b.get("/").Body.String(); !strings.Contains(body, apperrors.MsgServerUnreachable) {
		t.Errorf("Expected %q on the page", apperrors.MsgServerUnreachable)
	}
}

func TestPage_BusyWhileLoading(t *testing.T) {
	release := make(chan struct{})
	env := newEnvWithUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		respondJSON(http.StatusOK, pittaJSON)(w, r)
	})
	b := &browser{t: t, env: env}

	b.postFile("/select", "tongue.png", "image/png", tonguePNG(t))
	expectRedirect(t, b.post("/analyze"))

	body := b.get("/").Body.String()
	if !strings.Contains(body, `http-equiv="refresh"`) || !strings.Contains(body, "Analyzing your image...") {
		t.Error("Expected loading page to poll")
	}

	expectRedirect(t, b.post("/analyze"))
	expectRedirect(t, b.post("/reset"))
	if state := b.controller().Snapshot().State; state != session.StateLoading {
		t.Errorf("Expected session to stay loading, got %s", state)
	}

	close(release)
	b.controller().Wait()

	if env.upstreamHits() != 1 {
		t.Errorf("Expected exactly one upstream request, got %d", env.upstreamHits())
	}
	if state := b.controller().Snapshot().State; state != session.StateResult {
		t.Errorf("Expected result, got %s", state)
	}
}

func TestPredictAPI(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))

	body, formType := multipartBody(t, "tongue.png", "image/png", tonguePNG(t))
	req := httptest.NewRequest(http.MethodPost, "/api/predict", body)
	req.Header.Set("Content-Type", formType)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp models.PredictionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.Prediction.Prakriti != "Pitta" || resp.DietRecommendation.TotalCalories() != 1800 {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if resp.ImageURL != "" {
		t.Error("Expected no image URL in relayed response")
	}
}

func TestPredictAPI_Errors(t *testing.T) {
	tests := []struct {
		name         string
		upstream     http.HandlerFunc
		filename     string
		contentType  string
		data         []byte
		noFile       bool
		expectedCode int
		expectedMsg  string
		expectedHits int32
	}{
		{
			name:         "missing file",
			upstream:     respondJSON(http.StatusOK, pittaJSON),
			noFile:       true,
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "No image file provided",
		},
		{
			name:         "not an image",
			upstream:     respondJSON(http.StatusOK, pittaJSON),
			filename:     "notes.txt",
			contentType:  "text/plain",
			data:         []byte("hello"),
			expectedCode: http.StatusBadRequest,
			expectedMsg:  apperrors.MsgInvalidImage,
		},
		{
			name:         "prediction failed",
			upstream:     respondJSON(http.StatusOK, `{"success": false, "error": "X"}`),
			filename:     "tongue.png",
			contentType:  "image/png",
			expectedCode: http.StatusUnprocessableEntity,
			expectedMsg:  "X",
			expectedHits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnvWithUpstream(t, tt.upstream)

			var req *http.Request
			if tt.noFile {
				req = httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(""))
			} else {
				data := tt.data
				if data == nil {
					data = tonguePNG(t)
				}
				body, formType := multipartBody(t, tt.filename, tt.contentType, data)
				req = httptest.NewRequest(http.MethodPost, "/api/predict", body)
				req.Header.Set("Content-Type", formType)
			}
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, req)

			if w.Code != tt.expectedCode {
				t.Errorf("Expected %d, got %d", tt.expectedCode, w.Code)
			}
			var resp models.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("Failed to decode error: %v", err)
			}
			if resp.Success || resp.Error != tt.expectedMsg {
				t.Errorf("Expected error %q, got %+v", tt.expectedMsg, resp)
			}
			if env.upstreamHits() != tt.expectedHits {
				t.Errorf("Expected %d upstream requests, got %d", tt.expectedHits, env.upstreamHits())
			}
		})
	}
}

func TestPrakritiInfo(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/prakriti-info", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var resp models.PrakritiCatalogResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if strings.Join(resp.PrakritiTypes, ",") != "Vata,Pitta,Kapha" {
		t.Errorf("Unexpected types: %v", resp.PrakritiTypes)
	}
	if resp.Details["Vata"].Elements != "Air & Space" {
		t.Errorf("Unexpected Vata details: %+v", resp.Details["Vata"])
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"available"`) {
		t.Errorf("Unexpected liveness response: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	var health models.HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if w.Code != http.StatusOK || health.Status != "healthy" || health.UpstreamStatus != "reachable" {
		t.Errorf("Unexpected upstream health: %d %+v", w.Code, health)
	}
}

func TestUpstreamHealth_Degraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var hits int32
	env := newTestEnv(t, srv.URL+"/api/predict", &hits)

	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "degraded") {
		t.Errorf("Expected degraded health, got %d %s", w.Code, w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))
	b := &browser{t: t, env: env}
	b.postFile("/select", "notes.txt", "text/plain", []byte("hello"))
	env.publisher.Wait()

	w := b.get("/metrics")
	var resp struct {
		Events         observer.Metrics `json:"events"`
		ActiveSessions int              `json:"active_sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Events.RejectedSelections != 1 || resp.ActiveSessions != 1 {
		t.Errorf("Unexpected metrics: %+v", resp)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newEnvWithUpstream(t, respondJSON(http.StatusOK, pittaJSON))

	req := httptest.NewRequest(http.MethodOptions, "/api/predict", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}

func TestCORSConfig_Wildcard(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	if !cfg.AllowAllOrigins || cfg.AllowCredentials || len(cfg.AllowOrigins) != 0 {
		t.Errorf("Unexpected wildcard config: %+v", cfg)
	}
}
