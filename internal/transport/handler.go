package transport

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"go-prakriti-web/internal/catalog"
	"go-prakriti-web/internal/config"
	apperrors "go-prakriti-web/internal/errors"
	"go-prakriti-web/internal/logger"
	"go-prakriti-web/internal/observer"
	"go-prakriti-web/internal/predictor"
	"go-prakriti-web/internal/service"
	"go-prakriti-web/internal/session"
	"go-prakriti-web/internal/upload"
	"go-prakriti-web/pkg/models"
)

const (
	version        = "1.0.0"
	sessionCookie  = "prakriti_session"
	healthTimeout  = 5 * time.Second
	refreshSeconds = 1
)

//go:embed templates/*.html
var templateFS embed.FS

var photoTips = []string{
	"Stick out your tongue naturally and comfortably",
	"Ensure good lighting, preferably natural light",
	"Keep the camera steady and close enough for detail",
	"Avoid taking photos right after eating or drinking",
}

// Dependencies are the collaborators the handler is built from
type Dependencies struct {
	Config   *config.Config
	Service  service.AnalysisService
	Sessions *session.Store
	Catalog  *catalog.Catalog
	Metrics  *observer.MetricsObserver
}

type handler struct {
	cfg      *config.Config
	svc      service.AnalysisService
	sessions *session.Store
	types    *catalog.Catalog
	metrics  *observer.MetricsObserver
}

func NewHandler(deps Dependencies) http.Handler {
	h := &handler{
		cfg:      deps.Config,
		svc:      deps.Service,
		sessions: deps.Sessions,
		types:    deps.Catalog,
		metrics:  deps.Metrics,
	}

	r := gin.Default()
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	// Add middleware
	r.Use(
		requestSizeLimiter(h.cfg.MaxRequestBodySize()),
		errorHandler(),
	)

	// Pages
	r.GET("/", h.page)
	r.POST("/select", h.selectImage)
	r.POST("/clear", h.clear)
	r.POST("/analyze", h.analyze)
	r.POST("/reset", h.reset)
	r.GET("/preview", h.preview)

	// JSON API
	api := r.Group("/api")
	api.Use(cors.New(corsConfig(h.cfg.CORSAllowedOrigins)))
	api.POST("/predict", h.predictAPI)
	api.GET("/prakriti-info", h.prakritiInfo)
	api.GET("/health", h.upstreamHealth)
	// Preflight requests only reach the CORS middleware on a matching route.
	for _, path := range []string{"/predict", "/prakriti-info", "/health"} {
		api.OPTIONS(path, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	}

	r.GET("/health", healthCheck)
	r.GET("/metrics", h.metricsReport)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// existing returns the caller's live session, if any. The cookie is issued
// again so that it expires with the session rather than with its creation.
func (h *handler) existing(c *gin.Context) (*session.Controller, bool) {
	id, err := c.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	ctrl, ok := h.sessions.Get(id)
	if !ok {
		return nil, false
	}
	h.setSessionCookie(c, ctrl.ID())
	return ctrl, true
}

// controller returns the caller's session, starting one when the cookie is
// missing or expired. Only requests that change state create sessions.
func (h *handler) controller(c *gin.Context) (*session.Controller, bool) {
	if ctrl, ok := h.existing(c); ok {
		return ctrl, true
	}
	ctrl, err := h.sessions.Create()
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), apperrors.UserMessage(err), err)
		return nil, false
	}
	h.setSessionCookie(c, ctrl.ID())
	return ctrl, true
}

func (h *handler) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, id, int(h.cfg.SessionTTL.Seconds()), "/", "", false, true)
}

func (h *handler) page(c *gin.Context) {
	view := session.View{State: session.StateInput}
	if ctrl, ok := h.existing(c); ok {
		view = ctrl.Snapshot()
	}
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html", h.newPageData(view))
}

func (h *handler) selectImage(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	fh, err := c.FormFile(predictor.FormField)
	if err != nil {
		if h.rejectOversized(c, err) {
			return
		}
		if err := ctrl.RejectMissingFile(); err != nil {
			h.logSessionError(c, ctrl, err, "Selection rejected")
		}
		redirectHome(c)
		return
	}

	if err := ctrl.SelectFile(fh); err != nil {
		h.logSessionError(c, ctrl, err, "Selection rejected")
	}
	redirectHome(c)
}

func (h *handler) clear(c *gin.Context) {
	if ctrl, ok := h.existing(c); ok {
		if err := ctrl.Clear(); err != nil {
			h.logSessionError(c, ctrl, err, "Clear rejected")
		}
	}
	redirectHome(c)
}

// analyze starts a prediction and returns at once; the page polls until the
// session leaves the loading state. An "image" field selects and submits in
// one step.
func (h *handler) analyze(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	if fh, err := c.FormFile(predictor.FormField); err == nil {
		if err := ctrl.SelectFile(fh); err != nil {
			h.logSessionError(c, ctrl, err, "Selection rejected")
			redirectHome(c)
			return
		}
	} else if h.rejectOversized(c, err) {
		return
	}

	// The request outlives this handler; the predictor's own timeout bounds it.
	ctx := context.WithoutCancel(c.Request.Context())
	if err := ctrl.Start(ctx); err != nil {
		h.logSessionError(c, ctrl, err, "Submit rejected")
	} else {
		logger.WithFields(logrus.Fields{
			"session_id": ctrl.ID(),
			"endpoint":   h.svc.Endpoint(),
		}).Debug("Prediction submitted")
	}
	redirectHome(c)
}

func (h *handler) reset(c *gin.Context) {
	if ctrl, ok := h.existing(c); ok {
		if err := ctrl.Reset(); err != nil {
			h.logSessionError(c, ctrl, err, "Reset rejected")
		}
	}
	redirectHome(c)
}

func (h *handler) preview(c *gin.Context) {
	var view session.View
	if ctrl, ok := h.existing(c); ok {
		view = ctrl.Snapshot()
	}
	if view.Selection == nil || view.Selection.Preview.IsEmpty() {
		respondError(c, http.StatusNotFound, "no image selected", apperrors.NewNotFoundError("no preview", nil))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, view.Selection.Preview.ContentType, view.Selection.Preview.Data)
}

// predictAPI forwards a multipart upload to the prediction service and relays
// the answer, for clients that talk JSON instead of using the pages.
func (h *handler) predictAPI(c *gin.Context) {
	startTime := time.Now()

	fh, err := c.FormFile(predictor.FormField)
	if err != nil {
		if h.rejectOversized(c, err) {
			return
		}
		respondError(c, http.StatusBadRequest, "No image file provided", apperrors.NewValidationError("No image file provided", err))
		return
	}

	sel, err := h.svc.SelectFile(fh)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), apperrors.UserMessage(err), err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.svc.Predict(ctx, sel)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), apperrors.UserMessage(err), err)
		return
	}

	logger.WithFields(logrus.Fields{
		"filename":           sel.Filename,
		"prakriti":           resp.Prediction.Prakriti,
		"confidence":         resp.Prediction.Confidence,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	}).Info("Prediction relayed")

	relayed := resp.WithImageURL("")
	c.JSON(http.StatusOK, relayed)
}

func (h *handler) prakritiInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.types.Response())
}

func (h *handler) upstreamHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := models.HealthResponse{
		Status:         "healthy",
		Version:        version,
		Time:           time.Now().UTC().Format(time.RFC3339),
		Upstream:       h.svc.Endpoint(),
		UpstreamStatus: "reachable",
	}
	status := http.StatusOK

	if err := h.svc.CheckUpstream(ctx); err != nil {
		logger.WithError(err).WithField("upstream", h.svc.Endpoint()).Warn("Prediction service unavailable")
		resp.Status = "degraded"
		resp.UpstreamStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

func (h *handler) metricsReport(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"events":          h.metrics.GetMetrics(),
		"active_sessions": h.sessions.Len(),
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "available",
		Version: version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// rejectOversized answers 413 when err comes from the body size limit
func (h *handler) rejectOversized(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) && !strings.Contains(err.Error(), "request body too large") {
		return false
	}
	msg := "Image is too large (max " + upload.HumanSize(h.cfg.MaxUploadSize) + ")"
	respondError(c, http.StatusRequestEntityTooLarge, msg, apperrors.NewValidationError(msg, err))
	return true
}

func (h *handler) logSessionError(c *gin.Context, ctrl *session.Controller, err error, msg string) {
	logger.WithError(err).WithFields(logrus.Fields{
		"session_id": ctrl.ID(),
		"path":       c.Request.URL.Path,
		"error_type": apperrors.TypeOf(err),
	}).Info(msg)
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure shape shared with the prediction service
func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Success: false,
		Error:   message,
		Type:    string(apperrors.TypeOf(err)),
	})
}
