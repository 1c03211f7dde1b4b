package container

import (
	"context"
	"net/http"
	"time"

	"go-prakriti-web/internal/analyzer"
	"go-prakriti-web/internal/catalog"
	"go-prakriti-web/internal/config"
	"go-prakriti-web/internal/logger"
	"go-prakriti-web/internal/observer"
	"go-prakriti-web/internal/predictor"
	"go-prakriti-web/internal/service"
	"go-prakriti-web/internal/session"
	"go-prakriti-web/internal/transport"
)

// maxSweepInterval caps how long an expired session may linger
const maxSweepInterval = time.Minute

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	catalog         *catalog.Catalog
	predictor       predictor.Predictor
	analysisService service.AnalysisService
	publisher       *observer.EventPublisher
	metrics         *observer.MetricsObserver
	sessions        *session.Store
	handler         http.Handler

	stopJanitor context.CancelFunc
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	types := catalog.Default()

	p := predictor.NewHTTPPredictor(cfg.PredictAPIURL, cfg.PredictTimeout)
	analysisService := service.NewAnalysisService(
		p,
		analyzer.NewPhotoAnalyzer(nil),
		cfg.MaxUploadSize,
		cfg.PreviewMaxDimension,
	)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	sessions := session.NewStore(analysisService, publisher, cfg.SessionTTL, cfg.MaxSessions)

	handler := transport.NewHandler(transport.Dependencies{
		Config:   cfg,
		Service:  analysisService,
		Sessions: sessions,
		Catalog:  types,
		Metrics:  metrics,
	})

	return &Container{
		config:          cfg,
		catalog:         types,
		predictor:       p,
		analysisService: analysisService,
		publisher:       publisher,
		metrics:         metrics,
		sessions:        sessions,
		handler:         handler,
	}, nil
}

// Start launches the background session janitor
func (c *Container) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.stopJanitor = cancel

	interval := c.config.SessionTTL / 2
	if interval > maxSweepInterval {
		interval = maxSweepInterval
	}
	go c.sessions.RunJanitor(ctx, interval)
}

// Close stops the janitor and waits for in-flight predictions and event
// delivery, or until ctx is done.
func (c *Container) Close(ctx context.Context) error {
	if c.stopJanitor != nil {
		c.stopJanitor()
	}

	done := make(chan struct{})
	go func() {
		c.sessions.Wait()
		c.publisher.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Catalog returns the prakriti catalog
func (c *Container) Catalog() *catalog.Catalog {
	return c.catalog
}

// Sessions returns the session store
func (c *Container) Sessions() *session.Store {
	return c.sessions
}
