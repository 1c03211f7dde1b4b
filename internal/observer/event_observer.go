package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is something that happened to a session
type Event struct {
	Type         EventType              `json:"event_type"`
	Timestamp    time.Time              `json:"timestamp"`
	SessionID    string                 `json:"session_id"`
	Filename     string                 `json:"filename,omitempty"`
	Prakriti     string                 `json:"prakriti,omitempty"`
	Duration     time.Duration          `json:"duration,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of session event
type EventType string

const (
	// SelectionAccepted when a photo is stored for analysis
	SelectionAccepted EventType = "selection_accepted"
	// SelectionRejected when a chosen file is not a usable image
	SelectionRejected EventType = "selection_rejected"
	// PredictionStarted when a request is sent to the prediction service
	PredictionStarted EventType = "prediction_started"
	// PredictionCompleted when the service returns a classification
	PredictionCompleted EventType = "prediction_completed"
	// PredictionFailed when the request fails or the service reports an error
	PredictionFailed EventType = "prediction_failed"
	// SessionReset when a result is dismissed
	SessionReset EventType = "session_reset"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event Event)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event Event)
}

// LoggingObserver logs session events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent logs the event at a level matching its outcome
func (o *LoggingObserver) OnEvent(ctx context.Context, event Event) {
	fields := logrus.Fields{
		"event_type": event.Type,
		"session_id": event.SessionID,
	}
	if event.Filename != "" {
		fields["filename"] = event.Filename
	}
	if event.Prakriti != "" {
		fields["prakriti"] = event.Prakriti
	}
	if event.Duration > 0 {
		fields["duration"] = event.Duration.String()
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.Type {
	case PredictionStarted:
		entry.Info("Prediction started")
	case PredictionCompleted:
		entry.Info("Prediction completed")
	case PredictionFailed:
		entry.Warn("Prediction failed")
	case SelectionAccepted:
		entry.Debug("Photo selected")
	case SelectionRejected:
		entry.Info("Selection rejected")
	case SessionReset:
		entry.Debug("Session reset")
	default:
		entry.Info("Session event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Metrics is a point-in-time copy of the counters
type Metrics struct {
	Selections           int64            `json:"selections"`
	RejectedSelections   int64            `json:"rejected_selections"`
	PredictionsStarted   int64            `json:"predictions_started"`
	PredictionsCompleted int64            `json:"predictions_completed"`
	PredictionsFailed    int64            `json:"predictions_failed"`
	Resets               int64            `json:"resets"`
	ByPrakriti           map[string]int64 `json:"by_prakriti"`
	TotalPredictionTime  string           `json:"total_prediction_time"`
	AvgPredictionTime    string           `json:"avg_prediction_time"`
}

// MetricsObserver counts session events
type MetricsObserver struct {
	mu                  sync.RWMutex
	selections          int64
	rejectedSelections  int64
	started             int64
	completed           int64
	failed              int64
	resets              int64
	byPrakriti          map[string]int64
	totalPredictionTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{
		byPrakriti: make(map[string]int64),
	}
}

// OnEvent updates the counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event Event) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.Type {
	case SelectionAccepted:
		o.selections++
	case SelectionRejected:
		o.rejectedSelections++
	case PredictionStarted:
		o.started++
	case PredictionCompleted:
		o.completed++
		o.totalPredictionTime += event.Duration
		if event.Prakriti != "" {
			o.byPrakriti[event.Prakriti]++
		}
	case PredictionFailed:
		o.failed++
	case SessionReset:
		o.resets++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() Metrics {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avg := time.Duration(0)
	if o.completed > 0 {
		avg = o.totalPredictionTime / time.Duration(o.completed)
	}

	byPrakriti := make(map[string]int64, len(o.byPrakriti))
	for k, v := range o.byPrakriti {
		byPrakriti[k] = v
	}

	return Metrics{
		Selections:           o.selections,
		RejectedSelections:   o.rejectedSelections,
		PredictionsStarted:   o.started,
		PredictionsCompleted: o.completed,
		PredictionsFailed:    o.failed,
		Resets:               o.resets,
		ByPrakriti:           byPrakriti,
		TotalPredictionTime:  o.totalPredictionTime.String(),
		AvgPredictionTime:    avg.String(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event. Observers run
// concurrently and never block the caller.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.pending.Add(1)
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Wait blocks until every notification sent so far has been handled
func (p *EventPublisher) Wait() {
	p.pending.Wait()
}
