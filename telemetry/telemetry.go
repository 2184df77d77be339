// Package telemetry accepts access events from clients and exposes service
// metrics. The engine never blocks on telemetry: events are acknowledged
// immediately and handed to an Emitter.
package telemetry

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccessEvent records that a caller resolved or fetched a moniker. Extra data
// is carried opaquely in the "attributes" object; other unknown top-level
// fields are dropped when the event is decoded.
type AccessEvent struct {
	EventID    string                 `json:"event_id"`
	Moniker    string                 `json:"moniker"`
	UserID     string                 `json:"user_id"`
	Operation  string                 `json:"operation"`
	SourceType string                 `json:"source_type,omitempty"`
	ReceivedAt time.Time              `json:"received_at"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Emitter receives access events. Implementations must not block the caller.
type Emitter interface {
	EmitAccess(event AccessEvent)
}

// LogEmitter logs events at debug level and counts them in the service
// metrics. It is the default emitter; external sinks replace it.
type LogEmitter struct {
	logger  *zap.SugaredLogger
	metrics *Metrics
}

// NewLogEmitter creates the default emitter
func NewLogEmitter(logger *zap.SugaredLogger, metrics *Metrics) *LogEmitter {
	return &LogEmitter{logger: logger, metrics: metrics}
}

// EmitAccess implements Emitter
func (e *LogEmitter) EmitAccess(event AccessEvent) {
	e.logger.Debugw("Access event",
		"event_id", event.EventID,
		"moniker", event.Moniker,
		"user_id", event.UserID,
		"operation", event.Operation,
	)
	if e.metrics != nil {
		e.metrics.AccessEvents.WithLabelValues(event.Operation).Inc()
	}
}

// StampEvent fills the event identity and receipt time
func StampEvent(event *AccessEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	if event.UserID == "" {
		event.UserID = "anonymous"
	}
}
