package verify

import (
	"incident-verifier/internal/logger"

	"github.com/sirupsen/logrus"
)

// Observer receives engine checkpoints. The engine never writes to the
// console itself; presentation decides what to do with these events.
type Observer interface {
	// SignalComputed fires after one scorer or checker finishes.
	SignalComputed(source string, fields map[string]interface{})

	// FusionComputed fires once the fused verdict is assembled.
	FusionComputed(verdict VerdictType, score float64, fields map[string]interface{})
}

// LogObserver logs checkpoints through the shared structured logger.
type LogObserver struct {
	log           *logrus.Logger
	correlationID string
}

// NewLogObserver creates an observer bound to a correlation ID.
func NewLogObserver(correlationID string) *LogObserver {
	return &LogObserver{
		log:           logger.Log,
		correlationID: correlationID,
	}
}

func (o *LogObserver) SignalComputed(source string, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["source"] = source
	fields["correlation_id"] = o.correlationID
	o.log.WithFields(fields).Info("Verification signal computed")
}

func (o *LogObserver) FusionComputed(verdict VerdictType, score float64, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["verdict"] = string(verdict)
	fields["authenticity_score"] = score
	fields["correlation_id"] = o.correlationID
	o.log.WithFields(fields).Info("Evidence fusion computed")
}

// NopObserver discards all checkpoints.
type NopObserver struct{}

func (NopObserver) SignalComputed(string, map[string]interface{})            {}
func (NopObserver) FusionComputed(VerdictType, float64, map[string]interface{}) {}
