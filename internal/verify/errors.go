package verify

import (
	"errors"
	"fmt"
)

// SignalError represents a failure inside one scoring component. The
// orchestrator converts it to the terminal ERROR verdict; it never crosses
// the library boundary.
type SignalError struct {
	Component string
	Message   string
	Cause     error
}

func (e *SignalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Message)
}

func (e *SignalError) Unwrap() error {
	return e.Cause
}

// NewSignalError creates a new signal error.
func NewSignalError(component, message string, cause error) *SignalError {
	return &SignalError{
		Component: component,
		Message:   message,
		Cause:     cause,
	}
}

// DegradedError marks a sub-computation that was skipped without aborting
// the batch, e.g. one similarity comparison against a corrupt image. Callers
// exclude the degraded item and continue.
type DegradedError struct {
	Component string
	Reason    string
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("%s degraded: %s", e.Component, e.Reason)
}

// NewDegradedError creates a new degraded error.
func NewDegradedError(component, reason string) *DegradedError {
	return &DegradedError{Component: component, Reason: reason}
}

// IsDegraded checks whether an error is a recoverable per-item degradation
// rather than a component failure.
func IsDegraded(err error) bool {
	var degraded *DegradedError
	return errors.As(err, &degraded)
}

// AggregationError represents one external evidence bucket failing to load.
// The collector maps it to an empty bucket, never a failed request.
type AggregationError struct {
	Bucket string
	Cause  error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("evidence bucket %s failed: %v", e.Bucket, e.Cause)
}

func (e *AggregationError) Unwrap() error {
	return e.Cause
}

// NewAggregationError creates a new aggregation error.
func NewAggregationError(bucket string, cause error) *AggregationError {
	return &AggregationError{Bucket: bucket, Cause: cause}
}
