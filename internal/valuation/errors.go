package valuation

import (
	"errors"
	"fmt"
)

// ErrSimulationCount is returned when the iteration count is outside
// [MinSimulations, MaxSimulations].
var ErrSimulationCount = errors.New("simulation count out of range")

// ValidationError reports a malformed project input. It is returned before
// any sampling happens.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// SamplingError means a derived distribution parameter is unusable. It points
// at a defect upstream of the sampler and is never clamped away.
type SamplingError struct {
	Param string
	Value any
}

func (e *SamplingError) Error() string {
	return fmt.Sprintf("invalid distribution parameter %s = %v", e.Param, e.Value)
}

func invalidEnum(field, value string) *ValidationError {
	return &ValidationError{Field: field, Value: fmt.Sprintf("%q", value), Reason: "not a recognized value"}
}
