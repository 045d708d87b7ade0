package strategy

import (
	"errors"
	"fmt"
)

// ErrInvalidAssumption is matched by every InvalidAssumptionError.
var ErrInvalidAssumption = errors.New("invalid assumption")

// InvalidAssumptionError reports a structurally invalid engine input.
type InvalidAssumptionError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidAssumptionError) Error() string {
	return fmt.Sprintf("invalid assumption %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidAssumptionError) Unwrap() error { return ErrInvalidAssumption }
