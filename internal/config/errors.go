package config

import "fmt"

// DetectorConfigError reports a detector field outside its accepted domain.
type DetectorConfigError struct {
	Instrument string
	Field      string
	Value      any
	Reason     string
}

func (e *DetectorConfigError) Error() string {
	return fmt.Sprintf("%s detector config: %s=%v: %s", e.Instrument, e.Field, e.Value, e.Reason)
}

// InstrumentConfigError reports an invalid instrument-specific field.
type InstrumentConfigError struct {
	Instrument string
	Field      string
	Value      any
	Reason     string
}

func (e *InstrumentConfigError) Error() string {
	return fmt.Sprintf("%s instrument config: %s=%v: %s", e.Instrument, e.Field, e.Value, e.Reason)
}
