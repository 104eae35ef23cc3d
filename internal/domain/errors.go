package domain

import "fmt"

// DataError reports malformed or inconsistent input: unequal weather series
// arrays, an unresolvable timezone, out-of-order timestamps. It is fatal to
// normalization: no aggregation starts on a payload that fails it.
type DataError struct {
	Reason string
}

func (e *DataError) Error() string {
	return "invalid payload: " + e.Reason
}

func dataErrorf(format string, args ...any) *DataError {
	return &DataError{Reason: fmt.Sprintf(format, args...)}
}

// ConfigError reports scoring misconfiguration, such as composite weights
// that do not sum to 1.0. It is fatal at startup, never per bucket.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid scoring config: " + e.Reason
}
