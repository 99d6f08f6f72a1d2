package agent

import "fmt"

// MalformedOutputError indicates the generation service returned text that
// failed parsing or schema validation for a stage. Fatal to that target's
// assessment; surfaced, never silently swallowed or retried here.
type MalformedOutputError struct {
	Stage string
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s stage returned malformed output: %v", e.Stage, e.Cause)
	}
	return fmt.Sprintf("%s stage returned malformed output", e.Stage)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// MissingConfigurationError indicates required input (source identity,
// target) is absent. Raised before any external call is attempted.
type MissingConfigurationError struct {
	What string
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("missing configuration: %s", e.What)
}

// StageError wraps a generation-service failure within a named stage.
type StageError struct {
	Stage string
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
