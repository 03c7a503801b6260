package types

import "fmt"

// AgentError is a hard stage failure that aborts the pipeline.
// Its message is surfaced to the caller verbatim.
type AgentError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *AgentError) Error() string {
	return e.Message
}

func (e *AgentError) Unwrap() error {
	return e.Cause
}

// NewAgentError builds an AgentError with a formatted message.
func NewAgentError(stage string, cause error, format string, args ...any) *AgentError {
	return &AgentError{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}
