package tools

import (
	"errors"
	"fmt"
)

const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeConfigError    = -32001
)

type ToolError struct {
	Code    int
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("Method not found: %s", name),
	}
}

func NewInvalidParamsError(msg string) *ToolError {
	return &ToolError{
		Code:    CodeInvalidParams,
		Message: fmt.Sprintf("Invalid params: %s", msg),
	}
}

// NewConfigError reports a missing or unreadable workspace file.
func NewConfigError(err error) *ToolError {
	return &ToolError{
		Code:    CodeConfigError,
		Message: err.Error(),
	}
}

func NewToolExecutionError(name string, err error) *ToolError {
	return &ToolError{
		Code:    CodeInternalError,
		Message: fmt.Sprintf("Error executing %s: %v", name, err),
	}
}

// AsToolError returns err as a *ToolError, wrapping anything else as an
// execution error for name.
func AsToolError(name string, err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return NewToolExecutionError(name, err)
}
