package workspace

import (
	"errors"
	"fmt"
)

var ErrConfigNotFound = errors.New("workspace config not found")

type ConfigParseError struct {
	Path string
	Err  error
}

func (e *ConfigParseError) Error() string {
	return fmt.Sprintf("parse workspace config %s: %v", e.Path, e.Err)
}

func (e *ConfigParseError) Unwrap() error {
	return e.Err
}

// PatternError reports a glob pattern that could not be expanded. Other
// patterns in the same pass are unaffected.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("expand pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err means the workspace definition itself is
// unusable, as opposed to a partial discovery failure.
func IsConfigError(err error) bool {
	var perr *ConfigParseError
	return errors.Is(err, ErrConfigNotFound) || errors.As(err, &perr)
}
