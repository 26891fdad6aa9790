package config

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter matches every *Error with errors.Is.
var ErrInvalidParameter = errors.New("config: invalid parameter")

// Error reports a parameter that makes a model impossible to initialize.
type Error struct {
	Model  string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: model %q: %s: %s", e.Model, e.Field, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalidParameter
}
