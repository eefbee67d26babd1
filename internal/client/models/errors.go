package models

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a payload that failed boundary validation.
var ErrInvalid = errors.New("invalid payload")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
