// internal/services/errors.go
// Taksonomi error validasi untuk semua kalkulator.

package services

import (
	"errors"
	"fmt"
)

// Semua error di bawah ini adalah kegagalan precondition lokal; tidak ada yang retryable.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidSample    = errors.New("invalid sample")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrEmptyDomain      = errors.New("empty domain")
	ErrDegenerateCurve  = errors.New("degenerate curve")
)

func wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

func insufficient(format string, args ...any) error {
	return wrapf(ErrInsufficientData, format, args...)
}

func invalidSample(format string, args ...any) error {
	return wrapf(ErrInvalidSample, format, args...)
}

func invalidParam(format string, args ...any) error {
	return wrapf(ErrInvalidParameter, format, args...)
}
