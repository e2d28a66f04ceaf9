// internal/util/errors.go
// Error aplikasi standar + pemetaan error kalkulator ke kode/status HTTP.

package util

import (
	"errors"
	"fmt"
	"net/http"

	"petrocalc/internal/services"
)

type AppError struct {
	Code    string // e.g., "bad_input", "insufficient_data", "internal"
	Message string
	Status  int
}

func (e AppError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus: default 500 jika Status belum di-set.
func (e AppError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

func BadInput(msg string) AppError {
	return AppError{Code: "bad_input", Message: msg, Status: http.StatusBadRequest}
}
func NotFound(msg string) AppError {
	return AppError{Code: "not_found", Message: msg, Status: http.StatusNotFound}
}
func Unavailable(msg string) AppError {
	return AppError{Code: "unavailable", Message: msg, Status: http.StatusServiceUnavailable}
}
func Internal(msg string) AppError {
	return AppError{Code: "internal", Message: msg, Status: http.StatusInternalServerError}
}

// Kode error kalkulator (stabil, dipakai klien).
const (
	CodeInsufficientData = "insufficient_data"
	CodeInvalidSample    = "invalid_sample"
	CodeInvalidParameter = "invalid_parameter"
	CodeEmptyDomain      = "empty_domain"
	CodeDegenerateCurve  = "degenerate_curve"
)

var calcCodes = []struct {
	err  error
	code string
}{
	{services.ErrInsufficientData, CodeInsufficientData},
	{services.ErrInvalidSample, CodeInvalidSample},
	{services.ErrInvalidParameter, CodeInvalidParameter},
	{services.ErrEmptyDomain, CodeEmptyDomain},
	{services.ErrDegenerateCurve, CodeDegenerateCurve},
}

// FromCalc memetakan error services.* ke AppError 422; error lain jadi internal (500).
// AppError yang sudah jadi dikembalikan apa adanya.
func FromCalc(err error) AppError {
	var ae AppError
	if errors.As(err, &ae) {
		return ae
	}
	for _, c := range calcCodes {
		if errors.Is(err, c.err) {
			return AppError{Code: c.code, Message: err.Error(), Status: http.StatusUnprocessableEntity}
		}
	}
	return Internal(err.Error())
}
