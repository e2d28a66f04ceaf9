// internal/util/errors_test.go

package util_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"petrocalc/internal/services"
	"petrocalc/internal/util"
)

func TestFromCalc(t *testing.T) {
	_, err := services.FitInflow([]services.WellTestSample{{Rate: 100, Pwf: 1300}}, 1400, services.FitOptions{})
	ae := util.FromCalc(fmt.Errorf("fit: %w", err))
	assert.Equal(t, util.CodeInsufficientData, ae.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ae.HTTPStatus())
	assert.Contains(t, ae.Message, "need at least 2")

	_, err = services.SolveOperatingPoint(nil, nil, 0, services.SolveOptions{})
	assert.Equal(t, util.CodeEmptyDomain, util.FromCalc(err).Code)

	ae = util.FromCalc(errors.New("connection refused"))
	assert.Equal(t, "internal", ae.Code)
	assert.Equal(t, http.StatusInternalServerError, ae.HTTPStatus())

	ae = util.FromCalc(fmt.Errorf("wrapped: %w", util.BadInput("bad json")))
	assert.Equal(t, "bad_input", ae.Code)
	assert.Equal(t, http.StatusBadRequest, ae.HTTPStatus())
}

func TestAppErrorDefaults(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, util.AppError{Code: "x"}.HTTPStatus())
	assert.Equal(t, "not_found: well W-9", util.NotFound("well W-9").Error())
	assert.Equal(t, "plain", util.AppError{Message: "plain"}.Error())
}
