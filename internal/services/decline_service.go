// internal/services/decline_service.go
// Decline curve analysis (Arps): forecast, EUR, fit eksponensial dari histori.

package services

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

type DeclineModel string

const (
	DeclineExponential DeclineModel = "exponential"
	DeclineHarmonic    DeclineModel = "harmonic"
	DeclineHyperbolic  DeclineModel = "hyperbolic"
)

func ParseDeclineModel(s string) (DeclineModel, error) {
	switch DeclineModel(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeclineExponential:
		return DeclineExponential, nil
	case DeclineHarmonic:
		return DeclineHarmonic, nil
	case DeclineHyperbolic:
		return DeclineHyperbolic, nil
	}
	return "", invalidParam("unknown decline model %q", s)
}

// DeclineForecast: seri waktu (bulan) dan rate, plus EUR (integral trapezoid).
type DeclineForecast struct {
	Model DeclineModel `json:"model"`
	Qi    float64      `json:"qi"`
	D     float64      `json:"d"`
	B     float64      `json:"b,omitempty"`
	Time  []float64    `json:"time"`
	Rate  []float64    `json:"rate"`
	EUR   float64      `json:"eur"`
}

// DeclineRate mengevaluasi q(t) untuk satu model.
func DeclineRate(model DeclineModel, qi, d, b, t float64) (float64, error) {
	switch model {
	case DeclineExponential:
		return qi * math.Exp(-d*t), nil
	case DeclineHarmonic:
		return qi / (1 + d*t), nil
	case DeclineHyperbolic:
		if b == 0 {
			return 0, invalidParam("hyperbolic exponent b must be non-zero; use the exponential model for b=0")
		}
		return qi / math.Pow(1+b*d*t, 1/b), nil
	}
	return 0, invalidParam("unknown decline model %q", model)
}

// ForecastDecline membuat forecast pada grid t = 0, 1, …, tEnd (bulan).
func ForecastDecline(model DeclineModel, qi, d, b float64, tEnd int) (DeclineForecast, error) {
	if qi < 0 || math.IsNaN(qi) || math.IsInf(qi, 0) {
		return DeclineForecast{}, invalidParam("qi must be non-negative, got %v", qi)
	}
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		return DeclineForecast{}, invalidParam("decline rate D must be non-negative, got %v", d)
	}
	if math.IsNaN(b) || math.IsInf(b, 0) || b < 0 {
		return DeclineForecast{}, invalidParam("hyperbolic exponent b must be non-negative, got %v", b)
	}
	if tEnd < 0 {
		return DeclineForecast{}, invalidParam("forecast horizon must be non-negative, got %d", tEnd)
	}
	if model == DeclineHyperbolic && b == 0 {
		return DeclineForecast{}, invalidParam("hyperbolic exponent b must be non-zero; use the exponential model for b=0")
	}

	ts := make([]float64, tEnd+1)
	qs := make([]float64, tEnd+1)
	for i := range ts {
		ts[i] = float64(i)
		q, err := DeclineRate(model, qi, d, b, ts[i])
		if err != nil {
			return DeclineForecast{}, err
		}
		qs[i] = q
	}
	fc := DeclineForecast{Model: model, Qi: qi, D: d, Time: ts, Rate: qs}
	if model == DeclineHyperbolic {
		fc.B = b
	}
	if len(ts) >= 2 {
		fc.EUR = integrate.Trapezoidal(ts, qs)
	}
	return fc, nil
}

// ProductionPoint: satu titik histori produksi, T dalam bulan sejak titik pertama.
type ProductionPoint struct {
	T    float64 `json:"t"`
	Rate float64 `json:"rate"`
}

// DeclineFit: hasil regresi ln(q) = ln(qi) − D·t.
type DeclineFit struct {
	Qi     float64 `json:"qi"`
	D      float64 `json:"d"`
	R2     float64 `json:"r2"`
	Points int     `json:"points"`
}

// FitExponentialDecline mencocokkan decline eksponensial; rate ≤ 0 diabaikan.
func FitExponentialDecline(history []ProductionPoint) (DeclineFit, error) {
	ts := make([]float64, 0, len(history))
	lq := make([]float64, 0, len(history))
	for _, p := range history {
		if !(p.Rate > 0) || math.IsInf(p.Rate, 0) || math.IsNaN(p.T) {
			continue
		}
		ts = append(ts, p.T)
		lq = append(lq, math.Log(p.Rate))
	}
	if len(ts) < 2 {
		return DeclineFit{}, insufficient("need at least 2 positive production points, got %d", len(ts))
	}
	if !distinct(ts) {
		return DeclineFit{}, insufficient("production points must span more than one time value")
	}
	alpha, beta := stat.LinearRegression(ts, lq, nil, false)
	fit := DeclineFit{
		Qi:     math.Exp(alpha),
		D:      -beta,
		R2:     stat.RSquared(ts, lq, nil, alpha, beta),
		Points: len(ts),
	}
	if fit.D < 0 {
		return DeclineFit{}, invalidSample("production is increasing (D=%.4g); no decline to fit", fit.D)
	}
	return fit, nil
}

// WriteForecastCSV menulis kolom time_months, rate_stbd.
func WriteForecastCSV(w io.Writer, fc DeclineForecast) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time_months", "rate_stbd"}); err != nil {
		return err
	}
	for i := range fc.Time {
		if err := cw.Write([]string{strconv.Itoa(int(fc.Time[i])), formatFloat(fc.Rate[i])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
