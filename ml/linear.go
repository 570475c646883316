package ml

import (
	"errors"
	"fmt"
	"math"
)

var ErrMissingValue = errors.New("missing value reached regressor")

type LinearRegressor struct {
	Intercept    float64
	Coefficients []float64
}

func NewLinearRegressor(intercept float64, coefficients []float64) (*LinearRegressor, error) {
	if len(coefficients) == 0 {
		return nil, errors.New("linear regressor has no coefficients")
	}
	for i, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("coefficient %d is not finite", i)
		}
	}
	return &LinearRegressor{
		Intercept:    intercept,
		Coefficients: append([]float64(nil), coefficients...),
	}, nil
}

func (l *LinearRegressor) NumFeatures() int {
	return len(l.Coefficients)
}

func (l *LinearRegressor) Predict(features []float64) (float64, error) {
	if len(features) != len(l.Coefficients) {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, len(features), len(l.Coefficients))
	}
	result := l.Intercept
	for i, x := range features {
		if math.IsNaN(x) {
			return 0, fmt.Errorf("%w: feature %d", ErrMissingValue, i)
		}
		result += l.Coefficients[i] * x
	}
	return result, nil
}
