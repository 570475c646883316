package ml

import "context"

// Regressor maps an encoded feature vector to a scalar.
type Regressor interface {
	Predict(features []float64) (float64, error)
	// NumFeatures is the vector length the regressor expects.
	NumFeatures() int
}

// Predictor is the request-path view of a loaded pipeline.
type Predictor interface {
	Predict(ctx context.Context, record HousingRecord) (float64, error)
}
