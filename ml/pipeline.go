package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var (
	ErrSchemaMismatch       = errors.New("schema mismatch")
	ErrUnsupportedRegressor = errors.New("unsupported regressor type")
)

// Pipeline is a loaded regression artifact: feature transform, preprocessing and
// regressor. It is immutable after LoadPipeline returns and safe for concurrent use.
type Pipeline struct {
	name          string
	formatVersion int
	transformKey  string
	transform     FeatureTransform
	columns       []string
	preprocessor  *Preprocessor
	regressor     Regressor
	regressorType string
}

type PipelineInfo struct {
	Name             string   `json:"name"`
	FormatVersion    int      `json:"format_version"`
	FeatureTransform string   `json:"feature_transform"`
	Columns          []string `json:"columns"`
	EncodedFeatures  []string `json:"encoded_features"`
	RegressorType    string   `json:"regressor_type"`
}

func (p *Pipeline) Info() PipelineInfo {
	return PipelineInfo{
		Name:             p.name,
		FormatVersion:    p.formatVersion,
		FeatureTransform: p.transformKey,
		Columns:          append([]string(nil), p.columns...),
		EncodedFeatures:  p.preprocessor.FeatureNames(),
		RegressorType:    p.regressorType,
	}
}

func (p *Pipeline) RegressorType() string {
	return p.regressorType
}

func (p *Pipeline) Predict(ctx context.Context, record HousingRecord) (float64, error) {
	predictions, err := p.PredictBatch(ctx, []HousingRecord{record})
	if err != nil {
		return 0, err
	}
	return predictions[0], nil
}

func (p *Pipeline) PredictBatch(ctx context.Context, records []HousingRecord) ([]float64, error) {
	if len(records) == 0 {
		return nil, errors.New("records is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	augmented := p.transform(records)
	if len(augmented) != len(records) {
		return nil, fmt.Errorf("%w: transform %s returned %d rows for %d records", ErrSchemaMismatch, p.transformKey, len(augmented), len(records))
	}
	vectors, err := p.preprocessor.Transform(augmented)
	if err != nil {
		return nil, err
	}
	predictions := make([]float64, len(vectors))
	for i, vector := range vectors {
		prediction, err := p.regress(vector)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		predictions[i] = prediction
	}
	return predictions, nil
}

// PredictAugmented runs a record that already carries its derived columns.
func (p *Pipeline) PredictAugmented(ctx context.Context, record AugmentedRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	vector, err := p.preprocessor.Encode(record)
	if err != nil {
		return 0, err
	}
	return p.regress(vector)
}

func (p *Pipeline) regress(vector []float64) (float64, error) {
	prediction, err := p.regressor.Predict(vector)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(prediction) || math.IsInf(prediction, 0) {
		return 0, errors.New("regressor returned a non-finite value")
	}
	return prediction, nil
}
