package ml

import (
	"errors"
	"fmt"
	"math"
)

// NumericStats describes how one numeric column is imputed and scaled.
type NumericStats struct {
	Column string   `json:"column"`
	Impute *float64 `json:"impute,omitempty"`
	Mean   float64  `json:"mean"`
	Scale  float64  `json:"scale"`
}

type CategoricalEncoding struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
}

// Preprocessor encodes augmented records into the regressor's input layout:
// numeric columns (imputed, standardized) followed by the one-hot categories.
type Preprocessor struct {
	numeric     []NumericStats
	categorical CategoricalEncoding
}

func NewPreprocessor(numeric []NumericStats, categorical CategoricalEncoding) (*Preprocessor, error) {
	if len(numeric) == 0 {
		return nil, errors.New("numeric stats is empty")
	}
	seen := make(map[string]bool, len(numeric))
	probe := AugmentedRecord{}
	for _, stats := range numeric {
		if _, ok := probe.Column(stats.Column); !ok {
			return nil, fmt.Errorf("%w: unknown numeric column %q", ErrSchemaMismatch, stats.Column)
		}
		if seen[stats.Column] {
			return nil, fmt.Errorf("duplicate stats for %s", stats.Column)
		}
		seen[stats.Column] = true
		if math.IsNaN(stats.Mean) || math.IsInf(stats.Mean, 0) || math.IsNaN(stats.Scale) || math.IsInf(stats.Scale, 0) {
			return nil, fmt.Errorf("stats for %s are not finite", stats.Column)
		}
		if stats.Impute != nil && (math.IsNaN(*stats.Impute) || math.IsInf(*stats.Impute, 0)) {
			return nil, fmt.Errorf("impute value for %s is not finite", stats.Column)
		}
	}
	if categorical.Column != ColumnOceanProximity {
		return nil, fmt.Errorf("%w: unsupported categorical column %q", ErrSchemaMismatch, categorical.Column)
	}
	if len(categorical.Categories) == 0 {
		return nil, errors.New("categorical encoding has no categories")
	}
	categories := make(map[string]bool, len(categorical.Categories))
	for _, category := range categorical.Categories {
		if categories[category] {
			return nil, fmt.Errorf("duplicate category %q", category)
		}
		categories[category] = true
	}
	return &Preprocessor{
		numeric: append([]NumericStats(nil), numeric...),
		categorical: CategoricalEncoding{
			Column:     categorical.Column,
			Categories: append([]string(nil), categorical.Categories...),
		},
	}, nil
}

func (p *Preprocessor) Width() int {
	return len(p.numeric) + len(p.categorical.Categories)
}

// FeatureNames names each slot of an encoded vector.
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.Width())
	for _, stats := range p.numeric {
		names = append(names, stats.Column)
	}
	for _, category := range p.categorical.Categories {
		names = append(names, p.categorical.Column+"_"+category)
	}
	return names
}

func (p *Preprocessor) Stats() []NumericStats {
	return append([]NumericStats(nil), p.numeric...)
}

func (p *Preprocessor) Encode(record AugmentedRecord) ([]float64, error) {
	vector := make([]float64, 0, p.Width())
	for _, stats := range p.numeric {
		value, ok := record.Column(stats.Column)
		if !ok {
			return nil, fmt.Errorf("%w: missing column %s", ErrSchemaMismatch, stats.Column)
		}
		if math.IsNaN(value) && stats.Impute != nil {
			value = *stats.Impute
		}
		vector = append(vector, standardize(value, stats.Mean, stats.Scale))
	}
	for _, category := range p.categorical.Categories {
		if string(record.OceanProximity) == category {
			vector = append(vector, 1)
		} else {
			vector = append(vector, 0)
		}
	}
	return vector, nil
}

func (p *Preprocessor) Transform(records []AugmentedRecord) ([][]float64, error) {
	if len(records) == 0 {
		return nil, errors.New("records is empty")
	}
	vectors := make([][]float64, len(records))
	for i, record := range records {
		vector, err := p.Encode(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// standardize keeps NaN as NaN so trees can route it.
func standardize(value, mean, scale float64) float64 {
	if scale == 0 {
		scale = 1
	}
	return (value - mean) / scale
}
