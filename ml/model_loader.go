package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	ArtifactFormatVersion = 1

	RegressorGradientBoosting = "gradient_boosting"
	RegressorLinear           = "linear"
)

// Artifact is the on-disk form of a Pipeline.
type Artifact struct {
	FormatVersion    int                 `json:"format_version"`
	Name             string              `json:"name"`
	FeatureTransform string              `json:"feature_transform"`
	Columns          []string            `json:"columns"`
	Numeric          []NumericStats      `json:"numeric"`
	Categorical      CategoricalEncoding `json:"categorical"`
	Regressor        RegressorSpec       `json:"regressor"`
}

type RegressorSpec struct {
	Type string `json:"type"`

	Baseline     float64      `json:"baseline,omitempty"`
	LearningRate float64      `json:"learning_rate,omitempty"`
	Trees        [][]TreeNode `json:"trees,omitempty"`

	Intercept    float64   `json:"intercept,omitempty"`
	Coefficients []float64 `json:"coefficients,omitempty"`
}

// LoadModel loads the artifact at path and checks it holds the configured regressor
// type. An empty modelType accepts any supported type.
func LoadModel(modelType, path string) (*Pipeline, error) {
	pipeline, err := LoadPipeline(path)
	if err != nil {
		return nil, err
	}
	if modelType != "" && pipeline.RegressorType() != modelType {
		return nil, fmt.Errorf("%w: artifact holds %q, config expects %q", ErrUnsupportedRegressor, pipeline.RegressorType(), modelType)
	}
	return pipeline, nil
}

func LoadPipeline(path string) (*Pipeline, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact %s: %w", path, err)
	}
	pipeline, err := NewPipeline(artifact)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return pipeline, nil
}

// NewPipeline validates an artifact against the schema this build produces and binds
// its feature transform.
func NewPipeline(artifact Artifact) (*Pipeline, error) {
	if artifact.FormatVersion != ArtifactFormatVersion {
		return nil, fmt.Errorf("unsupported format version %d", artifact.FormatVersion)
	}
	transform, err := LookupTransform(artifact.FeatureTransform)
	if err != nil {
		return nil, err
	}
	if err := checkColumns(artifact.Columns); err != nil {
		return nil, err
	}
	if err := checkNumericColumns(artifact.Numeric); err != nil {
		return nil, err
	}
	preprocessor, err := NewPreprocessor(artifact.Numeric, artifact.Categorical)
	if err != nil {
		return nil, err
	}
	regressor, err := buildRegressor(artifact.Regressor, preprocessor)
	if err != nil {
		return nil, err
	}
	if regressor.NumFeatures() != preprocessor.Width() {
		return nil, fmt.Errorf("%w: regressor expects %d features, preprocessing yields %d", ErrSchemaMismatch, regressor.NumFeatures(), preprocessor.Width())
	}
	return &Pipeline{
		name:          artifact.Name,
		formatVersion: artifact.FormatVersion,
		transformKey:  artifact.FeatureTransform,
		transform:     transform,
		columns:       append([]string(nil), artifact.Columns...),
		preprocessor:  preprocessor,
		regressor:     regressor,
		regressorType: artifact.Regressor.Type,
	}, nil
}

func buildRegressor(spec RegressorSpec, preprocessor *Preprocessor) (Regressor, error) {
	switch spec.Type {
	case RegressorGradientBoosting:
		trees := make([]*RegressionTree, len(spec.Trees))
		for i, nodes := range spec.Trees {
			trees[i] = NewRegressionTree(nodes)
		}
		return NewGradientBoostedRegressor(spec.Baseline, spec.LearningRate, trees, preprocessor.Width())
	case RegressorLinear:
		for _, stats := range preprocessor.Stats() {
			if isDerivedColumn(stats.Column) && stats.Impute == nil {
				return nil, fmt.Errorf("linear regressor needs an impute value for %s", stats.Column)
			}
		}
		return NewLinearRegressor(spec.Intercept, spec.Coefficients)
	case "":
		return nil, errors.New("regressor type is required")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRegressor, spec.Type)
	}
}

func checkColumns(columns []string) error {
	expected := AugmentedColumns()
	if len(columns) != len(expected) {
		return fmt.Errorf("%w: artifact has %d columns, expected %d", ErrSchemaMismatch, len(columns), len(expected))
	}
	for i, column := range expected {
		if columns[i] != column {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrSchemaMismatch, i, columns[i], column)
		}
	}
	return nil
}

// checkNumericColumns requires one stats entry per numeric column, in schema order.
func checkNumericColumns(numeric []NumericStats) error {
	expected := make([]string, 0, len(AugmentedColumns()))
	for _, column := range AugmentedColumns() {
		if column != ColumnOceanProximity {
			expected = append(expected, column)
		}
	}
	if len(numeric) != len(expected) {
		return fmt.Errorf("%w: artifact has stats for %d numeric columns, expected %d", ErrSchemaMismatch, len(numeric), len(expected))
	}
	for i, column := range expected {
		if numeric[i].Column != column {
			return fmt.Errorf("%w: missing stats for %s", ErrSchemaMismatch, column)
		}
	}
	return nil
}

func isDerivedColumn(column string) bool {
	for _, derived := range DerivedColumns() {
		if column == derived {
			return true
		}
	}
	return false
}
