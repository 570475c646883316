package ml

import (
	"errors"
	"fmt"
	"math"
)

// TreeNode is one entry of a flattened tree. Children always sit after their parent.
type TreeNode struct {
	FeatureIdx    int     `json:"feature_idx"`
	Threshold     float64 `json:"threshold"`
	LeftChild     int     `json:"left_child"`
	RightChild    int     `json:"right_child"`
	MissingGoLeft bool    `json:"missing_go_left"`
	Value         float64 `json:"value"`
	IsLeaf        bool    `json:"is_leaf"`
}

type RegressionTree struct {
	nodes []TreeNode
}

func NewRegressionTree(nodes []TreeNode) *RegressionTree {
	return &RegressionTree{nodes: append([]TreeNode(nil), nodes...)}
}

func (t *RegressionTree) Validate(numFeatures int) error {
	if len(t.nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range t.nodes {
		if node.IsLeaf {
			if math.IsNaN(node.Value) || math.IsInf(node.Value, 0) {
				return fmt.Errorf("node %d: leaf value is not finite", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= numFeatures {
			return fmt.Errorf("node %d: feature index %d out of range [0,%d)", i, node.FeatureIdx, numFeatures)
		}
		if node.LeftChild <= i || node.LeftChild >= len(t.nodes) {
			return fmt.Errorf("node %d: invalid left child %d", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(t.nodes) {
			return fmt.Errorf("node %d: invalid right child %d", i, node.RightChild)
		}
	}
	return nil
}

// Predict walks the tree. NaN features follow MissingGoLeft.
func (t *RegressionTree) Predict(features []float64) (float64, error) {
	if len(t.nodes) == 0 {
		return 0, errors.New("tree has no nodes")
	}
	idx := 0
	for {
		node := t.nodes[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		value := features[node.FeatureIdx]
		goLeft := value <= node.Threshold
		if math.IsNaN(value) {
			goLeft = node.MissingGoLeft
		}
		next := node.RightChild
		if goLeft {
			next = node.LeftChild
		}
		if next <= idx || next >= len(t.nodes) {
			return 0, errors.New("invalid tree state")
		}
		idx = next
	}
}

// GradientBoostedRegressor sums tree outputs on top of a baseline, the way a
// histogram gradient boosting model is evaluated.
type GradientBoostedRegressor struct {
	Baseline     float64
	LearningRate float64
	Trees        []*RegressionTree

	numFeatures int
}

func NewGradientBoostedRegressor(baseline, learningRate float64, trees []*RegressionTree, numFeatures int) (*GradientBoostedRegressor, error) {
	if len(trees) == 0 {
		return nil, errors.New("gradient boosting ensemble has no trees")
	}
	if learningRate == 0 {
		learningRate = 1
	}
	if math.IsNaN(baseline) || math.IsInf(baseline, 0) {
		return nil, errors.New("baseline is not finite")
	}
	for i, tree := range trees {
		if err := tree.Validate(numFeatures); err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return &GradientBoostedRegressor{
		Baseline:     baseline,
		LearningRate: learningRate,
		Trees:        trees,
		numFeatures:  numFeatures,
	}, nil
}

func (g *GradientBoostedRegressor) NumFeatures() int {
	return g.numFeatures
}

func (g *GradientBoostedRegressor) Predict(features []float64) (float64, error) {
	if len(features) != g.numFeatures {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, len(features), g.numFeatures)
	}
	sum := 0.0
	for i, tree := range g.Trees {
		value, err := tree.Predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += value
	}
	return g.Baseline + g.LearningRate*sum, nil
}
