// internal/pipeline/ensemble.go
package pipeline

import (
	"context"
	"fmt"

	"credit-risk-workers/internal/models"
)

// leafNode marks an absent child in the flat node arrays.
const leafNode = -1

// TreeDefinition is one decision tree exported as flat node arrays.
type TreeDefinition struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// EnsembleDefinition is the serialized tree ensemble artifact.
type EnsembleDefinition struct {
	Estimator    string           `json:"estimator"`
	FeatureNames []string         `json:"feature_names"`
	NFeatures    int              `json:"n_features"`
	Classes      []int            `json:"classes"`
	Trees        []TreeDefinition `json:"trees"`
}

// TreeEnsemble averages per-tree class probabilities and predicts the class
// with the highest mean, like a scikit-learn forest.
type TreeEnsemble struct {
	estimator string
	classes   []int
	trees     []TreeDefinition
}

// NewTreeEnsemble checks the definition against FeatureColumns and the
// structural invariants of every tree.
func NewTreeEnsemble(def EnsembleDefinition) (*TreeEnsemble, error) {
	const artifact = "model"

	if def.NFeatures != models.FeatureCount {
		return nil, NewConfigurationError(artifact,
			fmt.Sprintf("model expects %d features, pipeline supplies %d", def.NFeatures, models.FeatureCount), nil)
	}
	if len(def.FeatureNames) != models.FeatureCount {
		return nil, NewConfigurationError(artifact,
			fmt.Sprintf("model lists %d feature names, expected %d", len(def.FeatureNames), models.FeatureCount), nil)
	}
	for i, col := range models.FeatureColumns {
		if def.FeatureNames[i] != string(col) {
			return nil, NewConfigurationError(artifact,
				fmt.Sprintf("column %d is %q in the model but %q in the pipeline", i, def.FeatureNames[i], col), nil)
		}
	}
	if len(def.Classes) < 2 {
		return nil, NewConfigurationError(artifact, "model must have at least two classes", nil)
	}
	if len(def.Trees) == 0 {
		return nil, NewConfigurationError(artifact, "model has no trees", nil)
	}

	for t, tree := range def.Trees {
		if err := checkTree(tree, len(def.Classes)); err != nil {
			return nil, NewConfigurationError(artifact, fmt.Sprintf("tree %d", t), err)
		}
	}

	return &TreeEnsemble{
		estimator: def.Estimator,
		classes:   append([]int(nil), def.Classes...),
		trees:     def.Trees,
	}, nil
}

func checkTree(tree TreeDefinition, nClasses int) error {
	n := len(tree.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(tree.ChildrenRight) != n || len(tree.Feature) != n || len(tree.Threshold) != n || len(tree.Value) != n {
		return fmt.Errorf("node arrays have different lengths")
	}

	for node := 0; node < n; node++ {
		left, right := tree.ChildrenLeft[node], tree.ChildrenRight[node]
		if (left == leafNode) != (right == leafNode) {
			return fmt.Errorf("node %d has exactly one child", node)
		}
		if left == leafNode {
			if len(tree.Value[node]) != nClasses {
				return fmt.Errorf("leaf %d has %d class weights, expected %d", node, len(tree.Value[node]), nClasses)
			}
			continue
		}
		// children always come after their parent, which also rules out cycles
		if left <= node || left >= n || right <= node || right >= n {
			return fmt.Errorf("node %d has out of range children (%d, %d)", node, left, right)
		}
		if f := tree.Feature[node]; f < 0 || f >= models.FeatureCount {
			return fmt.Errorf("node %d splits on feature %d", node, f)
		}
	}
	return nil
}

// Estimator is the name recorded in the artifact, e.g. ExtraTreesClassifier.
func (e *TreeEnsemble) Estimator() string {
	return e.estimator
}

// Classes returns the class labels in probability order.
func (e *TreeEnsemble) Classes() []int {
	return append([]int(nil), e.classes...)
}

// TreeCount is the number of estimators in the ensemble.
func (e *TreeEnsemble) TreeCount() int {
	return len(e.trees)
}

// PredictProba returns the mean class probabilities across all trees.
func (e *TreeEnsemble) PredictProba(vec models.FeatureVector) []float64 {
	proba := make([]float64, len(e.classes))
	for _, tree := range e.trees {
		leaf := walk(tree, vec)
		weights := tree.Value[leaf]

		var total float64
		for _, w := range weights {
			total += w
		}
		if total <= 0 {
			continue
		}
		for c, w := range weights {
			proba[c] += w / total
		}
	}

	for c := range proba {
		proba[c] /= float64(len(e.trees))
	}
	return proba
}

// Predict returns the class label with the highest mean probability. Ties go
// to the lowest class index.
func (e *TreeEnsemble) Predict(_ context.Context, vec models.FeatureVector) (int, error) {
	proba := e.PredictProba(vec)
	best := 0
	for c := 1; c < len(proba); c++ {
		if proba[c] > proba[best] {
			best = c
		}
	}
	return e.classes[best], nil
}

func walk(tree TreeDefinition, vec models.FeatureVector) int {
	node := 0
	for tree.ChildrenLeft[node] != leafNode {
		if vec[tree.Feature[node]] <= tree.Threshold[node] {
			node = tree.ChildrenLeft[node]
		} else {
			node = tree.ChildrenRight[node]
		}
	}
	return node
}
