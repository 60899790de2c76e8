// internal/pipeline/ensemble_test.go
package pipeline

import (
	"context"
	"testing"

	"credit-risk-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeEnsemble_PredictProba(t *testing.T) {
	ens := createTestEnsemble(t)

	tests := []struct {
		name          string
		vec           models.FeatureVector
		expectedProba []float64
		expectedClass int
	}{
		{
			name:          "both trees lean low risk",
			vec:           models.FeatureVector{35, 1, 2, 1, 0, 0, 1000, 12},
			expectedProba: []float64{0.4, 0.6},
			expectedClass: 1,
		},
		{
			name:          "long duration",
			vec:           models.FeatureVector{35, 1, 2, 1, 0, 0, 1000, 48},
			expectedProba: []float64{0.75, 0.25},
			expectedClass: 0,
		},
		{
			name:          "tie goes to the first class",
			vec:           models.FeatureVector{35, 1, 2, 1, 0, 1, 1000, 48},
			expectedProba: []float64{0.5, 0.5},
			expectedClass: 0,
		},
		{
			name:          "threshold is inclusive on the left",
			vec:           models.FeatureVector{35, 1, 2, 1, 0, 2, 1000, 24},
			expectedProba: []float64{0.15, 0.85},
			expectedClass: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proba := ens.PredictProba(tt.vec)
			require.Len(t, proba, 2)
			assert.InDelta(t, tt.expectedProba[0], proba[0], 1e-9)
			assert.InDelta(t, tt.expectedProba[1], proba[1], 1e-9)

			label, err := ens.Predict(context.Background(), tt.vec)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedClass, label)
		})
	}
}

func TestTreeEnsemble_Metadata(t *testing.T) {
	ens := createTestEnsemble(t)
	assert.Equal(t, "ExtraTreesClassifier", ens.Estimator())
	assert.Equal(t, 2, ens.TreeCount())

	classes := ens.Classes()
	classes[0] = 42
	assert.Equal(t, []int{0, 1}, ens.Classes())
}

func TestTreeEnsemble_DeeperTree(t *testing.T) {
	def := createTestEnsembleDefinition()
	// Credit amount <= 5000 ? (Age <= 25 ? high : low) : high
	def.Trees = []TreeDefinition{{
		ChildrenLeft:  []int{1, 2, -1, -1, -1},
		ChildrenRight: []int{4, 3, -1, -1, -1},
		Feature:       []int{6, 0, -2, -2, -2},
		Threshold:     []float64{5000, 25, -2, -2, -2},
		Value:         [][]float64{{0, 0}, {0, 0}, {3, 1}, {1, 3}, {5, 0}},
	}}
	ens, err := NewTreeEnsemble(def)
	require.NoError(t, err)

	young := models.FeatureVector{22, 0, 1, 2, 0, 0, 3000, 12}
	older := models.FeatureVector{40, 0, 1, 2, 0, 0, 3000, 12}
	large := models.FeatureVector{40, 0, 1, 2, 0, 0, 9000, 12}

	for vec, want := range map[models.FeatureVector]int{young: 0, older: 1, large: 0} {
		got, err := ens.Predict(context.Background(), vec)
		require.NoError(t, err)
		assert.Equal(t, want, got, "vector %v", vec)
	}
}

func TestNewTreeEnsemble_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(def *EnsembleDefinition)
	}{
		{
			name:   "wrong feature count",
			mutate: func(d *EnsembleDefinition) { d.NFeatures = 7 },
		},
		{
			name: "reordered columns",
			mutate: func(d *EnsembleDefinition) {
				d.FeatureNames[0], d.FeatureNames[1] = d.FeatureNames[1], d.FeatureNames[0]
			},
		},
		{
			name:   "missing feature names",
			mutate: func(d *EnsembleDefinition) { d.FeatureNames = d.FeatureNames[:7] },
		},
		{
			name:   "single class",
			mutate: func(d *EnsembleDefinition) { d.Classes = []int{1} },
		},
		{
			name:   "no trees",
			mutate: func(d *EnsembleDefinition) { d.Trees = nil },
		},
		{
			name:   "ragged node arrays",
			mutate: func(d *EnsembleDefinition) { d.Trees[0].Threshold = d.Trees[0].Threshold[:2] },
		},
		{
			name:   "node with one child",
			mutate: func(d *EnsembleDefinition) { d.Trees[1].ChildrenRight[0] = -1 },
		},
		{
			name:   "child index out of range",
			mutate: func(d *EnsembleDefinition) { d.Trees[0].ChildrenRight[0] = 9 },
		},
		{
			name:   "child pointing back at the root",
			mutate: func(d *EnsembleDefinition) { d.Trees[0].ChildrenLeft[0] = 0 },
		},
		{
			name:   "split on unknown feature",
			mutate: func(d *EnsembleDefinition) { d.Trees[0].Feature[0] = 8 },
		},
		{
			name:   "leaf with wrong class weights",
			mutate: func(d *EnsembleDefinition) { d.Trees[1].Value[2] = []float64{1, 2, 3} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := createTestEnsembleDefinition()
			tt.mutate(&def)

			ens, err := NewTreeEnsemble(def)
			assert.Nil(t, ens)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}
