// internal/artifacts/loader_test.go
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"credit-risk-workers/internal/common/logger"
	"credit-risk-workers/internal/models"
	"credit-risk-workers/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore serves artifacts from a map.
type memoryStore map[string][]byte

func (m memoryStore) Fetch(_ context.Context, name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrArtifactNotFound)
	}
	return data, nil
}

func (m memoryStore) Describe() string { return "memory" }

func loadTestdata(t *testing.T) memoryStore {
	t.Helper()
	entries, err := os.ReadDir("testdata")
	require.NoError(t, err)

	store := memoryStore{}
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join("testdata", e.Name()))
		require.NoError(t, err)
		store[e.Name()] = data
	}
	return store
}

func TestLoad_FromFiles(t *testing.T) {
	bundle, err := Load(context.Background(), NewFileStore("testdata"), logger.NewTestLogger(t))
	require.NoError(t, err)

	code, err := bundle.Registry.Encode(models.FeatureSavingAccounts, "quite rich")
	require.NoError(t, err)
	assert.Equal(t, 2, code)

	code, err = bundle.Registry.Encode(models.FeatureCheckingAccount, "moderate")
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	assert.Equal(t, "ExtraTreesClassifier", bundle.Ensemble.Estimator())
	assert.Equal(t, 2, bundle.Ensemble.TreeCount())

	p := pipeline.New(bundle.Registry, bundle.Ensemble)
	result, err := p.Assess(context.Background(), models.ApplicantRecord{
		Age:             30,
		Sex:             models.SexFemale,
		JobLevel:        2,
		Housing:         models.HousingRent,
		SavingAccounts:  models.SavingModerate,
		CheckingAccount: models.CheckingLittle,
		CreditAmount:    2000,
		Duration:        12,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VerdictLowRisk, result.Verdict)
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s memoryStore)
	}{
		{
			name:   "missing model",
			mutate: func(s memoryStore) { delete(s, ModelArtifact) },
		},
		{
			name:   "missing encoder",
			mutate: func(s memoryStore) { delete(s, "Housing_encoder.json") },
		},
		{
			name:   "corrupt encoder",
			mutate: func(s memoryStore) { s["Sex_encoder.json"] = []byte(`{"feature": "Sex", "classes": [`) },
		},
		{
			name: "encoder with both classes and mapping",
			mutate: func(s memoryStore) {
				s["Sex_encoder.json"] = []byte(`{"feature":"Sex","classes":["female","male"],"mapping":{"female":0,"male":1}}`)
			},
		},
		{
			name: "encoder with negative code",
			mutate: func(s memoryStore) {
				s["Sex_encoder.json"] = []byte(`{"feature":"Sex","mapping":{"female":-1,"male":1}}`)
			},
		},
		{
			name: "encoder fit on another feature",
			mutate: func(s memoryStore) {
				s["Sex_encoder.json"] = []byte(`{"feature":"Housing","classes":["female","male"]}`)
			},
		},
		{
			name: "offered label never fit",
			mutate: func(s memoryStore) {
				s["Housing_encoder.json"] = []byte(`{"feature":"Housing","classes":["own","rent"]}`)
			},
		},
		{
			name: "model columns reordered",
			mutate: func(s memoryStore) {
				s[ModelArtifact] = []byte(strings.Replace(string(s[ModelArtifact]),
					`"Credit amount", "Duration"`, `"Duration", "Credit amount"`, 1))
			},
		},
		{
			name: "model without trees",
			mutate: func(s memoryStore) {
				s[ModelArtifact] = []byte(`{"feature_names":[],"n_features":8,"classes":[0,1],"trees":[]}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := loadTestdata(t)
			tt.mutate(store)

			bundle, err := Load(context.Background(), store, logger.NewNoOpLogger())
			assert.Nil(t, bundle)
			require.Error(t, err)
			assert.ErrorIs(t, err, pipeline.ErrConfiguration)
		})
	}
}

func TestLoadRegistry_WithoutModel(t *testing.T) {
	store := loadTestdata(t)
	delete(store, ModelArtifact)

	registry, err := LoadRegistry(context.Background(), store, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Equal(t, []string{"free", "own", "rent"}, registry.Labels(models.FeatureHousing))
}
