package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-risk-workers/internal/common/errors"
	assesscreditrisk "credit-risk-workers/internal/workers/risk/assess-credit-risk"
	notifyriskreview "credit-risk-workers/internal/workers/risk/notify-risk-review"
)

func TestShippedRegistry(t *testing.T) {
	reg, err := LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	for _, taskType := range []string{assesscreditrisk.TaskType, notifyriskreview.TaskType} {
		activity, ok := reg.Find(taskType)
		require.True(t, ok, taskType)

		for _, code := range activity.ErrorCodes {
			assert.Contains(t, errors.BPMNErrorMapping, errors.ErrorCode(code), "%s: %s", taskType, code)
		}
	}
	assert.Len(t, reg.Activities, 2)
}

func TestValidate(t *testing.T) {
	valid := Activity{ID: "a", TaskType: "a", Timeout: "10s"}

	tests := []struct {
		name       string
		activities []Activity
		wantErr    string
	}{
		{"valid", []Activity{valid}, ""},
		{"missing task type", []Activity{{ID: "a", Timeout: "10s"}}, "taskType are required"},
		{"duplicate task type", []Activity{valid, valid}, "duplicate task type"},
		{"bad timeout", []Activity{{ID: "a", TaskType: "a", Timeout: "soon"}}, "invalid timeout"},
		{"negative retries", []Activity{{ID: "a", TaskType: "a", Timeout: "1s", Retries: -1}}, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&ActivityRegistry{Activities: tt.activities}).Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRegistry_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	_, err := LoadRegistry(path)
	assert.Error(t, err)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFind_Missing(t *testing.T) {
	_, ok := (&ActivityRegistry{}).Find("assess-credit-risk")
	assert.False(t, ok)
}
