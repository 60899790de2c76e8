// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
workers:
  assess-credit-risk:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ArtifactSourceFile, cfg.Artifacts.Source)
	assert.Equal(t, "./artifacts", cfg.Artifacts.Dir)
	assert.Equal(t, ClassifierModeLocal, cfg.Classifier.Mode)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)

	wc := GetWorkerConfig(cfg, "assess-credit-risk")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 30000, wc.Timeout)
	assert.Equal(t, 3, wc.MaxRetries)
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_ARTIFACT_DIR", "/srv/models")
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
artifacts:
  dir: ${TEST_ARTIFACT_DIR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/models", cfg.Artifacts.Dir)
}

func TestLoadFromFile_UnsetPlaceholderFallsBackToDefault(t *testing.T) {
	path := writeConfig(t, `
camunda:
  broker_address: localhost:26500
artifacts:
  dir: ${CREDIT_RISK_TEST_UNSET_DIR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "./artifacts", cfg.Artifacts.Dir)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing broker",
			body: `artifacts: {source: file}`,
		},
		{
			name: "unknown artifact source",
			body: "camunda: {broker_address: x}\nartifacts: {source: s3}",
		},
		{
			name: "postgres source without host",
			body: "camunda: {broker_address: x}\nartifacts: {source: postgres}",
		},
		{
			name: "redis source without address",
			body: "camunda: {broker_address: x}\nartifacts: {source: redis}",
		},
		{
			name: "remote classifier without url",
			body: "camunda: {broker_address: x}\nclassifier: {mode: remote}",
		},
		{
			name: "sns without topic",
			body: "camunda: {broker_address: x}\nnotifications: {sns: {enabled: true}}",
		},
		{
			name: "ses without review address",
			body: "camunda: {broker_address: x}\nnotifications: {ses: {enabled: true, from_email: a@b.c}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestIsWorkerEnabled(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"notify-risk-review": {Enabled: false},
	}}
	assert.False(t, IsWorkerEnabled(cfg, "notify-risk-review"))
	assert.True(t, IsWorkerEnabled(cfg, "assess-credit-risk"))
}
