// internal/pipeline/remote_test.go
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"credit-risk-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModelServer struct {
	featureNames []string
	status       int
	predictions  []int
	lastRequest  predictRequest
}

func (f *fakeModelServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/metadata", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_ = json.NewEncoder(w).Encode(modelMetadata{FeatureNames: f.featureNames, Classes: []int{0, 1}})
	})
	mux.HandleFunc("/predict", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.lastRequest))
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		_ = json.NewEncoder(w).Encode(predictResponse{Predictions: f.predictions})
	})
	return mux
}

func TestRemoteClassifier_Predict(t *testing.T) {
	fake := &fakeModelServer{featureNames: featureNames(), predictions: []int{1}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	rc, err := NewRemoteClassifier(context.Background(), srv.URL+"/", time.Second)
	require.NoError(t, err)

	vec := models.FeatureVector{35, 1, 2, 1, 0, 0, 1000, 12}
	label, err := rc.Predict(context.Background(), vec)
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	assert.Equal(t, featureNames(), fake.lastRequest.Columns)
	require.Len(t, fake.lastRequest.Instances, 1)
	assert.Equal(t, vec[:], fake.lastRequest.Instances[0])
}

func TestNewRemoteClassifier_ColumnMismatch(t *testing.T) {
	names := featureNames()
	names[6], names[7] = names[7], names[6]

	srv := httptest.NewServer((&fakeModelServer{featureNames: names}).handler(t))
	defer srv.Close()

	rc, err := NewRemoteClassifier(context.Background(), srv.URL, time.Second)
	assert.Nil(t, rc)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNewRemoteClassifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewRemoteClassifier(context.Background(), srv.URL, 200*time.Millisecond)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestRemoteClassifier_Predict_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		predictions   []int
		wantRetryable bool
	}{
		{name: "server error is retryable", status: http.StatusServiceUnavailable, wantRetryable: true},
		{name: "throttling is retryable", status: http.StatusTooManyRequests, wantRetryable: true},
		{name: "bad request is not retryable", status: http.StatusBadRequest},
		{name: "wrong prediction count", predictions: []int{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeModelServer{featureNames: featureNames(), status: tt.status, predictions: tt.predictions}
			srv := httptest.NewServer(fake.handler(t))
			defer srv.Close()

			rc, err := NewRemoteClassifier(context.Background(), srv.URL, time.Second)
			require.NoError(t, err)

			_, err = rc.Predict(context.Background(), models.FeatureVector{})
			require.Error(t, err)
			assert.Equal(t, tt.wantRetryable, isUnavailable(err))
		})
	}
}

func isUnavailable(err error) bool {
	var unavailable *ClassifierUnavailableError
	return errors.As(err, &unavailable)
}
