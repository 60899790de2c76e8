// internal/pipeline/remote.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httpclient "credit-risk-workers/internal/common/http"
	"credit-risk-workers/internal/models"
)

var ErrClassifierUnavailable = errors.New("CLASSIFIER_UNAVAILABLE")

// ClassifierUnavailableError is a transient failure talking to a remote model.
type ClassifierUnavailableError struct {
	Err error
}

func (e *ClassifierUnavailableError) Error() string {
	return "classifier unavailable: " + e.Err.Error()
}

func (e *ClassifierUnavailableError) Unwrap() []error {
	return []error{ErrClassifierUnavailable, e.Err}
}

type modelMetadata struct {
	FeatureNames []string `json:"feature_names"`
	Classes      []int    `json:"classes"`
}

type predictRequest struct {
	Columns   []string    `json:"columns"`
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []int `json:"predictions"`
}

// RemoteClassifier calls a model served over HTTP.
type RemoteClassifier struct {
	baseURL string
	client  *httpclient.Client
	columns []string
}

// NewRemoteClassifier probes <baseURL>/metadata and refuses to start unless
// the served model uses FeatureColumns in the same order.
func NewRemoteClassifier(ctx context.Context, baseURL string, timeout time.Duration) (*RemoteClassifier, error) {
	rc := &RemoteClassifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpclient.NewClient(timeout),
	}
	for _, col := range models.FeatureColumns {
		rc.columns = append(rc.columns, string(col))
	}

	var meta modelMetadata
	if err := rc.client.GetJSON(ctx, rc.baseURL+"/metadata", &meta); err != nil {
		return nil, NewConfigurationError("remote model", "metadata probe failed", err)
	}
	if len(meta.FeatureNames) != len(rc.columns) {
		return nil, NewConfigurationError("remote model",
			fmt.Sprintf("served model has %d features, expected %d", len(meta.FeatureNames), len(rc.columns)), nil)
	}
	for i, name := range meta.FeatureNames {
		if name != rc.columns[i] {
			return nil, NewConfigurationError("remote model",
				fmt.Sprintf("column %d is %q on the server but %q in the pipeline", i, name, rc.columns[i]), nil)
		}
	}

	return rc, nil
}

func (rc *RemoteClassifier) Predict(ctx context.Context, vec models.FeatureVector) (int, error) {
	req := predictRequest{
		Columns:   rc.columns,
		Instances: [][]float64{vec[:]},
	}

	var resp predictResponse
	if err := rc.client.PostJSON(ctx, rc.baseURL+"/predict", req, &resp); err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && !statusErr.Temporary() {
			return 0, fmt.Errorf("remote model rejected request: %w", err)
		}
		return 0, &ClassifierUnavailableError{Err: err}
	}
	if len(resp.Predictions) != 1 {
		return 0, fmt.Errorf("remote model returned %d predictions for one instance", len(resp.Predictions))
	}
	return resp.Predictions[0], nil
}
