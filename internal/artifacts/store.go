// internal/artifacts/store.go
package artifacts

import (
	"context"
	"errors"

	"credit-risk-workers/internal/models"
)

// ErrArtifactNotFound is returned by a Store when no artifact has that name.
var ErrArtifactNotFound = errors.New("artifact not found")

// ModelArtifact is the serialized tree ensemble.
const ModelArtifact = "extra_trees_credit_model.json"

// EncoderArtifact is the name of the encoder document for a categorical
// feature, e.g. "Saving accounts_encoder.json".
func EncoderArtifact(feature models.Feature) string {
	return string(feature) + "_encoder.json"
}

// Store fetches raw artifact documents by name.
type Store interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Describe() string
}

// Writer is implemented by stores that artifacts can be published to.
type Writer interface {
	Put(ctx context.Context, name string, payload []byte) error
}

// Names lists every artifact the pipeline loads, encoders first.
func Names() []string {
	names := make([]string, 0, len(models.CategoricalFeatures)+1)
	for _, f := range models.CategoricalFeatures {
		names = append(names, EncoderArtifact(f))
	}
	return append(names, ModelArtifact)
}
