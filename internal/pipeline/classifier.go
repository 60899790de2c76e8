// internal/pipeline/classifier.go
package pipeline

import (
	"context"

	"credit-risk-workers/internal/models"
)

// Classifier is the pre-trained model. Implementations must be safe for
// concurrent use and must not mutate state in Predict.
type Classifier interface {
	Predict(ctx context.Context, vec models.FeatureVector) (int, error)
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(ctx context.Context, vec models.FeatureVector) (int, error)

func (f ClassifierFunc) Predict(ctx context.Context, vec models.FeatureVector) (int, error) {
	return f(ctx, vec)
}
