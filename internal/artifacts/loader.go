// internal/artifacts/loader.go
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"

	"credit-risk-workers/internal/common/logger"
	"credit-risk-workers/internal/models"
	"credit-risk-workers/internal/pipeline"

	"github.com/xeipuuv/gojsonschema"
)

type encoderDocument struct {
	Feature string         `json:"feature"`
	Classes []string       `json:"classes,omitempty"`
	Mapping map[string]int `json:"mapping,omitempty"`
}

// Bundle is the immutable set of artifacts a pipeline is built from.
type Bundle struct {
	Registry *pipeline.Registry
	Ensemble *pipeline.TreeEnsemble
}

// Load reads every encoder and the tree ensemble. Any failure is a
// *pipeline.ConfigurationError and must abort startup.
func Load(ctx context.Context, store Store, log logger.Logger) (*Bundle, error) {
	registry, err := LoadRegistry(ctx, store, log)
	if err != nil {
		return nil, err
	}
	ensemble, err := LoadEnsemble(ctx, store, log)
	if err != nil {
		return nil, err
	}
	return &Bundle{Registry: registry, Ensemble: ensemble}, nil
}

// LoadRegistry reads one encoder per categorical feature and asserts that
// every label the intake form offers was seen when the encoders were fit.
func LoadRegistry(ctx context.Context, store Store, log logger.Logger) (*pipeline.Registry, error) {
	encoders := make(map[models.Feature]pipeline.EncoderMap, len(models.CategoricalFeatures))

	for _, feature := range models.CategoricalFeatures {
		name := EncoderArtifact(feature)
		doc, err := fetch(ctx, store, name, encoderSchema)
		if err != nil {
			return nil, err
		}

		var enc encoderDocument
		if err := json.Unmarshal(doc, &enc); err != nil {
			return nil, pipeline.NewConfigurationError(name, "decode encoder", err)
		}
		if enc.Feature != string(feature) {
			return nil, pipeline.NewConfigurationError(name,
				fmt.Sprintf("encoder was fit on %q, expected %q", enc.Feature, feature), nil)
		}

		if len(enc.Classes) > 0 {
			encoders[feature] = pipeline.EncoderMapFromClasses(enc.Classes)
		} else {
			encoders[feature] = pipeline.EncoderMap(enc.Mapping)
		}
	}

	registry := pipeline.NewRegistry(encoders)
	unused, err := registry.VerifyAlignment()
	if err != nil {
		return nil, err
	}
	for feature, labels := range unused {
		log.Warn("Encoder knows labels the intake form never offers", map[string]interface{}{
			"feature": string(feature),
			"labels":  labels,
		})
	}

	log.Info("Encoders loaded", map[string]interface{}{
		"store":    store.Describe(),
		"features": len(encoders),
	})
	return registry, nil
}

// LoadEnsemble reads and checks the serialized tree ensemble.
func LoadEnsemble(ctx context.Context, store Store, log logger.Logger) (*pipeline.TreeEnsemble, error) {
	doc, err := fetch(ctx, store, ModelArtifact, modelSchema)
	if err != nil {
		return nil, err
	}

	var def pipeline.EnsembleDefinition
	if err := json.Unmarshal(doc, &def); err != nil {
		return nil, pipeline.NewConfigurationError(ModelArtifact, "decode model", err)
	}

	ensemble, err := pipeline.NewTreeEnsemble(def)
	if err != nil {
		return nil, err
	}

	log.Info("Model loaded", map[string]interface{}{
		"store":     store.Describe(),
		"estimator": ensemble.Estimator(),
		"trees":     ensemble.TreeCount(),
		"classes":   ensemble.Classes(),
	})
	return ensemble, nil
}

func fetch(ctx context.Context, store Store, name string, schema *gojsonschema.Schema) ([]byte, error) {
	doc, err := store.Fetch(ctx, name)
	if err != nil {
		return nil, pipeline.NewConfigurationError(name, "fetch from "+store.Describe(), err)
	}
	if err := validateDocument(schema, doc); err != nil {
		return nil, pipeline.NewConfigurationError(name, "incompatible artifact", err)
	}
	return doc, nil
}
