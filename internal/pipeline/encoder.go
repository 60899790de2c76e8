// internal/pipeline/encoder.go
package pipeline

import (
	"fmt"
	"sort"

	"credit-risk-workers/internal/models"
)

// EncoderMap is a fitted label -> code mapping for one categorical feature.
type EncoderMap map[string]int

// EncoderMapFromClasses mirrors a label encoder's classes_ array: the code of
// a label is its index.
func EncoderMapFromClasses(classes []string) EncoderMap {
	m := make(EncoderMap, len(classes))
	for i, c := range classes {
		m[c] = i
	}
	return m
}

// Registry holds one EncoderMap per categorical feature. It is immutable once
// built and safe for concurrent use.
type Registry struct {
	encoders map[models.Feature]EncoderMap
}

// NewRegistry copies the supplied maps so later mutation by the caller cannot
// leak into a registry that is already shared.
func NewRegistry(encoders map[models.Feature]EncoderMap) *Registry {
	r := &Registry{encoders: make(map[models.Feature]EncoderMap, len(encoders))}
	for f, m := range encoders {
		cp := make(EncoderMap, len(m))
		for k, v := range m {
			cp[k] = v
		}
		r.encoders[f] = cp
	}
	return r
}

// Encode returns the code fitted for value.
func (r *Registry) Encode(feature models.Feature, value string) (int, error) {
	m, ok := r.encoders[feature]
	if !ok {
		return 0, NewConfigurationError(string(feature), "no encoder registered", nil)
	}
	code, ok := m[value]
	if !ok {
		return 0, &UnknownCategoryError{Feature: feature, Value: value}
	}
	return code, nil
}

// Labels returns the fitted labels of feature sorted by code.
func (r *Registry) Labels(feature models.Feature) []string {
	m := r.encoders[feature]
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return m[out[i]] < m[out[j]] })
	return out
}

// VerifyAlignment checks that every label the intake form offers has a code,
// and that each map is a bijection onto non-negative codes. Extra fitted
// labels the form never offers are returned so callers can log them.
func (r *Registry) VerifyAlignment() (map[models.Feature][]string, error) {
	unused := make(map[models.Feature][]string)

	for _, feature := range models.CategoricalFeatures {
		m, ok := r.encoders[feature]
		if !ok {
			return nil, NewConfigurationError(string(feature), "no encoder registered", nil)
		}

		seen := make(map[int]string, len(m))
		for label, code := range m {
			if code < 0 {
				return nil, NewConfigurationError(string(feature),
					fmt.Sprintf("label %q has negative code %d", label, code), nil)
			}
			if prev, dup := seen[code]; dup {
				return nil, NewConfigurationError(string(feature),
					fmt.Sprintf("labels %q and %q share code %d", prev, label, code), nil)
			}
			seen[code] = label
		}

		offered := make(map[string]bool)
		for _, label := range models.OfferedLabels(feature) {
			offered[label] = true
			if _, ok := m[label]; !ok {
				return nil, NewConfigurationError(string(feature),
					fmt.Sprintf("offered label %q was not seen when the encoder was fit", label), nil)
			}
		}

		for _, label := range r.Labels(feature) {
			if !offered[label] {
				unused[feature] = append(unused[feature], label)
			}
		}
	}

	return unused, nil
}
