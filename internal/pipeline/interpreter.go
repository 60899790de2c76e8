// internal/pipeline/interpreter.go
package pipeline

import "credit-risk-workers/internal/models"

// Class labels produced by the classifier.
const (
	ClassHighRisk = 0
	ClassLowRisk  = 1
)

// Interpret maps a classifier class label onto a Verdict.
func Interpret(label int) (models.Verdict, error) {
	switch label {
	case ClassLowRisk:
		return models.VerdictLowRisk, nil
	case ClassHighRisk:
		return models.VerdictHighRisk, nil
	default:
		return "", &UnexpectedClassLabelError{Label: label}
	}
}
