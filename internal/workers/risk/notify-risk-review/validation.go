package notifyriskreview

import (
	"credit-risk-workers/internal/common/validation"
	"credit-risk-workers/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"assessmentId", "verdict"},
		Properties: map[string]validation.Property{
			"assessmentId": {
				Type:        "string",
				Description: "Identifier produced by assess-credit-risk",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(64),
			},
			"applicationId": {
				Type:      "string",
				MaxLength: validation.Int(128),
			},
			"verdict": {
				Type: "string",
				Enum: []string{string(models.VerdictLowRisk), string(models.VerdictHighRisk)},
			},
			"riskLabel": {
				Type: "string",
			},
			"summary": {
				Type:        "object",
				Description: "Application summary lines",
			},
		},
		AdditionalProperties: true,
	}
}
