package assesscreditrisk

import "credit-risk-workers/internal/common/validation"

// GetInputSchema checks types only. Ranges and category labels are enforced
// by the pipeline so that failures carry the offending field.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"age", "sex", "job", "housing", "savingAccounts", "checkingAccount", "creditAmount", "duration"},
		Properties: map[string]validation.Property{
			"applicationId": {
				Type:        "string",
				Description: "Identifier of the credit application",
				MaxLength:   validation.Int(128),
			},
			"age": {
				Type:        "integer",
				Description: "Applicant age in years",
			},
			"sex": {
				Type:        "string",
				Description: "Applicant gender",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(32),
			},
			"job": {
				Type:        "integer",
				Description: "Job skill level, 0 to 3",
			},
			"housing": {
				Type:        "string",
				Description: "Housing situation",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(32),
			},
			"savingAccounts": {
				Type:        "string",
				Description: "Savings account balance band",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(32),
			},
			"checkingAccount": {
				Type:        "string",
				Description: "Checking account balance band",
				MinLength:   validation.Int(1),
				MaxLength:   validation.Int(32),
			},
			"creditAmount": {
				Type:        "number",
				Description: "Requested credit amount",
			},
			"duration": {
				Type:        "integer",
				Description: "Credit duration in months",
			},
		},
		// process scope carries unrelated variables
		AdditionalProperties: true,
	}
}
