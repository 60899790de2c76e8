// internal/pipeline/assembler.go
package pipeline

import (
	"math"

	"credit-risk-workers/internal/models"
)

// Numeric domains accepted by the assembler. The classifier was never trained
// outside these ranges.
const (
	MinAge      = 18
	MaxAge      = 80
	MinJobLevel = 0
	MaxJobLevel = 3
	MinDuration = 1
	MaxDuration = 72
)

// Assembler turns an ApplicantRecord into a FeatureVector.
type Assembler struct {
	registry *Registry
}

func NewAssembler(registry *Registry) *Assembler {
	return &Assembler{registry: registry}
}

// Assemble validates the numeric fields, encodes the categorical ones and
// places every value at its FeatureColumns position.
func (a *Assembler) Assemble(rec models.ApplicantRecord) (models.FeatureVector, error) {
	var vec models.FeatureVector

	if err := validateNumeric(rec); err != nil {
		return vec, err
	}

	sex, err := a.encode(models.FeatureSex, string(rec.Sex), rec.Sex.Valid())
	if err != nil {
		return vec, err
	}
	housing, err := a.encode(models.FeatureHousing, string(rec.Housing), rec.Housing.Valid())
	if err != nil {
		return vec, err
	}
	saving, err := a.encode(models.FeatureSavingAccounts, string(rec.SavingAccounts), rec.SavingAccounts.Valid())
	if err != nil {
		return vec, err
	}
	checking, err := a.encode(models.FeatureCheckingAccount, string(rec.CheckingAccount), rec.CheckingAccount.Valid())
	if err != nil {
		return vec, err
	}

	values := map[models.Feature]float64{
		models.FeatureAge:             float64(rec.Age),
		models.FeatureSex:             float64(sex),
		models.FeatureJob:             float64(rec.JobLevel),
		models.FeatureHousing:         float64(housing),
		models.FeatureSavingAccounts:  float64(saving),
		models.FeatureCheckingAccount: float64(checking),
		models.FeatureCreditAmount:    rec.CreditAmount,
		models.FeatureDuration:        float64(rec.Duration),
	}
	for i, col := range models.FeatureColumns {
		vec[i] = values[col]
	}

	return vec, nil
}

// encode rejects labels outside the closed enum before touching the registry,
// so both paths surface as UnknownCategoryError.
func (a *Assembler) encode(feature models.Feature, label string, offered bool) (int, error) {
	if !offered {
		return 0, &UnknownCategoryError{Feature: feature, Value: label}
	}
	return a.registry.Encode(feature, label)
}

func validateNumeric(rec models.ApplicantRecord) error {
	if rec.Age < MinAge || rec.Age > MaxAge {
		return &InvalidInputError{Field: "age", Value: rec.Age, Reason: "must be between 18 and 80"}
	}
	if rec.JobLevel < MinJobLevel || rec.JobLevel > MaxJobLevel {
		return &InvalidInputError{Field: "job", Value: rec.JobLevel, Reason: "must be between 0 and 3"}
	}
	if math.IsNaN(rec.CreditAmount) || math.IsInf(rec.CreditAmount, 0) {
		return &InvalidInputError{Field: "creditAmount", Value: rec.CreditAmount, Reason: "must be a finite number"}
	}
	if rec.CreditAmount < 0 {
		return &InvalidInputError{Field: "creditAmount", Value: rec.CreditAmount, Reason: "must not be negative"}
	}
	if rec.Duration < MinDuration || rec.Duration > MaxDuration {
		return &InvalidInputError{Field: "duration", Value: rec.Duration, Reason: "must be between 1 and 72 months"}
	}
	return nil
}
