// internal/models/feature.go
package models

// Feature is a column name as it was used when the classifier was trained.
type Feature string

const (
	FeatureAge             Feature = "Age"
	FeatureSex             Feature = "Sex"
	FeatureJob             Feature = "Job"
	FeatureHousing         Feature = "Housing"
	FeatureSavingAccounts  Feature = "Saving accounts"
	FeatureCheckingAccount Feature = "Checking account"
	FeatureCreditAmount    Feature = "Credit amount"
	FeatureDuration        Feature = "Duration"
)

// FeatureCount is the width of every FeatureVector.
const FeatureCount = 8

// FeatureColumns is the training-time column order. The classifier does not
// see names, only positions, so this order must never be derived at runtime.
var FeatureColumns = [FeatureCount]Feature{
	FeatureAge,
	FeatureSex,
	FeatureJob,
	FeatureHousing,
	FeatureSavingAccounts,
	FeatureCheckingAccount,
	FeatureCreditAmount,
	FeatureDuration,
}

// CategoricalFeatures lists the columns that go through an encoder.
var CategoricalFeatures = []Feature{
	FeatureSex,
	FeatureHousing,
	FeatureSavingAccounts,
	FeatureCheckingAccount,
}

// OfferedLabels returns the category labels the intake form can submit for a
// categorical feature, or nil for numeric columns.
func OfferedLabels(f Feature) []string {
	var out []string
	switch f {
	case FeatureSex:
		for _, v := range SexValues {
			out = append(out, string(v))
		}
	case FeatureHousing:
		for _, v := range HousingValues {
			out = append(out, string(v))
		}
	case FeatureSavingAccounts:
		for _, v := range SavingAccountsValues {
			out = append(out, string(v))
		}
	case FeatureCheckingAccount:
		for _, v := range CheckingAccountValues {
			out = append(out, string(v))
		}
	}
	return out
}

// FeatureVector is one classifier input row, indexed by FeatureColumns.
type FeatureVector [FeatureCount]float64

// Named returns the vector keyed by column name, for logging and job output.
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, FeatureCount)
	for i, col := range FeatureColumns {
		out[string(col)] = v[i]
	}
	return out
}

// Verdict is the binary outcome shown to the applicant's reviewer.
type Verdict string

const (
	VerdictLowRisk  Verdict = "LOW_RISK"
	VerdictHighRisk Verdict = "HIGH_RISK"
)

// DisplayLabel is the human readable verdict, e.g. "LOW RISK".
func (v Verdict) DisplayLabel() string {
	switch v {
	case VerdictLowRisk:
		return "LOW RISK"
	case VerdictHighRisk:
		return "HIGH RISK"
	default:
		return string(v)
	}
}

// RequiresReview reports whether the applicant needs a manual review.
func (v Verdict) RequiresReview() bool {
	return v == VerdictHighRisk
}
