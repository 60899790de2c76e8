package assesscreditrisk

import (
	"context"
	"time"

	"credit-risk-workers/internal/models"
	"credit-risk-workers/internal/pipeline"
)

type Input struct {
	ApplicationID string
	Applicant     models.ApplicantRecord
}

type Output struct {
	AssessmentID   string             `json:"assessmentId"`
	ApplicationID  string             `json:"applicationId,omitempty"`
	Verdict        models.Verdict     `json:"verdict"`
	RiskLabel      string             `json:"riskLabel"`
	RiskMessage    string             `json:"riskMessage"`
	ClassLabel     int                `json:"classLabel"`
	RequiresReview bool               `json:"requiresReview"`
	FeatureVector  map[string]float64 `json:"featureVector"`
	Summary        Summary            `json:"summary"`
	AssessedAt     time.Time          `json:"assessedAt"`
}

// Summary is the application summary shown next to the verdict.
type Summary struct {
	PersonalDetails  []string `json:"personalDetails"`
	FinancialDetails []string `json:"financialDetails"`
}

// Assessor runs one applicant through the inference pipeline.
// *pipeline.Pipeline satisfies it.
type Assessor interface {
	Assess(ctx context.Context, rec models.ApplicantRecord) (*pipeline.Assessment, error)
}
