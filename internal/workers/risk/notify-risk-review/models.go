package notifyriskreview

import (
	"time"

	"credit-risk-workers/internal/models"
)

const (
	ChannelSNS = "sns"
	ChannelSES = "ses"
)

const (
	StatusSent     = "sent"
	StatusSkipped  = "skipped"
	StatusDisabled = "disabled"
)

type Input struct {
	AssessmentID     string
	ApplicationID    string
	Verdict          models.Verdict
	RiskLabel        string
	PersonalDetails  []string
	FinancialDetails []string
}

type Output struct {
	NotificationID string    `json:"notificationId"`
	Status         string    `json:"status"`
	Channels       []string  `json:"channels"`
	SentAt         time.Time `json:"sentAt,omitempty"`
}
