package notifyriskreview

import (
	"fmt"
	"time"

	"credit-risk-workers/internal/common/validation"
)

type Config struct {
	Enabled       bool          `mapstructure:"enabled"`
	MaxJobsActive int           `mapstructure:"max_jobs_active"`
	Timeout       time.Duration `mapstructure:"timeout"`

	// RequestTimeout bounds job activation long polls.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	SNSEnabled  bool   `mapstructure:"sns_enabled"`
	TopicARN    string `mapstructure:"topic_arn"`
	SESEnabled  bool   `mapstructure:"ses_enabled"`
	FromEmail   string `mapstructure:"from_email"`
	ReviewEmail string `mapstructure:"review_email"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxJobsActive <= 0 {
		return fmt.Errorf("max_jobs_active must be positive")
	}
	if c.SNSEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required when sns is enabled")
	}
	if c.SESEnabled {
		if !validation.ValidateEmail(c.FromEmail) {
			return fmt.Errorf("from_email %q is not a valid address", c.FromEmail)
		}
		if !validation.ValidateEmail(c.ReviewEmail) {
			return fmt.Errorf("review_email %q is not a valid address", c.ReviewEmail)
		}
	}
	return nil
}

// Channels returns the enabled channel names in send order.
func (c *Config) Channels() []string {
	var out []string
	if c.SNSEnabled {
		out = append(out, ChannelSNS)
	}
	if c.SESEnabled {
		out = append(out, ChannelSES)
	}
	return out
}
