package assesscreditrisk

import (
	"fmt"

	"credit-risk-workers/internal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatCurrency renders an amount the way the intake form displays it,
// e.g. "$1,000.00".
func FormatCurrency(amount float64) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("$%.2f", amount)
}

func buildSummary(rec models.ApplicantRecord) Summary {
	return Summary{
		PersonalDetails: []string{
			fmt.Sprintf("Age: %d years", rec.Age),
			fmt.Sprintf("Gender: %s", capitalize(string(rec.Sex))),
			fmt.Sprintf("Job Level: %d", rec.JobLevel),
		},
		FinancialDetails: []string{
			fmt.Sprintf("Credit Amount: %s", FormatCurrency(rec.CreditAmount)),
			fmt.Sprintf("Duration: %d months", rec.Duration),
			fmt.Sprintf("Housing: %s", capitalize(string(rec.Housing))),
		},
	}
}

func riskMessage(v models.Verdict) string {
	if v == models.VerdictLowRisk {
		return "This applicant demonstrates good creditworthiness"
	}
	return "This applicant requires additional review"
}

// Casers are stateful, so one is built per call.
func capitalize(s string) string {
	return cases.Title(language.English).String(s)
}
