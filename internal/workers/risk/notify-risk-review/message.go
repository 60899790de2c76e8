package notifyriskreview

import (
	"fmt"
	"strings"
)

func subject(input *Input) string {
	ref := input.ApplicationID
	if ref == "" {
		ref = input.AssessmentID
	}
	return fmt.Sprintf("Credit application %s requires review", ref)
}

// body renders the plain text review request shared by every channel.
func body(input *Input) string {
	var b strings.Builder
	label := input.RiskLabel
	if label == "" {
		label = input.Verdict.DisplayLabel()
	}

	fmt.Fprintf(&b, "Verdict: %s\n", label)
	b.WriteString("This applicant requires additional review.\n\n")
	if input.ApplicationID != "" {
		fmt.Fprintf(&b, "Application: %s\n", input.ApplicationID)
	}
	fmt.Fprintf(&b, "Assessment: %s\n", input.AssessmentID)

	writeSection(&b, "Personal Details", input.PersonalDetails)
	writeSection(&b, "Financial Details", input.FinancialDetails)
	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
}
