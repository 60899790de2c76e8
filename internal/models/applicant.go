// internal/models/applicant.go
package models

import "strings"

// Sex is the applicant gender as offered by the intake form.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Housing is the applicant's current housing situation.
type Housing string

const (
	HousingOwn  Housing = "own"
	HousingRent Housing = "rent"
	HousingFree Housing = "free"
)

// SavingAccounts is the savings account balance band.
type SavingAccounts string

const (
	SavingLittle    SavingAccounts = "little"
	SavingModerate  SavingAccounts = "moderate"
	SavingRich      SavingAccounts = "rich"
	SavingQuiteRich SavingAccounts = "quite rich"
)

// CheckingAccount is the checking account balance band.
type CheckingAccount string

const (
	CheckingLittle    CheckingAccount = "little"
	CheckingModerate  CheckingAccount = "moderate"
	CheckingQuiteRich CheckingAccount = "quite rich"
)

// Offered values per categorical field, in form order.
var (
	SexValues             = []Sex{SexMale, SexFemale}
	HousingValues         = []Housing{HousingOwn, HousingRent, HousingFree}
	SavingAccountsValues  = []SavingAccounts{SavingLittle, SavingModerate, SavingRich, SavingQuiteRich}
	CheckingAccountValues = []CheckingAccount{CheckingLittle, CheckingModerate, CheckingQuiteRich}
)

// ApplicantRecord is the raw intake for a single assessment. Categorical fields
// hold the label exactly as it must be looked up in the encoder registry.
type ApplicantRecord struct {
	Age             int             `json:"age"`
	Sex             Sex             `json:"sex"`
	JobLevel        int             `json:"job"`
	Housing         Housing         `json:"housing"`
	SavingAccounts  SavingAccounts  `json:"savingAccounts"`
	CheckingAccount CheckingAccount `json:"checkingAccount"`
	CreditAmount    float64         `json:"creditAmount"`
	Duration        int             `json:"duration"`
}

// NormalizeLabel lowercases, trims and maps the underscore spelling
// ("quite_rich") onto the training label ("quite rich").
func NormalizeLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	return strings.ReplaceAll(label, "_", " ")
}

func (s Sex) Valid() bool {
	for _, v := range SexValues {
		if s == v {
			return true
		}
	}
	return false
}

func (h Housing) Valid() bool {
	for _, v := range HousingValues {
		if h == v {
			return true
		}
	}
	return false
}

func (s SavingAccounts) Valid() bool {
	for _, v := range SavingAccountsValues {
		if s == v {
			return true
		}
	}
	return false
}

func (c CheckingAccount) Valid() bool {
	for _, v := range CheckingAccountValues {
		if c == v {
			return true
		}
	}
	return false
}
