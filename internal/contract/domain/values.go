// Package domain holds the Contract aggregate and its value objects.
// Everything in here is pure in-memory state: no storage, no transport,
// no I/O. Mutation happens only through the aggregate's business methods.
package domain

import (
	"net/mail"
	"time"

	e "github.com/gartstein/contracto/internal/contract/errors"
)

// DefaultCurrency is used when a contract value is supplied without one.
const DefaultCurrency = "GBP"

// Money is a non-negative amount in a single currency.
type Money struct {
	Amount   float64
	Currency string
}

// NewMoney validates and builds a Money value.
func NewMoney(amount float64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, e.Validation("money amount cannot be negative: %v", amount)
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// DateRange is a half-open period with start strictly before end.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange validates and builds a DateRange.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if !start.Before(end) {
		return DateRange{}, e.Validation("date range start must be before end")
	}
	return DateRange{Start: start, End: end}, nil
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ExpiredAt reports whether the range has already ended at the given instant.
func (r DateRange) ExpiredAt(now time.Time) bool {
	return r.End.Before(now)
}

// Email is a syntactically valid address.
type Email struct {
	value string
}

// NewEmail validates and builds an Email.
func NewEmail(addr string) (Email, error) {
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return Email{}, e.Validation("invalid email address %q", addr)
	}
	return Email{value: parsed.Address}, nil
}

// String returns the address.
func (em Email) String() string { return em.value }

// IsZero reports whether the email was never set.
func (em Email) IsZero() bool { return em.value == "" }

// ContractParty identifies one side of a contract.
type ContractParty struct {
	Name      string
	Email     Email
	LegalName string
}

// NewContractParty validates and builds a ContractParty. Email and legal
// name are optional; pass an empty email string to omit it.
func NewContractParty(name, email, legalName string) (ContractParty, error) {
	if name == "" {
		return ContractParty{}, e.Validation("party name cannot be empty")
	}
	p := ContractParty{Name: name, LegalName: legalName}
	if email != "" {
		em, err := NewEmail(email)
		if err != nil {
			return ContractParty{}, err
		}
		p.Email = em
	}
	return p, nil
}

// ComplianceScore holds the outcome of a legal-compliance analysis.
// All scores are in [0,1]; the category scores are optional.
type ComplianceScore struct {
	Overall    float64
	GDPR       *float64
	Employment *float64
	Consumer   *float64
	Commercial *float64
}

// NewComplianceScore validates and builds a ComplianceScore.
func NewComplianceScore(overall float64, gdpr, employment, consumer, commercial *float64) (ComplianceScore, error) {
	if overall < 0 || overall > 1 {
		return ComplianceScore{}, e.Validation("overall compliance score must be within [0,1], got %v", overall)
	}
	for _, s := range []*float64{gdpr, employment, consumer, commercial} {
		if s != nil && (*s < 0 || *s > 1) {
			return ComplianceScore{}, e.Validation("category compliance score must be within [0,1], got %v", *s)
		}
	}
	return ComplianceScore{
		Overall:    overall,
		GDPR:       gdpr,
		Employment: employment,
		Consumer:   consumer,
		Commercial: commercial,
	}, nil
}

// RiskAssessment holds the risk outcome of a compliance analysis.
type RiskAssessment struct {
	RiskScore       int
	RiskFactors     []string
	Recommendations []string
}

// NewRiskAssessment validates and builds a RiskAssessment. RiskScore is on
// a 1..10 scale.
func NewRiskAssessment(score int, factors, recommendations []string) (RiskAssessment, error) {
	if score < 1 || score > 10 {
		return RiskAssessment{}, e.Validation("risk score must be within [1,10], got %d", score)
	}
	return RiskAssessment{
		RiskScore:       score,
		RiskFactors:     factors,
		Recommendations: recommendations,
	}, nil
}
