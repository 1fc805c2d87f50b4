package domain

import (
	"testing"
	"time"

	e "github.com/gartstein/contracto/internal/contract/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestNewMoney(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		currency  string
		expectErr bool
	}{
		{name: "positive amount", amount: 1500.50, currency: "EUR"},
		{name: "zero amount", amount: 0, currency: "USD"},
		{name: "negative amount", amount: -0.01, currency: "EUR", expectErr: true},
		{name: "default currency", amount: 10, currency: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoney(tt.amount, tt.currency)
			if tt.expectErr {
				assert.True(t, e.IsValidation(err), "expected validation error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.amount, m.Amount)
			if tt.currency == "" {
				assert.Equal(t, DefaultCurrency, m.Currency)
			} else {
				assert.Equal(t, tt.currency, m.Currency)
			}
		})
	}
}

func TestNewDateRange(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		expectErr bool
	}{
		{name: "start before end", start: base, end: base.AddDate(1, 0, 0)},
		{name: "start equals end", start: base, end: base, expectErr: true},
		{name: "start after end", start: base.AddDate(0, 1, 0), end: base, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewDateRange(tt.start, tt.end)
			if tt.expectErr {
				assert.True(t, e.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, r.Contains(tt.start))
			assert.True(t, r.Contains(tt.end))
			assert.False(t, r.Contains(tt.end.Add(time.Hour)))
		})
	}
}

func TestDateRangeExpiredAt(t *testing.T) {
	r, err := NewDateRange(
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)

	assert.True(t, r.ExpiredAt(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.ExpiredAt(time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		expectErr bool
	}{
		{name: "valid", addr: "legal@acme.co.uk"},
		{name: "missing at", addr: "legal.acme.co.uk", expectErr: true},
		{name: "empty", addr: "", expectErr: true},
		{name: "missing domain", addr: "legal@", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			em, err := NewEmail(tt.addr)
			if tt.expectErr {
				assert.True(t, e.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.addr, em.String())
		})
	}
}

func TestNewContractParty(t *testing.T) {
	_, err := NewContractParty("", "x@y.com", "")
	assert.True(t, e.IsValidation(err), "empty name must be rejected")

	_, err = NewContractParty("Acme Ltd", "not-an-email", "")
	assert.True(t, e.IsValidation(err), "malformed email must be rejected")

	p, err := NewContractParty("Acme Ltd", "legal@acme.com", "Acme Limited")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", p.Name)
	assert.Equal(t, "legal@acme.com", p.Email.String())
	assert.Equal(t, "Acme Limited", p.LegalName)

	p, err = NewContractParty("Solo Trader", "", "")
	require.NoError(t, err)
	assert.True(t, p.Email.IsZero())
}

func TestNewComplianceScore(t *testing.T) {
	tests := []struct {
		name      string
		overall   float64
		gdpr      *float64
		expectErr bool
	}{
		{name: "bounds", overall: 0},
		{name: "upper bound", overall: 1},
		{name: "with category", overall: 0.8, gdpr: f(0.9)},
		{name: "overall above one", overall: 1.01, expectErr: true},
		{name: "overall negative", overall: -0.1, expectErr: true},
		{name: "category out of range", overall: 0.5, gdpr: f(1.5), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewComplianceScore(tt.overall, tt.gdpr, nil, nil, nil)
			if tt.expectErr {
				assert.True(t, e.IsValidation(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewRiskAssessment(t *testing.T) {
	for _, score := range []int{1, 5, 10} {
		_, err := NewRiskAssessment(score, []string{"auto-renewal"}, nil)
		assert.NoError(t, err, "score %d should be accepted", score)
	}
	for _, score := range []int{0, 11, -3} {
		_, err := NewRiskAssessment(score, nil, nil)
		assert.True(t, e.IsValidation(err), "score %d should be rejected", score)
	}
}
