package domain

import (
	"testing"
	"time"

	e "github.com/gartstein/contracto/internal/contract/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContract(t *testing.T) *Contract {
	t.Helper()
	client, err := NewContractParty("Acme Ltd", "legal@acme.com", "")
	require.NoError(t, err)

	c, err := New(uuid.New(), "Mutual NDA", NDA, "keep each other's secrets", client, nil, "u1", uuid.New())
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	client, err := NewContractParty("Acme Ltd", "", "")
	require.NoError(t, err)
	companyID := uuid.New()

	tests := []struct {
		name         string
		title        string
		contractType ContractType
		client       ContractParty
		createdBy    string
		expectErr    bool
	}{
		{name: "valid", title: "Mutual NDA", contractType: NDA, client: client, createdBy: "u1"},
		{name: "empty title", title: "", contractType: NDA, client: client, createdBy: "u1", expectErr: true},
		{name: "unknown type", title: "X", contractType: ContractType("barter"), client: client, createdBy: "u1", expectErr: true},
		{name: "zero client", title: "X", contractType: NDA, client: ContractParty{}, createdBy: "u1", expectErr: true},
		{name: "missing creator", title: "X", contractType: NDA, client: client, createdBy: "", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(uuid.New(), tt.title, tt.contractType, "", tt.client, nil, tt.createdBy, companyID)
			if tt.expectErr {
				assert.True(t, e.IsValidation(err), "expected validation error, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusDraft, c.Status())
			assert.Equal(t, 1, c.Version())

			events := c.DomainEvents()
			require.Len(t, events, 1)
			assert.Equal(t, EventContractCreated, events[0].EventType())
			assert.Equal(t, c.ID(), events[0].AggregateID())
		})
	}
}

func TestActivateWithoutFinalContent(t *testing.T) {
	// Scenario: fresh NDA for Acme, activation attempted straight away.
	c := newTestContract(t)

	err := c.Activate("u1")
	assert.True(t, e.IsRuleViolation(err))
	assert.Contains(t, err.Error(), "without final content")
	assert.Equal(t, StatusDraft, c.Status(), "rejected activation must not change status")
	assert.Nil(t, c.ActivatedAt())
}

func TestActivateAfterFinalize(t *testing.T) {
	c := newTestContract(t)

	require.NoError(t, c.SetGeneratedContent("draft text", AIMetadata{Model: "gpt-4", ProcessingTimeMS: 1200, ConfidenceScore: 0.92}))
	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.Activate("u1"))

	assert.Equal(t, StatusActive, c.Status())
	assert.Equal(t, "u1", c.ActivatedBy())
	require.NotNil(t, c.ActivatedAt())

	types := []string{}
	for _, ev := range c.DomainEvents() {
		types = append(types, ev.EventType())
	}
	assert.Equal(t, []string{EventContractCreated, EventContractContentGenerated, EventContractActivated}, types)
}

func TestActivateExpiredDateRange(t *testing.T) {
	c := newTestContract(t)
	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))

	r, err := NewDateRange(
		time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, c.SetDateRange(r))

	err = c.Activate("u1")
	assert.True(t, e.IsRuleViolation(err))
	assert.Contains(t, err.Error(), "Cannot activate expired contract")
	assert.Equal(t, StatusDraft, c.Status())
}

func TestActivateFromPendingReview(t *testing.T) {
	c := newTestContract(t)
	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.SubmitForReview())
	assert.Equal(t, StatusPendingReview, c.Status())

	require.NoError(t, c.Activate("u2"))
	assert.Equal(t, StatusActive, c.Status())
	assert.Equal(t, "u2", c.ActivatedBy())
}

func TestComplete(t *testing.T) {
	t.Run("from active", func(t *testing.T) {
		c := newTestContract(t)
		require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
		require.NoError(t, c.Activate("u1"))

		require.NoError(t, c.Complete("u2", "all deliverables accepted"))
		assert.Equal(t, StatusCompleted, c.Status())
		assert.Equal(t, "u2", c.CompletedBy())
		require.NotNil(t, c.CompletedAt())
	})

	t.Run("from draft", func(t *testing.T) {
		c := newTestContract(t)
		err := c.Complete("u2", "")
		assert.True(t, e.IsRuleViolation(err))
		assert.Contains(t, err.Error(), "not active")
		assert.Equal(t, StatusDraft, c.Status())
	})

	t.Run("from terminated", func(t *testing.T) {
		c := newTestContract(t)
		require.NoError(t, c.Terminate("u1", "scope change"))
		err := c.Complete("u2", "")
		assert.True(t, e.IsRuleViolation(err))
	})
}

func TestTerminate(t *testing.T) {
	for _, from := range []string{"draft", "pending_review", "active"} {
		t.Run("from "+from, func(t *testing.T) {
			c := newTestContract(t)
			switch from {
			case "pending_review":
				require.NoError(t, c.SubmitForReview())
			case "active":
				require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
				require.NoError(t, c.Activate("u1"))
			}

			require.NoError(t, c.Terminate("u3", "breach of clause 4"))
			assert.Equal(t, StatusTerminated, c.Status())
			assert.Equal(t, "u3", c.TerminatedBy())
			assert.Equal(t, "breach of clause 4", c.TerminationReason())
		})
	}

	t.Run("from completed", func(t *testing.T) {
		c := newTestContract(t)
		require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
		require.NoError(t, c.Activate("u1"))
		require.NoError(t, c.Complete("u1", ""))

		err := c.Terminate("u3", "too late")
		assert.True(t, e.IsRuleViolation(err))
		assert.Equal(t, StatusCompleted, c.Status())
	})
}

func TestModifyCompletedContract(t *testing.T) {
	c := newTestContract(t)
	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.Activate("u1"))
	require.NoError(t, c.Complete("u1", ""))

	money, err := NewMoney(100, "EUR")
	require.NoError(t, err)

	assert.True(t, e.IsRuleViolation(c.SetContractValue(money)))
	assert.True(t, e.IsRuleViolation(c.FinalizeContent("rewrite", "u1")))
	assert.True(t, e.IsRuleViolation(c.CreateRevision("rewrite", "", "u1")))
	assert.True(t, e.IsRuleViolation(c.SetGeneratedContent("rewrite", AIMetadata{})))
	assert.Equal(t, "FINAL TEXT", c.FinalContent())
}

func TestExpire(t *testing.T) {
	c := newTestContract(t)
	assert.True(t, e.IsRuleViolation(c.Expire()), "draft cannot expire")

	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.Activate("u1"))
	require.NoError(t, c.Expire())
	assert.Equal(t, StatusExpired, c.Status())
}

func TestCreateRevision(t *testing.T) {
	c := newTestContract(t)
	require.NoError(t, c.FinalizeContent("v1 text", "u1"))

	before := c.Version()
	require.NoError(t, c.CreateRevision("v2 text", "tightened liability cap", "u2"))

	assert.Equal(t, before+1, c.Version(), "revision bumps version by exactly one")
	assert.Equal(t, "v2 text", c.FinalContent())

	revs := c.Revisions()
	require.Len(t, revs, 1)
	assert.Equal(t, c.Version(), revs[0].Version)
	assert.Equal(t, "tightened liability cap", revs[0].ChangeSummary)
	assert.Equal(t, "u2", revs[0].CreatedBy)

	require.NoError(t, c.CreateRevision("v3 text", "", "u2"))
	assert.Len(t, c.Revisions(), 2)
}

func TestSetComplianceAnalysis(t *testing.T) {
	c := newTestContract(t)
	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.Activate("u1"))
	require.NoError(t, c.Complete("u1", ""))

	score, err := NewComplianceScore(0.85, f(0.9), nil, nil, nil)
	require.NoError(t, err)
	risk, err := NewRiskAssessment(3, []string{"auto-renewal clause"}, []string{"add notice period"})
	require.NoError(t, err)

	// No state restriction: even completed contracts accept analysis results.
	c.SetComplianceAnalysis(score, risk)
	require.NotNil(t, c.ComplianceScore())
	assert.Equal(t, 0.85, c.ComplianceScore().Overall)
	require.NotNil(t, c.RiskAssessment())
	assert.Equal(t, 3, c.RiskAssessment().RiskScore)
}

func TestIdentityEquality(t *testing.T) {
	id := uuid.New()
	client, err := NewContractParty("Acme Ltd", "", "")
	require.NoError(t, err)

	a, err := New(id, "Title A", NDA, "", client, nil, "u1", uuid.New())
	require.NoError(t, err)
	b, err := New(id, "Completely different title", Lease, "", client, nil, "u9", uuid.New())
	require.NoError(t, err)

	assert.True(t, a.Equals(b), "same id means same aggregate")
	assert.False(t, a.Equals(nil))

	other, err := New(uuid.New(), "Title A", NDA, "", client, nil, "u1", uuid.New())
	require.NoError(t, err)
	assert.False(t, a.Equals(other))
}

func TestFromPersistenceDiscardsEvents(t *testing.T) {
	c := newTestContract(t)
	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.Activate("u1"))
	require.NotEmpty(t, c.DomainEvents())

	restored := FromPersistence(PersistenceState{
		ID:           c.ID(),
		Title:        c.Title(),
		ContractType: c.Type(),
		Status:       c.Status(),
		Client:       c.Client(),
		FinalContent: c.FinalContent(),
		Version:      c.Version(),
		CreatedBy:    c.CreatedBy(),
		CompanyID:    c.CompanyID(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	})

	assert.Empty(t, restored.DomainEvents(), "stored history must never be replayed")
	assert.Equal(t, c.Version(), restored.Version())
	assert.Equal(t, restored.Version(), restored.PersistedVersion())
}

func TestClearDomainEvents(t *testing.T) {
	c := newTestContract(t)
	require.Len(t, c.DomainEvents(), 1)

	c.ClearDomainEvents()
	assert.Empty(t, c.DomainEvents())

	require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
	require.NoError(t, c.Activate("u1"))
	assert.Len(t, c.DomainEvents(), 1, "only events recorded after the clear remain")
}

func TestParseContractType(t *testing.T) {
	for _, raw := range []string{"service_agreement", "employment_contract", "supplier_agreement", "nda", "terms_conditions", "consultancy", "partnership", "lease"} {
		ct, err := ParseContractType(raw)
		require.NoError(t, err)
		assert.Equal(t, ContractType(raw), ct)
	}

	_, err := ParseContractType("handshake")
	assert.True(t, e.IsValidation(err))
}
