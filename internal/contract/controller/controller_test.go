package controller

import (
	"context"
	"errors"
	"testing"

	"github.com/gartstein/contracto/internal/contract/db"
	"github.com/gartstein/contracto/internal/contract/domain"
	e "github.com/gartstein/contracto/internal/contract/errors"
	"github.com/gartstein/contracto/internal/contract/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// MockRepository implements the Repository interface for testing.
type MockRepository struct {
	save        func(context.Context, *domain.Contract) error
	findByID    func(context.Context, uuid.UUID) (*domain.Contract, error)
	getByID     func(context.Context, uuid.UUID) (*domain.Contract, error)
	delete      func(context.Context, uuid.UUID) error
	saveCalls   int
	deleteCalls int
}

func (m *MockRepository) Save(ctx context.Context, c *domain.Contract) error {
	m.saveCalls++
	if m.save != nil {
		return m.save(ctx, c)
	}
	c.MarkPersisted()
	return nil
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return m.findByID(ctx, id)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return m.getByID(ctx, id)
}

func (m *MockRepository) FindByCompany(context.Context, uuid.UUID, int, int) (*db.Page, error) {
	return &db.Page{}, nil
}

func (m *MockRepository) FindWithFilter(context.Context, db.Filter, int, int) (*db.Page, error) {
	return &db.Page{}, nil
}

func (m *MockRepository) CountByCompany(context.Context, uuid.UUID) (int64, error) { return 0, nil }
func (m *MockRepository) CountWithFilter(context.Context, db.Filter) (int64, error) {
	return 0, nil
}
func (m *MockRepository) Exists(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleteCalls++
	return m.delete(ctx, id)
}

func (m *MockRepository) FindExpiring(context.Context, int) ([]*domain.Contract, error) {
	return nil, nil
}

func (m *MockRepository) FindRequiringComplianceReview(context.Context, uuid.UUID) ([]*domain.Contract, error) {
	return nil, nil
}

func (m *MockRepository) Close() error { return nil }

func newService(t *testing.T, repo *MockRepository) (*ContractService, *events.RecordingPublisher) {
	t.Helper()
	publisher := events.NewRecordingPublisher(zaptest.NewLogger(t))
	return NewContractService(repo, publisher, zaptest.NewLogger(t)), publisher
}

func storedContract(t *testing.T) *domain.Contract {
	t.Helper()
	client, err := domain.NewContractParty("Acme Ltd", "", "")
	require.NoError(t, err)
	c, err := domain.New(uuid.New(), "Mutual NDA", domain.NDA, "", client, nil, "u1", uuid.New())
	require.NoError(t, err)
	c.ClearDomainEvents()
	c.MarkPersisted()
	return c
}

func TestContractService_CreateContract(t *testing.T) {
	validInput := CreateInput{
		Title:        "Master Services Agreement",
		ContractType: "service_agreement",
		ClientName:   "Acme Ltd",
		ClientEmail:  "legal@acme.com",
		CreatedBy:    "u1",
		CompanyID:    uuid.New(),
	}

	tests := []struct {
		name        string
		input       CreateInput
		mockSetup   func(*MockRepository)
		expectError bool
		checkError  func(*testing.T, error)
	}{
		{
			name:      "successful creation",
			input:     validInput,
			mockSetup: func(_ *MockRepository) {},
		},
		{
			name: "unknown contract type",
			input: CreateInput{
				Title:        "X",
				ContractType: "handshake",
				ClientName:   "Acme Ltd",
				CreatedBy:    "u1",
			},
			mockSetup:   func(_ *MockRepository) {},
			expectError: true,
			checkError: func(t *testing.T, err error) {
				assert.True(t, e.IsValidation(err))
			},
		},
		{
			name: "invalid client email",
			input: CreateInput{
				Title:        "X",
				ContractType: "nda",
				ClientName:   "Acme Ltd",
				ClientEmail:  "not-an-email",
				CreatedBy:    "u1",
			},
			mockSetup:   func(_ *MockRepository) {},
			expectError: true,
			checkError: func(t *testing.T, err error) {
				assert.True(t, e.IsValidation(err))
			},
		},
		{
			name:  "repository error",
			input: validInput,
			mockSetup: func(mr *MockRepository) {
				mr.save = func(_ context.Context, _ *domain.Contract) error {
					return errors.New("database error")
				}
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockRepository{}
			tt.mockSetup(repo)
			service, publisher := newService(t, repo)

			result, err := service.CreateContract(context.Background(), tt.input)

			if tt.expectError {
				require.Error(t, err)
				if tt.checkError != nil {
					tt.checkError(t, err)
				}
				assert.Empty(t, publisher.Published(), "no events on failure")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.StatusDraft, result.Status())
			assert.Empty(t, result.DomainEvents(), "events cleared after publish")

			published := publisher.Published()
			require.Len(t, published, 1)
			assert.Equal(t, domain.EventContractCreated, published[0].EventType())
		})
	}
}

func TestContractService_ActivateContract(t *testing.T) {
	t.Run("successful activation", func(t *testing.T) {
		c := storedContract(t)
		require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
		c.ClearDomainEvents()

		repo := &MockRepository{
			getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
				return c, nil
			},
		}
		service, publisher := newService(t, repo)

		result, err := service.ActivateContract(context.Background(), c.ID(), "u1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, result.Status())
		assert.Equal(t, "u1", result.ActivatedBy())

		published := publisher.Published()
		require.Len(t, published, 1)
		assert.Equal(t, domain.EventContractActivated, published[0].EventType())
	})

	t.Run("missing final content", func(t *testing.T) {
		c := storedContract(t)
		repo := &MockRepository{
			getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
				return c, nil
			},
		}
		service, publisher := newService(t, repo)

		_, err := service.ActivateContract(context.Background(), c.ID(), "u1")
		assert.True(t, e.IsRuleViolation(err))
		assert.Zero(t, repo.saveCalls, "rejected operations must not be persisted")
		assert.Empty(t, publisher.Published())
	})

	t.Run("not found", func(t *testing.T) {
		repo := &MockRepository{
			getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
				return nil, e.ErrNotFound
			},
		}
		service, _ := newService(t, repo)

		_, err := service.ActivateContract(context.Background(), uuid.New(), "u1")
		assert.ErrorIs(t, err, e.ErrNotFound)
	})

	t.Run("save conflict passes through", func(t *testing.T) {
		c := storedContract(t)
		require.NoError(t, c.FinalizeContent("FINAL TEXT", "u1"))
		c.ClearDomainEvents()

		repo := &MockRepository{
			getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
				return c, nil
			},
			save: func(_ context.Context, _ *domain.Contract) error {
				return &e.ConflictError{Expected: 2, Actual: 3}
			},
		}
		service, publisher := newService(t, repo)

		_, err := service.ActivateContract(context.Background(), c.ID(), "u1")
		assert.True(t, e.IsConflict(err), "conflicts are the caller's retry decision")
		assert.Empty(t, publisher.Published(), "no publish when save failed")
	})
}

func TestContractService_TerminateContract(t *testing.T) {
	c := storedContract(t)
	repo := &MockRepository{
		getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
			return c, nil
		},
	}
	service, publisher := newService(t, repo)

	result, err := service.TerminateContract(context.Background(), c.ID(), "u2", "client insolvency")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTerminated, result.Status())

	published := publisher.Published()
	require.Len(t, published, 1)
	terminated, ok := published[0].(domain.ContractTerminated)
	require.True(t, ok)
	assert.Equal(t, "client insolvency", terminated.TerminationReason)
}

func TestContractService_FinalizeContentValidation(t *testing.T) {
	c := storedContract(t)
	repo := &MockRepository{
		getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
			return c, nil
		},
	}
	service, _ := newService(t, repo)

	_, err := service.FinalizeContent(context.Background(), c.ID(), "", "u1")
	assert.True(t, e.IsValidation(err))
	assert.Zero(t, repo.saveCalls)
}

func TestContractService_RecordComplianceAnalysis(t *testing.T) {
	c := storedContract(t)
	repo := &MockRepository{
		getByID: func(_ context.Context, _ uuid.UUID) (*domain.Contract, error) {
			return c, nil
		},
	}
	service, _ := newService(t, repo)

	_, err := service.RecordComplianceAnalysis(context.Background(), c.ID(), AnalysisInput{
		Overall:   1.5,
		RiskScore: 5,
	})
	assert.True(t, e.IsValidation(err), "out-of-range score is rejected before load")

	result, err := service.RecordComplianceAnalysis(context.Background(), c.ID(), AnalysisInput{
		Overall:     0.8,
		RiskScore:   4,
		RiskFactors: []string{"auto-renewal"},
	})
	require.NoError(t, err)
	require.NotNil(t, result.ComplianceScore())
	assert.Equal(t, 0.8, result.ComplianceScore().Overall)
}

func TestContractService_DeleteContract(t *testing.T) {
	repo := &MockRepository{
		delete: func(_ context.Context, _ uuid.UUID) error {
			return e.ErrNotFound
		},
	}
	service, _ := newService(t, repo)

	err := service.DeleteContract(context.Background(), uuid.New())
	assert.ErrorIs(t, err, e.ErrNotFound)
	assert.Equal(t, 1, repo.deleteCalls)
}
