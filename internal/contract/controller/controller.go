// Package controller implements the application service for contracts:
// each use case loads the aggregate, invokes one business method, persists
// through the version-checked repository, and only then publishes the
// recorded domain events.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/gartstein/contracto/internal/contract/db"
	"github.com/gartstein/contracto/internal/contract/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher fans domain events out to side-effect handlers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

// Repository defines the storage port for Contract aggregates.
type Repository interface {
	Save(ctx context.Context, c *domain.Contract) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	FindByCompany(ctx context.Context, companyID uuid.UUID, page, size int) (*db.Page, error)
	FindWithFilter(ctx context.Context, f db.Filter, page, size int) (*db.Page, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	CountWithFilter(ctx context.Context, f db.Filter) (int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindExpiring(ctx context.Context, daysAhead int) ([]*domain.Contract, error)
	FindRequiringComplianceReview(ctx context.Context, companyID uuid.UUID) ([]*domain.Contract, error)
	Close() error
}

// ContractService orchestrates contract use cases.
type ContractService struct {
	repo      Repository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewContractService constructs a ContractService.
func NewContractService(repo Repository, publisher EventPublisher, logger *zap.Logger) *ContractService {
	return &ContractService{
		repo:      repo,
		publisher: publisher,
		logger:    logger.Named("contract_service"),
	}
}

// CreateInput carries everything needed to create a contract.
type CreateInput struct {
	Title             string
	ContractType      string
	PlainEnglishInput string
	ClientName        string
	ClientEmail       string
	ClientLegalName   string
	SupplierName      string
	SupplierEmail     string
	SupplierLegalName string
	CreatedBy         string
	CompanyID         uuid.UUID
}

// AnalysisInput carries a compliance analysis result.
type AnalysisInput struct {
	Overall         float64
	GDPR            *float64
	Employment      *float64
	Consumer        *float64
	Commercial      *float64
	RiskScore       int
	RiskFactors     []string
	Recommendations []string
}

// CreateContract validates the input, persists a new draft, and publishes
// its ContractCreated event.
func (s *ContractService) CreateContract(ctx context.Context, in CreateInput) (*domain.Contract, error) {
	contractType, err := domain.ParseContractType(in.ContractType)
	if err != nil {
		return nil, err
	}
	client, err := domain.NewContractParty(in.ClientName, in.ClientEmail, in.ClientLegalName)
	if err != nil {
		return nil, err
	}
	var supplier *domain.ContractParty
	if in.SupplierName != "" {
		p, err := domain.NewContractParty(in.SupplierName, in.SupplierEmail, in.SupplierLegalName)
		if err != nil {
			return nil, err
		}
		supplier = &p
	}

	c, err := domain.New(uuid.New(), in.Title, contractType, in.PlainEnglishInput,
		client, supplier, in.CreatedBy, in.CompanyID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}
	s.publishEvents(ctx, c)
	return c, nil
}

// GetContract fetches one contract; ErrNotFound when absent.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return s.repo.GetByID(ctx, id)
}

// ListContracts pages through contracts matching the filter.
func (s *ContractService) ListContracts(ctx context.Context, f db.Filter, page, size int) (*db.Page, error) {
	return s.repo.FindWithFilter(ctx, f, page, size)
}

// SetContractValue attaches a monetary value.
func (s *ContractService) SetContractValue(ctx context.Context, id uuid.UUID, amount float64, currency string) (*domain.Contract, error) {
	money, err := domain.NewMoney(amount, currency)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.SetContractValue(money)
	})
}

// SetDateRange attaches the contract period.
func (s *ContractService) SetDateRange(ctx context.Context, id uuid.UUID, start, end time.Time) (*domain.Contract, error) {
	dates, err := domain.NewDateRange(start, end)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.SetDateRange(dates)
	})
}

// AttachGeneratedContent stores AI-generated draft content.
func (s *ContractService) AttachGeneratedContent(ctx context.Context, id uuid.UUID, content string, meta domain.AIMetadata) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.SetGeneratedContent(content, meta)
	})
}

// FinalizeContent replaces the binding contract text.
func (s *ContractService) FinalizeContent(ctx context.Context, id uuid.UUID, content, userID string) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.FinalizeContent(content, userID)
	})
}

// RecordComplianceAnalysis attaches a compliance analysis result.
func (s *ContractService) RecordComplianceAnalysis(ctx context.Context, id uuid.UUID, in AnalysisInput) (*domain.Contract, error) {
	score, err := domain.NewComplianceScore(in.Overall, in.GDPR, in.Employment, in.Consumer, in.Commercial)
	if err != nil {
		return nil, err
	}
	risk, err := domain.NewRiskAssessment(in.RiskScore, in.RiskFactors, in.Recommendations)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		c.SetComplianceAnalysis(score, risk)
		return nil
	})
}

// SubmitForReview moves a draft into review.
func (s *ContractService) SubmitForReview(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.SubmitForReview()
	})
}

// ActivateContract makes the contract effective.
func (s *ContractService) ActivateContract(ctx context.Context, id uuid.UUID, userID string) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.Activate(userID)
	})
}

// CompleteContract closes out an active contract.
func (s *ContractService) CompleteContract(ctx context.Context, id uuid.UUID, userID, reason string) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.Complete(userID, reason)
	})
}

// TerminateContract ends the contract early.
func (s *ContractService) TerminateContract(ctx context.Context, id uuid.UUID, userID, reason string) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.Terminate(userID, reason)
	})
}

// CreateRevision appends one content revision.
func (s *ContractService) CreateRevision(ctx context.Context, id uuid.UUID, content, changeSummary, userID string) (*domain.Contract, error) {
	return s.mutate(ctx, id, func(c *domain.Contract) error {
		return c.CreateRevision(content, changeSummary, userID)
	})
}

// DeleteContract hard-removes a contract and its history.
func (s *ContractService) DeleteContract(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ExpiringContracts lists active contracts ending within daysAhead days.
func (s *ContractService) ExpiringContracts(ctx context.Context, daysAhead int) ([]*domain.Contract, error) {
	return s.repo.FindExpiring(ctx, daysAhead)
}

// ComplianceReviewQueue lists a company's contracts still awaiting analysis.
func (s *ContractService) ComplianceReviewQueue(ctx context.Context, companyID uuid.UUID) ([]*domain.Contract, error) {
	return s.repo.FindRequiringComplianceReview(ctx, companyID)
}

// mutate runs one business method against a loaded aggregate and persists
// the result. A ConflictError from Save is returned as-is: the caller decides
// whether to reload and retry.
func (s *ContractService) mutate(ctx context.Context, id uuid.UUID, fn func(*domain.Contract) error) (*domain.Contract, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, c)
	return c, nil
}

// publishEvents runs after a successful save: the state change is already
// durable, so handler failures can no longer affect it.
func (s *ContractService) publishEvents(ctx context.Context, c *domain.Contract) {
	for _, ev := range c.DomainEvents() {
		s.publisher.Publish(ctx, ev)
	}
	c.ClearDomainEvents()

	s.logger.Debug("published domain events",
		zap.String("contract_id", c.ID().String()),
	)
}
