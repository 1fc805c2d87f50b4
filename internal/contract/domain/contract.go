package domain

import (
	"time"

	e "github.com/gartstein/contracto/internal/contract/errors"
	"github.com/google/uuid"
)

var nowFunc = time.Now

// ContractType is the closed set of supported contract categories.
type ContractType string

const (
	ServiceAgreement   ContractType = "service_agreement"
	EmploymentContract ContractType = "employment_contract"
	SupplierAgreement  ContractType = "supplier_agreement"
	NDA                ContractType = "nda"
	TermsConditions    ContractType = "terms_conditions"
	Consultancy        ContractType = "consultancy"
	Partnership        ContractType = "partnership"
	Lease              ContractType = "lease"
)

var contractTypes = map[ContractType]struct{}{
	ServiceAgreement:   {},
	EmploymentContract: {},
	SupplierAgreement:  {},
	NDA:                {},
	TermsConditions:    {},
	Consultancy:        {},
	Partnership:        {},
	Lease:              {},
}

// ParseContractType validates a raw type string.
func ParseContractType(s string) (ContractType, error) {
	ct := ContractType(s)
	if _, ok := contractTypes[ct]; !ok {
		return "", e.Validation("unknown contract type %q", s)
	}
	return ct, nil
}

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	StatusDraft         ContractStatus = "DRAFT"
	StatusPendingReview ContractStatus = "PENDING_REVIEW"
	StatusActive        ContractStatus = "ACTIVE"
	StatusCompleted     ContractStatus = "COMPLETED"
	StatusExpired       ContractStatus = "EXPIRED"
	StatusTerminated    ContractStatus = "TERMINATED"
	StatusDeleted       ContractStatus = "DELETED"
)

var allowedTransitions = map[ContractStatus][]ContractStatus{
	StatusDraft:         {StatusPendingReview, StatusActive, StatusTerminated},
	StatusPendingReview: {StatusActive, StatusTerminated},
	StatusActive:        {StatusCompleted, StatusTerminated, StatusExpired},
}

// IsTerminal reports whether no transition can leave the status.
func (s ContractStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s ContractStatus) canTransitionTo(next ContractStatus) bool {
	for _, t := range allowedTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// AIMetadata describes how a piece of generated content was produced.
type AIMetadata struct {
	Model            string
	ProcessingTimeMS int64
	ConfidenceScore  float64
}

// Revision is one entry of a contract's content history.
type Revision struct {
	Version       int
	Content       string
	ChangeSummary string
	CreatedBy     string
	CreatedAt     time.Time
}

// Contract is the aggregate root. All state is private and mutated only
// through business methods; every rejected operation leaves the observable
// state untouched. The version counter doubles as the optimistic-lock token
// the repository checks at save time.
type Contract struct {
	id                uuid.UUID
	title             string
	contractType      ContractType
	status            ContractStatus
	plainEnglishInput string
	client            ContractParty
	supplier          *ContractParty
	contractValue     *Money
	dateRange         *DateRange
	generatedContent  string
	finalContent      string
	complianceScore   *ComplianceScore
	riskAssessment    *RiskAssessment

	version          int
	persistedVersion int
	revisions        []Revision

	createdBy string
	companyID uuid.UUID

	createdAt         time.Time
	updatedAt         time.Time
	activatedAt       *time.Time
	activatedBy       string
	completedAt       *time.Time
	completedBy       string
	terminatedAt      *time.Time
	terminatedBy      string
	terminationReason string

	events []Event
}

// New creates a DRAFT contract at version 1 with a single ContractCreated
// event recorded. The supplier party is optional.
func New(
	id uuid.UUID,
	title string,
	contractType ContractType,
	plainEnglishInput string,
	client ContractParty,
	supplier *ContractParty,
	createdBy string,
	companyID uuid.UUID,
) (*Contract, error) {
	if title == "" {
		return nil, e.Validation("contract title cannot be empty")
	}
	if _, ok := contractTypes[contractType]; !ok {
		return nil, e.Validation("unknown contract type %q", contractType)
	}
	if client.Name == "" {
		return nil, e.Validation("client party is required")
	}
	if supplier != nil && supplier.Name == "" {
		return nil, e.Validation("supplier party name cannot be empty")
	}
	if createdBy == "" {
		return nil, e.Validation("created_by user id is required")
	}

	now := nowFunc().UTC()
	c := &Contract{
		id:                id,
		title:             title,
		contractType:      contractType,
		status:            StatusDraft,
		plainEnglishInput: plainEnglishInput,
		client:            client,
		supplier:          supplier,
		version:           1,
		createdBy:         createdBy,
		companyID:         companyID,
		createdAt:         now,
		updatedAt:         now,
	}
	c.record(ContractCreated{
		baseEvent:    newBaseEvent(id),
		Title:        title,
		ContractType: contractType,
		ClientName:   client.Name,
		CompanyID:    companyID,
		CreatedBy:    createdBy,
	})
	return c, nil
}

// PersistenceState carries every stored field needed to rebuild a contract.
// It exists so the repository mapper never reaches into aggregate internals.
type PersistenceState struct {
	ID                uuid.UUID
	Title             string
	ContractType      ContractType
	Status            ContractStatus
	PlainEnglishInput string
	Client            ContractParty
	Supplier          *ContractParty
	ContractValue     *Money
	DateRange         *DateRange
	GeneratedContent  string
	FinalContent      string
	ComplianceScore   *ComplianceScore
	RiskAssessment    *RiskAssessment
	Version           int
	Revisions         []Revision
	CreatedBy         string
	CompanyID         uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ActivatedAt       *time.Time
	ActivatedBy       string
	CompletedAt       *time.Time
	CompletedBy       string
	TerminatedAt      *time.Time
	TerminatedBy      string
	TerminationReason string
}

// FromPersistence rebuilds a contract from storage. It is the only sanctioned
// way to set fields without business-method validation, and it always starts
// with zero pending domain events: stored history is never replayed.
func FromPersistence(s PersistenceState) *Contract {
	return &Contract{
		id:                s.ID,
		title:             s.Title,
		contractType:      s.ContractType,
		status:            s.Status,
		plainEnglishInput: s.PlainEnglishInput,
		client:            s.Client,
		supplier:          s.Supplier,
		contractValue:     s.ContractValue,
		dateRange:         s.DateRange,
		generatedContent:  s.GeneratedContent,
		finalContent:      s.FinalContent,
		complianceScore:   s.ComplianceScore,
		riskAssessment:    s.RiskAssessment,
		version:           s.Version,
		persistedVersion:  s.Version,
		revisions:         append([]Revision(nil), s.Revisions...),
		createdBy:         s.CreatedBy,
		companyID:         s.CompanyID,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		activatedAt:       s.ActivatedAt,
		activatedBy:       s.ActivatedBy,
		completedAt:       s.CompletedAt,
		completedBy:       s.CompletedBy,
		terminatedAt:      s.TerminatedAt,
		terminatedBy:      s.TerminatedBy,
		terminationReason: s.TerminationReason,
	}
}

// SetContractValue attaches a monetary value to the contract.
func (c *Contract) SetContractValue(m Money) error {
	if err := c.ensureModifiable(); err != nil {
		return err
	}
	c.contractValue = &m
	c.touch()
	return nil
}

// SetDateRange attaches the contract period.
func (c *Contract) SetDateRange(r DateRange) error {
	if err := c.ensureModifiable(); err != nil {
		return err
	}
	c.dateRange = &r
	c.touch()
	return nil
}

// SetGeneratedContent stores AI-generated draft content and records a
// ContractContentGenerated event.
func (c *Contract) SetGeneratedContent(content string, meta AIMetadata) error {
	if err := c.ensureModifiable(); err != nil {
		return err
	}
	c.generatedContent = content
	c.touch()
	c.record(ContractContentGenerated{
		baseEvent:        newBaseEvent(c.id),
		AIModel:          meta.Model,
		ProcessingTimeMS: meta.ProcessingTimeMS,
		ConfidenceScore:  meta.ConfidenceScore,
	})
	return nil
}

// FinalizeContent replaces the binding contract text.
func (c *Contract) FinalizeContent(content, userID string) error {
	if err := c.ensureModifiable(); err != nil {
		return err
	}
	if content == "" {
		return e.Validation("final content cannot be empty")
	}
	c.finalContent = content
	c.touch()
	return nil
}

// SetComplianceAnalysis attaches the outcome of a compliance run. Allowed in
// any state: analysis of completed contracts is still useful for audits.
func (c *Contract) SetComplianceAnalysis(score ComplianceScore, risk RiskAssessment) {
	c.complianceScore = &score
	c.riskAssessment = &risk
	c.touch()
}

// SubmitForReview moves a draft into PENDING_REVIEW.
func (c *Contract) SubmitForReview() error {
	if !c.status.canTransitionTo(StatusPendingReview) {
		return e.RuleViolation("cannot submit %s contract for review", c.status)
	}
	c.status = StatusPendingReview
	c.touch()
	return nil
}

// Activate makes the contract legally effective. Requires finalized content,
// a date range that has not already ended, and a DRAFT or PENDING_REVIEW status.
func (c *Contract) Activate(userID string) error {
	if c.finalContent == "" {
		return e.RuleViolation("Cannot activate contract without final content")
	}
	if c.dateRange != nil && c.dateRange.ExpiredAt(nowFunc()) {
		return e.RuleViolation("Cannot activate expired contract")
	}
	if !c.status.canTransitionTo(StatusActive) {
		return e.RuleViolation("cannot activate contract in status %s", c.status)
	}
	now := nowFunc().UTC()
	c.status = StatusActive
	c.activatedAt = &now
	c.activatedBy = userID
	c.touch()

	ev := ContractActivated{
		baseEvent:     newBaseEvent(c.id),
		ActivatedBy:   userID,
		ContractValue: c.contractValue,
	}
	if c.dateRange != nil {
		ev.StartDate = &c.dateRange.Start
	}
	c.record(ev)
	return nil
}

// Complete closes out an active contract.
func (c *Contract) Complete(userID, reason string) error {
	if c.status != StatusActive {
		return e.RuleViolation("Cannot complete contract that is not active")
	}
	now := nowFunc().UTC()
	c.status = StatusCompleted
	c.completedAt = &now
	c.completedBy = userID
	c.touch()
	c.record(ContractCompleted{
		baseEvent:        newBaseEvent(c.id),
		CompletedBy:      userID,
		CompletionReason: reason,
	})
	return nil
}

// Terminate ends the contract early from any non-terminal state.
func (c *Contract) Terminate(userID, reason string) error {
	if !c.status.canTransitionTo(StatusTerminated) {
		return e.RuleViolation("cannot terminate contract in status %s", c.status)
	}
	now := nowFunc().UTC()
	c.status = StatusTerminated
	c.terminatedAt = &now
	c.terminatedBy = userID
	c.terminationReason = reason
	c.touch()
	c.record(ContractTerminated{
		baseEvent:         newBaseEvent(c.id),
		TerminatedBy:      userID,
		TerminationReason: reason,
	})
	return nil
}

// Expire marks an active contract whose period has ended.
func (c *Contract) Expire() error {
	if !c.status.canTransitionTo(StatusExpired) {
		return e.RuleViolation("cannot expire contract in status %s", c.status)
	}
	c.status = StatusExpired
	c.touch()
	return nil
}

// CreateRevision replaces the final content and appends exactly one history
// entry, incrementing the version by one.
func (c *Contract) CreateRevision(content, changeSummary, userID string) error {
	if err := c.ensureModifiable(); err != nil {
		return err
	}
	if content == "" {
		return e.Validation("revision content cannot be empty")
	}
	c.version++
	c.finalContent = content
	c.revisions = append(c.revisions, Revision{
		Version:       c.version,
		Content:       content,
		ChangeSummary: changeSummary,
		CreatedBy:     userID,
		CreatedAt:     nowFunc().UTC(),
	})
	c.updatedAt = nowFunc().UTC()
	return nil
}

// ensureModifiable rejects content mutation once the contract reached a
// terminal state.
func (c *Contract) ensureModifiable() error {
	if c.status.IsTerminal() {
		return e.RuleViolation("Cannot modify completed contract")
	}
	return nil
}

// touch bumps the optimistic-lock counter and the updated timestamp. Every
// successful mutation moves the version forward so concurrent writers of the
// same loaded snapshot collide at save time.
func (c *Contract) touch() {
	c.version++
	c.updatedAt = nowFunc().UTC()
}

func (c *Contract) record(ev Event) {
	c.events = append(c.events, ev)
}

// DomainEvents returns the events recorded since construction or the last
// ClearDomainEvents call. The aggregate never clears the list itself.
func (c *Contract) DomainEvents() []Event {
	return append([]Event(nil), c.events...)
}

// ClearDomainEvents drops recorded events. Called by the application service
// after the save and the publish both went through.
func (c *Contract) ClearDomainEvents() {
	c.events = nil
}

// MarkPersisted records that the current version is durably stored. Called by
// the repository after a successful save; the persisted version is the token
// the next save's optimistic check runs against.
func (c *Contract) MarkPersisted() {
	c.persistedVersion = c.version
}

// Equals compares by identity only: two contracts with the same id are the
// same aggregate regardless of field state.
func (c *Contract) Equals(other *Contract) bool {
	if other == nil {
		return false
	}
	return c.id == other.id
}

func (c *Contract) ID() uuid.UUID            { return c.id }
func (c *Contract) Title() string            { return c.title }
func (c *Contract) Type() ContractType       { return c.contractType }
func (c *Contract) Status() ContractStatus   { return c.status }
func (c *Contract) PlainEnglishInput() string { return c.plainEnglishInput }
func (c *Contract) Client() ContractParty    { return c.client }
func (c *Contract) Supplier() *ContractParty { return c.supplier }
func (c *Contract) ContractValue() *Money    { return c.contractValue }
func (c *Contract) DateRange() *DateRange    { return c.dateRange }
func (c *Contract) GeneratedContent() string { return c.generatedContent }
func (c *Contract) FinalContent() string     { return c.finalContent }

func (c *Contract) ComplianceScore() *ComplianceScore { return c.complianceScore }
func (c *Contract) RiskAssessment() *RiskAssessment   { return c.riskAssessment }

func (c *Contract) Version() int          { return c.version }
func (c *Contract) PersistedVersion() int { return c.persistedVersion }

// Revisions returns a copy of the content history, oldest first.
func (c *Contract) Revisions() []Revision {
	return append([]Revision(nil), c.revisions...)
}

func (c *Contract) CreatedBy() string          { return c.createdBy }
func (c *Contract) CompanyID() uuid.UUID       { return c.companyID }
func (c *Contract) CreatedAt() time.Time       { return c.createdAt }
func (c *Contract) UpdatedAt() time.Time       { return c.updatedAt }
func (c *Contract) ActivatedAt() *time.Time    { return c.activatedAt }
func (c *Contract) ActivatedBy() string        { return c.activatedBy }
func (c *Contract) CompletedAt() *time.Time    { return c.completedAt }
func (c *Contract) CompletedBy() string        { return c.completedBy }
func (c *Contract) TerminatedAt() *time.Time   { return c.terminatedAt }
func (c *Contract) TerminatedBy() string       { return c.terminatedBy }
func (c *Contract) TerminationReason() string  { return c.terminationReason }
