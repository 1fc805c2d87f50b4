package db

import (
	"encoding/json"
	"fmt"

	"github.com/gartstein/contracto/internal/contract/db/models"
	"github.com/gartstein/contracto/internal/contract/domain"
)

// toRecord flattens the aggregate into its live row plus revision rows.
func toRecord(c *domain.Contract) (*models.ContractRecord, []models.ContractRevision, error) {
	rec := &models.ContractRecord{
		ID:                c.ID(),
		Title:             c.Title(),
		ContractType:      string(c.Type()),
		Status:            string(c.Status()),
		PlainEnglishInput: c.PlainEnglishInput(),
		ClientName:        c.Client().Name,
		ClientEmail:       c.Client().Email.String(),
		ClientLegalName:   c.Client().LegalName,
		GeneratedContent:  c.GeneratedContent(),
		FinalContent:      c.FinalContent(),
		Version:           c.Version(),
		CompanyID:         c.CompanyID(),
		CreatedBy:         c.CreatedBy(),
		CreatedAt:         c.CreatedAt(),
		UpdatedAt:         c.UpdatedAt(),
		ActivatedAt:       c.ActivatedAt(),
		ActivatedBy:       c.ActivatedBy(),
		CompletedAt:       c.CompletedAt(),
		CompletedBy:       c.CompletedBy(),
		TerminatedAt:      c.TerminatedAt(),
		TerminatedBy:      c.TerminatedBy(),
		TerminationReason: c.TerminationReason(),
	}

	if s := c.Supplier(); s != nil {
		rec.SupplierName = s.Name
		rec.SupplierEmail = s.Email.String()
		rec.SupplierLegalName = s.LegalName
	}
	if m := c.ContractValue(); m != nil {
		rec.ContractValue = &m.Amount
		rec.Currency = m.Currency
	}
	if r := c.DateRange(); r != nil {
		rec.StartDate = &r.Start
		rec.EndDate = &r.End
	}
	if cs := c.ComplianceScore(); cs != nil {
		raw, err := json.Marshal(cs)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal compliance score: %w", err)
		}
		s := string(raw)
		rec.ComplianceScore = &s
	}
	if ra := c.RiskAssessment(); ra != nil {
		raw, err := json.Marshal(ra)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal risk assessment: %w", err)
		}
		s := string(raw)
		rec.RiskAssessment = &s
	}

	var revs []models.ContractRevision
	for _, r := range c.Revisions() {
		revs = append(revs, models.ContractRevision{
			ContractID:    c.ID(),
			Version:       r.Version,
			Content:       r.Content,
			ChangeSummary: r.ChangeSummary,
			CreatedBy:     r.CreatedBy,
			CreatedAt:     r.CreatedAt,
		})
	}
	return rec, revs, nil
}

// toDomain rebuilds the aggregate through the FromPersistence factory, the
// only field-level restore path the domain allows.
func toDomain(rec *models.ContractRecord, revs []models.ContractRevision) (*domain.Contract, error) {
	state := domain.PersistenceState{
		ID:                rec.ID,
		Title:             rec.Title,
		ContractType:      domain.ContractType(rec.ContractType),
		Status:            domain.ContractStatus(rec.Status),
		PlainEnglishInput: rec.PlainEnglishInput,
		GeneratedContent:  rec.GeneratedContent,
		FinalContent:      rec.FinalContent,
		Version:           rec.Version,
		CreatedBy:         rec.CreatedBy,
		CompanyID:         rec.CompanyID,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
		ActivatedAt:       rec.ActivatedAt,
		ActivatedBy:       rec.ActivatedBy,
		CompletedAt:       rec.CompletedAt,
		CompletedBy:       rec.CompletedBy,
		TerminatedAt:      rec.TerminatedAt,
		TerminatedBy:      rec.TerminatedBy,
		TerminationReason: rec.TerminationReason,
	}

	client, err := restoreParty(rec.ClientName, rec.ClientEmail, rec.ClientLegalName)
	if err != nil {
		return nil, fmt.Errorf("stored client party is corrupt: %w", err)
	}
	state.Client = client

	if rec.SupplierName != "" {
		supplier, err := restoreParty(rec.SupplierName, rec.SupplierEmail, rec.SupplierLegalName)
		if err != nil {
			return nil, fmt.Errorf("stored supplier party is corrupt: %w", err)
		}
		state.Supplier = &supplier
	}
	if rec.ContractValue != nil {
		m, err := domain.NewMoney(*rec.ContractValue, rec.Currency)
		if err != nil {
			return nil, fmt.Errorf("stored contract value is corrupt: %w", err)
		}
		state.ContractValue = &m
	}
	if rec.StartDate != nil && rec.EndDate != nil {
		r, err := domain.NewDateRange(*rec.StartDate, *rec.EndDate)
		if err != nil {
			return nil, fmt.Errorf("stored date range is corrupt: %w", err)
		}
		state.DateRange = &r
	}
	if rec.ComplianceScore != nil {
		var cs domain.ComplianceScore
		if err := json.Unmarshal([]byte(*rec.ComplianceScore), &cs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal compliance score: %w", err)
		}
		state.ComplianceScore = &cs
	}
	if rec.RiskAssessment != nil {
		var ra domain.RiskAssessment
		if err := json.Unmarshal([]byte(*rec.RiskAssessment), &ra); err != nil {
			return nil, fmt.Errorf("failed to unmarshal risk assessment: %w", err)
		}
		state.RiskAssessment = &ra
	}

	for _, r := range revs {
		state.Revisions = append(state.Revisions, domain.Revision{
			Version:       r.Version,
			Content:       r.Content,
			ChangeSummary: r.ChangeSummary,
			CreatedBy:     r.CreatedBy,
			CreatedAt:     r.CreatedAt,
		})
	}
	return domain.FromPersistence(state), nil
}

func restoreParty(name, email, legalName string) (domain.ContractParty, error) {
	return domain.NewContractParty(name, email, legalName)
}
