package handlers

import (
	"time"

	"github.com/gartstein/contracto/internal/contract/domain"
	"github.com/google/uuid"
)

type partyResponse struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	LegalName string `json:"legal_name,omitempty"`
}

type moneyResponse struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type revisionResponse struct {
	Version       int       `json:"version"`
	ChangeSummary string    `json:"change_summary,omitempty"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

type contractResponse struct {
	ID                uuid.UUID               `json:"id"`
	Title             string                  `json:"title"`
	ContractType      string                  `json:"contract_type"`
	Status            string                  `json:"status"`
	PlainEnglishInput string                  `json:"plain_english_input,omitempty"`
	Client            partyResponse           `json:"client"`
	Supplier          *partyResponse          `json:"supplier,omitempty"`
	ContractValue     *moneyResponse          `json:"contract_value,omitempty"`
	StartDate         *time.Time              `json:"start_date,omitempty"`
	EndDate           *time.Time              `json:"end_date,omitempty"`
	GeneratedContent  string                  `json:"generated_content,omitempty"`
	FinalContent      string                  `json:"final_content,omitempty"`
	ComplianceScore   *domain.ComplianceScore `json:"compliance_score,omitempty"`
	RiskAssessment    *domain.RiskAssessment  `json:"risk_assessment,omitempty"`
	Version           int                     `json:"version"`
	Revisions         []revisionResponse      `json:"revisions,omitempty"`
	CompanyID         uuid.UUID               `json:"company_id"`
	CreatedBy         string                  `json:"created_by"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	ActivatedAt       *time.Time              `json:"activated_at,omitempty"`
	ActivatedBy       string                  `json:"activated_by,omitempty"`
	CompletedAt       *time.Time              `json:"completed_at,omitempty"`
	CompletedBy       string                  `json:"completed_by,omitempty"`
	TerminatedAt      *time.Time              `json:"terminated_at,omitempty"`
	TerminatedBy      string                  `json:"terminated_by,omitempty"`
	TerminationReason string                  `json:"termination_reason,omitempty"`
}

type pageResponse struct {
	Items []contractResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

func toContractResponse(c *domain.Contract) contractResponse {
	resp := contractResponse{
		ID:                c.ID(),
		Title:             c.Title(),
		ContractType:      string(c.Type()),
		Status:            string(c.Status()),
		PlainEnglishInput: c.PlainEnglishInput(),
		Client: partyResponse{
			Name:      c.Client().Name,
			Email:     c.Client().Email.String(),
			LegalName: c.Client().LegalName,
		},
		GeneratedContent:  c.GeneratedContent(),
		FinalContent:      c.FinalContent(),
		ComplianceScore:   c.ComplianceScore(),
		RiskAssessment:    c.RiskAssessment(),
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
		resp.Supplier = &partyResponse{Name: s.Name, Email: s.Email.String(), LegalName: s.LegalName}
	}
	if m := c.ContractValue(); m != nil {
		resp.ContractValue = &moneyResponse{Amount: m.Amount, Currency: m.Currency}
	}
	if r := c.DateRange(); r != nil {
		start, end := r.Start, r.End
		resp.StartDate = &start
		resp.EndDate = &end
	}
	for _, rev := range c.Revisions() {
		resp.Revisions = append(resp.Revisions, revisionResponse{
			Version:       rev.Version,
			ChangeSummary: rev.ChangeSummary,
			CreatedBy:     rev.CreatedBy,
			CreatedAt:     rev.CreatedAt,
		})
	}
	return resp
}

func toContractList(contracts []*domain.Contract) []contractResponse {
	out := make([]contractResponse, 0, len(contracts))
	for _, c := range contracts {
		out = append(out, toContractResponse(c))
	}
	return out
}
