// Package models contains the storage row shapes for the contract
// repository, configured for GORM. The domain aggregate never sees these
// types; the mapper in the db package translates both ways.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractRecord is the live row for one contract aggregate. There is
// exactly one row per aggregate; content history lives in ContractRevision.
type ContractRecord struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title             string    `gorm:"size:500;not null"`
	ContractType      string    `gorm:"size:50;index"`
	Status            string    `gorm:"size:20;index"`
	PlainEnglishInput string    `gorm:"type:text"`

	ClientName         string `gorm:"size:255"`
	ClientEmail        string `gorm:"size:255"`
	ClientLegalName    string `gorm:"size:255"`
	SupplierName       string `gorm:"size:255"`
	SupplierEmail      string `gorm:"size:255"`
	SupplierLegalName  string `gorm:"size:255"`

	ContractValue *float64 `gorm:"check:contract_value >= 0"`
	Currency      string   `gorm:"size:3"`
	StartDate     *time.Time
	EndDate       *time.Time `gorm:"index"`

	GeneratedContent string `gorm:"type:text"`
	FinalContent     string `gorm:"type:text"`

	// JSON blobs for the analysis value objects; null until an analysis ran.
	ComplianceScore *string `gorm:"type:text"`
	RiskAssessment  *string `gorm:"type:text"`

	Version   int       `gorm:"not null"`
	CompanyID uuid.UUID `gorm:"type:uuid;index"`
	CreatedBy string    `gorm:"size:64;index"`

	CreatedAt         time.Time
	UpdatedAt         time.Time
	ActivatedAt       *time.Time
	ActivatedBy       string `gorm:"size:64"`
	CompletedAt       *time.Time
	CompletedBy       string `gorm:"size:64"`
	TerminatedAt      *time.Time
	TerminatedBy      string `gorm:"size:64"`
	TerminationReason string `gorm:"size:1000"`
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (ContractRecord) TableName() string { return "contracts" }

// ContractRevision is one snapshot of a contract's content history.
type ContractRevision struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	ContractID    uuid.UUID `gorm:"type:uuid;index;uniqueIndex:idx_contract_version"`
	Version       int       `gorm:"uniqueIndex:idx_contract_version"`
	Content       string    `gorm:"type:text"`
	ChangeSummary string    `gorm:"size:1000"`
	CreatedBy     string    `gorm:"size:64"`
	CreatedAt     time.Time
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (ContractRevision) TableName() string { return "contract_revisions" }
