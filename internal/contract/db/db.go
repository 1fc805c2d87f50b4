// Package db implements the contract repository on top of GORM/Postgres.
// It owns the aggregate-to-row mapping and enforces optimistic concurrency:
// a save against a stale version fails with a ConflictError and writes nothing.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gartstein/contracto/internal/contract/db/models"
	"github.com/gartstein/contracto/internal/contract/domain"
	e "github.com/gartstein/contracto/internal/contract/errors"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists Contract aggregates.
type Repository struct {
	db *gorm.DB
}

// Config holds the Postgres connection settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewRepository connects to Postgres and migrates the contract tables.
func NewRepository(cfg *Config) (*Repository, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := gormDB.AutoMigrate(&models.ContractRecord{}, &models.ContractRevision{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Repository{db: gormDB}, nil
}

// Filter narrows contract listings. Nil fields are ignored; substring fields
// match case-sensitively anywhere in the column.
type Filter struct {
	CompanyID    *uuid.UUID
	ContractType *domain.ContractType
	Status       *domain.ContractStatus
	CreatedBy    *string
	PartyName    *string
	Title        *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	MinValue     *float64
	MaxValue     *float64
}

// Page is one page of a contract listing.
type Page struct {
	Items []*domain.Contract
	Total int64
	Num   int
	Size  int
}

// Save inserts the aggregate when it is new, otherwise performs a
// version-guarded update: the stored version must equal the version the
// aggregate was loaded with, or the whole save fails with a ConflictError.
// Revision rows are written in the same transaction.
func (r *Repository) Save(ctx context.Context, c *domain.Contract) error {
	rec, revs, err := toRecord(c)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.ContractRecord
		res := tx.Select("version").Take(&stored, "id = ?", c.ID())
		if res.Error != nil {
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}
			if err := tx.Create(rec).Error; err != nil {
				return fmt.Errorf("failed to insert contract: %w", err)
			}
			return insertRevisions(tx, revs)
		}

		if stored.Version != c.PersistedVersion() {
			return &e.ConflictError{Expected: c.PersistedVersion(), Actual: stored.Version}
		}

		update := tx.Model(&models.ContractRecord{}).
			Where("id = ? AND version = ?", c.ID(), c.PersistedVersion()).
			Select("*").
			Omit("id", "created_at").
			Updates(rec)
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			// Lost the race between the read above and the guarded update.
			var current models.ContractRecord
			if err := tx.Select("version").Take(&current, "id = ?", c.ID()).Error; err != nil {
				return err
			}
			return &e.ConflictError{Expected: c.PersistedVersion(), Actual: current.Version}
		}
		return insertRevisions(tx, revs)
	})
	if err != nil {
		return err
	}

	c.MarkPersisted()
	return nil
}

// insertRevisions writes history rows, skipping snapshots already stored.
func insertRevisions(tx *gorm.DB, revs []models.ContractRevision) error {
	if len(revs) == 0 {
		return nil
	}
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "contract_id"}, {Name: "version"}},
		DoNothing: true,
	}).Create(&revs)
	if res.Error != nil {
		return fmt.Errorf("failed to insert contract revisions: %w", res.Error)
	}
	return nil
}

// FindByID returns the contract, or nil when it does not exist. Absence is a
// normal outcome here; callers that require existence use GetByID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var rec models.ContractRecord
	res := r.db.WithContext(ctx).Take(&rec, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, res.Error
	}

	var revs []models.ContractRevision
	if err := r.db.WithContext(ctx).
		Where("contract_id = ?", id).
		Order("version ASC").
		Find(&revs).Error; err != nil {
		return nil, err
	}
	return toDomain(&rec, revs)
}

// GetByID returns the contract or ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, e.ErrNotFound
	}
	return c, nil
}

// FindByCompany lists a company's contracts, newest first.
func (r *Repository) FindByCompany(ctx context.Context, companyID uuid.UUID, page, size int) (*Page, error) {
	return r.FindWithFilter(ctx, Filter{CompanyID: &companyID}, page, size)
}

// FindWithFilter lists contracts matching the filter, newest first.
func (r *Repository) FindWithFilter(ctx context.Context, f Filter, page, size int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}

	var total int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&models.ContractRecord{}), f).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var recs []models.ContractRecord
	if err := applyFilter(r.db.WithContext(ctx).Model(&models.ContractRecord{}), f).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&recs).Error; err != nil {
		return nil, err
	}

	items, err := r.hydrate(ctx, recs)
	if err != nil {
		return nil, err
	}
	return &Page{Items: items, Total: total, Num: page, Size: size}, nil
}

// CountByCompany counts a company's contracts.
func (r *Repository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return r.CountWithFilter(ctx, Filter{CompanyID: &companyID})
}

// CountWithFilter counts contracts matching the filter.
func (r *Repository) CountWithFilter(ctx context.Context, f Filter) (int64, error) {
	var total int64
	err := applyFilter(r.db.WithContext(ctx).Model(&models.ContractRecord{}), f).Count(&total).Error
	return total, err
}

// Exists reports whether a contract with the id is stored.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ContractRecord{}).
		Where("id = ?", id).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the contract and its revision history. ErrNotFound when the
// contract does not exist.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.ContractRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return e.ErrNotFound
		}
		return tx.Delete(&models.ContractRevision{}, "contract_id = ?", id).Error
	})
}

// FindExpiring returns ACTIVE contracts whose end date falls within the next
// daysAhead days.
func (r *Repository) FindExpiring(ctx context.Context, daysAhead int) ([]*domain.Contract, error) {
	now := time.Now().UTC()
	horizon := now.AddDate(0, 0, daysAhead)

	var recs []models.ContractRecord
	err := r.db.WithContext(ctx).
		Where("status = ?", string(domain.StatusActive)).
		Where("end_date IS NOT NULL AND end_date >= ? AND end_date <= ?", now, horizon).
		Order("end_date ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, recs)
}

// FindRequiringComplianceReview returns a company's DRAFT and ACTIVE
// contracts that have no compliance score yet.
func (r *Repository) FindRequiringComplianceReview(ctx context.Context, companyID uuid.UUID) ([]*domain.Contract, error) {
	var recs []models.ContractRecord
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("status IN ?", []string{string(domain.StatusDraft), string(domain.StatusActive)}).
		Where("compliance_score IS NULL").
		Order("created_at ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, recs)
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *Repository) hydrate(ctx context.Context, recs []models.ContractRecord) ([]*domain.Contract, error) {
	contracts := make([]*domain.Contract, 0, len(recs))
	for i := range recs {
		var revs []models.ContractRevision
		if err := r.db.WithContext(ctx).
			Where("contract_id = ?", recs[i].ID).
			Order("version ASC").
			Find(&revs).Error; err != nil {
			return nil, err
		}
		c, err := toDomain(&recs[i], revs)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.ContractType != nil {
		q = q.Where("contract_type = ?", string(*f.ContractType))
	}
	if f.Status != nil {
		q = q.Where("status = ?", string(*f.Status))
	}
	if f.CreatedBy != nil {
		q = q.Where("created_by = ?", *f.CreatedBy)
	}
	if f.PartyName != nil {
		pattern := "%" + *f.PartyName + "%"
		q = q.Where("client_name LIKE ? OR supplier_name LIKE ?", pattern, pattern)
	}
	if f.Title != nil {
		q = q.Where("title LIKE ?", "%"+*f.Title+"%")
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}
	if f.MinValue != nil {
		q = q.Where("contract_value >= ?", *f.MinValue)
	}
	if f.MaxValue != nil {
		q = q.Where("contract_value <= ?", *f.MaxValue)
	}
	return q
}
