package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var financialEntity = entity{
	notFound:  "lançamento financeiro não encontrado",
	duplicate: "lançamento financeiro duplicado",
}

type FinancialFilter struct {
	Type      string
	Status    string
	PatientID uint64
}

type FinancialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) *FinancialRepository {
	return &FinancialRepository{db: db}
}

func (r *FinancialRepository) List(ctx context.Context, scope policy.Scope, f FinancialFilter) ([]models.FinancialEntry, error) {
	q := r.db.WithContext(ctx).Scopes(ApplyScope(scope, "clinic_id"))
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.PatientID != 0 {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	var list []models.FinancialEntry
	err := q.Order("created_at DESC, id DESC").Find(&list).Error
	return list, financialEntity.translate(err)
}

func (r *FinancialRepository) Get(ctx context.Context, scope policy.Scope, id uint64) (*models.FinancialEntry, error) {
	return findScoped[models.FinancialEntry](ctx, r.db, financialEntity, scope, id)
}

func (r *FinancialRepository) GetByPaymentRef(ctx context.Context, ref string) (*models.FinancialEntry, error) {
	var e models.FinancialEntry
	if err := r.db.WithContext(ctx).Where("payment_ref = ?", ref).First(&e).Error; err != nil {
		return nil, financialEntity.translate(err)
	}
	return &e, nil
}

func (r *FinancialRepository) Create(ctx context.Context, e *models.FinancialEntry) error {
	e.Version = 1
	return create(ctx, r.db, financialEntity, e)
}

// Update bumps the version; a stale e.Version yields a Conflict.
func (r *FinancialRepository) Update(ctx context.Context, e *models.FinancialEntry) error {
	prev := e.Version
	e.Version = prev + 1
	if err := updateVersioned(ctx, r.db, financialEntity, e.ID, prev, e); err != nil {
		e.Version = prev
		return err
	}
	return nil
}

func (r *FinancialRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.FinancialEntry](ctx, r.db, financialEntity, id)
}
