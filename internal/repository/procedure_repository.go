package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var procedureEntity = entity{
	notFound:  "procedimento não encontrado",
	duplicate: "procedimento duplicado",
}

type ProcedureFilter struct {
	PatientID uint64
	Category  string
}

type ProcedureRepository struct {
	db *gorm.DB
}

func NewProcedureRepository(db *gorm.DB) *ProcedureRepository {
	return &ProcedureRepository{db: db}
}

func (r *ProcedureRepository) List(ctx context.Context, scope policy.Scope, f ProcedureFilter) ([]models.Procedure, error) {
	q := r.db.WithContext(ctx).Scopes(ApplyScope(scope, "clinic_id")).Preload("Patient")
	if f.PatientID != 0 {
		q = q.Where("patient_id = ?", f.PatientID)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var list []models.Procedure
	err := q.Order("created_at DESC").Find(&list).Error
	return list, procedureEntity.translate(err)
}

func (r *ProcedureRepository) Get(ctx context.Context, scope policy.Scope, id uint64) (*models.Procedure, error) {
	return findScoped[models.Procedure](ctx, r.db, procedureEntity, scope, id)
}

func (r *ProcedureRepository) Create(ctx context.Context, p *models.Procedure) error {
	return create(ctx, r.db, procedureEntity, p)
}

func (r *ProcedureRepository) Save(ctx context.Context, p *models.Procedure) error {
	return save(ctx, r.db, procedureEntity, p)
}

func (r *ProcedureRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.Procedure](ctx, r.db, procedureEntity, id)
}

// Unledgered lists priced procedures that have no financial entry pointing at
// them.
func (r *ProcedureRepository) Unledgered(ctx context.Context, scope policy.Scope) ([]models.Procedure, error) {
	var list []models.Procedure
	err := r.db.WithContext(ctx).
		Scopes(ApplyScope(scope, "procedures.clinic_id")).
		Where("procedures.price > 0").
		Where("NOT EXISTS (SELECT 1 FROM financial_entries fe WHERE fe.procedure_id = procedures.id)").
		Order("procedures.created_at ASC").
		Find(&list).Error
	return list, procedureEntity.translate(err)
}
