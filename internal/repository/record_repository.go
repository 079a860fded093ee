package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var recordEntity = entity{
	notFound:  "prontuário não encontrado",
	duplicate: "prontuário duplicado",
}

type RecordRepository struct {
	db *gorm.DB
}

func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) List(ctx context.Context, scope policy.Scope, patientID uint64) ([]models.ClinicalRecord, error) {
	q := r.db.WithContext(ctx).Scopes(ApplyScope(scope, "clinic_id"))
	if patientID != 0 {
		q = q.Where("patient_id = ?", patientID)
	}
	var list []models.ClinicalRecord
	err := q.Order("date DESC, id DESC").Find(&list).Error
	return list, recordEntity.translate(err)
}

func (r *RecordRepository) Get(ctx context.Context, scope policy.Scope, id uint64) (*models.ClinicalRecord, error) {
	return findScoped[models.ClinicalRecord](ctx, r.db, recordEntity, scope, id)
}

func (r *RecordRepository) Create(ctx context.Context, rec *models.ClinicalRecord) error {
	return create(ctx, r.db, recordEntity, rec)
}

func (r *RecordRepository) Save(ctx context.Context, rec *models.ClinicalRecord) error {
	return save(ctx, r.db, recordEntity, rec)
}

func (r *RecordRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.ClinicalRecord](ctx, r.db, recordEntity, id)
}
