package repository

import (
	"context"
	"strings"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var patientEntity = entity{
	notFound:  "paciente não encontrado",
	duplicate: "já existe um paciente com este CPF nesta clínica",
}

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// List returns patients under scope whose name or national id contains search.
func (r *PatientRepository) List(ctx context.Context, scope policy.Scope, search string) ([]models.Patient, error) {
	q := r.db.WithContext(ctx).Scopes(ApplyScope(scope, "clinic_id"))
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		q = q.Where("name LIKE ? OR national_id LIKE ?", like, like)
	}
	var patients []models.Patient
	err := q.Order("name ASC").Find(&patients).Error
	return patients, patientEntity.translate(err)
}

func (r *PatientRepository) Get(ctx context.Context, scope policy.Scope, id uint64) (*models.Patient, error) {
	return findScoped[models.Patient](ctx, r.db, patientEntity, scope, id)
}

func (r *PatientRepository) Create(ctx context.Context, p *models.Patient) error {
	return create(ctx, r.db, patientEntity, p)
}

func (r *PatientRepository) Save(ctx context.Context, p *models.Patient) error {
	return save(ctx, r.db, patientEntity, p)
}

func (r *PatientRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.Patient](ctx, r.db, patientEntity, id)
}
