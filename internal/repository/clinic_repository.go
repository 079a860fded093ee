package repository

import (
	"context"
	"errors"

	"clinic-backend/internal/models"

	"gorm.io/gorm"
)

var clinicEntity = entity{
	notFound:  "clínica não encontrada",
	duplicate: "já existe uma clínica com este nome",
}

type ClinicRepository struct {
	db *gorm.DB
}

func NewClinicRepository(db *gorm.DB) *ClinicRepository {
	return &ClinicRepository{db: db}
}

func (r *ClinicRepository) List(ctx context.Context) ([]models.Clinic, error) {
	var clinics []models.Clinic
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&clinics).Error
	return clinics, clinicEntity.translate(err)
}

func (r *ClinicRepository) Get(ctx context.Context, id uint64) (*models.Clinic, error) {
	var c models.Clinic
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, clinicEntity.translate(err)
	}
	return &c, nil
}

// Matrix returns the oldest clinic, or nil when none exists.
func (r *ClinicRepository) Matrix(ctx context.Context) (*models.Clinic, error) {
	var c models.Clinic
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, clinicEntity.translate(err)
	}
	return &c, nil
}

func (r *ClinicRepository) Create(ctx context.Context, c *models.Clinic) error {
	return create(ctx, r.db, clinicEntity, c)
}

func (r *ClinicRepository) Save(ctx context.Context, c *models.Clinic) error {
	return save(ctx, r.db, clinicEntity, c)
}

func (r *ClinicRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.Clinic](ctx, r.db, clinicEntity, id)
}

// CountUsers counts users affiliated with the clinic.
func (r *ClinicRepository) CountUsers(ctx context.Context, id uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("clinic_id = ?", id).Count(&n).Error
	return n, clinicEntity.translate(err)
}
