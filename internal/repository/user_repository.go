package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var userEntity = entity{
	notFound:  "usuário não encontrado",
	duplicate: "nome de usuário já está em uso",
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error
	return n, userEntity.translate(err)
}

func (r *UserRepository) Get(ctx context.Context, id uint64) (*models.User, error) {
	return findScoped[models.User](ctx, r.db, userEntity, policy.All(), id, "Clinic")
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, userEntity.translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("reset_token = ?", token).First(&u).Error; err != nil {
		return nil, userEntity.translate(err)
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Preload("Clinic").Order("name ASC").Find(&users).Error
	return users, userEntity.translate(err)
}

// ListProfessionals lists staff visible under scope, optionally by sub-role.
func (r *UserRepository) ListProfessionals(ctx context.Context, scope policy.Scope, subRole string) ([]models.User, error) {
	q := r.db.WithContext(ctx).Scopes(ApplyScope(scope, "clinic_id"))
	if subRole != "" {
		q = q.Where("sub_role = ?", subRole)
	}
	var users []models.User
	err := q.Order("name ASC").Find(&users).Error
	return users, userEntity.translate(err)
}

// DeviceTokens returns the push tokens of the staff of a clinic and of every
// owner.
func (r *UserRepository) DeviceTokens(ctx context.Context, clinicID *uint64) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("fcm_token <> ''")
	if clinicID != nil {
		q = q.Where("clinic_id = ? OR role = ?", *clinicID, models.RoleOwner)
	}
	var tokens []string
	err := q.Pluck("fcm_token", &tokens).Error
	return tokens, userEntity.translate(err)
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return create(ctx, r.db, userEntity, u)
}

func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	return save(ctx, r.db, userEntity, u)
}

func (r *UserRepository) Delete(ctx context.Context, id uint64) error {
	return remove[models.User](ctx, r.db, userEntity, id)
}
