// Package repository is the gorm-backed persistence of every clinic entity.
// Tenant filters arrive as policy.Scope values and are turned into SQL here.
package repository

import (
	"context"
	"errors"

	"clinic-backend/internal/policy"
	"clinic-backend/pkg/apperror"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyScope restricts a query to the clinics allowed by s.
func ApplyScope(s policy.Scope, column string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch s.Kind {
		case policy.ScopeAll:
			return db
		case policy.ScopeClinic:
			if s.IncludeLegacy {
				return db.Where(column+" = ? OR "+column+" IS NULL", s.ClinicID)
			}
			return db.Where(column+" = ?", s.ClinicID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// entity carries the user-facing messages of one table.
type entity struct {
	notFound  string
	duplicate string
}

func (e entity) translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(e.notFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Wrap(apperror.KindConflict, e.duplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperror.Wrap(apperror.KindConflict, "registro referenciado por outros dados", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperror.Internal("operação cancelada", err)
	default:
		return apperror.Internal("erro ao acessar o banco de dados", err)
	}
}

func findScoped[T any](ctx context.Context, db *gorm.DB, e entity, scope policy.Scope, id uint64, preload ...string) (*T, error) {
	var out T
	q := db.WithContext(ctx).Scopes(ApplyScope(scope, "clinic_id"))
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&out, id).Error; err != nil {
		return nil, e.translate(err)
	}
	return &out, nil
}

func create[T any](ctx context.Context, db *gorm.DB, e entity, rec *T) error {
	return e.translate(db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error)
}

func save[T any](ctx context.Context, db *gorm.DB, e entity, rec *T) error {
	return e.translate(db.WithContext(ctx).Omit(clause.Associations).Save(rec).Error)
}

func remove[T any](ctx context.Context, db *gorm.DB, e entity, id uint64) error {
	var zero T
	res := db.WithContext(ctx).Delete(&zero, id)
	if res.Error != nil {
		return e.translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound(e.notFound)
	}
	return nil
}

// updateVersioned writes rec only if the stored version still equals
// prevVersion. A lost race surfaces as a Conflict.
func updateVersioned[T any](ctx context.Context, db *gorm.DB, e entity, id uint64, prevVersion uint, rec *T) error {
	var zero T
	res := db.WithContext(ctx).
		Model(&zero).
		Where("id = ? AND version = ?", id, prevVersion).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(rec)
	if res.Error != nil {
		return e.translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.Conflict("o registro foi alterado por outro usuário, recarregue e tente novamente")
	}
	return nil
}
