package repository

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/gorm"
)

var reportEntity = entity{notFound: "relatório vazio", duplicate: "relatório duplicado"}

type CountRow struct {
	ClinicID *uint64
	Status   string
	Count    int64
}

type SumRow struct {
	ClinicID *uint64
	Type     string
	Status   string
	Total    float64
}

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) PatientCounts(ctx context.Context, scope policy.Scope) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.WithContext(ctx).Model(&models.Patient{}).
		Scopes(ApplyScope(scope, "clinic_id")).
		Select("clinic_id, count(*) AS count").
		Group("clinic_id").
		Scan(&rows).Error
	return rows, reportEntity.translate(err)
}

func (r *ReportRepository) AppointmentCounts(ctx context.Context, scope policy.Scope) ([]CountRow, error) {
	var rows []CountRow
	err := r.db.WithContext(ctx).Model(&models.Appointment{}).
		Scopes(ApplyScope(scope, "clinic_id")).
		Select("clinic_id, status, count(*) AS count").
		Group("clinic_id, status").
		Scan(&rows).Error
	return rows, reportEntity.translate(err)
}

func (r *ReportRepository) FinancialSums(ctx context.Context, scope policy.Scope) ([]SumRow, error) {
	var rows []SumRow
	err := r.db.WithContext(ctx).Model(&models.FinancialEntry{}).
		Scopes(ApplyScope(scope, "clinic_id")).
		Select("clinic_id, type, status, SUM(amount) AS total").
		Group("clinic_id, type, status").
		Scan(&rows).Error
	return rows, reportEntity.translate(err)
}
