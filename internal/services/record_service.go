package services

import (
	"context"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/pkg/apperror"
)

type RecordService struct {
	records  RecordStore
	patients PatientStore
}

func NewRecordService(records RecordStore, patients PatientStore) *RecordService {
	return &RecordService{records: records, patients: patients}
}

func (s *RecordService) List(ctx context.Context, actor policy.Actor, patientID uint64) ([]models.ClinicalRecord, error) {
	if err := policy.Require(actor, policy.PermClinicalRecord); err != nil {
		return nil, err
	}
	return s.records.List(ctx, policy.ReadScope(actor, policy.ResourceRecords), patientID)
}

func (s *RecordService) Get(ctx context.Context, actor policy.Actor, id uint64) (*models.ClinicalRecord, error) {
	if err := policy.Require(actor, policy.PermClinicalRecord); err != nil {
		return nil, err
	}
	return s.records.Get(ctx, policy.ReadScope(actor, policy.ResourceRecords), id)
}

// Create signs the record as the acting professional and snapshots the
// patient's name and national id.
func (s *RecordService) Create(ctx context.Context, actor policy.Actor, in models.ClinicalRecordInput) (*models.ClinicalRecord, error) {
	if err := policy.Require(actor, policy.PermClinicalRecord); err != nil {
		return nil, err
	}
	clinicID, err := policy.StampClinic(actor)
	if err != nil {
		return nil, err
	}
	p, err := patientInClinic(ctx, s.patients, actor, clinicID, in.PatientID)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, apperror.Validation("paciente não pertence a esta clínica")
		}
		return nil, err
	}
	rec := &models.ClinicalRecord{
		PatientID:         p.ID,
		PatientName:       p.Name,
		PatientNationalID: p.NationalID,
		ProfessionalID:    actor.UserID,
		ClinicID:          &clinicID,
	}
	applyRecord(rec, in)
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update keeps the patient and the signing professional of the original record.
func (s *RecordService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.ClinicalRecordInput) (*models.ClinicalRecord, error) {
	if err := policy.Require(actor, policy.PermClinicalRecord); err != nil {
		return nil, err
	}
	rec, err := s.records.Get(ctx, mutationScope, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckMutation(actor, rec.ClinicID); err != nil {
		return nil, err
	}
	if in.PatientID != rec.PatientID {
		return nil, apperror.Validation("não é possível trocar o paciente de um prontuário")
	}
	applyRecord(rec, in)
	if err := s.records.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermClinicalRecord); err != nil {
		return err
	}
	rec, err := s.records.Get(ctx, mutationScope, id)
	if err != nil {
		return err
	}
	if err := policy.CheckMutation(actor, rec.ClinicID); err != nil {
		return err
	}
	return s.records.Delete(ctx, id)
}

func applyRecord(rec *models.ClinicalRecord, in models.ClinicalRecordInput) {
	rec.Date = in.Date
	rec.ChartType = in.ChartType
	rec.Anamnesis = in.Anamnesis
	rec.History = in.History
	rec.Evolution = in.Evolution
	rec.Medication = in.Medication
	rec.Observations = in.Observations
	rec.ProfessionalSignature = in.ProfessionalSignature
	rec.PatientSignature = in.PatientSignature
}
