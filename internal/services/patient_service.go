package services

import (
	"context"
	"strings"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"

	"gorm.io/datatypes"
)

type PatientService struct {
	patients PatientStore
}

func NewPatientService(patients PatientStore) *PatientService {
	return &PatientService{patients: patients}
}

func (s *PatientService) List(ctx context.Context, actor policy.Actor, search string) ([]models.Patient, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	return s.patients.List(ctx, policy.ReadScope(actor, policy.ResourcePatients), search)
}

func (s *PatientService) Get(ctx context.Context, actor policy.Actor, id uint64) (*models.Patient, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	return s.patients.Get(ctx, policy.ReadScope(actor, policy.ResourcePatients), id)
}

func (s *PatientService) Create(ctx context.Context, actor policy.Actor, in models.PatientInput) (*models.Patient, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	clinicID, err := policy.StampClinic(actor)
	if err != nil {
		return nil, err
	}
	p := &models.Patient{ClinicID: &clinicID}
	applyPatient(p, in)
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.PatientInput) (*models.Patient, error) {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return nil, err
	}
	p, err := s.patients.Get(ctx, mutationScope, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckMutation(actor, p.ClinicID); err != nil {
		return nil, err
	}
	applyPatient(p, in)
	if err := s.patients.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PatientService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermClinicalData); err != nil {
		return err
	}
	p, err := s.patients.Get(ctx, mutationScope, id)
	if err != nil {
		return err
	}
	if err := policy.CheckMutation(actor, p.ClinicID); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id)
}

func applyPatient(p *models.Patient, in models.PatientInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.BirthDate = in.BirthDate
	p.NationalID = strings.TrimSpace(in.NationalID)
	p.Phone = in.Phone
	p.Email = in.Email
	p.Address = in.Address
	if in.MedicalHistory != nil {
		p.MedicalHistory = datatypes.NewJSONType(*in.MedicalHistory)
	}
}
