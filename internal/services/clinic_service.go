package services

import (
	"context"
	"strings"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/pkg/apperror"
)

// ClinicView is a clinic plus whether it is currently the matrix.
type ClinicView struct {
	models.Clinic
	IsMatrix bool `json:"is_matrix"`
}

type ClinicService struct {
	clinics ClinicStore
}

func NewClinicService(clinics ClinicStore) *ClinicService {
	return &ClinicService{clinics: clinics}
}

// List returns every clinic to the owner and only their own to employees.
func (s *ClinicService) List(ctx context.Context, actor policy.Actor) ([]ClinicView, error) {
	if err := policy.Require(actor, policy.PermViewStaff); err != nil {
		return nil, err
	}
	all, err := s.clinics.List(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ClinicView, 0, len(all))
	for i, c := range all {
		if !actor.IsOwner() && (actor.ClinicID == nil || *actor.ClinicID != c.ID) {
			continue
		}
		// List is ordered by creation, so the first row is the matrix.
		views = append(views, ClinicView{Clinic: c, IsMatrix: i == 0})
	}
	return views, nil
}

func (s *ClinicService) Create(ctx context.Context, actor policy.Actor, in models.ClinicInput) (*models.Clinic, error) {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return nil, err
	}
	c := &models.Clinic{
		Name:    strings.TrimSpace(in.Name),
		Color:   in.Color,
		Address: in.Address,
		Phone:   in.Phone,
	}
	if c.Name == "" {
		return nil, apperror.Validation("nome da clínica é obrigatório")
	}
	if err := s.clinics.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ClinicService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.ClinicInput) (*models.Clinic, error) {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return nil, err
	}
	c, err := s.clinics.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Color = in.Color
	c.Address = in.Address
	c.Phone = in.Phone
	if c.Name == "" {
		return nil, apperror.Validation("nome da clínica é obrigatório")
	}
	if err := s.clinics.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete refuses while any user is still affiliated with the clinic.
func (s *ClinicService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return err
	}
	if _, err := s.clinics.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.clinics.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperror.Conflict("não é possível excluir: existem usuários vinculados a esta clínica")
	}
	return s.clinics.Delete(ctx, id)
}
