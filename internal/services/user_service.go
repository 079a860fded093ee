package services

import (
	"context"
	"strings"

	"clinic-backend/internal/models"
	"clinic-backend/internal/policy"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"
)

type UserService struct {
	users   UserStore
	clinics ClinicStore
}

func NewUserService(users UserStore, clinics ClinicStore) *UserService {
	return &UserService{users: users, clinics: clinics}
}

func (s *UserService) List(ctx context.Context, actor policy.Actor) ([]models.User, error) {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Professionals lists the staff visible to the actor. On the matrix it also
// includes users without a clinic.
func (s *UserService) Professionals(ctx context.Context, actor policy.Actor, subRole string) ([]models.User, error) {
	if err := policy.Require(actor, policy.PermViewStaff); err != nil {
		return nil, err
	}
	return s.users.ListProfessionals(ctx, policy.ReadScope(actor, policy.ResourceProfessionals), subRole)
}

func (s *UserService) Create(ctx context.Context, actor policy.Actor, in models.CreateUserInput) (*models.User, error) {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return nil, err
	}
	clinicID, subRole, err := s.affiliation(ctx, in.Role, in.SubRole, in.ClinicID)
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal("falha ao gerar hash da senha", err)
	}
	u := &models.User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Role:         in.Role,
		SubRole:      subRole,
		ClinicID:     clinicID,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// affiliation enforces: employees need an existing clinic, owners have none.
func (s *UserService) affiliation(ctx context.Context, role, subRole string, clinicID *uint64) (*uint64, string, error) {
	if role == models.RoleOwner {
		return nil, "", nil
	}
	if clinicID == nil || *clinicID == 0 {
		return nil, "", apperror.Validation("funcionário precisa estar vinculado a uma clínica")
	}
	if _, err := s.clinics.Get(ctx, *clinicID); err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, "", apperror.Validation("clínica informada não existe")
		}
		return nil, "", err
	}
	if subRole == "" {
		subRole = models.SubRoleOther
	}
	return clinicID, subRole, nil
}

func (s *UserService) Update(ctx context.Context, actor policy.Actor, id uint64, in models.UpdateUserInput) (*models.User, error) {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperror.Internal("falha ao gerar hash da senha", err)
		}
		u.PasswordHash = hash
	}
	if !u.IsOwner() {
		subRole := u.SubRole
		if in.SubRole != nil {
			subRole = *in.SubRole
		}
		clinicID := u.ClinicID
		if in.ClinicID != nil {
			clinicID = in.ClinicID
		}
		u.ClinicID, u.SubRole, err = s.affiliation(ctx, u.Role, subRole, clinicID)
		if err != nil {
			return nil, err
		}
	}
	u.Clinic = nil
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, actor policy.Actor, id uint64) error {
	if err := policy.Require(actor, policy.PermManageTenancy); err != nil {
		return err
	}
	if id == actor.UserID {
		return apperror.Validation("não é possível excluir o próprio usuário")
	}
	return s.users.Delete(ctx, id)
}
