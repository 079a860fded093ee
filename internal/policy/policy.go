// Package policy decides which clinic's data an acting user may see or change.
// Every function here is pure: callers resolve the actor once per request and
// hand it in.
package policy

import (
	"clinic-backend/internal/models"
	"clinic-backend/pkg/apperror"
)

// Actor is the identity and tenant context of one request.
type Actor struct {
	UserID  uint64
	Role    string
	SubRole string
	// ClinicID is the employee's affiliation, loaded fresh from the store.
	ClinicID *uint64
	// Selected is the clinic an owner chose through X-Clinic-ID.
	Selected *uint64
	// MatrixID is the oldest clinic, nil when no clinic exists yet.
	MatrixID *uint64
}

func (a Actor) IsOwner() bool {
	return a.Role == models.RoleOwner
}

type Resource string

const (
	ResourcePatients      Resource = "patients"
	ResourceProfessionals Resource = "professionals"
	ResourceAppointments  Resource = "appointments"
	ResourceProcedures    Resource = "procedures"
	ResourceFinancial     Resource = "financial"
	ResourceRecords       Resource = "records"
	ResourceReminders     Resource = "reminders"
)

// carriesLegacy lists the resources whose pre-tenancy rows (clinic IS NULL)
// belong to the matrix.
var carriesLegacy = map[Resource]bool{
	ResourcePatients:      true,
	ResourceFinancial:     true,
	ResourceProfessionals: true,
}

type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeClinic
	ScopeDeny
)

// Scope is the clinic filter applied to a read query.
type Scope struct {
	Kind          ScopeKind
	ClinicID      uint64
	IncludeLegacy bool
}

func All() Scope { return Scope{Kind: ScopeAll} }

func Deny() Scope { return Scope{Kind: ScopeDeny} }

func Clinic(id uint64, includeLegacy bool) Scope {
	return Scope{Kind: ScopeClinic, ClinicID: id, IncludeLegacy: includeLegacy}
}

// Allows reports whether a record owned by clinicID is visible under s.
func (s Scope) Allows(clinicID *uint64) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeClinic:
		if clinicID == nil {
			return s.IncludeLegacy
		}
		return *clinicID == s.ClinicID
	default:
		return false
	}
}

// ReadScope computes the filter for listing or fetching resource.
func ReadScope(a Actor, resource Resource) Scope {
	if a.IsOwner() {
		if a.Selected == nil {
			return All()
		}
		sel := *a.Selected
		legacy := carriesLegacy[resource] && a.MatrixID != nil && *a.MatrixID == sel
		return Clinic(sel, legacy)
	}
	if a.ClinicID == nil {
		return Deny()
	}
	return Clinic(*a.ClinicID, false)
}

// StampClinic returns the clinic a newly created record belongs to. Any value
// sent by the client is ignored.
func StampClinic(a Actor) (uint64, error) {
	if a.IsOwner() {
		if a.Selected == nil {
			return 0, apperror.Validation("usuário não associado a nenhuma clínica")
		}
		return *a.Selected, nil
	}
	if a.ClinicID == nil {
		return 0, apperror.Forbidden("funcionário sem clínica associada")
	}
	return *a.ClinicID, nil
}

// CheckMutation gates update and delete of an existing record.
func CheckMutation(a Actor, recordClinic *uint64) error {
	if a.IsOwner() {
		return nil
	}
	if a.ClinicID == nil || recordClinic == nil || *a.ClinicID != *recordClinic {
		return apperror.Forbidden("registro pertence a outra clínica")
	}
	return nil
}

// ReferenceScope filters the records a row of clinicID may point at. Legacy
// rows qualify only when clinicID is the matrix and the resource carries them.
func ReferenceScope(a Actor, clinicID uint64, resource Resource) Scope {
	legacy := carriesLegacy[resource] && a.MatrixID != nil && *a.MatrixID == clinicID
	return Clinic(clinicID, legacy)
}
