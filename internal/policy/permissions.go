package policy

import (
	"clinic-backend/internal/models"
	"clinic-backend/pkg/apperror"
)

type Permission string

const (
	PermManageTenancy  Permission = "manage_tenancy"
	PermViewStaff      Permission = "view_staff"
	PermClinicalData   Permission = "clinical_data"
	PermFinancial      Permission = "financial"
	PermClinicalRecord Permission = "clinical_records"
	PermReports        Permission = "reports"
)

// grants maps each employee sub-role to what it may do. Owners may do everything.
var grants = map[string]map[Permission]bool{
	models.SubRoleDoctor: {
		PermViewStaff:      true,
		PermClinicalData:   true,
		PermClinicalRecord: true,
	},
	models.SubRoleReceptionist: {
		PermViewStaff:    true,
		PermClinicalData: true,
		PermFinancial:    true,
	},
	models.SubRoleOwnerAlias: {
		PermViewStaff:      true,
		PermClinicalData:   true,
		PermFinancial:      true,
		PermClinicalRecord: true,
		PermReports:        true,
	},
	models.SubRoleOther: {
		PermViewStaff:    true,
		PermClinicalData: true,
	},
}

func Can(a Actor, p Permission) bool {
	if a.IsOwner() {
		return true
	}
	sub := a.SubRole
	if sub == "" {
		sub = models.SubRoleOther
	}
	return grants[sub][p]
}

func Require(a Actor, p Permission) error {
	if !Can(a, p) {
		return apperror.Forbidden("permissão insuficiente")
	}
	return nil
}
