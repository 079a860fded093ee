package models

import "time"

const (
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

const (
	SubRoleDoctor       = "doctor"
	SubRoleReceptionist = "receptionist"
	SubRoleOwnerAlias   = "patrao"
	SubRoleOther        = "other"
)

type User struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"size:60;uniqueIndex;not null" json:"username"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Name         string     `gorm:"size:120;not null" json:"name"`
	Email        string     `gorm:"size:120" json:"email"`
	Role         string     `gorm:"size:20;not null" json:"role"`
	SubRole      string     `gorm:"size:20" json:"sub_role"`
	ClinicID     *uint64    `gorm:"index" json:"clinic_id"` // nil for the owner
	PhotoPath    string     `gorm:"size:255" json:"photo_path"`
	FCMToken     string     `gorm:"size:255" json:"-"`
	ResetToken   *string    `gorm:"size:64;uniqueIndex" json:"-"`
	ResetExpires *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Clinic *Clinic `gorm:"foreignKey:ClinicID" json:"clinic,omitempty"`
}

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FCMToken string `json:"fcm_token"`
}

// BootstrapInput creates the first owner of an empty installation.
type BootstrapInput struct {
	Username string `json:"username" binding:"required,min=3,max=60"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
}

type CreateUserInput struct {
	Username string  `json:"username" binding:"required,min=3,max=60"`
	Password string  `json:"password" binding:"required,min=6"`
	Name     string  `json:"name" binding:"required,max=120"`
	Email    string  `json:"email" binding:"omitempty,email"`
	Role     string  `json:"role" binding:"required,oneof=owner employee"`
	SubRole  string  `json:"sub_role" binding:"omitempty,oneof=doctor receptionist patrao other"`
	ClinicID *uint64 `json:"clinic_id"`
}

type UpdateUserInput struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	SubRole  *string `json:"sub_role" binding:"omitempty,oneof=doctor receptionist patrao other"`
	ClinicID *uint64 `json:"clinic_id"`
}

type UpdateProfileInput struct {
	Name     *string `json:"name" binding:"omitempty,max=120"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
}

type ForgotPasswordInput struct {
	Username string `json:"username" binding:"required"`
}

type ResetPasswordInput struct {
	Token    string `json:"token" binding:"required,len=64"`
	Password string `json:"password" binding:"required,min=6"`
}
