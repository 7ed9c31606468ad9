package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperadmin Role = "SUPERADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleUser       Role = "USER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID        *uuid.UUID `json:"tenant_id" gorm:"type:uuid;index"`
	Username        string     `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email           string     `json:"email" gorm:"type:varchar(254);uniqueIndex;not null"`
	FirstName       string     `json:"first_name" gorm:"type:varchar(150)"`
	LastName        string     `json:"last_name" gorm:"type:varchar(150)"`
	PasswordHash    string     `json:"-" gorm:"not null"`
	Role            Role       `json:"role" gorm:"type:varchar(20);not null;default:'USER'"`
	IsSuperadmin    bool       `json:"is_superadmin" gorm:"not null;default:false"`
	IsEmailVerified bool       `json:"is_email_verified" gorm:"not null;default:false"`
	IsActive        bool       `json:"is_active" gorm:"not null;default:true"`
	// DeletedBy == ID means the user deleted their own account; any other
	// non-nil value means an administrator did.
	DeletedBy *uuid.UUID `json:"deleted_by" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`

	Tenant *Tenant `json:"-" gorm:"foreignKey:TenantID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) IsSelfDeleted() bool {
	return u.DeletedBy != nil && *u.DeletedBy == u.ID
}
