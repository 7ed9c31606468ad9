package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cuisine struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_cuisine_tenant_name"`
	Name      string     `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_cuisine_tenant_name"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (c *Cuisine) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type Ingredient struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_tenant_name"`
	Name      string     `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_ingredient_tenant_name"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
