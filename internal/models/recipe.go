package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SharingStatus string

const (
	SharingPrivate SharingStatus = "PRIVATE"
	SharingPublic  SharingStatus = "PUBLIC"
)

func (s SharingStatus) Valid() bool {
	return s == SharingPrivate || s == SharingPublic
}

type Recipe struct {
	ID               uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID         uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_tenant_name"`
	UserID           uuid.UUID     `json:"user_id" gorm:"type:uuid;not null;index"`
	CuisineID        *uuid.UUID    `json:"cuisine_id" gorm:"type:uuid;index"`
	Name             string        `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:idx_recipe_tenant_name"`
	Description      string        `json:"description" gorm:"type:text"`
	PreparationSteps string        `json:"preparation_steps" gorm:"type:text;not null"`
	CookingTime      int           `json:"cooking_time" gorm:"not null"`
	SharingStatus    SharingStatus `json:"sharing_status" gorm:"type:varchar(20);not null;default:'PRIVATE'"`
	IsActive         bool          `json:"is_active" gorm:"not null;default:true"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	DeletedAt        *time.Time    `json:"deleted_at"`

	Ingredients []RecipeIngredient `json:"ingredients" gorm:"foreignKey:RecipeID"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RecipeIngredient struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null"`
	RecipeID     uuid.UUID  `json:"recipe_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient"`
	IngredientID uuid.UUID  `json:"ingredient_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredient"`
	Quantity     float64    `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit         string     `json:"unit" gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Ingredient *Ingredient `json:"-" gorm:"foreignKey:IngredientID"`
}

func (ri *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if ri.ID == uuid.Nil {
		ri.ID = uuid.New()
	}
	return nil
}
