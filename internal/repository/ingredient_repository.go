package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/models"
)

type IngredientRepository interface {
	Create(ingredient *models.Ingredient) error
	GetByID(id uuid.UUID) (*models.Ingredient, error)
	GetByName(tenantID uuid.UUID, name string) (*models.Ingredient, error)
	GetActiveByIDs(tenantID uuid.UUID, ids []uuid.UUID) ([]models.Ingredient, error)
	List(scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]models.Ingredient, int64, error)
	Update(ingredient *models.Ingredient) error
	SoftDelete(id uuid.UUID, now time.Time) (bool, error)
	Restore(id uuid.UUID) error
	CountActiveRecipeUses(id uuid.UUID) (int64, error)
}

type ingredientRepository struct {
	db *gorm.DB
}

func NewIngredientRepository(db *gorm.DB) IngredientRepository {
	return &ingredientRepository{db: db}
}

func (r *ingredientRepository) Create(ingredient *models.Ingredient) error {
	return r.db.Create(ingredient).Error
}

func (r *ingredientRepository) GetByID(id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetByName(tenantID uuid.UUID, name string) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.First(&ingredient, "tenant_id = ? AND name = ?", tenantID, name).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *ingredientRepository) GetActiveByIDs(tenantID uuid.UUID, ids []uuid.UUID) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := r.db.
		Where("tenant_id = ? AND is_active = ? AND id IN ?", tenantID, true, ids).
		Find(&ingredients).Error
	return ingredients, err
}

func (r *ingredientRepository) List(scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]models.Ingredient, int64, error) {
	q := r.db.Model(&models.Ingredient{}).Scopes(scope)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var ingredients []models.Ingredient
	err := q.Order("ingredients.name ASC").Offset(offset).Limit(limit).Find(&ingredients).Error
	return ingredients, count, err
}

func (r *ingredientRepository) Update(ingredient *models.Ingredient) error {
	return r.db.Save(ingredient).Error
}

func (r *ingredientRepository) SoftDelete(id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.Model(&models.Ingredient{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *ingredientRepository) Restore(id uuid.UUID) error {
	return r.db.Model(&models.Ingredient{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  true,
			"deleted_at": nil,
		}).Error
}

// CountActiveRecipeUses counts recipe_ingredient rows that belong to an
// active recipe, the precondition guard for ingredient deactivation.
func (r *ingredientRepository) CountActiveRecipeUses(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.RecipeIngredient{}).
		Joins("JOIN recipes ON recipes.id = recipe_ingredients.recipe_id").
		Where("recipe_ingredients.ingredient_id = ? AND recipes.is_active = ?", id, true).
		Count(&count).Error
	return count, err
}
