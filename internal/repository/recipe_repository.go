package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/models"
)

type RecipeFilter struct {
	CuisineIDs    []uuid.UUID
	IngredientIDs []uuid.UUID
	SharingStatus models.SharingStatus
}

type RecipeRepository interface {
	Create(recipe *models.Recipe) error
	GetByID(id uuid.UUID) (*models.Recipe, error)
	GetByName(tenantID uuid.UUID, name string) (*models.Recipe, error)
	List(scope func(*gorm.DB) *gorm.DB, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error)
	Update(recipe *models.Recipe) error
	UpdateWithIngredients(recipe *models.Recipe, rows []models.RecipeIngredient) error
	SoftDelete(id uuid.UUID, now time.Time) (bool, error)
}

type recipeRepository struct {
	db *gorm.DB
}

func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create persists the recipe and its ingredient rows in one transaction.
func (r *recipeRepository) Create(recipe *models.Recipe) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(recipe).Error
	})
}

func (r *recipeRepository) GetByID(id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.Preload("Ingredients").First(&recipe, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) GetByName(tenantID uuid.UUID, name string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := r.db.First(&recipe, "tenant_id = ? AND name = ?", tenantID, name).Error; err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (r *recipeRepository) List(scope func(*gorm.DB) *gorm.DB, filter RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	q := r.db.Model(&models.Recipe{}).Scopes(scope)

	if len(filter.CuisineIDs) > 0 {
		q = q.Where("recipes.cuisine_id IN ?", filter.CuisineIDs)
	}
	if filter.SharingStatus != "" {
		q = q.Where("recipes.sharing_status = ?", filter.SharingStatus)
	}
	// AND semantics across distinct ingredient filters: the recipe must
	// contain every named ingredient, not any of them.
	for _, ingredientID := range filter.IngredientIDs {
		q = q.Where("EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = recipes.id AND ri.ingredient_id = ?)", ingredientID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var recipes []models.Recipe
	err := q.Preload("Ingredients").
		Order("recipes.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&recipes).Error
	return recipes, count, err
}

func (r *recipeRepository) Update(recipe *models.Recipe) error {
	return r.db.Omit("Ingredients").Save(recipe).Error
}

// UpdateWithIngredients saves the recipe and fully replaces its ingredient
// rows: all prior rows are deleted and the new set inserted, all-or-nothing.
func (r *recipeRepository) UpdateWithIngredients(recipe *models.Recipe, rows []models.RecipeIngredient) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Save(recipe).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func (r *recipeRepository) SoftDelete(id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.Model(&models.Recipe{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": now,
		})
	return res.RowsAffected > 0, res.Error
}
