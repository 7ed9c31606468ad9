package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/policy"
	"recipehub/internal/repository"
)

type RecipeIngredientInput struct {
	IngredientID uuid.UUID `json:"ingredient_id" binding:"required"`
	Quantity     float64   `json:"quantity" binding:"required"`
	Unit         string    `json:"unit" binding:"required"`
}

type RecipeInput struct {
	Name             string               `json:"name"`
	Description      *string              `json:"description"`
	PreparationSteps string               `json:"preparation_steps"`
	CookingTime      int                  `json:"cooking_time"`
	CuisineID        *uuid.UUID           `json:"cuisine_id"`
	SharingStatus    models.SharingStatus `json:"sharing_status"`
	// Ingredients nil leaves the current set unchanged on update; non-nil
	// fully replaces it.
	Ingredients *[]RecipeIngredientInput `json:"ingredients"`
}

type RecipeService interface {
	List(actor policy.Actor, filter repository.RecipeFilter, offset, limit int) ([]models.Recipe, int64, error)
	Get(actor policy.Actor, id uuid.UUID) (*models.Recipe, error)
	Create(actor policy.Actor, in RecipeInput) (*models.Recipe, error)
	Update(actor policy.Actor, id uuid.UUID, in RecipeInput) (*models.Recipe, error)
	Delete(actor policy.Actor, id uuid.UUID) error
}

type recipeService struct {
	recipeRepo     repository.RecipeRepository
	cuisineRepo    repository.CuisineRepository
	ingredientRepo repository.IngredientRepository
}

func NewRecipeService(recipeRepo repository.RecipeRepository, cuisineRepo repository.CuisineRepository, ingredientRepo repository.IngredientRepository) RecipeService {
	return &recipeService{
		recipeRepo:     recipeRepo,
		cuisineRepo:    cuisineRepo,
		ingredientRepo: ingredientRepo,
	}
}

func (s *recipeService) List(actor policy.Actor, filter repository.RecipeFilter, offset, limit int) ([]models.Recipe, int64, error) {
	if !policy.Can(actor, policy.ActionList, policy.ResourceRecipe) {
		return nil, 0, apperrors.ErrPermissionDenied
	}
	return s.recipeRepo.List(policy.RecipeVisibility(actor), filter, offset, limit)
}

func (s *recipeService) Get(actor policy.Actor, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewRecipe(actor, recipe) {
		return nil, apperrors.ErrNotFound
	}
	return recipe, nil
}

func (s *recipeService) Create(actor policy.Actor, in RecipeInput) (*models.Recipe, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.ResourceRecipe) {
		return nil, apperrors.ErrPermissionDenied
	}
	tenantID, err := requireTenant(actor)
	if err != nil {
		return nil, err
	}

	name := normalizeName(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "name cannot be empty")
	}
	if in.PreparationSteps == "" {
		return nil, apperrors.Validation("preparation_steps", "preparation steps are required")
	}
	if in.CookingTime <= 0 {
		return nil, apperrors.Validation("cooking_time", "cooking time must be a positive number of minutes")
	}

	sharing := in.SharingStatus
	if sharing == "" {
		sharing = models.SharingPrivate
	}
	if !sharing.Valid() {
		return nil, apperrors.Validation("sharing_status", "must be PRIVATE or PUBLIC")
	}

	if _, err := s.recipeRepo.GetByName(tenantID, name); err == nil {
		return nil, apperrors.Validation("name", "recipe with this name already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.checkCuisine(tenantID, in.CuisineID); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		ID:               uuid.New(),
		TenantID:         tenantID,
		UserID:           actor.ID,
		CuisineID:        in.CuisineID,
		Name:             name,
		PreparationSteps: in.PreparationSteps,
		CookingTime:      in.CookingTime,
		SharingStatus:    sharing,
		IsActive:         true,
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}

	if in.Ingredients != nil {
		rows, err := s.buildIngredientRows(tenantID, recipe.ID, *in.Ingredients)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = rows
	}

	if err := s.recipeRepo.Create(recipe); err != nil {
		return nil, err
	}
	return s.load(recipe.ID)
}

// Update applies a partial update. A supplied ingredients list is a full
// replacement performed atomically with the field changes; an unknown
// ingredient id aborts the whole operation, leaving the prior rows intact.
func (s *recipeService) Update(actor policy.Actor, id uuid.UUID, in RecipeInput) (*models.Recipe, error) {
	recipe, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyRecipe(actor, recipe) {
		return nil, apperrors.ErrPermissionDenied
	}

	if in.Name != "" {
		name := normalizeName(in.Name)
		other, err := s.recipeRepo.GetByName(recipe.TenantID, name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if other != nil && other.ID != recipe.ID {
			return nil, apperrors.Validation("name", "recipe with this name already exists")
		}
		recipe.Name = name
	}
	if in.Description != nil {
		recipe.Description = *in.Description
	}
	if in.PreparationSteps != "" {
		recipe.PreparationSteps = in.PreparationSteps
	}
	if in.CookingTime != 0 {
		if in.CookingTime < 0 {
			return nil, apperrors.Validation("cooking_time", "cooking time must be a positive number of minutes")
		}
		recipe.CookingTime = in.CookingTime
	}
	if in.SharingStatus != "" {
		if !in.SharingStatus.Valid() {
			return nil, apperrors.Validation("sharing_status", "must be PRIVATE or PUBLIC")
		}
		recipe.SharingStatus = in.SharingStatus
	}
	if in.CuisineID != nil {
		if err := s.checkCuisine(recipe.TenantID, in.CuisineID); err != nil {
			return nil, err
		}
		recipe.CuisineID = in.CuisineID
	}

	if in.Ingredients != nil {
		rows, err := s.buildIngredientRows(recipe.TenantID, recipe.ID, *in.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := s.recipeRepo.UpdateWithIngredients(recipe, rows); err != nil {
			return nil, err
		}
	} else {
		if err := s.recipeRepo.Update(recipe); err != nil {
			return nil, err
		}
	}
	return s.load(recipe.ID)
}

func (s *recipeService) Delete(actor policy.Actor, id uuid.UUID) error {
	recipe, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	if !policy.CanModifyRecipe(actor, recipe) {
		return apperrors.ErrPermissionDenied
	}
	if !recipe.IsActive {
		return apperrors.ErrAlreadyDeleted
	}

	won, err := s.recipeRepo.SoftDelete(id, time.Now())
	if err != nil {
		return err
	}
	if !won {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}

func (s *recipeService) load(id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return recipe, nil
}

func (s *recipeService) checkCuisine(tenantID uuid.UUID, cuisineID *uuid.UUID) error {
	if cuisineID == nil {
		return nil
	}
	cuisine, err := s.cuisineRepo.GetByID(*cuisineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnknownReference
		}
		return err
	}
	if cuisine.TenantID != tenantID || !cuisine.IsActive {
		return apperrors.ErrUnknownReference
	}
	return nil
}

// buildIngredientRows validates every submitted ingredient id against the
// active in-tenant set and produces the replacement rows.
func (s *recipeService) buildIngredientRows(tenantID, recipeID uuid.UUID, inputs []RecipeIngredientInput) ([]models.RecipeIngredient, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	seen := make(map[uuid.UUID]bool, len(inputs))
	for _, in := range inputs {
		if seen[in.IngredientID] {
			return nil, apperrors.Validation("ingredients", "duplicate ingredient in list")
		}
		seen[in.IngredientID] = true
		if in.Quantity <= 0 {
			return nil, apperrors.Validation("ingredients", "quantity must be positive")
		}
		if in.Unit == "" {
			return nil, apperrors.Validation("ingredients", "unit is required")
		}
		ids = append(ids, in.IngredientID)
	}

	active, err := s.ingredientRepo.GetActiveByIDs(tenantID, ids)
	if err != nil {
		return nil, err
	}
	if len(active) != len(ids) {
		return nil, apperrors.ErrUnknownReference
	}

	rows := make([]models.RecipeIngredient, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, models.RecipeIngredient{
			TenantID:     tenantID,
			RecipeID:     recipeID,
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
			Unit:         in.Unit,
		})
	}
	return rows, nil
}
