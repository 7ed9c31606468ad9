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

type IngredientInput struct {
	Name string `json:"name" binding:"required"`
}

type IngredientService interface {
	List(actor policy.Actor, offset, limit int) ([]models.Ingredient, int64, error)
	Get(actor policy.Actor, id uuid.UUID) (*models.Ingredient, error)
	Create(actor policy.Actor, in IngredientInput) (*models.Ingredient, bool, error)
	Update(actor policy.Actor, id uuid.UUID, in IngredientInput) (*models.Ingredient, error)
	Delete(actor policy.Actor, id uuid.UUID) error
}

type ingredientService struct {
	ingredientRepo repository.IngredientRepository
}

func NewIngredientService(ingredientRepo repository.IngredientRepository) IngredientService {
	return &ingredientService{ingredientRepo: ingredientRepo}
}

func (s *ingredientService) List(actor policy.Actor, offset, limit int) ([]models.Ingredient, int64, error) {
	if !policy.Can(actor, policy.ActionList, policy.ResourceIngredient) {
		return nil, 0, apperrors.ErrPermissionDenied
	}
	return s.ingredientRepo.List(policy.CatalogVisibility(actor, "ingredients"), offset, limit)
}

func (s *ingredientService) Get(actor policy.Actor, id uuid.UUID) (*models.Ingredient, error) {
	if !policy.Can(actor, policy.ActionRetrieve, policy.ResourceIngredient) {
		return nil, apperrors.ErrPermissionDenied
	}
	ingredient, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !s.visible(actor, ingredient) {
		return nil, apperrors.ErrNotFound
	}
	return ingredient, nil
}

func (s *ingredientService) Create(actor policy.Actor, in IngredientInput) (*models.Ingredient, bool, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.ResourceIngredient) {
		return nil, false, apperrors.ErrPermissionDenied
	}
	tenantID, err := requireTenant(actor)
	if err != nil {
		return nil, false, err
	}

	name := normalizeName(in.Name)
	if name == "" {
		return nil, false, apperrors.Validation("name", "name cannot be empty")
	}

	existing, err := s.ingredientRepo.GetByName(tenantID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if existing.IsActive {
			return nil, false, apperrors.Validation("name", "ingredient with this name already exists")
		}
		if err := s.ingredientRepo.Restore(existing.ID); err != nil {
			return nil, false, err
		}
		restored, err := s.load(existing.ID)
		if err != nil {
			return nil, false, err
		}
		return restored, true, nil
	}

	ingredient := &models.Ingredient{TenantID: tenantID, Name: name, IsActive: true}
	if err := s.ingredientRepo.Create(ingredient); err != nil {
		return nil, false, err
	}
	return ingredient, false, nil
}

func (s *ingredientService) Update(actor policy.Actor, id uuid.UUID, in IngredientInput) (*models.Ingredient, error) {
	if !policy.Can(actor, policy.ActionUpdate, policy.ResourceIngredient) {
		return nil, apperrors.ErrPermissionDenied
	}
	ingredient, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}

	name := normalizeName(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "name cannot be empty")
	}
	other, err := s.ingredientRepo.GetByName(ingredient.TenantID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if other != nil && other.ID != ingredient.ID {
		return nil, apperrors.Validation("name", "ingredient with this name already exists")
	}

	ingredient.Name = name
	if err := s.ingredientRepo.Update(ingredient); err != nil {
		return nil, err
	}
	return ingredient, nil
}

// Delete is blocked while any active recipe still uses the ingredient.
func (s *ingredientService) Delete(actor policy.Actor, id uuid.UUID) error {
	if !policy.Can(actor, policy.ActionDelete, policy.ResourceIngredient) {
		return apperrors.ErrPermissionDenied
	}
	ingredient, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	if !ingredient.IsActive {
		return apperrors.ErrAlreadyDeleted
	}

	count, err := s.ingredientRepo.CountActiveRecipeUses(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ReferentialBlockCount("recipe ingredient", count)
	}

	won, err := s.ingredientRepo.SoftDelete(id, time.Now())
	if err != nil {
		return err
	}
	if !won {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}

func (s *ingredientService) load(id uuid.UUID) (*models.Ingredient, error) {
	ingredient, err := s.ingredientRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return ingredient, nil
}

func (s *ingredientService) visible(actor policy.Actor, ingredient *models.Ingredient) bool {
	if actor.IsSuperadmin() {
		return true
	}
	if !actor.SameTenant(ingredient.TenantID) {
		return false
	}
	return actor.IsAdmin() || ingredient.IsActive
}
