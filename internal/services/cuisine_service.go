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

type CuisineInput struct {
	Name string `json:"name" binding:"required"`
}

type CuisineService interface {
	List(actor policy.Actor, offset, limit int) ([]models.Cuisine, int64, error)
	Get(actor policy.Actor, id uuid.UUID) (*models.Cuisine, error)
	Create(actor policy.Actor, in CuisineInput) (*models.Cuisine, bool, error)
	Update(actor policy.Actor, id uuid.UUID, in CuisineInput) (*models.Cuisine, error)
	Delete(actor policy.Actor, id uuid.UUID) error
}

type cuisineService struct {
	cuisineRepo repository.CuisineRepository
}

func NewCuisineService(cuisineRepo repository.CuisineRepository) CuisineService {
	return &cuisineService{cuisineRepo: cuisineRepo}
}

func (s *cuisineService) List(actor policy.Actor, offset, limit int) ([]models.Cuisine, int64, error) {
	if !policy.Can(actor, policy.ActionList, policy.ResourceCuisine) {
		return nil, 0, apperrors.ErrPermissionDenied
	}
	return s.cuisineRepo.List(policy.CatalogVisibility(actor, "cuisines"), offset, limit)
}

func (s *cuisineService) Get(actor policy.Actor, id uuid.UUID) (*models.Cuisine, error) {
	if !policy.Can(actor, policy.ActionRetrieve, policy.ResourceCuisine) {
		return nil, apperrors.ErrPermissionDenied
	}
	cuisine, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !s.visible(actor, cuisine) {
		return nil, apperrors.ErrNotFound
	}
	return cuisine, nil
}

// Create is idempotent by name within the tenant: a soft-deleted cuisine with
// the requested name is resurrected under its original id. The bool result
// reports resurrection.
func (s *cuisineService) Create(actor policy.Actor, in CuisineInput) (*models.Cuisine, bool, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.ResourceCuisine) {
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

	existing, err := s.cuisineRepo.GetByName(tenantID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if existing.IsActive {
			return nil, false, apperrors.Validation("name", "cuisine with this name already exists")
		}
		if err := s.cuisineRepo.Restore(existing.ID); err != nil {
			return nil, false, err
		}
		restored, err := s.load(existing.ID)
		if err != nil {
			return nil, false, err
		}
		return restored, true, nil
	}

	cuisine := &models.Cuisine{TenantID: tenantID, Name: name, IsActive: true}
	if err := s.cuisineRepo.Create(cuisine); err != nil {
		return nil, false, err
	}
	return cuisine, false, nil
}

func (s *cuisineService) Update(actor policy.Actor, id uuid.UUID, in CuisineInput) (*models.Cuisine, error) {
	if !policy.Can(actor, policy.ActionUpdate, policy.ResourceCuisine) {
		return nil, apperrors.ErrPermissionDenied
	}
	cuisine, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}

	name := normalizeName(in.Name)
	if name == "" {
		return nil, apperrors.Validation("name", "name cannot be empty")
	}
	other, err := s.cuisineRepo.GetByName(cuisine.TenantID, name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if other != nil && other.ID != cuisine.ID {
		return nil, apperrors.Validation("name", "cuisine with this name already exists")
	}

	cuisine.Name = name
	if err := s.cuisineRepo.Update(cuisine); err != nil {
		return nil, err
	}
	return cuisine, nil
}

// Delete soft-deletes the cuisine unless an active recipe still references
// it, in which case the precondition fails with ReferentialBlock and the
// record stays active.
func (s *cuisineService) Delete(actor policy.Actor, id uuid.UUID) error {
	if !policy.Can(actor, policy.ActionDelete, policy.ResourceCuisine) {
		return apperrors.ErrPermissionDenied
	}
	cuisine, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	if !cuisine.IsActive {
		return apperrors.ErrAlreadyDeleted
	}

	count, err := s.cuisineRepo.CountActiveRecipes(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ReferentialBlockCount("recipe", count)
	}

	won, err := s.cuisineRepo.SoftDelete(id, time.Now())
	if err != nil {
		return err
	}
	if !won {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}

func (s *cuisineService) load(id uuid.UUID) (*models.Cuisine, error) {
	cuisine, err := s.cuisineRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return cuisine, nil
}

// visible mirrors CatalogVisibility for a single loaded record: soft-deleted
// and cross-tenant rows look like NotFound to non-admin callers.
func (s *cuisineService) visible(actor policy.Actor, cuisine *models.Cuisine) bool {
	if actor.IsSuperadmin() {
		return true
	}
	if !actor.SameTenant(cuisine.TenantID) {
		return false
	}
	return actor.IsAdmin() || cuisine.IsActive
}

// requireTenant resolves the tenant a new catalog record belongs to.
// Superadmins are tenantless and cannot create tenant-scoped records.
func requireTenant(actor policy.Actor) (uuid.UUID, error) {
	if actor.TenantID == nil {
		return uuid.Nil, apperrors.Validation("tenant", "a tenant-scoped account is required")
	}
	return *actor.TenantID, nil
}
