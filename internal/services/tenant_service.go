package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/policy"
	"recipehub/internal/repository"
)

type TenantInput struct {
	Name      string `json:"name"`
	IsPremium *bool  `json:"is_premium"`
}

type TenantService interface {
	List(actor policy.Actor, filter repository.TenantFilter, offset, limit int) ([]repository.TenantWithCount, int64, error)
	Get(actor policy.Actor, id uuid.UUID) (*models.Tenant, error)
	Create(actor policy.Actor, in TenantInput) (*models.Tenant, bool, error)
	Update(actor policy.Actor, id uuid.UUID, in TenantInput) (*models.Tenant, error)
	Delete(actor policy.Actor, id uuid.UUID) error
}

type tenantService struct {
	tenantRepo repository.TenantRepository
}

func NewTenantService(tenantRepo repository.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

func (s *tenantService) List(actor policy.Actor, filter repository.TenantFilter, offset, limit int) ([]repository.TenantWithCount, int64, error) {
	if !policy.Can(actor, policy.ActionList, policy.ResourceTenant) {
		return nil, 0, apperrors.ErrPermissionDenied
	}
	return s.tenantRepo.List(filter, offset, limit)
}

func (s *tenantService) Get(actor policy.Actor, id uuid.UUID) (*models.Tenant, error) {
	if !policy.Can(actor, policy.ActionRetrieve, policy.ResourceTenant) {
		return nil, apperrors.ErrPermissionDenied
	}
	tenant, err := s.tenantRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return tenant, nil
}

// Create is idempotent by name: an inactive tenant with the requested name is
// resurrected under its original id instead of tripping the unique index.
// The bool result reports whether a resurrection happened.
func (s *tenantService) Create(actor policy.Actor, in TenantInput) (*models.Tenant, bool, error) {
	if !policy.Can(actor, policy.ActionCreate, policy.ResourceTenant) {
		return nil, false, apperrors.ErrPermissionDenied
	}

	name := normalizeName(in.Name)
	if name == "" {
		return nil, false, apperrors.Validation("name", "tenant name cannot be empty")
	}

	existing, err := s.tenantRepo.GetByName(name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if existing != nil {
		if existing.IsActive {
			return nil, false, apperrors.Validation("name", "tenant with this name already exists")
		}
		existing.IsActive = true
		existing.DeletedAt = nil
		if in.IsPremium != nil {
			existing.IsPremium = *in.IsPremium
		}
		if err := s.tenantRepo.Update(existing); err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}

	tenant := &models.Tenant{Name: name, IsActive: true}
	if in.IsPremium != nil {
		tenant.IsPremium = *in.IsPremium
	}
	if err := s.tenantRepo.Create(tenant); err != nil {
		return nil, false, err
	}
	return tenant, false, nil
}

func (s *tenantService) Update(actor policy.Actor, id uuid.UUID, in TenantInput) (*models.Tenant, error) {
	tenant, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		name := normalizeName(in.Name)
		if name == "" {
			return nil, apperrors.Validation("name", "tenant name cannot be empty")
		}
		other, err := s.tenantRepo.GetByName(name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if other != nil && other.ID != tenant.ID {
			return nil, apperrors.Validation("name", "tenant with this name already exists")
		}
		tenant.Name = name
	}
	if in.IsPremium != nil {
		tenant.IsPremium = *in.IsPremium
	}

	if err := s.tenantRepo.Update(tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete soft-deletes a tenant. Deactivation is blocked while the tenant
// still has active users; that is a precondition failure, not a lifecycle
// transition failure.
func (s *tenantService) Delete(actor policy.Actor, id uuid.UUID) error {
	tenant, err := s.Get(actor, id)
	if err != nil {
		return err
	}
	if !tenant.IsActive {
		return apperrors.ErrAlreadyDeleted
	}

	count, err := s.tenantRepo.CountActiveUsers(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ReferentialBlockCount("user", count)
	}

	won, err := s.tenantRepo.SoftDelete(id, time.Now())
	if err != nil {
		return err
	}
	if !won {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}

// normalizeName trims and collapses internal whitespace.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
