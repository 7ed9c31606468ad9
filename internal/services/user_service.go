package services

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/policy"
	"recipehub/internal/repository"
)

type AdminUserUpdate struct {
	Role     *models.Role `json:"role"`
	IsActive *bool        `json:"is_active"`
	// TenantID moves the user between tenants; superadmin only.
	TenantID *uuid.UUID `json:"tenant_id"`
}

type SelfUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type UserService interface {
	List(actor policy.Actor, filter repository.UserFilter, offset, limit int) ([]models.User, int64, error)
	Get(actor policy.Actor, id uuid.UUID) (*models.User, error)
	GetSelf(actor policy.Actor) (*models.User, error)
	AdminUpdate(actor policy.Actor, id uuid.UUID, in AdminUserUpdate) (*models.User, error)
	AdminDelete(actor policy.Actor, id uuid.UUID) error
	SelfUpdate(actor policy.Actor, in SelfUpdate) (*models.User, error)
	SelfDelete(actor policy.Actor) error
}

type userService struct {
	userRepo  repository.UserRepository
	lifecycle LifecycleService
}

func NewUserService(userRepo repository.UserRepository, lifecycle LifecycleService) UserService {
	return &userService{userRepo: userRepo, lifecycle: lifecycle}
}

func (s *userService) List(actor policy.Actor, filter repository.UserFilter, offset, limit int) ([]models.User, int64, error) {
	if !policy.Can(actor, policy.ActionList, policy.ResourceUser) {
		return nil, 0, apperrors.ErrPermissionDenied
	}
	return s.userRepo.List(policy.UserVisibility(actor), filter, offset, limit)
}

// Get loads a user for the admin surface. Records outside the actor's tenant
// come back as NotFound, never as a permission error, so their existence is
// not leaked.
func (s *userService) Get(actor policy.Actor, id uuid.UUID) (*models.User, error) {
	if !policy.Can(actor, policy.ActionRetrieve, policy.ResourceUser) {
		return nil, apperrors.ErrPermissionDenied
	}
	user, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !actor.SameTenant(tenantOf(user)) {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (s *userService) GetSelf(actor policy.Actor) (*models.User, error) {
	return s.load(actor.ID)
}

// AdminUpdate changes role and lifecycle state. Setting is_active=true on a
// soft-deleted user is the explicit administrator restore path; deactivation
// must go through the delete endpoint so the retention schedule applies.
func (s *userService) AdminUpdate(actor policy.Actor, id uuid.UUID, in AdminUserUpdate) (*models.User, error) {
	user, err := s.Get(actor, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, apperrors.Validation("role", "invalid role")
		}
		if *in.Role == models.RoleSuperadmin && !actor.IsSuperadmin() {
			return nil, apperrors.ErrPermissionDenied
		}
		user.Role = *in.Role
		changed = true
	}
	if in.TenantID != nil {
		if !actor.IsSuperadmin() {
			return nil, apperrors.ErrPermissionDenied
		}
		tenantID := *in.TenantID
		user.TenantID = &tenantID
		changed = true
	}
	if changed {
		if err := s.userRepo.Update(user); err != nil {
			return nil, err
		}
	}

	if in.IsActive != nil {
		if !*in.IsActive {
			return nil, apperrors.Validation("is_active", "use the delete endpoint to deactivate a user")
		}
		if err := s.lifecycle.RestoreUser(user.ID); err != nil {
			return nil, err
		}
	}

	return s.load(id)
}

func (s *userService) AdminDelete(actor policy.Actor, id uuid.UUID) error {
	if !policy.Can(actor, policy.ActionDelete, policy.ResourceUser) {
		return apperrors.ErrPermissionDenied
	}
	user, err := s.load(id)
	if err != nil {
		return err
	}
	if !actor.SameTenant(tenantOf(user)) {
		return apperrors.ErrNotFound
	}
	if err := policy.CanDeleteUser(actor, user); err != nil {
		return err
	}
	return s.lifecycle.SoftDeleteUser(actor, user)
}

func (s *userService) SelfUpdate(actor policy.Actor, in SelfUpdate) (*models.User, error) {
	user, err := s.load(actor.ID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		if !isAlpha(*in.FirstName) {
			return nil, apperrors.Validation("first_name", "first name must contain only letters")
		}
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		if !isAlpha(*in.LastName) {
			return nil, apperrors.Validation("last_name", "last name must contain only letters")
		}
		user.LastName = *in.LastName
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) SelfDelete(actor policy.Actor) error {
	user, err := s.load(actor.ID)
	if err != nil {
		return err
	}
	return s.lifecycle.SoftDeleteUser(actor, user)
}

func (s *userService) load(id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func tenantOf(user *models.User) uuid.UUID {
	if user.TenantID == nil {
		return uuid.Nil
	}
	return *user.TenantID
}
