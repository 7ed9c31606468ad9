package policy

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
)

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
)

type Resource string

const (
	ResourceTenant     Resource = "tenant"
	ResourceUser       Resource = "user"
	ResourceCuisine    Resource = "cuisine"
	ResourceIngredient Resource = "ingredient"
	ResourceRecipe     Resource = "recipe"
)

// Actor is the authenticated caller as resolved from the access token.
type Actor struct {
	ID       uuid.UUID
	TenantID *uuid.UUID
	Role     models.Role
}

func (a Actor) IsSuperadmin() bool { return a.Role == models.RoleSuperadmin }
func (a Actor) IsAdmin() bool      { return a.Role == models.RoleAdmin }

// SameTenant reports whether a record's tenant falls inside the actor's
// scope. Superadmins are tenantless and scope to everything.
func (a Actor) SameTenant(tenantID uuid.UUID) bool {
	if a.IsSuperadmin() {
		return true
	}
	return a.TenantID != nil && *a.TenantID == tenantID
}

// Can is the type-level permission table: may this role attempt this action
// on this resource at all. Object-level rules (ownership, self-protection)
// are checked separately against the loaded record.
func Can(actor Actor, action Action, resource Resource) bool {
	if actor.IsSuperadmin() {
		return true
	}

	switch resource {
	case ResourceTenant:
		return false
	case ResourceUser:
		return actor.IsAdmin()
	case ResourceCuisine, ResourceIngredient:
		switch action {
		case ActionList, ActionRetrieve:
			return true
		default:
			return actor.IsAdmin()
		}
	case ResourceRecipe:
		return true
	}
	return false
}

// CanModifyRecipe gates update/delete on a loaded recipe.
func CanModifyRecipe(actor Actor, recipe *models.Recipe) bool {
	if actor.IsSuperadmin() {
		return true
	}
	if !actor.SameTenant(recipe.TenantID) {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return recipe.UserID == actor.ID
}

// CanViewRecipe gates retrieve on a loaded recipe. Admin roles see
// soft-deleted rows; everyone else sees own records plus active public ones.
func CanViewRecipe(actor Actor, recipe *models.Recipe) bool {
	if actor.IsSuperadmin() {
		return true
	}
	if !actor.SameTenant(recipe.TenantID) {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if recipe.UserID == actor.ID {
		return true
	}
	return recipe.IsActive && recipe.SharingStatus == models.SharingPublic
}

// CanDeleteUser gates the administrator deletion path. Admins must use the
// self-delete path for their own account.
func CanDeleteUser(actor Actor, target *models.User) error {
	if target.ID == actor.ID {
		if actor.IsAdmin() || actor.IsSuperadmin() {
			return apperrors.ErrSelfActionForbidden
		}
		return nil
	}
	if actor.IsSuperadmin() {
		return nil
	}
	if actor.IsAdmin() && actor.SameTenant(derefTenant(target.TenantID)) {
		return nil
	}
	return apperrors.ErrPermissionDenied
}

// RecipeVisibility returns the list/retrieve filter for recipes as a gorm
// scope. Admin roles get no lifecycle filter; plain users see only active
// rows they own or that are public.
func RecipeVisibility(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsSuperadmin() {
			return db
		}
		db = db.Where("recipes.tenant_id = ?", actor.TenantID)
		if actor.IsAdmin() {
			return db
		}
		return db.Where("recipes.is_active = ? AND (recipes.user_id = ? OR recipes.sharing_status = ?)",
			true, actor.ID, models.SharingPublic)
	}
}

// CatalogVisibility is the equivalent filter for cuisines and ingredients.
func CatalogVisibility(actor Actor, table string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsSuperadmin() {
			return db
		}
		db = db.Where(table+".tenant_id = ?", actor.TenantID)
		if actor.IsAdmin() {
			return db
		}
		return db.Where(table+".is_active = ?", true)
	}
}

// UserVisibility scopes the admin user listing.
func UserVisibility(actor Actor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.IsSuperadmin() {
			return db
		}
		return db.Where("users.tenant_id = ?", actor.TenantID)
	}
}

func derefTenant(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
