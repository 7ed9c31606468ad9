package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/policy"
	"recipehub/internal/repository"
)

type userFixture struct {
	db    *gorm.DB
	svc   UserService
	admin *models.User
	alice *models.User
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()

	db := newTestDB(t)
	tenant := seedTenant(t, db, "Acme")
	admin := seedUser(t, db, &tenant.ID, "admin", models.RoleAdmin)
	alice := seedUser(t, db, &tenant.ID, "alice", models.RoleUser)
	userRepo := repository.NewUserRepository(db)
	lifecycle := NewLifecycleService(userRepo)
	return &userFixture{
		db:    db,
		svc:   NewUserService(userRepo, lifecycle),
		admin: admin,
		alice: alice,
	}
}

func TestUserListIsAdminOnly(t *testing.T) {
	f := newUserFixture(t)

	if _, _, err := f.svc.List(actorFor(f.alice), repository.UserFilter{}, 0, 10); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("plain user list err = %v, want ErrPermissionDenied", err)
	}

	_, count, err := f.svc.List(actorFor(f.admin), repository.UserFilter{}, 0, 10)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestUserListStatusFilter(t *testing.T) {
	f := newUserFixture(t)

	if err := f.svc.AdminDelete(actorFor(f.admin), f.alice.ID); err != nil {
		t.Fatalf("AdminDelete: %v", err)
	}

	list, count, err := f.svc.List(actorFor(f.admin), repository.UserFilter{Status: "deleted"}, 0, 10)
	if err != nil {
		t.Fatalf("list deleted: %v", err)
	}
	if count != 1 || list[0].ID != f.alice.ID {
		t.Errorf("deleted filter returned %d rows", count)
	}

	_, count, err = f.svc.List(actorFor(f.admin), repository.UserFilter{Status: "active"}, 0, 10)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if count != 1 {
		t.Errorf("active filter count = %d, want 1", count)
	}
}

func TestUserGetScopedToTenant(t *testing.T) {
	f := newUserFixture(t)
	otherTenant := seedTenant(t, f.db, "Other")
	outsider := seedUser(t, f.db, &otherTenant.ID, "eve", models.RoleUser)

	if _, err := f.svc.Get(actorFor(f.admin), outsider.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("cross-tenant get err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Get(superadmin(), outsider.ID); err != nil {
		t.Errorf("superadmin get: %v", err)
	}
}

func TestAdminUpdateRole(t *testing.T) {
	f := newUserFixture(t)

	role := models.RoleAdmin
	updated, err := f.svc.AdminUpdate(actorFor(f.admin), f.alice.ID, AdminUserUpdate{Role: &role})
	if err != nil {
		t.Fatalf("AdminUpdate: %v", err)
	}
	if updated.Role != models.RoleAdmin {
		t.Errorf("role = %q, want ADMIN", updated.Role)
	}

	// Only a superadmin may grant the superadmin role.
	role = models.RoleSuperadmin
	if _, err := f.svc.AdminUpdate(actorFor(f.admin), f.alice.ID, AdminUserUpdate{Role: &role}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("escalation err = %v, want ErrPermissionDenied", err)
	}

	bad := models.Role("WIZARD")
	if _, err := f.svc.AdminUpdate(actorFor(f.admin), f.alice.ID, AdminUserUpdate{Role: &bad}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("invalid role err = %v, want validation error", err)
	}
}

func TestAdminUpdateLifecycle(t *testing.T) {
	f := newUserFixture(t)

	// Deactivation must go through the delete endpoint.
	off := false
	if _, err := f.svc.AdminUpdate(actorFor(f.admin), f.alice.ID, AdminUserUpdate{IsActive: &off}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("is_active=false err = %v, want validation error", err)
	}

	if err := f.svc.AdminDelete(actorFor(f.admin), f.alice.ID); err != nil {
		t.Fatalf("AdminDelete: %v", err)
	}

	on := true
	restored, err := f.svc.AdminUpdate(actorFor(f.admin), f.alice.ID, AdminUserUpdate{IsActive: &on})
	if err != nil {
		t.Fatalf("restore via update: %v", err)
	}
	if !restored.IsActive || restored.DeletedAt != nil {
		t.Errorf("restore left user as %+v", restored)
	}
}

func TestAdminUpdateTenantIsSuperadminOnly(t *testing.T) {
	f := newUserFixture(t)
	otherTenant := seedTenant(t, f.db, "Other")

	if _, err := f.svc.AdminUpdate(actorFor(f.admin), f.alice.ID, AdminUserUpdate{TenantID: &otherTenant.ID}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("tenant move by admin err = %v, want ErrPermissionDenied", err)
	}

	moved, err := f.svc.AdminUpdate(superadmin(), f.alice.ID, AdminUserUpdate{TenantID: &otherTenant.ID})
	if err != nil {
		t.Fatalf("tenant move by superadmin: %v", err)
	}
	if moved.TenantID == nil || *moved.TenantID != otherTenant.ID {
		t.Errorf("tenant_id = %v, want %s", moved.TenantID, otherTenant.ID)
	}
}

func TestAdminDeleteSelfProtection(t *testing.T) {
	f := newUserFixture(t)

	if err := f.svc.AdminDelete(actorFor(f.admin), f.admin.ID); !errors.Is(err, apperrors.ErrSelfActionForbidden) {
		t.Errorf("admin self delete err = %v, want ErrSelfActionForbidden", err)
	}
}

func TestSelfUpdateAndDelete(t *testing.T) {
	f := newUserFixture(t)
	actor := actorFor(f.alice)

	first := "Alicia"
	updated, err := f.svc.SelfUpdate(actor, SelfUpdate{FirstName: &first})
	if err != nil {
		t.Fatalf("SelfUpdate: %v", err)
	}
	if updated.FirstName != "Alicia" {
		t.Errorf("first_name = %q", updated.FirstName)
	}

	bad := "Alicia9"
	if _, err := f.svc.SelfUpdate(actor, SelfUpdate{FirstName: &bad}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("numeric name err = %v, want validation error", err)
	}

	if err := f.svc.SelfDelete(actor); err != nil {
		t.Fatalf("SelfDelete: %v", err)
	}
	var got models.User
	if err := f.db.First(&got, "id = ?", f.alice.ID).Error; err != nil {
		t.Fatal(err)
	}
	if !got.IsSelfDeleted() {
		t.Error("self delete not recorded as self-initiated")
	}
}

func TestGetSelf(t *testing.T) {
	f := newUserFixture(t)

	got, err := f.svc.GetSelf(policy.Actor{ID: f.alice.ID, TenantID: f.alice.TenantID, Role: f.alice.Role})
	if err != nil {
		t.Fatalf("GetSelf: %v", err)
	}
	if got.ID != f.alice.ID {
		t.Errorf("got %s, want %s", got.ID, f.alice.ID)
	}
}
