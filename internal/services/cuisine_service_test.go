package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/policy"
	"recipehub/internal/repository"
)

type catalogFixture struct {
	db    *gorm.DB
	svc   CuisineService
	admin policy.Actor
	user  policy.Actor
	// tenant the actors belong to
	tenantID uuid.UUID
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()

	db := newTestDB(t)
	tenant := seedTenant(t, db, "Acme")
	admin := seedUser(t, db, &tenant.ID, "admin", models.RoleAdmin)
	user := seedUser(t, db, &tenant.ID, "alice", models.RoleUser)
	return &catalogFixture{
		db:       db,
		svc:      NewCuisineService(repository.NewCuisineRepository(db)),
		admin:    actorFor(admin),
		user:     actorFor(user),
		tenantID: tenant.ID,
	}
}

// Create-by-name outcome table: none -> new row, soft-deleted same name ->
// resurrected same id, active same name -> rejected.
func TestCuisineCreateByName(t *testing.T) {
	f := newCatalogFixture(t)

	cuisine, resurrected, err := f.svc.Create(f.admin, CuisineInput{Name: "Italian"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resurrected {
		t.Error("fresh create reported as resurrection")
	}

	if _, _, err := f.svc.Create(f.admin, CuisineInput{Name: "Italian"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("duplicate active name err = %v, want validation error", err)
	}

	if err := f.svc.Delete(f.admin, cuisine.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	again, resurrected, err := f.svc.Create(f.admin, CuisineInput{Name: "Italian"})
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if !resurrected {
		t.Error("re-create of soft-deleted cuisine not reported as resurrection")
	}
	if again.ID != cuisine.ID {
		t.Errorf("resurrection changed id: %s != %s", again.ID, cuisine.ID)
	}
	if !again.IsActive || again.DeletedAt != nil {
		t.Errorf("resurrected cuisine left as %+v", again)
	}
}

func TestCuisineMutationsAreAdminOnly(t *testing.T) {
	f := newCatalogFixture(t)
	cuisine := seedCuisine(t, f.db, f.tenantID, "Italian", true)

	if _, _, err := f.svc.Create(f.user, CuisineInput{Name: "French"}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("user create err = %v, want ErrPermissionDenied", err)
	}
	if _, err := f.svc.Update(f.user, cuisine.ID, CuisineInput{Name: "Sicilian"}); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("user update err = %v, want ErrPermissionDenied", err)
	}
	if err := f.svc.Delete(f.user, cuisine.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("user delete err = %v, want ErrPermissionDenied", err)
	}

	// Reads are open to every authenticated tenant member.
	if _, err := f.svc.Get(f.user, cuisine.ID); err != nil {
		t.Errorf("user get: %v", err)
	}
}

func TestCuisineVisibility(t *testing.T) {
	f := newCatalogFixture(t)
	active := seedCuisine(t, f.db, f.tenantID, "Italian", true)
	deleted := seedCuisine(t, f.db, f.tenantID, "French", false)

	otherTenant := seedTenant(t, f.db, "Other")
	foreign := seedCuisine(t, f.db, otherTenant.ID, "Thai", true)

	// Plain users see only active in-tenant rows.
	list, count, err := f.svc.List(f.user, 0, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if count != 1 || len(list) != 1 || list[0].ID != active.ID {
		t.Errorf("user list = %d rows, want only the active in-tenant cuisine", len(list))
	}
	if _, err := f.svc.Get(f.user, deleted.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("user get soft-deleted err = %v, want ErrNotFound", err)
	}
	if _, err := f.svc.Get(f.user, foreign.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("user get cross-tenant err = %v, want ErrNotFound", err)
	}

	// Admins see soft-deleted rows of their tenant, still not other tenants.
	_, count, err = f.svc.List(f.admin, 0, 10)
	if err != nil {
		t.Fatalf("admin List: %v", err)
	}
	if count != 2 {
		t.Errorf("admin list count = %d, want 2", count)
	}
	if _, err := f.svc.Get(f.admin, deleted.ID); err != nil {
		t.Errorf("admin get soft-deleted: %v", err)
	}
	if _, err := f.svc.Get(f.admin, foreign.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("admin get cross-tenant err = %v, want ErrNotFound", err)
	}
}

func TestCuisineDeleteBlockedByActiveRecipes(t *testing.T) {
	f := newCatalogFixture(t)
	cuisine := seedCuisine(t, f.db, f.tenantID, "Italian", true)

	recipe := seedRecipe(t, f.db, f.tenantID, f.user.ID, "Carbonara", models.SharingPublic)
	f.db.Model(recipe).Update("cuisine_id", cuisine.ID)

	err := f.svc.Delete(f.admin, cuisine.ID)
	if !errors.Is(err, apperrors.ErrReferentialBlock) {
		t.Fatalf("err = %v, want ErrReferentialBlock", err)
	}

	// A soft-deleted recipe no longer blocks.
	f.db.Model(recipe).Update("is_active", false)
	if err := f.svc.Delete(f.admin, cuisine.ID); err != nil {
		t.Fatalf("Delete after recipe deactivated: %v", err)
	}

	if err := f.svc.Delete(f.admin, cuisine.ID); !errors.Is(err, apperrors.ErrAlreadyDeleted) {
		t.Errorf("double delete err = %v, want ErrAlreadyDeleted", err)
	}
}

func TestCuisineCreateRequiresTenant(t *testing.T) {
	f := newCatalogFixture(t)

	if _, _, err := f.svc.Create(superadmin(), CuisineInput{Name: "Global"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("tenantless create err = %v, want validation error", err)
	}
}

// failingNameCuisineRepo breaks the uniqueness lookup while leaving every
// other repository call intact.
type failingNameCuisineRepo struct {
	repository.CuisineRepository
	err error
}

func (r failingNameCuisineRepo) GetByName(tenantID uuid.UUID, name string) (*models.Cuisine, error) {
	return nil, r.err
}

func TestCuisineUpdateSurfacesNameLookupError(t *testing.T) {
	f := newCatalogFixture(t)
	cuisine, _, err := f.svc.Create(f.admin, CuisineInput{Name: "Italian"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	lookupErr := errors.New("connection reset")
	svc := NewCuisineService(failingNameCuisineRepo{
		CuisineRepository: repository.NewCuisineRepository(f.db),
		err:               lookupErr,
	})
	if _, err := svc.Update(f.admin, cuisine.ID, CuisineInput{Name: "Thai"}); !errors.Is(err, lookupErr) {
		t.Errorf("Update err = %v, want the lookup error", err)
	}
}
