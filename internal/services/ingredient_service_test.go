package services

import (
	"errors"
	"testing"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

func TestIngredientCreateByName(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewIngredientService(repository.NewIngredientRepository(f.db))

	ingredient, resurrected, err := svc.Create(f.admin, IngredientInput{Name: "Tomato"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resurrected {
		t.Error("fresh create reported as resurrection")
	}

	if _, _, err := svc.Create(f.admin, IngredientInput{Name: "Tomato"}); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("duplicate active name err = %v, want validation error", err)
	}

	if err := svc.Delete(f.admin, ingredient.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	again, resurrected, err := svc.Create(f.admin, IngredientInput{Name: "Tomato"})
	if err != nil {
		t.Fatalf("re-create: %v", err)
	}
	if !resurrected || again.ID != ingredient.ID {
		t.Errorf("expected resurrection of %s, got %s (resurrected=%v)", ingredient.ID, again.ID, resurrected)
	}
}

func TestIngredientDeleteBlockedByActiveRecipeUse(t *testing.T) {
	f := newCatalogFixture(t)
	svc := NewIngredientService(repository.NewIngredientRepository(f.db))

	ingredient := seedIngredient(t, f.db, f.tenantID, "Tomato", true)
	recipe := seedRecipe(t, f.db, f.tenantID, f.user.ID, "Sauce", models.SharingPublic)
	if err := f.db.Create(&models.RecipeIngredient{
		TenantID:     f.tenantID,
		RecipeID:     recipe.ID,
		IngredientID: ingredient.ID,
		Quantity:     2,
		Unit:         "pcs",
	}).Error; err != nil {
		t.Fatalf("seed recipe ingredient: %v", err)
	}

	err := svc.Delete(f.admin, ingredient.ID)
	if !errors.Is(err, apperrors.ErrReferentialBlock) {
		t.Fatalf("err = %v, want ErrReferentialBlock", err)
	}

	// Uses hanging off a soft-deleted recipe do not block.
	f.db.Model(recipe).Update("is_active", false)
	if err := svc.Delete(f.admin, ingredient.ID); err != nil {
		t.Fatalf("Delete after recipe deactivated: %v", err)
	}
}
