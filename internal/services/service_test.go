package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipehub/internal/cache"
	"recipehub/internal/database"
	"recipehub/internal/models"
	"recipehub/internal/policy"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewFromRedis(rdb), mr
}

func seedTenant(t *testing.T, db *gorm.DB, name string) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{Name: name, IsActive: true}
	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}
	return tenant
}

func seedUser(t *testing.T, db *gorm.DB, tenantID *uuid.UUID, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		TenantID:        tenantID,
		Username:        username,
		Email:           username + "@example.com",
		FirstName:       "Test",
		LastName:        "User",
		PasswordHash:    string(hash),
		Role:            role,
		IsSuperadmin:    role == models.RoleSuperadmin,
		IsEmailVerified: true,
		IsActive:        true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedCuisine(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, active bool) *models.Cuisine {
	t.Helper()

	cuisine := &models.Cuisine{TenantID: tenantID, Name: name, IsActive: active}
	if !active {
		now := time.Now()
		cuisine.DeletedAt = &now
	}
	if err := db.Create(cuisine).Error; err != nil {
		t.Fatalf("seed cuisine: %v", err)
	}
	return cuisine
}

func seedIngredient(t *testing.T, db *gorm.DB, tenantID uuid.UUID, name string, active bool) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{TenantID: tenantID, Name: name, IsActive: active}
	if !active {
		now := time.Now()
		ingredient.DeletedAt = &now
	}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}
	return ingredient
}

func seedRecipe(t *testing.T, db *gorm.DB, tenantID, userID uuid.UUID, name string, sharing models.SharingStatus) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		ID:               uuid.New(),
		TenantID:         tenantID,
		UserID:           userID,
		Name:             name,
		PreparationSteps: "mix and cook",
		CookingTime:      30,
		SharingStatus:    sharing,
		IsActive:         true,
	}
	if err := db.Create(recipe).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return recipe
}

func actorFor(user *models.User) policy.Actor {
	return policy.Actor{ID: user.ID, TenantID: user.TenantID, Role: user.Role}
}

// noopEmail satisfies EmailService for flows where delivery is irrelevant.
type noopEmail struct{}

func (noopEmail) QueueOTPEmail(to, purpose, code string) error { return nil }
func (noopEmail) QueueResetEmail(to, token string) error       { return nil }
func (noopEmail) Deliver(payload string) error                 { return nil }
