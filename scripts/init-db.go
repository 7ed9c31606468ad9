package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"recipehub/internal/config"
	"recipehub/internal/database"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

func main() {
	fmt.Println("Initializing database...")

	// Load configuration
	cfg := config.Load()

	// Initialize database (runs migrations)
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)

	// Check if super admin already exists
	if existing, err := userRepo.GetByUsername("superadmin"); err == nil && existing != nil {
		fmt.Println("Super admin user already exists")
		return
	}

	// Create a default tenant for regular sign-ups
	tenant := &models.Tenant{
		Name:     "Default",
		IsActive: true,
	}
	if err := tenantRepo.Create(tenant); err != nil {
		log.Printf("Warning: Failed to create default tenant: %v", err)
	} else {
		fmt.Println("Default tenant created:", tenant.ID)
	}

	password := os.Getenv("SUPERADMIN_PASSWORD")
	if password == "" {
		password = "superadmin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	// Superadmin is not tied to any tenant
	superAdmin := &models.User{
		Username:        "superadmin",
		Email:           "superadmin@recipehub.local",
		FirstName:       "Super",
		LastName:        "Admin",
		PasswordHash:    string(hash),
		Role:            models.RoleSuperadmin,
		IsSuperadmin:    true,
		IsEmailVerified: true,
		IsActive:        true,
	}
	if err := userRepo.Create(superAdmin); err != nil {
		log.Printf("Warning: Failed to create super admin user: %v", err)
		return
	}

	fmt.Println("Super admin user created successfully")
	fmt.Println("Username: superadmin")
	fmt.Println("Email: superadmin@recipehub.local")
}
