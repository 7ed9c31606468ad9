package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/models"
)

type UserFilter struct {
	// Status filters on lifecycle state: "active", "deleted" or "" for all.
	Status string
}

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	List(scope func(*gorm.DB) *gorm.DB, filter UserFilter, offset, limit int) ([]models.User, int64, error)
	Update(user *models.User) error
	UpdatePassword(id uuid.UUID, passwordHash string) error
	MarkEmailVerified(id uuid.UUID) error
	SoftDeleteWithRecipes(id, deletedBy uuid.UUID, clearVerified bool, now time.Time, job *models.ScheduledJob) (bool, error)
	Restore(id uuid.UUID) error
	HardDelete(id uuid.UUID) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(scope func(*gorm.DB) *gorm.DB, filter UserFilter, offset, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{}).Scopes(scope)

	switch filter.Status {
	case "active":
		q = q.Where("users.is_active = ?", true)
	case "deleted":
		q = q.Where("users.is_active = ?", false)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("users.created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, count, err
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) UpdatePassword(id uuid.UUID, passwordHash string) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

func (r *userRepository) MarkEmailVerified(id uuid.UUID) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Update("is_email_verified", true).Error
}

// SoftDeleteWithRecipes deactivates the user and all their active recipes in
// one transaction, stamping the same deleted_at on every row and inserting
// the hard-delete job alongside; a failed insert rolls the deactivation back.
// The user row is guarded by a compare-and-set on is_active; when another
// writer already won the race nothing is touched and false is returned.
func (r *userRepository) SoftDeleteWithRecipes(id, deletedBy uuid.UUID, clearVerified bool, now time.Time, job *models.ScheduledJob) (bool, error) {
	won := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"is_active":  false,
			"deleted_at": now,
			"deleted_by": deletedBy,
		}
		if clearVerified {
			updates["is_email_verified"] = false
		}

		res := tx.Model(&models.User{}).
			Where("id = ? AND is_active = ?", id, true).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		won = true

		if err := tx.Model(&models.Recipe{}).
			Where("user_id = ? AND is_active = ?", id, true).
			Updates(map[string]interface{}{
				"is_active":  false,
				"deleted_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Create(job).Error
	})
	return won, err
}

func (r *userRepository) Restore(id uuid.UUID) error {
	return r.db.Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  true,
			"deleted_at": nil,
			"deleted_by": nil,
		}).Error
}

// HardDelete physically removes the user row. RecipeIngredient and Recipe
// rows of a hard-deleted user are removed in the same transaction so no
// orphan rows survive the retention window.
func (r *userRepository) HardDelete(id uuid.UUID) (int64, error) {
	var removed int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id IN (?)",
			tx.Model(&models.Recipe{}).Select("id").Where("user_id = ?", id),
		).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Recipe{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	return removed, err
}
