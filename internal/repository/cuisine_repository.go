package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/models"
)

type CuisineRepository interface {
	Create(cuisine *models.Cuisine) error
	GetByID(id uuid.UUID) (*models.Cuisine, error)
	GetByName(tenantID uuid.UUID, name string) (*models.Cuisine, error)
	List(scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]models.Cuisine, int64, error)
	Update(cuisine *models.Cuisine) error
	SoftDelete(id uuid.UUID, now time.Time) (bool, error)
	Restore(id uuid.UUID) error
	CountActiveRecipes(id uuid.UUID) (int64, error)
}

type cuisineRepository struct {
	db *gorm.DB
}

func NewCuisineRepository(db *gorm.DB) CuisineRepository {
	return &cuisineRepository{db: db}
}

func (r *cuisineRepository) Create(cuisine *models.Cuisine) error {
	return r.db.Create(cuisine).Error
}

func (r *cuisineRepository) GetByID(id uuid.UUID) (*models.Cuisine, error) {
	var cuisine models.Cuisine
	if err := r.db.First(&cuisine, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cuisine, nil
}

// GetByName looks up a cuisine by its tenant-unique name regardless of
// lifecycle state, which is what create-by-name resurrection needs.
func (r *cuisineRepository) GetByName(tenantID uuid.UUID, name string) (*models.Cuisine, error) {
	var cuisine models.Cuisine
	if err := r.db.First(&cuisine, "tenant_id = ? AND name = ?", tenantID, name).Error; err != nil {
		return nil, err
	}
	return &cuisine, nil
}

func (r *cuisineRepository) List(scope func(*gorm.DB) *gorm.DB, offset, limit int) ([]models.Cuisine, int64, error) {
	q := r.db.Model(&models.Cuisine{}).Scopes(scope)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var cuisines []models.Cuisine
	err := q.Order("cuisines.name ASC").Offset(offset).Limit(limit).Find(&cuisines).Error
	return cuisines, count, err
}

func (r *cuisineRepository) Update(cuisine *models.Cuisine) error {
	return r.db.Save(cuisine).Error
}

func (r *cuisineRepository) SoftDelete(id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.Model(&models.Cuisine{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *cuisineRepository) Restore(id uuid.UUID) error {
	return r.db.Model(&models.Cuisine{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  true,
			"deleted_at": nil,
		}).Error
}

func (r *cuisineRepository) CountActiveRecipes(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Recipe{}).
		Where("cuisine_id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count, err
}
