package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/models"
)

// TenantWithCount is a list row annotated with the tenant's active user count.
type TenantWithCount struct {
	models.Tenant
	UserCount int64 `json:"user_count"`
}

type TenantFilter struct {
	IsActive  *bool
	IsPremium *bool
}

type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uuid.UUID) (*models.Tenant, error)
	GetByName(name string) (*models.Tenant, error)
	List(filter TenantFilter, offset, limit int) ([]TenantWithCount, int64, error)
	Update(tenant *models.Tenant) error
	SoftDelete(id uuid.UUID, now time.Time) (bool, error)
	CountActiveUsers(id uuid.UUID) (int64, error)
}

type tenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Create(tenant).Error
}

func (r *tenantRepository) GetByID(id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByName(name string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) List(filter TenantFilter, offset, limit int) ([]TenantWithCount, int64, error) {
	q := r.db.Model(&models.Tenant{})
	if filter.IsActive != nil {
		q = q.Where("tenants.is_active = ?", *filter.IsActive)
	}
	if filter.IsPremium != nil {
		q = q.Where("tenants.is_premium = ?", *filter.IsPremium)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	var rows []TenantWithCount
	err := q.
		Select("tenants.*, (SELECT COUNT(*) FROM users WHERE users.tenant_id = tenants.id AND users.is_active = ?) AS user_count", true).
		Order("tenants.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	return rows, count, err
}

func (r *tenantRepository) Update(tenant *models.Tenant) error {
	return r.db.Save(tenant).Error
}

// SoftDelete deactivates the tenant with a compare-and-set on is_active so
// concurrent deletes resolve to a single winner.
func (r *tenantRepository) SoftDelete(id uuid.UUID, now time.Time) (bool, error) {
	res := r.db.Model(&models.Tenant{}).
		Where("id = ? AND is_active = ?", id, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *tenantRepository) CountActiveUsers(id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("tenant_id = ? AND is_active = ?", id, true).
		Count(&count).Error
	return count, err
}
