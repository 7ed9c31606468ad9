package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/models"
)

type JobRepository interface {
	Create(job *models.ScheduledJob) error
	GetByID(id uuid.UUID) (*models.ScheduledJob, error)
	GetDue(now time.Time) ([]models.ScheduledJob, error)
	MarkDone(id uuid.UUID) error
	RecordFailure(id uuid.UUID, attempts int, lastError string, exhausted bool) error
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Create(job *models.ScheduledJob) error {
	return r.db.Create(job).Error
}

func (r *jobRepository) GetByID(id uuid.UUID) (*models.ScheduledJob, error) {
	var job models.ScheduledJob
	if err := r.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepository) GetDue(now time.Time) ([]models.ScheduledJob, error) {
	var jobs []models.ScheduledJob
	err := r.db.
		Where("status = ? AND run_at <= ?", models.JobPending, now).
		Order("run_at ASC").
		Find(&jobs).Error
	return jobs, err
}

func (r *jobRepository) MarkDone(id uuid.UUID) error {
	return r.db.Model(&models.ScheduledJob{}).Where("id = ?", id).
		Update("status", models.JobDone).Error
}

// RecordFailure bumps the attempt counter; once retries are exhausted the job
// moves to failed and stops being picked up.
func (r *jobRepository) RecordFailure(id uuid.UUID, attempts int, lastError string, exhausted bool) error {
	updates := map[string]interface{}{
		"attempts":   attempts,
		"last_error": lastError,
	}
	if exhausted {
		updates["status"] = models.JobFailed
	}
	return r.db.Model(&models.ScheduledJob{}).Where("id = ?", id).Updates(updates).Error
}
