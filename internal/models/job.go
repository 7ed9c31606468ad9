package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JobName string

const (
	JobHardDeleteUser JobName = "hard_delete_user"
	JobSendEmail      JobName = "send_email"
)

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ScheduledJob is a deferred unit of work executed by the scheduler worker
// no earlier than RunAt, at least once, with bounded retries.
type ScheduledJob struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name      JobName    `json:"name" gorm:"type:varchar(50);not null;index"`
	RecordID  *uuid.UUID `json:"record_id" gorm:"type:uuid;index"`
	Payload   string     `json:"payload" gorm:"type:text"`
	RunAt     time.Time  `json:"run_at" gorm:"not null;index"`
	Status    JobStatus  `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts  int        `json:"attempts" gorm:"not null;default:0"`
	LastError string     `json:"last_error" gorm:"type:text"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (j *ScheduledJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
