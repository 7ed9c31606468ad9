package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
	"recipehub/internal/policy"
	"recipehub/internal/repository"
)

// Retention windows before a soft-deleted user becomes eligible for physical
// removal. Self-service deletions get a short recovery window; administrator
// deletions are kept around much longer.
const (
	SelfDeleteRetention  = 7 * 24 * time.Hour
	AdminDeleteRetention = 90 * 24 * time.Hour
)

type HardDeleteOutcome string

const (
	OutcomeDeleted            HardDeleteOutcome = "deleted"
	OutcomeSkippedStillActive HardDeleteOutcome = "skipped_still_active"
	OutcomeAlreadyGone        HardDeleteOutcome = "already_gone"
)

// LifecycleService owns the soft-delete / restore / hard-delete state machine
// for user accounts, including the deferred hard-delete schedule.
type LifecycleService interface {
	SoftDeleteUser(actor policy.Actor, target *models.User) error
	RestoreUser(id uuid.UUID) error
	HardDeleteUser(recordID uuid.UUID) (HardDeleteOutcome, error)
}

type lifecycleService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewLifecycleService(userRepo repository.UserRepository) LifecycleService {
	return &lifecycleService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

// SoftDeleteUser deactivates the target and cascades to their active recipes,
// scheduling the hard-delete job at the retention deadline in the same
// transaction: either the account is deactivated with its destruction
// scheduled, or nothing changes. The update is a compare-and-set on
// is_active: when two deletes race, exactly one wins and exactly one job is
// scheduled; the loser gets ErrAlreadyDeleted.
//
// A self-delete additionally clears email verification, so a later
// re-registration has to verify the address again.
func (s *lifecycleService) SoftDeleteUser(actor policy.Actor, target *models.User) error {
	if !target.IsActive {
		return apperrors.ErrAlreadyDeleted
	}

	selfDelete := actor.ID == target.ID
	now := s.now()

	retention := AdminDeleteRetention
	if selfDelete {
		retention = SelfDeleteRetention
	}
	recordID := target.ID
	job := &models.ScheduledJob{
		Name:     models.JobHardDeleteUser,
		RecordID: &recordID,
		RunAt:    now.Add(retention),
	}

	won, err := s.userRepo.SoftDeleteWithRecipes(target.ID, actor.ID, selfDelete, now, job)
	if err != nil {
		return err
	}
	if !won {
		return apperrors.ErrAlreadyDeleted
	}
	return nil
}

func (s *lifecycleService) RestoreUser(id uuid.UUID) error {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return err
	}
	if user.IsActive {
		return apperrors.ErrAlreadyActive
	}
	return s.userRepo.Restore(id)
}

// HardDeleteUser is the deferred-job handler body. The scheduler delivers
// at least once, so it re-reads current state before acting: a record that
// was restored in the meantime is skipped, a record that is already gone is
// reported as such, and only a still-soft-deleted record is removed.
func (s *lifecycleService) HardDeleteUser(recordID uuid.UUID) (HardDeleteOutcome, error) {
	user, err := s.userRepo.GetByID(recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeAlreadyGone, nil
		}
		return "", err
	}
	if user.IsActive {
		return OutcomeSkippedStillActive, nil
	}

	removed, err := s.userRepo.HardDelete(recordID)
	if err != nil {
		return "", err
	}
	if removed == 0 {
		return OutcomeAlreadyGone, nil
	}
	return OutcomeDeleted, nil
}
