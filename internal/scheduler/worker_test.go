package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"recipehub/internal/database"
	"recipehub/internal/models"
	"recipehub/internal/repository"
)

func newTestRepo(t *testing.T) (repository.JobRepository, *gorm.DB) {
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
	return repository.NewJobRepository(db), db
}

func seedJob(t *testing.T, repo repository.JobRepository, name models.JobName, runAt time.Time) *models.ScheduledJob {
	t.Helper()

	job := &models.ScheduledJob{Name: name, Payload: "{}", RunAt: runAt}
	if err := repo.Create(job); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestWorkerRunsDueJobs(t *testing.T) {
	repo, _ := newTestRepo(t)
	w := NewWorker(repo, time.Second, zap.NewNop())

	var ran int
	w.Register(models.JobSendEmail, func(ctx context.Context, job *models.ScheduledJob) error {
		ran++
		return nil
	})

	due := seedJob(t, repo, models.JobSendEmail, time.Now().Add(-time.Minute))
	future := seedJob(t, repo, models.JobSendEmail, time.Now().Add(time.Hour))

	w.RunDue(context.Background())

	if ran != 1 {
		t.Fatalf("handler ran %d times, want 1", ran)
	}
	got, err := repo.GetByID(due.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.JobDone {
		t.Errorf("due job status = %q, want done", got.Status)
	}
	got, err = repo.GetByID(future.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.JobPending {
		t.Errorf("future job status = %q, want pending", got.Status)
	}
}

func TestWorkerRetriesUntilExhausted(t *testing.T) {
	repo, _ := newTestRepo(t)
	w := NewWorker(repo, time.Second, zap.NewNop())

	var attempts int
	w.Register(models.JobSendEmail, func(ctx context.Context, job *models.ScheduledJob) error {
		attempts++
		return errors.New("provider unavailable")
	})

	job := seedJob(t, repo, models.JobSendEmail, time.Now().Add(-time.Minute))

	for i := 0; i < MaxAttempts+2; i++ {
		w.RunDue(context.Background())
	}

	if attempts != MaxAttempts {
		t.Errorf("handler ran %d times, want %d", attempts, MaxAttempts)
	}
	got, err := repo.GetByID(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.JobFailed {
		t.Errorf("status = %q, want failed", got.Status)
	}
	if got.Attempts != MaxAttempts {
		t.Errorf("attempts = %d, want %d", got.Attempts, MaxAttempts)
	}
	if got.LastError == "" {
		t.Error("last_error not recorded")
	}
}

func TestWorkerFailsJobWithoutHandler(t *testing.T) {
	repo, _ := newTestRepo(t)
	w := NewWorker(repo, time.Second, zap.NewNop())

	job := seedJob(t, repo, models.JobHardDeleteUser, time.Now().Add(-time.Minute))
	w.RunDue(context.Background())

	got, err := repo.GetByID(job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.JobFailed {
		t.Errorf("status = %q, want failed for unhandled job", got.Status)
	}
}
