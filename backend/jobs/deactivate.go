package jobs

import (
	"context"
	"log"
	"time"

	"lms/backend/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// DeactivateInactiveUsers switches off active accounts whose last login is
// older than period. Accounts that never logged in are left alone.
func DeactivateInactiveUsers(ctx context.Context, db *gorm.DB, now time.Time, period time.Duration) (int64, error) {
	threshold := now.Add(-period)
	res := db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ? AND last_login IS NOT NULL AND last_login < ?", true, threshold).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron   *cron.Cron
	db     *gorm.DB
	period time.Duration
	logger *log.Logger
}

func NewScheduler(db *gorm.DB, period time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     db,
		period: period,
		logger: logger,
	}
}

// Start registers the deactivation job on spec (a cron expression or a
// descriptor such as "@daily") and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.runDeactivation)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Printf("[SCHEDULER] Inactive user check scheduled: %s", spec)
	return nil
}

func (s *Scheduler) runDeactivation() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := DeactivateInactiveUsers(ctx, s.db, time.Now(), s.period)
	if err != nil {
		s.logger.Printf("[SCHEDULER] Error deactivating users: %v", err)
		return
	}
	s.logger.Printf("[SCHEDULER] Deactivated %d inactive users", n)
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
