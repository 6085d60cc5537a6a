// Package jobs runs the console's background maintenance on a cron schedule.
package jobs

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rmacedo/guild-console/pkg/store"
)

type Scheduler struct {
	cron      *cron.Cron
	passwords store.PasswordStore
	schedule  string
}

func NewScheduler(passwords store.PasswordStore, schedule string) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		passwords: passwords,
		schedule:  schedule,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sweepExpiredPasswords); err != nil {
		return err
	}
	s.cron.Start()
	slog.Info("scheduler started", "password_sweep", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// sweepExpiredPasswords drops temporary passwords past their expiry. Expired
// rows are already rejected at login; this keeps the table from growing
// unbounded.
func (s *Scheduler) sweepExpiredPasswords() {
	n, err := s.passwords.DeleteExpired(time.Now().UTC())
	if err != nil {
		slog.Error("expired password sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("expired temporary passwords removed", "count", n)
	}
}
