package scheduler

import (
	"fmt"
	"time"

	"github.com/finsight/invoice-analytics/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler runs the periodic overdue-reminder job
type Scheduler struct {
	cron *cron.Cron
	svc  *service.Service
	log  *logrus.Logger
}

// NewScheduler initializes a new scheduler
func NewScheduler(svc *service.Service, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		svc:  svc,
		log:  log,
	}
}

// Start registers the reminder job with the given cron expression and
// starts the scheduler
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runReminders); err != nil {
		return fmt.Errorf("failed to schedule reminder job: %w", err)
	}
	s.cron.Start()
	s.log.Infof("Reminder job scheduled: %s", schedule)
	return nil
}

// Stop stops the scheduler, waiting for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runReminders() {
	if err := s.svc.SendOverdueReminders(time.Now()); err != nil {
		s.log.Errorf("Reminder job failed: %v", err)
	}
}
