package cron

import (
	"log"
	"time"

	"voting-bracket-api/services"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic session cleanup job. Abandoned non-completed
// sessions are reaped after the configured TTL; completed sessions are
// permanent and never touched.
type Scheduler struct {
	cron           *cron.Cron
	sessionService *services.SessionService
	sessionTTL     time.Duration
}

func NewScheduler(sessionService *services.SessionService, sessionTTL time.Duration) *Scheduler {
	c := cron.New(cron.WithSeconds(), cron.WithLogger(cron.VerbosePrintfLogger(log.Default())))

	return &Scheduler{
		cron:           c,
		sessionService: sessionService,
		sessionTTL:     sessionTTL,
	}
}

// Start schedules the cleanup job at minute 0 of every hour.
func (s *Scheduler) Start() error {
	log.Println("Starting cron scheduler...")

	_, err := s.cron.AddFunc("0 0 * * * *", s.runSessionCleanup)
	if err != nil {
		log.Printf("Error scheduling session cleanup job: %v", err)
		return err
	}

	s.cron.Start()
	log.Println("Cron scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	log.Println("Stopping cron scheduler...")
	s.cron.Stop()
	log.Println("Cron scheduler stopped")
}

func (s *Scheduler) runSessionCleanup() {
	log.Println("Running session cleanup job...")

	deleted, err := s.sessionService.CleanupStaleSessions(s.sessionTTL)
	if err != nil {
		log.Printf("Error during session cleanup: %v", err)
		return
	}

	if deleted == 0 {
		log.Println("No stale sessions to clean up")
		return
	}

	log.Printf("Session cleanup removed %d stale session(s)", deleted)
}

// RunNow manually triggers the cleanup job (useful for testing)
func (s *Scheduler) RunNow() {
	log.Println("Manually triggering session cleanup job...")
	s.runSessionCleanup()
}
