package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/internal/ledger"
)

// Default notification window.
const (
	DefaultStartHour = 8  // No reminders before 8:00
	DefaultEndHour   = 22 // No reminders after 22:00
)

// Notifier delivers a due-drill reminder to the learner.
type Notifier interface {
	SendReminder(dueCount int) error
}

// Scheduler periodically checks how many drills are due and sends a
// reminder through the notifier.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	drills    *drills.Store
	ledger    *ledger.Ledger

	// Notification window in local hours; reminders outside it are
	// skipped.
	StartHour int
	EndHour   int
}

// New creates a scheduler instance with the default notification window.
func New(notifier Notifier, store *drills.Store, l *ledger.Ledger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		drills:    store,
		ledger:    l,
		StartHour: DefaultStartHour,
		EndHour:   DefaultEndHour,
	}
}

// Start begins the hourly due-drill check.
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndNotify)

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// DueCount returns how many loaded drills are due for review at the
// given time. Never-seen drills count as due.
func (s *Scheduler) DueCount(now time.Time) int {
	records := s.ledger.AllRecords()
	count := 0
	for _, d := range s.drills.All() {
		rec, ok := records[d.Key()]
		if !ok || rec.Due(now) {
			count++
		}
	}
	return count
}

// RunManualCheck forces a reminder check regardless of the schedule,
// still honoring the notification window.
func (s *Scheduler) RunManualCheck() error {
	now := time.Now()
	due := s.DueCount(now)
	if due == 0 {
		return nil
	}
	return s.notifier.SendReminder(due)
}

// checkAndNotify runs on the hourly schedule.
func (s *Scheduler) checkAndNotify() {
	now := time.Now()
	hour := now.Hour()
	if hour < s.StartHour || hour > s.EndHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminder",
			hour, s.StartHour, s.EndHour)
		return
	}

	due := s.DueCount(now)
	if due == 0 {
		return
	}
	if err := s.notifier.SendReminder(due); err != nil {
		log.Printf("Error sending reminder: %v", err)
	}
}
