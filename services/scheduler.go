// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartScheduler runs the background jobs: periodic dashboard cache refresh
// and a daily sweep of overdue-payment reminders. Cache population is an
// explicit operation here, not a side effect of the admin reading the page.
func StartScheduler(dashboard *DashboardService, payments *PaymentService) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(5*time.Minute),
		gocron.NewTask(func() {
			if _, err := dashboard.Recompute(time.Now()); err != nil {
				log.Printf("[Scheduler] dashboard recompute failed: %v", err)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			sent, err := payments.RemindOverdue(time.Now())
			if err != nil {
				log.Printf("[Scheduler] overdue reminders failed: %v", err)
				return
			}
			if sent > 0 {
				log.Printf("✅ Sent %d overdue payment reminders", sent)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	return sched, nil
}
