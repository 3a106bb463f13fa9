// Package jobs holds background schedules that run alongside the HTTP
// server.
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/baltgc/gomotel/internal/service"
)

const noShowSchedule = "*/5 * * * *"

// StartNoShowSweeper runs the no-show sweep every five minutes, marking
// confirmed reservations whose grace period after the scheduled start has
// elapsed. The returned cron can be stopped on shutdown.
func StartNoShowSweeper(booking *service.BookingService) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc(noShowSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := booking.MarkNoShows(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("no-show-sweeper: sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("no-show-sweeper: marked %d reservations", n)
		}
	})
	if err != nil {
		log.Fatalf("no-show-sweeper: bad schedule %q: %v", noShowSchedule, err)
	}
	c.Start()
	return c
}
