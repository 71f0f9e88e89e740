package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"habitboard/internal/domain/service"
	"habitboard/internal/session"

	"github.com/robfig/cron/v3"
)

// RolloverChecker periodically re-runs the day-boundary check on every
// open session, so a session left open across midnight still archives the
// finished day. The last-active-date fencing inside the rollover makes
// the repeated firing harmless.
type RolloverChecker struct {
	sessions *session.Manager
	rollover service.RolloverService
	cron     *cron.Cron
	interval time.Duration
}

// NewRolloverChecker creates a new rollover checker
func NewRolloverChecker(sessions *session.Manager, rollover service.RolloverService, checkInterval time.Duration) *RolloverChecker {
	return &RolloverChecker{
		sessions: sessions,
		rollover: rollover,
		cron:     cron.New(),
		interval: checkInterval,
	}
}

// Start starts the rollover checker
func (c *RolloverChecker) Start() error {
	cronExpr := fmt.Sprintf("@every %s", c.interval.String())

	log.Printf("Starting rollover checker with interval: %s", c.interval)

	_, err := c.cron.AddFunc(cronExpr, func() {
		c.checkSessions()
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	c.cron.Start()
	log.Println("Rollover checker started successfully")

	return nil
}

// Stop stops the rollover checker
func (c *RolloverChecker) Stop() {
	log.Println("Stopping rollover checker...")
	ctx := c.cron.Stop()
	<-ctx.Done()
	log.Println("Rollover checker stopped")
}

func (c *RolloverChecker) checkSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, sess := range c.sessions.Open() {
		result, err := c.rollover.Run(ctx, sess)
		if err != nil {
			log.Printf("Rollover check failed for user %s: %v", sess.UserID(), err)
			continue
		}
		if result.Ran && result.EvaluatedDate != "" {
			log.Printf("Rolled over %s for user %s (streak %d)", result.EvaluatedDate, sess.UserID(), result.Streak.Streak)
		}
	}
}
