// Package worker hosts the scheduled background jobs.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/service"
)

// StartReminderWorker schedules the stale-ticket sweep on the given cron
// expression and starts the scheduler. The caller owns stopping it.
func StartReminderWorker(spec string, reminders *service.ReminderService, logger *zap.Logger) (*cron.Cron, error) {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := reminders.Sweep(ctx); err != nil {
			logger.Error("reminder sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	logger.Info("reminder worker started", zap.String("cron", spec))
	return scheduler, nil
}
