package jobs

import (
	"veluna/config"
	"veluna/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// Import schedule constants
const (
	DailySend       = services.DailySend
	EveryMinute     = services.EveryMinute
	EveryHalfMinute = services.EveryHalfMinute
)

func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")
	log.Info("Registering jobs")

	dailySendJob := NewDailySendJob(services.DailySend, DailySend)
	if err := schedulerService.AddJob(dailySendJob); err != nil {
		return log.Err("failed to register daily send job", err)
	}
	log.Info("Registered daily send job", "at", config.SendTime)

	repeatSweepJob := NewRepeatSweepJob(services.Repeat, EveryMinute)
	if err := schedulerService.AddJob(repeatSweepJob); err != nil {
		return log.Err("failed to register repeat sweep job", err)
	}
	log.Info("Registered repeat sweep job", "schedule", "every minute")

	commandSweepJob := NewCommandSweepJob(services.CommandRouter, EveryHalfMinute)
	if err := schedulerService.AddJob(commandSweepJob); err != nil {
		return log.Err("failed to register command sweep job", err)
	}
	log.Info("Registered command sweep job", "schedule", "every 30 seconds")

	return nil
}
