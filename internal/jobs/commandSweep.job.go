package jobs

import (
	"context"
	"veluna/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type CommandSweepJob struct {
	router   *services.CommandRouterService
	log      logger.Logger
	schedule services.Schedule
}

func NewCommandSweepJob(
	router *services.CommandRouterService,
	schedule services.Schedule,
) *CommandSweepJob {
	return &CommandSweepJob{
		router:   router,
		log:      logger.New("commandSweepJob"),
		schedule: schedule,
	}
}

func (j *CommandSweepJob) Name() string {
	return "InboundCommandSweep"
}

func (j *CommandSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	processed, err := j.router.SweepInbound(ctx)
	if err != nil {
		return log.Err("command sweep failed", err)
	}

	if processed > 0 {
		log.Info("Command sweep completed", "processed", processed)
	}
	return nil
}

func (j *CommandSweepJob) Schedule() services.Schedule {
	return j.schedule
}
