package jobs

import (
	"context"
	"veluna/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type RepeatSweepJob struct {
	repeat   *services.RepeatService
	log      logger.Logger
	schedule services.Schedule
}

func NewRepeatSweepJob(
	repeat *services.RepeatService,
	schedule services.Schedule,
) *RepeatSweepJob {
	return &RepeatSweepJob{
		repeat:   repeat,
		log:      logger.New("repeatSweepJob"),
		schedule: schedule,
	}
}

func (j *RepeatSweepJob) Name() string {
	return "RepeatQueueSweep"
}

func (j *RepeatSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	sent, err := j.repeat.Sweep(ctx)
	if err != nil {
		return log.Err("repeat sweep failed", err)
	}

	if sent > 0 {
		log.Info("Repeat sweep completed", "redelivered", sent)
	}
	return nil
}

func (j *RepeatSweepJob) Schedule() services.Schedule {
	return j.schedule
}
