package jobs

import (
	"context"
	"veluna/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type DailySendJob struct {
	dailySend *services.DailySendService
	log       logger.Logger
	schedule  services.Schedule
}

func NewDailySendJob(
	dailySend *services.DailySendService,
	schedule services.Schedule,
) *DailySendJob {
	return &DailySendJob{
		dailySend: dailySend,
		log:       logger.New("dailySendJob"),
		schedule:  schedule,
	}
}

func (j *DailySendJob) Name() string {
	return "DailyMessageSend"
}

func (j *DailySendJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	log.Info("Starting daily send run")

	report, err := j.dailySend.Run(ctx)
	if err != nil {
		return log.Err("daily send run failed", err)
	}

	log.Info("Daily send run completed",
		"date", report.Date,
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return nil
}

func (j *DailySendJob) Schedule() services.Schedule {
	return j.schedule
}
