package repositories

import (
	"context"
	"time"
	"veluna/internal/calendar"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm/clause"
)

type ScheduledRepeatRepository interface {
	Enqueue(ctx context.Context, repeat *ScheduledRepeat) error

	// SweepDue atomically transitions pending entries for the given date with
	// fire_time <= timeOfDay to fired and returns them. The transition
	// happens before delivery, so a crash after it loses at most one
	// redelivery instead of risking a duplicate.
	SweepDue(
		ctx context.Context,
		date time.Time,
		timeOfDay string,
		now time.Time,
	) ([]ScheduledRepeat, error)

	// ExpireStale marks pending entries whose message date is before the
	// given date as expired. They never fire on a later day.
	ExpireStale(ctx context.Context, date time.Time) (int64, error)
}

type scheduledRepeatRepository struct {
	db  database.DB
	log logger.Logger
}

func NewScheduledRepeatRepository(db database.DB) ScheduledRepeatRepository {
	return &scheduledRepeatRepository{
		db:  db,
		log: logger.New("scheduledRepeatRepository"),
	}
}

func (r *scheduledRepeatRepository) Enqueue(ctx context.Context, repeat *ScheduledRepeat) error {
	log := r.log.Function("Enqueue")

	repeat.Status = RepeatStatusPending
	repeat.DateOfMessage = calendar.Day(repeat.DateOfMessage)

	if err := r.db.SQLWithContext(ctx).Create(repeat).Error; err != nil {
		return log.Err("failed to enqueue scheduled repeat", err,
			"recipientID", repeat.RecipientID, "fireTime", repeat.FireTime)
	}

	log.Info("Scheduled repeat enqueued",
		"recipientID", repeat.RecipientID,
		"fireTime", repeat.FireTime,
		"dateOfMessage", calendar.DateKey(repeat.DateOfMessage),
	)
	return nil
}

func (r *scheduledRepeatRepository) SweepDue(
	ctx context.Context,
	date time.Time,
	timeOfDay string,
	now time.Time,
) ([]ScheduledRepeat, error) {
	log := r.log.Function("SweepDue")
	date = calendar.Day(date)

	var due []ScheduledRepeat
	result := r.db.SQLWithContext(ctx).
		Model(&due).
		Clauses(clause.Returning{}).
		Where("status = ? AND date_of_message = ? AND fire_time <= ?",
			RepeatStatusPending, date, timeOfDay).
		Updates(map[string]any{
			"status":   RepeatStatusFired,
			"fired_at": now,
		})
	if result.Error != nil {
		return nil, log.Err("failed to sweep due repeats", result.Error,
			"date", calendar.DateKey(date))
	}

	if len(due) > 0 {
		log.Info("Due repeats claimed", "count", len(due), "date", calendar.DateKey(date))
	}

	return due, nil
}

func (r *scheduledRepeatRepository) ExpireStale(ctx context.Context, date time.Time) (int64, error) {
	log := r.log.Function("ExpireStale")
	date = calendar.Day(date)

	result := r.db.SQLWithContext(ctx).
		Model(&ScheduledRepeat{}).
		Where("status = ? AND date_of_message < ?", RepeatStatusPending, date).
		Update("status", RepeatStatusExpired)
	if result.Error != nil {
		return 0, log.Err("failed to expire stale repeats", result.Error,
			"date", calendar.DateKey(date))
	}

	if result.RowsAffected > 0 {
		log.Info("Stale repeats expired", "count", result.RowsAffected,
			"before", calendar.DateKey(date))
	}

	return result.RowsAffected, nil
}
