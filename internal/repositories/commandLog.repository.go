package repositories

import (
	"context"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

type CommandLogRepository interface {
	Append(ctx context.Context, entry *CommandLogEntry) error
}

type commandLogRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCommandLogRepository(db database.DB) CommandLogRepository {
	return &commandLogRepository{
		db:  db,
		log: logger.New("commandLogRepository"),
	}
}

func (r *commandLogRepository) Append(ctx context.Context, entry *CommandLogEntry) error {
	log := r.log.Function("Append")

	if err := r.db.SQLWithContext(ctx).Create(entry).Error; err != nil {
		return log.Err("failed to append command log entry", err,
			"recipientID", entry.RecipientID, "outcome", entry.Outcome)
	}

	return nil
}
