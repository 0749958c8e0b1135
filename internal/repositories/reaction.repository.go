package repositories

import (
	"context"
	"time"
	"veluna/internal/calendar"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

type ReactionRepository interface {
	// Append records a reaction. Repeated reactions on the same date are all
	// kept; nothing is deduplicated or overwritten.
	Append(ctx context.Context, entry *ReactionEntry) error

	// Stats counts reactions per kind over an inclusive date range.
	Stats(ctx context.Context, from time.Time, to time.Time) (map[Reaction]int64, error)
}

type reactionRepository struct {
	db  database.DB
	log logger.Logger
}

func NewReactionRepository(db database.DB) ReactionRepository {
	return &reactionRepository{
		db:  db,
		log: logger.New("reactionRepository"),
	}
}

func (r *reactionRepository) Append(ctx context.Context, entry *ReactionEntry) error {
	log := r.log.Function("Append")
	entry.Date = calendar.Day(entry.Date)

	if err := r.db.SQLWithContext(ctx).Create(entry).Error; err != nil {
		return log.Err("failed to append reaction", err,
			"recipientID", entry.RecipientID, "date", calendar.DateKey(entry.Date))
	}

	return nil
}

func (r *reactionRepository) Stats(
	ctx context.Context,
	from time.Time,
	to time.Time,
) (map[Reaction]int64, error) {
	log := r.log.Function("Stats")

	var rows []struct {
		Reaction Reaction
		Count    int64
	}
	err := r.db.SQLWithContext(ctx).
		Model(&ReactionEntry{}).
		Select("reaction, COUNT(*) as count").
		Where("date BETWEEN ? AND ?", calendar.Day(from), calendar.Day(to)).
		Group("reaction").
		Find(&rows).Error
	if err != nil {
		return nil, log.Err("failed to get reaction stats", err,
			"from", calendar.DateKey(from), "to", calendar.DateKey(to))
	}

	stats := make(map[Reaction]int64, len(rows))
	for _, row := range rows {
		stats[row.Reaction] = row.Count
	}

	return stats, nil
}
