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

type PortalDayRepository interface {
	// Populate unions the given dates into the portal set. Already-present
	// dates are left untouched, so re-population can never drop a day a
	// daily message was already committed against.
	Populate(ctx context.Context, dates []time.Time) (int64, error)

	// LoadSet snapshots the portal dates in [from, to] into an in-memory set
	// for the pure classifier.
	LoadSet(ctx context.Context, from time.Time, to time.Time) (*calendar.DateSet, error)
}

type portalDayRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPortalDayRepository(db database.DB) PortalDayRepository {
	return &portalDayRepository{
		db:  db,
		log: logger.New("portalDayRepository"),
	}
}

func (r *portalDayRepository) Populate(ctx context.Context, dates []time.Time) (int64, error) {
	log := r.log.Function("Populate")

	if len(dates) == 0 {
		return 0, nil
	}

	rows := make([]PortalDay, 0, len(dates))
	for _, date := range dates {
		rows = append(rows, PortalDay{Date: calendar.Day(date)})
	}

	result := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).
		Create(&rows)
	if result.Error != nil {
		return 0, log.Err("failed to populate portal days", result.Error, "count", len(dates))
	}

	log.Info("Portal days populated", "offered", len(dates), "added", result.RowsAffected)
	return result.RowsAffected, nil
}

func (r *portalDayRepository) LoadSet(
	ctx context.Context,
	from time.Time,
	to time.Time,
) (*calendar.DateSet, error) {
	log := r.log.Function("LoadSet")

	var rows []PortalDay
	err := r.db.SQLWithContext(ctx).
		Where("date BETWEEN ? AND ?", calendar.Day(from), calendar.Day(to)).
		Find(&rows).Error
	if err != nil {
		return nil, log.Err("failed to load portal days", err,
			"from", calendar.DateKey(from), "to", calendar.DateKey(to))
	}

	set := calendar.NewDateSet()
	for _, row := range rows {
		set.Add(row.Date)
	}

	return set, nil
}
