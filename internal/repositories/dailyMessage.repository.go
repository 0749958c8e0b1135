package repositories

import (
	"context"
	"time"
	"veluna/internal/calendar"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DAILY_MESSAGE_CACHE_PREFIX = "daily_message"
	DAILY_MESSAGE_CACHE_EXPIRY = 24 * time.Hour
)

// DailyMessageContent is what a supplier produces for a brand-new record.
type DailyMessageContent struct {
	DayType        string
	PrimaryOil     string
	AlternativeOil string
	RenderedText   string
}

// DailyMessageSupplier generates content for a (recipient, date) that has no
// record yet. GetOrCreate never invokes it when a record already exists; it
// is the expensive generate-and-send path.
type DailyMessageSupplier func(ctx context.Context) (*DailyMessageContent, error)

type DailyMessageRepository interface {
	// GetOrCreate returns the canonical record for the key, creating it from
	// the supplier only when absent. created reports whether this call
	// persisted the record; a false with no error is a prevented duplicate.
	GetOrCreate(
		ctx context.Context,
		recipientID uuid.UUID,
		date time.Time,
		supplier DailyMessageSupplier,
	) (*DailyMessage, bool, error)

	// Get returns gorm.ErrRecordNotFound when no record exists for the key.
	Get(ctx context.Context, recipientID uuid.UUID, date time.Time) (*DailyMessage, error)

	// ReplaceAlternative is the only legal mutation of an existing record.
	ReplaceAlternative(
		ctx context.Context,
		recipientID uuid.UUID,
		date time.Time,
		newAlternativeOil string,
		newText string,
	) (*DailyMessage, error)

	// RecentOils lists the distinct oils recommended to a recipient on or
	// after the given date, for exclusion from fresh generations.
	RecentOils(ctx context.Context, recipientID uuid.UUID, since time.Time) ([]string, error)
}

type dailyMessageRepository struct {
	db  database.DB
	log logger.Logger
}

func NewDailyMessageRepository(db database.DB) DailyMessageRepository {
	return &dailyMessageRepository{
		db:  db,
		log: logger.New("dailyMessageRepository"),
	}
}

func (r *dailyMessageRepository) GetOrCreate(
	ctx context.Context,
	recipientID uuid.UUID,
	date time.Time,
	supplier DailyMessageSupplier,
) (*DailyMessage, bool, error) {
	log := r.log.Function("GetOrCreate")
	date = calendar.Day(date)

	existing, err := r.Get(ctx, recipientID, date)
	if err == nil {
		log.Info("Duplicate send prevented, record already exists",
			"recipientID", recipientID, "date", calendar.DateKey(date))
		return existing, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	content, err := supplier(ctx)
	if err != nil {
		return nil, false, err
	}

	record := &DailyMessage{
		RecipientID:    recipientID,
		Date:           date,
		DayType:        content.DayType,
		PrimaryOil:     content.PrimaryOil,
		AlternativeOil: content.AlternativeOil,
		RenderedText:   content.RenderedText,
	}

	// Upsert-if-absent: a concurrent writer for the same key loses the
	// conflict and adopts the winner's record, so at most one record and one
	// created=true exist per (recipient, date).
	result := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "recipient_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return nil, false, log.Err("failed to create daily message", result.Error,
			"recipientID", recipientID, "date", calendar.DateKey(date))
	}

	if result.RowsAffected == 0 {
		log.Info("Duplicate send prevented on conflict",
			"recipientID", recipientID, "date", calendar.DateKey(date))
		winner, err := r.getDB(ctx, recipientID, date)
		if err != nil {
			return nil, false, err
		}
		return winner, false, nil
	}

	r.cacheRecord(ctx, record)

	return record, true, nil
}

func (r *dailyMessageRepository) Get(
	ctx context.Context,
	recipientID uuid.UUID,
	date time.Time,
) (*DailyMessage, error) {
	log := r.log.Function("Get")
	date = calendar.Day(date)

	var cached DailyMessage
	found, err := database.NewCacheBuilder(r.db.Cache.Messages, r.cacheKey(recipientID, date)).
		WithContext(ctx).
		WithHash(DAILY_MESSAGE_CACHE_PREFIX).
		Get(&cached)
	if err != nil {
		log.Warn("failed to get daily message from cache",
			"recipientID", recipientID, "date", calendar.DateKey(date), "error", err)
	}

	if found {
		return &cached, nil
	}

	return r.getDB(ctx, recipientID, date)
}

func (r *dailyMessageRepository) ReplaceAlternative(
	ctx context.Context,
	recipientID uuid.UUID,
	date time.Time,
	newAlternativeOil string,
	newText string,
) (*DailyMessage, error) {
	log := r.log.Function("ReplaceAlternative")
	date = calendar.Day(date)

	result := r.db.SQLWithContext(ctx).
		Model(&DailyMessage{}).
		Where("recipient_id = ? AND date = ?", recipientID, date).
		Updates(map[string]any{
			"alternative_oil": newAlternativeOil,
			"rendered_text":   newText,
		})
	if result.Error != nil {
		return nil, log.Err("failed to replace alternative oil", result.Error,
			"recipientID", recipientID, "date", calendar.DateKey(date))
	}

	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	r.clearCache(ctx, recipientID, date)

	return r.getDB(ctx, recipientID, date)
}

func (r *dailyMessageRepository) RecentOils(
	ctx context.Context,
	recipientID uuid.UUID,
	since time.Time,
) ([]string, error) {
	log := r.log.Function("RecentOils")

	var records []DailyMessage
	err := r.db.SQLWithContext(ctx).
		Select("primary_oil", "alternative_oil").
		Where("recipient_id = ? AND date >= ?", recipientID, calendar.Day(since)).
		Find(&records).Error
	if err != nil {
		return nil, log.Err("failed to list recent oils", err, "recipientID", recipientID)
	}

	seen := make(map[string]struct{}, len(records)*2)
	oils := make([]string, 0, len(records)*2)
	for _, record := range records {
		for _, oil := range []string{record.PrimaryOil, record.AlternativeOil} {
			if oil == "" {
				continue
			}
			if _, ok := seen[oil]; ok {
				continue
			}
			seen[oil] = struct{}{}
			oils = append(oils, oil)
		}
	}

	return oils, nil
}

func (r *dailyMessageRepository) getDB(
	ctx context.Context,
	recipientID uuid.UUID,
	date time.Time,
) (*DailyMessage, error) {
	var record DailyMessage
	err := r.db.SQLWithContext(ctx).
		Where("recipient_id = ? AND date = ?", recipientID, date).
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, r.log.Function("getDB").
			Err("failed to get daily message", err,
				"recipientID", recipientID, "date", calendar.DateKey(date))
	}

	r.cacheRecord(ctx, &record)

	return &record, nil
}

func (r *dailyMessageRepository) cacheKey(recipientID uuid.UUID, date time.Time) string {
	return recipientID.String() + ":" + calendar.DateKey(date)
}

func (r *dailyMessageRepository) cacheRecord(ctx context.Context, record *DailyMessage) {
	err := database.NewCacheBuilder(r.db.Cache.Messages, r.cacheKey(record.RecipientID, record.Date)).
		WithContext(ctx).
		WithHash(DAILY_MESSAGE_CACHE_PREFIX).
		WithStruct(record).
		WithTTL(DAILY_MESSAGE_CACHE_EXPIRY).
		Set()
	if err != nil {
		r.log.Warn("failed to cache daily message",
			"recipientID", record.RecipientID, "date", calendar.DateKey(record.Date), "error", err)
	}
}

func (r *dailyMessageRepository) clearCache(ctx context.Context, recipientID uuid.UUID, date time.Time) {
	err := database.NewCacheBuilder(r.db.Cache.Messages, r.cacheKey(recipientID, date)).
		WithContext(ctx).
		WithHash(DAILY_MESSAGE_CACHE_PREFIX).
		Delete()
	if err != nil {
		r.log.Warn("failed to clear daily message cache",
			"recipientID", recipientID, "date", calendar.DateKey(date), "error", err)
	}
}
