package repositories

import (
	"context"
	"time"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

type InboundEventRepository interface {
	Append(ctx context.Context, event *InboundEvent) error

	// ListPending returns unprocessed events oldest-first, bounded by limit.
	ListPending(ctx context.Context, limit int) ([]InboundEvent, error)

	MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type inboundEventRepository struct {
	db  database.DB
	log logger.Logger
}

func NewInboundEventRepository(db database.DB) InboundEventRepository {
	return &inboundEventRepository{
		db:  db,
		log: logger.New("inboundEventRepository"),
	}
}

func (r *inboundEventRepository) Append(ctx context.Context, event *InboundEvent) error {
	log := r.log.Function("Append")

	if err := r.db.SQLWithContext(ctx).Create(event).Error; err != nil {
		return log.Err("failed to append inbound event", err,
			"recipientID", event.RecipientID)
	}

	return nil
}

func (r *inboundEventRepository) ListPending(
	ctx context.Context,
	limit int,
) ([]InboundEvent, error) {
	log := r.log.Function("ListPending")

	var events []InboundEvent
	err := r.db.SQLWithContext(ctx).
		Where("processed_at IS NULL").
		Order("received_at").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, log.Err("failed to list pending inbound events", err)
	}

	return events, nil
}

func (r *inboundEventRepository) MarkProcessed(
	ctx context.Context,
	id uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("MarkProcessed")

	err := r.db.SQLWithContext(ctx).
		Model(&InboundEvent{}).
		Where("id = ?", id).
		Update("processed_at", at).Error
	if err != nil {
		return log.Err("failed to mark inbound event processed", err, "id", id)
	}

	return nil
}
