package repositories

import (
	"context"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecipientRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Recipient, error)
	GetByChatID(ctx context.Context, chatID string) (*Recipient, error)
	ListActive(ctx context.Context) ([]Recipient, error)

	// UpsertByChatID creates the recipient if the chat ID is new, otherwise
	// refreshes language and active flag.
	UpsertByChatID(ctx context.Context, recipient *Recipient) error
}

type recipientRepository struct {
	db  database.DB
	log logger.Logger
}

func NewRecipientRepository(db database.DB) RecipientRepository {
	return &recipientRepository{
		db:  db,
		log: logger.New("recipientRepository"),
	}
}

func (r *recipientRepository) GetByID(ctx context.Context, id uuid.UUID) (*Recipient, error) {
	log := r.log.Function("GetByID")

	var recipient Recipient
	err := r.db.SQLWithContext(ctx).First(&recipient, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get recipient by id", err, "id", id)
	}

	return &recipient, nil
}

func (r *recipientRepository) GetByChatID(ctx context.Context, chatID string) (*Recipient, error) {
	log := r.log.Function("GetByChatID")

	var recipient Recipient
	err := r.db.SQLWithContext(ctx).First(&recipient, "chat_id = ?", chatID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get recipient by chat id", err, "chatID", chatID)
	}

	return &recipient, nil
}

func (r *recipientRepository) ListActive(ctx context.Context) ([]Recipient, error) {
	log := r.log.Function("ListActive")

	var recipients []Recipient
	err := r.db.SQLWithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at").
		Find(&recipients).Error
	if err != nil {
		return nil, log.Err("failed to list active recipients", err)
	}

	return recipients, nil
}

func (r *recipientRepository) UpsertByChatID(ctx context.Context, recipient *Recipient) error {
	log := r.log.Function("UpsertByChatID")

	err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"language", "is_active"}),
		}).
		Create(recipient).Error
	if err != nil {
		return log.Err("failed to upsert recipient", err, "chatID", recipient.ChatID)
	}

	return nil
}
