package repositories

import (
	"context"
	"veluna/internal/database"
	. "veluna/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OilRepository interface {
	// GetByName looks up a catalog entry by its canonical name,
	// case-insensitively. Matching inbound text against names is not this
	// repository's job; callers resolve names first.
	GetByName(ctx context.Context, name string) (*Oil, error)

	ListAll(ctx context.Context) ([]Oil, error)

	// UpsertBatch seeds or refreshes catalog entries keyed by name.
	UpsertBatch(ctx context.Context, oils []Oil) error
}

type oilRepository struct {
	db  database.DB
	log logger.Logger
}

func NewOilRepository(db database.DB) OilRepository {
	return &oilRepository{
		db:  db,
		log: logger.New("oilRepository"),
	}
}

func (r *oilRepository) GetByName(ctx context.Context, name string) (*Oil, error) {
	log := r.log.Function("GetByName")

	var oil Oil
	err := r.db.SQLWithContext(ctx).
		Where("LOWER(name) = LOWER(?)", name).
		First(&oil).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, log.Err("failed to get oil by name", err, "name", name)
	}

	return &oil, nil
}

func (r *oilRepository) ListAll(ctx context.Context) ([]Oil, error) {
	log := r.log.Function("ListAll")

	var oils []Oil
	if err := r.db.SQLWithContext(ctx).Order("name").Find(&oils).Error; err != nil {
		return nil, log.Err("failed to list oils", err)
	}

	return oils, nil
}

func (r *oilRepository) UpsertBatch(ctx context.Context, oils []Oil) error {
	log := r.log.Function("UpsertBatch")

	if len(oils) == 0 {
		return nil
	}

	err := r.db.SQLWithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"alternative_names",
				"energetic_effects",
				"main_components",
				"interesting_facts",
				"contraindications",
				"best_uses",
			}),
		}).
		Create(&oils).Error
	if err != nil {
		return log.Err("failed to upsert oils", err, "count", len(oils))
	}

	log.Info("Oil catalog upserted", "count", len(oils))
	return nil
}
