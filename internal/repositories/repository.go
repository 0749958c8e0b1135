package repositories

import (
	"veluna/internal/database"
)

type Repository struct {
	Recipient       RecipientRepository
	DailyMessage    DailyMessageRepository
	Reaction        ReactionRepository
	ScheduledRepeat ScheduledRepeatRepository
	CommandLog      CommandLogRepository
	PortalDay       PortalDayRepository
	Oil             OilRepository
	InboundEvent    InboundEventRepository
}

func New(db database.DB) Repository {
	return Repository{
		Recipient:       NewRecipientRepository(db),
		DailyMessage:    NewDailyMessageRepository(db), // daily message repo needs cache for today's record
		Reaction:        NewReactionRepository(db),
		ScheduledRepeat: NewScheduledRepeatRepository(db),
		CommandLog:      NewCommandLogRepository(db),
		PortalDay:       NewPortalDayRepository(db),
		Oil:             NewOilRepository(db),
		InboundEvent:    NewInboundEventRepository(db),
	}
}
