package services

import (
	"context"
	"veluna/internal/calendar"
	"veluna/internal/clock"
	"veluna/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// RepeatService redelivers the day's message at recipient-requested times.
// Entries are claimed (pending to fired) before delivery, so a crash between
// claim and send loses one redelivery instead of risking a duplicate.
type RepeatService struct {
	repeats       repositories.ScheduledRepeatRepository
	dailyMessages repositories.DailyMessageRepository
	recipients    repositories.RecipientRepository
	transport     Transport
	clock         clock.Clock
	log           logger.Logger
}

func NewRepeatService(
	repos repositories.Repository,
	transport Transport,
	clk clock.Clock,
) *RepeatService {
	return &RepeatService{
		repeats:       repos.ScheduledRepeat,
		dailyMessages: repos.DailyMessage,
		recipients:    repos.Recipient,
		transport:     transport,
		clock:         clk,
		log:           logger.New("repeatService"),
	}
}

// Sweep expires entries whose message date has rolled over, then claims and
// delivers everything due as of now. Returns the number of redeliveries sent.
func (s *RepeatService) Sweep(ctx context.Context) (int, error) {
	log := s.log.Function("Sweep")

	now := s.clock.Now()
	today := calendar.Day(now)

	if _, err := s.repeats.ExpireStale(ctx, today); err != nil {
		return 0, err
	}

	due, err := s.repeats.SweepDue(ctx, today, now.Format("15:04"), now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range due {
		record, err := s.dailyMessages.Get(ctx, entry.RecipientID, entry.DateOfMessage)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				log.Warn("claimed repeat has no daily message, dropping",
					"repeatID", entry.ID, "recipientID", entry.RecipientID)
				continue
			}
			_ = log.Err("failed to load daily message for repeat", err, "repeatID", entry.ID)
			continue
		}

		recipient, err := s.recipients.GetByID(ctx, entry.RecipientID)
		if err != nil {
			_ = log.Err("failed to load recipient for repeat", err, "repeatID", entry.ID)
			continue
		}

		if err := s.transport.Send(ctx, recipient.ChatID, record.RenderedText); err != nil {
			// Already claimed; the redelivery is lost rather than retried.
			_ = log.Err("repeat delivery failed after claim", err,
				"repeatID", entry.ID, "recipientID", entry.RecipientID)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Info("Repeats redelivered", "sent", sent, "claimed", len(due))
	}
	return sent, nil
}
