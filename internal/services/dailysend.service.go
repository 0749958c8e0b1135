package services

import (
	"context"
	"time"
	"veluna/internal/calendar"
	"veluna/internal/clock"
	"veluna/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

// Oils recommended within this window are excluded from fresh generations so
// recipients see variety.
const recentOilWindowDays = 14

// SendReport summarizes one daily send run.
type SendReport struct {
	Date      string           `json:"date"`
	DayType   calendar.DayType `json:"dayType"`
	MoonPhase string           `json:"moonPhase"`
	Sent      int              `json:"sent"`
	Skipped   int              `json:"skipped"`
	Failed    int              `json:"failed"`
}

// DailySendService runs the morning broadcast: classify the day once, then
// produce and deliver at most one message per active recipient.
type DailySendService struct {
	recipients    repositories.RecipientRepository
	dailyMessages repositories.DailyMessageRepository
	portalDays    repositories.PortalDayRepository
	generator     ContentGenerator
	transport     Transport
	clock         clock.Clock
	horizonDays   int
	log           logger.Logger
}

func NewDailySendService(
	repos repositories.Repository,
	generator ContentGenerator,
	transport Transport,
	clk clock.Clock,
	horizonDays int,
) *DailySendService {
	return &DailySendService{
		recipients:    repos.Recipient,
		dailyMessages: repos.DailyMessage,
		portalDays:    repos.PortalDay,
		generator:     generator,
		transport:     transport,
		clock:         clk,
		horizonDays:   horizonDays,
		log:           logger.New("dailySendService"),
	}
}

// Run executes one send pass. The day is classified exactly once and the
// resulting day type is stamped on every record created during the pass. A
// recipient that already has a record for today is skipped; a generation
// failure skips that recipient only and never aborts the pass.
func (s *DailySendService) Run(ctx context.Context) (*SendReport, error) {
	log := s.log.Function("Run")

	now := s.clock.Now()
	today := calendar.Day(now)
	dateKey := calendar.DateKey(today)

	portals, err := s.portalDays.LoadSet(ctx, today, today)
	if err != nil {
		return nil, err
	}
	dayContext, dayType := calendar.Classify(now, portals)

	recipients, err := s.recipients.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	report := &SendReport{
		Date:      dateKey,
		DayType:   dayType,
		MoonPhase: string(dayContext.MoonPhase),
	}

	since := today.AddDate(0, 0, -recentOilWindowDays)

	for _, recipient := range recipients {
		recipient := recipient

		supplier := func(ctx context.Context) (*repositories.DailyMessageContent, error) {
			excluded, err := s.dailyMessages.RecentOils(ctx, recipient.ID, since)
			if err != nil {
				log.Warn("failed to load recent oils, generating without exclusions",
					"recipientID", recipient.ID, "error", err)
				excluded = nil
			}

			generated, err := s.generator.Generate(ctx, GenerateRequest{
				Language:     recipient.Language,
				Date:         now,
				DayType:      dayType,
				ExcludedOils: excluded,
			})
			if err != nil {
				return nil, err
			}

			return &repositories.DailyMessageContent{
				DayType:        string(dayType),
				PrimaryOil:     generated.PrimaryOil,
				AlternativeOil: generated.AlternativeOil,
				RenderedText:   generated.Text,
			}, nil
		}

		record, created, err := s.dailyMessages.GetOrCreate(ctx, recipient.ID, today, supplier)
		if err != nil {
			report.Failed++
			_ = log.Err("skipping recipient, content generation failed", err,
				"recipientID", recipient.ID, "date", dateKey)
			continue
		}
		if !created {
			report.Skipped++
			continue
		}

		if err := s.transport.Send(ctx, recipient.ChatID, record.RenderedText); err != nil {
			report.Failed++
			_ = log.Err("delivery failed after record was committed", err,
				"recipientID", recipient.ID, "date", dateKey)
			continue
		}

		report.Sent++
	}

	log.Info("Daily send completed",
		"date", report.Date,
		"dayType", report.DayType,
		"moonPhase", report.MoonPhase,
		"sent", report.Sent,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

// PopulatePortalDays unions the built-in portal dates plus any extras into
// the stored set. Existing rows are never removed or changed.
func (s *DailySendService) PopulatePortalDays(
	ctx context.Context,
	extra []time.Time,
) (int64, error) {
	log := s.log.Function("PopulatePortalDays")

	dates := append(calendar.KnownPortalDays(), extra...)
	added, err := s.portalDays.Populate(ctx, dates)
	if err != nil {
		return 0, err
	}

	now := s.clock.Now()
	horizonEnd := now.AddDate(0, 0, s.horizonDays)
	var covered bool
	for _, date := range dates {
		if !date.Before(horizonEnd) {
			covered = true
			break
		}
	}
	if !covered {
		log.Warn("portal day coverage ends inside the configured horizon",
			"horizonEnd", calendar.DateKey(horizonEnd))
	}

	return added, nil
}
