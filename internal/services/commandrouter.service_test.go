package services

import (
	"context"
	"testing"
	"time"
	"veluna/internal/calendar"
	"veluna/internal/models"
	"veluna/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routerFixture struct {
	router    *CommandRouterService
	clock     *fixedClock
	recipient *models.Recipient
	daily     *fakeDailyMessageRepo
	reactions *fakeReactionRepo
	repeats   *fakeRepeatRepo
	log       *fakeCommandLogRepo
	oils      *fakeOilRepo
	inbound   *fakeInboundEventRepo
	transport *fakeTransport
	generator *fakeGenerator
}

func newRouterFixture(t *testing.T, language string) *routerFixture {
	t.Helper()

	recipient := models.Recipient{
		ChatID:   "100200300",
		Language: language,
		IsActive: true,
	}
	recipient.ID = uuid.New()

	recipients := &fakeRecipientRepo{recipients: []models.Recipient{recipient}}
	daily := newFakeDailyMessageRepo()
	reactions := &fakeReactionRepo{}
	repeats := &fakeRepeatRepo{}
	commandLog := &fakeCommandLogRepo{}
	portalDays := &fakePortalDayRepo{}
	oils := &fakeOilRepo{oils: []models.Oil{
		{Name: "Lavender", AlternativeNames: []byte(`["Lavendel"]`), EnergeticEffects: "calming"},
		{Name: "Frankincense", AlternativeNames: []byte(`["Weihrauch"]`)},
	}}
	inbound := &fakeInboundEventRepo{}
	transport := &fakeTransport{}
	generator := &fakeGenerator{}

	// Monday 2025-03-10, 09:00 UTC.
	clk := newFixedClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))

	router := NewCommandRouterService(
		testRepos(recipients, daily, reactions, repeats, commandLog, portalDays, oils, inbound),
		generator,
		transport,
		clk,
	)

	return &routerFixture{
		router:    router,
		clock:     clk,
		recipient: &recipient,
		daily:     daily,
		reactions: reactions,
		repeats:   repeats,
		log:       commandLog,
		oils:      oils,
		inbound:   inbound,
		transport: transport,
		generator: generator,
	}
}

func (f *routerFixture) seedTodayRecord(t *testing.T, primary, alternative string) {
	t.Helper()

	date := calendar.Day(f.clock.Now())
	_, created, err := f.daily.GetOrCreate(
		context.Background(),
		f.recipient.ID,
		date,
		func(context.Context) (*repositories.DailyMessageContent, error) {
			return &repositories.DailyMessageContent{
				DayType:        "regular",
				PrimaryOil:     primary,
				AlternativeOil: alternative,
				RenderedText:   "morning message",
			}, nil
		},
	)
	require.NoError(t, err)
	require.True(t, created)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		text string
		want parsedCommand
	}{
		{"thumbs up", "👍", parsedCommand{kind: cmdReaction, reaction: models.ReactionUp}},
		{"check mark maps up", "✅", parsedCommand{kind: cmdReaction, reaction: models.ReactionUp}},
		{"thumbs down", "👎", parsedCommand{kind: cmdReaction, reaction: models.ReactionDown}},
		{"cross maps down", "❌", parsedCommand{kind: cmdReaction, reaction: models.ReactionDown}},
		{"emoji with whitespace", "  👍  ", parsedCommand{kind: cmdReaction, reaction: models.ReactionUp}},
		{
			"repeat with time",
			"Repeat 14:30",
			parsedCommand{kind: cmdRepeat, hour: 14, minute: 30, timeValid: true},
		},
		{
			"repeat pm time",
			"repeat 2:30pm",
			parsedCommand{kind: cmdRepeat, hour: 14, minute: 30, timeValid: true},
		},
		{
			"repeat midnight am",
			"repeat 12:05am",
			parsedCommand{kind: cmdRepeat, hour: 0, minute: 5, timeValid: true},
		},
		{"repeat without time", "repeat", parsedCommand{kind: cmdRepeat}},
		{"repeat out of range", "repeat 25:00", parsedCommand{kind: cmdRepeat}},
		{"german repeat keyword", "Wiederhole 18:00", parsedCommand{kind: cmdRepeat, hour: 18, timeValid: true}},
		{"alternative", "Alternative", parsedCommand{kind: cmdAlternative}},
		{"alternative german", "alternativ", parsedCommand{kind: cmdAlternative}},
		{"alternative short", "ALT", parsedCommand{kind: cmdAlternative}},
		{"info with name", "Info Lavender", parsedCommand{kind: cmdInfo, oilQuery: "Lavender"}},
		{"info without name", "info", parsedCommand{kind: cmdInfo}},
		{"help english", "help", parsedCommand{kind: cmdHelp}},
		{"help german", "Hilfe", parsedCommand{kind: cmdHelp}},
		{"help question mark", "?", parsedCommand{kind: cmdHelp}},
		{"help slash", "/help", parsedCommand{kind: cmdHelp}},
		{"free text", "good morning to you too", parsedCommand{kind: cmdUnknown}},
		{"empty", "   ", parsedCommand{kind: cmdUnknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommand(tt.text))
		})
	}
}

func TestRouteReactionAccumulation(t *testing.T) {
	f := newRouterFixture(t, "en")
	ctx := context.Background()

	for range 2 {
		outcome, err := f.router.Route(ctx, f.recipient, "👍")
		require.NoError(t, err)
		assert.Equal(t, OutcomeAcknowledged, outcome.Kind)
		assert.NotEmpty(t, outcome.Reply)
	}

	// Re-reacting keeps history: two rows, not one.
	require.Len(t, f.reactions.entries, 2)
	assert.Equal(t, models.ReactionUp, f.reactions.entries[0].Reaction)
	assert.Equal(t, models.ReactionUp, f.reactions.entries[1].Reaction)
	assert.Equal(t, f.reactions.entries[0].Date, f.reactions.entries[1].Date)
	assert.Len(t, f.log.entries, 2)
}

func TestRouteRepeat(t *testing.T) {
	t.Run("invalid time is rejected", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")

		outcome, err := f.router.Route(context.Background(), f.recipient, "repeat soon")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvalidTime, outcome.Kind)
		assert.Empty(t, f.repeats.entries)
	})

	t.Run("past time is rejected not rolled over", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")

		// Clock is 09:00.
		outcome, err := f.router.Route(context.Background(), f.recipient, "Repeat 07:00")
		require.NoError(t, err)
		assert.Equal(t, OutcomePastTime, outcome.Kind)
		assert.Empty(t, f.repeats.entries)
	})

	t.Run("no record yet", func(t *testing.T) {
		f := newRouterFixture(t, "en")

		outcome, err := f.router.Route(context.Background(), f.recipient, "Repeat 14:30")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMessageYet, outcome.Kind)
		assert.Empty(t, f.repeats.entries)
	})

	t.Run("future time enqueues for today", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")

		outcome, err := f.router.Route(context.Background(), f.recipient, "Repeat 23:59")
		require.NoError(t, err)
		assert.Equal(t, OutcomeRepeatScheduled, outcome.Kind)
		assert.Contains(t, outcome.Reply, "23:59")

		require.Len(t, f.repeats.entries, 1)
		entry := f.repeats.entries[0]
		assert.Equal(t, f.recipient.ID, entry.RecipientID)
		assert.Equal(t, "23:59", entry.FireTime)
		assert.Equal(t, calendar.Day(f.clock.Now()), entry.DateOfMessage)
		assert.Equal(t, models.RepeatStatusPending, entry.Status)
	})

	t.Run("pm suffix shifts the hour", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")

		outcome, err := f.router.Route(context.Background(), f.recipient, "repeat 2:30pm")
		require.NoError(t, err)
		assert.Equal(t, OutcomeRepeatScheduled, outcome.Kind)
		require.Len(t, f.repeats.entries, 1)
		assert.Equal(t, "14:30", f.repeats.entries[0].FireTime)
	})
}

func TestRouteAlternative(t *testing.T) {
	t.Run("no record yet", func(t *testing.T) {
		f := newRouterFixture(t, "en")

		outcome, err := f.router.Route(context.Background(), f.recipient, "alternative")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMessageYet, outcome.Kind)
		assert.Zero(t, f.generator.calls)
	})

	t.Run("replaces alternative excluding today's oils", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")
		f.generator.result = &GeneratedMessage{
			PrimaryOil:     "Bergamot",
			AlternativeOil: "Cedarwood",
			Text:           "a fresh alternative",
		}

		outcome, err := f.router.Route(context.Background(), f.recipient, "Alternative")
		require.NoError(t, err)
		assert.Equal(t, OutcomeAlternativeReplaced, outcome.Kind)
		assert.Contains(t, outcome.Reply, "a fresh alternative")

		require.Len(t, f.generator.requests, 1)
		assert.ElementsMatch(t,
			[]string{"Lavender", "Frankincense"},
			f.generator.requests[0].ExcludedOils,
		)
		assert.True(t, f.generator.requests[0].Replacement)

		record, err := f.daily.Get(
			context.Background(), f.recipient.ID, calendar.Day(f.clock.Now()),
		)
		require.NoError(t, err)
		assert.Equal(t, "Bergamot", record.AlternativeOil)
		assert.Equal(t, "a fresh alternative", record.RenderedText)
		assert.Equal(t, "Lavender", record.PrimaryOil)
	})

	t.Run("generation failure is a user-visible outcome", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")
		f.generator.err = assert.AnError

		outcome, err := f.router.Route(context.Background(), f.recipient, "alternative")
		require.NoError(t, err)
		assert.Equal(t, OutcomeGenerationFailed, outcome.Kind)
		assert.NotEmpty(t, outcome.Reply)

		record, err := f.daily.Get(
			context.Background(), f.recipient.ID, calendar.Day(f.clock.Now()),
		)
		require.NoError(t, err)
		assert.Equal(t, "Frankincense", record.AlternativeOil)
	})
}

func TestRouteInfo(t *testing.T) {
	t.Run("resolves today's oils with fuzzy tolerance", func(t *testing.T) {
		for _, query := range []string{"Info Lavender", "Info lavander", "Info LAVENDER", "Info Lavendel"} {
			f := newRouterFixture(t, "en")
			f.seedTodayRecord(t, "Lavender", "Frankincense")

			outcome, err := f.router.Route(context.Background(), f.recipient, query)
			require.NoError(t, err, query)
			assert.Equal(t, OutcomeOilInfo, outcome.Kind, query)
			assert.Contains(t, outcome.Reply, "Lavender", query)
		}
	})

	t.Run("oil outside today's record is unknown", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")
		f.oils.oils = append(f.oils.oils, models.Oil{Name: "Peppermint"})

		outcome, err := f.router.Route(context.Background(), f.recipient, "Info Peppermint")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnknownOil, outcome.Kind)
	})

	t.Run("missing name prompts usage", func(t *testing.T) {
		f := newRouterFixture(t, "en")
		f.seedTodayRecord(t, "Lavender", "Frankincense")

		outcome, err := f.router.Route(context.Background(), f.recipient, "info")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnknownOil, outcome.Kind)
		assert.NotEmpty(t, outcome.Reply)
	})

	t.Run("no record yet", func(t *testing.T) {
		f := newRouterFixture(t, "en")

		outcome, err := f.router.Route(context.Background(), f.recipient, "Info Lavender")
		require.NoError(t, err)
		assert.Equal(t, OutcomeNoMessageYet, outcome.Kind)
	})
}

func TestRouteHelpAndUnrecognized(t *testing.T) {
	t.Run("help is localized", func(t *testing.T) {
		f := newRouterFixture(t, "de")

		outcome, err := f.router.Route(context.Background(), f.recipient, "Hilfe")
		require.NoError(t, err)
		assert.Equal(t, OutcomeHelp, outcome.Kind)
		assert.Contains(t, outcome.Reply, "Verfügbare Befehle")
	})

	t.Run("unmatched text is logged without a reply", func(t *testing.T) {
		f := newRouterFixture(t, "en")

		outcome, err := f.router.Route(context.Background(), f.recipient, "what is this")
		require.NoError(t, err)
		assert.Equal(t, OutcomeUnrecognized, outcome.Kind)
		assert.Empty(t, outcome.Reply)
		assert.Empty(t, f.transport.sent)
	})
}

func TestRouteWritesOneLogEntryPerBranch(t *testing.T) {
	tests := []struct {
		text    string
		outcome OutcomeKind
	}{
		{"👎", OutcomeAcknowledged},
		{"repeat nonsense", OutcomeInvalidTime},
		{"Repeat 07:00", OutcomePastTime},
		{"Repeat 22:00", OutcomeRepeatScheduled},
		{"alternative", OutcomeAlternativeReplaced},
		{"Info Lavender", OutcomeOilInfo},
		{"Info Peppermint", OutcomeUnknownOil},
		{"help", OutcomeHelp},
		{"anything else", OutcomeUnrecognized},
	}

	f := newRouterFixture(t, "en")
	f.seedTodayRecord(t, "Lavender", "Frankincense")

	for i, tt := range tests {
		outcome, err := f.router.Route(context.Background(), f.recipient, tt.text)
		require.NoError(t, err, tt.text)
		assert.Equal(t, tt.outcome, outcome.Kind, tt.text)

		require.Len(t, f.log.entries, i+1, tt.text)
		entry := f.log.entries[i]
		assert.Equal(t, tt.text, entry.RawText)
		assert.Equal(t, string(tt.outcome), entry.Outcome)
	}
}

func TestRouteStoreFailureStillLogs(t *testing.T) {
	f := newRouterFixture(t, "en")
	f.reactions.failErr = assert.AnError

	_, err := f.router.Route(context.Background(), f.recipient, "👍")
	require.Error(t, err)

	// The aborted action still leaves its trace in the command log.
	require.Len(t, f.log.entries, 1)
	assert.Equal(t, "👍", f.log.entries[0].RawText)
	assert.Equal(t, string(outcomeAborted), f.log.entries[0].Outcome)
	assert.Empty(t, f.reactions.entries)
}

func TestSweepInbound(t *testing.T) {
	f := newRouterFixture(t, "en")
	f.seedTodayRecord(t, "Lavender", "Frankincense")

	ctx := context.Background()
	for _, text := range []string{"👍", "help", "gibberish"} {
		require.NoError(t, f.inbound.Append(ctx, &models.InboundEvent{
			RecipientID: f.recipient.ID,
			RawText:     text,
			ReceivedAt:  f.clock.Now(),
		}))
	}

	processed, err := f.router.SweepInbound(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, processed)

	// Reaction and help owe a reply, gibberish does not.
	assert.Len(t, f.transport.sent, 2)
	for _, event := range f.inbound.events {
		assert.NotNil(t, event.ProcessedAt)
	}

	// A second sweep finds nothing pending.
	processed, err = f.router.SweepInbound(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)
}
