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

type sendFixture struct {
	service    *DailySendService
	clock      *fixedClock
	recipients *fakeRecipientRepo
	daily      *fakeDailyMessageRepo
	portalDays *fakePortalDayRepo
	transport  *fakeTransport
	generator  *fakeGenerator
}

func newSendFixture(t *testing.T, recipientCount int) *sendFixture {
	t.Helper()

	recipients := &fakeRecipientRepo{}
	for i := 0; i < recipientCount; i++ {
		recipient := models.Recipient{
			ChatID:   uuid.NewString(),
			Language: "en",
			IsActive: true,
		}
		recipient.ID = uuid.New()
		recipients.recipients = append(recipients.recipients, recipient)
	}

	daily := newFakeDailyMessageRepo()
	portalDays := &fakePortalDayRepo{}
	transport := &fakeTransport{}
	generator := &fakeGenerator{}

	// Wednesday 2025-03-12, 08:00 UTC. Not a moon-phase window date.
	clk := newFixedClock(time.Date(2025, time.March, 12, 8, 0, 0, 0, time.UTC))

	service := NewDailySendService(
		testRepos(
			recipients, daily, &fakeReactionRepo{}, &fakeRepeatRepo{},
			&fakeCommandLogRepo{}, portalDays, &fakeOilRepo{}, &fakeInboundEventRepo{},
		),
		generator,
		transport,
		clk,
		90,
	)

	return &sendFixture{
		service:    service,
		clock:      clk,
		recipients: recipients,
		daily:      daily,
		portalDays: portalDays,
		transport:  transport,
		generator:  generator,
	}
}

func TestDailySendCreatesOneRecordPerRecipient(t *testing.T) {
	f := newSendFixture(t, 3)
	ctx := context.Background()

	report, err := f.service.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Sent)
	assert.Zero(t, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.Equal(t, 3, f.generator.calls)
	assert.Len(t, f.transport.sent, 3)
	assert.Len(t, f.daily.records, 3)
}

func TestDailySendIsIdempotent(t *testing.T) {
	f := newSendFixture(t, 2)
	ctx := context.Background()

	_, err := f.service.Run(ctx)
	require.NoError(t, err)

	// Invoking the job again for the same date must not regenerate or
	// resend anything.
	report, err := f.service.Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, report.Sent)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 2, f.generator.calls)
	assert.Len(t, f.transport.sent, 2)
	assert.Len(t, f.daily.records, 2)
}

func TestDailySendSkipsFailedGeneration(t *testing.T) {
	f := newSendFixture(t, 2)
	f.generator.err = assert.AnError
	ctx := context.Background()

	report, err := f.service.Run(ctx)
	require.NoError(t, err)

	assert.Zero(t, report.Sent)
	assert.Equal(t, 2, report.Failed)
	assert.Empty(t, f.daily.records)
	assert.Empty(t, f.transport.sent)

	// Once generation recovers, the same date still gets its records.
	f.generator.err = nil
	report, err = f.service.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Len(t, f.daily.records, 2)
}

func TestDailySendStampsPortalDayType(t *testing.T) {
	f := newSendFixture(t, 1)
	ctx := context.Background()

	_, err := f.portalDays.Populate(ctx, []time.Time{f.clock.Now()})
	require.NoError(t, err)

	report, err := f.service.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, calendar.DayTypePortal, report.DayType)

	recipient := f.recipients.recipients[0]
	record, err := f.daily.Get(ctx, recipient.ID, calendar.Day(f.clock.Now()))
	require.NoError(t, err)
	assert.Equal(t, string(calendar.DayTypePortal), record.DayType)

	require.NotEmpty(t, f.generator.requests)
	assert.Equal(t, calendar.DayTypePortal, f.generator.requests[0].DayType)
}

func TestDailySendExcludesRecentOils(t *testing.T) {
	f := newSendFixture(t, 1)
	ctx := context.Background()
	recipient := f.recipients.recipients[0]

	yesterday := calendar.Day(f.clock.Now().AddDate(0, 0, -1))
	_, created, err := f.daily.GetOrCreate(ctx, recipient.ID, yesterday,
		func(context.Context) (*repositories.DailyMessageContent, error) {
			return &repositories.DailyMessageContent{
				DayType:        "regular",
				PrimaryOil:     "Bergamot",
				AlternativeOil: "Cedarwood",
				RenderedText:   "yesterday",
			}, nil
		},
	)
	require.NoError(t, err)
	require.True(t, created)

	_, err = f.service.Run(ctx)
	require.NoError(t, err)

	require.NotEmpty(t, f.generator.requests)
	assert.ElementsMatch(t,
		[]string{"Bergamot", "Cedarwood"},
		f.generator.requests[0].ExcludedOils,
	)
}

func TestDailySendPortalPopulationIsUnion(t *testing.T) {
	f := newSendFixture(t, 0)
	ctx := context.Background()

	extra := time.Date(2030, time.May, 5, 0, 0, 0, 0, time.UTC)
	added, err := f.service.PopulatePortalDays(ctx, []time.Time{extra})
	require.NoError(t, err)
	assert.Equal(t, int64(len(calendar.KnownPortalDays())+1), added)

	// Re-population adds nothing and drops nothing.
	added, err = f.service.PopulatePortalDays(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Len(t, f.portalDays.dates, len(calendar.KnownPortalDays())+1)
}
