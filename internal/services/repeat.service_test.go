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

type repeatFixture struct {
	service   *RepeatService
	clock     *fixedClock
	recipient models.Recipient
	daily     *fakeDailyMessageRepo
	repeats   *fakeRepeatRepo
	transport *fakeTransport
}

func newRepeatFixture(t *testing.T) *repeatFixture {
	t.Helper()

	recipient := models.Recipient{ChatID: "555", Language: "en", IsActive: true}
	recipient.ID = uuid.New()

	recipients := &fakeRecipientRepo{recipients: []models.Recipient{recipient}}
	daily := newFakeDailyMessageRepo()
	repeats := &fakeRepeatRepo{}
	transport := &fakeTransport{}

	clk := newFixedClock(time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC))

	service := NewRepeatService(
		testRepos(
			recipients, daily, &fakeReactionRepo{}, repeats,
			&fakeCommandLogRepo{}, &fakePortalDayRepo{}, &fakeOilRepo{}, &fakeInboundEventRepo{},
		),
		transport,
		clk,
	)

	return &repeatFixture{
		service:   service,
		clock:     clk,
		recipient: recipient,
		daily:     daily,
		repeats:   repeats,
		transport: transport,
	}
}

func (f *repeatFixture) seedRecord(t *testing.T, date time.Time, text string) {
	t.Helper()

	_, created, err := f.daily.GetOrCreate(context.Background(), f.recipient.ID, date,
		func(context.Context) (*repositories.DailyMessageContent, error) {
			return &repositories.DailyMessageContent{
				DayType:        "regular",
				PrimaryOil:     "Lavender",
				AlternativeOil: "Frankincense",
				RenderedText:   text,
			}, nil
		},
	)
	require.NoError(t, err)
	require.True(t, created)
}

func (f *repeatFixture) enqueue(t *testing.T, date time.Time, fireTime string) {
	t.Helper()

	require.NoError(t, f.repeats.Enqueue(context.Background(), &models.ScheduledRepeat{
		RecipientID:   f.recipient.ID,
		RequestedAt:   f.clock.Now(),
		FireTime:      fireTime,
		DateOfMessage: date,
	}))
}

func TestRepeatSweepFiresExactlyOnce(t *testing.T) {
	f := newRepeatFixture(t)
	ctx := context.Background()
	today := calendar.Day(f.clock.Now())

	f.seedRecord(t, today, "the morning message")
	f.enqueue(t, today, "10:30")

	// 09:00: not due yet.
	sent, err := f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.transport.sent)

	// 10:30: due, redelivers the stored text.
	f.clock.Advance(90 * time.Minute)
	sent, err = f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, f.transport.sent, 1)
	assert.Equal(t, "555", f.transport.sent[0].chatID)
	assert.Equal(t, "the morning message", f.transport.sent[0].text)
	assert.Equal(t, models.RepeatStatusFired, f.repeats.entries[0].Status)

	// Later sweeps never refire a claimed entry.
	f.clock.Advance(time.Minute)
	sent, err = f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, f.transport.sent, 1)
}

func TestRepeatSweepExpiresStaleEntries(t *testing.T) {
	f := newRepeatFixture(t)
	ctx := context.Background()

	yesterday := calendar.Day(f.clock.Now().AddDate(0, 0, -1))
	f.seedRecord(t, yesterday, "yesterday's message")
	f.enqueue(t, yesterday, "23:00")

	// The day rolled over before the entry fired; it expires instead of
	// redelivering on a stale date.
	sent, err := f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.transport.sent)
	assert.Equal(t, models.RepeatStatusExpired, f.repeats.entries[0].Status)

	// Expired entries stay terminal on later sweeps.
	f.clock.Advance(24 * time.Hour)
	sent, err = f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Equal(t, models.RepeatStatusExpired, f.repeats.entries[0].Status)
}

func TestRepeatSweepDeliveryFailureIsNotRetried(t *testing.T) {
	f := newRepeatFixture(t)
	ctx := context.Background()
	today := calendar.Day(f.clock.Now())

	f.seedRecord(t, today, "the morning message")
	f.enqueue(t, today, "09:00")
	f.transport.failErr = assert.AnError

	sent, err := f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)

	// The claim stands; a duplicate send is the worse failure mode.
	assert.Equal(t, models.RepeatStatusFired, f.repeats.entries[0].Status)

	f.transport.failErr = nil
	sent, err = f.service.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, f.transport.sent)
}
