package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"veluna/internal/calendar"
	"veluna/internal/models"
	"veluna/internal/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory collaborators for service tests. They mirror the repository
// contracts, including the supplier-at-most-once guarantee and the atomic
// claim on sweep.

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fixedClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

type fakeRecipientRepo struct {
	recipients []models.Recipient
}

func (f *fakeRecipientRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Recipient, error) {
	for i := range f.recipients {
		if f.recipients[i].ID == id {
			recipient := f.recipients[i]
			return &recipient, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecipientRepo) GetByChatID(_ context.Context, chatID string) (*models.Recipient, error) {
	for i := range f.recipients {
		if f.recipients[i].ChatID == chatID {
			recipient := f.recipients[i]
			return &recipient, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRecipientRepo) ListActive(_ context.Context) ([]models.Recipient, error) {
	var active []models.Recipient
	for _, recipient := range f.recipients {
		if recipient.IsActive {
			active = append(active, recipient)
		}
	}
	return active, nil
}

func (f *fakeRecipientRepo) UpsertByChatID(_ context.Context, recipient *models.Recipient) error {
	for i := range f.recipients {
		if f.recipients[i].ChatID == recipient.ChatID {
			f.recipients[i].Language = recipient.Language
			f.recipients[i].IsActive = recipient.IsActive
			*recipient = f.recipients[i]
			return nil
		}
	}
	if recipient.ID == uuid.Nil {
		recipient.ID = uuid.New()
	}
	f.recipients = append(f.recipients, *recipient)
	return nil
}

type fakeDailyMessageRepo struct {
	records map[string]*models.DailyMessage
}

func newFakeDailyMessageRepo() *fakeDailyMessageRepo {
	return &fakeDailyMessageRepo{records: make(map[string]*models.DailyMessage)}
}

func dailyKey(recipientID uuid.UUID, date time.Time) string {
	return recipientID.String() + ":" + calendar.DateKey(date)
}

func (f *fakeDailyMessageRepo) GetOrCreate(
	ctx context.Context,
	recipientID uuid.UUID,
	date time.Time,
	supplier repositories.DailyMessageSupplier,
) (*models.DailyMessage, bool, error) {
	date = calendar.Day(date)
	if record, ok := f.records[dailyKey(recipientID, date)]; ok {
		copied := *record
		return &copied, false, nil
	}

	content, err := supplier(ctx)
	if err != nil {
		return nil, false, err
	}

	record := &models.DailyMessage{
		RecipientID:    recipientID,
		Date:           date,
		DayType:        content.DayType,
		PrimaryOil:     content.PrimaryOil,
		AlternativeOil: content.AlternativeOil,
		RenderedText:   content.RenderedText,
	}
	record.ID = uuid.New()
	f.records[dailyKey(recipientID, date)] = record

	copied := *record
	return &copied, true, nil
}

func (f *fakeDailyMessageRepo) Get(
	_ context.Context,
	recipientID uuid.UUID,
	date time.Time,
) (*models.DailyMessage, error) {
	record, ok := f.records[dailyKey(recipientID, date)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeDailyMessageRepo) ReplaceAlternative(
	_ context.Context,
	recipientID uuid.UUID,
	date time.Time,
	newAlternativeOil string,
	newText string,
) (*models.DailyMessage, error) {
	record, ok := f.records[dailyKey(recipientID, date)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	record.AlternativeOil = newAlternativeOil
	record.RenderedText = newText
	copied := *record
	return &copied, nil
}

func (f *fakeDailyMessageRepo) RecentOils(
	_ context.Context,
	recipientID uuid.UUID,
	since time.Time,
) ([]string, error) {
	seen := make(map[string]struct{})
	var oils []string
	for _, record := range f.records {
		if record.RecipientID != recipientID || record.Date.Before(calendar.Day(since)) {
			continue
		}
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

type fakeReactionRepo struct {
	entries []models.ReactionEntry
	failErr error
}

func (f *fakeReactionRepo) Append(_ context.Context, entry *models.ReactionEntry) error {
	if f.failErr != nil {
		return f.failErr
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeReactionRepo) Stats(
	_ context.Context,
	from time.Time,
	to time.Time,
) (map[models.Reaction]int64, error) {
	stats := make(map[models.Reaction]int64)
	for _, entry := range f.entries {
		if !entry.Date.Before(calendar.Day(from)) && !entry.Date.After(calendar.Day(to)) {
			stats[entry.Reaction]++
		}
	}
	return stats, nil
}

type fakeRepeatRepo struct {
	entries []models.ScheduledRepeat
}

func (f *fakeRepeatRepo) Enqueue(_ context.Context, repeat *models.ScheduledRepeat) error {
	repeat.Status = models.RepeatStatusPending
	repeat.DateOfMessage = calendar.Day(repeat.DateOfMessage)
	if repeat.ID == uuid.Nil {
		repeat.ID = uuid.New()
	}
	f.entries = append(f.entries, *repeat)
	return nil
}

func (f *fakeRepeatRepo) SweepDue(
	_ context.Context,
	date time.Time,
	timeOfDay string,
	now time.Time,
) ([]models.ScheduledRepeat, error) {
	date = calendar.Day(date)
	var due []models.ScheduledRepeat
	for i := range f.entries {
		entry := &f.entries[i]
		if entry.Status != models.RepeatStatusPending {
			continue
		}
		if !entry.DateOfMessage.Equal(date) || entry.FireTime > timeOfDay {
			continue
		}
		entry.Status = models.RepeatStatusFired
		firedAt := now
		entry.FiredAt = &firedAt
		due = append(due, *entry)
	}
	return due, nil
}

func (f *fakeRepeatRepo) ExpireStale(_ context.Context, date time.Time) (int64, error) {
	date = calendar.Day(date)
	var expired int64
	for i := range f.entries {
		entry := &f.entries[i]
		if entry.Status == models.RepeatStatusPending && entry.DateOfMessage.Before(date) {
			entry.Status = models.RepeatStatusExpired
			expired++
		}
	}
	return expired, nil
}

type fakeCommandLogRepo struct {
	entries []models.CommandLogEntry
}

func (f *fakeCommandLogRepo) Append(_ context.Context, entry *models.CommandLogEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeOilRepo struct {
	oils []models.Oil
}

func (f *fakeOilRepo) GetByName(_ context.Context, name string) (*models.Oil, error) {
	for i := range f.oils {
		if strings.EqualFold(f.oils[i].Name, name) {
			oil := f.oils[i]
			return &oil, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOilRepo) ListAll(_ context.Context) ([]models.Oil, error) {
	return append([]models.Oil(nil), f.oils...), nil
}

func (f *fakeOilRepo) UpsertBatch(_ context.Context, oils []models.Oil) error {
	f.oils = append(f.oils, oils...)
	return nil
}

type fakePortalDayRepo struct {
	dates []time.Time
}

func (f *fakePortalDayRepo) Populate(_ context.Context, dates []time.Time) (int64, error) {
	var added int64
	for _, date := range dates {
		if !f.contains(date) {
			f.dates = append(f.dates, date)
			added++
		}
	}
	return added, nil
}

func (f *fakePortalDayRepo) LoadSet(
	_ context.Context,
	from time.Time,
	to time.Time,
) (*calendar.DateSet, error) {
	set := calendar.NewDateSet()
	for _, date := range f.dates {
		day := calendar.Day(date)
		if !day.Before(calendar.Day(from)) && !day.After(calendar.Day(to)) {
			set.Add(date)
		}
	}
	return set, nil
}

func (f *fakePortalDayRepo) contains(date time.Time) bool {
	for _, existing := range f.dates {
		if calendar.DateKey(existing) == calendar.DateKey(date) {
			return true
		}
	}
	return false
}

type fakeInboundEventRepo struct {
	events []models.InboundEvent
}

func (f *fakeInboundEventRepo) Append(_ context.Context, event *models.InboundEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeInboundEventRepo) ListPending(
	_ context.Context,
	limit int,
) ([]models.InboundEvent, error) {
	var pending []models.InboundEvent
	for _, event := range f.events {
		if event.ProcessedAt == nil {
			pending = append(pending, event)
			if len(pending) == limit {
				break
			}
		}
	}
	return pending, nil
}

func (f *fakeInboundEventRepo) MarkProcessed(_ context.Context, id uuid.UUID, at time.Time) error {
	for i := range f.events {
		if f.events[i].ID == id {
			processedAt := at
			f.events[i].ProcessedAt = &processedAt
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type sentMessage struct {
	chatID string
	text   string
}

type fakeTransport struct {
	sent    []sentMessage
	failErr error
}

func (f *fakeTransport) Send(_ context.Context, chatID string, text string) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

type fakeGenerator struct {
	calls    int
	requests []GenerateRequest
	result   *GeneratedMessage
	err      error
}

func (f *fakeGenerator) Generate(
	_ context.Context,
	req GenerateRequest,
) (*GeneratedMessage, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		copied := *f.result
		return &copied, nil
	}
	return &GeneratedMessage{
		PrimaryOil:     "Lavender",
		AlternativeOil: "Frankincense",
		Text:           fmt.Sprintf("Daily message for %s", req.Date.Format("2006-01-02")),
	}, nil
}

func testRepos(
	recipients *fakeRecipientRepo,
	daily *fakeDailyMessageRepo,
	reactions *fakeReactionRepo,
	repeats *fakeRepeatRepo,
	commandLog *fakeCommandLogRepo,
	portalDays *fakePortalDayRepo,
	oils *fakeOilRepo,
	inbound *fakeInboundEventRepo,
) repositories.Repository {
	return repositories.Repository{
		Recipient:       recipients,
		DailyMessage:    daily,
		Reaction:        reactions,
		ScheduledRepeat: repeats,
		CommandLog:      commandLog,
		PortalDay:       portalDays,
		Oil:             oils,
		InboundEvent:    inbound,
	}
}
