package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"veluna/internal/calendar"
	"veluna/internal/clock"
	"veluna/internal/models"
	"veluna/internal/repositories"
	"veluna/internal/textmatch"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// OutcomeKind tags every routed inbound event. Business-rule rejections are
// outcomes, never errors; only store failures propagate as errors.
type OutcomeKind string

const (
	OutcomeAcknowledged        OutcomeKind = "acknowledged"
	OutcomeRepeatScheduled     OutcomeKind = "repeat_scheduled"
	OutcomeAlternativeReplaced OutcomeKind = "alternative_replaced"
	OutcomeOilInfo             OutcomeKind = "oil_info"
	OutcomeHelp                OutcomeKind = "help"
	OutcomeUnrecognized        OutcomeKind = "unrecognized"
	OutcomeNoMessageYet        OutcomeKind = "no_message_yet"
	OutcomeInvalidTime         OutcomeKind = "invalid_time"
	OutcomePastTime            OutcomeKind = "past_time"
	OutcomeUnknownOil          OutcomeKind = "unknown_oil"
	OutcomeGenerationFailed    OutcomeKind = "generation_failed"
)

// outcomeAborted tags log entries for actions cut short by a store failure.
// It is never returned from Route; the failure itself propagates as an error.
const outcomeAborted OutcomeKind = "aborted"

// CommandOutcome is the routed result. An empty Reply means no outbound
// message is owed to the recipient.
type CommandOutcome struct {
	Kind  OutcomeKind
	Reply string
}

const inboundSweepLimit = 50

// CommandRouterService parses inbound text into typed commands and applies
// their side effects. Grammar precedence is fixed: reaction, repeat,
// alternative, info, help, then unrecognized.
type CommandRouterService struct {
	recipients    repositories.RecipientRepository
	dailyMessages repositories.DailyMessageRepository
	reactions     repositories.ReactionRepository
	repeats       repositories.ScheduledRepeatRepository
	commandLog    repositories.CommandLogRepository
	oils          repositories.OilRepository
	inboundEvents repositories.InboundEventRepository
	generator     ContentGenerator
	transport     Transport
	clock         clock.Clock
	log           logger.Logger
}

func NewCommandRouterService(
	repos repositories.Repository,
	generator ContentGenerator,
	transport Transport,
	clk clock.Clock,
) *CommandRouterService {
	return &CommandRouterService{
		recipients:    repos.Recipient,
		dailyMessages: repos.DailyMessage,
		reactions:     repos.Reaction,
		repeats:       repos.ScheduledRepeat,
		commandLog:    repos.CommandLog,
		oils:          repos.Oil,
		inboundEvents: repos.InboundEvent,
		generator:     generator,
		transport:     transport,
		clock:         clk,
		log:           logger.New("commandRouter"),
	}
}

// SweepInbound drains pending inbound events through Route, delivering any
// owed reply and stamping each event processed. A failed reply delivery does
// not hold the event in the queue; redelivery of replies is not a guarantee.
func (s *CommandRouterService) SweepInbound(ctx context.Context) (int, error) {
	log := s.log.Function("SweepInbound")

	events, err := s.inboundEvents.ListPending(ctx, inboundSweepLimit)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, event := range events {
		recipient, err := s.recipients.GetByID(ctx, event.RecipientID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				log.Warn("dropping inbound event for unknown recipient",
					"eventID", event.ID, "recipientID", event.RecipientID)
				if err := s.inboundEvents.MarkProcessed(ctx, event.ID, s.clock.Now()); err != nil {
					return processed, err
				}
				processed++
				continue
			}
			return processed, err
		}

		outcome, err := s.Route(ctx, recipient, event.RawText)
		if err != nil {
			return processed, err
		}

		if outcome.Reply != "" {
			if err := s.transport.Send(ctx, recipient.ChatID, outcome.Reply); err != nil {
				_ = log.Err("failed to deliver command reply", err,
					"recipientID", recipient.ID, "outcome", outcome.Kind)
			}
		}

		if err := s.inboundEvents.MarkProcessed(ctx, event.ID, s.clock.Now()); err != nil {
			return processed, err
		}
		processed++
	}

	if processed > 0 {
		log.Info("Inbound events processed", "count", processed)
	}
	return processed, nil
}

// Route parses raw inbound text and applies the matched command. Every call
// writes exactly one command log entry carrying the resolved outcome tag.
func (s *CommandRouterService) Route(
	ctx context.Context,
	recipient *models.Recipient,
	rawText string,
) (CommandOutcome, error) {
	command := parseCommand(rawText)

	var outcome CommandOutcome
	var err error

	switch command.kind {
	case cmdReaction:
		outcome, err = s.handleReaction(ctx, recipient, command.reaction)
	case cmdRepeat:
		outcome, err = s.handleRepeat(ctx, recipient, command)
	case cmdAlternative:
		outcome, err = s.handleAlternative(ctx, recipient)
	case cmdInfo:
		outcome, err = s.handleInfo(ctx, recipient, command.oilQuery)
	case cmdHelp:
		outcome = CommandOutcome{Kind: OutcomeHelp, Reply: replyHelp(recipient.Language)}
	default:
		outcome = CommandOutcome{Kind: OutcomeUnrecognized}
	}
	if err != nil {
		s.logCommand(ctx, recipient, rawText, outcomeAborted)
		return CommandOutcome{}, err
	}

	s.logCommand(ctx, recipient, rawText, outcome.Kind)

	return outcome, nil
}

func (s *CommandRouterService) handleReaction(
	ctx context.Context,
	recipient *models.Recipient,
	reaction models.Reaction,
) (CommandOutcome, error) {
	now := s.clock.Now()

	err := s.reactions.Append(ctx, &models.ReactionEntry{
		RecipientID: recipient.ID,
		Date:        calendar.Day(now),
		Reaction:    reaction,
		At:          now,
	})
	if err != nil {
		return CommandOutcome{}, err
	}

	reply := replyReactionUp(recipient.Language)
	if reaction == models.ReactionDown {
		reply = replyReactionDown(recipient.Language)
	}

	return CommandOutcome{Kind: OutcomeAcknowledged, Reply: reply}, nil
}

func (s *CommandRouterService) handleRepeat(
	ctx context.Context,
	recipient *models.Recipient,
	command parsedCommand,
) (CommandOutcome, error) {
	language := recipient.Language

	if !command.timeValid {
		return CommandOutcome{Kind: OutcomeInvalidTime, Reply: replyInvalidTime(language)}, nil
	}

	now := s.clock.Now()
	today := calendar.Day(now)
	fireTime := fmt.Sprintf("%02d:%02d", command.hour, command.minute)

	// Fire times are interpreted on today only. A time already behind the
	// clock is rejected, never rolled to tomorrow.
	if fireTime <= now.Format("15:04") {
		return CommandOutcome{Kind: OutcomePastTime, Reply: replyPastTime(language)}, nil
	}

	if _, err := s.dailyMessages.Get(ctx, recipient.ID, today); err != nil {
		if err == gorm.ErrRecordNotFound {
			return CommandOutcome{Kind: OutcomeNoMessageYet, Reply: replyNoMessageYet(language)}, nil
		}
		return CommandOutcome{}, err
	}

	err := s.repeats.Enqueue(ctx, &models.ScheduledRepeat{
		RecipientID:   recipient.ID,
		RequestedAt:   now,
		FireTime:      fireTime,
		DateOfMessage: today,
	})
	if err != nil {
		return CommandOutcome{}, err
	}

	return CommandOutcome{
		Kind:  OutcomeRepeatScheduled,
		Reply: replyRepeatScheduled(language, fireTime),
	}, nil
}

func (s *CommandRouterService) handleAlternative(
	ctx context.Context,
	recipient *models.Recipient,
) (CommandOutcome, error) {
	log := s.log.Function("handleAlternative")
	language := recipient.Language

	now := s.clock.Now()
	today := calendar.Day(now)

	record, err := s.dailyMessages.Get(ctx, recipient.ID, today)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return CommandOutcome{Kind: OutcomeNoMessageYet, Reply: replyNoMessageYet(language)}, nil
		}
		return CommandOutcome{}, err
	}

	// A replacement run asks for exactly one oil; the stored record and the
	// delivered text must name the same alternative.
	generated, err := s.generator.Generate(ctx, GenerateRequest{
		Language:     language,
		Date:         now,
		DayType:      calendar.DayType(record.DayType),
		ExcludedOils: []string{record.PrimaryOil, record.AlternativeOil},
		Replacement:  true,
	})
	if err != nil {
		_ = log.Err("alternative generation failed", err, "recipientID", recipient.ID)
		return CommandOutcome{
			Kind:  OutcomeGenerationFailed,
			Reply: replyAlternativeFailed(language),
		}, nil
	}

	if _, err := s.dailyMessages.ReplaceAlternative(
		ctx, recipient.ID, today, generated.PrimaryOil, generated.Text,
	); err != nil {
		if err == gorm.ErrRecordNotFound {
			return CommandOutcome{Kind: OutcomeNoMessageYet, Reply: replyNoMessageYet(language)}, nil
		}
		return CommandOutcome{}, err
	}

	return CommandOutcome{
		Kind:  OutcomeAlternativeReplaced,
		Reply: replyAlternative(language, generated.Text),
	}, nil
}

func (s *CommandRouterService) handleInfo(
	ctx context.Context,
	recipient *models.Recipient,
	query string,
) (CommandOutcome, error) {
	log := s.log.Function("handleInfo")
	language := recipient.Language

	if query == "" {
		return CommandOutcome{Kind: OutcomeUnknownOil, Reply: replyOilNameMissing(language)}, nil
	}

	now := s.clock.Now()
	record, err := s.dailyMessages.Get(ctx, recipient.ID, calendar.Day(now))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return CommandOutcome{Kind: OutcomeNoMessageYet, Reply: replyNoMessageYet(language)}, nil
		}
		return CommandOutcome{}, err
	}

	// Disclosure is scoped to the two oils actually recommended today; the
	// catalog is consulted for aliases and formatting only, never widened
	// into the match space.
	candidates := []textmatch.Candidate{
		{Name: record.PrimaryOil, Aliases: s.oilAliases(ctx, record.PrimaryOil)},
		{Name: record.AlternativeOil, Aliases: s.oilAliases(ctx, record.AlternativeOil)},
	}

	index, ok := textmatch.Best(query, candidates)
	if !ok {
		return CommandOutcome{
			Kind:  OutcomeUnknownOil,
			Reply: replyUnknownOil(language, query),
		}, nil
	}

	name := candidates[index].Name
	oil, err := s.oils.GetByName(ctx, name)
	if err != nil && err != gorm.ErrRecordNotFound {
		return CommandOutcome{}, err
	}
	if err == gorm.ErrRecordNotFound {
		log.Warn("recommended oil missing from catalog", "name", name)
		oil = nil
	}

	return CommandOutcome{
		Kind:  OutcomeOilInfo,
		Reply: formatOilInfo(name, oil, language),
	}, nil
}

func (s *CommandRouterService) oilAliases(ctx context.Context, name string) []string {
	oil, err := s.oils.GetByName(ctx, name)
	if err != nil {
		return nil
	}
	return decodeJSONList(oil.AlternativeNames)
}

func (s *CommandRouterService) logCommand(
	ctx context.Context,
	recipient *models.Recipient,
	rawText string,
	outcome OutcomeKind,
) {
	err := s.commandLog.Append(ctx, &models.CommandLogEntry{
		RecipientID: recipient.ID,
		At:          s.clock.Now(),
		RawText:     rawText,
		Outcome:     string(outcome),
	})
	if err != nil {
		s.log.Warn("failed to append command log entry",
			"recipientID", recipient.ID, "outcome", outcome, "error", err)
	}
}

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdReaction
	cmdRepeat
	cmdAlternative
	cmdInfo
	cmdHelp
)

type parsedCommand struct {
	kind      commandKind
	reaction  models.Reaction
	hour      int
	minute    int
	timeValid bool
	oilQuery  string
}

var (
	reactionEmojis = map[string]models.Reaction{
		"👍": models.ReactionUp,
		"✅": models.ReactionUp,
		"👎": models.ReactionDown,
		"❌": models.ReactionDown,
	}

	repeatKeywords      = []string{"repeat", "wiederhole"}
	alternativeKeywords = map[string]struct{}{
		"alternative": {}, "alternativ": {}, "alt": {},
	}
	helpKeywords = map[string]struct{}{
		"hilfe": {}, "help": {}, "?": {}, "/help": {}, "/hilfe": {},
	}

	timePattern = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// parseCommand classifies raw inbound text. Pure; all state checks happen in
// the handlers.
func parseCommand(text string) parsedCommand {
	text = strings.TrimSpace(text)

	if reaction, ok := reactionEmojis[text]; ok {
		return parsedCommand{kind: cmdReaction, reaction: reaction}
	}

	lower := strings.ToLower(text)

	for _, keyword := range repeatKeywords {
		if strings.HasPrefix(lower, keyword) {
			command := parsedCommand{kind: cmdRepeat}
			command.hour, command.minute, command.timeValid = parseTimeOfDay(lower)
			return command
		}
	}

	if _, ok := alternativeKeywords[lower]; ok {
		return parsedCommand{kind: cmdAlternative}
	}

	if strings.HasPrefix(lower, "info") {
		parts := strings.SplitN(text, " ", 2)
		query := ""
		if len(parts) == 2 {
			query = strings.TrimSpace(parts[1])
		}
		return parsedCommand{kind: cmdInfo, oilQuery: query}
	}

	if _, ok := helpKeywords[lower]; ok {
		return parsedCommand{kind: cmdHelp}
	}

	return parsedCommand{kind: cmdUnknown}
}

// parseTimeOfDay extracts an HH:MM time from lowered text, honoring a
// trailing am/pm marker.
func parseTimeOfDay(lower string) (int, int, bool) {
	match := timePattern.FindStringSubmatch(lower)
	if match == nil {
		return 0, 0, false
	}

	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])

	if strings.Contains(lower, "pm") && hour < 12 {
		hour += 12
	} else if strings.Contains(lower, "am") && hour == 12 {
		hour = 0
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}

func decodeJSONList(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}

func formatOilInfo(name string, oil *models.Oil, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌿 *%s*\n\n", name)

	if oil != nil {
		if language == "de" {
			appendSection(&b, "Energetische Wirkung", oil.EnergeticEffects)
			appendList(&b, "Hauptinhaltsstoffe", decodeJSONList(oil.MainComponents), 5)
			appendSection(&b, "Wissenswertes", oil.InterestingFacts)
			appendSection(&b, "⚠️ Hinweise", oil.Contraindications)
			appendList(&b, "Beste Anwendung", decodeJSONList(oil.BestUses), 0)
		} else {
			appendSection(&b, "Energetic Effects", oil.EnergeticEffects)
			appendList(&b, "Main Components", decodeJSONList(oil.MainComponents), 5)
			appendSection(&b, "Interesting Facts", oil.InterestingFacts)
			appendSection(&b, "⚠️ Safety Notes", oil.Contraindications)
			appendList(&b, "Best Uses", decodeJSONList(oil.BestUses), 0)
		}
	}

	b.WriteString("\n💜 Soul Aligned Oils")
	return b.String()
}

func appendSection(b *strings.Builder, title string, body string) {
	if body == "" {
		return
	}
	fmt.Fprintf(b, "*%s:*\n%s\n\n", title, body)
}

func appendList(b *strings.Builder, title string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	fmt.Fprintf(b, "*%s:*\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
