// Package calendar resolves the calendar context for a date: weekday, month,
// moon phase, and portal-day membership, plus the day-type priority used to
// pick message content. Classification is a pure function of the date and an
// injected portal-day set; it never fails and never consults prior state.
package calendar

import (
	"math"
	"time"
)

type MoonPhase string

const (
	PhaseNew    MoonPhase = "new"
	PhaseWaxing MoonPhase = "waxing"
	PhaseFull   MoonPhase = "full"
	PhaseWaning MoonPhase = "waning"
	PhaseNone   MoonPhase = "none"
)

type DayType string

const (
	DayTypePortal   DayType = "portal"
	DayTypeFullMoon DayType = "full_moon"
	DayTypeNewMoon  DayType = "new_moon"
	DayTypeRegular  DayType = "regular"
)

// DayContext is derived, never persisted.
type DayContext struct {
	Date        time.Time
	Weekday     time.Weekday
	Month       time.Month
	MoonPhase   MoonPhase
	IsPortalDay bool
}

// PortalSet answers portal-day membership for a date. Implementations must be
// safe for concurrent reads.
type PortalSet interface {
	Contains(date time.Time) bool
}

const (
	// Synodic month length in days.
	synodicPeriod = 29.53

	// Half-width of the window around each exact phase point. Dates outside
	// every window carry no phase designation.
	phaseWindow = 0.03
)

// referenceNewMoon is a known exact new moon used as the cycle epoch.
var referenceNewMoon = time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC)

// Day truncates a timestamp to its calendar day at midnight UTC, the
// canonical form stored in date columns and compared for set membership.
func Day(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey normalizes a date to its ISO calendar-day form.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}

// Phase returns the binned moon phase for a date. Only PhaseNew and PhaseFull
// participate in day-type priority; waxing and waning quarters are reported
// for context and everything between windows is PhaseNone.
func Phase(date time.Time) MoonPhase {
	days := Day(date).Sub(referenceNewMoon).Hours() / 24

	fraction := math.Mod(days, synodicPeriod) / synodicPeriod
	if fraction < 0 {
		fraction += 1
	}

	switch {
	case fraction < phaseWindow || fraction > 1-phaseWindow:
		return PhaseNew
	case fraction >= 0.25-phaseWindow && fraction <= 0.25+phaseWindow:
		return PhaseWaxing
	case fraction >= 0.5-phaseWindow && fraction <= 0.5+phaseWindow:
		return PhaseFull
	case fraction >= 0.75-phaseWindow && fraction <= 0.75+phaseWindow:
		return PhaseWaning
	default:
		return PhaseNone
	}
}

// Classify resolves the full context and day type for a date. Priority is
// strict: portal beats full moon beats new moon beats regular. Full and new
// windows cannot overlap given the binning, but full moon wins if they did.
func Classify(date time.Time, portals PortalSet) (DayContext, DayType) {
	context := DayContext{
		Date:        date,
		Weekday:     date.Weekday(),
		Month:       date.Month(),
		MoonPhase:   Phase(date),
		IsPortalDay: portals != nil && portals.Contains(date),
	}

	dayType := DayTypeRegular
	switch {
	case context.IsPortalDay:
		dayType = DayTypePortal
	case context.MoonPhase == PhaseFull:
		dayType = DayTypeFullMoon
	case context.MoonPhase == PhaseNew:
		dayType = DayTypeNewMoon
	}

	return context, dayType
}

// DateSet is an in-memory PortalSet. Add only ever grows the set, so
// re-population is a union and never drops a committed day.
type DateSet struct {
	days map[string]struct{}
}

func NewDateSet(dates ...time.Time) *DateSet {
	set := &DateSet{days: make(map[string]struct{}, len(dates))}
	set.Add(dates...)
	return set
}

func (s *DateSet) Add(dates ...time.Time) {
	for _, date := range dates {
		s.days[DateKey(date)] = struct{}{}
	}
}

func (s *DateSet) Contains(date time.Time) bool {
	_, ok := s.days[DateKey(date)]
	return ok
}

func (s *DateSet) Len() int {
	return len(s.days)
}
