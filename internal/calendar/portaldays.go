package calendar

import "time"

// knownPortalDays are the fixed portal dates for 2024 through 2026, drawn from
// the Maya calendar. They seed the portal_days table; administrative
// re-population unions further dates on top.
var knownPortalDays = []string{
	// 2024
	"2024-01-01", "2024-01-11", "2024-01-22",
	"2024-02-02", "2024-02-12", "2024-02-23",
	"2024-03-04", "2024-03-15", "2024-03-26",
	"2024-04-05", "2024-04-16", "2024-04-27",
	"2024-05-08", "2024-05-19", "2024-05-30",
	"2024-06-10", "2024-06-21", "2024-07-02",
	"2024-07-13", "2024-07-24", "2024-08-04",
	"2024-08-15", "2024-08-26", "2024-09-06",
	"2024-09-17", "2024-09-28", "2024-10-09",
	"2024-10-20", "2024-10-31", "2024-11-11",
	"2024-11-22", "2024-12-03", "2024-12-14",
	"2024-12-25",

	// 2025
	"2025-01-05", "2025-01-16", "2025-01-27",
	"2025-02-07", "2025-02-18", "2025-03-01",
	"2025-03-12", "2025-03-23", "2025-04-03",
	"2025-04-14", "2025-04-25", "2025-05-06",
	"2025-05-17", "2025-05-28", "2025-06-08",
	"2025-06-19", "2025-06-30", "2025-07-11",
	"2025-07-22", "2025-08-02", "2025-08-13",
	"2025-08-24", "2025-09-04", "2025-09-15",
	"2025-09-26", "2025-10-07", "2025-10-18",
	"2025-10-29", "2025-11-09", "2025-11-20",
	"2025-12-01", "2025-12-12", "2025-12-23",

	// 2026
	"2026-01-03", "2026-01-14", "2026-01-25",
	"2026-02-05", "2026-02-16", "2026-02-27",
	"2026-03-10", "2026-03-21", "2026-04-01",
	"2026-04-12", "2026-04-23", "2026-05-04",
	"2026-05-15", "2026-05-26", "2026-06-06",
	"2026-06-17", "2026-06-28", "2026-07-09",
	"2026-07-20", "2026-07-31", "2026-08-11",
	"2026-08-22", "2026-09-02", "2026-09-13",
	"2026-09-24", "2026-10-05", "2026-10-16",
	"2026-10-27", "2026-11-07", "2026-11-18",
	"2026-11-29", "2026-12-10", "2026-12-21",
}

// KnownPortalDays returns the fixed portal dates as UTC midnights.
func KnownPortalDays() []time.Time {
	dates := make([]time.Time, 0, len(knownPortalDays))
	for _, day := range knownPortalDays {
		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			// The list is static; a bad entry is a programming error.
			panic("calendar: invalid portal day " + day)
		}
		dates = append(dates, date)
	}
	return dates
}
