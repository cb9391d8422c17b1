package mealplan

import (
	"time"
)

// DateLayout is the storage key format for planned days
const DateLayout = "2006-01-02"

// DayNames lists the planner columns, Monday first
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// weekStart returns Monday 00:00 of the week containing now.
// Sunday counts as day 7, not day 0.
func weekStart(now time.Time) time.Time {
	offset := (int(now.Weekday()) + 6) % 7
	monday := now.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, now.Location())
}

// weekBounds returns the inclusive range [Monday 00:00:00, Sunday 23:59:59.999]
func weekBounds(now time.Time) (time.Time, time.Time) {
	monday := weekStart(now)
	sunday := monday.AddDate(0, 0, 6)
	end := time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, int(999*time.Millisecond), now.Location())
	return monday, end
}

// WeekDates returns the seven dates Monday..Sunday of the week containing now
func WeekDates(now time.Time) []string {
	monday := weekStart(now)
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i).Format(DateLayout)
	}
	return dates
}

// InWeek reports whether date (YYYY-MM-DD) falls in the week containing now.
// Malformed dates are never in the week.
func InWeek(now time.Time, date string) bool {
	d, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return false
	}
	start, end := weekBounds(now)
	return !d.Before(start) && !d.After(end)
}
