package model

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Weekday is a day-of-week value as stored in the timetable tables ("Monday").
type Weekday string

// DefaultWeekdays is used when the deployment does not configure its own set.
var DefaultWeekdays = []Weekday{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Calendar is the closed set of weekdays a deployment teaches on.
type Calendar struct {
	days  []Weekday
	index map[Weekday]int
}

// NewCalendar builds a calendar from configured names, keeping their order.
func NewCalendar(names []string) (*Calendar, error) {
	c := &Calendar{index: make(map[Weekday]int)}
	for _, name := range names {
		day := normalizeDay(name)
		if day == "" {
			continue
		}
		if _, dup := c.index[day]; dup {
			return nil, fmt.Errorf("duplicate weekday %q", name)
		}
		c.index[day] = len(c.days)
		c.days = append(c.days, day)
	}
	if len(c.days) == 0 {
		return nil, fmt.Errorf("calendar has no weekdays")
	}
	return c, nil
}

// Days returns the configured weekdays in order.
func (c *Calendar) Days() []Weekday {
	out := make([]Weekday, len(c.days))
	copy(out, c.days)
	return out
}

// Normalize maps user input like "monday" or " MONDAY " onto a configured weekday.
func (c *Calendar) Normalize(raw string) (Weekday, error) {
	day := normalizeDay(raw)
	if _, ok := c.index[day]; !ok {
		return "", fmt.Errorf("unknown weekday %q", raw)
	}
	return day, nil
}

// Contains reports whether day is part of the calendar.
func (c *Calendar) Contains(day Weekday) bool {
	_, ok := c.index[day]
	return ok
}

func normalizeDay(raw string) Weekday {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return Weekday(cases.Title(language.English).String(strings.ToLower(raw)))
}
