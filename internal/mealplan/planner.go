// Package mealplan keeps a per-week plan of recipe titles keyed by date.
//
// The plan is one JSON object (date -> ordered titles) read from and written to
// a single storage slot. Every mutation is a full read-modify-write of that slot.
package mealplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotInCurrentWeek is returned by AddMeal for dates outside Monday..Sunday of today
	ErrNotInCurrentWeek = errors.New("date is not in the current week")

	// ErrNotConfirmed is returned by ClearAll when the confirmation is declined
	ErrNotConfirmed = errors.New("clear not confirmed")
)

// Plans maps an ISO date to the recipe titles planned for it, in insertion order.
// A date is present only while it has at least one title.
type Plans map[string][]string

// Storage is a single persistent string slot.
// Get returns "" when nothing has been stored yet.
type Storage interface {
	Get() (string, error)
	Set(value string) error
}

// Confirmer asks the user a yes/no question before a destructive action
type Confirmer func() bool

// Planner reads and mutates the plan held in a Storage
type Planner struct {
	storage Storage
	now     func() time.Time
}

// Option configures a Planner
type Option func(*Planner)

// WithClock replaces time.Now as the source of "today"
func WithClock(now func() time.Time) Option {
	return func(p *Planner) {
		p.now = now
	}
}

// New creates a Planner over storage
func New(storage Storage, opts ...Option) *Planner {
	p := &Planner{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Now returns the planner's notion of the current time
func (p *Planner) Now() time.Time {
	return p.now()
}

// CurrentWeekDates returns the seven dates of the current week, Monday first.
// The week is recomputed on every call.
func (p *Planner) CurrentWeekDates() []string {
	return WeekDates(p.now())
}

// IsInCurrentWeek reports whether date lies within the current week
func (p *Planner) IsInCurrentWeek(date string) bool {
	return InWeek(p.now(), date)
}

// Load reads the stored plan. A missing or unreadable value yields an empty plan.
func (p *Planner) Load() (Plans, error) {
	raw, err := p.storage.Get()
	if err != nil {
		return nil, fmt.Errorf("read meal plans: %w", err)
	}
	return Decode(raw), nil
}

func (p *Planner) save(plans Plans) error {
	raw, err := Encode(plans)
	if err != nil {
		return err
	}
	if err := p.storage.Set(raw); err != nil {
		return fmt.Errorf("write meal plans: %w", err)
	}
	return nil
}

// AddMeal appends title to the list for date and persists the plan.
// Dates outside the current week are rejected without touching storage.
func (p *Planner) AddMeal(date, title string) error {
	if !p.IsInCurrentWeek(date) {
		return ErrNotInCurrentWeek
	}

	plans, err := p.Load()
	if err != nil {
		return err
	}
	plans[date] = append(plans[date], title)
	return p.save(plans)
}

// RemoveMeal deletes the entry at index for date. Unknown dates and
// out-of-range indexes are ignored. The date key goes away with its last entry.
func (p *Planner) RemoveMeal(date string, index int) error {
	plans, err := p.Load()
	if err != nil {
		return err
	}

	meals, ok := plans[date]
	if !ok || index < 0 || index >= len(meals) {
		return nil
	}

	meals = append(meals[:index:index], meals[index+1:]...)
	if len(meals) == 0 {
		delete(plans, date)
	} else {
		plans[date] = meals
	}
	return p.save(plans)
}

// ClearAll drops every planned meal once confirm agrees
func (p *Planner) ClearAll(confirm Confirmer) error {
	if confirm == nil || !confirm() {
		return ErrNotConfirmed
	}
	return p.save(Plans{})
}

// Encode serializes plans for storage
func Encode(plans Plans) (string, error) {
	if plans == nil {
		plans = Plans{}
	}
	data, err := json.Marshal(plans)
	if err != nil {
		return "", fmt.Errorf("encode meal plans: %w", err)
	}
	return string(data), nil
}

// Decode parses stored plans, defaulting to an empty plan
func Decode(raw string) Plans {
	plans := Plans{}
	if raw == "" {
		return plans
	}
	if err := json.Unmarshal([]byte(raw), &plans); err != nil || plans == nil {
		return Plans{}
	}
	return plans
}
