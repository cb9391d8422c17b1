package mealplan

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestPlanner(now time.Time) (*Planner, *MemoryStorage) {
	storage := &MemoryStorage{}
	return New(storage, WithClock(fixedClock(now))), storage
}

// thursday is 2024-06-13, inside the week 2024-06-10..2024-06-16
var thursday = time.Date(2024, 6, 13, 15, 4, 5, 0, time.UTC)

func TestCurrentWeekDates(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{
			name: "Thursday mid-week",
			now:  thursday,
			want: []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14", "2024-06-15", "2024-06-16"},
		},
		{
			name: "Sunday belongs to the preceding Monday",
			now:  time.Date(2024, 6, 16, 23, 59, 0, 0, time.UTC),
			want: []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14", "2024-06-15", "2024-06-16"},
		},
		{
			name: "Monday starts the week",
			now:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			want: []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14", "2024-06-15", "2024-06-16"},
		},
		{
			name: "Leap month boundary",
			now:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
			want: []string{"2024-02-26", "2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02", "2024-03-03"},
		},
		{
			name: "Year boundary",
			now:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
			want: []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05"},
		},
		{
			name: "Late evening in a zone ahead of UTC uses the local date",
			now:  time.Date(2024, 6, 16, 23, 30, 0, 0, time.FixedZone("CEST", 2*60*60)),
			want: []string{"2024-06-10", "2024-06-11", "2024-06-12", "2024-06-13", "2024-06-14", "2024-06-15", "2024-06-16"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPlanner(tt.now)
			got := p.CurrentWeekDates()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CurrentWeekDates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCurrentWeekDatesProperties(t *testing.T) {
	start := time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		now := start.AddDate(0, 0, i)
		p, _ := newTestPlanner(now)
		dates := p.CurrentWeekDates()

		if len(dates) != 7 {
			t.Fatalf("%s: expected 7 dates, got %d", now.Format(DateLayout), len(dates))
		}

		parsed := make([]time.Time, len(dates))
		for j, d := range dates {
			v, err := time.Parse(DateLayout, d)
			if err != nil {
				t.Fatalf("%s: invalid date %q: %v", now.Format(DateLayout), d, err)
			}
			parsed[j] = v
		}

		if parsed[0].Weekday() != time.Monday {
			t.Errorf("%s: first date %s is a %s", now.Format(DateLayout), dates[0], parsed[0].Weekday())
		}
		if parsed[6].Weekday() != time.Sunday {
			t.Errorf("%s: last date %s is a %s", now.Format(DateLayout), dates[6], parsed[6].Weekday())
		}
		for j := 1; j < 7; j++ {
			if !parsed[j].Equal(parsed[j-1].AddDate(0, 0, 1)) {
				t.Errorf("%s: dates not consecutive: %v", now.Format(DateLayout), dates)
				break
			}
		}

		today := now.Format(DateLayout)
		found := false
		for _, d := range dates {
			if d == today {
				found = true
			}
			if !p.IsInCurrentWeek(d) {
				t.Errorf("%s: IsInCurrentWeek(%s) = false", today, d)
			}
		}
		if !found {
			t.Errorf("%s: today not among %v", today, dates)
		}

		before := parsed[0].AddDate(0, 0, -1).Format(DateLayout)
		after := parsed[6].AddDate(0, 0, 1).Format(DateLayout)
		if p.IsInCurrentWeek(before) {
			t.Errorf("%s: day before the week (%s) reported in week", today, before)
		}
		if p.IsInCurrentWeek(after) {
			t.Errorf("%s: day after the week (%s) reported in week", today, after)
		}
	}
}

func TestIsInCurrentWeek(t *testing.T) {
	p, _ := newTestPlanner(thursday)

	tests := []struct {
		date string
		want bool
	}{
		{"2024-06-10", true},
		{"2024-06-16", true},
		{"2024-06-09", false},
		{"2024-06-17", false},
		{"2023-06-13", false},
		{"not-a-date", false},
		{"", false},
		{"2024-13-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			if got := p.IsInCurrentWeek(tt.date); got != tt.want {
				t.Errorf("IsInCurrentWeek(%q) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestAddMealAppendsInOrder(t *testing.T) {
	p, _ := newTestPlanner(thursday)

	for _, title := range []string{"A", "B", "C"} {
		if err := p.AddMeal("2024-06-12", title); err != nil {
			t.Fatalf("AddMeal(%q) failed: %v", title, err)
		}
	}

	plans, err := p.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(plans["2024-06-12"], want) {
		t.Errorf("expected %v, got %v", want, plans["2024-06-12"])
	}
}

func TestAddMealRejectsOutsideWeek(t *testing.T) {
	p, storage := newTestPlanner(thursday)
	if err := p.AddMeal("2024-06-12", "Soup"); err != nil {
		t.Fatalf("AddMeal() failed: %v", err)
	}
	before, _ := storage.Get()

	err := p.AddMeal("2024-06-17", "Pasta")
	if !errors.Is(err, ErrNotInCurrentWeek) {
		t.Fatalf("expected ErrNotInCurrentWeek, got %v", err)
	}

	after, _ := storage.Get()
	if before != after {
		t.Errorf("storage changed on rejected add: %q -> %q", before, after)
	}
}

func TestAddThenRemoveRestoresState(t *testing.T) {
	p, _ := newTestPlanner(thursday)

	if err := p.AddMeal("2024-06-11", "Tacos"); err != nil {
		t.Fatalf("AddMeal() failed: %v", err)
	}
	if err := p.AddMeal("2024-06-11", "Salad"); err != nil {
		t.Fatalf("AddMeal() failed: %v", err)
	}
	prior, _ := p.Load()

	if err := p.AddMeal("2024-06-11", "Curry"); err != nil {
		t.Fatalf("AddMeal() failed: %v", err)
	}
	if err := p.RemoveMeal("2024-06-11", 2); err != nil {
		t.Fatalf("RemoveMeal() failed: %v", err)
	}

	got, _ := p.Load()
	if !reflect.DeepEqual(got, prior) {
		t.Errorf("expected %v after add+remove, got %v", prior, got)
	}
}

func TestRemoveLastMealDeletesKey(t *testing.T) {
	p, _ := newTestPlanner(thursday)

	if err := p.AddMeal("2024-06-14", "Pizza"); err != nil {
		t.Fatalf("AddMeal() failed: %v", err)
	}
	if err := p.RemoveMeal("2024-06-14", 0); err != nil {
		t.Fatalf("RemoveMeal() failed: %v", err)
	}

	plans, _ := p.Load()
	if _, ok := plans["2024-06-14"]; ok {
		t.Errorf("expected date key to be removed, got %v", plans)
	}
}

func TestRemoveMealMiddleKeepsOrder(t *testing.T) {
	p, _ := newTestPlanner(thursday)
	for _, title := range []string{"A", "B", "C"} {
		if err := p.AddMeal("2024-06-13", title); err != nil {
			t.Fatalf("AddMeal() failed: %v", err)
		}
	}

	if err := p.RemoveMeal("2024-06-13", 1); err != nil {
		t.Fatalf("RemoveMeal() failed: %v", err)
	}

	plans, _ := p.Load()
	if want := []string{"A", "C"}; !reflect.DeepEqual(plans["2024-06-13"], want) {
		t.Errorf("expected %v, got %v", want, plans["2024-06-13"])
	}
}

func TestRemoveMealOutOfRangeIsNoop(t *testing.T) {
	p, storage := newTestPlanner(thursday)
	if err := p.AddMeal("2024-06-13", "A"); err != nil {
		t.Fatalf("AddMeal() failed: %v", err)
	}
	before, _ := storage.Get()

	cases := []struct {
		date  string
		index int
	}{
		{"2024-06-13", 1},
		{"2024-06-13", -1},
		{"2024-06-12", 0},
	}
	for _, c := range cases {
		if err := p.RemoveMeal(c.date, c.index); err != nil {
			t.Errorf("RemoveMeal(%s, %d) returned error: %v", c.date, c.index, err)
		}
	}

	after, _ := storage.Get()
	if before != after {
		t.Errorf("storage changed: %q -> %q", before, after)
	}
}

func TestClearAll(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		p, _ := newTestPlanner(thursday)
		_ = p.AddMeal("2024-06-10", "A")
		_ = p.AddMeal("2024-06-16", "B")

		if err := p.ClearAll(func() bool { return true }); err != nil {
			t.Fatalf("ClearAll() failed: %v", err)
		}

		plans, _ := p.Load()
		if len(plans) != 0 {
			t.Errorf("expected empty plans, got %v", plans)
		}
	})

	t.Run("declined", func(t *testing.T) {
		p, storage := newTestPlanner(thursday)
		_ = p.AddMeal("2024-06-10", "A")
		before, _ := storage.Get()

		err := p.ClearAll(func() bool { return false })
		if !errors.Is(err, ErrNotConfirmed) {
			t.Fatalf("expected ErrNotConfirmed, got %v", err)
		}

		after, _ := storage.Get()
		if before != after {
			t.Errorf("storage changed without confirmation: %q -> %q", before, after)
		}
	})

	t.Run("nil confirmer", func(t *testing.T) {
		p, _ := newTestPlanner(thursday)
		if err := p.ClearAll(nil); !errors.Is(err, ErrNotConfirmed) {
			t.Errorf("expected ErrNotConfirmed, got %v", err)
		}
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p, _ := newTestPlanner(thursday)
	_ = p.AddMeal("2024-06-10", "Pancakes")
	_ = p.AddMeal("2024-06-10", "Soup")
	_ = p.AddMeal("2024-06-15", "Ramen")
	_ = p.RemoveMeal("2024-06-10", 0)

	plans, _ := p.Load()
	raw, err := Encode(plans)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	if got := Decode(raw); !reflect.DeepEqual(got, plans) {
		t.Errorf("round trip mismatch: %v vs %v", got, plans)
	}
}

func TestDecodeDefaults(t *testing.T) {
	for _, raw := range []string{"", "null", "{broken", "[]"} {
		got := Decode(raw)
		if got == nil || len(got) != 0 {
			t.Errorf("Decode(%q) = %v, want empty plans", raw, got)
		}
	}
}
