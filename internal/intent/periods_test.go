package intent

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakePayday is a canned PaydayLookup for resolver tests
type fakePayday struct {
	date  time.Time
	found bool
	err   error
	calls int
}

func (f *fakePayday) LastPaydayBefore(ctx context.Context, userID string, before time.Time) (time.Time, bool, error) {
	f.calls++
	return f.date, f.found, f.err
}

func resolverAt(now time.Time, payday PaydayLookup) *PeriodResolver {
	r := NewPeriodResolver(payday)
	r.now = func() time.Time { return now }
	return r
}

func TestResolveNamedPeriods(t *testing.T) {
	// Wednesday, June 18 2025
	now := time.Date(2025, 6, 18, 15, 30, 0, 0, time.UTC)
	r := resolverAt(now, nil)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"today", day(2025, 6, 18), endOfDay(day(2025, 6, 18))},
		{"yesterday", day(2025, 6, 17), endOfDay(day(2025, 6, 17))},
		{"this_week", day(2025, 6, 15), endOfDay(day(2025, 6, 21))},
		{"last_week", day(2025, 6, 8), endOfDay(day(2025, 6, 14))},
		{"current_month", day(2025, 6, 1), endOfDay(day(2025, 6, 30))},
		{"last_month", day(2025, 5, 1), endOfDay(day(2025, 5, 31))},
		{"current_quarter", day(2025, 4, 1), endOfDay(day(2025, 6, 30))},
		{"last_quarter", day(2025, 1, 1), endOfDay(day(2025, 3, 31))},
		{"current_year", day(2025, 1, 1), endOfDay(day(2025, 12, 31))},
		{"fiscal_year", day(2025, 1, 1), endOfDay(day(2025, 12, 31))},
		{"last_year", day(2024, 1, 1), endOfDay(day(2024, 12, 31))},
		{"last_30_days", day(2025, 5, 20), endOfDay(day(2025, 6, 18))},
		{"last_1_days", day(2025, 6, 18), endOfDay(day(2025, 6, 18))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			period, err := r.Resolve(context.Background(), tt.name, "", "user-1")
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.name, err)
			}
			if !period.Start.Equal(tt.start) {
				t.Errorf("start = %v, want %v", period.Start, tt.start)
			}
			if !period.End.Equal(tt.end) {
				t.Errorf("end = %v, want %v", period.End, tt.end)
			}
			if period.End.Before(period.Start) {
				t.Error("period end precedes start")
			}
		})
	}
}

func TestResolveRejectsUnknownPeriod(t *testing.T) {
	r := resolverAt(time.Now(), nil)

	for _, name := range []string{"next_week", "last_0_days", "last_366_days", "last__days", ""} {
		_, err := r.Resolve(context.Background(), name, "", "user-1")
		if err == nil {
			t.Errorf("Resolve(%q) succeeded, want validation error", name)
			continue
		}
		var engineErr *Error
		if !errors.As(err, &engineErr) || engineErr.Code != ErrCodeValidation {
			t.Errorf("Resolve(%q) error = %v, want %s", name, err, ErrCodeValidation)
		}
	}
}

func TestResolveRejectsUnknownTimezone(t *testing.T) {
	r := resolverAt(time.Now(), nil)
	if _, err := r.Resolve(context.Background(), "today", "Mars/Olympus", "user-1"); err == nil {
		t.Error("expected validation error for unknown timezone")
	}
}

func TestResolveHonorsTimezone(t *testing.T) {
	// 02:00 UTC on June 18 is still June 17 in São Paulo (UTC-3)
	now := time.Date(2025, 6, 18, 2, 0, 0, 0, time.UTC)
	r := resolverAt(now, nil)

	period, err := r.Resolve(context.Background(), "today", "America/Sao_Paulo", "user-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if period.Start.Day() != 17 {
		t.Errorf("expected local day 17, got %d", period.Start.Day())
	}
}

func TestSinceLastPaydayUsesLookup(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	payday := &fakePayday{date: time.Date(2025, 6, 5, 9, 0, 0, 0, time.UTC), found: true}
	r := resolverAt(now, payday)

	period, err := r.Resolve(context.Background(), "since_last_payday", "", "user-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	if !period.Start.Equal(want) {
		t.Errorf("start = %v, want payday midnight %v", period.Start, want)
	}

	// Second resolution is served from cache
	if _, err := r.Resolve(context.Background(), "since_last_payday", "", "user-1"); err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if payday.calls != 1 {
		t.Errorf("expected 1 lookup call, got %d", payday.calls)
	}
}

func TestSinceLastPaydayFallsBackToMonthStart(t *testing.T) {
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	monthStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	// No salary-like record found
	r := resolverAt(now, &fakePayday{found: false})
	period, err := r.Resolve(context.Background(), "since_last_payday", "", "user-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !period.Start.Equal(monthStart) {
		t.Errorf("start = %v, want month start %v", period.Start, monthStart)
	}

	// No lookup wired at all
	r = resolverAt(now, nil)
	period, err = r.Resolve(context.Background(), "since_last_payday", "", "user-1")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !period.Start.Equal(monthStart) {
		t.Errorf("start without lookup = %v, want month start %v", period.Start, monthStart)
	}
}

func TestSinceLastPaydayPropagatesLookupError(t *testing.T) {
	r := resolverAt(time.Now(), &fakePayday{err: errors.New("connection refused")})
	if _, err := r.Resolve(context.Background(), "since_last_payday", "", "user-1"); err == nil {
		t.Error("expected lookup error to propagate")
	}
}
