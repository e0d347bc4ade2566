package intent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Period is a resolved symbolic period: an inclusive [Start, End] range
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PaydayLookup finds the most recent income record that looks like a salary
// payment for a user. It is the only store dependency of the period
// resolver; everything else is pure computation.
type PaydayLookup interface {
	LastPaydayBefore(ctx context.Context, userID string, before time.Time) (time.Time, bool, error)
}

// PeriodResolver maps symbolic period names to concrete date ranges,
// computed against "now" in the caller's timezone.
type PeriodResolver struct {
	payday PaydayLookup
	cache  *gocache.Cache
	now    func() time.Time
}

const (
	paydayCacheTTL = 5 * time.Minute

	periodSinceLastPayday = "since_last_payday"
)

var lastNDaysPattern = regexp.MustCompile(`^last_(\d+)_days$`)

// NewPeriodResolver creates a resolver. payday may be nil, in which case
// since_last_payday always uses its first-of-month fallback.
func NewPeriodResolver(payday PaydayLookup) *PeriodResolver {
	return &PeriodResolver{
		payday: payday,
		cache:  gocache.New(paydayCacheTTL, 10*time.Minute),
		now:    time.Now,
	}
}

// Resolve maps a symbolic period name to an inclusive date range. timezone
// is an IANA name and defaults to UTC; userID is only consulted for the
// identity-dependent since_last_payday period.
func (r *PeriodResolver) Resolve(ctx context.Context, name, timezone, userID string) (Period, error) {
	loc := time.UTC
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			return Period{}, NewValidationError(fmt.Sprintf("unknown timezone %q", timezone), nil)
		}
		loc = parsed
	}

	now := r.now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch name {
	case "today":
		return Period{today, endOfDay(today)}, nil

	case "yesterday":
		y := today.AddDate(0, 0, -1)
		return Period{y, endOfDay(y)}, nil

	case "this_week":
		start := startOfWeek(today)
		return Period{start, endOfDay(start.AddDate(0, 0, 6))}, nil

	case "last_week":
		start := startOfWeek(today).AddDate(0, 0, -7)
		return Period{start, endOfDay(start.AddDate(0, 0, 6))}, nil

	case "current_month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return Period{start, endOfDay(start.AddDate(0, 1, -1))}, nil

	case "last_month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return Period{start, endOfDay(start.AddDate(0, 1, -1))}, nil

	case "current_quarter":
		start := startOfQuarter(now, loc)
		return Period{start, endOfDay(start.AddDate(0, 3, -1))}, nil

	case "last_quarter":
		start := startOfQuarter(now, loc).AddDate(0, -3, 0)
		return Period{start, endOfDay(start.AddDate(0, 3, -1))}, nil

	case "current_year", "fiscal_year":
		// The fiscal year tracks the calendar year
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return Period{start, endOfDay(time.Date(now.Year(), 12, 31, 0, 0, 0, 0, loc))}, nil

	case "last_year":
		start := time.Date(now.Year()-1, 1, 1, 0, 0, 0, 0, loc)
		return Period{start, endOfDay(time.Date(now.Year()-1, 12, 31, 0, 0, 0, 0, loc))}, nil

	case periodSinceLastPayday:
		return r.resolveSinceLastPayday(ctx, userID, now, loc)
	}

	if m := lastNDaysPattern.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 365 {
			return Period{}, NewValidationError(
				fmt.Sprintf("invalid period %q: last_N_days requires N between 1 and 365", name), nil)
		}
		start := today.AddDate(0, 0, -(n - 1))
		return Period{start, endOfDay(today)}, nil
	}

	return Period{}, NewValidationError(
		fmt.Sprintf("unknown period %q, supported periods: %s", name, strings.Join(supportedPeriodNames(), ", ")), nil)
}

// resolveSinceLastPayday looks up the most recent salary-like income record
// and uses its date as the range start. Without one (or without a lookup)
// the range starts at the first day of the current month. Lookups are cached
// per user since payday moves at most monthly.
func (r *PeriodResolver) resolveSinceLastPayday(ctx context.Context, userID string, now time.Time, loc *time.Location) (Period, error) {
	fallback := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	end := endOfDay(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc))

	if r.payday == nil || userID == "" {
		return Period{fallback, end}, nil
	}

	cacheKey := "payday:" + userID
	if cached, found := r.cache.Get(cacheKey); found {
		return Period{cached.(time.Time), end}, nil
	}

	paydate, found, err := r.payday.LastPaydayBefore(ctx, userID, now)
	if err != nil {
		return Period{}, err
	}

	start := fallback
	if found {
		d := paydate.In(loc)
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	r.cache.Set(cacheKey, start, gocache.DefaultExpiration)

	return Period{start, end}, nil
}

// supportedPeriodNames returns the stable period vocabulary for error
// messages, sorted for deterministic output.
func supportedPeriodNames() []string {
	names := []string{
		"today", "yesterday", "this_week", "last_week",
		"current_month", "last_month", "current_quarter", "last_quarter",
		"current_year", "last_year", "fiscal_year",
		"last_7_days", "last_15_days", "last_30_days", "last_60_days", "last_90_days",
		"last_{N}_days", periodSinceLastPayday,
	}
	sort.Strings(names)
	return names
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// startOfWeek returns the Sunday starting the week containing t
func startOfWeek(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(t.Weekday()))
}

func startOfQuarter(now time.Time, loc *time.Location) time.Time {
	quarterMonth := time.Month(((int(now.Month())-1)/3)*3 + 1)
	return time.Date(now.Year(), quarterMonth, 1, 0, 0, 0, 0, loc)
}
