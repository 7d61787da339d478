package planner

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default search parameters.
const (
	DefaultSearchDays      = 60
	DefaultMinWindow       = 2
	DefaultMaxWindow       = 7
	DefaultTopN            = 3
	DefaultGlobalThreshold = 75.0
	DefaultWorkers         = 4
)

// Params bounds a recommendation search. Start must be set by the caller;
// the engine has no notion of "today".
type Params struct {
	Start      time.Time
	SearchDays int
	MinLen     int
	MaxLen     int
	TopN       int
}

// DefaultParams returns the standard 60-day, 2..7 day, top-3 search from start.
func DefaultParams(start time.Time) Params {
	return Params{
		Start:      start,
		SearchDays: DefaultSearchDays,
		MinLen:     DefaultMinWindow,
		MaxLen:     DefaultMaxWindow,
		TopN:       DefaultTopN,
	}
}

// Validate checks the search bounds.
func (p Params) Validate() error {
	if p.Start.IsZero() {
		return invalidParams("start date is required")
	}
	if err := validateWindowBounds(p.SearchDays, p.MinLen, p.MaxLen); err != nil {
		return err
	}
	if p.TopN < 1 {
		return invalidParams("top_n must be at least 1")
	}
	return nil
}

// Option customises an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of windows simulated concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger attaches a logger for run statistics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine recommends safe leave windows over an immutable attendance snapshot.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	subjects        []Subject
	schedule        WeeklySchedule
	overrides       CalendarOverrides
	globalThreshold float64
	sim             *simulator
	workers         int
	logger          *zap.Logger
}

// NewEngine validates and copies the snapshot.
func NewEngine(subjects []Subject, schedule WeeklySchedule, overrides CalendarOverrides, globalThreshold float64, opts ...Option) (*Engine, error) {
	if globalThreshold <= 0 || globalThreshold > 100 {
		return nil, invalidParams("global threshold must be within (0, 100]")
	}
	if err := ValidateSubjects(subjects); err != nil {
		return nil, err
	}
	for day := range schedule {
		if !isWeekdayName(day) {
			return nil, invalidParams(fmt.Sprintf("weekly schedule key %q is not a weekday name (Monday..Sunday)", day))
		}
	}
	for key, dt := range overrides {
		// Classify looks overrides up by DateKey, so keys must already be canonical.
		if parsed, err := ParseDate(key); err != nil || DateKey(parsed) != key {
			return nil, invalidParams(fmt.Sprintf("calendar override %q is not an ISO date", key))
		}
		if !dt.Valid() {
			return nil, invalidParams(fmt.Sprintf("calendar override %s has unknown day type %q", key, dt))
		}
	}

	e := &Engine{
		subjects:        append([]Subject(nil), subjects...),
		schedule:        copySchedule(schedule),
		overrides:       copyOverrides(overrides),
		globalThreshold: globalThreshold,
		workers:         DefaultWorkers,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sim = newSimulator(e.subjects, e.schedule, e.globalThreshold)
	return e, nil
}

// Subjects returns the snapshot subjects in input order.
func (e *Engine) Subjects() []Subject {
	return append([]Subject(nil), e.subjects...)
}

// GlobalThreshold returns the default minimum attendance percentage.
func (e *Engine) GlobalThreshold() float64 {
	return e.globalThreshold
}

// Classify classifies date against the engine's calendar overrides.
func (e *Engine) Classify(date time.Time) DayType {
	return Classify(date, e.overrides)
}

// FindSafeVacations runs generate, simulate, filter, rank and truncate.
// An empty result means no safe window exists and is not an error.
func (e *Engine) FindSafeVacations(p Params) ([]Window, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	candidates, err := GenerateWindows(p.Start, p.SearchDays, p.MinLen, p.MaxLen, e.overrides)
	if err != nil {
		return nil, err
	}

	simulated := e.simulateAll(candidates)

	safe := make([]Window, 0, len(simulated))
	for _, w := range simulated {
		if w.Safe {
			safe = append(safe, w)
		}
	}

	ranked := Rank(safe)
	if len(ranked) > p.TopN {
		ranked = ranked[:p.TopN]
	}

	e.logger.Debug("planner run finished",
		zap.String("start", DateKey(p.Start)),
		zap.Int("candidates", len(candidates)),
		zap.Int("safe", len(safe)),
		zap.Int("returned", len(ranked)),
	)
	return ranked, nil
}

// simulateAll simulates windows in parallel. Results land at their input
// index so the generator order survives into Rank.
func (e *Engine) simulateAll(windows []Window) []Window {
	out := make([]Window, len(windows))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range windows {
		i := i
		g.Go(func() error {
			out[i] = e.sim.simulate(windows[i])
			return nil
		})
	}
	_ = g.Wait() // simulate cannot fail; the group only bounds concurrency
	return out
}

func isWeekdayName(day string) bool {
	for _, name := range WeekdayNames {
		if day == name {
			return true
		}
	}
	return false
}

func copySchedule(in WeeklySchedule) WeeklySchedule {
	out := make(WeeklySchedule, len(in))
	for day, ids := range in {
		out[day] = append([]string(nil), ids...)
	}
	return out
}

func copyOverrides(in CalendarOverrides) CalendarOverrides {
	out := make(CalendarOverrides, len(in))
	for key, dt := range in {
		out[key] = dt
	}
	return out
}
