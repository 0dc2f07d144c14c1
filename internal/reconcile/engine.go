// Package reconcile diffs one fetched batch of hearing records against the
// persisted tracked-event state and produces the run's classified
// changelog.
//
// One run is single-threaded batch logic: load state, classify every
// record, run the reschedule matcher once, sweep expired deferrals once,
// hand back the mutated state and the changelog. The engine never touches
// disk; loading and saving the store belongs to the caller, which must
// not persist anything if Reconcile returns an error.
package reconcile

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/civicsignal/hearingwatch/internal/matching"
	"github.com/civicsignal/hearingwatch/internal/types"
)

// Config holds engine configuration. The matcher settings double as the
// sweeper's grace window: a deferral stops being matchable and gets
// retired at the same age.
type Config struct {
	Matching matching.Config
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{Matching: matching.DefaultConfig()}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := c.Matching.Validate(); err != nil {
		return fmt.Errorf("matching: %w", err)
	}
	return nil
}

// Engine orchestrates classification, reschedule matching, and the
// grace-period sweep for one batch.
type Engine struct {
	config  Config
	matcher matching.Matcher
	now     func() time.Time
	logger  *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's time source. Tests use this to pin
// "now" for reproducible fixtures.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMatcher overrides the reschedule matcher implementation.
func WithMatcher(m matching.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// New creates a reconciliation engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		config:  cfg,
		matcher: matching.NewGreedyMatcher(cfg.Matching),
		now:     time.Now,
		logger:  slog.Default().With("component", "reconcile"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Reconcile processes one fetched batch against the state mapping,
// mutating it in place, and returns the run's changelog.
//
// Malformed records are skipped and counted, never fatal. Duplicate ids
// within one batch are tolerated: the last record wins, idempotently.
// Reapplying the same batch to the resulting state yields an empty
// changelog.
func (e *Engine) Reconcile(state map[string]*types.TrackedEvent, batch []types.EventRecord) (*types.Changelog, error) {
	if state == nil {
		return nil, fmt.Errorf("state mapping must not be nil")
	}

	now := e.now()
	changelog := &types.Changelog{}

	// Phase 1: classify every fetched record.
	newlyAdded := make(map[string]bool)
	for i := range batch {
		rec := batch[i]
		if err := rec.Validate(); err != nil {
			e.logger.Warn("skipping malformed record", "err", err)
			changelog.SkippedRecords++
			continue
		}
		e.classify(state, rec, now, changelog, newlyAdded)
	}

	// Phase 2: one matching pass over the whole batch.
	if err := e.matchDeferrals(state, changelog, newlyAdded); err != nil {
		return nil, err
	}

	// Phase 3: retire deferrals whose grace window has lapsed. Silent.
	e.sweep(state, now)

	e.logger.Info("reconcile complete",
		"fetched", len(batch),
		"tracked", len(state),
		"new", len(changelog.NewlyAdded),
		"deferred", len(changelog.NewlyDeferred),
		"rescheduled", len(changelog.NewlyRescheduled),
		"date_changed", len(changelog.DateChanged),
		"date_confirmed", len(changelog.DateConfirmed),
		"skipped", changelog.SkippedRecords)

	return changelog, nil
}

// matchDeferrals assembles the candidate sets, runs the matcher, and
// applies the resolved pairs to the state. The deferred side's alert
// fields are left untouched: a reschedule match is not a new alert.
func (e *Engine) matchDeferrals(state map[string]*types.TrackedEvent, changelog *types.Changelog, newlyAdded map[string]bool) error {
	var deferred, added []*types.TrackedEvent
	for _, ev := range state {
		switch {
		case ev.Status == types.StatusDeferredPendingMatch && ev.RescheduledTo == "":
			deferred = append(deferred, ev)
		case newlyAdded[ev.ID()] && ev.Status == types.StatusActive && ev.RescheduledFrom == "":
			added = append(added, ev)
		}
	}
	if len(deferred) == 0 || len(added) == 0 {
		return nil
	}

	result, err := e.matcher.Match(deferred, added)
	if err != nil {
		return fmt.Errorf("reschedule matching failed: %w", err)
	}

	for _, p := range result.Pairs {
		l, r := state[p.DeferredID], state[p.ReplacementID]
		l.Status = types.StatusDeferredRescheduled
		l.RescheduledTo = r.ID()
		r.RescheduledFrom = l.ID()

		changelog.NewlyRescheduled = append(changelog.NewlyRescheduled, types.ReschedulePair{
			DeferredID:    l.ID(),
			ReplacementID: r.ID(),
			Similarity:    p.Similarity,
		})
	}
	return nil
}

// sweep demotes deferred events whose original date has aged past the
// grace window to the terminal no-match state. The transition is
// internal: no changelog entry, no alert-field mutation.
func (e *Engine) sweep(state map[string]*types.TrackedEvent, now time.Time) {
	cutoff := now.AddDate(0, 0, -e.config.Matching.GraceWindowDays)
	for _, ev := range state {
		if ev.Status != types.StatusDeferredPendingMatch {
			continue
		}
		date, ok := ev.Latest.DateValue()
		if !ok {
			continue
		}
		if date.Before(cutoff) {
			ev.Status = types.StatusDeferredNoMatch
			e.logger.Info("deferred hearing aged out without a match",
				"id", ev.ID(), "original_date", ev.Latest.Date)
		}
	}
}

// RecentUpdates returns every tracked event whose alert timestamp falls
// within the lookback window, tagged by its immutable alert type and
// sorted newest first (id ascending on equal timestamps, for stable
// output). Filtering "new" entries down to future-dated hearings is a
// page-layout policy and happens in the projector, not here.
func (e *Engine) RecentUpdates(state map[string]*types.TrackedEvent, lookbackDays int) []types.RecentUpdate {
	cutoff := e.now().AddDate(0, 0, -lookbackDays)

	var updates []types.RecentUpdate
	for _, ev := range state {
		if ev.LastAlertAt.Before(cutoff) {
			continue
		}
		updates = append(updates, types.RecentUpdate{
			Event:     ev,
			AlertType: ev.LastAlertType,
			AlertAt:   ev.LastAlertAt,
		})
	}

	sort.Slice(updates, func(i, j int) bool {
		if !updates[i].AlertAt.Equal(updates[j].AlertAt) {
			return updates[i].AlertAt.After(updates[j].AlertAt)
		}
		return updates[i].Event.ID() < updates[j].Event.ID()
	})

	return updates
}
