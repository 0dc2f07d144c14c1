// Package notify fans a run's changelog out to the configured
// channels: a JSON file drop, a Slack webhook, and SMTP email.
//
// Delivery is best effort. The generated page is re-derived from
// persisted state each run, so a lost notification is recovered by the
// next run; nothing here attempts exactly-once semantics.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/civicsignal/hearingwatch/internal/types"
)

// maxConcurrentSends caps in-flight channel deliveries.
const maxConcurrentSends = 4

// Channel delivers one run summary somewhere.
type Channel interface {
	// Name identifies the channel in logs.
	Name() string

	// Send delivers the summary. Errors are collected, logged, and do not
	// block other channels.
	Send(ctx context.Context, s *Summary) error
}

// Summary is the notification payload assembled from one run.
type Summary struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Counts      map[string]int   `json:"counts"`
	Lines       []string         `json:"lines,omitempty"`
	Changelog   *types.Changelog `json:"changelog"`
}

// Dispatcher sends run summaries to every enabled channel.
type Dispatcher struct {
	config   Config
	channels []Channel
	sem      *semaphore.Weighted
	logger   *slog.Logger
	now      func() time.Time
}

// NewDispatcher builds a dispatcher from the configuration. dataDir is
// where the file channel writes its drop.
func NewDispatcher(cfg Config, dataDir string) *Dispatcher {
	d := &Dispatcher{
		config: cfg,
		sem:    semaphore.NewWeighted(maxConcurrentSends),
		logger: slog.Default().With("component", "notify"),
		now:    time.Now,
	}

	if cfg.File.Enabled {
		d.channels = append(d.channels, &fileChannel{dir: dataDir})
	}
	if cfg.Slack.Enabled {
		d.channels = append(d.channels, &slackChannel{
			config:     cfg.Slack,
			httpClient: &http.Client{Timeout: 15 * time.Second},
		})
	}
	if cfg.Email.Enabled {
		d.channels = append(d.channels, &emailChannel{config: cfg.Email})
	}

	return d
}

// Dispatch builds the summary for the changelog and sends it to every
// channel concurrently (bounded). A run with nothing notifiable after
// preference filtering sends nothing.
func (d *Dispatcher) Dispatch(ctx context.Context, changelog *types.Changelog, state map[string]*types.TrackedEvent) error {
	summary := d.buildSummary(changelog, state)
	if len(summary.Counts) == 0 {
		d.logger.Info("nothing notifiable this run")
		return nil
	}

	errs := make([]error, len(d.channels))
	done := make(chan int, len(d.channels))

	for i, ch := range d.channels {
		if err := d.sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func(i int, ch Channel) {
			defer d.sem.Release(1)
			if err := ch.Send(ctx, summary); err != nil {
				d.logger.Error("notification failed", "channel", ch.Name(), "err", err)
				errs[i] = fmt.Errorf("%s: %w", ch.Name(), err)
			} else {
				d.logger.Info("notification sent", "channel", ch.Name())
			}
			done <- i
		}(i, ch)
	}

	for range d.channels {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return errors.Join(errs...)
}

// buildSummary applies the category preferences and renders the
// human-readable lines shared by the Slack and email channels.
func (d *Dispatcher) buildSummary(changelog *types.Changelog, state map[string]*types.TrackedEvent) *Summary {
	s := &Summary{
		GeneratedAt: d.now(),
		Counts:      map[string]int{},
		Changelog:   changelog,
	}
	p := d.config.Preferences

	describe := func(id string) string {
		ev, ok := state[id]
		if !ok {
			return id
		}
		date := ev.Latest.Date
		if date == "" {
			date = "date TBD"
		}
		return fmt.Sprintf("%s on %s", ev.Latest.BodyName, date)
	}

	if p.NotifyNew && len(changelog.NewlyAdded) > 0 {
		s.Counts["new"] = len(changelog.NewlyAdded)
		for _, id := range changelog.NewlyAdded {
			s.Lines = append(s.Lines, "NEW: "+describe(id))
		}
	}
	if p.NotifyDeferred && len(changelog.NewlyDeferred) > 0 {
		s.Counts["deferred"] = len(changelog.NewlyDeferred)
		for _, id := range changelog.NewlyDeferred {
			s.Lines = append(s.Lines, "DEFERRED: "+describe(id))
		}
	}
	if p.NotifyRescheduled && len(changelog.NewlyRescheduled) > 0 {
		s.Counts["rescheduled"] = len(changelog.NewlyRescheduled)
		for _, pair := range changelog.NewlyRescheduled {
			s.Lines = append(s.Lines,
				fmt.Sprintf("RESCHEDULED: %s -> %s", describe(pair.DeferredID), describe(pair.ReplacementID)))
		}
	}
	if p.NotifyDateChanged && len(changelog.DateChanged) > 0 {
		s.Counts["date_changed"] = len(changelog.DateChanged)
		for _, dc := range changelog.DateChanged {
			s.Lines = append(s.Lines,
				fmt.Sprintf("MOVED: %s from %s to %s", dc.BodyName, dc.OldDate, dc.NewDate))
		}
	}
	if p.NotifyDateConfirmed && len(changelog.DateConfirmed) > 0 {
		s.Counts["date_confirmed"] = len(changelog.DateConfirmed)
		for _, id := range changelog.DateConfirmed {
			s.Lines = append(s.Lines, "DATE SET: "+describe(id))
		}
	}

	if p.SummaryOnly {
		s.Lines = nil
	}

	return s
}
