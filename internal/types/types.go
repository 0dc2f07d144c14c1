package types

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form used throughout the tracker.
// Legistar returns full datetimes; records are normalized to this before
// they reach the engine.
const DateLayout = "2006-01-02"

// AgendaStatusDeferred is the one agenda status the classifier treats
// specially. Every other value from the source is considered active.
const AgendaStatusDeferred = "Deferred"

// EventRecord is one fetched snapshot of a scheduled meeting. It is
// ephemeral: one per API item per run. The ID is stable per API record but
// NOT stable across a defer/reschedule boundary, which is why the matcher
// exists at all.
type EventRecord struct {
	ID           string `json:"id"`
	BodyName     string `json:"body_name"`
	Date         string `json:"date,omitempty"` // DateLayout, may be empty
	Time         string `json:"time,omitempty"` // e.g. "10:00 AM", may be empty
	AgendaStatus string `json:"agenda_status,omitempty"`
	Comment      string `json:"comment,omitempty"`
	Location     string `json:"location,omitempty"`
	AgendaLink   string `json:"agenda_link,omitempty"`
}

// Validate checks the fields a record must carry to be classifiable.
// Records failing validation are skipped and logged, never fatal.
func (r *EventRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(r.BodyName) == "" {
		return fmt.Errorf("body name is required (event %s)", r.ID)
	}
	if r.Date != "" {
		if _, err := time.Parse(DateLayout, r.Date); err != nil {
			return fmt.Errorf("invalid date %q (event %s): %w", r.Date, r.ID, err)
		}
	}
	return nil
}

// IsDeferred reports whether the source marked this record's agenda as
// deferred.
func (r *EventRecord) IsDeferred() bool {
	return strings.EqualFold(strings.TrimSpace(r.AgendaStatus), AgendaStatusDeferred)
}

// DateValue parses the record's date. ok is false when the date is absent
// or unparsable.
func (r *EventRecord) DateValue() (time.Time, bool) {
	if r.Date == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// EventStatus is the lifecycle state of a tracked event.
//
// Transitions are monotonic: active may move to deferredPendingMatch,
// dateRemoved, or stay; deferredPendingMatch may move to
// deferredRescheduled or deferredNoMatch. Nothing ever moves backwards.
type EventStatus string

const (
	StatusActive               EventStatus = "active"
	StatusDeferredPendingMatch EventStatus = "deferred_pending_match"
	StatusDeferredRescheduled  EventStatus = "deferred_rescheduled"
	StatusDeferredNoMatch      EventStatus = "deferred_nomatch"

	// StatusDateRemoved marks an event whose previously-known date was
	// withdrawn by the source. Terminal and silent, like deferred_nomatch.
	StatusDateRemoved EventStatus = "date_removed"
)

// IsValid checks if the status value is valid
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusDeferredPendingMatch, StatusDeferredRescheduled,
		StatusDeferredNoMatch, StatusDateRemoved:
		return true
	}
	return false
}

// IsTerminal reports whether the status can never change again.
func (s EventStatus) IsTerminal() bool {
	switch s {
	case StatusDeferredRescheduled, StatusDeferredNoMatch, StatusDateRemoved:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next respects the
// monotonic state machine.
func (s EventStatus) CanTransition(next EventStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusActive:
		return next == StatusDeferredPendingMatch || next == StatusDateRemoved
	case StatusDeferredPendingMatch:
		return next == StatusDeferredRescheduled || next == StatusDeferredNoMatch
	}
	return false
}

// AlertType classifies the one alert a tracked event ever produces.
type AlertType string

const (
	AlertNew      AlertType = "new"
	AlertDeferred AlertType = "deferred"
)

// IsValid checks if the alert type value is valid
func (a AlertType) IsValid() bool {
	switch a {
	case AlertNew, AlertDeferred:
		return true
	}
	return false
}

// TrackedEvent is the persisted, evolving state for one event identifier
// across runs. Entries are never deleted; they go dormant once their alert
// timestamp ages out of every lookback window.
//
// LastAlertAt is assigned at creation (alert type "new") and reassigned at
// most once, when the event first defers (alert type "deferred"). After
// that it is frozen: a reschedule match or a grace-period sweep must leave
// both alert fields untouched.
type TrackedEvent struct {
	Latest EventRecord `json:"latest"`

	FirstSeenAt             time.Time `json:"first_seen_at"`
	LastSeenAt              time.Time `json:"last_seen_at"`
	LastSignificantChangeAt time.Time `json:"last_significant_change_at,omitzero"`

	Status EventStatus `json:"status"`

	LastAlertType AlertType `json:"last_alert_type"`
	LastAlertAt   time.Time `json:"last_alert_at"`

	// RescheduledTo names the successor event when this event was deferred
	// and a replacement was matched. RescheduledFrom names the deferred
	// original on the replacement side. At most one of the two is ever set
	// on a given event.
	RescheduledTo   string `json:"rescheduled_to,omitempty"`
	RescheduledFrom string `json:"rescheduled_from,omitempty"`

	// PreviousDate carries the prior date across a same-id reschedule or a
	// date confirmation, for display.
	PreviousDate string `json:"previous_date,omitempty"`
	PreviousTime string `json:"previous_time,omitempty"`
}

// ID returns the stable identifier the event is tracked under.
func (t *TrackedEvent) ID() string {
	return t.Latest.ID
}

// Validate checks cross-field invariants on a tracked event.
func (t *TrackedEvent) Validate() error {
	if err := t.Latest.Validate(); err != nil {
		return fmt.Errorf("latest record: %w", err)
	}
	if !t.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	if !t.LastAlertType.IsValid() {
		return fmt.Errorf("invalid alert type: %s", t.LastAlertType)
	}
	if t.LastAlertAt.IsZero() {
		return fmt.Errorf("last_alert_at must be set")
	}
	if t.RescheduledTo != "" && t.RescheduledFrom != "" {
		return fmt.Errorf("event %s is both a deferred original and a reschedule target", t.ID())
	}
	if t.RescheduledTo != "" && t.Status != StatusDeferredRescheduled {
		return fmt.Errorf("rescheduled_to set on %s with status %s", t.ID(), t.Status)
	}
	if t.Status == StatusDeferredRescheduled && t.RescheduledTo == "" {
		return fmt.Errorf("event %s is deferred_rescheduled without a successor", t.ID())
	}
	if t.FirstSeenAt.After(t.LastSeenAt) {
		return fmt.Errorf("event %s first seen after last seen", t.ID())
	}
	return nil
}

// ReschedulePair correlates a deferred original with its matched
// replacement.
type ReschedulePair struct {
	DeferredID    string  `json:"deferred_id"`
	ReplacementID string  `json:"replacement_id"`
	Similarity    float64 `json:"similarity"`
}

// DateChange records a same-id reschedule (the source moved the date on
// one record rather than filing a new one).
type DateChange struct {
	ID       string `json:"id"`
	OldDate  string `json:"old_date"`
	OldTime  string `json:"old_time,omitempty"`
	NewDate  string `json:"new_date"`
	NewTime  string `json:"new_time,omitempty"`
	BodyName string `json:"body_name"`
}

// Changelog is the per-run set of classified transitions handed to the
// presentation and notification layers. Grace-period sweeps and date
// removals are deliberately absent: those transitions are silent.
type Changelog struct {
	NewlyAdded       []string         `json:"newly_added"`
	NewlyDeferred    []string         `json:"newly_deferred"`
	NewlyRescheduled []ReschedulePair `json:"newly_rescheduled"`

	// DateChanged holds same-id reschedules; DateConfirmed holds events
	// whose previously-unknown date became known this run.
	DateChanged   []DateChange `json:"date_changed"`
	DateConfirmed []string     `json:"date_confirmed"`

	// SkippedRecords counts malformed input records dropped this run.
	SkippedRecords int `json:"skipped_records"`
}

// Empty reports whether the run produced no externally visible change.
func (c *Changelog) Empty() bool {
	return len(c.NewlyAdded) == 0 &&
		len(c.NewlyDeferred) == 0 &&
		len(c.NewlyRescheduled) == 0 &&
		len(c.DateChanged) == 0 &&
		len(c.DateConfirmed) == 0
}

// Total returns the number of changelog entries across all categories.
func (c *Changelog) Total() int {
	return len(c.NewlyAdded) + len(c.NewlyDeferred) + len(c.NewlyRescheduled) +
		len(c.DateChanged) + len(c.DateConfirmed)
}

// RecentUpdate is one row of the windowed "recent updates" read path:
// a tracked event whose immutable alert timestamp falls inside the
// lookback window, tagged by its immutable alert type.
type RecentUpdate struct {
	Event     *TrackedEvent
	AlertType AlertType
	AlertAt   time.Time
}
