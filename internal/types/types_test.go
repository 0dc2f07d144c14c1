package types

import (
	"strings"
	"testing"
	"time"
)

func TestEventRecordValidate(t *testing.T) {
	tests := []struct {
		name        string
		record      EventRecord
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid record",
			record: EventRecord{ID: "1001", BodyName: "Committee on Finance", Date: "2025-01-10"},
		},
		{
			name:   "valid record without date",
			record: EventRecord{ID: "1002", BodyName: "Committee on Land Use"},
		},
		{
			name:        "missing id",
			record:      EventRecord{BodyName: "Committee on Finance"},
			expectError: true,
			errorMsg:    "event id is required",
		},
		{
			name:        "missing body name",
			record:      EventRecord{ID: "1003"},
			expectError: true,
			errorMsg:    "body name is required",
		},
		{
			name:        "unparsable date",
			record:      EventRecord{ID: "1004", BodyName: "Committee on Rules", Date: "01/10/2025"},
			expectError: true,
			errorMsg:    "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errorMsg)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEventRecordIsDeferred(t *testing.T) {
	r := EventRecord{ID: "1", BodyName: "B", AgendaStatus: "Deferred"}
	if !r.IsDeferred() {
		t.Error("expected Deferred status to report deferred")
	}
	r.AgendaStatus = "deferred "
	if !r.IsDeferred() {
		t.Error("expected case/space-insensitive deferred detection")
	}
	r.AgendaStatus = "Final"
	if r.IsDeferred() {
		t.Error("expected Final status to report active")
	}
	r.AgendaStatus = ""
	if r.IsDeferred() {
		t.Error("expected empty status to report active")
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to EventStatus }{
		{StatusActive, StatusDeferredPendingMatch},
		{StatusActive, StatusDateRemoved},
		{StatusDeferredPendingMatch, StatusDeferredRescheduled},
		{StatusDeferredPendingMatch, StatusDeferredNoMatch},
		{StatusActive, StatusActive},
		{StatusDeferredPendingMatch, StatusDeferredPendingMatch},
	}
	for _, tr := range allowed {
		if !tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be allowed", tr.from, tr.to)
		}
	}

	forbidden := []struct{ from, to EventStatus }{
		{StatusDeferredPendingMatch, StatusActive},
		{StatusDeferredRescheduled, StatusActive},
		{StatusDeferredRescheduled, StatusDeferredPendingMatch},
		{StatusDeferredNoMatch, StatusDeferredPendingMatch},
		{StatusDeferredNoMatch, StatusDeferredRescheduled},
		{StatusDateRemoved, StatusActive},
		{StatusActive, StatusDeferredRescheduled},
		{StatusActive, StatusDeferredNoMatch},
	}
	for _, tr := range forbidden {
		if tr.from.CanTransition(tr.to) {
			t.Errorf("expected %s -> %s to be forbidden", tr.from, tr.to)
		}
	}
}

func TestTrackedEventValidate(t *testing.T) {
	now := time.Now()
	base := func() TrackedEvent {
		return TrackedEvent{
			Latest:        EventRecord{ID: "1001", BodyName: "Committee on Finance", Date: "2025-01-10"},
			FirstSeenAt:   now,
			LastSeenAt:    now,
			Status:        StatusActive,
			LastAlertType: AlertNew,
			LastAlertAt:   now,
		}
	}

	t.Run("valid", func(t *testing.T) {
		ev := base()
		if err := ev.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("both reschedule references set", func(t *testing.T) {
		ev := base()
		ev.Status = StatusDeferredRescheduled
		ev.RescheduledTo = "2001"
		ev.RescheduledFrom = "3001"
		if err := ev.Validate(); err == nil {
			t.Fatal("expected error for both reschedule references")
		}
	})

	t.Run("rescheduled_to requires rescheduled status", func(t *testing.T) {
		ev := base()
		ev.RescheduledTo = "2001"
		if err := ev.Validate(); err == nil {
			t.Fatal("expected error for rescheduled_to on active event")
		}
	})

	t.Run("rescheduled status requires successor", func(t *testing.T) {
		ev := base()
		ev.Status = StatusDeferredRescheduled
		if err := ev.Validate(); err == nil {
			t.Fatal("expected error for missing successor")
		}
	})

	t.Run("missing alert timestamp", func(t *testing.T) {
		ev := base()
		ev.LastAlertAt = time.Time{}
		if err := ev.Validate(); err == nil {
			t.Fatal("expected error for zero alert timestamp")
		}
	})
}

func TestChangelogEmpty(t *testing.T) {
	var c Changelog
	if !c.Empty() {
		t.Error("zero changelog should be empty")
	}
	c.NewlyAdded = []string{"1001"}
	if c.Empty() {
		t.Error("changelog with additions should not be empty")
	}
	if c.Total() != 1 {
		t.Errorf("expected total 1, got %d", c.Total())
	}
	c.SkippedRecords = 3
	if c.Total() != 1 {
		t.Error("skipped records must not count as changelog entries")
	}
}
