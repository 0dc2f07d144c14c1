package reconcile

import (
	"time"

	"github.com/civicsignal/hearingwatch/internal/types"
)

// classify applies one fetched record to the state mapping.
//
// Unknown id: a fresh tracked event is created with status active and its
// once-only "new" alert. Known id: the incoming record is compared to the
// last-seen one; only differences in date, time, body, or agenda status
// count as significant. The alert fields are reassigned at most once
// after creation, at the active -> deferred_pending_match transition, and
// frozen thereafter.
func (e *Engine) classify(state map[string]*types.TrackedEvent, rec types.EventRecord, now time.Time, changelog *types.Changelog, newlyAdded map[string]bool) {
	existing, ok := state[rec.ID]
	if !ok {
		state[rec.ID] = &types.TrackedEvent{
			Latest:        rec,
			FirstSeenAt:   now,
			LastSeenAt:    now,
			Status:        types.StatusActive,
			LastAlertType: types.AlertNew,
			LastAlertAt:   now,
		}
		if !newlyAdded[rec.ID] {
			newlyAdded[rec.ID] = true
			changelog.NewlyAdded = append(changelog.NewlyAdded, rec.ID)
		}
		e.logger.Info("new hearing", "id", rec.ID, "body", rec.BodyName, "date", rec.Date)
		return
	}

	existing.LastSeenAt = now

	prev := existing.Latest
	if prev == rec {
		return
	}

	material := prev.Date != rec.Date ||
		prev.Time != rec.Time ||
		prev.BodyName != rec.BodyName ||
		prev.AgendaStatus != rec.AgendaStatus

	// Field-only churn (location, comment, agenda link) is persisted but
	// produces no changelog entry and no significant-change timestamp.
	existing.Latest = rec
	if !material {
		return
	}
	existing.LastSignificantChangeAt = now

	wasActive := existing.Status == types.StatusActive

	switch {
	case wasActive && !prev.IsDeferred() && rec.IsDeferred():
		// The one transition that reassigns the alert fields. From here on
		// they are frozen for the lifetime of the tracked event.
		existing.Status = types.StatusDeferredPendingMatch
		existing.LastAlertType = types.AlertDeferred
		existing.LastAlertAt = now
		existing.PreviousDate = ""
		existing.PreviousTime = ""
		changelog.NewlyDeferred = append(changelog.NewlyDeferred, rec.ID)
		e.logger.Info("hearing deferred", "id", rec.ID, "body", rec.BodyName, "date", rec.Date)

	case wasActive && prev.Date != "" && rec.Date == "":
		// Date withdrawn by the source. Terminal and silent, same contract
		// as the grace-period sweep.
		existing.Status = types.StatusDateRemoved
		existing.PreviousDate = prev.Date
		existing.PreviousTime = prev.Time
		e.logger.Info("hearing date removed", "id", rec.ID, "body", rec.BodyName, "was", prev.Date)

	case wasActive && prev.Date == "" && rec.Date != "":
		existing.PreviousDate = ""
		existing.PreviousTime = ""
		changelog.DateConfirmed = append(changelog.DateConfirmed, rec.ID)
		e.logger.Info("hearing date confirmed", "id", rec.ID, "body", rec.BodyName, "date", rec.Date)

	case wasActive && (prev.Date != rec.Date || prev.Time != rec.Time):
		// Same-id reschedule: the source moved the date on this record
		// instead of filing a replacement. The alert stays "new".
		existing.PreviousDate = prev.Date
		existing.PreviousTime = prev.Time
		changelog.DateChanged = append(changelog.DateChanged, types.DateChange{
			ID:       rec.ID,
			OldDate:  prev.Date,
			OldTime:  prev.Time,
			NewDate:  rec.Date,
			NewTime:  rec.Time,
			BodyName: rec.BodyName,
		})
		e.logger.Info("hearing rescheduled in place",
			"id", rec.ID, "body", rec.BodyName, "from", prev.Date, "to", rec.Date)
	}
	// Material changes on non-active events (a deferred hearing's record
	// getting touched again) are persisted above but trigger no
	// transition: status never regresses.
}
