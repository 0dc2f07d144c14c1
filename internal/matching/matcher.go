package matching

import (
	"fmt"

	"github.com/civicsignal/hearingwatch/internal/types"
)

// Matcher defines the interface for pairing deferred hearings with newly
// added events that represent their rescheduled occurrence.
//
// Example usage:
//
//	m := NewGreedyMatcher(DefaultConfig())
//	result, err := m.Match(deferred, added)
//	if err != nil {
//	    log.Printf("match pass failed: %v", err)
//	}
//	for _, p := range result.Pairs {
//	    log.Printf("%s rescheduled as %s (similarity %.2f)",
//	        p.DeferredID, p.ReplacementID, p.Similarity)
//	}
type Matcher interface {
	// Match runs one assignment pass over the candidate sets. deferred
	// holds tracked events in deferred_pending_match that are not already
	// paired; added holds events newly created this run with status active
	// and no reschedule linkage. Neither slice is mutated; applying the
	// resulting pairs to the store is the caller's job.
	//
	// The pass is deterministic: identical candidate sets produce
	// identical results, including under ties.
	Match(deferred, added []*types.TrackedEvent) (*Result, error)
}

// Pair is one resolved deferred-original / replacement pairing.
type Pair struct {
	// DeferredID is the tracked event awaiting the reschedule.
	DeferredID string `json:"deferred_id"`

	// ReplacementID is the newly added event chosen as its successor.
	ReplacementID string `json:"replacement_id"`

	// Similarity is the comment-similarity score that justified the pair
	// (always >= the configured threshold).
	Similarity float64 `json:"similarity"`

	// GapDays is the number of days between the original and replacement
	// dates (always in 1..GraceWindowDays).
	GapDays int `json:"gap_days"`
}

// Result is the outcome of one matching pass.
type Result struct {
	// Pairs holds the resolved pairings, in the order the deferred side
	// was processed (ascending original date).
	Pairs []Pair `json:"pairs"`

	// UnmatchedDeferred lists deferred events that found no eligible
	// replacement this run. They roll over to future runs until the grace
	// window lapses.
	UnmatchedDeferred []string `json:"unmatched_deferred"`

	// ComparisonsMade counts the candidate pairs examined, for logging.
	ComparisonsMade int `json:"comparisons_made"`
}

// Validate checks internal consistency of a match result.
func (r *Result) Validate(threshold float64, graceWindowDays int) error {
	seenDeferred := make(map[string]bool, len(r.Pairs))
	seenReplacement := make(map[string]bool, len(r.Pairs))

	for _, p := range r.Pairs {
		if p.DeferredID == "" || p.ReplacementID == "" {
			return fmt.Errorf("pair with empty side: %+v", p)
		}
		if p.DeferredID == p.ReplacementID {
			return fmt.Errorf("event %s paired with itself", p.DeferredID)
		}
		if seenDeferred[p.DeferredID] {
			return fmt.Errorf("deferred event %s paired twice", p.DeferredID)
		}
		if seenReplacement[p.ReplacementID] {
			return fmt.Errorf("replacement %s serves two deferrals", p.ReplacementID)
		}
		seenDeferred[p.DeferredID] = true
		seenReplacement[p.ReplacementID] = true

		if p.Similarity < threshold || p.Similarity > 1.0 {
			return fmt.Errorf("pair %s/%s similarity %.3f outside [%.2f, 1.0]",
				p.DeferredID, p.ReplacementID, p.Similarity, threshold)
		}
		if p.GapDays < 1 || p.GapDays > graceWindowDays {
			return fmt.Errorf("pair %s/%s gap %dd outside (0, %dd]",
				p.DeferredID, p.ReplacementID, p.GapDays, graceWindowDays)
		}
	}

	for _, id := range r.UnmatchedDeferred {
		if seenDeferred[id] {
			return fmt.Errorf("event %s both paired and unmatched", id)
		}
	}

	return nil
}
