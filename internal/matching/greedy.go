package matching

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/civicsignal/hearingwatch/internal/types"
)

// GreedyMatcher implements Matcher with a deterministic greedy assignment.
type GreedyMatcher struct {
	config Config
	logger *slog.Logger
}

// NewGreedyMatcher creates a matcher with the given configuration.
func NewGreedyMatcher(cfg Config) *GreedyMatcher {
	return &GreedyMatcher{
		config: cfg,
		logger: slog.Default().With("component", "matcher"),
	}
}

// Match implements the Matcher interface.
func (m *GreedyMatcher) Match(deferred, added []*types.TrackedEvent) (*Result, error) {
	if err := m.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher config: %w", err)
	}

	result := &Result{}

	// Process the deferred side in ascending original-date order so earlier
	// deferrals get first pick. Id breaks date ties for full determinism.
	left := make([]*types.TrackedEvent, 0, len(deferred))
	for _, l := range deferred {
		if l.Status != types.StatusDeferredPendingMatch || l.RescheduledTo != "" {
			continue
		}
		left = append(left, l)
	}
	sort.Slice(left, func(i, j int) bool {
		if left[i].Latest.Date != left[j].Latest.Date {
			return left[i].Latest.Date < left[j].Latest.Date
		}
		return left[i].ID() < left[j].ID()
	})

	taken := make(map[string]bool, len(added))

	for _, l := range left {
		best, score, gap := m.pickReplacement(l, added, taken, result)
		if best == nil {
			result.UnmatchedDeferred = append(result.UnmatchedDeferred, l.ID())
			continue
		}

		taken[best.ID()] = true
		result.Pairs = append(result.Pairs, Pair{
			DeferredID:    l.ID(),
			ReplacementID: best.ID(),
			Similarity:    score,
			GapDays:       gap,
		})
		m.logger.Info("matched deferred hearing to replacement",
			"deferred", l.ID(), "replacement", best.ID(),
			"similarity", fmt.Sprintf("%.3f", score), "gap_days", gap)
	}

	if err := result.Validate(m.config.SimilarityThreshold, m.config.GraceWindowDays); err != nil {
		return nil, fmt.Errorf("match pass produced inconsistent result: %w", err)
	}

	return result, nil
}

// pickReplacement scans the right-hand candidates for the best eligible
// replacement for l. Ranking: highest similarity, then smallest date gap,
// then lowest id.
func (m *GreedyMatcher) pickReplacement(l *types.TrackedEvent, added []*types.TrackedEvent, taken map[string]bool, result *Result) (best *types.TrackedEvent, bestScore float64, bestGap int) {
	lDate, ok := l.Latest.DateValue()
	if !ok {
		// A deferral with no original date has no window to match within.
		return nil, 0, 0
	}

	for _, r := range added {
		if taken[r.ID()] || r.ID() == l.ID() {
			continue
		}
		if r.Status != types.StatusActive || r.RescheduledFrom != "" || r.RescheduledTo != "" {
			continue
		}

		rDate, ok := r.Latest.DateValue()
		if !ok {
			continue
		}
		gap := daysBetween(lDate, rDate)
		if gap < 1 || gap > m.config.GraceWindowDays {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(r.Latest.BodyName), strings.TrimSpace(l.Latest.BodyName)) {
			continue
		}

		result.ComparisonsMade++
		score := Similarity(l.Latest.Comment, r.Latest.Comment)
		if score < m.config.SimilarityThreshold {
			continue
		}

		if best == nil || betterCandidate(score, gap, r.ID(), bestScore, bestGap, best.ID()) {
			best, bestScore, bestGap = r, score, gap
		}
	}

	return best, bestScore, bestGap
}

// betterCandidate reports whether (score, gap, id) outranks the current
// best under the deterministic tie-break order.
func betterCandidate(score float64, gap int, id string, bestScore float64, bestGap int, bestID string) bool {
	if score != bestScore {
		return score > bestScore
	}
	if gap != bestGap {
		return gap < bestGap
	}
	return id < bestID
}

// daysBetween returns the whole-day difference rDate - lDate.
func daysBetween(lDate, rDate time.Time) int {
	return int(rDate.Sub(lDate).Hours() / 24)
}
