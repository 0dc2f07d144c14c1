// Package matching pairs deferred hearings with their rescheduled
// replacements.
//
// # Overview
//
// Legistar sometimes models "defer + reschedule" as two distinct event
// identifiers rather than moving the date on one record. Identifier
// equality therefore cannot correlate a deferred hearing with its
// replacement; this package treats the correlation as a bounded,
// heuristic, deterministic assignment problem instead.
//
// # Algorithm
//
// Once per run, after classification:
//
//  1. L = tracked events still awaiting a reschedule match
//     (deferred_pending_match, not already paired).
//  2. R = events newly created this run with status active and no
//     reschedule linkage of their own.
//  3. A pair (l, r) is eligible only if r's date is strictly later than
//     l's, at most GraceWindowDays later, the body names match
//     case-insensitively, and the comment similarity is at least
//     SimilarityThreshold.
//  4. L is processed in ascending date order (id as tie-break); each l
//     takes the eligible r with the highest similarity, then the smallest
//     date gap, then the lexicographically smallest id. A chosen r is
//     removed from further eligibility.
//
// A greedy, similarity-ranked assignment is preferred over optimal
// bipartite matching because candidate sets are bounded by daily hearing
// volume and the thresholds already reject most false candidates.
// Determinism matters more than optimality: reruns on identical input
// must produce identical pairings.
//
// # Similarity metric
//
// Comment similarity is a normalized Levenshtein ratio over lowercased,
// whitespace-collapsed comments (see Similarity). The metric and the
// 0.85 default threshold are pinned so fixtures stay reproducible.
//
// # Configuration
//
// Defaults are conservative:
//   - SimilarityThreshold: 0.85 (high confidence required to pair)
//   - GraceWindowDays: 45 (how long a deferred hearing stays matchable)
//
// See DefaultConfig() and ConfigFromEnv().
package matching
