package history

import (
	"sort"

	"github.com/muhammadchandra19/moex-history-service/internal/infrastructure/postgresql/interval"
	"github.com/muhammadchandra19/moex-history-service/pkg/daterange"
)

// Plan describes what a request must do before its window is fully covered:
// fetch the missing ranges itself and wait for the listed pending intervals
// that other requests already own.
type Plan struct {
	Missing []daterange.Range
	Waiting []int64
}

// Empty reports whether the window is already fully covered by complete
// intervals.
func (p Plan) Empty() bool {
	return len(p.Missing) == 0 && len(p.Waiting) == 0
}

// ResolvePlan walks the intervals overlapping the window and computes the
// uncovered day ranges. Pending intervals count as covered, the caller waits
// for them instead of re-fetching. Intervals may overlap each other; a day
// is covered as soon as any interval contains it.
func ResolvePlan(window daterange.Range, intervals []*interval.FetchInterval) Plan {
	sorted := make([]*interval.FetchInterval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Range.Start.Before(sorted[j].Range.Start)
	})

	plan := Plan{}
	cursor := window.Start

	for _, iv := range sorted {
		if !iv.Range.Overlaps(window) {
			continue
		}

		if iv.Status == interval.StatusPending {
			plan.Waiting = append(plan.Waiting, iv.ID)
		}

		start := iv.Range.Start
		if start.Before(window.Start) {
			start = window.Start
		}
		if cursor.Before(start) {
			plan.Missing = append(plan.Missing, daterange.Range{Start: cursor, End: start.AddDate(0, 0, -1)})
		}

		next := iv.Range.End.AddDate(0, 0, 1)
		if next.After(cursor) {
			cursor = next
		}
	}

	if !cursor.After(window.End) {
		plan.Missing = append(plan.Missing, daterange.Range{Start: cursor, End: window.End})
	}

	return plan
}
