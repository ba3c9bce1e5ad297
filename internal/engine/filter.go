// Package engine implements the transaction query engine: filtering,
// month grouping and summary aggregation over an owner-scoped snapshot of
// transactions. The engine performs no I/O and keeps no state; every
// function is a pure transformation of its input slice.
package engine

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// MinYear is the earliest selectable filter year.
const MinYear = 2023

// Filter is the set of optional, independently-specified listing criteria.
// Zero values mean "no restriction" on that axis. Fields arrive as raw
// strings from a query string or request object; the engine normalizes
// them and never rejects them.
type Filter struct {
	// Year selects a full calendar year window. Non-numeric or
	// out-of-range input is clamped, not refused: stale URLs must still
	// render a valid page.
	Year string

	// Query is a case-insensitive substring match against Title.
	Query string

	// Category restricts to an exact category value. The
	// "All Categories" sentinel (or absence) means no restriction.
	Category string

	// Date restricts to a single calendar day (YYYY-MM-DD). When set it
	// replaces the year window entirely rather than intersecting it.
	Date string
}

// EffectiveYear resolves the year criterion against the clamp policy:
// below MinYear clamps to MinYear, above the current year or unparsable
// clamps to the current year, absent defaults to the current year.
func (f Filter) EffectiveYear(now time.Time) int {
	currentYear := now.UTC().Year()
	raw := strings.TrimSpace(f.Year)
	if raw == "" {
		return currentYear
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return currentYear
	}
	if y < MinYear {
		return MinYear
	}
	if y > currentYear {
		return currentYear
	}
	return y
}

// Window resolves the effective date window, inclusive on both ends. A
// single-day Date criterion overrides the year window.
func (f Filter) Window(now time.Time) (start, end time.Time) {
	if d := strings.TrimSpace(f.Date); d != "" {
		if day, err := core.ParseDate(d); err == nil {
			start = day
			end = day.Add(24*time.Hour - time.Second)
			return start, end
		}
	}
	year := f.EffectiveYear(now)
	start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)
	return start, end
}

// categoryRestricted reports whether the category axis is active.
func (f Filter) categoryRestricted() bool {
	c := strings.TrimSpace(f.Category)
	return c != "" && c != core.AllCategoriesSentinel
}

// Apply filters an owner-scoped snapshot and returns a new slice ordered
// by date descending, ties broken by creation time descending. The input
// slice is never modified; applying the same filter twice yields the same
// result.
func Apply(txs []core.Transaction, f Filter, now time.Time) []core.Transaction {
	start, end := f.Window(now)
	query := strings.ToLower(strings.TrimSpace(f.Query))
	category := strings.TrimSpace(f.Category)
	restricted := f.categoryRestricted()

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		d := tx.EffectiveDate()
		if d.Before(start) || d.After(end) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(tx.Title), query) {
			continue
		}
		// Unknown category values simply match nothing.
		if restricted && string(tx.Category) != category {
			continue
		}
		out = append(out, tx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].EffectiveDate(), out[j].EffectiveDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
