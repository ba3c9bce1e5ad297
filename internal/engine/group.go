package engine

import (
	"fmt"
	"time"

	"github.com/TahaEssaouir/Finance-Dashboard/internal/core"
)

// UnknownBucket is the label for transactions with no resolvable date.
const UnknownBucket = "Unknown"

// Labeler turns a date into a month bucket label. The labeler is always
// passed explicitly so that month labels never depend on the ambient
// process locale; see format.MonthLabeler for locale-aware labelers.
type Labeler func(time.Time) string

// MonthGroup is one month bucket in first-occurrence order.
type MonthGroup struct {
	Label        string             `json:"label"`
	Transactions []core.Transaction `json:"transactions"`
}

// DefaultLabeler renders "January 2006" style labels in English using the
// UTC calendar.
func DefaultLabeler(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s %d", t.Month().String(), t.Year())
}

// GroupByMonth partitions a transaction sequence into month buckets keyed
// by the label of each transaction's effective date. Grouping is stable:
// the relative order of the input is preserved inside each bucket, and
// buckets appear in first-occurrence order, which for a date-descending
// input yields reverse-chronological buckets.
func GroupByMonth(txs []core.Transaction, label Labeler) []MonthGroup {
	if label == nil {
		label = DefaultLabeler
	}

	var groups []MonthGroup
	index := make(map[string]int)

	for _, tx := range txs {
		key := UnknownBucket
		if d := tx.EffectiveDate(); !d.IsZero() {
			key = label(d)
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, MonthGroup{Label: key})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}
