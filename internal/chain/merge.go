// Package chain implements the snapshot merge algorithm: folding one fetched
// option chain into the running trading-date aggregate without duplication.
package chain

import (
	"github.com/kunnuv/niftyflow/internal/model"
)

// Outcome classifies the result of a merge.
type Outcome int

const (
	// Created means the merge started a new aggregate for the date.
	Created Outcome = iota

	// Appended means the snapshot was folded into an existing aggregate.
	Appended

	// Duplicate means the snapshot's timestamp was already recorded; the
	// aggregate was not touched. Not an error.
	Duplicate
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Appended:
		return "appended"
	case Duplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Merge folds snap into existing, which may be nil when no aggregate has been
// stored for date yet. Dedup is keyed on the snapshot's own reported
// timestamp, not on poll time: the upstream refreshes far less often than it
// is polled, and every poll landing on an unchanged timestamp collapses into
// the single column already recorded.
//
// On Created or Appended the returned aggregate carries exactly one new entry
// in SeenTimestamps and one new point per strike in the snapshot, all with
// the same timestamp. On Duplicate the aggregate is returned unmodified.
func Merge(existing *model.DailyAggregate, snap model.OptionChain, date string) (*model.DailyAggregate, Outcome) {
	agg := existing
	created := false
	if agg == nil {
		agg = model.NewDailyAggregate(date)
		created = true
	}

	if agg.HasTimestamp(snap.Timestamp) {
		return agg, Duplicate
	}

	agg.SeenTimestamps = append(agg.SeenTimestamps, snap.Timestamp)

	for _, q := range snap.Strikes {
		agg.AppendPoint(q.Strike, model.SnapshotPoint{
			Timestamp: snap.Timestamp,
			CE:        sideMetrics(q.CE),
			PE:        sideMetrics(q.PE),
		})
	}

	if created {
		return agg, Created
	}
	return agg, Appended
}

// sideMetrics converts a quoted side to its recorded form. A nil side (not
// quoted by NSE) records as all zeros.
func sideMetrics(q *model.QuoteSide) model.SideMetrics {
	if q == nil {
		return model.SideMetrics{}
	}
	return model.SideMetrics{
		OpenInterest: q.OpenInterest,
		OIChange:     q.OIChange,
		OIChangePct:  q.OIChangePct,
		BuyQuantity:  q.BuyQuantity,
		SellQuantity: q.SellQuantity,
	}
}
