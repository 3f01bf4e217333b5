package model

// -----------------------------------------------------------------------------
// Fetched Types
// -----------------------------------------------------------------------------

// QuoteSide holds the quantities NSE reports for one side (CE or PE) of a
// strike in a single option-chain response.
type QuoteSide struct {
	OpenInterest float64 // Open interest (contracts)
	OIChange     float64 // Change in open interest since previous close
	OIChangePct  float64 // Percent change in open interest
	BuyQuantity  float64 // Total buy quantity
	SellQuantity float64 // Total sell quantity
}

// StrikeQuote is one strike's row in a fetched option chain. A side is nil
// when NSE quotes nothing for it (common deep out of the money).
type StrikeQuote struct {
	Strike float64 // Strike price
	CE     *QuoteSide
	PE     *QuoteSide
}

// OptionChain is one fetched snapshot: the upstream timestamp plus all strike
// rows returned for the symbol. The timestamp is NSE's own refresh marker and
// is identical across every strike in the same fetch.
type OptionChain struct {
	Timestamp string        // Raw upstream timestamp (e.g. "14-Mar-2024 18:35:00")
	Strikes   []StrikeQuote // Order as returned by NSE
}

// -----------------------------------------------------------------------------
// Persisted Types
// -----------------------------------------------------------------------------

// SideMetrics is the recorded form of one side's quantities. Fields are zero
// when the upstream row omitted the side or the field.
type SideMetrics struct {
	OpenInterest float64 `json:"oi"`
	OIChange     float64 `json:"oi_change"`
	OIChangePct  float64 `json:"oi_change_pct"`
	BuyQuantity  float64 `json:"buy_qty"`
	SellQuantity float64 `json:"sell_qty"`
}

// SnapshotPoint is one strike's recorded column for one snapshot. Timestamp is
// shared by both sides and by every strike appended in the same merge.
type SnapshotPoint struct {
	Timestamp string      `json:"timestamp"`
	CE        SideMetrics `json:"ce"`
	PE        SideMetrics `json:"pe"`
}

// StrikeSeries is the append-only intraday series for one strike price.
type StrikeSeries struct {
	Strike float64         `json:"strike"`
	Points []SnapshotPoint `json:"points"`
}

// DailyAggregate accumulates one trading date's snapshots. Date is the unique
// key in the store. SeenTimestamps records every upstream timestamp already
// folded in, in arrival order, and is the sole dedup key for a whole fetch.
type DailyAggregate struct {
	Date           string         `json:"date"`
	SeenTimestamps []string       `json:"seen_timestamps"`
	Strikes        []StrikeSeries `json:"strikes"`

	// strike -> position in Strikes. Rebuilt on demand so aggregates loaded
	// from storage index correctly.
	index map[float64]int
}

// NewDailyAggregate returns an empty aggregate for the given trading date.
func NewDailyAggregate(date string) *DailyAggregate {
	return &DailyAggregate{
		Date:           date,
		SeenTimestamps: []string{},
		Strikes:        []StrikeSeries{},
	}
}

// HasTimestamp reports whether ts has already been folded into the aggregate.
func (a *DailyAggregate) HasTimestamp(ts string) bool {
	for _, seen := range a.SeenTimestamps {
		if seen == ts {
			return true
		}
	}
	return false
}

// AppendPoint appends p to the series for strike, creating the series the
// first time the strike is seen. Series keep first-appearance order; earlier
// snapshots are never backfilled for a late-appearing strike.
func (a *DailyAggregate) AppendPoint(strike float64, p SnapshotPoint) {
	a.ensureIndex()
	if i, ok := a.index[strike]; ok {
		a.Strikes[i].Points = append(a.Strikes[i].Points, p)
		return
	}
	a.index[strike] = len(a.Strikes)
	a.Strikes = append(a.Strikes, StrikeSeries{
		Strike: strike,
		Points: []SnapshotPoint{p},
	})
}

// Series returns the series for strike, or nil if the strike has not appeared.
func (a *DailyAggregate) Series(strike float64) *StrikeSeries {
	a.ensureIndex()
	i, ok := a.index[strike]
	if !ok {
		return nil
	}
	return &a.Strikes[i]
}

func (a *DailyAggregate) ensureIndex() {
	if a.index != nil && len(a.index) == len(a.Strikes) {
		return
	}
	a.index = make(map[float64]int, len(a.Strikes))
	for i, s := range a.Strikes {
		a.index[s.Strike] = i
	}
}
