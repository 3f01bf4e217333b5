// Package poller implements the collection loop.
//
// The loop:
//   - Ticks on a fixed cadence derived from the configured interval
//   - Skips ticks outside NSE trading days and hours
//   - Fetches one option-chain snapshot and merges it into the day's aggregate
//   - Persists only when the merge recorded a new upstream timestamp
//   - Isolates every failure to its own cycle
//
// Cycles are strictly sequential: the next tick is only consumed after the
// previous cycle has fully completed.
package poller
