package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/kunnuv/niftyflow/internal/chain"
	"github.com/kunnuv/niftyflow/internal/market"
	"github.com/kunnuv/niftyflow/internal/model"
	"github.com/kunnuv/niftyflow/internal/notify"
)

// Fetcher retrieves one option-chain snapshot per call.
type Fetcher interface {
	OptionChain(ctx context.Context) (*model.OptionChain, error)
}

// Store loads and saves daily aggregates keyed by trading date. Load returns
// (nil, nil) when no aggregate exists for the date yet.
type Store interface {
	Load(ctx context.Context, date string) (*model.DailyAggregate, error)
	Save(ctx context.Context, agg *model.DailyAggregate) error
}

// Config holds poll-loop configuration.
type Config struct {
	IntervalMinutes int // Configured interval units (default: 1)
}

// Interval converts the configured units to the tick period. Each unit is 45
// real seconds, not 60: the deployed collector has always run at this cadence
// and the stored datasets assume it, so it is kept as-is rather than
// "corrected".
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * 45 * time.Second
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{IntervalMinutes: 1}
}

// CycleStatus records the terminal outcome of the most recent cycle.
type CycleStatus struct {
	At      time.Time `json:"at"`
	Outcome string    `json:"outcome"`
	Detail  string    `json:"detail,omitempty"`
}

// Cycle outcome labels.
const (
	OutcomeSkippedWindow = "skipped_window"
	OutcomeFetchError    = "fetch_error"
	OutcomeBadTimestamp  = "bad_timestamp"
	OutcomeLoadError     = "load_error"
	OutcomeSaveError     = "save_error"
	OutcomeDuplicate     = "duplicate"
	OutcomeStored        = "stored"
)

// Poller periodically fetches option-chain snapshots and folds them into the
// trading date's aggregate.
type Poller struct {
	cfg      Config
	fetcher  Fetcher
	store    Store
	notifier notify.Notifier
	logger   *slog.Logger

	// now is the wall clock; swapped in tests to pin the calendar gate.
	now func() time.Time

	last atomic.Value // CycleStatus

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, fetcher Fetcher, store Store, notifier notify.Notifier, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Poller{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started",
		"interval", p.cfg.Interval(),
		"interval_minutes", p.cfg.IntervalMinutes,
	)

	return nil
}

// Stop gracefully shuts down the poller, waiting for an in-flight cycle to
// finish.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastCycle returns the most recent cycle's terminal status.
func (p *Poller) LastCycle() CycleStatus {
	if s, ok := p.last.Load().(CycleStatus); ok {
		return s
	}
	return CycleStatus{}
}

// run is the main polling loop. One goroutine, one cycle at a time: a tick is
// only consumed after the previous cycle returned, so cycles never overlap.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval())
	defer ticker.Stop()

	// First cycle immediately on start.
	p.runCycle(p.ctx, p.now())

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.runCycle(p.ctx, p.now())
		}
	}
}

// runCycle executes one gate -> fetch -> merge -> persist pass. Every failure
// is terminal for this cycle only; nothing is carried into the next one.
func (p *Poller) runCycle(ctx context.Context, now time.Time) {
	logger := p.logger.With("cycle", uuid.NewString())

	if !market.IsEligible(now) {
		logger.Debug("outside trading window, skipping cycle", "now", now.In(market.IST))
		p.record(now, OutcomeSkippedWindow, "")
		return
	}

	snap, err := p.fetcher.OptionChain(ctx)
	if err != nil {
		logger.Warn("fetch failed", "error", err)
		p.notifier.Notify("Data Fetch Error ❌", "Error: "+err.Error())
		p.record(now, OutcomeFetchError, err.Error())
		return
	}
	p.notifier.Notify("Data Fetch Success ✅", "Data fetched successfully from NSE")

	date, err := chain.DeriveTradingDate(snap.Timestamp)
	if err != nil {
		logger.Warn("snapshot carries unusable timestamp", "timestamp", snap.Timestamp, "error", err)
		p.notifier.Notify("Data Fetch Error ❌", "Error: "+err.Error())
		p.record(now, OutcomeBadTimestamp, err.Error())
		return
	}

	existing, err := p.store.Load(ctx, date)
	if err != nil {
		// Do not guess an empty aggregate here: merging onto a default would
		// double-record every strike once the store comes back.
		logger.Error("load failed", "date", date, "error", err)
		p.notifier.Notify("Data Load Error ❌", "Error: "+err.Error())
		p.record(now, OutcomeLoadError, err.Error())
		return
	}

	agg, outcome := chain.Merge(existing, *snap, date)
	if outcome == chain.Duplicate {
		logger.Info("timestamp already recorded, skipping save",
			"date", date,
			"timestamp", snap.Timestamp,
		)
		p.notifier.Notify("Data Update Skipped ⏭️", "Timestamp already exists in the database")
		p.record(now, OutcomeDuplicate, snap.Timestamp)
		return
	}

	if err := p.store.Save(ctx, agg); err != nil {
		// The computed aggregate is discarded; the next cycle reloads and
		// re-merges from whatever the store then holds.
		logger.Error("save failed", "date", date, "error", err)
		p.notifier.Notify("Data Save Error ❌", "Error: "+err.Error())
		p.record(now, OutcomeSaveError, err.Error())
		return
	}

	logger.Info("cycle complete",
		"date", date,
		"outcome", outcome,
		"timestamp", snap.Timestamp,
		"timestamps_total", len(agg.SeenTimestamps),
		"strikes_total", len(agg.Strikes),
	)
	p.notifier.Notify("Data Updated Successfully ✅", "Document updated with new data and timestamp")
	p.record(now, OutcomeStored, date+" @ "+snap.Timestamp)
}

func (p *Poller) record(at time.Time, outcome, detail string) {
	p.last.Store(CycleStatus{At: at, Outcome: outcome, Detail: detail})
}
