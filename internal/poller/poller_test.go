package poller

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kunnuv/niftyflow/internal/market"
	"github.com/kunnuv/niftyflow/internal/model"
)

// fetchFunc is a function adapter for Fetcher.
type fetchFunc func(context.Context) (*model.OptionChain, error)

func (f fetchFunc) OptionChain(ctx context.Context) (*model.OptionChain, error) {
	return f(ctx)
}

// memStore is an in-memory Store. Load returns a deep copy, like a real row
// deserialized from storage, so discarded merge results never leak back in.
type memStore struct {
	mu      sync.Mutex
	aggs    map[string]*model.DailyAggregate
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{aggs: make(map[string]*model.DailyAggregate)}
}

func (m *memStore) Load(ctx context.Context, date string) (*model.DailyAggregate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	agg, ok := m.aggs[date]
	if !ok {
		return nil, nil
	}
	data, _ := json.Marshal(agg)
	clone := &model.DailyAggregate{}
	json.Unmarshal(data, clone)
	return clone, nil
}

func (m *memStore) Save(ctx context.Context, agg *model.DailyAggregate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.aggs[agg.Date] = agg
	return nil
}

// recordingNotifier captures status labels in order.
type recordingNotifier struct {
	mu       sync.Mutex
	statuses []string
}

func (r *recordingNotifier) Notify(status, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *recordingNotifier) has(status string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Tuesday 12 Mar 2024, mid session and well clear of the holiday list.
var eligibleNow = time.Date(2024, time.March, 12, 10, 0, 0, 0, market.IST)

// sampleSnapshot's timestamp derives to trading date 2024-03-12.
func sampleSnapshot(ts string) *model.OptionChain {
	return &model.OptionChain{
		Timestamp: ts,
		Strikes: []model.StrikeQuote{
			{Strike: 22000, CE: &model.QuoteSide{OpenInterest: 10}, PE: &model.QuoteSide{OpenInterest: 20}},
		},
	}
}

func TestConfig_Interval(t *testing.T) {
	// 45 seconds per configured unit, exactly.
	if got := (Config{IntervalMinutes: 1}).Interval(); got != 45*time.Second {
		t.Errorf("Interval(1) = %v, want 45s", got)
	}
	if got := (Config{IntervalMinutes: 4}).Interval(); got != 3*time.Minute {
		t.Errorf("Interval(4) = %v, want 3m", got)
	}
}

func TestRunCycle_StoresSnapshot(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot("12-Mar-2024 10:00:00"), nil
	})

	p := New(DefaultConfig(), fetcher, store, notifier, nil)
	p.runCycle(context.Background(), eligibleNow)

	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}
	agg := store.aggs["2024-03-12"]
	if agg == nil {
		t.Fatal("no aggregate stored under 2024-03-12")
	}
	if len(agg.SeenTimestamps) != 1 || agg.SeenTimestamps[0] != "12-Mar-2024 10:00:00" {
		t.Errorf("seen timestamps = %v, want the snapshot timestamp", agg.SeenTimestamps)
	}
	if !notifier.has("Data Updated Successfully ✅") {
		t.Errorf("notifications = %v, want update success", notifier.statuses)
	}
	if got := p.LastCycle().Outcome; got != OutcomeStored {
		t.Errorf("last outcome = %q, want %q", got, OutcomeStored)
	}
}

func TestRunCycle_DuplicateTimestampSkipsSave(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot("12-Mar-2024 10:00:00"), nil
	})

	p := New(DefaultConfig(), fetcher, store, notifier, nil)
	p.runCycle(context.Background(), eligibleNow)
	p.runCycle(context.Background(), eligibleNow)

	if store.saves != 1 {
		t.Errorf("saves = %d, want 1 (second cycle is a duplicate)", store.saves)
	}
	if !notifier.has("Data Update Skipped ⏭️") {
		t.Errorf("notifications = %v, want a skip", notifier.statuses)
	}
	if len(store.aggs["2024-03-12"].SeenTimestamps) != 1 {
		t.Errorf("aggregate grew on a duplicate: %v", store.aggs["2024-03-12"].SeenTimestamps)
	}
	if got := p.LastCycle().Outcome; got != OutcomeDuplicate {
		t.Errorf("last outcome = %q, want %q", got, OutcomeDuplicate)
	}
}

func TestRunCycle_NewTimestampAppends(t *testing.T) {
	store := newMemStore()
	var ts string
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot(ts), nil
	})

	p := New(DefaultConfig(), fetcher, store, nil, nil)

	ts = "12-Mar-2024 10:00:00"
	p.runCycle(context.Background(), eligibleNow)
	ts = "12-Mar-2024 10:03:00"
	p.runCycle(context.Background(), eligibleNow)

	agg := store.aggs["2024-03-12"]
	if len(agg.SeenTimestamps) != 2 {
		t.Fatalf("seen timestamps = %v, want both", agg.SeenTimestamps)
	}
	if got := len(agg.Strikes[0].Points); got != 2 {
		t.Errorf("strike series length = %d, want 2", got)
	}
}

func TestRunCycle_OutsideWindowSkipsFetch(t *testing.T) {
	fetched := false
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		fetched = true
		return sampleSnapshot("x"), nil
	})
	notifier := &recordingNotifier{}

	p := New(DefaultConfig(), fetcher, newMemStore(), notifier, nil)

	preOpen := time.Date(2024, time.March, 12, 8, 0, 0, 0, market.IST)
	p.runCycle(context.Background(), preOpen)

	if fetched {
		t.Error("fetcher called outside the trading window")
	}
	if len(notifier.statuses) != 0 {
		t.Errorf("notifications = %v, want none for a window skip", notifier.statuses)
	}
	if got := p.LastCycle().Outcome; got != OutcomeSkippedWindow {
		t.Errorf("last outcome = %q, want %q", got, OutcomeSkippedWindow)
	}
}

func TestRunCycle_FetchErrorDoesNotLeakIntoNextCycle(t *testing.T) {
	store := newMemStore()
	notifier := &recordingNotifier{}
	calls := 0
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return sampleSnapshot("12-Mar-2024 10:03:00"), nil
	})

	p := New(DefaultConfig(), fetcher, store, notifier, nil)

	p.runCycle(context.Background(), eligibleNow)
	if store.saves != 0 {
		t.Fatalf("saves after failed fetch = %d, want 0", store.saves)
	}
	if !notifier.has("Data Fetch Error ❌") {
		t.Errorf("notifications = %v, want fetch error", notifier.statuses)
	}

	p.runCycle(context.Background(), eligibleNow)
	if store.saves != 1 {
		t.Errorf("saves after recovery = %d, want 1", store.saves)
	}
	if got := p.LastCycle().Outcome; got != OutcomeStored {
		t.Errorf("last outcome = %q, want %q after recovery", got, OutcomeStored)
	}
}

func TestRunCycle_LoadErrorAbortsCycle(t *testing.T) {
	store := newMemStore()
	store.loadErr = errors.New("connection pool exhausted")
	notifier := &recordingNotifier{}
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot("12-Mar-2024 10:00:00"), nil
	})

	p := New(DefaultConfig(), fetcher, store, notifier, nil)
	p.runCycle(context.Background(), eligibleNow)

	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 (never merge onto a guessed aggregate)", store.saves)
	}
	if !notifier.has("Data Load Error ❌") {
		t.Errorf("notifications = %v, want load error", notifier.statuses)
	}
}

func TestRunCycle_SaveErrorDiscardsAggregate(t *testing.T) {
	store := newMemStore()
	store.saveErr = errors.New("disk full")
	notifier := &recordingNotifier{}
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot("12-Mar-2024 10:00:00"), nil
	})

	p := New(DefaultConfig(), fetcher, store, notifier, nil)
	p.runCycle(context.Background(), eligibleNow)

	if !notifier.has("Data Save Error ❌") {
		t.Errorf("notifications = %v, want save error", notifier.statuses)
	}

	// Store recovers; the same snapshot must merge cleanly from scratch, not
	// replay a cached result on top of itself.
	store.saveErr = nil
	p.runCycle(context.Background(), eligibleNow)

	agg := store.aggs["2024-03-12"]
	if agg == nil {
		t.Fatal("no aggregate stored after store recovery")
	}
	if len(agg.SeenTimestamps) != 1 {
		t.Errorf("seen timestamps = %v, want exactly one", agg.SeenTimestamps)
	}
	if got := len(agg.Strikes[0].Points); got != 1 {
		t.Errorf("strike series length = %d, want 1", got)
	}
}

func TestRunCycle_MalformedTimestampAbortsCycle(t *testing.T) {
	store := newMemStore()
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot("garbage"), nil
	})

	p := New(DefaultConfig(), fetcher, store, nil, nil)
	p.runCycle(context.Background(), eligibleNow)

	if store.saves != 0 {
		t.Errorf("saves = %d, want 0 for an unusable timestamp", store.saves)
	}
	if got := p.LastCycle().Outcome; got != OutcomeBadTimestamp {
		t.Errorf("last outcome = %q, want %q", got, OutcomeBadTimestamp)
	}
}

func TestPoller_StartStop(t *testing.T) {
	fetcher := fetchFunc(func(ctx context.Context) (*model.OptionChain, error) {
		return sampleSnapshot("12-Mar-2024 10:00:00"), nil
	})

	p := New(DefaultConfig(), fetcher, newMemStore(), nil, nil)
	// Pin the clock outside the window so the loop idles deterministically.
	p.now = func() time.Time {
		return time.Date(2024, time.March, 16, 12, 0, 0, 0, market.IST)
	}

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The immediate first cycle must have run by the time Stop returns.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := p.LastCycle().Outcome; got != OutcomeSkippedWindow {
		t.Errorf("last outcome = %q, want %q", got, OutcomeSkippedWindow)
	}
}
