package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRefresher struct {
	mu     sync.Mutex
	scopes []string
	fail   map[string]bool
}

func (f *fakeRefresher) Refresh(_ context.Context, scope string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scopes = append(f.scopes, scope)
	if f.fail[scope] {
		return errors.New("refresh failed")
	}
	return nil
}

func (f *fakeRefresher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scopes)
}

type countingObserver struct {
	mu       sync.Mutex
	ok, errs int
}

func (o *countingObserver) ObserveCatalogRefresh(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.errs++
		return
	}
	o.ok++
}

func TestRefreshAll(t *testing.T) {
	r := &fakeRefresher{fail: map[string]bool{"europe": true}}
	obs := &countingObserver{}
	w := NewCatalogWarmer(r, obs, time.Hour, "global", "europe", "americas")

	w.refreshAll(context.Background())

	if got := r.calls(); got != 3 {
		t.Errorf("refreshed %d scopes, want 3 (failures must not stop the loop)", got)
	}
	if obs.ok != 2 || obs.errs != 1 {
		t.Errorf("observer ok=%d errs=%d, want 2 and 1", obs.ok, obs.errs)
	}
}

func TestRefreshAllStopsOnCancel(t *testing.T) {
	r := &fakeRefresher{}
	w := NewCatalogWarmer(r, nil, time.Hour, "global", "europe")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.refreshAll(ctx)

	if got := r.calls(); got != 0 {
		t.Errorf("refreshed %d scopes after cancel, want 0", got)
	}
}

func TestStartRunsImmediatelyAndStops(t *testing.T) {
	r := &fakeRefresher{}
	w := NewCatalogWarmer(r, nil, time.Hour, "global")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for r.calls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if r.calls() != 1 {
		t.Errorf("refreshed %d times, want 1", r.calls())
	}
}
