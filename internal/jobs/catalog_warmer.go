package jobs

import (
	"context"
	"log"
	"time"
)

// Refresher rebuilds a cached cause catalog.
type Refresher interface {
	Refresh(ctx context.Context, scope string) error
}

// RefreshObserver is notified of every refresh outcome.
type RefreshObserver interface {
	ObserveCatalogRefresh(err error)
}

// CatalogWarmer keeps the cached cause catalogs of a fixed set of scopes
// fresh so requests rarely pay for a rebuild.
type CatalogWarmer struct {
	catalog  Refresher
	observer RefreshObserver
	interval time.Duration
	scopes   []string
}

// NewCatalogWarmer creates a warmer for scopes. observer may be nil.
func NewCatalogWarmer(catalog Refresher, observer RefreshObserver, interval time.Duration, scopes ...string) *CatalogWarmer {
	return &CatalogWarmer{
		catalog:  catalog,
		observer: observer,
		interval: interval,
		scopes:   scopes,
	}
}

// Start begins the background refresh loop and blocks until ctx is done.
func (w *CatalogWarmer) Start(ctx context.Context) {
	log.Printf("Catalog warmer started (interval: %v, scopes: %v)", w.interval, w.scopes)

	// Run immediately on start
	w.refreshAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Catalog warmer stopped")
			return
		case <-ticker.C:
			w.refreshAll(ctx)
		}
	}
}

// refreshAll refreshes every scope, stopping early when ctx is done.
func (w *CatalogWarmer) refreshAll(ctx context.Context) {
	for _, scope := range w.scopes {
		if ctx.Err() != nil {
			return
		}

		err := w.catalog.Refresh(ctx, scope)
		if w.observer != nil {
			w.observer.ObserveCatalogRefresh(err)
		}
		if err != nil {
			log.Printf("Catalog warmer: failed to refresh %q: %v", scope, err)
		}
	}
}
