package datasource

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// Aggregator fetches the raw records from every registered source
// concurrently. A failing or empty source contributes nothing; the run
// degrades to whatever the remaining sources deliver.
type Aggregator struct {
	registry *Registry
	timeout  time.Duration
	log      zerolog.Logger
}

// NewAggregator creates an aggregator over the registry. timeout bounds
// each individual source fetch.
func NewAggregator(registry *Registry, timeout time.Duration, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		registry: registry,
		timeout:  timeout,
		log:      log,
	}
}

// FetchAll fetches from all sources in parallel and returns the records in
// priority order. It never fails: sources that error out are logged and
// skipped.
func (a *Aggregator) FetchAll(ctx context.Context, ticker string) []*models.RawSourceRecord {
	sources := a.registry.Ordered()
	results := make([]*models.RawSourceRecord, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			fctx := gctx
			if a.timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, a.timeout)
				defer cancel()
			}

			rec, err := src.Fetch(fctx, ticker)
			if err != nil {
				a.log.Warn().
					Str("source", src.Name()).
					Str("ticker", ticker).
					Err(err).
					Msg("source fetch failed")
				return nil // non-fatal
			}
			results[i] = rec
			return nil
		})
	}
	_ = g.Wait()

	records := make([]*models.RawSourceRecord, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records
}
