package datasource

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adalbertobrant/fundamentalistapro/pkg/models"
)

// fakeSource is a scripted Source for registry and aggregator tests.
type fakeSource struct {
	name  string
	rec   *models.RawSourceRecord
	err   error
	delay time.Duration
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, _ string) (*models.RawSourceRecord, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

func recordFor(source string, price float64) *models.RawSourceRecord {
	rec := models.NewRawSourceRecord(source, "PETR4")
	rec.SetNum(models.FieldPrice, price)
	return rec
}

func TestRegistryOrdered(t *testing.T) {
	reg := NewRegistry([]string{"fundamentus", "finnhub", "yfinance"})
	if err := reg.Register(&fakeSource{name: "yfinance"}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(&fakeSource{name: "fundamentus"}); err != nil {
		t.Fatal(err)
	}
	// finnhub intentionally not registered.

	ordered := reg.Ordered()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 ordered sources, got %d", len(ordered))
	}
	if ordered[0].Name() != "fundamentus" || ordered[1].Name() != "yfinance" {
		t.Errorf("order = [%s %s], want priority order", ordered[0].Name(), ordered[1].Name())
	}
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	reg := NewRegistry(nil)
	if err := reg.Register(&fakeSource{name: ""}); err == nil {
		t.Error("expected an error for an unnamed source")
	}
}

func TestAggregatorFetchAllPriorityOrder(t *testing.T) {
	reg := NewRegistry([]string{"fundamentus", "finnhub", "yfinance"})
	reg.Register(&fakeSource{name: "yfinance", rec: recordFor("yfinance", 31), delay: 10 * time.Millisecond})
	reg.Register(&fakeSource{name: "finnhub", rec: recordFor("finnhub", 30.5)})
	reg.Register(&fakeSource{name: "fundamentus", rec: recordFor("fundamentus", 30), delay: 20 * time.Millisecond})

	agg := NewAggregator(reg, time.Second, zerolog.Nop())
	records := agg.FetchAll(context.Background(), "PETR4")

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Order must follow priority, not completion time.
	want := []string{"fundamentus", "finnhub", "yfinance"}
	for i, rec := range records {
		if rec.Source != want[i] {
			t.Errorf("record %d from %s, want %s", i, rec.Source, want[i])
		}
	}
}

func TestAggregatorToleratesFailingSources(t *testing.T) {
	reg := NewRegistry([]string{"fundamentus", "finnhub"})
	reg.Register(&fakeSource{name: "fundamentus", err: fmt.Errorf("connection refused")})
	reg.Register(&fakeSource{name: "finnhub", rec: recordFor("finnhub", 30.5)})

	agg := NewAggregator(reg, time.Second, zerolog.Nop())
	records := agg.FetchAll(context.Background(), "PETR4")

	if len(records) != 1 || records[0].Source != "finnhub" {
		t.Fatalf("expected the surviving finnhub record, got %d records", len(records))
	}
}

func TestAggregatorAllSourcesFail(t *testing.T) {
	reg := NewRegistry([]string{"fundamentus"})
	reg.Register(&fakeSource{name: "fundamentus", err: ErrTickerNotFound})

	agg := NewAggregator(reg, time.Second, zerolog.Nop())
	records := agg.FetchAll(context.Background(), "XPTO3")

	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestAggregatorPerSourceTimeout(t *testing.T) {
	reg := NewRegistry([]string{"fundamentus", "finnhub"})
	reg.Register(&fakeSource{name: "fundamentus", rec: recordFor("fundamentus", 30), delay: 500 * time.Millisecond})
	reg.Register(&fakeSource{name: "finnhub", rec: recordFor("finnhub", 30.5)})

	agg := NewAggregator(reg, 50*time.Millisecond, zerolog.Nop())
	records := agg.FetchAll(context.Background(), "PETR4")

	if len(records) != 1 || records[0].Source != "finnhub" {
		t.Fatalf("slow source must time out, fast one must survive; got %d records", len(records))
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(20 * time.Millisecond)
	c.Set("k", 42)

	if v, ok := c.Get("k"); !ok || v.(int) != 42 {
		t.Fatalf("expected cached value, got %v %v", v, ok)
	}
	time.Sleep(30 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected the entry to expire")
	}
}

func TestRateLimiterCancellation(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected cancellation while waiting for a token")
	}
}
