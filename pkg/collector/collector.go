// Package collector implements the paginated collector: it walks a
// limit/offset-paginated gateway endpoint and accumulates every item into a
// single name→id mapping.
package collector

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for collection runs.
var (
	pagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontier_collector_pages_fetched_total",
		Help: "Total pages fetched across all collection runs",
	})

	itemsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frontier_collector_items_total",
		Help: "Total items inserted into mappings across all runs",
	})

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frontier_collector_runs_total",
		Help: "Collection runs by outcome",
	}, []string{"status"})
)

// Getter fetches a gateway endpoint and returns the response body.
// *gateway.Client satisfies it; tests substitute their own.
type Getter interface {
	Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error)
}

// SleepFunc pauses for d or until the context is done. Injectable so tests
// run without wall-clock waits.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds collector configuration.
type Config struct {
	// Endpoint is the paginated gateway endpoint path.
	Endpoint string `validate:"required,startswith=/"`

	// PageLimit is the page size requested on the initial call. The
	// effective page size is whatever the gateway reports back in
	// metadata.limit of the first response.
	PageLimit int `validate:"gte=1"`

	// PageDelay is the politeness pause between successful page requests.
	PageDelay time.Duration `validate:"gte=0"`

	// Sleep overrides the delay implementation. Defaults to a
	// context-aware sleep.
	Sleep SleepFunc `validate:"-"`
}

// DefaultConfig returns the standard solar systems collection configuration.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "/v2/solarsystems",
		PageLimit: 100,
		PageDelay: 100 * time.Millisecond,
	}
}

// Collector paginates a gateway endpoint and accumulates a name→id mapping.
// Runs are sequential and single-threaded; the only suspension points are
// network round-trips and the configured page delay.
type Collector struct {
	client Getter
	config Config
	logger zerolog.Logger
}

// New creates a collector.
func New(client Getter, cfg Config) (*Collector, error) {
	if client == nil {
		return nil, fmt.Errorf("gateway client is required")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("collector config validation: %w", err)
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepWithContext
	}

	return &Collector{
		client: client,
		config: cfg,
		logger: log.With().Str("component", "collector").Logger(),
	}, nil
}

// Collect fetches every item in the remote collection and returns the
// accumulated mapping.
//
// The initial request sizes the run: total and limit come from its metadata
// and are never re-read. If the initial request fails (after the gateway
// client's bounded retries), the run aborts and an empty mapping is returned
// together with the error, so callers that only look at the mapping still see
// the empty-means-failure contract.
//
// A later page failure stops the run at its cursor and returns the partial
// mapping with the error; no page is ever silently skipped.
func (c *Collector) Collect(ctx context.Context) (*Mapping, error) {
	mapping := NewMapping()
	start := time.Now()

	c.logger.Info().
		Str("endpoint", c.config.Endpoint).
		Int("limit", c.config.PageLimit).
		Msg("Fetching initial page to determine total items")

	body, err := c.client.Get(ctx, c.config.Endpoint, pageQuery(c.config.PageLimit, 0))
	if err != nil {
		runsTotal.WithLabelValues("aborted").Inc()
		c.logger.Error().Err(err).Msg("Initial request failed - aborting run")
		return mapping, fmt.Errorf("initial request: %w", err)
	}

	page, err := decodePage(body)
	if err != nil {
		runsTotal.WithLabelValues("aborted").Inc()
		c.logger.Error().Err(err).Msg("Initial page invalid - aborting run")
		return mapping, fmt.Errorf("initial request: %w", err)
	}

	// Fixed for the remainder of the run
	total := page.Metadata.Total
	limit := page.Metadata.Limit

	c.logger.Info().
		Int("total", total).
		Int("limit", limit).
		Int("estimated_requests", estimateRequests(total, limit)).
		Msg("Collection sized")

	c.insert(mapping, page)
	pagesFetchedTotal.Inc()

	c.logger.Info().
		Int("batch", 1).
		Int("items", len(page.Data)).
		Int("collected", mapping.Len()).
		Msg("Processed batch")

	batch := 2
	for offset := limit; offset < total; offset += limit {
		c.logger.Debug().
			Int("batch", batch).
			Int("offset", offset).
			Msg("Fetching batch")

		body, err := c.client.Get(ctx, c.config.Endpoint, pageQuery(limit, offset))
		if err != nil {
			runsTotal.WithLabelValues("failed").Inc()
			c.logger.Error().Err(err).Int("offset", offset).Msg("Page fetch failed - stopping run")
			return mapping, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		page, err := decodePage(body)
		if err != nil {
			runsTotal.WithLabelValues("failed").Inc()
			c.logger.Error().Err(err).Int("offset", offset).Msg("Page invalid - stopping run")
			return mapping, fmt.Errorf("page at offset %d: %w", offset, err)
		}

		c.insert(mapping, page)
		pagesFetchedTotal.Inc()

		c.logger.Info().
			Int("batch", batch).
			Int("items", len(page.Data)).
			Int("collected", mapping.Len()).
			Msg("Processed batch")

		batch++

		// Politeness pause between page requests
		if offset+limit < total {
			if err := c.config.Sleep(ctx, c.config.PageDelay); err != nil {
				runsTotal.WithLabelValues("failed").Inc()
				return mapping, err
			}
		}
	}

	runsTotal.WithLabelValues("completed").Inc()
	c.logger.Info().
		Int("collected", mapping.Len()).
		Dur("duration", time.Since(start)).
		Msg("Collection complete")

	return mapping, nil
}

// insert adds all page items; duplicate names overwrite (last-write-wins).
func (c *Collector) insert(mapping *Mapping, page *Page) {
	for _, item := range page.Data {
		mapping.Set(item.Name, item.ID)
	}
	itemsCollectedTotal.Add(float64(len(page.Data)))
}

// pageQuery builds the limit/offset query for one page request.
func pageQuery(limit, offset int) url.Values {
	return url.Values{
		"limit":  []string{strconv.Itoa(limit)},
		"offset": []string{strconv.Itoa(offset)},
	}
}

// estimateRequests returns ceil(total/limit), minimum 1.
func estimateRequests(total, limit int) int {
	if limit < 1 || total < 1 {
		return 1
	}
	return (total + limit - 1) / limit
}

// sleepWithContext is the default SleepFunc.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w during page delay", ctx.Err())
	case <-time.After(d):
		return nil
	}
}
