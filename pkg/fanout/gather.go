package fanout

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

var tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pokeapi_fanout_tasks_total",
	Help: "Fan-out tasks by result (ok, error, cancelled)",
}, []string{"result"})

// Config holds fan-out configuration.
type Config struct {
	// MaxConcurrency caps in-flight tasks. 0 means unbounded.
	MaxConcurrency int
}

// DefaultConfig returns an unbounded configuration.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 0}
}

// TaskFunc produces the result for one item.
type TaskFunc[T, R any] func(ctx context.Context, index int, item T) (R, error)

// Gather runs fn for every item concurrently and returns the results in input order.
// The first error cancels the context passed to the remaining tasks and is returned
// with a nil slice.
func Gather[T, R any](ctx context.Context, items []T, cfg Config, fn TaskFunc[T, R]) ([]R, error) {
	if cfg.MaxConcurrency < 0 {
		return nil, fmt.Errorf("max concurrency must be >= 0 (got %d)", cfg.MaxConcurrency)
	}

	logger := logging.NewLogger("fanout")
	start := time.Now()
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MaxConcurrency > 0 {
		g.SetLimit(cfg.MaxConcurrency)
	}

	logger.Debug().
		Int("tasks", len(items)).
		Int("max_concurrency", cfg.MaxConcurrency).
		Msg("Starting fan-out")

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			// Skip work once a sibling has failed
			if err := gctx.Err(); err != nil {
				tasksTotal.WithLabelValues("cancelled").Inc()
				return err
			}

			r, err := fn(gctx, i, item)
			if err != nil {
				tasksTotal.WithLabelValues("error").Inc()
				return fmt.Errorf("task %d: %w", i, err)
			}

			// Each goroutine owns exactly one slot
			results[i] = r
			tasksTotal.WithLabelValues("ok").Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Debug().
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("Fan-out aborted")
		return nil, err
	}

	logger.Debug().
		Int("tasks", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Fan-out complete")

	return results, nil
}
