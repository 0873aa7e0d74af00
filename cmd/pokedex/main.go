// Package main provides the pokedex CLI: it fetches the PokeAPI catalog,
// optionally filters it by type and prints the report to stdout.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/Sternrassler/pokedex-client/internal/config"
	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/fanout"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/Sternrassler/pokedex-client/pkg/pokedex"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// flags holds the command line overrides on top of the loaded config.
type flags struct {
	configPath  string
	limit       int
	logLevel    string
	dumpMetrics bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the pokedex command writing the report to stdout and
// logs, errors and the metrics dump to stderr.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "pokedex [type]",
		Short: "Print the first PokeAPI creatures, optionally filtered by type",
		Long: "pokedex fetches the PokeAPI catalog, loads every detail document concurrently\n" +
			"and prints one block per creature. The optional argument keeps only creatures\n" +
			"of that type.\n\n" + config.Usage(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return reportFailure(stderr, err)
			}
			if cmd.Flags().Changed("limit") {
				cfg.PokeAPI.Limit = f.limit
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = f.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return reportFailure(stderr, fmt.Errorf("invalid config: %w", err))
			}

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.Log.Level),
				Pretty: cfg.Log.Pretty,
				Output: stderr,
			})

			var token string
			if len(args) == 1 {
				token = pokedex.NormalizeToken(args[0])
			}

			runErr := run(cmd.Context(), cfg, token, stdout)

			if f.dumpMetrics {
				if err := metrics.WriteText(stderr, metrics.Gatherer); err != nil {
					log.Warn().Err(err).Msg("Failed to write metrics")
				}
			}

			if runErr != nil {
				return reportFailure(stderr, runErr)
			}
			return nil
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "pokedex.yaml", "Config file path (optional)")
	cmd.Flags().IntVar(&f.limit, "limit", pokeapi.DefaultLimit, "Number of creatures requested from the list endpoint")
	cmd.Flags().StringVar(&f.logLevel, "log-level", string(logging.LevelWarn), "Log level (debug, info, warn, error, disabled)")
	cmd.Flags().BoolVar(&f.dumpMetrics, "metrics", false, "Write Prometheus metrics to stderr after the run")

	return cmd
}

// run fetches, filters and prints. Nothing reaches stdout unless every fetch succeeded.
func run(ctx context.Context, cfg *config.Config, token string, stdout io.Writer) error {
	clientCfg := client.DefaultConfig(cfg.PokeAPI.UserAgent)
	clientCfg.RequestTimeout = cfg.PokeAPI.RequestTimeout

	if cfg.CacheEnabled() {
		manager, closeCache := openCache(ctx, cfg)
		defer closeCache()
		clientCfg.Cache = manager
	}

	api, err := client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	defer api.Close()

	svc, err := pokeapi.New(api, pokeapi.Config{
		BaseURL: cfg.PokeAPI.BaseURL,
		Limit:   cfg.PokeAPI.Limit,
		Fanout:  fanout.Config{MaxConcurrency: cfg.PokeAPI.MaxConcurrency},
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	records, err := svc.FetchAll(ctx)
	if err != nil {
		return err
	}

	filtered := pokedex.Filter(records, token)
	log.Info().
		Str("type", token).
		Int("fetched", len(records)).
		Int("kept", len(filtered)).
		Msg("Filter applied")

	return pokedex.NewReporter(stdout).Render(filtered, token)
}

// openCache connects the optional Redis cache. An unreachable Redis disables
// caching for the run instead of failing it.
func openCache(ctx context.Context, cfg *config.Config) (*cache.Manager, func()) {
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Cache.RedisAddr,
		DB:   cfg.Cache.RedisDB,
	})
	closeRedis := func() {
		if err := redisClient.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}

	opts := cache.DefaultOptions()
	opts.DefaultTTL = cfg.Cache.TTL
	manager := cache.NewManager(redisClient, opts)

	if err := manager.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("Redis unavailable, caching disabled")
		closeRedis()
		return nil, func() {}
	}

	log.Debug().Str("addr", cfg.Cache.RedisAddr).Msg("Connected to Redis")
	return manager, closeRedis
}

// reportFailure writes the diagnostic line and returns err for the exit code.
func reportFailure(stderr io.Writer, err error) error {
	class := "unknown"
	if c, ok := client.ClassOf(err); ok {
		class = string(c)
	}
	log.Debug().Err(err).Str("error_class", class).Msg("Run aborted")
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return err
}
