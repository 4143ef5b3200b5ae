// Command solarmap fetches every solar system from the EVE Frontier world
// API gateway and saves a name→id mapping as a JSON file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/frontier-tools/solarmap/pkg/collector"
	"github.com/frontier-tools/solarmap/pkg/gateway"
	"github.com/frontier-tools/solarmap/pkg/logging"
	"github.com/frontier-tools/solarmap/pkg/sink"
	"github.com/redis/go-redis/v9"
)

const sampleSize = 5

type appConfig struct {
	baseURL   string
	output    string
	pageLimit int
	userAgent string
	redisURL  string
	logLevel  string
	logPretty bool
}

func configFromEnv() appConfig {
	pageLimit, err := strconv.Atoi(getEnv("PAGE_LIMIT", "100"))
	if err != nil || pageLimit < 1 {
		pageLimit = 100
	}

	return appConfig{
		baseURL:   getEnv("BASE_URL", "https://blockchain-gateway-stillness.live.tech.evefrontier.com"),
		output:    getEnv("OUTPUT_FILE", "solar_systems_mapping.json"),
		pageLimit: pageLimit,
		userAgent: getEnv("USER_AGENT", "solarmap/0.1.0"),
		redisURL:  getEnv("REDIS_URL", ""),
		logLevel:  getEnv("LOG_LEVEL", "info"),
		logPretty: getEnv("LOG_PRETTY", "false") == "true",
	}
}

func main() {
	os.Exit(run(configFromEnv(), os.Stdout))
}

// run executes one collection. Exit codes: 0 complete, 1 run failed or
// incomplete, 2 configuration error.
func run(cfg appConfig, out io.Writer) int {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.logLevel),
		Pretty: cfg.logPretty,
		Output: os.Stderr,
	})

	ctx := context.Background()

	gatewayCfg := gateway.DefaultConfig(cfg.baseURL, cfg.userAgent)

	// Redis is optional; without it the run is simply uncached.
	if cfg.redisURL != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr: cfg.redisURL,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Str("redis", cfg.redisURL).Msg("Redis unavailable - running without cache")
		} else {
			logger.Info().Str("redis", cfg.redisURL).Msg("Response cache enabled")
			gatewayCfg.Redis = redisClient
		}
	}

	client, err := gateway.New(gatewayCfg)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid gateway configuration")
		return 2
	}

	collectorCfg := collector.DefaultConfig()
	collectorCfg.PageLimit = cfg.pageLimit

	col, err := collector.New(client, collectorCfg)
	if err != nil {
		logger.Error().Err(err).Msg("Invalid collector configuration")
		return 2
	}

	logger.Info().
		Str("base_url", cfg.baseURL).
		Str("output", cfg.output).
		Msg("Starting solar systems data collection")

	mapping, err := col.Collect(ctx)

	// Soft failure contract: an empty mapping means the run produced
	// nothing usable and no output file is written.
	if mapping.Len() == 0 {
		if err != nil {
			logger.Error().Err(err).Msg("Collection failed")
		}
		fmt.Fprintln(out, "Failed to create mapping.")
		return 1
	}

	exitCode := 0
	if err != nil {
		// Partial mapping: still usable, still persisted, but the run
		// did not complete.
		logger.Error().Err(err).Int("collected", mapping.Len()).Msg("Run incomplete - persisting partial mapping")
		exitCode = 1
	}

	fileSink := sink.NewFileSink(cfg.output)
	if werr := fileSink.Write(ctx, mapping); werr != nil {
		// Persistence failure does not invalidate the in-memory result.
		logger.Warn().Err(werr).Str("path", cfg.output).Msg("Failed to save mapping")
	}

	printSummary(out, mapping)
	return exitCode
}

func printSummary(out io.Writer, mapping *collector.Mapping) {
	fmt.Fprintf(out, "Created mapping with %d solar systems.\n", mapping.Len())
	fmt.Fprintln(out, "Sample mappings:")
	for _, e := range mapping.Sample(sampleSize) {
		fmt.Fprintf(out, "  '%s' -> %d\n", e.Name, e.ID)
	}
	if mapping.Len() > sampleSize {
		fmt.Fprintln(out, "  ...")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
