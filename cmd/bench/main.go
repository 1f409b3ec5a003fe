// README: Benchmark runner for the intake service; runs parser accuracy, HTTP, DB, and Redis checks and prints results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

func main() {
	cfg := loadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	bench := NewRunner(cfg)
	results := bench.RunAll(ctx)

	fmt.Println("\n== Summary ==")
	pass, fail, skipped := 0, 0, 0
	for _, r := range results {
		switch r.Status {
		case "PASS":
			pass++
		case "FAIL":
			fail++
		case "SKIP":
			skipped++
		}
	}
	fmt.Printf("PASS=%d FAIL=%d SKIP=%d\n", pass, fail, skipped)

	if fail > 0 || (cfg.Strict && skipped > 0) {
		os.Exit(1)
	}
}

type Config struct {
	BaseURL        string
	Token          string
	DSN            string
	RedisAddr      string
	MigrationPath  string
	ApplyMigration bool
	Strict         bool
	Timeout        time.Duration
	Concurrency    int
	Duration       time.Duration
}

func loadConfig() Config {
	var cfg Config
	flag.StringVar(&cfg.BaseURL, "base-url", envOrDefault("TRIPINTAKE_BENCH_BASE_URL", ""), "API base URL; empty skips HTTP cases")
	flag.StringVar(&cfg.Token, "token", envOrDefault("TRIPINTAKE_BENCH_TOKEN", ""), "Bearer token for /api")
	flag.StringVar(&cfg.DSN, "dsn", envOrDefault("TRIPINTAKE_DB_DSN", ""), "Postgres DSN; empty skips DB cases")
	flag.StringVar(&cfg.RedisAddr, "redis", envOrDefault("TRIPINTAKE_REDIS_ADDR", ""), "Redis address; empty skips Redis cases")
	flag.StringVar(&cfg.MigrationPath, "migration", envOrDefault("TRIPINTAKE_BENCH_MIGRATION", "migrations/0001_trip_drafts.sql"), "Migration SQL path")
	flag.BoolVar(&cfg.ApplyMigration, "apply-migration", envOrDefaultBool("TRIPINTAKE_BENCH_APPLY_MIGRATION", false), "Apply migration SQL before tests")
	flag.BoolVar(&cfg.Strict, "strict", envOrDefaultBool("TRIPINTAKE_BENCH_STRICT", false), "Fail on skipped tests")
	flag.DurationVar(&cfg.Timeout, "timeout", envOrDefaultDuration("TRIPINTAKE_BENCH_TIMEOUT", 60*time.Second), "Total timeout")
	flag.IntVar(&cfg.Concurrency, "concurrency", envOrDefaultInt("TRIPINTAKE_BENCH_CONCURRENCY", 8), "Concurrency for perf tests")
	flag.DurationVar(&cfg.Duration, "duration", envOrDefaultDuration("TRIPINTAKE_BENCH_DURATION", 5*time.Second), "Duration for perf tests")
	flag.Parse()
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "1" || v == "true" || v == "yes"
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, _ = fmt.Sscanf(v, "%d", &n)
		if n > 0 {
			return n
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
