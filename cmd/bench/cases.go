// README: Benchmark cases; parser accuracy on named transcripts, plus HTTP, DB, Redis, and throughput checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"tripintake/internal/modules/tripparse"
)

// benchNow anchors relative dates in the local parser cases (a Monday).
var benchNow = time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC)

type Runner struct {
	cfg    Config
	httpc  *http.Client
	db     *pgxpool.Pool
	redis  *redis.Client
	parser *tripparse.Parser
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name  string
	Focus string
	Run   func(ctx context.Context, r *Runner) Result
}

// want lists the expected fields of one transcript; zero values are not checked.
type want struct {
	Destination   string
	Start, End    string
	Travelers     int
	Budget        string
	Accommodation tripparse.Accommodation
	Interests     []string
	Transport     []string
	Fallback      bool
}

type transcriptCase struct {
	Name       string
	Transcript string
	Want       want
}

var transcriptCases = []transcriptCase{
	{"full sentence", "I'm going to Tokyo from July 10th to July 18th with 2 people",
		want{Destination: "Tokyo", Start: "2026-07-10", End: "2026-07-18", Travelers: 2}},
	{"party, budget, hotel", "party of 4, budget is $2000 per person, prefer a hotel",
		want{Travelers: 4, Budget: "2000", Accommodation: tripparse.AccommodationHotel}},
	{"two fields fall back", "Destination is London, budget is $2000 per person",
		want{Destination: "London", Budget: "2000", Fallback: true}},
	{"filler falls back", "um well you know I was just thinking about things honestly",
		want{Fallback: true}},
	{"interest set", "interested in food and culture, really into nightlife",
		want{Interests: []string{tripparse.InterestCulture, tripparse.InterestFood, tripparse.InterestNightlife}, Fallback: true}},
	{"spelled budget", "budget is two thousand dollars per person",
		want{Budget: "2000", Fallback: true}},
	{"transport union", "we'll get around by train and rent a car for the coast",
		want{Transport: []string{tripparse.TransportCarRental, tripparse.TransportPublic}, Fallback: true}},
	{"vacation rental", "we'd love a vacation rental",
		want{Accommodation: tripparse.AccommodationAirbnb, Fallback: true}},
	{"retry after verb", "going to fly to Paris",
		want{Destination: "Paris", Fallback: true}},
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 10 * time.Second},
		parser: tripparse.New(tripparse.WithClock(func() time.Time { return benchNow }), tripparse.WithLocation(time.UTC)),
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))

	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-7s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}

	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	out := []TestCase{
		{
			Name:  "Env: Postgres connect",
			Focus: "draft store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Env: Redis connect",
			Focus: "diagnostics store reachable",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: "SKIP", Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: apply (optional)",
			Focus: "apply migration SQL",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: "SKIP", Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: "FAIL", Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
				}
				return Result{Status: "PASS"}
			},
		},
		{
			Name:  "Migration: tables exist",
			Focus: "tables from the migration file exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: "SKIP", Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: "FAIL", Note: err.Error()}
					}
					if !exists {
						return Result{Status: "FAIL", Note: "missing table: " + t}
					}
				}
				return Result{Status: "PASS"}
			},
		},
	}

	for _, tc := range transcriptCases {
		out = append(out, parserCase(tc))
	}
	out = append(out, TestCase{
		Name:  "Perf: local parse throughput",
		Focus: "parser cost per transcript",
		Run:   localPerf,
	})

	if base == "" {
		return append(out, skipCase("API: all HTTP cases", "base-url not set"))
	}
	out = append(out,
		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, "", []int{200}),
		httpCase("API: parse without token -> 401", base+"/api/trips/parse", map[string]any{
			"transcript": "going to Rome", "final": true,
		}, "", []int{401}),
	)
	if r.cfg.Token == "" {
		return append(out, skipCase("API: authenticated cases", "token not set"))
	}
	auth := "Bearer " + r.cfg.Token
	out = append(out,
		httpCase("API: parse (valid)", base+"/api/trips/parse", map[string]any{
			"transcript": "party of 4, budget is $2000 per person, prefer a hotel", "final": true,
		}, auth, []int{200}),
		httpCase("API: parse interim -> 422", base+"/api/trips/parse", map[string]any{
			"transcript": "going to Rome", "final": false,
		}, auth, []int{422}),
		httpCase("API: parse empty -> 400", base+"/api/trips/parse", map[string]any{
			"transcript": "   ", "final": true,
		}, auth, []int{400}),
		httpCase("API: create draft", base+"/api/trips/drafts", map[string]any{
			"transcript": "I'm going to Tokyo from July 10th, interested in food", "final": true,
		}, auth, []int{201}),
		httpCaseMethod("API: unknown draft -> 404", http.MethodGet, base+"/api/trips/drafts/bench-missing", nil, auth, []int{404}),
		TestCase{
			Name:  "Perf: HTTP parse throughput",
			Focus: "parse endpoint under load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/trips/parse", auth, map[string]any{
					"transcript": "I'm going to Tokyo from July 10th to July 18th with 2 people", "final": true,
				})
			},
		},
	)
	return out
}

func parserCase(tc transcriptCase) TestCase {
	return TestCase{
		Name:  "Parse: " + tc.Name,
		Focus: tc.Transcript,
		Run: func(_ context.Context, r *Runner) Result {
			start := time.Now()
			got := r.parser.Parse(tc.Transcript)
			latency := time.Since(start)
			if diffs := tc.Want.diff(got); len(diffs) > 0 {
				return Result{Status: "FAIL", Latency: latency, Note: strings.Join(diffs, "; ")}
			}
			return Result{Status: "PASS", Latency: latency}
		},
	}
}

func (w want) diff(got tripparse.TripFields) []string {
	var out []string
	check := func(name string, ok bool, have any) {
		if !ok {
			out = append(out, fmt.Sprintf("%s=%v", name, have))
		}
	}
	if w.Destination != "" {
		check("destination", got.Destination != nil && *got.Destination == w.Destination, deref(got.Destination))
	}
	if w.Start != "" {
		check("startDate", dateIs(got.StartDate, w.Start), deref(got.StartDate))
	}
	if w.End != "" {
		check("endDate", dateIs(got.EndDate, w.End), deref(got.EndDate))
	}
	if w.Travelers != 0 {
		check("travelers", got.Travelers != nil && *got.Travelers == w.Travelers, deref(got.Travelers))
	}
	if w.Budget != "" {
		check("budget", got.Budget != nil && *got.Budget == w.Budget, deref(got.Budget))
	}
	if w.Accommodation != "" {
		check("accommodation", got.Accommodation != nil && *got.Accommodation == w.Accommodation, deref(got.Accommodation))
	}
	if w.Interests != nil {
		check("interests", slices.Equal(got.Interests, w.Interests), got.Interests)
	}
	if w.Transport != nil {
		check("transportation", slices.Equal(got.Transportation, w.Transport), got.Transportation)
	}
	check("fallback", (got.SpecialRequests != nil) == w.Fallback, got.SpecialRequests != nil)
	return out
}

func dateIs(d *civil.Date, iso string) bool {
	return d != nil && d.String() == iso
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func localPerf(_ context.Context, r *Runner) Result {
	const rounds = 2000
	start := time.Now()
	for i := 0; i < rounds; i++ {
		tc := transcriptCases[i%len(transcriptCases)]
		r.parser.Parse(tc.Transcript)
	}
	elapsed := time.Since(start)
	return Result{Status: "PASS", Latency: elapsed / rounds, Note: fmt.Sprintf("rounds=%d total=%s", rounds, elapsed)}
}

func httpCase(name, url string, body any, auth string, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, auth, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, auth string, okStatuses []int) TestCase {
	return TestCase{
		Name:  name,
		Focus: "HTTP API",
		Run: func(ctx context.Context, r *Runner) Result {
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			if auth != "" {
				req.Header.Set("Authorization", auth)
			}
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if slices.Contains(okStatuses, resp.StatusCode) {
				return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
		},
	}
}

func skipCase(name, note string) TestCase {
	return TestCase{
		Name:  name,
		Focus: "Skipped",
		Run: func(context.Context, *Runner) Result {
			return Result{Status: "SKIP", Note: note}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url, auth string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count int64
	var errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(b)))
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("Authorization", auth)
				resp, err := r.httpc.Do(req)
				if err != nil {
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				mu.Lock()
				count++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
