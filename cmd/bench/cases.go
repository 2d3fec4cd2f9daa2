// README: Runner checks for the quote and booking API; includes HTTP, DB, Redis, concurrency and load checks.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client

	// Filled in by earlier checks and reused by later ones.
	quoteID   string
	total     int64
	bookingID string
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

type quoteResp struct {
	ID        string `json:"id"`
	Breakdown struct {
		TotalWithVAT int64 `json:"total_with_vat"`
		VATAmount    int64 `json:"vat_amount"`
		PlatformFee  int64 `json:"platform_fee"`
		DriverShare  int64 `json:"driver_share"`
	} `json:"breakdown"`
}

type bookingResp struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	AmountDue struct {
		Amount int64 `json:"amount"`
	} `json:"amount_due"`
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
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
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
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

var sampleMove = map[string]any{
	"pickup_address":   "10 Downing Street, London SW1A 2AA",
	"delivery_address": "1 Broad Street, Birmingham B1 2HF",
	"van_size":         "medium",
	"helpers":          1,
	"pickup_floor":     "second_floor",
	"urgency":          "standard",
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{
			Name: "Env: Postgres connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.db.Ping(ctx); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Env: Redis connect",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: apply (optional)",
			Run: func(ctx context.Context, r *Runner) Result {
				if !r.cfg.ApplyMigration {
					return Result{Status: statusSkip, Note: "apply-migration=false"}
				}
				if r.db == nil {
					return Result{Status: statusFail, Note: "db not configured"}
				}
				sql, err := os.ReadFile(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, s := range splitSQL(string(sql)) {
					if _, err := r.db.Exec(ctx, s); err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Migration: tables exist",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "db not configured"}
				}
				tables, err := extractTables(r.cfg.MigrationPath)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				for _, t := range tables {
					var exists bool
					err := r.db.QueryRow(ctx,
						"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
						t,
					).Scan(&exists)
					if err != nil {
						return Result{Status: statusFail, Note: err.Error()}
					}
					if !exists {
						return Result{Status: statusFail, Note: "missing table: " + t}
					}
				}
				return Result{Status: statusPass}
			},
		},
		{
			Name: "Cache: routing keys present",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				keys, _, err := r.redis.Scan(ctx, 0, "route:*", 100).Result()
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass, Note: fmt.Sprintf("keys=%d", len(keys))}
			},
		},

		httpCaseMethod("API: health", http.MethodGet, base+"/health", nil, []int{200}),
		httpCaseMethod("API: metrics exposed", http.MethodGet, base+"/metrics", nil, []int{200}),

		// Quotes
		{
			Name: "Quote: detailed (valid)",
			Run: func(ctx context.Context, r *Runner) Result {
				var q quoteResp
				status, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/quotes", sampleMove, &q)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusCreated {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				b := q.Breakdown
				if b.DriverShare+b.PlatformFee+b.VATAmount != b.TotalWithVAT {
					return Result{Status: statusFail, Latency: latency, Note: "split does not add up to total"}
				}
				r.quoteID, r.total = q.ID, b.TotalWithVAT
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("total=%d", b.TotalWithVAT)}
			},
		},
		{
			Name: "Quote: same request prices the same",
			Run: func(ctx context.Context, r *Runner) Result {
				var q struct {
					TotalWithVAT int64 `json:"total_with_vat"`
				}
				status, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/quotes/simple", sampleMove, &q)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusCreated || q.TotalWithVAT != r.total {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d total=%d want=%d", status, q.TotalWithVAT, r.total)}
				}
				return Result{Status: statusPass, Latency: latency}
			},
		},
		httpCase("Quote: missing addresses still priced", base+"/api/quotes", map[string]any{}, []int{201}),
		httpCase("Quote: non-object body -> 400", base+"/api/quotes", "{", []int{400}),
		httpCase("Quote: helpers out of range -> 400", base+"/api/quotes", map[string]any{
			"pickup_address":   "Leeds LS1 4AP",
			"delivery_address": "York YO1 7HH",
			"helpers":          5,
		}, []int{400}),
		httpCase("Quote: unknown enums use defaults", base+"/api/quotes", map[string]any{
			"pickup_address":   "Leeds LS1 4AP",
			"delivery_address": "York YO1 7HH",
			"van_size":         "spaceship",
			"urgency":          "yesterday",
		}, []int{201}),
		httpCase("Quote: unresolvable addresses still priced", base+"/api/quotes", map[string]any{
			"pickup_address":   "the old farmhouse",
			"delivery_address": "behind the church",
		}, []int{201}),
		{
			Name: "Quote: stored snapshot",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.quoteID == "" {
					return Result{Status: statusSkip, Note: "no quote created"}
				}
				var q quoteResp
				status, latency, err := r.doJSON(ctx, http.MethodGet, base+"/api/quotes/"+r.quoteID, nil, &q)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusOK || q.Breakdown.TotalWithVAT != r.total {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: statusPass, Latency: latency}
			},
		},

		// Bookings
		{
			Name: "Booking: create from quote",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.quoteID == "" {
					return Result{Status: statusSkip, Note: "no quote created"}
				}
				b, status, latency, err := r.createBooking(ctx, base)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				if status != http.StatusCreated || b.AmountDue.Amount != r.total {
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d amount=%d", status, b.AmountDue.Amount)}
				}
				r.bookingID = b.ID
				return Result{Status: statusPass, Latency: latency}
			},
		},
		httpCase("Booking: invalid email -> 400", base+"/api/bookings", map[string]any{
			"quote_id":       "00000000-0000-0000-0000-000000000000",
			"customer_name":  "Bench",
			"customer_email": "not-an-email",
		}, []int{400}),
		{
			Name: "Booking: checkout",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.bookingID == "" {
					return Result{Status: statusSkip, Note: "no booking created"}
				}
				status, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/bookings/"+r.bookingID+"/checkout", nil, nil)
				if err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				switch status {
				case http.StatusOK:
					return Result{Status: statusPass, Latency: latency}
				case http.StatusServiceUnavailable:
					return Result{Status: statusSkip, Latency: latency, Note: "payments not configured"}
				default:
					return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
			},
		},
		{
			Name: "Concurrency: only one cancel wins",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.quoteID == "" {
					return Result{Status: statusSkip, Note: "no quote created"}
				}
				b, status, _, err := r.createBooking(ctx, base)
				if err != nil || status != http.StatusCreated {
					return Result{Status: statusFail, Note: fmt.Sprintf("create booking: status=%d err=%v", status, err)}
				}
				return concurrentCancel(ctx, r, base+"/api/bookings/"+b.ID+"/cancel")
			},
		},

		// Load
		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/quotes/simple", sampleMove)
			},
		},
	}
}

func (r *Runner) createBooking(ctx context.Context, base string) (bookingResp, int, time.Duration, error) {
	var b bookingResp
	status, latency, err := r.doJSON(ctx, http.MethodPost, base+"/api/bookings", map[string]any{
		"quote_id":       r.quoteID,
		"customer_name":  "Bench Runner",
		"customer_email": "bench@example.com",
	}, &b)
	return b, status, latency, err
}

// doJSON sends body as JSON and decodes a 2xx response into out when non-nil.
func (r *Runner) doJSON(ctx context.Context, method, url string, body, out any) (int, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	latency := time.Since(start)
	if out != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, latency, err
		}
		return resp.StatusCode, latency, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, latency, nil
}

func httpCase(name, url string, body any, okStatuses []int) TestCase {
	return httpCaseMethod(name, http.MethodPost, url, body, okStatuses)
}

func httpCaseMethod(name, method, url string, body any, okStatuses []int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, latency, err := r.doJSON(ctx, method, url, body, nil)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			if contains(okStatuses, status) {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

func concurrentCancel(ctx context.Context, r *Runner, url string) Result {
	wg := sync.WaitGroup{}
	succ, conflict := 0, 0
	mu := sync.Mutex{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _, err := r.doJSON(ctx, http.MethodPost, url, map[string]any{"reason": "bench"}, nil)
			if err != nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case status >= 200 && status < 300:
				succ++
			case status == http.StatusConflict:
				conflict++
			}
		}()
	}
	wg.Wait()

	if succ == 1 {
		return Result{Status: statusPass, Note: fmt.Sprintf("success=%d conflict=%d", succ, conflict)}
	}
	return Result{Status: statusFail, Note: fmt.Sprintf("success=%d conflict=%d", succ, conflict)}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, err := r.doJSON(ctx, http.MethodPost, url, payload, nil)
				mu.Lock()
				if err != nil || status >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func contains(list []int, v int) bool {
	for _, i := range list {
		if i == v {
			return true
		}
	}
	return false
}

var createTableRe = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	matches := createTableRe.FindAllStringSubmatch(string(b), -1)
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
