// internal/core/aggregator/aggregator.go

// Package aggregator assembles the context bundle handed to the language
// model: a fixed fan-out of bounded reads over the caller's records, or a
// global rollup for the operator wildcard identity.
package aggregator

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/common/metrics"
	"crm-concierge/internal/models"
)

// Executor runs a read-only query and returns generic row maps. Satisfied by
// database.PostgresClient; tests substitute sqlmock-backed clients.
type Executor interface {
	Select(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
}

// Row is one generic result row.
type Row = map[string]interface{}

// Bundle is the assembled context. Bundle keys are part of the response
// contract; the sanitizer drops the markups key for customer mode.
type Bundle map[string]interface{}

const (
	recentPerTable   = 5
	markupLimit      = 10
	globalRecentRows = 20
)

// Aggregator fans out the context reads against a single executor.
type Aggregator struct {
	exec    Executor
	log     logger.Logger
	timeout time.Duration
}

func New(exec Executor, log logger.Logger, timeout time.Duration) *Aggregator {
	return &Aggregator{exec: exec, log: log, timeout: timeout}
}

// Fetch dispatches on identity: the operator wildcard gets the global rollup,
// everyone else gets their own scoped bundle.
func (a *Aggregator) Fetch(ctx context.Context, identity string) (Bundle, error) {
	if identity == models.GlobalIdentity {
		return a.FetchGlobal(ctx)
	}
	return a.FetchScoped(ctx, identity)
}

// FetchScoped builds the per-identity bundle. A single prerequisite read
// resolves both the profile (the newest record) and the full ID set the
// identity owns; every dependent read is then scoped to exactly those IDs,
// so a row can never leak across identities. All dependent reads run
// concurrently and the whole bundle fails if any one of them fails.
func (a *Aggregator) FetchScoped(ctx context.Context, identity string) (Bundle, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues("scoped").Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	mobile := "%" + identity

	ownRows, err := a.exec.Select(ctx,
		`SELECT * FROM query_masters WHERE user_mobile LIKE $1 ORDER BY created_at DESC`,
		mobile)
	if err != nil {
		return nil, fmt.Errorf("fetch identity records: %w", err)
	}

	profile := Row{}
	if len(ownRows) > 0 {
		profile = ownRows[0]
	}

	ids := make([]string, 0, len(ownRows))
	for _, r := range ownRows {
		if id, ok := r["query_id"]; ok && id != nil {
			ids = append(ids, fmt.Sprintf("%v", id))
		}
	}

	bundle := Bundle{
		"profile":           profile,
		"recent_bookings":   []Row{},
		"recent_payments":   []Row{},
		"recent_quotations": []Row{},
		"recent_queries":    []Row{},
		"recent_activities": []Row{},
		"payment_schedules": []Row{},
		"markups":           []Row{},
		"agent_info":        Row{},
	}

	// An identity with no records gets the empty bundle without touching
	// the dependent tables.
	if len(ids) == 0 {
		a.log.Debug("no records for identity, returning empty bundle",
			map[string]interface{}{"identity": models.MaskIdentity(identity)})
		return bundle, nil
	}

	dependent := []struct {
		key   string
		query string
		limit int
	}{
		{"recent_bookings", `SELECT * FROM query_flight_manages WHERE query_id = ANY($1) ORDER BY departure_datetime DESC LIMIT $2`, recentPerTable},
		{"recent_payments", `SELECT * FROM query_payments WHERE query_id = ANY($1) LIMIT $2`, recentPerTable},
		{"recent_quotations", `SELECT * FROM query_quotations WHERE query_id = ANY($1) ORDER BY sent_at DESC LIMIT $2`, recentPerTable},
		{"recent_queries", `SELECT * FROM query_masters WHERE query_id = ANY($1) ORDER BY created_at DESC LIMIT $2`, recentPerTable},
		{"recent_activities", `SELECT * FROM query_activities WHERE query_id = ANY($1) ORDER BY date ASC LIMIT $2`, recentPerTable},
		{"payment_schedules", `SELECT * FROM query_payment_schedulers WHERE query_id = ANY($1) ORDER BY payment_date ASC LIMIT $2`, recentPerTable},
		{"markups", `SELECT * FROM query_activity_markups WHERE query_id = ANY($1) LIMIT $2`, markupLimit},
	}

	results := make([][]Row, len(dependent))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dependent {
		g.Go(func() error {
			rows, err := a.exec.Select(gctx, d.query, pq.Array(ids), d.limit)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", d.key, err)
			}
			results[i] = rows
			return nil
		})
	}

	// The agent read depends on the profile's admin_ref, not the ID set.
	var agent []Row
	if ref, ok := profile["admin_ref"]; ok && ref != nil {
		g.Go(func() error {
			rows, err := a.exec.Select(gctx,
				`SELECT * FROM master_admins WHERE m_code = $1 LIMIT 1`, ref)
			if err != nil {
				return fmt.Errorf("fetch agent_info: %w", err)
			}
			agent = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, d := range dependent {
		bundle[d.key] = results[i]
	}
	if len(agent) > 0 {
		bundle["agent_info"] = agent[0]
	}

	return bundle, nil
}

// FetchGlobal builds the cross-identity rollup for the operator wildcard:
// the most recent rows per table plus revenue and pipeline aggregates.
func (a *Aggregator) FetchGlobal(ctx context.Context) (Bundle, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues("global").Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	reads := []struct {
		key   string
		query string
	}{
		{"recent_bookings", `SELECT * FROM query_flight_manages ORDER BY departure_datetime DESC LIMIT $1`},
		{"recent_payments", `SELECT * FROM query_payments ORDER BY id DESC LIMIT $1`},
		{"recent_queries", `SELECT * FROM query_masters ORDER BY created_at DESC LIMIT $1`},
		{"recent_activities", `SELECT * FROM query_activities ORDER BY date DESC LIMIT $1`},
	}

	results := make([][]Row, len(reads))
	var aggPayments, aggStages []Row

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range reads {
		g.Go(func() error {
			rows, err := a.exec.Select(gctx, r.query, globalRecentRows)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", r.key, err)
			}
			results[i] = rows
			return nil
		})
	}
	g.Go(func() error {
		rows, err := a.exec.Select(gctx,
			`SELECT SUM(recieved_amount) AS total_revenue, SUM(pending_amount) AS total_pending FROM query_payments`)
		if err != nil {
			return fmt.Errorf("fetch payment rollup: %w", err)
		}
		aggPayments = rows
		return nil
	})
	g.Go(func() error {
		rows, err := a.exec.Select(gctx,
			`SELECT query_stage, COUNT(query_id) AS count FROM query_masters GROUP BY query_stage`)
		if err != nil {
			return fmt.Errorf("fetch stage rollup: %w", err)
		}
		aggStages = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := Row{
		"total_revenue": nil,
		"total_pending": nil,
		"query_stats":   aggStages,
	}
	if len(aggPayments) > 0 {
		stats["total_revenue"] = aggPayments[0]["total_revenue"]
		stats["total_pending"] = aggPayments[0]["total_pending"]
	}

	bundle := Bundle{
		"global_mode": true,
		"stats":       stats,
	}
	for i, r := range reads {
		bundle[r.key] = results[i]
	}
	return bundle, nil
}
