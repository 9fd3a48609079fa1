// internal/api/api_test.go

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-concierge/internal/common/config"
	"crm-concierge/internal/common/database"
	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/core/aggregator"
	"crm-concierge/internal/core/planner"
	"crm-concierge/internal/models"
	"crm-concierge/internal/nlu"
)

type stubParser struct {
	result *nlu.ParseResult
	err    error
}

func (s stubParser) Parse(ctx context.Context, query, history, language string) (*nlu.ParseResult, error) {
	return s.result, s.err
}

type stubSummarizer struct{ text string }

func (s stubSummarizer) Summarize(ctx context.Context, intent models.Intent, rows []map[string]interface{}, language string, mode models.Mode) (string, error) {
	return s.text, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "concierge", Version: "test"},
		Server: config.ServerConfig{RateLimitPerSec: 100, RateLimitBurst: 100},
		Query:  config.QueryConfig{MaxLimit: 500, DefaultLimit: 50, Timeout: 5000},
	}
}

func newTestRouter(t *testing.T, parsed *nlu.ParseResult) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	client := &database.PostgresClient{DB: db}
	cfg := testConfig()
	log := logger.NewNoOpLogger()
	agg := aggregator.New(client, log, 5*time.Second)
	pl := planner.New(cfg.Query.MaxLimit)

	svc := NewService(cfg, log, client, agg, pl, stubParser{result: parsed}, stubSummarizer{text: "Here you go."}, nil)
	return NewRouter(svc, cfg, log, nil), mock
}

func postQuery(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/mvp/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func expectKnownIdentity(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT 1 FROM query_masters WHERE user_mobile LIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
}

// ==========================
// POST /mvp/query
// ==========================

func TestPostQuery_CustomerNeverSeesSensitiveFields(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{
		Intent:    models.IntentPaymentStatus,
		Entities:  map[string]string{"query_id": "FS1234"},
		NeedsData: true,
	})

	expectKnownIdentity(mock)
	mock.ExpectQuery(`SELECT[\s\S]*FROM query_payments qp`).
		WillReturnRows(sqlmock.NewRows([]string{
			"query_id", "pending_amount", "recieved_amount", "gross_profit", "supplier_amount",
		}).AddRow("FS1234", 5000.0, 45000.0, 12000.0, 33000.0))

	w := postQuery(t, r, map[string]interface{}{
		"identity": "+91 98765 43210",
		"mode":     "customer",
		"query":    "payment status for FS1234",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FS1234", data["query_id"])
	assert.Contains(t, data, "pending_amount")
	assert.NotContains(t, data, "gross_profit")
	assert.NotContains(t, data, "supplier_amount")
	assert.Equal(t, 1, resp.Metadata.Rows)
}

func TestPostQuery_OperatorKeepsFullRows(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{
		Intent:    models.IntentPaymentStatus,
		Entities:  map[string]string{"query_id": "FS1234"},
		NeedsData: true,
	})

	expectKnownIdentity(mock)
	mock.ExpectQuery(`SELECT[\s\S]*FROM query_payments qp`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "gross_profit"}).
			AddRow("FS1234", 12000.0))

	w := postQuery(t, r, map[string]interface{}{
		"identity": "9876543210",
		"mode":     "operator",
		"query":    "payment status for FS1234",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Contains(t, data, "gross_profit")
}

func TestPostQuery_MissingIdentifierFallsBackToList(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{
		Intent:    models.IntentPaymentStatus,
		Entities:  map[string]string{},
		NeedsData: true,
	})

	expectKnownIdentity(mock)
	mock.ExpectQuery(`SELECT[\s\S]*FROM query_payments qp[\s\S]*LIMIT \$2 OFFSET \$3`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "pending_amount"}).
			AddRow("FS1234", 5000.0).AddRow("FS5678", 0.0))

	w := postQuery(t, r, map[string]interface{}{
		"identity": "9876543210",
		"query":    "what is my payment status",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.IntentListPayments, resp.Intent)
	assert.Equal(t, 2, resp.Metadata.Rows)
	assert.Equal(t, models.IntentPaymentStatus, resp.Metadata.FallbackFrom)
}

func TestPostQuery_GlobalIdentityServesRollup(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{
		Intent:    models.IntentListQueries,
		NeedsData: true,
	})

	// The rollup reads run concurrently; no scoped template may execute.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT \* FROM query_flight_manages ORDER BY departure_datetime DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "pnr"}).AddRow("FS1001", "ABC123"))
	mock.ExpectQuery(`SELECT \* FROM query_payments ORDER BY id DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}).AddRow("FS1001"))
	mock.ExpectQuery(`SELECT \* FROM query_masters ORDER BY created_at DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "query_stage"}).AddRow("FS1001", "booked"))
	mock.ExpectQuery(`SELECT \* FROM query_activities ORDER BY date DESC`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	mock.ExpectQuery(`SELECT SUM\(recieved_amount\)`).
		WillReturnRows(sqlmock.NewRows([]string{"total_revenue", "total_pending"}).
			AddRow(450000.0, 32000.0))
	mock.ExpectQuery(`SELECT query_stage, COUNT\(query_id\)`).
		WillReturnRows(sqlmock.NewRows([]string{"query_stage", "count"}).
			AddRow("booked", 7).AddRow("quoted", 3))

	w := postQuery(t, r, map[string]interface{}{
		"identity": "ALL",
		"mode":     "operator",
		"query":    "how is the pipeline looking",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["global_mode"])

	stats, ok := data["stats"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 450000.0, stats["total_revenue"])

	queries, ok := data["recent_queries"].([]interface{})
	require.True(t, ok)
	require.Len(t, queries, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostQuery_GlobalIdentityRequiresOperator(t *testing.T) {
	r, _ := newTestRouter(t, &nlu.ParseResult{Intent: models.IntentListQueries, NeedsData: true})

	w := postQuery(t, r, map[string]interface{}{
		"identity": "ALL",
		"mode":     "customer",
		"query":    "show everything",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.ErrorCode)
	assert.Empty(t, resp.Details)
}

func TestPostQuery_UnknownIdentityRejected(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{Intent: models.IntentListQueries, NeedsData: true})

	mock.ExpectQuery(`SELECT 1 FROM query_masters WHERE user_mobile LIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	w := postQuery(t, r, map[string]interface{}{
		"identity": "0000000000",
		"query":    "show my bookings",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPostQuery_ChatOnlySkipsStore(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{
		Intent:          models.IntentGreeting,
		FriendlyMessage: "Hello! How can I help?",
	})

	expectKnownIdentity(mock)

	w := postQuery(t, r, map[string]interface{}{
		"identity": "9876543210",
		"query":    "hi",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.IntentGreeting, resp.Intent)
	assert.Equal(t, "Hello! How can I help?", resp.Summary)
	assert.Nil(t, resp.Data)
	assert.Nil(t, resp.Metadata)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostQuery_DatabaseErrorEnvelope(t *testing.T) {
	r, mock := newTestRouter(t, &nlu.ParseResult{
		Intent:    models.IntentListBookings,
		NeedsData: true,
	})

	expectKnownIdentity(mock)
	mock.ExpectQuery(`SELECT[\s\S]*FROM query_flight_manages qf`).
		WillReturnError(assert.AnError)

	w := postQuery(t, r, map[string]interface{}{
		"identity": "9876543210",
		"query":    "my bookings",
	})

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DATABASE_ERROR", resp.ErrorCode)
	assert.Empty(t, resp.Details)
}

func TestPostQuery_BadBody(t *testing.T) {
	r, _ := newTestRouter(t, &nlu.ParseResult{})

	w := postQuery(t, r, map[string]interface{}{"identity": "9876543210"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
}

// ==========================
// GET /mvp/user-data
// ==========================

func TestGetUserData_CustomerDropsMarkupsBundle(t *testing.T) {
	r, mock := newTestRouter(t, nil)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(`SELECT \* FROM query_masters WHERE user_mobile LIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "user_name"}).AddRow("FS1001", "Asha"))
	mock.ExpectQuery(`SELECT \* FROM query_flight_manages WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	mock.ExpectQuery(`SELECT \* FROM query_payments WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "supplier_amount"}).AddRow("FS1001", 33000.0))
	mock.ExpectQuery(`SELECT \* FROM query_quotations WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	mock.ExpectQuery(`SELECT \* FROM query_masters WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	mock.ExpectQuery(`SELECT \* FROM query_activities WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	mock.ExpectQuery(`SELECT \* FROM query_payment_schedulers WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id"}))
	mock.ExpectQuery(`SELECT \* FROM query_activity_markups WHERE query_id = ANY`).
		WillReturnRows(sqlmock.NewRows([]string{"query_id", "markup_value"}).AddRow("FS1001", 500.0))

	req := httptest.NewRequest(http.MethodGet, "/mvp/user-data?mobile=9876543210&mode=customer", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)

	assert.NotContains(t, resp.Data, "markups")
	payments := resp.Data["recent_payments"].([]interface{})
	require.Len(t, payments, 1)
	assert.NotContains(t, payments[0].(map[string]interface{}), "supplier_amount")
}

// ==========================
// Misc routes
// ==========================

func TestGetIntents(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/mvp/intents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Intents []map[string]interface{} `json:"intents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Intents, len(models.DataIntents))
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	limiter := NewRateLimiter(1, 2)
	r.GET("/ping", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping?mobile=9876543210", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
