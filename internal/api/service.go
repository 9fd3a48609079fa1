// internal/api/service.go

// Package api exposes the HTTP surface and orchestrates one request through
// understanding, planning, execution, sanitization and response assembly.
package api

import (
	"context"
	"time"

	"crm-concierge/internal/common/config"
	apperrors "crm-concierge/internal/common/errors"
	"crm-concierge/internal/common/logger"
	"crm-concierge/internal/common/metrics"
	"crm-concierge/internal/core/aggregator"
	"crm-concierge/internal/core/exposure"
	"crm-concierge/internal/core/planner"
	"crm-concierge/internal/core/respond"
	"crm-concierge/internal/models"
	"crm-concierge/internal/nlu"
	"crm-concierge/internal/session"
)

// enumerationIntent maps a detail intent to the list intent used when the
// caller did not say which record they mean.
var enumerationIntent = map[models.Intent]models.Intent{
	models.IntentBookingStatus:   models.IntentListBookings,
	models.IntentQuerySummary:    models.IntentListQueries,
	models.IntentQuotationDetail: models.IntentListQuotations,
	models.IntentPaymentStatus:   models.IntentListPayments,
	models.IntentPaymentSchedule: models.IntentListPayments,
	models.IntentActivityStatus:  models.IntentListQueries,
	models.IntentAdminInfo:       models.IntentListQueries,
}

// Service wires the request pipeline together. Every collaborator is an
// interface or a pure package, so handlers are testable without a real store
// or model.
type Service struct {
	cfg      *config.Config
	log      logger.Logger
	exec     aggregator.Executor
	agg      *aggregator.Aggregator
	planner  *planner.Planner
	parser   nlu.Parser
	summary  nlu.Summarizer
	sessions *session.Store
}

func NewService(
	cfg *config.Config,
	log logger.Logger,
	exec aggregator.Executor,
	agg *aggregator.Aggregator,
	pl *planner.Planner,
	parser nlu.Parser,
	summary nlu.Summarizer,
	sessions *session.Store,
) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		exec:     exec,
		agg:      agg,
		planner:  pl,
		parser:   parser,
		summary:  summary,
		sessions: sessions,
	}
}

func (s *Service) queryTimeout() time.Duration {
	return time.Duration(s.cfg.Query.Timeout) * time.Millisecond
}

// authorize normalizes the identity and enforces the global-scope gate.
func (s *Service) authorize(identity string, mode models.Mode) (string, *apperrors.AppError) {
	id := models.NormalizeIdentity(identity)
	if id == "" {
		return "", apperrors.NewValidationError("identity is required")
	}
	if id == models.GlobalIdentity && mode != models.ModeOperator {
		return "", apperrors.NewUnauthorizedError("global scope requires operator mode")
	}
	return id, nil
}

// identityKnown reports whether any record exists for the identity. The
// global sentinel is always known.
func (s *Service) identityKnown(ctx context.Context, identity string) (bool, error) {
	if identity == models.GlobalIdentity {
		return true, nil
	}
	rows, err := s.exec.Select(ctx,
		`SELECT 1 FROM query_masters WHERE user_mobile LIKE $1 LIMIT 1`,
		"%"+identity)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// HandleQuery runs the full pipeline for one message. The error return is
// always an *AppError ready for the envelope.
func (s *Service) HandleQuery(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	mode := models.ParseMode(req.Mode)

	identity, appErr := s.authorize(req.Identity, mode)
	if appErr != nil {
		return nil, appErr
	}

	known, err := s.identityKnown(ctx, identity)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if !known {
		return nil, apperrors.NewUnauthorizedError("no records for identity " + models.MaskIdentity(identity))
	}

	history := s.conversationHistory(ctx, identity, req.Context)

	parsed, err := s.parser.Parse(ctx, req.Query, history, req.Language)
	if err != nil {
		return nil, apperrors.NewLLMError(err)
	}

	// Explicit entities from the client override extracted ones.
	entities := make(map[string]string, len(parsed.Entities)+len(req.Entities))
	for k, v := range parsed.Entities {
		entities[k] = v
	}
	for k, v := range req.Entities {
		entities[k] = v
	}

	var resp *models.QueryResponse
	switch {
	case parsed.IsChatOnly():
		resp = respond.Chat(parsed.Intent, parsed.FriendlyMessage)
	case identity == models.GlobalIdentity:
		resp, appErr = s.runGlobalQuery(ctx, mode, parsed, entities)
		if appErr != nil {
			return nil, appErr
		}
	default:
		resp, appErr = s.runDataQuery(ctx, identity, mode, parsed, entities, req)
		if appErr != nil {
			return nil, appErr
		}
	}

	s.recordTurns(ctx, identity, req.Query, resp.Summary)
	return resp, nil
}

// runGlobalQuery serves the operator wildcard from the cross-identity rollup
// rather than a scoped template: binding the sentinel into a per-identity
// query would match nothing, and the rollup already answers every broad
// question the operator can ask.
func (s *Service) runGlobalQuery(
	ctx context.Context,
	mode models.Mode,
	parsed *nlu.ParseResult,
	entities map[string]string,
) (*models.QueryResponse, *apperrors.AppError) {
	bundle, err := s.agg.Fetch(ctx, models.GlobalIdentity)
	if err != nil {
		s.log.WithError(err).Error("global context fetch failed", map[string]interface{}{
			"intent": parsed.Intent,
		})
		return nil, apperrors.NewDatabaseError(err)
	}
	metrics.QueriesExecuted.WithLabelValues(string(parsed.Intent)).Inc()

	clean := exposure.SanitizeAny(respond.Normalize(map[string]interface{}(bundle)), mode)

	summary := parsed.FriendlyMessage
	if text, _ := s.summary.Summarize(ctx, parsed.Intent,
		[]map[string]interface{}{{"context": clean}}, parsed.ResponseLanguage, mode); text != "" {
		summary = text
	}

	return respond.Context(parsed.Intent, clean, entities, summary), nil
}

func (s *Service) runDataQuery(
	ctx context.Context,
	identity string,
	mode models.Mode,
	parsed *nlu.ParseResult,
	entities map[string]string,
	req *models.QueryRequest,
) (*models.QueryResponse, *apperrors.AppError) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.Query.DefaultLimit
	}

	intent := parsed.Intent
	plan, perr := s.planner.Plan(intent, entities, identity, limit, req.Offset)
	if perr != nil && perr.Kind == planner.NeedsEnumeration {
		// Fall back to listing the caller's own records so they can pick one.
		if listIntent, ok := enumerationIntent[intent]; ok {
			intent = listIntent
			plan, perr = s.planner.Plan(intent, entities, identity, limit, req.Offset)
		}
	}
	if perr != nil {
		return nil, respond.FromPlanError(perr)
	}

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout())
	defer cancel()

	rows, err := s.exec.Select(qctx, plan.Body, plan.Args()...)
	if err != nil {
		s.log.WithError(err).Error("query execution failed", map[string]interface{}{
			"intent": intent,
			"shape":  plan.Shape,
		})
		return nil, apperrors.NewDatabaseError(err)
	}
	metrics.QueriesExecuted.WithLabelValues(string(intent)).Inc()

	clean := sanitizeRows(rows, mode)

	summary := parsed.FriendlyMessage
	if text, _ := s.summary.Summarize(ctx, intent, clean, parsed.ResponseLanguage, mode); text != "" {
		summary = text
	}

	resp := respond.Success(plan, clean, entities, summary)
	if intent != parsed.Intent {
		resp.Metadata.FallbackFrom = parsed.Intent
	}
	return resp, nil
}

// sanitizeRows strips sensitive fields from executor rows and restores the
// concrete row-slice type the envelope expects.
func sanitizeRows(rows []map[string]interface{}, mode models.Mode) []map[string]interface{} {
	if mode == models.ModeOperator {
		return rows
	}
	list, ok := exposure.SanitizeAny(rows, mode).([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(list))
	for _, item := range list {
		if rec, ok := item.(map[string]interface{}); ok {
			out = append(out, rec)
		}
	}
	return out
}

// conversationHistory merges stored turns with any context the client sent;
// client-provided turns come last so they win recency.
func (s *Service) conversationHistory(ctx context.Context, identity string, extra []models.ContextTurn) string {
	var turns []models.ContextTurn
	if s.sessions != nil {
		stored, err := s.sessions.History(ctx, identity)
		if err != nil {
			s.log.WithError(err).Warn("session history unavailable", nil)
		} else {
			turns = stored
		}
	}
	turns = append(turns, extra...)
	return session.Render(turns)
}

func (s *Service) recordTurns(ctx context.Context, identity, query, reply string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Append(ctx, identity, models.ContextTurn{Role: "user", Message: query}); err != nil {
		s.log.WithError(err).Warn("failed to record user turn", nil)
		return
	}
	if reply != "" {
		if err := s.sessions.Append(ctx, identity, models.ContextTurn{Role: "bot", Message: reply}); err != nil {
			s.log.WithError(err).Warn("failed to record bot turn", nil)
		}
	}
}

// UserData returns the raw context bundle for the side panel, sanitized for
// the caller's mode.
func (s *Service) UserData(ctx context.Context, identity string, mode models.Mode) (map[string]interface{}, error) {
	id, appErr := s.authorize(identity, mode)
	if appErr != nil {
		return nil, appErr
	}

	bundle, err := s.agg.Fetch(ctx, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	clean := exposure.SanitizeAny(respond.Normalize(map[string]interface{}(bundle)), mode)
	out, ok := clean.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewInternalError(nil)
	}
	return out, nil
}
