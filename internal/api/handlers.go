// internal/api/handlers.go
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "crm-concierge/internal/common/errors"
	"crm-concierge/internal/common/metrics"
	"crm-concierge/internal/core/catalog"
	"crm-concierge/internal/core/respond"
	"crm-concierge/internal/models"
)

// writeError renders the error envelope with mode-gated details.
func writeError(c *gin.Context, err error, mode models.Mode) {
	appErr := apperrors.AsAppError(err)
	metrics.RequestsFailed.WithLabelValues(string(appErr.Code)).Inc()
	c.JSON(apperrors.HTTPStatus(appErr.Code), respond.Error(appErr, mode))
}

// PostQuery handles POST /mvp/query.
func (s *Service) PostQuery(c *gin.Context) {
	metrics.RequestsActive.Inc()
	defer metrics.RequestsActive.Dec()

	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError(err.Error()), models.ModeCustomer)
		return
	}
	mode := models.ParseMode(req.Mode)

	resp, err := s.HandleQuery(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, mode)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetUserData handles GET /mvp/user-data, the raw side-panel bundle.
func (s *Service) GetUserData(c *gin.Context) {
	mode := models.ParseMode(c.Query("mode"))
	identity := c.Query("mobile")

	data, err := s.UserData(c.Request.Context(), identity, mode)
	if err != nil {
		writeError(c, err, mode)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// GetIntents handles GET /mvp/intents: the queryable catalog, for clients
// that render suggestion chips.
func (s *Service) GetIntents(c *gin.Context) {
	out := make([]gin.H, 0, len(catalog.All()))
	for _, t := range catalog.All() {
		out = append(out, gin.H{
			"intent":      t.Intent,
			"description": t.Description,
			"required":    t.Required,
			"optional":    t.Optional,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "intents": out})
}

// GetUsers handles GET /mvp/users: distinct identities for the demo panel.
func (s *Service) GetUsers(c *gin.Context) {
	rows, err := s.exec.Select(c.Request.Context(),
		`SELECT DISTINCT user_name, user_mobile FROM query_masters ORDER BY user_name LIMIT 50`)
	if err != nil {
		writeError(c, apperrors.NewDatabaseError(err), models.ModeCustomer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": respond.Normalize(rows)})
}

// GetAdmins handles GET /mvp/admins: agent contacts for the demo panel.
func (s *Service) GetAdmins(c *gin.Context) {
	rows, err := s.exec.Select(c.Request.Context(),
		`SELECT name, email, phone, m_code FROM master_admins ORDER BY name LIMIT 50`)
	if err != nil {
		writeError(c, apperrors.NewDatabaseError(err), models.ModeCustomer)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "admins": respond.Normalize(rows)})
}

// Health handles GET /health.
func (s *Service) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
	})
}
