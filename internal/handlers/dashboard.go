package handlers

import (
	"context"
	"net/http"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// AnalyticsService defines the interface for the dashboard data
type AnalyticsService interface {
	Dashboard(ctx context.Context, sess *session.Session) (*models.Dashboard, error)
}

// DashboardHandler serves the analytics dashboard
type DashboardHandler struct {
	service AnalyticsService
	errs    *ErrorResponder
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service AnalyticsService, errs *ErrorResponder) *DashboardHandler {
	return &DashboardHandler{service: service, errs: errs}
}

// Dashboard returns marketplace analytics and broadcast reach
// @Success 200 {object} models.Dashboard
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	dash, err := h.service.Dashboard(r.Context(), sess)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, dash)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthResponse is the liveness report
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	AuditDB  string `json:"auditDb"`
}

// Health returns a liveness handler. db may be nil when the audit database is
// disabled; an unreachable database degrades the report but never fails it,
// since audit persistence is best effort.
func Health(sessions interface{ Len() int }, db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Sessions: sessions.Len(), AuditDB: "disabled"}
		if db != nil {
			resp.AuditDB = "ok"
			if err := db.HealthCheck(r.Context()); err != nil {
				resp.AuditDB = "unavailable"
			}
		}
		pkghttp.WriteJSON(w, http.StatusOK, resp)
	}
}
