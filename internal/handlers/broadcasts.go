package handlers

import (
	"context"
	"net/http"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// BroadcastService defines the interface for push-notification broadcasts
type BroadcastService interface {
	BroadcastAll(ctx context.Context, sess *session.Session, title, body, notificationType string) (*models.BroadcastDelivery, error)
	BroadcastToRoles(ctx context.Context, sess *session.Session, title, body string, roles []models.Role) (*models.BroadcastDelivery, error)
	Stats(ctx context.Context, sess *session.Session) (*models.BroadcastStats, error)
}

// BroadcastHandler handles broadcast requests
type BroadcastHandler struct {
	service BroadcastService
	errs    *ErrorResponder
}

// NewBroadcastHandler creates a new BroadcastHandler
func NewBroadcastHandler(service BroadcastService, errs *ErrorResponder) *BroadcastHandler {
	return &BroadcastHandler{service: service, errs: errs}
}

// BroadcastRequest represents a notification to every user
type BroadcastRequest struct {
	Title string `json:"title" validate:"required,max=100"`
	Body  string `json:"body" validate:"required,max=500"`
	Type  string `json:"type" validate:"omitempty,max=50"`
}

// RoleBroadcastRequest represents a notification to some roles
type RoleBroadcastRequest struct {
	Title string   `json:"title" validate:"required,max=100"`
	Body  string   `json:"body" validate:"required,max=500"`
	Roles []string `json:"roles" validate:"required,min=1,dive,oneof=client worker admin thekadar contractor consultant"`
}

// BroadcastAll notifies every user
// @Accept json
// @Param request body BroadcastRequest true "Notification"
// @Success 200 {object} models.BroadcastDelivery
// @Router /broadcasts [post]
func (h *BroadcastHandler) BroadcastAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req BroadcastRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	delivery, err := h.service.BroadcastAll(r.Context(), sess, req.Title, req.Body, req.Type)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, delivery)
}

// BroadcastToRoles notifies users holding any of the given roles
// @Accept json
// @Param request body RoleBroadcastRequest true "Notification"
// @Success 200 {object} models.BroadcastDelivery
// @Router /broadcasts/roles [post]
func (h *BroadcastHandler) BroadcastToRoles(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req RoleBroadcastRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	roles := make([]models.Role, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, models.Role(role))
	}

	delivery, err := h.service.BroadcastToRoles(r.Context(), sess, req.Title, req.Body, roles)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, delivery)
}

// Stats reports push-notification coverage
// @Success 200 {object} models.BroadcastStats
// @Router /broadcasts/stats [get]
func (h *BroadcastHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), sess)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, stats)
}
