package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	"github.com/go-chi/chi/v5"
)

// UserConsoleService defines the interface for user operations on a session
type UserConsoleService interface {
	LoadPage(ctx context.Context, sess *session.Session, page int) error
	DeleteUser(ctx context.Context, sess *session.Session, userID string) error
	BulkDelete(ctx context.Context, sess *session.Session, userIDs []string) (*models.BulkDeleteResult, error)
	UpdateUser(ctx context.Context, sess *session.Session, userID string, patch models.UserPatch) error
	BulkUpdate(ctx context.Context, sess *session.Session, userIDs []string, patch models.BulkPatch) (*models.BulkUpdateResult, error)
	VerifyWorker(ctx context.Context, sess *session.Session, userID string, status models.VerificationStatus) error
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	service UserConsoleService
	errs    *ErrorResponder
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserConsoleService, errs *ErrorResponder) *UserHandler {
	return &UserHandler{
		service: service,
		errs:    errs,
	}
}

// Request/Response DTOs

// UpdateUserRequest represents the request body for editing one user
type UpdateUserRequest struct {
	Role               string  `json:"role" validate:"required,oneof=client worker admin thekadar contractor consultant"`
	IsVerified         *bool   `json:"isVerified"`
	VerificationStatus *string `json:"verificationStatus" validate:"omitempty,oneof=pending approved rejected"`
}

// VerifyRequest represents the request body for a verification verdict
type VerifyRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// BulkDeleteRequest represents the request body for a group delete. Empty
// ids fall back to the session selection.
type BulkDeleteRequest struct {
	UserIDs []string `json:"userIds" validate:"omitempty,dive,required"`
}

// BulkUpdateRequest represents the request body for a group update
type BulkUpdateRequest struct {
	UserIDs            []string `json:"userIds" validate:"omitempty,dive,required"`
	IsVerified         *bool    `json:"isVerified"`
	VerificationStatus *string  `json:"verificationStatus" validate:"omitempty,oneof=pending approved rejected"`
}

// SelectionRequest represents a change to the selection set
type SelectionRequest struct {
	UserIDs []string `json:"userIds" validate:"omitempty,dive,required"`
	All     bool     `json:"all"`
}

// UserListResponse is the user table with its header counters
type UserListResponse struct {
	Users      []models.Aggregate `json:"users"`
	Stats      models.UserStats   `json:"stats"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
	Selected   []string           `json:"selected"`
}

// SelectionResponse lists the selected user ids
type SelectionResponse struct {
	Selected []string `json:"selected"`
}

// ListUsers returns the loaded page filtered by q. The backend is queried
// only when page changes, refresh=true is passed, or nothing is loaded yet,
// so filtering and selecting never discard local state.
// @Summary List users
// @Param page query int false "Page number"
// @Param q query string false "Search term"
// @Param refresh query bool false "Force a backend fetch"
// @Produce json
// @Success 200 {object} UserListResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	current, totalPages := sess.Page()
	page := current
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			pkghttp.WriteBadRequest(w, "page must be a positive integer")
			return
		}
		page = n
	}

	if totalPages == 0 || page != current || r.URL.Query().Get("refresh") == "true" {
		if err := h.service.LoadPage(r.Context(), sess, page); err != nil {
			h.errs.Respond(w, r, err)
			return
		}
	}

	page, totalPages = sess.Page()
	pkghttp.WriteJSON(w, http.StatusOK, UserListResponse{
		Users:      sess.Engine.Rows(r.URL.Query().Get("q")),
		Stats:      sess.Engine.Stats(),
		Page:       page,
		TotalPages: totalPages,
		Selected:   sess.Engine.Selected(),
	})
}

// Stats returns the counters over the loaded collections
// @Router /users/stats [get]
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, sess.Engine.Stats())
}

// GetUser returns one loaded user joined with its profile and verification
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	agg, found := sess.Engine.Aggregate(chi.URLParam(r, "id"))
	if !found {
		pkghttp.WriteNotFound(w, "User not found")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, agg)
}

// DeleteUser deletes a user
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateUser edits role, verified flag and verification status
// @Accept json
// @Param request body UpdateUserRequest true "User changes"
// @Success 200 {object} models.Aggregate
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	role := models.Role(req.Role)
	patch := models.UserPatch{
		Role:               &role,
		IsVerified:         req.IsVerified,
		VerificationStatus: statusPtr(req.VerificationStatus),
	}

	userID := chi.URLParam(r, "id")
	if err := h.service.UpdateUser(r.Context(), sess, userID, patch); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	h.writeAggregate(w, sess, userID)
}

// VerifyUser records an approve or reject verdict on a provider
// @Accept json
// @Param request body VerifyRequest true "Verdict"
// @Router /users/{id}/verify [post]
func (h *UserHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req VerifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	userID := chi.URLParam(r, "id")
	if err := h.service.VerifyWorker(r.Context(), sess, userID, models.VerificationStatus(req.Status)); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	h.writeAggregate(w, sess, userID)
}

// BulkDelete deletes the given users, or the selection when none are given
// @Success 200 {object} models.BulkDeleteResult
// @Router /users/bulk-delete [post]
func (h *UserHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req BulkDeleteRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	ids, fromSelection := targetIDs(sess, req.UserIDs)
	result, err := h.service.BulkDelete(r.Context(), sess, ids)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	if fromSelection {
		sess.Engine.ClearSelection()
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// BulkUpdate applies one verification change to many users
// @Success 200 {object} models.BulkUpdateResult
// @Router /users/bulk-update [put]
func (h *UserHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ids, fromSelection := targetIDs(sess, req.UserIDs)
	patch := models.BulkPatch{
		IsVerified:         req.IsVerified,
		VerificationStatus: statusPtr(req.VerificationStatus),
	}
	result, err := h.service.BulkUpdate(r.Context(), sess, ids, patch)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	if fromSelection {
		sess.Engine.ClearSelection()
	}
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// GetSelection lists the selected user ids
// @Router /users/selection [get]
func (h *UserHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: sess.Engine.Selected()})
}

// Select adds ids, or every loaded user when all is set, to the selection
// @Router /users/selection [put]
func (h *UserHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req SelectionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if req.All {
		sess.Engine.SelectAll()
	} else {
		sess.Engine.Select(req.UserIDs...)
	}
	pkghttp.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: sess.Engine.Selected()})
}

// Deselect removes ids from the selection, or clears it when no body or
// all=true is sent
// @Router /users/selection [delete]
func (h *UserHandler) Deselect(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req SelectionRequest
	if !decodeOptional(w, r, &req) {
		return
	}

	if req.All || len(req.UserIDs) == 0 {
		sess.Engine.ClearSelection()
	} else {
		sess.Engine.Deselect(req.UserIDs...)
	}
	pkghttp.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: sess.Engine.Selected()})
}

func (h *UserHandler) writeAggregate(w http.ResponseWriter, sess *session.Session, userID string) {
	agg, found := sess.Engine.Aggregate(userID)
	if !found {
		// Confirmed remotely but not on the loaded page
		w.WriteHeader(http.StatusNoContent)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, agg)
}

// targetIDs returns ids, or the session selection when ids is empty.
func targetIDs(sess *session.Session, ids []string) ([]string, bool) {
	if len(ids) > 0 {
		return ids, false
	}
	return sess.Engine.Selected(), true
}

func statusPtr(s *string) *models.VerificationStatus {
	if s == nil {
		return nil
	}
	status := models.VerificationStatus(*s)
	return &status
}

// decodeAndValidate decodes a required JSON body into req and validates it.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}

// decodeOptional is decodeAndValidate for endpoints where an empty body is
// meaningful.
func decodeOptional(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return false
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return false
	}
	return true
}
