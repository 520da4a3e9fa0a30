package handlers

import (
	"context"
	"net/http"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// DirectoryService defines the interface for read-only provider lookups
type DirectoryService interface {
	SearchByLocation(ctx context.Context, sess *session.Session, city, town string) ([]models.Aggregate, error)
	PendingVerifications(ctx context.Context, sess *session.Session) ([]models.Aggregate, error)
}

// DirectoryHandler serves location search and the verification queue
type DirectoryHandler struct {
	service DirectoryService
	errs    *ErrorResponder
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(service DirectoryService, errs *ErrorResponder) *DirectoryHandler {
	return &DirectoryHandler{service: service, errs: errs}
}

// AggregateListResponse is a list of providers
type AggregateListResponse struct {
	Results []models.Aggregate `json:"results"`
	Count   int                `json:"count"`
}

func aggregateList(results []models.Aggregate) AggregateListResponse {
	if results == nil {
		results = []models.Aggregate{}
	}
	return AggregateListResponse{Results: results, Count: len(results)}
}

// SearchByLocation finds providers by city and/or town
// @Param city query string false "City"
// @Param town query string false "Town"
// @Success 200 {object} AggregateListResponse
// @Router /search/location [get]
func (h *DirectoryHandler) SearchByLocation(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	results, err := h.service.SearchByLocation(r.Context(), sess, q.Get("city"), q.Get("town"))
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, aggregateList(results))
}

// PendingVerifications lists providers waiting for review
// @Success 200 {object} AggregateListResponse
// @Router /verifications/pending [get]
func (h *DirectoryHandler) PendingVerifications(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	results, err := h.service.PendingVerifications(r.Context(), sess)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, aggregateList(results))
}
