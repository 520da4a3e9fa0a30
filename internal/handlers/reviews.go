package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	"github.com/go-chi/chi/v5"
)

// ReviewService defines the interface for review moderation
type ReviewService interface {
	List(ctx context.Context, sess *session.Session, page, limit int) (*models.ReviewPage, error)
	Update(ctx context.Context, sess *session.Session, reviewID string, rating int, comment string) error
	Delete(ctx context.Context, sess *session.Session, reviewID string) error
	Filter(reviews []models.Review, term string, rating int) []models.Review
	Summary(reviews []models.Review) models.ReviewSummary
}

// ReviewHandler handles review moderation requests
type ReviewHandler struct {
	service ReviewService
	errs    *ErrorResponder
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(service ReviewService, errs *ErrorResponder) *ReviewHandler {
	return &ReviewHandler{service: service, errs: errs}
}

// ReviewQuery holds the list filters
type ReviewQuery struct {
	Page   int    `validate:"gte=0"`
	Limit  int    `validate:"gte=0,lte=100"`
	Rating int    `validate:"gte=0,lte=5"`
	Term   string `validate:"max=100"`
}

// UpdateReviewRequest represents the request body for editing a review
type UpdateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ReviewListResponse is one page of reviews after local filtering. Summary
// covers the filtered reviews.
type ReviewListResponse struct {
	Reviews []models.Review      `json:"reviews"`
	Summary models.ReviewSummary `json:"summary"`
	Total   int                  `json:"total"`
	Pages   int                  `json:"pages"`
	Page    int                  `json:"page"`
}

// ListReviews fetches a page of reviews and filters it by q and rating
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param q query string false "Reviewer, post or comment text"
// @Param rating query int false "Exact star rating"
// @Success 200 {object} ReviewListResponse
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	query, err := parseReviewQuery(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	page, err := h.service.List(r.Context(), sess, query.Page, query.Limit)
	if err != nil {
		h.errs.Respond(w, r, err)
		return
	}

	reviews := h.service.Filter(page.Reviews, query.Term, query.Rating)
	pkghttp.WriteJSON(w, http.StatusOK, ReviewListResponse{
		Reviews: reviews,
		Summary: h.service.Summary(reviews),
		Total:   page.Total,
		Pages:   page.Pages,
		Page:    page.Page,
	})
}

// UpdateReview edits a review's rating and comment
// @Router /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.Update(r.Context(), sess, chi.URLParam(r, "id"), req.Rating, req.Comment); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteReview removes a review
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), sess, chi.URLParam(r, "id")); err != nil {
		h.errs.Respond(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseReviewQuery(r *http.Request) (ReviewQuery, error) {
	q := r.URL.Query()
	query := ReviewQuery{Term: q.Get("q")}

	for key, dst := range map[string]*int{"page": &query.Page, "limit": &query.Limit, "rating": &query.Rating} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return query, &queryError{param: key}
		}
		*dst = n
	}

	return query, ValidateRequest(query)
}

type queryError struct {
	param string
}

func (e *queryError) Error() string {
	return e.param + " must be an integer"
}
