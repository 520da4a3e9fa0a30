package services

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
)

const defaultReviewLimit = 10

// ReviewBackend is the subset of the backend client used by ReviewService.
type ReviewBackend interface {
	ListReviews(ctx context.Context, page, limit int) (*models.ReviewPage, error)
	UpdateReview(ctx context.Context, reviewID string, upd backend.ReviewUpdate) error
	DeleteReview(ctx context.Context, reviewID string) error
}

// ReviewService moderates client reviews.
type ReviewService struct {
	backendFor func(token string) ReviewBackend
	audit      *AuditService
	logger     *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(client *backend.Client, audit *AuditService, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		backendFor: func(token string) ReviewBackend { return client.WithToken(token) },
		audit:      audit,
		logger:     logger,
	}
}

// List fetches one page of reviews.
func (s *ReviewService) List(ctx context.Context, sess *session.Session, page, limit int) (*models.ReviewPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultReviewLimit
	}
	return s.backendFor(sess.Token).ListReviews(ctx, page, limit)
}

// Update changes a review's rating and comment.
func (s *ReviewService) Update(ctx context.Context, sess *session.Session, reviewID string, rating int, comment string) error {
	if reviewID == "" {
		return models.InvalidArgument("review id is required")
	}
	if rating < 1 || rating > 5 {
		return models.InvalidArgument("rating must be between 1 and 5")
	}

	err := s.backendFor(sess.Token).UpdateReview(ctx, reviewID, backend.ReviewUpdate{
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	})
	s.audit.Record(ctx, sess.Admin, models.AuditActionUpdateReview, []string{reviewID}, err,
		models.AuditMetadata{"rating": rating})
	return err
}

// Delete removes a review.
func (s *ReviewService) Delete(ctx context.Context, sess *session.Session, reviewID string) error {
	if reviewID == "" {
		return models.InvalidArgument("review id is required")
	}

	err := s.backendFor(sess.Token).DeleteReview(ctx, reviewID)
	s.audit.Record(ctx, sess.Admin, models.AuditActionDeleteReview, []string{reviewID}, err, nil)
	return err
}

// Filter keeps reviews whose reviewer name, post title or comment
// contains term (case-insensitive) and, when rating is non-zero, whose
// rating equals it. The input is not modified.
func (s *ReviewService) Filter(reviews []models.Review, term string, rating int) []models.Review {
	needle := strings.ToLower(strings.TrimSpace(term))

	out := make([]models.Review, 0, len(reviews))
	for _, r := range reviews {
		if rating != 0 && r.Rating != rating {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.ReviewerName), needle) &&
			!strings.Contains(strings.ToLower(r.PostTitle), needle) &&
			!strings.Contains(strings.ToLower(r.Comment), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Summary computes the average rating, rounded to one decimal, and
// the count per star from 1 to 5.
func (s *ReviewService) Summary(reviews []models.Review) models.ReviewSummary {
	summary := models.ReviewSummary{
		Count:        len(reviews),
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
	if len(reviews) == 0 {
		return summary
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
		if _, ok := summary.Distribution[r.Rating]; ok {
			summary.Distribution[r.Rating]++
		}
	}
	summary.Average = math.Round(float64(total)/float64(len(reviews))*10) / 10
	return summary
}
