package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/community-vercel/theekadar-admin/internal/models"
)

type listReviewsResponse struct {
	Reviews []wireReview `json:"reviews"`
	Total   int          `json:"total"`
	Pages   int          `json:"pages"`
}

// ReviewUpdate is the editable part of a review.
type ReviewUpdate struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListReviews fetches one page of reviews with reviewer and post populated.
func (c *Client) ListReviews(ctx context.Context, page, limit int) (*models.ReviewPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var resp listReviewsResponse
	if err := c.do(ctx, "fetchReviews", http.MethodGet, "/reviews", q, nil, &resp); err != nil {
		return nil, err
	}

	out := &models.ReviewPage{
		Reviews: make([]models.Review, 0, len(resp.Reviews)),
		Total:   resp.Total,
		Pages:   resp.Pages,
		Page:    page,
		Limit:   limit,
	}
	for _, r := range resp.Reviews {
		out.Reviews = append(out.Reviews, r.model())
	}
	if out.Pages < 1 {
		out.Pages = 1
	}
	return out, nil
}

// UpdateReview changes a review's rating and comment.
func (c *Client) UpdateReview(ctx context.Context, reviewID string, upd ReviewUpdate) error {
	return c.do(ctx, "updateReview", http.MethodPut, "/reviews/"+url.PathEscape(reviewID), nil, upd, nil)
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.do(ctx, "deleteReview", http.MethodDelete, "/reviews/"+url.PathEscape(reviewID), nil, nil, nil)
}
