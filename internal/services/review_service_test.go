package services

import (
	"context"
	"testing"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReviewService(mb *MockBackend) *ReviewService {
	return &ReviewService{
		backendFor: func(token string) ReviewBackend { return mb },
		audit:      NewAuditService(nil, testLogger()),
		logger:     testLogger(),
	}
}

var sampleReviews = []models.Review{
	{ID: "r1", Rating: 5, Comment: "Excellent plumbing", ReviewerName: "Bilal", PostTitle: "Pipe repair"},
	{ID: "r2", Rating: 2, Comment: "Late arrival", ReviewerName: "Sana", PostTitle: "Electric wiring"},
	{ID: "r3", Rating: 4, Comment: "good", ReviewerName: "Usman", PostTitle: "Plumbing fixtures"},
	{ID: "r4", Rating: 4, Comment: "", ReviewerName: "Hina", PostTitle: "Painting"},
}

func TestReviewService_ListDefaults(t *testing.T) {
	var gotPage, gotLimit int
	mb := &MockBackend{
		ListReviewsFunc: func(ctx context.Context, page, limit int) (*models.ReviewPage, error) {
			gotPage, gotLimit = page, limit
			return &models.ReviewPage{}, nil
		},
	}

	_, err := newTestReviewService(mb).List(context.Background(), newTestSession(), 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 10, gotLimit)
}

func TestReviewService_Filter(t *testing.T) {
	svc := newTestReviewService(&MockBackend{})

	tests := []struct {
		name   string
		term   string
		rating int
		want   []string
	}{
		{"no filter", "", 0, []string{"r1", "r2", "r3", "r4"}},
		{"by post title", "plumb", 0, []string{"r1", "r3"}},
		{"by reviewer", "SANA", 0, []string{"r2"}},
		{"by comment", "late", 0, []string{"r2"}},
		{"by rating", "", 4, []string{"r3", "r4"}},
		{"term and rating", "plumb", 4, []string{"r3"}},
		{"no match", "carpentry", 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Filter(sampleReviews, tt.term, tt.rating)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestReviewService_Summary(t *testing.T) {
	svc := newTestReviewService(&MockBackend{})

	s := svc.Summary(sampleReviews)
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 3.8, s.Average)
	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 0, 4: 2, 5: 1}, s.Distribution)

	empty := svc.Summary(nil)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.Average)
	assert.Len(t, empty.Distribution, 5)
}

func TestReviewService_UpdateValidatesRating(t *testing.T) {
	mb := &MockBackend{}
	svc := newTestReviewService(mb)

	for _, rating := range []int{0, 6, -1} {
		err := svc.Update(context.Background(), newTestSession(), "r1", rating, "x")
		assert.ErrorIs(t, err, models.ErrInvalidArgument)
	}
	assert.Equal(t, 0, mb.Calls())
}

func TestReviewService_Update(t *testing.T) {
	var got backend.ReviewUpdate
	mb := &MockBackend{
		UpdateReviewFunc: func(ctx context.Context, reviewID string, upd backend.ReviewUpdate) error {
			assert.Equal(t, "r1", reviewID)
			got = upd
			return nil
		},
	}

	err := newTestReviewService(mb).Update(context.Background(), newTestSession(), "r1", 3, "  fine  ")

	require.NoError(t, err)
	assert.Equal(t, backend.ReviewUpdate{Rating: 3, Comment: "fine"}, got)
}

func TestReviewService_DeletePropagatesRemoteError(t *testing.T) {
	mb := &MockBackend{
		DeleteReviewFunc: func(ctx context.Context, reviewID string) error { return remoteFailure("deleteReview") },
	}

	err := newTestReviewService(mb).Delete(context.Background(), newTestSession(), "r1")
	assert.ErrorIs(t, err, models.ErrRemoteOperationFailed)

	err = newTestReviewService(mb).Delete(context.Background(), newTestSession(), "")
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
}
