package backend

import (
	"context"
	"net/http"

	"github.com/community-vercel/theekadar-admin/internal/models"
)

// bucket is one aggregation row. The backend names the label field after
// the dimension it grouped by.
type bucket struct {
	ID            string   `json:"_id"`
	Role          string   `json:"role"`
	Status        string   `json:"status"`
	Date          string   `json:"date"`
	City          string   `json:"city"`
	Skill         string   `json:"skill"`
	Count         int      `json:"count"`
	AvgExperience *float64 `json:"avgExperience"`
}

func (b bucket) label() string {
	for _, s := range []string{b.Role, b.Status, b.Date, b.City, b.Skill, b.ID} {
		if s != "" {
			return s
		}
	}
	return "Unknown"
}

func labeled(in []bucket) []models.LabeledCount {
	out := make([]models.LabeledCount, 0, len(in))
	for _, b := range in {
		out = append(out, models.LabeledCount{Label: b.label(), Count: b.Count})
	}
	return out
}

type analyticsResponse struct {
	TotalUsers          int      `json:"totalUsers"`
	UsersByRole         []bucket `json:"usersByRole"`
	UsersByVerification []bucket `json:"usersByVerification"`
	RegistrationTrends  []bucket `json:"registrationTrends"`
	UsersByCity         []bucket `json:"usersByCity"`
	UsersBySkill        []bucket `json:"usersBySkill"`
	AvgExperienceByRole []bucket `json:"avgExperienceByRole"`
}

type broadcastStatsWire struct {
	TotalUsers    int      `json:"totalUsers"`
	UsersWithFCM  int      `json:"usersWithFCM"`
	FCMCoverage   string   `json:"fcmCoverage"`
	RoleBreakdown []bucket `json:"roleBreakdown"`
}

type broadcastStatsResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Stats   broadcastStatsWire `json:"stats"`
}

type deliveryWire struct {
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`
	TotalUsers   int `json:"totalUsers"`
}

type broadcastResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Stats   *deliveryWire `json:"stats"`
}

// Analytics fetches the marketplace overview.
func (c *Client) Analytics(ctx context.Context) (*models.Analytics, error) {
	var resp analyticsResponse
	if err := c.do(ctx, "fetchAnalytics", http.MethodGet, "/admin/analytics", nil, nil, &resp); err != nil {
		return nil, err
	}

	out := &models.Analytics{
		TotalUsers:          resp.TotalUsers,
		UsersByRole:         labeled(resp.UsersByRole),
		UsersByVerification: labeled(resp.UsersByVerification),
		RegistrationTrends:  labeled(resp.RegistrationTrends),
		UsersByCity:         labeled(resp.UsersByCity),
		UsersBySkill:        labeled(resp.UsersBySkill),
		AvgExperienceByRole: make([]models.RoleExperience, 0, len(resp.AvgExperienceByRole)),
	}
	for _, b := range resp.AvgExperienceByRole {
		avg := float64(b.Count)
		if b.AvgExperience != nil {
			avg = *b.AvgExperience
		}
		out.AvgExperienceByRole = append(out.AvgExperienceByRole, models.RoleExperience{
			Role:          b.label(),
			AvgExperience: avg,
		})
	}
	return out, nil
}

// Broadcast sends a push notification. A non-empty Roles targets those
// roles only.
func (c *Client) Broadcast(ctx context.Context, b models.Broadcast) (*models.BroadcastDelivery, error) {
	op, path := "broadcastNotification", "/admin/broadcast-notification"
	if len(b.Roles) > 0 {
		op, path = "broadcastByRole", "/admin/broadcast-by-role"
	}

	var resp broadcastResponse
	if err := c.do(ctx, op, http.MethodPost, path, nil, b, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &models.RemoteError{Op: op, StatusCode: http.StatusOK, Message: resp.Message}
	}

	out := &models.BroadcastDelivery{Message: resp.Message}
	if resp.Stats != nil {
		out.SuccessCount = resp.Stats.SuccessCount
		out.FailureCount = resp.Stats.FailureCount
		out.TotalUsers = resp.Stats.TotalUsers
	}
	return out, nil
}

// BroadcastStats reports how many users can receive push notifications.
func (c *Client) BroadcastStats(ctx context.Context) (*models.BroadcastStats, error) {
	const op = "fetchBroadcastStats"

	var resp broadcastStatsResponse
	if err := c.do(ctx, op, http.MethodGet, "/admin/broadcast-stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &models.RemoteError{Op: op, StatusCode: http.StatusOK, Message: resp.Message}
	}

	return &models.BroadcastStats{
		TotalUsers:    resp.Stats.TotalUsers,
		UsersWithFCM:  resp.Stats.UsersWithFCM,
		FCMCoverage:   resp.Stats.FCMCoverage,
		RoleBreakdown: labeled(resp.Stats.RoleBreakdown),
	}, nil
}
