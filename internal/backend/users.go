package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/community-vercel/theekadar-admin/internal/models"
)

// LoginResult is the credential and identity returned by the backend.
type LoginResult struct {
	Token string
	User  models.AdminIdentity
}

// UserUpdate is the backend's view of a user after a single update.
// Profile and Verification are nil when the backend omitted them.
type UserUpdate struct {
	User         models.UserRecord
	Profile      *models.ProfileRecord
	Verification *models.VerificationRecord
}

// UpdateUserRequest is the body of a single-user update.
type UpdateUserRequest struct {
	Email              *string                    `json:"email,omitempty"`
	Role               *models.Role               `json:"role,omitempty"`
	IsVerified         *bool                      `json:"isVerified,omitempty"`
	VerificationStatus *models.VerificationStatus `json:"verificationStatus,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  wireUser `json:"user"`
}

type listUsersResponse struct {
	Users         []wireUser         `json:"users"`
	Profiles      []wireProfile      `json:"profiles"`
	Verifications []wireVerification `json:"verifications"`
	TotalPages    int                `json:"totalPages"`
}

type bulkDeleteRequest struct {
	UserIDs []string `json:"userIds"`
}

type bulkDeleteResponse struct {
	DeletedCount int      `json:"deletedCount"`
	DeletedIDs   []string `json:"deletedIds"`
}

type bulkUpdateRequest struct {
	UserIDs            []string                   `json:"userIds"`
	IsVerified         *bool                      `json:"isVerified,omitempty"`
	VerificationStatus *models.VerificationStatus `json:"verificationStatus,omitempty"`
}

type bulkUpdateResponse struct {
	UpdatedCount int `json:"updatedCount"`
}

type updateUserResponse struct {
	User         *wireUser         `json:"user"`
	Profile      *wireProfile      `json:"profile"`
	Verification *wireVerification `json:"verification"`
}

type verifyWorkerRequest struct {
	UserID string                    `json:"userId"`
	Status models.VerificationStatus `json:"status"`
}

// Login exchanges credentials for a backend token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", nil,
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	u := resp.User.model()
	return &LoginResult{
		Token: resp.Token,
		User: models.AdminIdentity{
			ID:    u.ID,
			Email: u.Email,
			Name:  resp.User.Name,
			Role:  u.Role,
		},
	}, nil
}

// ListUsers fetches one page of users together with their profiles and
// verifications.
func (c *Client) ListUsers(ctx context.Context, page, limit int) (*models.UserPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp listUsersResponse
	if err := c.do(ctx, "fetchUsers", http.MethodGet, "/users/all", q, nil, &resp); err != nil {
		return nil, err
	}

	out := &models.UserPage{
		Users:         make([]models.UserRecord, 0, len(resp.Users)),
		Profiles:      profilesToModels(resp.Profiles),
		Verifications: verificationsToModels(resp.Verifications),
		TotalPages:    resp.TotalPages,
	}
	for _, u := range resp.Users {
		out.Users = append(out.Users, u.model())
	}
	if out.TotalPages < 1 {
		out.TotalPages = 1
	}
	return out, nil
}

// DeleteUser removes one user and its dependent records.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, "deleteUser", http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil, nil)
}

// BulkDeleteUsers removes many users in one call. It returns the count the
// backend reports and, when the backend lists them, the ids it removed.
func (c *Client) BulkDeleteUsers(ctx context.Context, userIDs []string) (int, []string, error) {
	var resp bulkDeleteResponse
	err := c.do(ctx, "bulkDeleteUsers", http.MethodPost, "/users/bulk-delete", nil,
		bulkDeleteRequest{UserIDs: userIDs}, &resp)
	if err != nil {
		return 0, nil, err
	}
	return resp.DeletedCount, resp.DeletedIDs, nil
}

// UpdateUser applies a partial update to one user.
func (c *Client) UpdateUser(ctx context.Context, userID string, req UpdateUserRequest) (*UserUpdate, error) {
	var resp updateUserResponse
	err := c.do(ctx, "updateUser", http.MethodPut, "/users/"+url.PathEscape(userID), nil, req, &resp)
	if err != nil {
		return nil, err
	}

	out := &UserUpdate{}
	if resp.User != nil {
		out.User = resp.User.model()
	}
	if resp.Profile != nil {
		p := resp.Profile.model()
		out.Profile = &p
	}
	if resp.Verification != nil {
		v := resp.Verification.model()
		out.Verification = &v
	}
	return out, nil
}

// BulkUpdateUsers applies the same patch to many users.
func (c *Client) BulkUpdateUsers(ctx context.Context, userIDs []string, patch models.BulkPatch) (int, error) {
	var resp bulkUpdateResponse
	err := c.do(ctx, "bulkUpdateUsers", http.MethodPut, "/users/bulk-update", nil,
		bulkUpdateRequest{
			UserIDs:            userIDs,
			IsVerified:         patch.IsVerified,
			VerificationStatus: patch.VerificationStatus,
		}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.UpdatedCount, nil
}

// VerifyWorker records an approval or rejection for a provider's documents.
func (c *Client) VerifyWorker(ctx context.Context, userID string, status models.VerificationStatus) error {
	return c.do(ctx, "verifyWorker", http.MethodPost, "/users/verify-worker", nil,
		verifyWorkerRequest{UserID: userID, Status: status}, nil)
}

// PendingVerifications lists verifications awaiting review, each joined with
// the submitting user.
func (c *Client) PendingVerifications(ctx context.Context) ([]models.Aggregate, error) {
	var resp []wireVerification
	if err := c.do(ctx, "fetchPendingVerifications", http.MethodGet, "/users/pending-verifications", nil, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Aggregate, 0, len(resp))
	for _, w := range resp {
		v := w.model()
		out = append(out, models.Aggregate{
			User: models.UserRecord{
				ID:         w.UserID.id(),
				Email:      w.UserID.Email,
				Role:       w.UserID.Role,
				IsVerified: w.UserID.IsVerified,
			},
			Verification: &v,
		})
	}
	return out, nil
}

// SearchByLocation finds provider profiles by city and/or town.
func (c *Client) SearchByLocation(ctx context.Context, city, town string) ([]models.Aggregate, error) {
	q := url.Values{}
	if city != "" {
		q.Set("city", city)
	}
	if town != "" {
		q.Set("town", town)
	}

	var resp []wireProfile
	if err := c.do(ctx, "searchUsersByLocation", http.MethodGet, "/users/search", q, nil, &resp); err != nil {
		return nil, err
	}

	out := make([]models.Aggregate, 0, len(resp))
	for _, p := range resp {
		out = append(out, p.aggregate())
	}
	return out, nil
}
