package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/handlers"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listUsers(t *testing.T, ts *TestServer, query string) handlers.UserListResponse {
	t.Helper()
	resp, err := ts.Request(http.MethodGet, "/users"+query, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.UserListResponse
	require.NoError(t, ParseJSONResponse(resp, &body))
	return body
}

func TestConsoleFlow_LoadDeleteAndFailure(t *testing.T) {
	ts := NewTestServer(nil)
	defer ts.Close()

	require.NoError(t, ts.Login())

	list := listUsers(t, ts, "")
	require.Len(t, list.Users, 3)
	assert.Equal(t, "u3", list.Users[0].User.ID, "newest first")
	assert.Equal(t, models.UserStats{Total: 3, Verified: 1, Pending: 0}, list.Stats)

	resp, err := ts.Request(http.MethodDelete, "/users/u1", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	ts.Backend.FailNext(http.StatusInternalServerError)
	resp, err = ts.Request(http.MethodDelete, "/users/u3", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	// The failed delete leaves u3 in place; nothing was refetched.
	list = listUsers(t, ts, "")
	ids := make([]string, 0, len(list.Users))
	for _, row := range list.Users {
		ids = append(ids, row.User.ID)
	}
	assert.Equal(t, []string{"u3", "u2"}, ids)

	list = listUsers(t, ts, "?q=khan")
	require.Len(t, list.Users, 1)
	assert.Equal(t, "u3", list.Users[0].User.ID)
}

func TestConsoleFlow_BackendRejectionEndsSession(t *testing.T) {
	ts := NewTestServer(nil)
	defer ts.Close()

	require.NoError(t, ts.Login())
	listUsers(t, ts, "")
	require.Equal(t, 1, ts.Store.Len())

	ts.Backend.FailNext(http.StatusUnauthorized)
	resp, err := ts.Request(http.MethodDelete, "/users/u1", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, ts.Store.Len())

	resp, err = ts.Request(http.MethodGet, "/users", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConsoleFlow_MutationWithoutCSRFHeader(t *testing.T) {
	ts := NewTestServer(nil)
	defer ts.Close()

	require.NoError(t, ts.Login())
	listUsers(t, ts, "")
	ts.csrfToken = ""

	resp, err := ts.Request(http.MethodDelete, "/users/u1", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAuditTrail_Persisted(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	testDB, err := SetupTestDatabase(ctx)
	require.NoError(t, err)
	defer testDB.Teardown(context.Background())
	require.NoError(t, testDB.CleanupTables(ctx))

	ts := NewTestServer(testDB.DB)
	defer ts.Close()

	require.NoError(t, ts.Login())
	listUsers(t, ts, "")

	resp, err := ts.Request(http.MethodPost, "/users/bulk-delete", map[string]interface{}{"userIds": []string{"u1", "u2"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ts.Backend.FailNext(http.StatusInternalServerError)
	resp, err = ts.Request(http.MethodDelete, "/users/u3", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	repo := repositories.NewAuditLogRepository(testDB.DB)

	logs, err := repo.GetByActorID(ctx, "admin-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	byAction := map[string]bool{}
	for _, l := range logs {
		byAction[l.Action] = l.Success
		assert.Equal(t, AdminEmail, l.ActorEmail)
	}
	assert.True(t, byAction[models.AuditActionLogin])
	assert.True(t, byAction[models.AuditActionBulkDelete])
	assert.False(t, byAction[models.AuditActionDeleteUser])

	touched, err := repo.GetByTargetID(ctx, "u3", 10, 0)
	require.NoError(t, err)
	require.Len(t, touched, 1)
	require.NotNil(t, touched[0].FailureReason)
	assert.Contains(t, *touched[0].FailureReason, "Server error")

	recent, err := repo.GetRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	health, err := ts.Request(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	var body handlers.HealthResponse
	require.NoError(t, ParseJSONResponse(health, &body))
	assert.Equal(t, "ok", body.AuditDB)
}
