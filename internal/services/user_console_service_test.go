package services

import (
	"context"
	"errors"
	"testing"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserConsoleService(mb *MockBackend, repo *MockAuditLogRepository) *UserConsoleService {
	var auditRepo AuditLogRepository
	if repo != nil {
		auditRepo = repo
	}
	return &UserConsoleService{
		backendFor: func(token string) UserBackend { return mb },
		audit:      NewAuditService(auditRepo, testLogger()),
		pageSize:   10,
		logger:     testLogger(),
	}
}

func TestUserConsoleService_LoadPage(t *testing.T) {
	var gotPage, gotLimit int
	mb := &MockBackend{
		ListUsersFunc: func(ctx context.Context, page, limit int) (*models.UserPage, error) {
			gotPage, gotLimit = page, limit
			return &models.UserPage{
				Users:      []models.UserRecord{{ID: "n1", Email: "n@x.com", Role: models.RoleWorker}},
				TotalPages: 7,
			}, nil
		},
	}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()

	require.NoError(t, svc.LoadPage(context.Background(), sess, 0))

	assert.Equal(t, 1, gotPage)
	assert.Equal(t, 10, gotLimit)
	assert.Len(t, sess.Engine.Users(), 1)
	page, total := sess.Page()
	assert.Equal(t, 1, page)
	assert.Equal(t, 7, total)
}

func TestUserConsoleService_LoadPageFailureKeepsState(t *testing.T) {
	mb := &MockBackend{
		ListUsersFunc: func(ctx context.Context, page, limit int) (*models.UserPage, error) {
			return nil, remoteFailure("fetchUsers")
		},
	}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()
	version := sess.Engine.Version()

	err := svc.LoadPage(context.Background(), sess, 2)

	assert.ErrorIs(t, err, models.ErrRemoteOperationFailed)
	assert.Len(t, sess.Engine.Users(), 3)
	assert.Equal(t, version, sess.Engine.Version())
}

func TestUserConsoleService_DeleteUser(t *testing.T) {
	repo := &MockAuditLogRepository{}
	var deleted string
	mb := &MockBackend{
		DeleteUserFunc: func(ctx context.Context, userID string) error {
			deleted = userID
			return nil
		},
	}
	svc := newTestUserConsoleService(mb, repo)
	sess := newTestSession()

	require.NoError(t, svc.DeleteUser(context.Background(), sess, "u1"))

	assert.Equal(t, "u1", deleted)
	_, ok := sess.Engine.Aggregate("u1")
	assert.False(t, ok)
	assert.Len(t, sess.Engine.Profiles(), 1)
	assert.Empty(t, sess.Engine.Verifications())

	require.Len(t, repo.Entries, 1)
	assert.Equal(t, models.AuditActionDeleteUser, repo.Entries[0].Action)
	assert.Equal(t, []string{"u1"}, repo.Entries[0].TargetIDs)
	assert.True(t, repo.Entries[0].Success)
	assert.Equal(t, testAdmin.ID, repo.Entries[0].ActorID)
}

func TestUserConsoleService_RemoteFailureLeavesEngineUntouched(t *testing.T) {
	failing := &MockBackend{
		DeleteUserFunc: func(ctx context.Context, userID string) error { return remoteFailure("deleteUser") },
		BulkDeleteUsersFunc: func(ctx context.Context, userIDs []string) (int, []string, error) {
			return 0, nil, remoteFailure("bulkDeleteUsers")
		},
		UpdateUserFunc: func(ctx context.Context, userID string, req backend.UpdateUserRequest) (*backend.UserUpdate, error) {
			return nil, remoteFailure("updateUser")
		},
		BulkUpdateUsersFunc: func(ctx context.Context, userIDs []string, patch models.BulkPatch) (int, error) {
			return 0, remoteFailure("bulkUpdateUsers")
		},
		VerifyWorkerFunc: func(ctx context.Context, userID string, status models.VerificationStatus) error {
			return remoteFailure("verifyWorker")
		},
	}

	worker := models.RoleWorker
	approved := models.VerificationApproved
	verified := true

	tests := []struct {
		name string
		run  func(svc *UserConsoleService) (uint64, uint64, error)
	}{
		{"delete", func(svc *UserConsoleService) (uint64, uint64, error) {
			sess := newTestSession()
			before := sess.Engine.Version()
			err := svc.DeleteUser(context.Background(), sess, "u1")
			return before, sess.Engine.Version(), err
		}},
		{"bulk delete", func(svc *UserConsoleService) (uint64, uint64, error) {
			sess := newTestSession()
			before := sess.Engine.Version()
			_, err := svc.BulkDelete(context.Background(), sess, []string{"u1", "u2"})
			return before, sess.Engine.Version(), err
		}},
		{"update", func(svc *UserConsoleService) (uint64, uint64, error) {
			sess := newTestSession()
			before := sess.Engine.Version()
			err := svc.UpdateUser(context.Background(), sess, "u1", models.UserPatch{Role: &worker, VerificationStatus: &approved})
			return before, sess.Engine.Version(), err
		}},
		{"bulk update", func(svc *UserConsoleService) (uint64, uint64, error) {
			sess := newTestSession()
			before := sess.Engine.Version()
			_, err := svc.BulkUpdate(context.Background(), sess, []string{"u1", "u3"}, models.BulkPatch{IsVerified: &verified})
			return before, sess.Engine.Version(), err
		}},
		{"verify", func(svc *UserConsoleService) (uint64, uint64, error) {
			sess := newTestSession()
			before := sess.Engine.Version()
			err := svc.VerifyWorker(context.Background(), sess, "u1", models.VerificationApproved)
			return before, sess.Engine.Version(), err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockAuditLogRepository{}
			svc := newTestUserConsoleService(failing, repo)

			before, after, err := tt.run(svc)

			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrRemoteOperationFailed))
			var re *models.RemoteError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, "Server error", re.Message)
			assert.Equal(t, before, after, "engine must not change")

			require.Len(t, repo.Entries, 1)
			assert.False(t, repo.Entries[0].Success)
			require.NotNil(t, repo.Entries[0].FailureReason)
		})
	}
}

func TestUserConsoleService_BulkDeleteEmptyMakesNoCall(t *testing.T) {
	mb := &MockBackend{}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()

	_, err := svc.BulkDelete(context.Background(), sess, []string{"", ""})

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Equal(t, 0, mb.Calls())
	assert.Len(t, sess.Engine.Users(), 3)
}

func TestUserConsoleService_BulkDeleteMismatch(t *testing.T) {
	mb := &MockBackend{
		BulkDeleteUsersFunc: func(ctx context.Context, userIDs []string) (int, []string, error) {
			return 1, nil, nil
		},
	}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()
	sess.Engine.Select("u1", "u2")

	res, err := svc.BulkDelete(context.Background(), sess, []string{"u1", "u2", "u1"})

	require.NoError(t, err)
	assert.Equal(t, &models.BulkDeleteResult{Requested: 2, Deleted: 1, Mismatch: true}, res)
	assert.Len(t, sess.Engine.Users(), 1, "all requested ids removed when backend only reports a count")
	assert.Empty(t, sess.Engine.Selected())
}

func TestUserConsoleService_BulkDeleteHonorsEchoedIDs(t *testing.T) {
	mb := &MockBackend{
		BulkDeleteUsersFunc: func(ctx context.Context, userIDs []string) (int, []string, error) {
			return 1, []string{"u2"}, nil
		},
	}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()

	_, err := svc.BulkDelete(context.Background(), sess, []string{"u1", "u2"})

	require.NoError(t, err)
	_, ok := sess.Engine.Aggregate("u1")
	assert.True(t, ok, "u1 was not confirmed deleted")
	_, ok = sess.Engine.Aggregate("u2")
	assert.False(t, ok)
}

func TestUserConsoleService_UpdateUserRequiresRole(t *testing.T) {
	mb := &MockBackend{}
	svc := newTestUserConsoleService(mb, nil)
	verified := true

	err := svc.UpdateUser(context.Background(), newTestSession(), "u1", models.UserPatch{IsVerified: &verified})

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Equal(t, 0, mb.Calls())
}

func TestUserConsoleService_UpdateUserRejectsUnknownRole(t *testing.T) {
	mb := &MockBackend{}
	svc := newTestUserConsoleService(mb, nil)
	role := models.Role("superuser")

	err := svc.UpdateUser(context.Background(), newTestSession(), "u1", models.UserPatch{Role: &role})

	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	assert.Equal(t, 0, mb.Calls())
}

func TestUserConsoleService_UpdateUserToClientStripsStatus(t *testing.T) {
	var sent backend.UpdateUserRequest
	mb := &MockBackend{
		UpdateUserFunc: func(ctx context.Context, userID string, req backend.UpdateUserRequest) (*backend.UserUpdate, error) {
			sent = req
			return &backend.UserUpdate{}, nil
		},
	}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()
	client := models.RoleClient
	approved := models.VerificationApproved

	err := svc.UpdateUser(context.Background(), sess, "u1", models.UserPatch{Role: &client, VerificationStatus: &approved})

	require.NoError(t, err)
	assert.Nil(t, sent.VerificationStatus)
	require.NotNil(t, sent.Role)
	assert.Equal(t, models.RoleClient, *sent.Role)

	agg, ok := sess.Engine.Aggregate("u1")
	require.True(t, ok)
	assert.Equal(t, models.RoleClient, agg.User.Role)
	assert.Nil(t, agg.Profile)
	assert.Nil(t, agg.Verification)
}

func TestUserConsoleService_UpdateUserApprovesWorker(t *testing.T) {
	svc := newTestUserConsoleService(&MockBackend{}, nil)
	sess := newTestSession()
	worker := models.RoleWorker
	approved := models.VerificationApproved
	verified := true

	err := svc.UpdateUser(context.Background(), sess, "u1", models.UserPatch{
		Role: &worker, IsVerified: &verified, VerificationStatus: &approved,
	})

	require.NoError(t, err)
	assert.Equal(t, models.UserStats{Total: 3, Verified: 2, Pending: 0}, sess.Engine.Stats())
}

func TestUserConsoleService_BulkUpdate(t *testing.T) {
	var sentIDs []string
	mb := &MockBackend{
		BulkUpdateUsersFunc: func(ctx context.Context, userIDs []string, patch models.BulkPatch) (int, error) {
			sentIDs = userIDs
			return 2, nil
		},
	}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()
	rejected := models.VerificationRejected

	res, err := svc.BulkUpdate(context.Background(), sess, []string{"u1", "u3"}, models.BulkPatch{VerificationStatus: &rejected})

	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u3"}, sentIDs)
	assert.False(t, res.Mismatch)
	for _, id := range []string{"u1", "u3"} {
		agg, _ := sess.Engine.Aggregate(id)
		require.NotNil(t, agg.Verification, id)
		assert.Equal(t, models.VerificationRejected, agg.Verification.Status)
		assert.Equal(t, models.VerificationRejected, agg.Profile.VerificationStatus)
	}
}

func TestUserConsoleService_BulkUpdateValidationMakesNoCall(t *testing.T) {
	mb := &MockBackend{}
	svc := newTestUserConsoleService(mb, nil)
	sess := newTestSession()
	verified := true

	_, err := svc.BulkUpdate(context.Background(), sess, []string{"u1"}, models.BulkPatch{})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	_, err = svc.BulkUpdate(context.Background(), sess, nil, models.BulkPatch{IsVerified: &verified})
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	assert.Equal(t, 0, mb.Calls())
}

func TestUserConsoleService_VerifyWorker(t *testing.T) {
	svc := newTestUserConsoleService(&MockBackend{}, nil)
	sess := newTestSession()

	err := svc.VerifyWorker(context.Background(), sess, "u1", models.VerificationPending)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)

	require.NoError(t, svc.VerifyWorker(context.Background(), sess, "u1", models.VerificationApproved))
	agg, _ := sess.Engine.Aggregate("u1")
	assert.Equal(t, models.VerificationApproved, agg.Verification.Status)
	assert.Equal(t, models.VerificationApproved, agg.Profile.VerificationStatus)
}

func TestUserConsoleService_AuditPersistenceFailureIsIgnored(t *testing.T) {
	repo := &MockAuditLogRepository{
		CreateFunc: func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
			return nil, errors.New("db down")
		},
	}
	svc := newTestUserConsoleService(&MockBackend{}, repo)

	assert.NoError(t, svc.DeleteUser(context.Background(), newTestSession(), "u2"))
}
