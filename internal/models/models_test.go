package models

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("plumber").Valid())
	assert.False(t, Role("").Valid())
}

func TestVerificationStatus(t *testing.T) {
	assert.True(t, VerificationPending.Valid())
	assert.False(t, VerificationPending.Decisive())
	assert.True(t, VerificationApproved.Decisive())
	assert.True(t, VerificationRejected.Decisive())
	assert.False(t, VerificationStatus("unknown").Valid())
}

func TestUserRecord_Predicates(t *testing.T) {
	client := &UserRecord{Role: RoleClient}
	admin := &UserRecord{Role: RoleAdmin}

	assert.True(t, client.IsClient())
	assert.False(t, client.IsAdmin())
	assert.True(t, admin.IsAdmin())
}

func TestRemoteError(t *testing.T) {
	err := error(&RemoteError{Op: "deleteUser", StatusCode: http.StatusNotFound, Message: "User not found"})

	assert.True(t, errors.Is(err, ErrRemoteOperationFailed))
	assert.Equal(t, "deleteUser: backend returned 404: User not found", err.Error())

	var remote *RemoteError
	require.True(t, errors.As(err, &remote))
	assert.False(t, remote.IsAuthFailure())

	transport := errors.New("connection refused")
	err = &RemoteError{Op: "listUsers", Message: "backend unreachable", Err: transport}
	assert.True(t, errors.Is(err, ErrRemoteOperationFailed))
	assert.True(t, errors.Is(err, transport))
	assert.Equal(t, "listUsers: backend unreachable", err.Error())

	assert.True(t, (&RemoteError{StatusCode: http.StatusUnauthorized}).IsAuthFailure())
	assert.True(t, (&RemoteError{StatusCode: http.StatusForbidden}).IsAuthFailure())
}

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("no users selected")
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Contains(t, err.Error(), "no users selected")
}

func TestAuditMetadata_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  AuditMetadata
	}{
		{"nil", nil, AuditMetadata{}},
		{"bytes", []byte(`{"role":"worker"}`), AuditMetadata{"role": "worker"}},
		{"string", `{"count":2}`, AuditMetadata{"count": float64(2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m AuditMetadata
			require.NoError(t, m.Scan(tt.value))
			assert.Equal(t, tt.want, m)
		})
	}

	var m AuditMetadata
	assert.Error(t, m.Scan(42))
}

func TestAuditMetadata_Value(t *testing.T) {
	v, err := AuditMetadata(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = AuditMetadata{"role": "admin"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"admin"}`, string(v.([]byte)))
}
