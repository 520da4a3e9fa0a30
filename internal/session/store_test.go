package session

import (
	"testing"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAdmin = models.AdminIdentity{ID: "a1", Email: "admin@theekadar.pk", Role: models.RoleAdmin}

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestStore_CreateAndGet(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	sess := s.Create("tok", testAdmin, time.Time{})
	require.NotEmpty(t, sess.ID)
	require.NotNil(t, sess.Engine)

	got, err := s.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, "tok", got.Token)

	page, _ := got.Page()
	assert.Equal(t, 1, page)
}

func TestStore_SessionsHaveSeparateEngines(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	a := s.Create("t1", testAdmin, time.Time{})
	b := s.Create("t2", testAdmin, time.Time{})

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Engine, b.Engine)
	assert.NotEmpty(t, a.CSRFToken)
	assert.NotEqual(t, a.CSRFToken, b.CSRFToken)
}

func TestStore_TokenExpiryCapsLifetime(t *testing.T) {
	s, now := newTestStore(time.Hour)

	sess := s.Create("tok", testAdmin, now.Add(10*time.Minute))
	assert.Equal(t, now.Add(10*time.Minute), sess.ExpiresAt)

	later := s.Create("tok", testAdmin, now.Add(5*time.Hour))
	assert.Equal(t, now.Add(time.Hour), later.ExpiresAt)
}

func TestStore_GetUnknown(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestStore_GetExpiredRemovesSession(t *testing.T) {
	s, now := newTestStore(time.Hour)
	sess := s.Create("tok", testAdmin, time.Time{})

	*now = now.Add(2 * time.Hour)

	_, err := s.Get(sess.ID)
	assert.ErrorIs(t, err, models.ErrSessionExpired)
	assert.Equal(t, 0, s.Len())
}

func TestStore_DeleteExpired(t *testing.T) {
	s, now := newTestStore(time.Hour)
	s.Create("old", testAdmin, now.Add(time.Minute))
	keep := s.Create("new", testAdmin, time.Time{})

	*now = now.Add(30 * time.Minute)

	assert.Equal(t, 1, s.DeleteExpired())
	assert.Equal(t, 1, s.Len())
	_, err := s.Get(keep.ID)
	assert.NoError(t, err)
}

func TestStore_Delete(t *testing.T) {
	s, _ := newTestStore(time.Hour)
	sess := s.Create("tok", testAdmin, time.Time{})

	s.Delete(sess.ID)
	s.Delete(sess.ID)

	_, err := s.Get(sess.ID)
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}
