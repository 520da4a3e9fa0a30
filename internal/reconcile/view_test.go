package reconcile

import (
	"strings"
	"testing"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(users []models.UserRecord) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func TestFilteredView_EmptyQueryReturnsAllInOrder(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []string{"u1", "u2", "u3"}, ids(e.FilteredView("")))
}

func TestFilteredView_MatchesEmailNameAndRole(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"CLIENT.io", []string{"u2"}},
		{"alice", []string{"u1"}},
		{"khan", []string{"u3"}},
		{"worker", []string{"u1"}},
		{"THEKADAR", []string{"u3"}},
		{"@", []string{"u1", "u2", "u3"}},
		{"zzz", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(e.FilteredView(tt.query)))
		})
	}
}

func TestFilteredView_DoesNotMutate(t *testing.T) {
	e := newTestEngine(t)
	before := takeSnapshot(e)
	version := e.Version()

	_ = e.FilteredView("alice")
	_ = e.Rows("a")

	assert.Equal(t, before, takeSnapshot(e))
	assert.Equal(t, version, e.Version())
}

func TestFilteredView_SeesMutationsAfterCaching(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []string{"u1"}, ids(e.FilteredView("alice")))

	e.ApplyDelete("u1")
	assert.Empty(t, e.FilteredView("alice"))

	client := models.RoleClient
	e.ApplyUpdate("u3", models.UserPatch{Role: &client})
	assert.Equal(t, []string{"u2", "u3"}, ids(e.FilteredView("client")))
	assert.Empty(t, e.FilteredView("khan"), "profile name gone after downgrade")
}

func TestFilteredView_PureAndTotal(t *testing.T) {
	e := newTestEngine(t)
	queries := []string{"", "a", "A", "x.com", "o", " ", "car", "pending", "u1"}

	for _, q := range queries {
		got := make(map[string]bool)
		for _, u := range e.FilteredView(q) {
			got[u.ID] = true
		}
		for _, u := range e.Users() {
			agg, _ := e.Aggregate(u.ID)
			name := ""
			if agg.Profile != nil {
				name = agg.Profile.Name
			}
			lq := strings.ToLower(q)
			want := strings.Contains(strings.ToLower(u.Email), lq) ||
				strings.Contains(strings.ToLower(name), lq) ||
				strings.Contains(strings.ToLower(string(u.Role)), lq)
			assert.Equal(t, want, got[u.ID], "query %q user %s", q, u.ID)
		}
	}
}

func TestRows_JoinsAndSortsNewestFirst(t *testing.T) {
	e := newTestEngine(t)

	rows := e.Rows("")
	require.Len(t, rows, 3)
	assert.Equal(t, "u3", rows[0].User.ID)
	assert.Equal(t, "u1", rows[2].User.ID)
	require.NotNil(t, rows[2].Profile)
	assert.Equal(t, "Alice", rows[2].Profile.Name)
	require.NotNil(t, rows[2].Verification)
	assert.Nil(t, rows[1].Profile)
}

func TestStats_DerivedFromCurrentState(t *testing.T) {
	e := newTestEngine(t)

	first := e.Stats()
	assert.Equal(t, models.UserStats{Total: 3, Verified: 1, Pending: 1}, first)
	assert.Equal(t, first, e.Stats())

	e.ApplyDelete("u1")
	assert.Equal(t, models.UserStats{Total: 2, Verified: 1, Pending: 0}, e.Stats())
}
