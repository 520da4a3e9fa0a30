package reconcile

import (
	"sort"
	"strings"
	"sync"

	"github.com/community-vercel/theekadar-admin/internal/models"
)

// viewCache memoizes the last filtered view for one (query, version) pair.
type viewCache struct {
	mu      sync.Mutex
	valid   bool
	query   string
	version uint64
	ids     []string
}

// FilteredView returns the users whose email, profile name or role contains
// query, case-insensitively, in load order. An empty query returns every
// user. The stored collections are never modified.
func (e *Engine) FilteredView(query string) []models.UserRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := e.filteredIDsLocked(query)
	out := make([]models.UserRecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, *e.users[id])
	}
	return out
}

// Rows returns the filtered users joined with their profile and
// verification, newest first.
func (e *Engine) Rows(query string) []models.Aggregate {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := e.filteredIDsLocked(query)
	rows := make([]models.Aggregate, 0, len(ids))
	for _, id := range ids {
		agg, _ := e.aggregateLocked(id)
		rows = append(rows, agg)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].User.CreatedAt.After(rows[j].User.CreatedAt)
	})
	return rows
}

// Stats counts users, verified users and pending verifications.
func (e *Engine) Stats() models.UserStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := models.UserStats{Total: len(e.users)}
	for _, u := range e.users {
		if u.IsVerified {
			stats.Verified++
		}
	}
	for _, v := range e.verifications {
		if v.Status == models.VerificationPending {
			stats.Pending++
		}
	}
	return stats
}

// filteredIDsLocked must be called with at least the read lock held.
func (e *Engine) filteredIDsLocked(query string) []string {
	if query == "" {
		return append([]string(nil), e.order...)
	}

	e.view.mu.Lock()
	defer e.view.mu.Unlock()

	if e.view.valid && e.view.query == query && e.view.version == e.version {
		return append([]string(nil), e.view.ids...)
	}

	needle := strings.ToLower(query)
	ids := make([]string, 0)
	for _, id := range e.order {
		if e.matchesLocked(id, needle) {
			ids = append(ids, id)
		}
	}

	e.view.valid = true
	e.view.query = query
	e.view.version = e.version
	e.view.ids = ids
	return append([]string(nil), ids...)
}

func (e *Engine) matchesLocked(userID, needle string) bool {
	u := e.users[userID]
	if strings.Contains(strings.ToLower(u.Email), needle) {
		return true
	}
	name := ""
	if p, ok := e.profiles[userID]; ok {
		name = p.Name
	}
	if strings.Contains(strings.ToLower(name), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(string(u.Role)), needle)
}
