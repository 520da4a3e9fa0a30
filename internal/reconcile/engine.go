// Package reconcile keeps an in-memory mirror of backend users, profiles and
// verifications consistent after mutations, without re-fetching.
//
// The engine never talks to the backend. Callers issue the remote call first
// and apply the matching Apply* method only once the call has succeeded.
// The mutex protects the maps; it is never held across a remote call, so
// overlapping mutations on one id apply in completion order (last write wins).
package reconcile

import (
	"sort"
	"sync"

	"github.com/community-vercel/theekadar-admin/internal/models"
)

// Engine owns one console view's users, profiles and verifications.
type Engine struct {
	mu sync.RWMutex

	order         []string // user ids in load order
	users         map[string]*models.UserRecord
	profiles      map[string]*models.ProfileRecord
	verifications map[string]*models.VerificationRecord
	selected      map[string]struct{}

	version uint64
	view    viewCache
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{
		users:         make(map[string]*models.UserRecord),
		profiles:      make(map[string]*models.ProfileRecord),
		verifications: make(map[string]*models.VerificationRecord),
		selected:      make(map[string]struct{}),
	}
}

// Load replaces all three collections with one backend page.
// Duplicate user ids keep the last occurrence; profiles and verifications
// without a matching user are dropped. The selection set is cleared.
func (e *Engine) Load(page models.UserPage) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.order = e.order[:0]
	e.users = make(map[string]*models.UserRecord, len(page.Users))
	e.profiles = make(map[string]*models.ProfileRecord, len(page.Profiles))
	e.verifications = make(map[string]*models.VerificationRecord, len(page.Verifications))
	e.selected = make(map[string]struct{})

	for i := range page.Users {
		u := page.Users[i]
		if u.ID == "" {
			continue
		}
		if _, seen := e.users[u.ID]; !seen {
			e.order = append(e.order, u.ID)
		}
		e.users[u.ID] = &u
	}
	for i := range page.Profiles {
		p := page.Profiles[i]
		if _, ok := e.users[p.UserID]; ok {
			e.profiles[p.UserID] = &p
		}
	}
	for i := range page.Verifications {
		v := page.Verifications[i]
		if _, ok := e.users[v.UserID]; ok {
			e.verifications[v.UserID] = &v
		}
	}

	e.touch()
}

// ApplyDelete removes a user and its profile and verification.
// Deleting an unknown id is a no-op.
func (e *Engine) ApplyDelete(userID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removeLocked(userID) {
		e.touch()
	}
}

// ApplyBulkDelete removes every id in userIDs, tolerating unknown ids,
// then clears the selection.
func (e *Engine) ApplyBulkDelete(userIDs []string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range userIDs {
		e.removeLocked(id)
	}
	e.selected = make(map[string]struct{})
	e.touch()
}

// ApplyUpdate merges patch into the user's record. A resulting client role
// drops the profile and verification; otherwise a verification status in
// the patch is upserted into both. Unknown user ids are ignored.
func (e *Engine) ApplyUpdate(userID string, patch models.UserPatch) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.updateLocked(userID, patch) {
		e.touch()
	}
}

// ApplyBulkUpdate applies patch to every id, then clears the selection.
// An empty id set or a patch with no fields returns ErrInvalidArgument
// and changes nothing.
func (e *Engine) ApplyBulkUpdate(userIDs []string, patch models.BulkPatch) error {
	if err := ValidateBulk(userIDs, patch); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	up := patch.UserPatch()
	for _, id := range userIDs {
		e.updateLocked(id, up)
	}
	e.selected = make(map[string]struct{})
	e.touch()
	return nil
}

// ValidateBulk checks the arguments of a bulk update before any remote call.
func ValidateBulk(userIDs []string, patch models.BulkPatch) error {
	if len(userIDs) == 0 {
		return models.InvalidArgument("select at least one user")
	}
	if patch.IsEmpty() {
		return models.InvalidArgument("select at least one field to update")
	}
	if patch.VerificationStatus != nil && !patch.VerificationStatus.Valid() {
		return models.InvalidArgument("unknown verification status")
	}
	return nil
}

// Aggregate returns the user joined with its profile and verification.
// Missing profile or verification is reported as nil, not as an error.
func (e *Engine) Aggregate(userID string) (models.Aggregate, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.aggregateLocked(userID)
}

// Users returns a copy of the user collection in load order.
func (e *Engine) Users() []models.UserRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.UserRecord, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, *e.users[id])
	}
	return out
}

// Profiles returns a copy of the profiles, ordered like their users.
func (e *Engine) Profiles() []models.ProfileRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.ProfileRecord, 0, len(e.profiles))
	for _, id := range e.order {
		if p, ok := e.profiles[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// Verifications returns a copy of the verifications, ordered like their users.
func (e *Engine) Verifications() []models.VerificationRecord {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]models.VerificationRecord, 0, len(e.verifications))
	for _, id := range e.order {
		if v, ok := e.verifications[id]; ok {
			out = append(out, *v)
		}
	}
	return out
}

// Version increases on every change to the collections.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Select marks ids for group operations. Ids not in the collection are ignored.
func (e *Engine) Select(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		if _, ok := e.users[id]; ok {
			e.selected[id] = struct{}{}
		}
	}
}

// Deselect unmarks ids.
func (e *Engine) Deselect(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range ids {
		delete(e.selected, id)
	}
}

// SelectAll marks every loaded user.
func (e *Engine) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range e.order {
		e.selected[id] = struct{}{}
	}
}

// ClearSelection empties the selection set.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.selected = make(map[string]struct{})
}

// Selected returns the selected ids, sorted.
func (e *Engine) Selected() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	ids := make([]string, 0, len(e.selected))
	for id := range e.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (e *Engine) removeLocked(userID string) bool {
	_, hadUser := e.users[userID]
	_, hadProfile := e.profiles[userID]
	_, hadVerification := e.verifications[userID]
	if !hadUser && !hadProfile && !hadVerification {
		return false
	}

	delete(e.users, userID)
	delete(e.profiles, userID)
	delete(e.verifications, userID)
	delete(e.selected, userID)

	for i, id := range e.order {
		if id == userID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true
}

func (e *Engine) updateLocked(userID string, patch models.UserPatch) bool {
	user, ok := e.users[userID]
	if !ok {
		return false
	}

	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.IsVerified != nil {
		user.IsVerified = *patch.IsVerified
	}

	if user.IsClient() {
		delete(e.profiles, userID)
		delete(e.verifications, userID)
		return true
	}

	if patch.VerificationStatus == nil {
		return true
	}
	status := *patch.VerificationStatus

	if p, ok := e.profiles[userID]; ok {
		p.VerificationStatus = status
	} else {
		e.profiles[userID] = &models.ProfileRecord{UserID: userID, VerificationStatus: status}
	}

	if v, ok := e.verifications[userID]; ok {
		v.Status = status
	} else {
		e.verifications[userID] = &models.VerificationRecord{UserID: userID, Status: status}
	}
	return true
}

func (e *Engine) aggregateLocked(userID string) (models.Aggregate, bool) {
	user, ok := e.users[userID]
	if !ok {
		return models.Aggregate{}, false
	}

	agg := models.Aggregate{User: *user}
	if p, ok := e.profiles[userID]; ok {
		cp := *p
		agg.Profile = &cp
	}
	if v, ok := e.verifications[userID]; ok {
		cp := *v
		agg.Verification = &cp
	}
	return agg, true
}

// touch must be called with the write lock held.
func (e *Engine) touch() {
	e.version++
}
