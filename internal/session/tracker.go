// Package session keeps the navigation state of each logged-in user.
package session

import (
	"sync"
	"time"

	"github.com/terra-clan/manrura/internal/models"
	"github.com/terra-clan/manrura/internal/policy"
)

// Session is the navigation state of one user
type Session struct {
	UserID     string
	Navigation policy.Navigation
	LastSeen   time.Time
}

// Tracker holds one session per user id
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Start replaces the user's session with the role defaults, as on login
func (t *Tracker) Start(user models.User, wards []models.Ward, defaultStandardID string) policy.Navigation {
	t.mu.Lock()
	defer t.mu.Unlock()

	nav := policy.NewNavigation(user, wards, defaultStandardID)
	t.sessions[user.ID] = &Session{UserID: user.ID, Navigation: nav, LastSeen: t.now()}
	return nav
}

// Get returns the user's navigation state, creating it with the role
// defaults if none exists
func (t *Tracker) Get(user models.User, wards []models.Ward, defaultStandardID string) policy.Navigation {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.touch(user, wards, defaultStandardID)
	return s.Navigation
}

// Update runs fn on the user's navigation state and stores the result
func (t *Tracker) Update(user models.User, wards []models.Ward, defaultStandardID string, fn func(nav *policy.Navigation) bool) (policy.Navigation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.touch(user, wards, defaultStandardID)
	nav := s.Navigation
	ok := fn(&nav)
	s.Navigation = nav
	return nav, ok
}

// End drops the user's session
func (t *Tracker) End(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, userID)
}

// Len returns the number of live sessions
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Expired returns the ids of sessions idle for longer than idle
func (t *Tracker) Expired(idle time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-idle)
	var ids []string
	for id, s := range t.sessions {
		if s.LastSeen.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// touch must be called with t.mu held
func (t *Tracker) touch(user models.User, wards []models.Ward, defaultStandardID string) *Session {
	s, ok := t.sessions[user.ID]
	if !ok {
		s = &Session{UserID: user.ID, Navigation: policy.NewNavigation(user, wards, defaultStandardID)}
		t.sessions[user.ID] = s
	}
	s.LastSeen = t.now()
	return s
}
