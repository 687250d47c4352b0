package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/notegrove/notegrove/internal/entity"
)

// Conn is the outbound half of a live connection. Implementations must
// not block: delivery is best-effort and a slow recipient only loses
// its own events.
type Conn interface {
	Send(msg Message) error
}

type liveSession struct {
	entity.Session
	conn Conn
}

// Registry tracks the live sessions of authenticated users. It is an
// explicit object rather than package state so tests can run several
// independent registries. Every connection runs its own goroutine, so
// the map takes a lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*liveSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*liveSession)}
}

func (r *Registry) Add(sessionID string, userID uuid.UUID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = &liveSession{
		Session: entity.Session{ID: sessionID, UserID: userID},
		conn:    conn,
	}
}

func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
}

// Subscribe marks the session as viewing one note's detail,
// idempotently replacing any earlier subscription.
func (r *Registry) Subscribe(sessionID string, noteID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[sessionID]; ok {
		s.SubscribedNoteID = &noteID
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// sessionsForUsers snapshots the active sessions belonging to any of
// the given users, excluding the origin session.
func (r *Registry) sessionsForUsers(userIDs []uuid.UUID, skipSessionID string) []*liveSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*liveSession
	for _, s := range r.sessions {
		if s.ID == skipSessionID {
			continue
		}
		for _, id := range userIDs {
			if s.UserID == id {
				result = append(result, s)
				break
			}
		}
	}

	return result
}
