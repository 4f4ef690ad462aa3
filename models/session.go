package models

import (
	"sort"
	"sync"

	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/google/uuid"
)

// Session holds the tracking state of a client streaming its position: the
// last reported position and the regions it is currently in.
type Session struct {
	ID          uint32
	SessionUUID string

	mutex       sync.RWMutex
	position    spatial.Vec3
	hasPosition bool
	regions     map[string]struct{}
	updates     int
}

func NewSession(id uint32) *Session {
	return &Session{
		ID:          id,
		SessionUUID: uuid.New().String(),
		regions:     make(map[string]struct{}),
	}
}

// Update records a new position along with the IDs of the regions containing
// it, and returns the regions that were entered and left since the previous
// update. Both slices are sorted.
func (s *Session) Update(position spatial.Vec3, inside []string) (entered, left []string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	current := make(map[string]struct{}, len(inside))
	for _, id := range inside {
		current[id] = struct{}{}
		if _, ok := s.regions[id]; !ok {
			entered = append(entered, id)
		}
	}

	for id := range s.regions {
		if _, ok := current[id]; !ok {
			left = append(left, id)
		}
	}

	s.regions = current
	s.position = position
	s.hasPosition = true
	s.updates++

	sort.Strings(entered)
	sort.Strings(left)
	return entered, left
}

// Position returns the last reported position.
func (s *Session) Position() (spatial.Vec3, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.position, s.hasPosition
}

// Regions returns the sorted IDs of the regions the client is in.
func (s *Session) Regions() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	regions := make([]string, 0, len(s.regions))
	for id := range s.regions {
		regions = append(regions, id)
	}
	sort.Strings(regions)
	return regions
}

// UpdateCount returns the number of positions reported so far.
func (s *Session) UpdateCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.updates
}

// SessionStore references the tracking sessions of connected clients.
type SessionStore struct {
	initOnce sync.Once
	mutex    sync.RWMutex
	sessions map[uint32]*Session
	ids      SequentialIDGenerator
}

func (s *SessionStore) init() {
	s.sessions = make(map[uint32]*Session)
}

// New creates a session and adds it to the store.
func (s *SessionStore) New() *Session {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	session := NewSession(s.ids.New())
	s.sessions[session.ID] = session

	instrumentIncreaseSessionGauge()
	instrumentCountSession()
	return session
}

func (s *SessionStore) Remove(session *Session) {
	s.initOnce.Do(s.init)
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return
	}

	delete(s.sessions, session.ID)
	s.ids.Reuse(session.ID)

	instrumentDecreaseSessionGauge()
}

func (s *SessionStore) Get(id uint32) (*Session, bool) {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, ok := s.sessions[id]
	return session, ok
}

func (s *SessionStore) Len() int {
	s.initOnce.Do(s.init)
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.sessions)
}
