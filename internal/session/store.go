package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-prakriti-web/internal/errors"
	"go-prakriti-web/internal/logger"
	"go-prakriti-web/internal/observer"
	"go-prakriti-web/internal/service"
)

// Store keeps controllers in memory, keyed by session id. Sessions idle for
// longer than the TTL are evicted by Sweep, and at most maxSessions live at
// once. A session with a request in flight is never evicted.
type Store struct {
	svc         service.AnalysisService
	events      observer.Subject
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewStore creates an empty store. maxSessions <= 0 means no limit.
func NewStore(svc service.AnalysisService, events observer.Subject, ttl time.Duration, maxSessions int) *Store {
	return &Store{
		svc:         svc,
		events:      events,
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*Controller),
	}
}

// Create starts a new session with a random id. When the store is full the
// least recently used idle session is evicted; if every session is loading
// the new one is refused.
func (s *Store) Create() (*Controller, error) {
	c := NewController(uuid.NewString(), s.svc, s.events)
	c.touch(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		if !s.evictOldestLocked() {
			return nil, apperrors.NewUnavailableError(apperrors.MsgTooManySessions,
				fmt.Errorf("%d sessions in flight", len(s.sessions)))
		}
	}
	s.sessions[c.ID()] = c
	return c, nil
}

func (s *Store) evictOldestLocked() bool {
	var (
		oldestID   string
		oldestSeen time.Time
	)
	for id, c := range s.sessions {
		lastSeen, evictable := c.idleSince()
		if !evictable {
			continue
		}
		if oldestID == "" || lastSeen.Before(oldestSeen) {
			oldestID, oldestSeen = id, lastSeen
		}
	}
	if oldestID == "" {
		return false
	}
	delete(s.sessions, oldestID)
	logger.WithFields(logrus.Fields{
		"session_id": oldestID,
		"idle_since": oldestSeen,
	}).Debug("Session evicted to make room")
	return true
}

// Get returns the session for id and marks it as used
func (s *Store) Get(id string) (*Controller, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.RLock()
	c, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	c.touch(s.now())
	return c, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown or
// expired. created reports which happened.
func (s *Store) GetOrCreate(id string) (c *Controller, created bool, err error) {
	if c, ok := s.Get(id); ok {
		return c, false, nil
	}
	c, err = s.Create()
	if err != nil {
		return nil, false, err
	}
	return c, true, nil
}

// Len returns the number of live sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts expired sessions and returns how many were removed
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		lastSeen, evictable := c.idleSince()
		if evictable && lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				logger.WithField("removed", removed).Debug("Expired sessions swept")
			}
		}
	}
}

// Wait blocks until no session has a prediction in flight
func (s *Store) Wait() {
	s.mu.RLock()
	controllers := make([]*Controller, 0, len(s.sessions))
	for _, c := range s.sessions {
		controllers = append(controllers, c)
	}
	s.mu.RUnlock()

	for _, c := range controllers {
		c.Wait()
	}
}
