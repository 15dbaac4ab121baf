package dashboard

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/b3view/internal/logger"
)

// Factory builds the controller of a new session.
type Factory func() *Controller

type session struct {
	ctrl     *Controller
	lastSeen time.Time
}

// Sessions keeps one Controller per browser session. Sessions idle for
// longer than ttl are closed, which destroys their chart.
type Sessions struct {
	ttl     time.Duration
	factory Factory
	now     func() time.Time
	log     zerolog.Logger

	mu    sync.Mutex
	items map[string]*session

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewSessions starts a sweeper that runs every ttl/2. A ttl <= 0 disables
// expiry.
func NewSessions(ttl time.Duration, factory Factory) *Sessions {
	s := &Sessions{
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
		log:     logger.Component("sessions"),
		items:   make(map[string]*session),
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		s.wg.Add(1)
		go s.sweepLoop(ttl / 2)
	}
	return s
}

// Get returns the controller of id, creating it on first use.
func (s *Sessions) Get(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if it, ok := s.items[id]; ok {
		it.lastSeen = now
		return it.ctrl
	}
	it := &session{ctrl: s.factory(), lastSeen: now}
	s.items[id] = it
	s.log.Debug().Str("session_id", id).Msg("session created")
	return it.ctrl
}

// Transient returns a controller that is not registered. It serves requests
// from clients that have not sent a session cookie back yet, so they cannot
// grow the session map.
func (s *Sessions) Transient() *Controller {
	return s.factory()
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Drop closes and forgets session id.
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	it, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()
	if ok {
		it.ctrl.Close()
	}
}

// Sweep closes every session idle for longer than ttl and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*session
	for id, it := range s.items {
		if it.lastSeen.Before(cutoff) {
			expired = append(expired, it)
			delete(s.items, id)
		}
	}
	s.mu.Unlock()

	for _, it := range expired {
		it.ctrl.Close()
	}
	if len(expired) > 0 {
		s.log.Info().Int("expired", len(expired)).Msg("idle sessions closed")
	}
	return len(expired)
}

func (s *Sessions) sweepLoop(every time.Duration) {
	defer s.wg.Done()
	if every <= 0 {
		every = time.Second
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Close stops the sweeper and closes every session.
func (s *Sessions) Close() {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()

		s.mu.Lock()
		items := s.items
		s.items = make(map[string]*session)
		s.mu.Unlock()

		for _, it := range items {
			it.ctrl.Close()
		}
	})
}
