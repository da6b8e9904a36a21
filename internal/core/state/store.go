package state

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrStoreStopped = errors.New("store stopped")

type request struct {
	action Action
	reply  chan result
}

type result struct {
	state *State
	err   error
}

// Store serializes every action of one workspace through a single
// goroutine. Readers take snapshots with State and never block writers.
type Store struct {
	current atomic.Pointer[State]
	actions chan request
	quit    chan struct{}
	stopped sync.Once
	now     Clock

	mu      sync.Mutex
	subs    map[int]func(*State)
	nextSub int
}

func NewStore(initial *State, now Clock) *Store {
	if initial == nil {
		initial = New()
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{
		actions: make(chan request),
		quit:    make(chan struct{}),
		now:     now,
		subs:    make(map[int]func(*State)),
	}
	s.current.Store(initial)
	return s
}

// State returns the latest snapshot.
func (s *Store) State() *State {
	return s.current.Load()
}

// Dispatch queues a and waits for the resulting snapshot. If ctx ends after
// the action was queued the action may still be applied.
func (s *Store) Dispatch(ctx context.Context, a Action) (*State, error) {
	req := request{action: a, reply: make(chan result, 1)}

	select {
	case s.actions <- req:
	case <-s.quit:
		return nil, ErrStoreStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-req.reply:
		return res.state, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Subscribe registers fn to be called from the store goroutine with every
// new snapshot. fn must not call Dispatch.
func (s *Store) Subscribe(fn func(*State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) Run() {
	for {
		select {
		case <-s.quit:
			return

		case req := <-s.actions:
			prev := s.current.Load()
			next, err := Reduce(prev, req.action, s.now())
			if err != nil {
				log.Debug().Err(err).Type("action", req.action).Msg("Action rejected")
				req.reply <- result{state: prev, err: err}
				continue
			}
			if next != prev {
				s.current.Store(next)
				s.notify(next)
			}
			req.reply <- result{state: next}
		}
	}
}

func (s *Store) notify(st *State) {
	s.mu.Lock()
	fns := make([]func(*State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) Stop() {
	s.stopped.Do(func() { close(s.quit) })
}
