package upcoming

import (
	"context"
	"strings"
	"sync"
	"time"

	"releaseradar/models"
)

// Sequencer serializes UI-triggered list requests: free-text query changes
// are debounced by a quiet period, every other change dispatches immediately,
// and a response that resolves after a newer request was issued is discarded
// instead of delivered. The newest result always wins regardless of upstream
// resolution order.
type Sequencer struct {
	fetch    func(ctx context.Context, req ListRequest) models.ListPage
	debounce time.Duration

	mu      sync.Mutex
	gen     uint64
	lastReq *ListRequest
	timer   *time.Timer
	closed  bool

	results chan SequencedResult
	done    chan struct{}
}

// SequencedResult is one delivered, non-stale response.
type SequencedResult struct {
	Request ListRequest
	Page    models.ListPage
}

// NewSequencer wraps a fetch function. debounce is the quiet period applied
// when the free-text query changed between submissions; zero disables
// debouncing entirely.
func NewSequencer(fetch func(ctx context.Context, req ListRequest) models.ListPage, debounce time.Duration) *Sequencer {
	return &Sequencer{
		fetch:    fetch,
		debounce: debounce,
		results:  make(chan SequencedResult, 1),
		done:     make(chan struct{}),
	}
}

// Results delivers resolved, current responses. The channel holds only the
// newest undelivered result; a consumer that falls behind sees the latest
// state, never an intermediate one.
func (s *Sequencer) Results() <-chan SequencedResult {
	return s.results
}

// Submit registers a new request as the current UI state. Any in-flight
// response for an older request becomes stale and will be discarded when it
// resolves.
func (s *Sequencer) Submit(ctx context.Context, req ListRequest) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	s.gen++
	gen := s.gen

	queryChanged := s.lastReq == nil || s.lastReq.Query != req.Query
	reqCopy := req
	s.lastReq = &reqCopy

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	// Only a changed free-text query waits out the quiet period; sort, page
	// and category changes dispatch immediately.
	if s.debounce > 0 && queryChanged && strings.TrimSpace(req.Query) != "" {
		s.timer = time.AfterFunc(s.debounce, func() {
			s.dispatch(ctx, req, gen)
		})
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	go s.dispatch(ctx, req, gen)
}

func (s *Sequencer) dispatch(ctx context.Context, req ListRequest, gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	page := s.fetch(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// A newer request was issued while this one was in flight; its
		// result must not overwrite newer state.
		return
	}

	// Replace any undelivered older result with this one.
	select {
	case <-s.results:
	default:
	}
	select {
	case s.results <- SequencedResult{Request: req, Page: page}:
	case <-s.done:
	}
}

// Close stops the sequencer. Pending debounced dispatches are dropped.
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	close(s.done)
}
