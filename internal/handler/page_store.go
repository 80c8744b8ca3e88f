package handler

import (
	"context"
	"sync"
	"time"

	"activity-board/internal/board"
	"activity-board/pkg/logger"
)

type pageEntry struct {
	page     *board.Page
	lastSeen time.Time
}

// PageStore keeps one board.Page per browser session and forgets pages
// that have been idle longer than maxIdle.
type PageStore struct {
	maxIdle time.Duration
	now     func() time.Time
	logger  *logger.Logger

	mu     sync.Mutex
	pages  map[string]*pageEntry
	ticker *time.Ticker
	done   chan struct{}
}

// NewPageStore creates an empty store
func NewPageStore(maxIdle time.Duration, logger *logger.Logger) *PageStore {
	return &PageStore{
		maxIdle: maxIdle,
		now:     time.Now,
		logger:  logger,
		pages:   make(map[string]*pageEntry),
	}
}

// Get returns the session's page, creating it on first use
func (s *PageStore) Get(sessionID string) *board.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.pages[sessionID]
	if !ok {
		entry = &pageEntry{page: board.NewPage()}
		s.pages[sessionID] = entry
	}
	entry.lastSeen = s.now()
	return entry.page
}

// Len returns the number of live pages
func (s *PageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Sweep drops idle pages and returns how many were removed
func (s *PageStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.maxIdle)
	removed := 0
	for id, entry := range s.pages {
		if entry.lastSeen.Before(cutoff) {
			delete(s.pages, id)
			removed++
		}
	}
	return removed
}

// Start sweeps idle pages every interval until Stop is called
func (s *PageStore) Start(ctx context.Context, interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return nil
	}
	s.ticker = time.NewTicker(interval)
	s.done = make(chan struct{})
	go s.sweepRoutine(ctx, s.ticker, s.done)

	s.logger.WithField("interval", interval.String()).Info("Page store sweeper started")
	return nil
}

// Stop halts the sweeper
func (s *PageStore) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return nil
	}
	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	return nil
}

func (s *PageStore) sweepRoutine(ctx context.Context, ticker *time.Ticker, done <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.WithField("removed", n).Debug("Swept idle pages")
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}
