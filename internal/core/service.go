package core

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Service owns the session registry and the fetch-by-year memoization.
type Service struct {
	fetcher    ListingFetcher
	docs       DocumentFetcher
	sessionTTL time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	cacheMu sync.RWMutex
	cache   map[int]ListingTable
	group   singleflight.Group
}

// Session holds one user's selections. All fields are guarded by mu, so a
// session processes one operation at a time even if the browser fires
// overlapping requests.
type Session struct {
	mu       sync.Mutex
	lastSeen time.Time

	year        int
	make        string
	version     string
	table       ListingTable
	tableLoaded bool
	pdf         *PDFDocument
}

// NewService creates a Service. sessionTTL bounds how long an idle session
// is kept; zero disables expiry.
func NewService(fetcher ListingFetcher, docs DocumentFetcher, sessionTTL time.Duration) *Service {
	return &Service{
		fetcher:    fetcher,
		docs:       docs,
		sessionTTL: sessionTTL,
		sessions:   make(map[string]*Session),
		cache:      make(map[int]ListingTable),
	}
}

// EnsureSession returns id when it names a live session, otherwise creates
// a new session and returns its ID.
func (s *Service) EnsureSession(id string) string {
	if id != "" {
		s.mu.RLock()
		_, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return id
		}
	}

	id = uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &Session{lastSeen: time.Now()}
	s.mu.Unlock()
	return id
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Service) session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	sess.mu.Lock()
	sess.lastSeen = time.Now()
	return sess, nil
}

// StartSessionSweeper removes idle sessions every interval until ctx is
// cancelled. No-op when expiry is disabled.
func (s *Service) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if s.sessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepSessions()
		}
	}
}

func (s *Service) sweepSessions() {
	cutoff := time.Now().Add(-s.sessionTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			slog.Debug("session expired", "session_id", id)
		}
	}
}

// listing returns the table for year, fetching it at most once per year.
// Concurrent requests for the same year share one fetch. Failed fetches
// are not cached, so reselecting the year retries.
func (s *Service) listing(ctx context.Context, year int) (ListingTable, error) {
	s.cacheMu.RLock()
	table, ok := s.cache[year]
	s.cacheMu.RUnlock()
	if ok {
		return table, nil
	}

	v, err, _ := s.group.Do(strconv.Itoa(year), func() (interface{}, error) {
		table, err := s.fetcher.FetchListing(ctx, year)
		if err != nil {
			// Partial rows still flow back to the caller.
			return table, err
		}
		s.cacheMu.Lock()
		s.cache[year] = table
		s.cacheMu.Unlock()
		return table, nil
	})
	if v == nil {
		return nil, err
	}
	return v.(ListingTable), err
}
