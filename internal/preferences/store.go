package preferences

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/telemetry"
)

// Store is the read-through preference cache. Entries live for a short
// TTL; concurrent misses for the same user are coalesced into one
// upstream fetch. A fetch failure yields the deterministic default
// profile, cached briefly so upstream outages do not turn into request
// storms.
type Store struct {
	service    Service
	ttl        time.Duration
	failureTTL time.Duration
	logger     logger.Logger
	telemetry  *telemetry.Provider

	mu      sync.RWMutex
	entries map[string]cacheEntry
	group   singleflight.Group

	lastSweep time.Time
}

type cacheEntry struct {
	profile   *domain.PreferenceProfile
	expiresAt time.Time
}

// sweepInterval bounds how often the expired-entry sweep runs.
const sweepInterval = time.Minute

// NewStore creates a preference store over the given service. A nil
// telemetry provider disables cache metrics.
func NewStore(service Service, ttl, failureTTL time.Duration, log logger.Logger, provider *telemetry.Provider) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{
		service:    service,
		ttl:        ttl,
		failureTTL: failureTTL,
		logger:     log,
		telemetry:  provider,
		entries:    make(map[string]cacheEntry),
		lastSweep:  time.Now(),
	}
}

// GetProfile returns the cached profile for userID, fetching it from the
// preferences service on a miss. Never returns an error: service failure
// degrades to the default profile.
func (s *Store) GetProfile(ctx context.Context, userID string) *domain.PreferenceProfile {
	if profile, ok := s.lookup(userID); ok {
		if s.telemetry != nil {
			s.telemetry.RecordCacheHit()
		}
		return profile
	}

	// Coalesce concurrent misses per user: later callers wait on the
	// first caller's in-flight fetch instead of issuing duplicates.
	result, _, _ := s.group.Do(userID, func() (any, error) {
		if profile, ok := s.lookup(userID); ok {
			if s.telemetry != nil {
				s.telemetry.RecordCacheHit()
			}
			return profile, nil
		}
		if s.telemetry != nil {
			s.telemetry.RecordCacheMiss()
		}

		profile, err := s.service.FetchProfile(ctx, userID)
		if err != nil {
			s.logger.Warn("preferences fetch failed, using default profile",
				logger.String("user_id", userID),
				logger.Error(err),
			)
			if s.telemetry != nil {
				s.telemetry.RecordCacheFallback()
			}
			fallback := domain.DefaultProfile(userID)
			s.put(userID, fallback, s.failureTTL)
			return fallback, nil
		}

		s.put(userID, profile, s.ttl)
		return profile, nil
	})

	return result.(*domain.PreferenceProfile)
}

// Invalidate drops the cached entry for userID.
func (s *Store) Invalidate(userID string) {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
}

// Len returns the number of live cache entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(userID string) (*domain.PreferenceProfile, bool) {
	s.mu.RLock()
	entry, ok := s.entries[userID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.profile, true
}

func (s *Store) put(userID string, profile *domain.PreferenceProfile, ttl time.Duration) {
	now := time.Now()

	s.mu.Lock()
	s.entries[userID] = cacheEntry{profile: profile, expiresAt: now.Add(ttl)}

	// Piggyback expired-entry eviction on writes so the map stays
	// bounded without a background goroutine.
	if now.Sub(s.lastSweep) >= sweepInterval {
		for key, entry := range s.entries {
			if now.After(entry.expiresAt) {
				delete(s.entries, key)
			}
		}
		s.lastSweep = now
	}
	s.mu.Unlock()
}
