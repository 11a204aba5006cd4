// Package timesync keeps a cached offset between the local clock and
// Steam's server clock so guard codes stay aligned even on hosts with
// a skewed clock.
package timesync

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
)

// minRefreshInterval is how long an offset stays fresh when the server
// gives no longer hint.
const minRefreshInterval = 10 * time.Minute

// TimeSource answers with the server's current Unix time and an
// optional freshness hint in seconds.
type TimeSource interface {
	QueryTime(ctx context.Context) (serverTime int64, tryAgainSeconds int64, err error)
}

// Sync caches the clock offset from a TimeSource. The zero offset is
// used until the first successful query; a failed query never blocks
// code generation.
type Sync struct {
	source TimeSource
	logger *logger.Logger
	group  singleflight.Group

	mu       sync.RWMutex
	offset   time.Duration
	deadline time.Time
}

func NewSync(source TimeSource, log *logger.Logger) *Sync {
	return &Sync{
		source: source,
		logger: log,
	}
}

// EnsureFresh refetches the server time when the cached offset is past
// its deadline. Concurrent callers share a single request. Errors are
// logged and swallowed, leaving the previous offset in place.
func (s *Sync) EnsureFresh(ctx context.Context) {
	s.mu.RLock()
	fresh := time.Now().Before(s.deadline)
	s.mu.RUnlock()
	if fresh {
		return
	}

	s.group.Do("sync", func() (any, error) {
		serverTime, tryAgain, err := s.source.QueryTime(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("time sync failed, keeping previous offset")
			return nil, nil
		}

		now := time.Now()
		offset := time.Duration(serverTime-now.Unix()) * time.Second
		ttl := time.Duration(tryAgain) * time.Second
		if ttl < minRefreshInterval {
			ttl = minRefreshInterval
		}

		s.mu.Lock()
		s.offset = offset
		s.deadline = now.Add(ttl)
		s.mu.Unlock()

		s.logger.Debug().
			Int64("offset_seconds", int64(offset/time.Second)).
			Time("deadline", now.Add(ttl)).
			Msg("time sync refreshed")
		return nil, nil
	})
}

// Now returns the current time adjusted by the cached offset.
func (s *Sync) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Now().Add(s.offset)
}

// Offset returns the cached clock offset.
func (s *Sync) Offset() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}
