package timesync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
)

type stubTimeSource struct {
	calls      atomic.Int64
	serverTime func() int64
	tryAgain   int64
	err        error
	delay      time.Duration
}

func (s *stubTimeSource) QueryTime(ctx context.Context) (int64, int64, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return 0, 0, s.err
	}
	return s.serverTime(), s.tryAgain, nil
}

func TestSync_EnsureFresh_AppliesOffset(t *testing.T) {
	source := &stubTimeSource{
		serverTime: func() int64 { return time.Now().Unix() + 120 },
	}
	ts := NewSync(source, logger.Nop())

	ts.EnsureFresh(context.Background())

	assert.InDelta(t, 120, ts.Offset().Seconds(), 1.5)
	assert.InDelta(t, 120, time.Until(ts.Now()).Seconds(), 1.5)
	assert.EqualValues(t, 1, source.calls.Load())
}

func TestSync_EnsureFresh_CachedUntilDeadline(t *testing.T) {
	source := &stubTimeSource{
		serverTime: func() int64 { return time.Now().Unix() },
		tryAgain:   3600,
	}
	ts := NewSync(source, logger.Nop())

	for range 5 {
		ts.EnsureFresh(context.Background())
	}

	assert.EqualValues(t, 1, source.calls.Load())
}

func TestSync_EnsureFresh_FailOpen(t *testing.T) {
	source := &stubTimeSource{err: errors.New("network down")}
	ts := NewSync(source, logger.Nop())

	ts.EnsureFresh(context.Background())

	assert.Zero(t, ts.Offset(), "failed sync keeps the previous offset")
	delta := time.Since(ts.Now())
	assert.Less(t, delta.Abs(), time.Second, "Now falls back to the local clock")
}

func TestSync_EnsureFresh_SingleFlight(t *testing.T) {
	source := &stubTimeSource{
		serverTime: func() int64 { return time.Now().Unix() },
		delay:      50 * time.Millisecond,
	}
	ts := NewSync(source, logger.Nop())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts.EnsureFresh(context.Background())
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, source.calls.Load())
}
