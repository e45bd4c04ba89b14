package contagion

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

type RoundStats struct {
	Trigger       int
	Round         int
	Processing    int
	Candidates    int
	NewFailures   int
	FundDrawn     float64
	FundRemaining float64
	Duration      time.Duration
}

type RoundObserver interface {
	ObserveRound(stats RoundStats)
}

type RoundLogger struct {
	logger zerolog.Logger
}

func NewRoundLogger(logger zerolog.Logger) *RoundLogger {
	return &RoundLogger{logger: logger}
}

func (l *RoundLogger) ObserveRound(s RoundStats) {
	if l == nil {
		return
	}
	l.logger.Debug().
		Int("trigger", s.Trigger).
		Int("round", s.Round).
		Int("processing", s.Processing).
		Int("candidates", s.Candidates).
		Int("new_failures", s.NewFailures).
		Float64("fund_drawn", s.FundDrawn).
		Float64("fund_remaining", s.FundRemaining).
		Float64("duration_ms", float64(s.Duration.Microseconds())/1000.0).
		Msg("cascade round")
}

// AsyncRoundObserver hands observations to a background goroutine through a
// bounded buffer. Events are dropped, never blocked on, when the buffer is full.
type AsyncRoundObserver struct {
	next    RoundObserver
	events  chan RoundStats
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

func NewAsyncRoundObserver(next RoundObserver, buffer int) *AsyncRoundObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncRoundObserver{
		next:   next,
		events: make(chan RoundStats, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveRound(ev)
		}
	}()

	return o
}

func (o *AsyncRoundObserver) ObserveRound(stats RoundStats) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- stats:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncRoundObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close flushes pending events and stops the worker. Safe to call twice.
func (o *AsyncRoundObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
