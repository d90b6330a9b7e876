package fetcher

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrCircuitOpen is returned without a request when a host has failed
// repeatedly and its cool-down has not elapsed.
var ErrCircuitOpen = eris.New("fetcher: circuit open")

// BreakerState is the state of a host's circuit.
type BreakerState int

const (
	// BreakerClosed lets every request through.
	BreakerClosed BreakerState = iota
	// BreakerOpen rejects requests until the cool-down elapses.
	BreakerOpen
	// BreakerHalfOpen lets a single trial request through.
	BreakerHalfOpen
)

// String returns the lowercase state name used in logs.
func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker defaults.
const (
	DefaultBreakerThreshold = 5
	DefaultBreakerCooldown  = 30 * time.Second
)

// breaker trips after threshold consecutive failed downloads to one host.
// Once the cool-down passes a single probe is let through; its outcome
// closes or reopens the circuit.
type breaker struct {
	host      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	state    BreakerState
	failures int
	openedAt time.Time
}

func newBreaker(host string, threshold int, cooldown time.Duration) *breaker {
	return &breaker{host: host, threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case BreakerOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return eris.Wrapf(ErrCircuitOpen, "fetcher: %s", b.host)
		}
		b.transition(BreakerHalfOpen)
		return nil
	case BreakerHalfOpen:
		// A probe is already in flight.
		return eris.Wrapf(ErrCircuitOpen, "fetcher: %s", b.host)
	default:
		return nil
	}
}

func (b *breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !failed {
		b.failures = 0
		if b.state != BreakerClosed {
			b.transition(BreakerClosed)
		}
		return
	}

	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.threshold {
		b.openedAt = b.now()
		if b.state != BreakerOpen {
			b.transition(BreakerOpen)
		}
	}
}

// abandon releases a probe whose request was cancelled by the caller. The
// circuit reopens without resetting its cool-down, so the next call probes.
func (b *breaker) abandon() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BreakerHalfOpen {
		b.state = BreakerOpen
	}
}

func (b *breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *breaker) transition(to BreakerState) {
	zap.L().Warn("fetcher: circuit state change",
		zap.String("host", b.host),
		zap.Stringer("from", b.state),
		zap.Stringer("to", to),
		zap.Int("consecutive_failures", b.failures),
	)
	b.state = to
}

// breakerFor returns the host's breaker, creating it on first use.
func (f *HTTPFetcher) breakerFor(host string) *breaker {
	f.breakerMu.Lock()
	defer f.breakerMu.Unlock()
	b, ok := f.breakers[host]
	if !ok {
		b = newBreaker(host, f.opts.BreakerThreshold, f.opts.BreakerCooldown)
		f.breakers[host] = b
	}
	return b
}
