package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

// circuitBreaker fails fast after maxFailures consecutive errors. Once
// resetAfter has passed a single trial call is let through; success closes
// the breaker, failure re-opens it.
type circuitBreaker struct {
	name        string
	maxFailures int
	resetAfter  time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
	trial    bool
	now      func() time.Time
}

func newCircuitBreaker(name string, maxFailures int, resetAfter time.Duration) *circuitBreaker {
	return &circuitBreaker{
		name:        name,
		maxFailures: maxFailures,
		resetAfter:  resetAfter,
		now:         time.Now,
	}
}

// allow returns ErrCircuitOpen while the breaker is open.
func (b *circuitBreaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.maxFailures <= 0 || b.failures < b.maxFailures {
		return nil
	}
	if b.trial || b.now().Sub(b.openedAt) < b.resetAfter {
		return fmt.Errorf("%w: %s after %d consecutive errors", ErrCircuitOpen, b.name, b.failures)
	}
	b.trial = true
	return nil
}

func (b *circuitBreaker) success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures >= b.maxFailures && b.maxFailures > 0 {
		log.Printf("%s circuit breaker closed", b.name)
	}
	b.failures = 0
	b.trial = false
}

func (b *circuitBreaker) failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.trial = false
	if b.maxFailures > 0 && b.failures >= b.maxFailures {
		b.openedAt = b.now()
		if b.failures == b.maxFailures {
			log.Printf("%s circuit breaker opened after %d consecutive errors", b.name, b.failures)
		}
	}
}

func (b *circuitBreaker) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.trial = false
	log.Printf("%s circuit breaker reset", b.name)
}

// status reports the consecutive error count and whether calls are blocked.
func (b *circuitBreaker) status() (consecutiveErrors int, isOpen bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures, b.maxFailures > 0 && b.failures >= b.maxFailures
}
