package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/newspulse/internal/logger"
)

// ErrBudgetExhausted is returned by Budget.Use once the daily cap is hit.
var ErrBudgetExhausted = errors.New("model request budget exhausted")

// Budget caps how many model requests the process may issue per day,
// across all backends. A zero limit means unlimited.
type Budget struct {
	mu        sync.Mutex
	counts    map[string]int
	total     int
	maxTotal  int
	resetTime time.Time
	now       func() time.Time
}

// NewBudget creates a budget with the given daily cap.
func NewBudget(maxTotal int) *Budget {
	b := &Budget{
		counts:   make(map[string]int),
		maxTotal: maxTotal,
		now:      time.Now,
	}
	b.resetTime = b.now().Add(24 * time.Hour)
	return b
}

// Allow reports whether another request would fit without consuming it.
func (b *Budget) Allow() bool {
	if b == nil {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.maxTotal <= 0 || b.total < b.maxTotal
}

// Use consumes one request for backend.
func (b *Budget) Use(backend string) error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()

	if b.maxTotal > 0 && b.total >= b.maxTotal {
		logger.Warn("model budget reached", "backend", backend, "used", b.total, "limit", b.maxTotal)
		return fmt.Errorf("%s: %w", backend, ErrBudgetExhausted)
	}

	b.counts[backend]++
	b.total++
	logger.Debug("model usage", "backend", backend, "backend_used", b.counts[backend], "total", b.total, "limit", b.maxTotal)
	return nil
}

// Stats returns a snapshot of the counters. A nil budget reports nothing used.
func (b *Budget) Stats() map[string]interface{} {
	if b == nil {
		return map[string]interface{}{
			"backends":    map[string]int{},
			"total_used":  0,
			"total_limit": 0,
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	perBackend := make(map[string]int, len(b.counts))
	for k, v := range b.counts {
		perBackend[k] = v
	}
	return map[string]interface{}{
		"backends":    perBackend,
		"total_used":  b.total,
		"total_limit": b.maxTotal,
		"reset_time":  b.resetTime,
	}
}

// checkReset clears counters once the daily window has passed.
func (b *Budget) checkReset() {
	if b.now().After(b.resetTime) {
		logger.Info("resetting model budget", "total_used", b.total)
		b.counts = make(map[string]int)
		b.total = 0
		b.resetTime = b.now().Add(24 * time.Hour)
	}
}
