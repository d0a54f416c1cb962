package engine

import (
	"sync"
	"time"
)

// Progress turns done/total counts into a monotonic whole-number percentage
// and an estimate of the time left.
type Progress struct {
	mu      sync.Mutex
	clock   TimeProvider
	started time.Time
	done    int64
	total   int64
	percent int
}

// NewProgress starts a Progress at the clock's current time.
func NewProgress(clock TimeProvider) *Progress {
	if clock == nil {
		clock = RealTimeProvider{}
	}

	return &Progress{clock: clock, started: clock.Now(), percent: -1}
}

// Update records done out of total and returns the resulting percentage.
// changed is false when the percentage is the same as last time.
func (p *Progress) Update(done, total int64) (percent int, changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done, p.total = done, total

	next := Percent(done, total)
	if next < p.percent {
		next = p.percent
	}

	changed = next != p.percent
	p.percent = next

	return next, changed
}

// Finish forces the percentage to 100. changed is false if it already was.
func (p *Progress) Finish() (changed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	changed = p.percent != 100
	p.percent = 100

	if p.done < p.total {
		p.done = p.total
	}

	return changed
}

// Percent returns the last reported percentage, or -1 before the first update.
func (p *Progress) Percent() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.percent
}

// Counts returns the last recorded done and total.
func (p *Progress) Counts() (done, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.done, p.total
}

// EstimatedTimeLeft extrapolates the elapsed time over the remaining work.
// It returns 0 until some work is done.
func (p *Progress) EstimatedTimeLeft() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done <= 0 || p.done >= p.total {
		return 0
	}

	elapsed := p.clock.Now().Sub(p.started)
	perUnit := float64(elapsed) / float64(p.done)

	return time.Duration(perUnit * float64(p.total-p.done))
}

// Percent computes done*100/total with integer truncation, treating an empty
// total as complete and clamping to [0, 100].
func Percent(done, total int64) int {
	if total <= 0 {
		return 100
	}

	switch {
	case done <= 0:
		return 0
	case done >= total:
		return 100
	default:
		return int(done * 100 / total)
	}
}
