package game

import (
	"sync"
	"time"
)

// countdown is a cancellable, resettable per-second timer. It is deliberately
// independent of any rendering: consumers read Ticks for display updates and
// Expired for the deadline, and a replay resets it to the full duration.
type countdown struct {
	interval time.Duration
	total    int

	ticks   chan int
	expired chan struct{}
	reset   chan struct{}
	stop    chan struct{}

	stopOnce sync.Once
}

// newCountdown starts a countdown of total/interval ticks. interval is one
// second in production; tests shrink it.
func newCountdown(total, interval time.Duration) *countdown {
	c := &countdown{
		interval: interval,
		total:    int(total / interval),
		ticks:    make(chan int, 1),
		expired:  make(chan struct{}),
		reset:    make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *countdown) run() {
	remaining := c.total
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			remaining--
			// Drop the tick if the consumer is behind; display updates
			// are best effort.
			select {
			case c.ticks <- remaining:
			default:
			}
			if remaining <= 0 {
				close(c.expired)
				return
			}
		case <-c.reset:
			remaining = c.total
		case <-c.stop:
			return
		}
	}
}

// Ticks delivers the remaining tick count once per interval.
func (c *countdown) Ticks() <-chan int { return c.ticks }

// Expired is closed when the countdown runs out. A stopped countdown never
// expires.
func (c *countdown) Expired() <-chan struct{} { return c.expired }

// Reset winds the countdown back to its full duration.
func (c *countdown) Reset() {
	select {
	case c.reset <- struct{}{}:
	default:
	}
}

// Stop cancels the countdown. Idempotent.
func (c *countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}
