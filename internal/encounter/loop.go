package encounter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// submitBuffer bounds how many closures may queue ahead of the loop.
const submitBuffer = 64

// StepFunc advances one encounter by dt.
type StepFunc func(dt time.Duration)

// TickLoop runs registered step callbacks and submitted closures on one
// goroutine, so the encounters it drives never see concurrent calls.
//
// Invariant: callbacks run in registration order, at most once per interval.
type TickLoop struct {
	interval time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	ticks map[string]StepFunc
	order []string

	submits chan func()
}

// NewTickLoop returns a loop that fires every interval.
//
// Precondition: interval must be > 0.
func NewTickLoop(interval time.Duration, logger *zap.Logger) *TickLoop {
	if interval <= 0 {
		panic("encounter.NewTickLoop: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TickLoop{
		interval: interval,
		logger:   logger,
		ticks:    make(map[string]StepFunc),
		submits:  make(chan func(), submitBuffer),
	}
}

// Interval returns the tick period.
func (l *TickLoop) Interval() time.Duration { return l.interval }

// RegisterTick registers fn under id. Replaces any existing callback while
// keeping its position in the order.
func (l *TickLoop) RegisterTick(id string, fn StepFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.ticks[id]; !exists {
		l.order = append(l.order, id)
	}
	l.ticks[id] = fn
}

// Unregister removes the callback for id.
func (l *TickLoop) Unregister(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.ticks[id]; !exists {
		return
	}
	delete(l.ticks, id)
	for i, o := range l.order {
		if o == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Submit queues fn to run on the loop goroutine between ticks. It blocks
// while the queue is full and returns ctx's error if ctx ends first.
func (l *TickLoop) Submit(ctx context.Context, fn func()) error {
	select {
	case l.submits <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
//
// Precondition: the loop must be running, or ctx must eventually end.
func (l *TickLoop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if err := l.Submit(ctx, func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for loop: %w", ctx.Err())
	}
}

// Start runs the loop on a new goroutine until ctx is cancelled.
func (l *TickLoop) Start(ctx context.Context) {
	go l.Run(ctx)
}

// Run drives the loop on the calling goroutine until ctx is cancelled.
//
// Postcondition: every registered callback is invoked once per interval.
func (l *TickLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	l.logger.Info("tick loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("tick loop stopped")
			return
		case fn := <-l.submits:
			fn()
		case <-ticker.C:
			for _, fn := range l.callbacks() {
				fn(l.interval)
			}
		}
	}
}

func (l *TickLoop) callbacks() []StepFunc {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]StepFunc, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.ticks[id])
	}
	return out
}
