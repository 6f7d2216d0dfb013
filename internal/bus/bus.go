// Package bus carries refresh events from the tracker to the display layer.
//
// The tracker never talks to the UI directly: after a counter commits it
// publishes a category refresh here and the display re-reads the store
// itself. Events carry no counter values.
package bus

import (
	"context"
	"sync"
)

// Category identifies which display section should refresh.
type Category int

const (
	// CategoryTasks covers the slayer task completion counter.
	CategoryTasks Category = iota
	// CategoryBracelets covers both bracelet counters.
	CategoryBracelets
	// CategoryCannon covers the cannon break counter.
	CategoryCannon
)

// String returns the category name for logging.
func (c Category) String() string {
	switch c {
	case CategoryTasks:
		return "tasks"
	case CategoryBracelets:
		return "bracelets"
	case CategoryCannon:
		return "cannon"
	default:
		return "unknown"
	}
}

// Event is a refresh notification for one display category.
type Event struct {
	Category Category
}

// Bus is the refresh event bus.
// All communication flows through a buffered channel with non-blocking sends.
type Bus struct {
	// Events is the output consumed by the display layer.
	Events chan Event

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New creates a bus with the specified buffer size.
func New(bufferSize int) *Bus {
	return &Bus{
		Events: make(chan Event, bufferSize),
	}
}

// Start initializes the bus with a context for cancellation.
func (b *Bus) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
}

// Stop cancels bus operations and closes the event channel.
// Safe to call multiple times.
func (b *Bus) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.closeOnce.Do(func() {
		close(b.Events)
	})
}

// Publish is non-blocking - drops if the event channel is full.
// The display re-reads everything on each refresh, so a dropped event is
// absorbed by the next one.
func (b *Bus) Publish(c Category) {
	select {
	case b.Events <- Event{Category: c}:
	default:
		// Drop - display will catch up on next refresh
	}
}

// Context returns the bus context for checking cancellation.
func (b *Bus) Context() context.Context {
	return b.ctx
}
