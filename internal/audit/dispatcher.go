package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull discards events when the queue is full instead of waiting.
	DropIfFull bool
	// MustDeliver lists event types that wait for queue space even when
	// DropIfFull is set. The wait is still bounded by the caller's context.
	MustDeliver []string
}

// Dispatcher forwards events to a sink on a single background goroutine. A nil
// *Dispatcher is valid and discards everything.
type Dispatcher struct {
	sink        Sink
	queue       chan Event
	done        chan struct{}
	dropIfFull  bool
	mustDeliver map[string]struct{}

	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once

	dropped atomic.Uint64
	mu      sync.Mutex
	byType  map[string]uint64
}

// NewDispatcher starts a dispatcher, or returns nil when cfg.Enabled is false.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:        sink,
		queue:       make(chan Event, cfg.BufferSize),
		done:        make(chan struct{}),
		dropIfFull:  cfg.DropIfFull,
		mustDeliver: make(map[string]struct{}, len(cfg.MustDeliver)),
		byType:      make(map[string]uint64),
	}
	for _, t := range cfg.MustDeliver {
		d.mustDeliver[t] = struct{}{}
	}

	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain delivers whatever was queued before Close.
func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit queues event. Events that cannot be queued, because the queue is full in
// drop mode or the caller's context ended first, are counted as dropped.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if _, must := d.mustDeliver[event.EventType]; d.dropIfFull && !must {
		select {
		case d.queue <- event:
		case <-d.done:
		default:
			d.drop(event.EventType)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-d.done:
	case <-ctx.Done():
		d.drop(event.EventType)
	}
}

func (d *Dispatcher) drop(eventType string) {
	d.dropped.Add(1)
	d.mu.Lock()
	d.byType[eventType]++
	d.mu.Unlock()
}

// Close stops accepting events, flushes the queue to the sink and waits for the
// worker. Safe to call more than once.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the total number of dropped events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// DroppedByType returns a copy of the drop counts keyed by event type.
func (d *Dispatcher) DroppedByType() map[string]uint64 {
	out := make(map[string]uint64)
	if d == nil {
		return out
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for k, v := range d.byType {
		out[k] = v
	}
	return out
}
