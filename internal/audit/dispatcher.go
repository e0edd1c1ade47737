package audit

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// OpAudit and OutcomeDropped name the summary event a dispatcher writes on
// Close when it had to drop session events.
const (
	OpAudit        = "audit"
	OutcomeDropped = "dropped"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool `koanf:"enabled"`
	BufferSize int  `koanf:"buffer_size" validate:"gte=0"`
	DropIfFull bool `koanf:"drop_if_full"`
}

// Dispatcher hands session events to a sink on its own goroutine so the
// session controller never waits on audit output. A nil Dispatcher is valid
// and discards everything.
type Dispatcher struct {
	cfg  Config
	sink Sink
	now  func() time.Time

	// mu guards closed and the close of events against concurrent sends.
	mu     sync.RWMutex
	closed bool
	events chan Event
	exited chan struct{}

	dropMu  sync.Mutex
	dropped map[string]uint64
	total   uint64
}

// NewDispatcher starts the delivery goroutine. It returns nil when cfg is
// disabled.
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
		cfg:     cfg,
		sink:    sink,
		now:     time.Now,
		events:  make(chan Event, cfg.BufferSize),
		exited:  make(chan struct{}),
		dropped: map[string]uint64{},
	}
	go d.deliver()
	return d
}

func (d *Dispatcher) deliver() {
	defer close(d.exited)
	for event := range d.events {
		d.sink.Emit(context.Background(), event)
	}
	if summary, ok := d.dropSummary(); ok {
		d.sink.Emit(context.Background(), summary)
	}
}

// Emit queues event, stamping it with the current UTC time when it has
// none. With DropIfFull a full buffer drops the event and counts it under
// its op; otherwise Emit waits for room or ctx.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.events <- event:
		default:
			d.drop(event.Op)
		}
		return
	}
	select {
	case d.events <- event:
	case <-ctx.Done():
		d.drop(event.Op)
	}
}

func (d *Dispatcher) drop(op string) {
	d.dropMu.Lock()
	d.dropped[op]++
	d.total++
	d.dropMu.Unlock()
}

// dropSummary reports the per-op drop counts as one event.
func (d *Dispatcher) dropSummary() (Event, bool) {
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	if d.total == 0 {
		return Event{}, false
	}
	meta := make(map[string]string, len(d.dropped))
	for op, n := range d.dropped {
		meta[op] = strconv.FormatUint(n, 10)
	}
	return Event{
		Timestamp: d.now().UTC(),
		Op:        OpAudit,
		Outcome:   OutcomeDropped,
		Metadata:  meta,
	}, true
}

// Close stops accepting events, delivers what is buffered, writes the drop
// summary if anything was dropped and waits for the goroutine to exit. It
// is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.events)
	}
	d.mu.Unlock()
	<-d.exited
}

// Dropped reports how many events were dropped in total.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	return d.total
}

// DroppedByOp reports drops per session operation.
func (d *Dispatcher) DroppedByOp() map[string]uint64 {
	if d == nil {
		return nil
	}
	d.dropMu.Lock()
	defer d.dropMu.Unlock()
	out := make(map[string]uint64, len(d.dropped))
	for op, n := range d.dropped {
		out[op] = n
	}
	return out
}
