package trigger

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/penplan/pension-planner/internal/domain"
	"github.com/penplan/pension-planner/internal/engine"
)

// State is the recalculation trigger's lifecycle state.
type State int32

const (
	StateIdle State = iota
	StatePending
	StateComputing
	StateSettled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateComputing:
		return "computing"
	case StateSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// Computer is the projection dispatch capability the trigger drives.
type Computer interface {
	Compute(ctx context.Context, input *domain.PlanInput) (*domain.ExecutionOutcome, error)
}

// Delivery is one delivered recalculation outcome. Err is non-nil only for
// input that failed validation; remote-path failures never surface here.
type Delivery struct {
	Seq     uint64
	Outcome *domain.ExecutionOutcome
	Err     error
}

type computeResult struct {
	seq     uint64
	outcome *domain.ExecutionOutcome
	err     error
}

// Trigger debounces parameter-change events and issues projection requests,
// guaranteeing that consumers only ever observe the outcome for the most
// recent input. Supersession is decided by a monotonically increasing
// sequence number, not by cancelling in-flight work: a stale result arriving
// late is simply discarded.
//
// All sequence state is owned by a single goroutine fed from one ordered
// channel, so no locks guard it.
type Trigger struct {
	computer Computer
	debounce time.Duration
	logger   engine.Logger

	changes    chan *domain.PlanInput
	deliveries chan Delivery
	done       chan struct{}
	closeOnce  sync.Once
	state      atomic.Int32
}

// New creates a trigger and starts its event loop.
func New(computer Computer, debounce time.Duration, logger engine.Logger) *Trigger {
	if logger == nil {
		logger = engine.NopLogger{}
	}
	t := &Trigger{
		computer:   computer,
		debounce:   debounce,
		logger:     logger,
		changes:    make(chan *domain.PlanInput),
		deliveries: make(chan Delivery, 16),
		done:       make(chan struct{}),
	}
	t.state.Store(int32(StateIdle))
	go t.run()
	return t
}

// Offer submits a parameter-change event. Within the debounce window only the
// latest input survives.
func (t *Trigger) Offer(input *domain.PlanInput) {
	select {
	case t.changes <- input:
	case <-t.done:
	}
}

// Deliveries returns the outcome stream. The channel is closed when the
// trigger is closed.
func (t *Trigger) Deliveries() <-chan Delivery {
	return t.deliveries
}

// State reports the current lifecycle state.
func (t *Trigger) State() State {
	return State(t.state.Load())
}

// Close stops the event loop and closes the delivery channel. In-flight
// computations are abandoned.
func (t *Trigger) Close() {
	t.closeOnce.Do(func() {
		close(t.done)
	})
}

func (t *Trigger) run() {
	defer close(t.deliveries)

	var (
		seq    uint64
		latest *domain.PlanInput
		timer  *time.Timer
		timerC <-chan time.Time
	)
	results := make(chan computeResult)

	for {
		select {
		case input := <-t.changes:
			seq++
			latest = input
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(t.debounce)
			timerC = timer.C
			t.state.Store(int32(StatePending))

		case <-timerC:
			timerC = nil
			t.state.Store(int32(StateComputing))
			go func(s uint64, input *domain.PlanInput) {
				outcome, err := t.computer.Compute(context.Background(), input)
				select {
				case results <- computeResult{seq: s, outcome: outcome, err: err}:
				case <-t.done:
				}
			}(seq, latest)

		case r := <-results:
			if r.seq != seq {
				// Superseded while computing; a newer request owns
				// the next delivery.
				t.logger.Debugf("discarding stale projection result (seq %d, current %d)", r.seq, seq)
				continue
			}
			t.state.Store(int32(StateSettled))
			t.deliver(Delivery{Seq: r.seq, Outcome: r.outcome, Err: r.err})

		case <-t.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

func (t *Trigger) deliver(d Delivery) {
	select {
	case t.deliveries <- d:
	default:
		// Consumer is behind; drop the oldest buffered delivery. Stale
		// outcomes are superseded anyway.
		select {
		case <-t.deliveries:
		default:
		}
		select {
		case t.deliveries <- d:
		default:
		}
	}
}
