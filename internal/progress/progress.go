// Package progress implements the coalescing progress broker: a ProgressSink
// per run-id, fanned out to any number of subscribers, with idempotent
// unsubscribe and a terminal-event guard modeled on the teacher's
// request-scoped proposal store.
package progress

import (
	"sync"
	"time"

	"github.com/noah-isme/defense-scheduler-core/internal/strategy"
	schederrors "github.com/noah-isme/defense-scheduler-core/pkg/errors"
)

// Sink satisfies strategy.ProgressSink; the runner hands a *Sink straight
// into Strategy.Run without any adapter.
var _ strategy.ProgressSink = (*Sink)(nil)

// Event is one update delivered to a subscriber.
type Event struct {
	RunID     string
	Fraction  float64
	StatusTag string
	Message   string
	Details   map[string]any
	Terminal  bool
	Err       error
}

// Observer receives events for a single run-id.
type Observer func(Event)

// coalesceWindow bounds how often a burst of updates reaches observers.
const coalesceWindow = 100 * time.Millisecond

// runHub fans one run-id's events out to its subscribers.
type runHub struct {
	mu        sync.Mutex
	subMu     sync.Mutex
	observers map[int]Observer
	nextSubID int
	lastEmit  time.Time
	terminal  bool
}

// Broker owns one runHub per run-id. Registration and emission take
// disjoint locks (subMu vs mu) so a subscription is never blocked behind an
// in-flight emission, matching the concurrency contract every strategy run
// depends on.
type Broker struct {
	mu   sync.Mutex
	hubs map[string]*runHub
}

// NewBroker constructs an empty broker.
func NewBroker() *Broker {
	return &Broker{hubs: make(map[string]*runHub)}
}

func (b *Broker) hubFor(runID string) *runHub {
	b.mu.Lock()
	defer b.mu.Unlock()
	h, ok := b.hubs[runID]
	if !ok {
		h = &runHub{observers: make(map[int]Observer)}
		b.hubs[runID] = h
	}
	return h
}

// Subscribe registers obs for runID and returns an idempotent unsubscribe
// function — calling it more than once is a no-op.
func (b *Broker) Subscribe(runID string, obs Observer) (unsubscribe func()) {
	h := b.hubFor(runID)
	h.subMu.Lock()
	id := h.nextSubID
	h.nextSubID++
	h.observers[id] = obs
	h.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.subMu.Lock()
			delete(h.observers, id)
			h.subMu.Unlock()
		})
	}
}

// Sink returns a ProgressSink bound to runID. Once the sink has emitted a
// terminal event, a further Complete or Error is rejected with
// ErrFinalized, and further Update calls are dropped.
func (b *Broker) Sink(runID string) *Sink {
	return &Sink{hub: b.hubFor(runID), runID: runID}
}

// Sink is the per-run ProgressSink handed to a strategy.
type Sink struct {
	hub   *runHub
	runID string
}

// Update implements strategy.ProgressSink. An update arriving less than
// coalesceWindow after the last delivered one is dropped, so a burst
// delivers only its first update; an update with fraction 1.0 is always
// delivered unless the sink has already emitted a terminal event.
func (s *Sink) Update(fraction float64, statusTag, message string, details map[string]any) {
	s.emit(Event{RunID: s.runID, Fraction: fraction, StatusTag: statusTag, Message: message, Details: details})
}

// Complete emits the terminal success event.
func (s *Sink) Complete(details map[string]any) error {
	return s.emitTerminal(Event{RunID: s.runID, Fraction: 1, StatusTag: "complete", Details: details, Terminal: true})
}

// Error emits the terminal failure event.
func (s *Sink) Error(kind, message string) error {
	return s.emitTerminal(Event{RunID: s.runID, StatusTag: kind, Message: message, Terminal: true})
}

func (s *Sink) emit(evt Event) {
	s.hub.mu.Lock()
	if s.hub.terminal {
		s.hub.mu.Unlock()
		return
	}
	force := evt.Terminal || evt.Fraction >= 1
	now := time.Now()
	if !force && now.Sub(s.hub.lastEmit) < coalesceWindow {
		s.hub.mu.Unlock()
		return
	}
	s.hub.lastEmit = now
	s.hub.mu.Unlock()
	s.deliver(evt)
}

func (s *Sink) emitTerminal(evt Event) error {
	s.hub.mu.Lock()
	if s.hub.terminal {
		s.hub.mu.Unlock()
		return schederrors.ErrFinalized
	}
	s.hub.terminal = true
	s.hub.mu.Unlock()
	s.deliver(evt)
	return nil
}

func (s *Sink) deliver(evt Event) {
	s.hub.subMu.Lock()
	observers := make([]Observer, 0, len(s.hub.observers))
	for _, o := range s.hub.observers {
		observers = append(observers, o)
	}
	s.hub.subMu.Unlock()

	for _, o := range observers {
		o(evt)
	}
}
