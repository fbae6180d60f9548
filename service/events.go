package service

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType identifies a ledger state transition.
type EventType string

const (
	// EventPreferencesUpdated fires on every successful submit or reset.
	EventPreferencesUpdated EventType = "preferences_updated"
	// EventAdjustmentCalculated fires when the engine stores a fresh
	// adjustment record.
	EventAdjustmentCalculated EventType = "adjustment_calculated"
	// EventUIAdjusted fires when adjustments are applied or a reveal is
	// verified.
	EventUIAdjusted EventType = "ui_adjusted"
)

// Event is a state-transition notification for the presentation layer.
type Event struct {
	Type      EventType      `json:"type"`
	Owner     common.Address `json:"owner"`
	Timestamp int64          `json:"timestamp"`
}

// Emitter fans ledger events out to subscribers. Publishing never blocks:
// a subscriber whose buffer is full misses the event rather than stalling
// the ledger. Subscribers needing a complete history must read promptly.
type Emitter struct {
	mu      sync.RWMutex
	subs    []chan Event
	bufSize int
	closed  bool
}

// NewEmitter creates an emitter whose subscriber channels buffer bufSize
// events.
func NewEmitter(bufSize int) *Emitter {
	if bufSize <= 0 {
		bufSize = 16
	}
	return &Emitter{bufSize: bufSize}
}

// Subscribe registers a new subscriber and returns its event channel. The
// channel is closed when the emitter is closed.
func (e *Emitter) Subscribe() <-chan Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan Event, e.bufSize)
	if e.closed {
		close(ch)
		return ch
	}
	e.subs = append(e.subs, ch)
	return ch
}

// Publish delivers evt to every subscriber that has buffer space.
func (e *Emitter) Publish(eventType EventType, owner common.Address) {
	evt := Event{
		Type:      eventType,
		Owner:     owner,
		Timestamp: time.Now().UnixNano(),
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return
	}
	for _, ch := range e.subs {
		select {
		case ch <- evt:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
}

// Close closes all subscriber channels. Publish after Close is a no-op.
func (e *Emitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	for _, ch := range e.subs {
		close(ch)
	}
	e.subs = nil
}
