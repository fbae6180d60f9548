package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_FansOutToAllSubscribers(t *testing.T) {
	e := NewEmitter(4)
	defer e.Close()

	first := e.Subscribe()
	second := e.Subscribe()

	e.Publish(EventPreferencesUpdated, testOwner)

	assert.Equal(t, []EventType{EventPreferencesUpdated}, drainEvents(first))
	assert.Equal(t, []EventType{EventPreferencesUpdated}, drainEvents(second))
}

func TestEmitter_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	e := NewEmitter(1)
	defer e.Close()

	ch := e.Subscribe()

	// Second publish exceeds the buffer; it must not block the publisher.
	e.Publish(EventPreferencesUpdated, testOwner)
	e.Publish(EventAdjustmentCalculated, testOwner)

	assert.Equal(t, []EventType{EventPreferencesUpdated}, drainEvents(ch))
}

func TestEmitter_CloseClosesChannels(t *testing.T) {
	e := NewEmitter(1)
	ch := e.Subscribe()

	e.Close()

	_, open := <-ch
	assert.False(t, open)

	// Publish and a second Close after closing are harmless.
	e.Publish(EventUIAdjusted, testOwner)
	e.Close()

	// Subscribing after close yields an already-closed channel.
	late := e.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
