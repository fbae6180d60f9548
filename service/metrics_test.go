package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCollector_RevealRoundTripDurations(t *testing.T) {
	mc := NewMetricsCollector()

	mc.RecordRevealRequested()
	mc.RecordRevealRequested()
	mc.RecordRevealVerified(1500 * time.Millisecond)
	mc.RecordRevealRejected(500 * time.Millisecond)

	snapshot := mc.Snapshot()
	assert.Equal(t, 2, snapshot.Reveal.Requested)
	assert.Equal(t, 1, snapshot.Reveal.Verified)
	assert.Equal(t, 1, snapshot.Reveal.Rejected)
	assert.Equal(t, int64(2000), snapshot.Reveal.ProcessingTimeMs)
}
