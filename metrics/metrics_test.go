package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRegistered(t *testing.T) {
	m := New()

	m.FramesAccepted.Inc()
	m.EmailsSent.Inc()
	m.EmailsSent.Inc()
	m.QueueDepth.Set(3)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.FramesAccepted))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.EmailsSent))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.QueueDepth))

	// two instances never collide on registration
	m2 := New()
	assert.Equal(t, float64(0), testutil.ToFloat64(m2.FramesAccepted))
}
