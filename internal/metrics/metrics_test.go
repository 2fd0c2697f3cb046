package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.Retries.WithLabelValues("images").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(a.Retries.WithLabelValues("images")))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.Retries.WithLabelValues("images")))
}

func TestObserveMedia(t *testing.T) {
	m := New()
	m.ObserveMedia(3, 1024)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.MediaHandles))
	assert.Equal(t, float64(1024), testutil.ToFloat64(m.MediaBytes))
}
