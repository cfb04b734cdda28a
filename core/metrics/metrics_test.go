package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObservePass("check", 0.2, 3)
	m.ObservePass("check", 0.1, 5)
	m.IncSubscribe("BLA_SUBSCRIBE", "sent")
	m.IncPublish("failed")
	m.IncRegInfoContact("intent")
	m.IncBusEvent("dropped")
	m.IncNotify("dialog", "200")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Passes.WithLabelValues("check")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.WatchersFound.WithLabelValues("check")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Subscribes.WithLabelValues("BLA_SUBSCRIBE", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Publishes.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegInfoContacts.WithLabelValues("intent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BusEvents.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifies.WithLabelValues("dialog", "200")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePass("collate", 1, 1)
		m.IncSubscribe("REG_SUBSCRIBE", "failed")
		m.IncPublish("sent")
		m.IncRegInfoContact("inert")
		m.IncBusEvent("accepted")
		m.IncNotify("reg", "400")
	})
}
