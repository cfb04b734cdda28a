package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the collator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Passes          *prometheus.CounterVec
	PassDuration    *prometheus.HistogramVec
	WatchersFound   *prometheus.GaugeVec
	Subscribes      *prometheus.CounterVec
	Publishes       *prometheus.CounterVec
	RegInfoContacts *prometheus.CounterVec
	BusEvents       *prometheus.CounterVec
	Notifies        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Passes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dialog_collator_passes_total",
			Help: "Scheduler passes run, by pass kind",
		}, []string{"pass"}),
		PassDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dialog_collator_pass_duration_seconds",
			Help:    "Wall time of scheduler passes",
			Buckets: prometheus.DefBuckets,
		}, []string{"pass"}),
		WatchersFound: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dialog_collator_watchers",
			Help: "Distinct watchers discovered by the last pass",
		}, []string{"pass"}),
		Subscribes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dialog_collator_subscribes_total",
			Help: "SUBSCRIBE requests by purpose and result (sent, skipped, failed)",
		}, []string{"purpose", "result"}),
		Publishes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dialog_collator_publishes_total",
			Help: "PUBLISH requests by result (sent, failed)",
		}, []string{"result"}),
		RegInfoContacts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dialog_collator_reginfo_contacts_total",
			Help: "Registration event contacts by outcome (intent, inert, skipped)",
		}, []string{"outcome"}),
		BusEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dialog_collator_bus_events_total",
			Help: "Message bus events by result (accepted, dropped)",
		}, []string{"result"}),
		Notifies: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dialog_collator_notifies_total",
			Help: "Inbound NOTIFY requests by event package and response code",
		}, []string{"event", "code"}),
	}
}

// ObservePass records one completed pass.
func (m *Metrics) ObservePass(pass string, seconds float64, watchers int) {
	if m == nil {
		return
	}
	m.Passes.WithLabelValues(pass).Inc()
	m.PassDuration.WithLabelValues(pass).Observe(seconds)
	m.WatchersFound.WithLabelValues(pass).Set(float64(watchers))
}

// IncSubscribe counts one SUBSCRIBE outcome.
func (m *Metrics) IncSubscribe(purpose, result string) {
	if m == nil {
		return
	}
	m.Subscribes.WithLabelValues(purpose, result).Inc()
}

// IncPublish counts one PUBLISH outcome.
func (m *Metrics) IncPublish(result string) {
	if m == nil {
		return
	}
	m.Publishes.WithLabelValues(result).Inc()
}

// IncRegInfoContact counts one registration contact outcome.
func (m *Metrics) IncRegInfoContact(outcome string) {
	if m == nil {
		return
	}
	m.RegInfoContacts.WithLabelValues(outcome).Inc()
}

// IncBusEvent counts one bus payload.
func (m *Metrics) IncBusEvent(result string) {
	if m == nil {
		return
	}
	m.BusEvents.WithLabelValues(result).Inc()
}

// IncNotify counts one inbound NOTIFY response.
func (m *Metrics) IncNotify(event, code string) {
	if m == nil {
		return
	}
	m.Notifies.WithLabelValues(event, code).Inc()
}
