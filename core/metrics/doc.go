// Package metrics defines the Prometheus collectors shared by the collator's
// passes, emitters and listeners.
//
// Collectors are registered against an explicit prometheus.Registerer so tests
// can use a private registry. Every recording method tolerates a nil receiver.
//
// # Usage
//
//	m := metrics.New(prometheus.DefaultRegisterer)
//	m.IncPublish("sent")
package metrics
