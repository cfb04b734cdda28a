// Package status exposes the operations API of the collator over HTTP.
//
// # Routes
//
//   - GET  /health: dependency probes, 503 when one fails.
//   - GET  /api/watchers: the distinct watchers of the next pass.
//   - POST /api/passes/:pass: run a check or collate pass now.
//   - GET  /api/sharedline?user=: shared-line membership of a user.
//   - POST /api/reginfo/parse: dry-run parse of a reginfo document.
//   - GET  /api/archive?presentity= and /api/archive/latest?presentity=:
//     archived documents, when the archive is enabled.
//   - GET  <metrics.path>: Prometheus registry, when metrics are enabled.
package status
