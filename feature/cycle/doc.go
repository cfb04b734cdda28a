// Package cycle schedules the two periodic passes over the watcher set.
//
// # Passes
//
//   - check: discover watchers, and for every identity the collation handle
//     reports active send a dialog SUBSCRIBE to the presentity so its state is
//     notified again. A refresh that times out queues an empty body for the
//     identity.
//   - collate: discover watchers again, build a document per watcher from
//     the queued fragments and PUBLISH it. A watcher without a document gets
//     no PUBLISH. Every document is released after use.
//
// Each pass re-fetches the watcher list; nothing is shared between passes.
// A failing watcher is logged and the pass moves on to the next one.
//
// # Scheduling
//
// Run owns both tickers and runs the passes on its own goroutine, so passes
// never overlap. The check period must not be shorter than the collate
// period (Config.Validate).
package cycle
