// Package subscription correlates and emits SUBSCRIBE requests.
//
// # Correlation
//
// Every subscription is keyed by CorrelationID(purpose, target), the purpose
// prefix joined to the exact target URI with a dot. The id is recomputed on
// demand and never stored in a side index: whether a subscription already
// exists is answered by the transport (see sip.Transport.HasLiveSubscription),
// and Submit reserves the id atomically so concurrent intents for one target
// send a single SUBSCRIBE.
//
// An Intent without an expiry uses the configured default. An explicit zero
// is an unsubscribe and is never skipped as a duplicate.
//
// # Requests
//
//   - Subscribe: shared-line subscription (Event: dialog;sla) from the AOR
//     toward a contact, used by registration events and the message bus.
//   - SubscribeRegInfo: reg-event subscription toward a shared-line user.
//   - Refresh: dialog state fetch toward a watched presentity, used by the
//     active-check pass. It is not correlated.
//
// Submission is fire-and-forget. Failures are logged and returned; callers
// keep going with their next item.
package subscription
