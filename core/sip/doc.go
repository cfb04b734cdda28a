// Package sip is the collator's transaction boundary.
//
// The rest of the module builds Request values and hands them to a Transport;
// it never touches SIP framing, retransmission or dialog state. The sipgo backed
// Client and Server are the production implementations.
//
// # Outbound
//
// Submit is fire-and-forget: it returns once the transaction exists and reports
// the final reply (or a synthesized 408) through a ReplyFunc on a transport
// goroutine. The reply carries a private copy of the request.
//
// # Subscription liveness
//
// SUBSCRIBEs carry a correlation id. A Tracker records them in a
// SubscriptionRegistry (in memory, or Redis when several processes must agree).
// Submit reserves the id atomically before sending, so two concurrent intents
// for the same target produce one SUBSCRIBE; the loser gets ErrSubscriptionLive.
// A 2xx makes the record active for the granted expiry minus a refresh margin.
// Records are also indexed by Call-ID, and MatchDialog resolves an inbound
// NOTIFY to the subscription whose dialog it belongs to.
//
// # Inbound
//
// Server receives NOTIFY requests and dispatches them by event package key:
// "dialog", "dialog;sla" and "reg".
//
// # Usage
//
//	tracker := sip.NewTracker(sip.NewMemoryRegistry(), 32*time.Second, 10*time.Second, log)
//	client, err := sip.NewClient(ua, tracker, cfg.SIP, log)
//	err = client.Submit(ctx, req, func(r sip.Reply) { ... })
package sip
