// Package sharedline finds shared-line users and keeps a reg-event
// subscription alive for each of them.
//
// Users come from the entity table: rows with ent = 'user', a non-empty
// shared column and vld = 1. The Poller subscribes to the reg event of
// every user without a live REG_SUBSCRIBE subscription; the resulting
// NOTIFYs are handled by the notify package.
//
// Lookup caches single-user answers for the HTTP and CLI lookups, sharing
// one store query between concurrent misses.
package sharedline
