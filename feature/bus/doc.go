// Package bus listens for shared-line register events on a message bus and
// turns each into a shared-line subscription.
//
// Payloads are JSON objects:
//
//	{"aor": "sip:alice@example.com", "contact": "sip:alice@192.0.2.10", "duration": 120}
//
// aor and contact are required; duration falls back to the configured
// subscription expiry. Unknown fields are logged. Bad payloads are logged
// and dropped.
//
// # Drivers
//
//   - redis: Pub/Sub on Config.Channel (default SIPX.BLA.REGISTER)
//   - kafka: consumer group on the topic named by Config.Channel
//
// The listener normally runs in its own process (the listen command).
package bus
