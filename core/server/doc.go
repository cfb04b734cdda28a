// Package server holds the HTTP operations server configuration.
//
// The operations server exposes health, metrics and manual pass triggers. It is
// secondary to the SIP side of the service and can be disabled entirely.
//
// # Configuration
//
// The Config struct defines whether the server runs, its port and the API key
// checked by the auth middleware.
//
// # Usage
//
//	app.Listen(cfg.Server.Address())
package server
