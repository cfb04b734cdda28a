// Package watchers discovers the presentities that currently have watchers.
//
// Discovery is a read-only query of (to_user, to_domain, presentity_uri) from
// the presence server's active watchers table. Every pass re-runs it; nothing
// is carried between passes. The connection is opened for the query and
// closed right after.
//
// Rows are de-duplicated by (user, domain) keeping the first one seen, so a
// presentity watched by many subscribers is visited once per pass.
package watchers
