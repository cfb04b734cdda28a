// Package archive keeps a copy of every document the collate pass publishes.
//
// Documents are written to the object store configured under storage.* as
// <prefix><presentity>/<timestamp>-v<version>.xml, so listing a presentity's
// folder returns its history in publication order. The archive is optional;
// it is only wired into the scheduler when storage.archive_enabled is set.
package archive
