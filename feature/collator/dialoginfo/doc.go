// Package dialoginfo is the built-in collation provider for RFC 4235
// dialog-info documents.
//
// Fragments are merged per user@domain by dialog id. A build renders every
// known dialog into a "full" document whose version increases by one per
// build; dialogs reported as terminated are rendered once and then dropped.
// An empty fragment means the endpoint is gone and ends all known dialogs.
//
// With force-single-dialog only the most important dialog is rendered
// (confirmed, early, proceeding, trying, terminated). With force-dummy-dialog
// an identity without dialogs gets a single terminated placeholder.
package dialoginfo
