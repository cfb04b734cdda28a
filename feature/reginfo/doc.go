// Package reginfo decodes registration-event documents (reginfo XML) and
// decides, per contact, whether a shared-line subscription must be
// established.
//
// # Decoding
//
// The document is walked token by token. Element and attribute names match
// case-insensitively and the reginfo element may sit anywhere in the tree.
// For every registration directly below it:
//
//   - init or unknown state: skipped
//   - missing or unparsable aor: skipped and logged
//   - terminated: kept, contacts never read
//
// Contacts need a callid and a known event. expires defaults to 3600; a
// negative or unparsable value skips the contact. An invalid cseq is only
// logged.
//
// # Intents
//
// Contacts with event registered, created or refreshed yield one
// subscription.Intent per uri child. All other events are inert.
//
// A document that cannot be decoded returns ErrMalformedDocument and yields
// nothing.
package reginfo
