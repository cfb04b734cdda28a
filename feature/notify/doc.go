// Package notify handles inbound NOTIFY requests by event package.
//
//   - dialog: a presentity's dialog state. With collation enabled the body
//     is queued for the next collate pass; otherwise it is collated at once
//     and published to the From AOR. An empty body is accepted and ignored.
//   - reg: a shared-line user's registration state. Only accepted while
//     shared-line polling is enabled. Every contact that needs it gets a
//     shared-line subscription.
//   - dialog;sla: a NOTIFY on a shared-line subscription, relayed as a
//     PUBLISH for the subscribing AOR with the notifying contact in an extra
//     header. The subscription must be live and the NOTIFY must carry a
//     Subscription-State, a Contact and a body.
package notify
