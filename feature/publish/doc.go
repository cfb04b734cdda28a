// Package publish builds and sends PUBLISH requests carrying collated
// dialog documents.
//
// The header block is, in order:
//
//	Max-Forwards: 70
//	Event: dialog
//	Expires: <125 when the requested expiry is not positive, otherwise expiry+1>
//	Content-Type: <caller value or application/dialog-info+xml>
//	<extra header lines, verbatim>
//
// Request-URI, To and From are the presentity URI. Requests are routed
// through the outbound proxy, or the server address when there is none.
package publish
