package sip

import (
	"strings"
)

// Request methods issued by the collator.
const (
	MethodSubscribe = "SUBSCRIBE"
	MethodPublish   = "PUBLISH"
)

// Header is one SIP header line.
type Header struct {
	Name  string
	Value string
}

// Request is an outbound SIP request in transport-neutral form.
// It is built fresh for every submission and not modified afterwards.
type Request struct {
	// Method is SUBSCRIBE or PUBLISH.
	Method string
	// RequestURI is the remote target.
	RequestURI string
	// To is the To URI.
	To string
	// From is the From URI.
	From string
	// RouteProxy is the optional next hop URI.
	RouteProxy string
	// Headers are the generated headers in emission order.
	Headers []Header
	// Extra holds caller-supplied CRLF-terminated header lines, appended verbatim.
	Extra string
	// Body is the payload. Empty for SUBSCRIBE.
	Body []byte
	// CorrelationID keys the asynchronous reply and subscription liveness.
	CorrelationID string
	// Expires is the requested expiry in seconds.
	Expires int
	// CallID and FromTag identify the dialog. The transport fills them in
	// when empty.
	CallID  string
	FromTag string
}

// Header returns the first header value with the given name, case-insensitively.
// Extra header lines are searched after the generated ones.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	for _, h := range ParseHeaderLines(r.Extra) {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// HeaderBlock renders the generated headers followed by the extra lines.
func (r *Request) HeaderBlock() string {
	var b strings.Builder
	for _, h := range r.Headers {
		b.WriteString(h.Name)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}
	b.WriteString(r.Extra)
	return b.String()
}

// Clone returns a deep copy, handed to reply callbacks so they never share
// memory with the submitting pass.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	out := *r
	out.Headers = append([]Header(nil), r.Headers...)
	out.Body = append([]byte(nil), r.Body...)
	return &out
}

// ParseHeaderLines splits a CRLF (or LF) separated header block into headers.
// Lines without a colon are ignored.
func ParseHeaderLines(block string) []Header {
	if block == "" {
		return nil
	}
	var out []Header
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimRight(line, "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, Header{Name: name, Value: strings.TrimSpace(value)})
	}
	return out
}
