package reginfo

import "strings"

// DefaultExpires applies to contacts without an expires attribute.
const DefaultExpires = 3600

// State is the state of a registration.
type State int

const (
	StateUnknown State = iota
	StateInit
	StateActive
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateActive:
		return "active"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ParseState maps a state attribute, case-insensitively.
func ParseState(v string) State {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "init":
		return StateInit
	case "active":
		return StateActive
	case "terminated":
		return StateTerminated
	default:
		return StateUnknown
	}
}

// Event is the transition a contact went through.
type Event int

const (
	EventUnknown Event = iota
	EventRegistered
	EventUnregistered
	EventTerminated
	EventCreated
	EventRefreshed
	EventExpired
)

func (e Event) String() string {
	switch e {
	case EventRegistered:
		return "registered"
	case EventUnregistered:
		return "unregistered"
	case EventTerminated:
		return "terminated"
	case EventCreated:
		return "created"
	case EventRefreshed:
		return "refreshed"
	case EventExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// ParseEvent maps an event attribute, case-insensitively.
func ParseEvent(v string) Event {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "registered":
		return EventRegistered
	case "unregistered":
		return EventUnregistered
	case "terminated":
		return EventTerminated
	case "created":
		return EventCreated
	case "refreshed":
		return EventRefreshed
	case "expired":
		return EventExpired
	default:
		return EventUnknown
	}
}

// Subscribes reports whether a contact with this event needs a downstream
// subscription. Every other event is acknowledged without action.
func (e Event) Subscribes() bool {
	return e == EventRegistered || e == EventCreated || e == EventRefreshed
}

// Document is a decoded registration-event document.
type Document struct {
	Registrations []Registration `json:"registrations"`
}

// Registration is one registration element. Contacts of a terminated
// registration are never read and stay nil.
type Registration struct {
	AOR      string    `json:"aor"`
	State    State     `json:"-"`
	Contacts []Contact `json:"contacts,omitempty"`
}

// Contact is one contact element of an active registration.
type Contact struct {
	CallID    string   `json:"callid"`
	Received  string   `json:"received,omitempty"`
	Path      string   `json:"path,omitempty"`
	UserAgent string   `json:"user_agent,omitempty"`
	Event     Event    `json:"-"`
	Expires   int      `json:"expires"`
	CSeq      int      `json:"cseq,omitempty"`
	URIs      []string `json:"uris"`
}
