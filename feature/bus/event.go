package bus

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrMalformedPayload is returned for payloads that are not a JSON object
	// of the expected shape.
	ErrMalformedPayload = errors.New("malformed bus payload")
	// ErrMissingField is returned when aor or contact is absent.
	ErrMissingField = errors.New("missing bus payload field")
)

// Event asks for a shared-line subscription from AOR toward Contact.
// Duration is nil when the payload carries none; zero asks to unsubscribe.
type Event struct {
	AOR      string `json:"aor"`
	Contact  string `json:"contact"`
	Duration *int   `json:"duration"`
}

var knownFields = map[string]struct{}{
	"aor":      {},
	"contact":  {},
	"duration": {},
}

// DecodeEvent decodes a payload. Fields other than aor, contact and duration
// are returned, sorted, so the caller can report them.
func DecodeEvent(payload []byte) (Event, []string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return Event{}, nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var unknown []string
	for name := range fields {
		if _, ok := knownFields[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, unknown, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if ev.AOR == "" {
		return ev, unknown, fmt.Errorf("%w: aor", ErrMissingField)
	}
	if ev.Contact == "" {
		return ev, unknown, fmt.Errorf("%w: contact", ErrMissingField)
	}
	if ev.Duration != nil && *ev.Duration < 0 {
		return ev, unknown, fmt.Errorf("%w: negative duration %d", ErrMalformedPayload, *ev.Duration)
	}
	return ev, unknown, nil
}
