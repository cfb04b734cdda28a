package dialoginfo

import (
	"encoding/xml"
	"strings"
)

// Namespace is the dialog event package XML namespace.
const Namespace = "urn:ietf:params:xml:ns:dialog-info"

// ContentType is the MIME type of rendered documents.
const ContentType = "application/dialog-info+xml"

type dialogInfo struct {
	XMLName xml.Name `xml:"dialog-info"`
	Version string   `xml:"version,attr"`
	State   string   `xml:"state,attr"`
	Entity  string   `xml:"entity,attr"`
	Dialogs []dialog `xml:"dialog"`
}

type dialog struct {
	ID        string       `xml:"id,attr"`
	CallID    string       `xml:"call-id,attr,omitempty"`
	LocalTag  string       `xml:"local-tag,attr,omitempty"`
	RemoteTag string       `xml:"remote-tag,attr,omitempty"`
	Direction string       `xml:"direction,attr,omitempty"`
	State     dialogState  `xml:"state"`
	Duration  string       `xml:"duration,omitempty"`
	Local     *participant `xml:"local,omitempty"`
	Remote    *participant `xml:"remote,omitempty"`
}

type dialogState struct {
	Event string `xml:"event,attr,omitempty"`
	Code  string `xml:"code,attr,omitempty"`
	Value string `xml:",chardata"`
}

// participant keeps the local/remote element content verbatim.
type participant struct {
	Inner string `xml:",innerxml"`
}

type renderedInfo struct {
	XMLName xml.Name `xml:"urn:ietf:params:xml:ns:dialog-info dialog-info"`
	Version int      `xml:"version,attr"`
	State   string   `xml:"state,attr"`
	Entity  string   `xml:"entity,attr"`
	Dialogs []dialog `xml:"dialog"`
}

// Dialog states in increasing order of importance for single-dialog rendering.
const (
	stateTerminated = "terminated"
	stateTrying     = "trying"
	stateProceeding = "proceeding"
	stateEarly      = "early"
	stateConfirmed  = "confirmed"
)

func statePriority(state string) int {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case stateConfirmed:
		return 4
	case stateEarly:
		return 3
	case stateProceeding:
		return 2
	case stateTrying:
		return 1
	default:
		return 0
	}
}

func isTerminated(state string) bool {
	return strings.EqualFold(strings.TrimSpace(state), stateTerminated)
}

func parse(body []byte) (*dialogInfo, error) {
	var info dialogInfo
	if err := xml.Unmarshal(body, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func render(info renderedInfo) ([]byte, error) {
	out, err := xml.Marshal(info)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}
