package reginfo

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dialog-collator/core/metrics"
	"dialog-collator/core/sip"
	"dialog-collator/feature/subscription"

	"go.uber.org/zap"
)

// ErrMalformedDocument is returned when the document as a whole cannot be
// decoded. Nothing from such a document is used.
var ErrMalformedDocument = errors.New("malformed reginfo document")

// Parser decodes registration-event documents and classifies their contacts.
type Parser struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewParser creates a parser.
func NewParser(logger *zap.Logger, m *metrics.Metrics) *Parser {
	return &Parser{logger: logger, metrics: m}
}

type kind int

const (
	kindOther kind = iota
	kindRoot
	kindRegistration
	kindContact
	kindURI
)

// machine holds the decoding state while walking the token stream.
type machine struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	doc     Document

	stack []kind
	done  bool

	reg     *Registration
	regOK   bool
	contact *Contact
	conOK   bool
	uri     strings.Builder
}

// Parse decodes body. Defects inside a registration or contact are logged
// and the element is skipped; only an undecodable document or a missing
// reginfo element fail the whole call.
func (p *Parser) Parse(body []byte) (*Document, error) {
	m := &machine{logger: p.logger, metrics: p.metrics}
	dec := xml.NewDecoder(bytes.NewReader(body))

	rootSeen := false
	for !m.done {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			k := m.classify(t.Name.Local, rootSeen)
			if k == kindRoot {
				rootSeen = true
			}
			m.stack = append(m.stack, k)
			m.enter(k, t.Attr)
		case xml.CharData:
			if m.top() == kindURI && m.conOK {
				m.uri.Write(t)
			}
		case xml.EndElement:
			if len(m.stack) == 0 {
				continue
			}
			k := m.top()
			m.stack = m.stack[:len(m.stack)-1]
			m.leave(k)
		}
	}

	if !rootSeen {
		return nil, fmt.Errorf("%w: no reginfo element", ErrMalformedDocument)
	}
	return &m.doc, nil
}

func (m *machine) top() kind {
	if len(m.stack) == 0 {
		return kindOther
	}
	return m.stack[len(m.stack)-1]
}

// classify decides what an element is from its name and its parent.
// Registrations are direct children of reginfo, contacts of registrations
// and uris of contacts; everything else is ignored.
func (m *machine) classify(name string, rootSeen bool) kind {
	parent := m.top()
	switch {
	case !rootSeen && strings.EqualFold(name, "reginfo"):
		return kindRoot
	case parent == kindRoot && strings.EqualFold(name, "registration"):
		return kindRegistration
	case parent == kindRegistration && strings.EqualFold(name, "contact"):
		return kindContact
	case parent == kindContact && strings.EqualFold(name, "uri"):
		return kindURI
	default:
		return kindOther
	}
}

func (m *machine) enter(k kind, attrs []xml.Attr) {
	switch k {
	case kindRegistration:
		m.reg, m.regOK = m.startRegistration(attrs)
	case kindContact:
		if !m.regOK || m.reg.State == StateTerminated {
			m.contact, m.conOK = nil, false
			return
		}
		m.contact, m.conOK = m.startContact(attrs)
		if !m.conOK {
			m.metrics.IncRegInfoContact("skipped")
		}
	case kindURI:
		m.uri.Reset()
	}
}

func (m *machine) leave(k kind) {
	switch k {
	case kindRoot:
		m.done = true
	case kindRegistration:
		if m.regOK {
			m.doc.Registrations = append(m.doc.Registrations, *m.reg)
		}
		m.reg, m.regOK = nil, false
	case kindContact:
		if m.conOK {
			m.reg.Contacts = append(m.reg.Contacts, *m.contact)
		}
		m.contact, m.conOK = nil, false
	case kindURI:
		if !m.conOK {
			return
		}
		uri := strings.TrimSpace(m.uri.String())
		if uri == "" {
			m.logger.Warn("Skipping empty contact uri", zap.String("callid", m.contact.CallID))
			return
		}
		m.contact.URIs = append(m.contact.URIs, uri)
	}
}

func (m *machine) startRegistration(attrs []xml.Attr) (*Registration, bool) {
	state := ParseState(attr(attrs, "state"))
	switch state {
	case StateUnknown:
		m.logger.Warn("Skipping registration without a valid state")
		return nil, false
	case StateInit:
		m.logger.Debug("Skipping registration in init state")
		return nil, false
	}

	aor := attr(attrs, "aor")
	if aor == "" {
		m.logger.Error("Skipping registration without aor")
		return nil, false
	}
	if _, err := sip.ParseURI(aor); err != nil {
		m.logger.Error("Skipping registration with invalid aor", zap.String("aor", aor), zap.Error(err))
		return nil, false
	}

	return &Registration{AOR: aor, State: state}, true
}

func (m *machine) startContact(attrs []xml.Attr) (*Contact, bool) {
	l := m.logger.With(zap.String("aor", m.reg.AOR))

	c := &Contact{
		CallID:    attr(attrs, "callid"),
		Received:  attr(attrs, "received"),
		Path:      attr(attrs, "path"),
		UserAgent: attr(attrs, "user_agent"),
		Event:     ParseEvent(attr(attrs, "event")),
		Expires:   DefaultExpires,
	}
	if c.CallID == "" {
		l.Warn("Skipping contact without callid")
		return nil, false
	}
	l = l.With(zap.String("callid", c.CallID))

	if c.Event == EventUnknown {
		l.Warn("Skipping contact with unknown event", zap.String("event", attr(attrs, "event")))
		return nil, false
	}

	if v, ok := lookup(attrs, "expires"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			l.Warn("Skipping contact with invalid expires", zap.String("expires", v))
			return nil, false
		}
		c.Expires = n
	}

	if v, ok := lookup(attrs, "cseq"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			l.Warn("Invalid cseq on contact", zap.String("cseq", v))
		} else {
			c.CSeq = n
		}
	}

	return c, true
}

// Intents returns one subscribe intent per uri of every contact whose event
// requires a subscription. Contacts of terminated registrations are never
// considered.
func (p *Parser) Intents(doc *Document) []subscription.Intent {
	if doc == nil {
		return nil
	}

	var out []subscription.Intent
	for _, reg := range doc.Registrations {
		if reg.State == StateTerminated {
			continue
		}
		for _, c := range reg.Contacts {
			if !c.Event.Subscribes() {
				p.metrics.IncRegInfoContact("inert")
				p.logger.Debug("Contact needs no subscription",
					zap.String("aor", reg.AOR),
					zap.String("callid", c.CallID),
					zap.Stringer("event", c.Event),
				)
				continue
			}
			p.metrics.IncRegInfoContact("intent")
			for _, uri := range c.URIs {
				out = append(out, subscription.Intent{AOR: reg.AOR, Target: uri})
			}
		}
	}
	return out
}

func lookup(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func attr(attrs []xml.Attr, name string) string {
	v, _ := lookup(attrs, name)
	return strings.TrimSpace(v)
}
