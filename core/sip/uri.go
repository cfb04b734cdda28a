package sip

import (
	"fmt"
	"strconv"
	"strings"

	gosip "github.com/emiago/sipgo/sip"
)

// URI is the subset of a parsed SIP URI the collator works with.
type URI struct {
	User string
	Host string
	Port int
	// Raw is the input with surrounding whitespace and angle brackets removed.
	Raw string
}

// ParseURI parses a SIP URI, optionally wrapped in angle brackets.
func ParseURI(s string) (URI, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	if raw == "" {
		return URI{}, fmt.Errorf("%w: empty uri", ErrInvalidRequest)
	}

	var u gosip.Uri
	if err := gosip.ParseUri(raw, &u); err != nil {
		return URI{}, fmt.Errorf("%w: parse uri %q: %v", ErrInvalidRequest, raw, err)
	}
	if u.Host == "" {
		return URI{}, fmt.Errorf("%w: uri %q has no host", ErrInvalidRequest, raw)
	}
	return URI{User: u.User, Host: u.Host, Port: u.Port, Raw: raw}, nil
}

// AOR returns the sip:user@host form without port or parameters.
func (u URI) AOR() string {
	if u.User == "" {
		return "sip:" + u.Host
	}
	return "sip:" + u.User + "@" + u.Host
}

// HostPort returns host:port, defaulting the port to 5060.
func (u URI) HostPort() string {
	port := u.Port
	if port == 0 {
		port = 5060
	}
	return u.Host + ":" + strconv.Itoa(port)
}

// HasUserAndHost reports whether both the user and host parts are present.
func (u URI) HasUserAndHost() bool {
	return u.User != "" && u.Host != ""
}
