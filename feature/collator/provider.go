package collator

import "errors"

var (
	// ErrUnknownProvider is returned when no provider is registered under the configured name.
	ErrUnknownProvider = errors.New("unknown collation provider")
	// ErrMissingEntryPoint is returned when a provider cannot produce a usable handle.
	ErrMissingEntryPoint = errors.New("collation provider is missing a mandatory entry point")
	// ErrMalformedFragment is returned by handles for event bodies they cannot parse.
	ErrMalformedFragment = errors.New("malformed dialog fragment")
)

// Document is an aggregated dialog-event body ready to be published.
// Every Document obtained from a Handle must be passed to Release exactly once.
type Document struct {
	User        string
	Domain      string
	Body        []byte
	ContentType string
	Version     int
}

// Provider is a collation backend. It is resolved once at startup by name.
type Provider interface {
	Name() string
	NewHandle() (Handle, error)
}

// Initializer is implemented by providers that need one-time setup before
// the first handle is created.
type Initializer interface {
	Init(params map[string]string) error
}

// Destroyer is implemented by providers holding process-wide resources.
type Destroyer interface {
	Destroy() error
}

// Handle is the per-process aggregation state of a provider.
//
// The engine only queues fragments and asks for builds; it never inspects
// what a handle keeps. Build methods return a nil Document when there is
// nothing to publish.
type Handle interface {
	IsActive(user, domain string) bool
	QueueDialog(user, domain string, body []byte) error
	BuildFromQueue(user, domain string) (*Document, error)
	BuildFromNotify(user, domain string, body []byte) (*Document, error)
	BuildFromBodies(user, domain string, bodies [][]byte) (*Document, error)
	Release(doc *Document)
	Close() error
}
