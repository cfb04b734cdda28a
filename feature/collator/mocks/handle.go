package mocks

import (
	"dialog-collator/feature/collator"

	"github.com/stretchr/testify/mock"
)

// Handle is a mock implementation of collator.Handle.
type Handle struct {
	mock.Mock
}

func (m *Handle) IsActive(user, domain string) bool {
	args := m.Called(user, domain)
	return args.Bool(0)
}

func (m *Handle) QueueDialog(user, domain string, body []byte) error {
	args := m.Called(user, domain, body)
	return args.Error(0)
}

func (m *Handle) BuildFromQueue(user, domain string) (*collator.Document, error) {
	args := m.Called(user, domain)
	return document(args.Get(0)), args.Error(1)
}

func (m *Handle) BuildFromNotify(user, domain string, body []byte) (*collator.Document, error) {
	args := m.Called(user, domain, body)
	return document(args.Get(0)), args.Error(1)
}

func (m *Handle) BuildFromBodies(user, domain string, bodies [][]byte) (*collator.Document, error) {
	args := m.Called(user, domain, bodies)
	return document(args.Get(0)), args.Error(1)
}

func (m *Handle) Release(doc *collator.Document) {
	m.Called(doc)
}

func (m *Handle) Close() error {
	args := m.Called()
	return args.Error(0)
}

func document(v any) *collator.Document {
	if doc, ok := v.(*collator.Document); ok {
		return doc
	}
	return nil
}

// Provider is a mock implementation of collator.Provider that also
// implements the optional Initializer and Destroyer hooks.
type Provider struct {
	mock.Mock
}

func (m *Provider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *Provider) NewHandle() (collator.Handle, error) {
	args := m.Called()
	if h, ok := args.Get(0).(collator.Handle); ok {
		return h, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) Init(params map[string]string) error {
	args := m.Called(params)
	return args.Error(0)
}

func (m *Provider) Destroy() error {
	args := m.Called()
	return args.Error(0)
}
