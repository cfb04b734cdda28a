package sip

import (
	"context"
	"sync"
	"time"
)

// Subscription states tracked by a registry.
const (
	StatePending = "pending"
	StateActive  = "active"
)

// dialogKeyPrefix namespaces the dialog index next to correlation ids.
const dialogKeyPrefix = "DIALOG."

// DialogKey is the registry key under which a subscription is indexed by
// the Call-ID of its dialog.
func DialogKey(callID string) string {
	return dialogKeyPrefix + callID
}

// SubscriptionRecord describes one outstanding SUBSCRIBE.
type SubscriptionRecord struct {
	CorrelationID string    `cbor:"1,keyasint" json:"correlation_id"`
	Target        string    `cbor:"2,keyasint" json:"target"`
	Expires       int       `cbor:"3,keyasint" json:"expires"`
	State         string    `cbor:"4,keyasint" json:"state"`
	UpdatedAt     time.Time `cbor:"5,keyasint" json:"updated_at"`
	// CallID identifies the subscription dialog.
	CallID string `cbor:"6,keyasint,omitempty" json:"call_id,omitempty"`
	// LocalTag is the From tag of the SUBSCRIBE.
	LocalTag string `cbor:"7,keyasint,omitempty" json:"local_tag,omitempty"`
	// RemoteTag is the To tag of the 2xx reply, empty while pending.
	RemoteTag string `cbor:"8,keyasint,omitempty" json:"remote_tag,omitempty"`
}

// SubscriptionRegistry stores subscription records under a key with a time
// to live. A record that has expired is indistinguishable from one never
// stored.
type SubscriptionRegistry interface {
	Put(ctx context.Context, key string, rec SubscriptionRecord, ttl time.Duration) error
	// Reserve stores rec only when no live record exists under key and
	// reports whether it did. The check and the write are atomic.
	Reserve(ctx context.Context, key string, rec SubscriptionRecord, ttl time.Duration) (bool, error)
	// Get returns nil without error when no live record exists.
	Get(ctx context.Context, key string) (*SubscriptionRecord, error)
	Delete(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	rec      SubscriptionRecord
	deadline time.Time
}

// MemoryRegistry is a process-local SubscriptionRegistry.
type MemoryRegistry struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryRegistry creates an empty in-memory registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put stores rec under key until ttl elapses. A non-positive ttl removes it.
func (m *MemoryRegistry) Put(_ context.Context, key string, rec SubscriptionRecord, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ttl <= 0 {
		delete(m.entries, key)
		return nil
	}
	m.entries[key] = memoryEntry{rec: rec, deadline: m.now().Add(ttl)}
	return nil
}

// Reserve stores rec under key unless a live record is already there.
func (m *MemoryRegistry) Reserve(_ context.Context, key string, rec SubscriptionRecord, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	if ttl <= 0 {
		return false, nil
	}
	m.entries[key] = memoryEntry{rec: rec, deadline: m.now().Add(ttl)}
	return true, nil
}

// Get returns the live record for key, dropping it if it has expired.
func (m *MemoryRegistry) Get(_ context.Context, key string) (*SubscriptionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return nil, nil
	}
	rec := e.rec
	return &rec, nil
}

// live must be called with mu held.
func (m *MemoryRegistry) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !m.now().Before(e.deadline) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// Delete removes the records stored under keys.
func (m *MemoryRegistry) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Len returns the number of stored records, expired ones included.
func (m *MemoryRegistry) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
