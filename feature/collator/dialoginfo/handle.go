package dialoginfo

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"dialog-collator/feature/collator"

	"go.uber.org/zap"
)

// dummyDialogID names the placeholder dialog rendered by force-dummy-dialog.
const dummyDialogID = "dummy"

type entry struct {
	dialog     dialog
	terminated bool
}

// identity is the merged state of one user@domain.
type identity struct {
	dialogs map[string]*entry
	order   []string
	version int
	dirty   bool
}

func (id *identity) active() bool {
	for _, e := range id.dialogs {
		if !e.terminated {
			return true
		}
	}
	return false
}

func (id *identity) upsert(d dialog) {
	e, ok := id.dialogs[d.ID]
	if !ok {
		e = &entry{}
		id.dialogs[d.ID] = e
		id.order = append(id.order, d.ID)
	}
	e.dialog = d
	e.terminated = isTerminated(d.State.Value)
}

// terminateAll marks every dialog ended, e.g. when the endpoint stopped answering.
func (id *identity) terminateAll() {
	for _, e := range id.dialogs {
		e.terminated = true
		e.dialog.State = dialogState{Event: "timeout", Value: stateTerminated}
	}
}

// prune drops dialogs that have been published in their terminated state.
func (id *identity) prune() {
	kept := id.order[:0]
	for _, key := range id.order {
		if id.dialogs[key].terminated {
			delete(id.dialogs, key)
			continue
		}
		kept = append(kept, key)
	}
	id.order = kept
}

type handle struct {
	opts   options
	logger *zap.Logger

	mu          sync.Mutex
	identities  map[string]*identity
	outstanding map[*collator.Document]struct{}
}

func newHandle(opts options, logger *zap.Logger) *handle {
	return &handle{
		opts:        opts,
		logger:      logger,
		identities:  make(map[string]*identity),
		outstanding: make(map[*collator.Document]struct{}),
	}
}

func identityKey(user, domain string) string {
	return user + "@" + strings.ToLower(domain)
}

func (h *handle) lookup(user, domain string, create bool) *identity {
	key := identityKey(user, domain)
	id, ok := h.identities[key]
	if !ok && create {
		id = &identity{dialogs: make(map[string]*entry)}
		h.identities[key] = id
	}
	return id
}

// IsActive reports whether user@domain has at least one dialog that has not ended.
func (h *handle) IsActive(user, domain string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.lookup(user, domain, false)
	return id != nil && id.active()
}

// QueueDialog merges body into the identity. An empty body ends all of its dialogs.
func (h *handle) QueueDialog(user, domain string, body []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ingest(user, domain, body)
}

// BuildFromQueue renders the identity if anything changed since the last build.
func (h *handle) BuildFromQueue(user, domain string) (*collator.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.lookup(user, domain, false)
	if id == nil || !id.dirty {
		return nil, nil
	}
	return h.build(user, domain, id)
}

// BuildFromNotify merges body and renders the identity.
func (h *handle) BuildFromNotify(user, domain string, body []byte) (*collator.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ingest(user, domain, body); err != nil {
		return nil, err
	}
	return h.build(user, domain, h.lookup(user, domain, false))
}

// BuildFromBodies merges every parsable body and renders the identity.
// Malformed bodies are skipped; if none could be merged the first error is returned.
func (h *handle) BuildFromBodies(user, domain string, bodies [][]byte) (*collator.Document, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(bodies) == 0 {
		return nil, nil
	}

	var firstErr error
	merged := 0
	for _, body := range bodies {
		if err := h.ingest(user, domain, body); err != nil {
			h.logger.Warn("Skipping malformed dialog fragment",
				zap.String("user", user), zap.String("domain", domain), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		merged++
	}
	if merged == 0 {
		return nil, firstErr
	}
	return h.build(user, domain, h.lookup(user, domain, false))
}

// Release forgets doc. Releasing a document twice, or one this handle never
// produced, is logged and otherwise ignored.
func (h *handle) Release(doc *collator.Document) {
	if doc == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.outstanding[doc]; !ok {
		h.logger.Warn("Release of unknown dialog document",
			zap.String("user", doc.User), zap.String("domain", doc.Domain))
		return
	}
	delete(h.outstanding, doc)
}

// Close drops all state. Outstanding documents are reported.
func (h *handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.outstanding); n > 0 {
		h.logger.Warn("Closing handle with unreleased documents", zap.Int("count", n))
	}
	h.identities = make(map[string]*identity)
	h.outstanding = make(map[*collator.Document]struct{})
	return nil
}

func (h *handle) identityCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.identities)
}

func (h *handle) outstandingCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.outstanding)
}

func (h *handle) ingest(user, domain string, body []byte) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		id := h.lookup(user, domain, true)
		id.terminateAll()
		id.dirty = true
		return nil
	}

	info, err := parse(body)
	if err != nil {
		return fmt.Errorf("%w: %v", collator.ErrMalformedFragment, err)
	}

	id := h.lookup(user, domain, true)
	for _, d := range info.Dialogs {
		if d.ID == "" {
			h.logger.Debug("Dialog without id ignored", zap.String("user", user), zap.String("domain", domain))
			continue
		}
		id.upsert(d)
	}
	id.dirty = true
	return nil
}

func (h *handle) build(user, domain string, id *identity) (*collator.Document, error) {
	dialogs := make([]dialog, 0, len(id.order))
	for _, key := range id.order {
		dialogs = append(dialogs, id.dialogs[key].dialog)
	}

	if h.opts.forceSingleDialog && len(dialogs) > 1 {
		dialogs = []dialog{mostImportant(dialogs)}
	}
	if h.opts.forceDummyDialog && len(dialogs) == 0 {
		dialogs = []dialog{{ID: dummyDialogID, State: dialogState{Value: stateTerminated}}}
	}

	body, err := render(renderedInfo{
		Version: id.version,
		State:   "full",
		Entity:  "sip:" + user + "@" + domain,
		Dialogs: dialogs,
	})
	if err != nil {
		return nil, fmt.Errorf("render dialog-info for %s@%s: %w", user, domain, err)
	}

	doc := &collator.Document{
		User:        user,
		Domain:      domain,
		Body:        body,
		ContentType: ContentType,
		Version:     id.version,
	}

	id.version++
	id.dirty = false
	id.prune()
	// Nothing left to report: the next fragment starts a fresh identity.
	if len(id.dialogs) == 0 {
		delete(h.identities, identityKey(user, domain))
	}
	h.outstanding[doc] = struct{}{}
	return doc, nil
}

// mostImportant returns the first dialog with the highest state priority.
func mostImportant(dialogs []dialog) dialog {
	best := dialogs[0]
	for _, d := range dialogs[1:] {
		if statePriority(d.State.Value) > statePriority(best.State.Value) {
			best = d
		}
	}
	return best
}
