// Package memory is an in-process projection host. It keeps documents in
// maps and is used by tests and by hosts that render documents themselves.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/papercomputeco/rubberduck/pkg/projection"
)

// ErrUnknownHandle is returned for handles this host did not issue.
var ErrUnknownHandle = errors.New("memory: unknown handle")

// Document is a stored document.
type Document struct {
	Language string
	Text     string
}

// Host implements projection.Host in memory.
type Host struct {
	mu        sync.Mutex
	docs      map[projection.DocumentHandle]*Document
	editors   map[projection.EditorHandle]projection.DocumentHandle
	placement map[projection.EditorHandle]projection.Placement

	creates  int
	opens    int
	replaces int

	createErr  error
	openErr    error
	replaceErr error
}

var _ projection.Host = (*Host)(nil)

func New() *Host {
	return &Host{
		docs:      map[projection.DocumentHandle]*Document{},
		editors:   map[projection.EditorHandle]projection.DocumentHandle{},
		placement: map[projection.EditorHandle]projection.Placement{},
	}
}

// FailCreate makes every CreateDocument fail with err until reset with nil.
func (h *Host) FailCreate(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.createErr = err
}

// FailOpen makes every OpenEditor fail with err until reset with nil.
func (h *Host) FailOpen(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.openErr = err
}

// FailReplace makes every ReplaceAll fail with err until reset with nil.
func (h *Host) FailReplace(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replaceErr = err
}

func (h *Host) CreateDocument(_ context.Context, language, text string) (projection.DocumentHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.createErr != nil {
		return "", h.createErr
	}

	h.creates++
	handle := projection.DocumentHandle(fmt.Sprintf("doc-%d", h.creates))
	h.docs[handle] = &Document{Language: language, Text: text}
	return handle, nil
}

func (h *Host) OpenEditor(_ context.Context, doc projection.DocumentHandle, placement projection.Placement) (projection.EditorHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.openErr != nil {
		return "", h.openErr
	}
	if _, ok := h.docs[doc]; !ok {
		return "", ErrUnknownHandle
	}

	h.opens++
	handle := projection.EditorHandle(fmt.Sprintf("editor-%d", h.opens))
	h.editors[handle] = doc
	h.placement[handle] = placement
	return handle, nil
}

func (h *Host) ReplaceAll(_ context.Context, editor projection.EditorHandle, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.replaceErr != nil {
		return h.replaceErr
	}
	doc, ok := h.editors[editor]
	if !ok {
		return ErrUnknownHandle
	}

	h.replaces++
	h.docs[doc].Text = text
	return nil
}

// Document returns a copy of the document behind handle.
func (h *Host) Document(handle projection.DocumentHandle) (Document, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	d, ok := h.docs[handle]
	if !ok {
		return Document{}, false
	}
	return *d, true
}

// Placement returns where editor was opened.
func (h *Host) Placement(editor projection.EditorHandle) projection.Placement {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.placement[editor]
}

// Counts returns how many documents were created, editors opened and
// replacements applied.
func (h *Host) Counts() (creates, opens, replaces int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.creates, h.opens, h.replaces
}
