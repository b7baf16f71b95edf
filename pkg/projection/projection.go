// Package projection mirrors produced content into an external document
// shown in an editor next to the source.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/papercomputeco/rubberduck/pkg/logger"
)

// DocumentHandle is an opaque reference to a host document.
type DocumentHandle string

// EditorHandle is an opaque reference to a host editor view.
type EditorHandle string

// Placement tells the host where to open an editor.
type Placement string

// PlacementBeside opens the editor next to the originating source.
const PlacementBeside Placement = "beside"

// Host is the narrow document API of the editor platform.
type Host interface {
	// CreateDocument creates a new document seeded with text.
	CreateDocument(ctx context.Context, language, text string) (DocumentHandle, error)

	// OpenEditor shows doc at placement.
	OpenEditor(ctx context.Context, doc DocumentHandle, placement Placement) (EditorHandle, error)

	// ReplaceAll overwrites the whole buffer behind editor with text.
	ReplaceAll(ctx context.Context, editor EditorHandle, text string) error
}

// Projector owns the document and editor of one conversation. The document
// is created at most once and the editor opened at most once; every later
// projection overwrites the full text in place.
type Projector struct {
	host     Host
	language string
	logger   *slog.Logger

	mu        sync.Mutex
	doc       DocumentHandle
	hasDoc    bool
	editor    EditorHandle
	hasEditor bool
}

// ProjectorOption configures a Projector.
type ProjectorOption func(*Projector)

// WithLogger sets the projector logger.
func WithLogger(l *slog.Logger) ProjectorOption {
	return func(p *Projector) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProjector returns a Projector creating documents tagged with language.
func NewProjector(host Host, language string, opts ...ProjectorOption) *Projector {
	p := &Projector{
		host:     host,
		language: language,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project makes the document show content. Empty content is ignored.
func (p *Projector) Project(ctx context.Context, content string) error {
	if content == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	created := false
	if !p.hasDoc {
		doc, err := p.host.CreateDocument(ctx, p.language, content)
		if err != nil {
			return fmt.Errorf("creating document: %w", err)
		}
		p.doc, p.hasDoc = doc, true
		created = true
		p.logger.DebugContext(ctx, "document created", "document", string(doc))
	}

	if !p.hasEditor {
		editor, err := p.host.OpenEditor(ctx, p.doc, PlacementBeside)
		if err != nil {
			return fmt.Errorf("opening editor: %w", err)
		}
		p.editor, p.hasEditor = editor, true
		p.logger.DebugContext(ctx, "editor opened", "editor", string(editor))
	}

	if created {
		return nil
	}

	if err := p.host.ReplaceAll(ctx, p.editor, content); err != nil {
		return fmt.Errorf("replacing document text: %w", err)
	}
	return nil
}

// Document returns the projected document, if one was created.
func (p *Projector) Document() (DocumentHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc, p.hasDoc
}

// Editor returns the editor showing the document, if one was opened.
func (p *Projector) Editor() (EditorHandle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editor, p.hasEditor
}
