// Package filehost projects documents into files on disk. An "editor" is the
// file path; opening one reports it through the OnOpen callback so a
// terminal host can tell the user where the document lives.
package filehost

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/rubberduck/pkg/logger"
	"github.com/papercomputeco/rubberduck/pkg/projection"
	"github.com/papercomputeco/rubberduck/pkg/selection"
)

// Config is the filehost configuration.
type Config struct {
	// Dir receives the projected files. Created on demand.
	Dir string

	// OnOpen is called with the file path when an editor is opened.
	OnOpen func(path string, placement projection.Placement)

	Logger *slog.Logger
}

// Host implements projection.Host on the filesystem.
type Host struct {
	dir    string
	onOpen func(string, projection.Placement)
	logger *slog.Logger

	mu   sync.Mutex
	open map[projection.EditorHandle]string
}

var _ projection.Host = (*Host)(nil)

// New returns a Host writing into cfg.Dir.
func New(cfg Config) (*Host, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("filehost: directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating projection dir: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Host{
		dir:    cfg.Dir,
		onOpen: cfg.OnOpen,
		logger: log,
		open:   map[projection.EditorHandle]string{},
	}, nil
}

// CreateDocument writes text into a new uniquely named file whose extension
// follows language.
func (h *Host) CreateDocument(_ context.Context, language, text string) (projection.DocumentHandle, error) {
	name := uuid.NewString() + selection.ExtensionForLanguage(language)
	path := filepath.Join(h.dir, name)

	if err := writeFile(path, text); err != nil {
		return "", err
	}

	h.logger.Debug("document written", "path", path, "language", language)
	return projection.DocumentHandle(path), nil
}

func (h *Host) OpenEditor(_ context.Context, doc projection.DocumentHandle, placement projection.Placement) (projection.EditorHandle, error) {
	path := string(doc)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("opening document: %w", err)
	}

	editor := projection.EditorHandle(path)
	h.mu.Lock()
	h.open[editor] = path
	h.mu.Unlock()

	if h.onOpen != nil {
		h.onOpen(path, placement)
	}
	return editor, nil
}

func (h *Host) ReplaceAll(_ context.Context, editor projection.EditorHandle, text string) error {
	h.mu.Lock()
	path, ok := h.open[editor]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("filehost: editor %q is not open", editor)
	}

	return writeFile(path, text)
}

// Dir returns the projection directory.
func (h *Host) Dir() string {
	return h.dir
}

// writeFile replaces path atomically so readers never see a partial buffer.
func writeFile(path, text string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rubberduck-*")
	if err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("writing document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}
