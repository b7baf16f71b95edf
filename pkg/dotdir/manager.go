// Package dotdir resolves the .rubberduck/ directory that holds config.toml,
// credentials.toml and projected documents.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const dirName = ".rubberduck"

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path of the .rubberduck/ directory, creating it
// when missing. Precedence:
//  1. overrideDir
//  2. ./.rubberduck/ when it exists
//  3. ~/.rubberduck/
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating rubberduck directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Subdir returns name inside the resolved target, creating it when missing.
func (m *Manager) Subdir(overrideDir, name string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(target, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	return dir, nil
}

func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
