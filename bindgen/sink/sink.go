// Package sink provides output destinations for generated code.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// OutputSink receives generated file content.
// Implementations must be safe for concurrent calls.
type OutputSink interface {
	// WriteFile writes content to the specified path.
	// The path is relative; the sink determines the actual location.
	WriteFile(ctx context.Context, path string, content []byte) error
}

// FilesystemSink writes to a directory on the local filesystem.
type FilesystemSink struct {
	// Root is the base directory for all writes.
	Root string

	// Mode is the file permission mode (default: 0644).
	Mode os.FileMode

	// mu guards unchanged.
	mu        sync.Mutex
	unchanged []string
}

// NewFilesystemSink creates a new FilesystemSink writing to the specified root directory.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{
		Root: root,
		Mode: 0644,
	}
}

// WriteFile writes content to path within the root directory.
//
// Files whose current content already equals content are left untouched, so
// their modification time does not change. Other writes go to a temporary
// file that is renamed into place.
func (s *FilesystemSink) WriteFile(ctx context.Context, path string, content []byte) error {
	fullPath, err := resolve(s.Root, path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if existing, err := os.ReadFile(fullPath); err == nil && bytes.Equal(existing, content) {
		s.mu.Lock()
		s.unchanged = append(s.unchanged, path)
		s.mu.Unlock()
		return nil
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tempFile, err := os.CreateTemp(dir, ".hostbind-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := func() { _ = os.Remove(tempPath) }

	_, writeErr := tempFile.Write(content)
	closeErr := tempFile.Close()
	if writeErr != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		cleanup()
		return fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	if err := os.Chmod(tempPath, mode); err != nil {
		cleanup()
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Unchanged returns the paths whose content was already up to date, in
// write order.
func (s *FilesystemSink) Unchanged() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.unchanged)
}

// MemorySink stores generated files in memory.
// All operations are thread-safe.
type MemorySink struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemorySink creates a new MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		files: make(map[string][]byte),
	}
}

// WriteFile writes content to the in-memory store.
func (s *MemorySink) WriteFile(ctx context.Context, path string, content []byte) error {
	if err := ValidatePath(path); err != nil {
		return fmt.Errorf("invalid path %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = bytes.Clone(content)
	return nil
}

// Files returns a copy of all written files.
func (s *MemorySink) Files() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string][]byte, len(s.files))
	for path, content := range s.files {
		result[path] = bytes.Clone(content)
	}
	return result
}

// Paths returns the written paths in sorted order.
func (s *MemorySink) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.files))
	for path := range s.files {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}

// Get returns the content of a single file, or nil if not found.
func (s *MemorySink) Get(path string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.files[path]
	if !ok {
		return nil
	}
	return bytes.Clone(content)
}

// Reset clears all stored files.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = make(map[string][]byte)
}

// CheckSink compares generated content with the files under Root without
// writing anything. It backs "hostbind check".
type CheckSink struct {
	Root string

	mu    sync.Mutex
	stale []string
}

// NewCheckSink creates a CheckSink comparing against files under root.
func NewCheckSink(root string) *CheckSink {
	return &CheckSink{Root: root}
}

// WriteFile records path as stale when the file under Root is missing or
// differs from content.
func (s *CheckSink) WriteFile(ctx context.Context, path string, content []byte) error {
	fullPath, err := resolve(s.Root, path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	existing, err := os.ReadFile(fullPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err == nil && bytes.Equal(existing, content) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stale = append(s.stale, path)
	return nil
}

// Stale returns the paths that are missing or out of date, in write order.
func (s *CheckSink) Stale() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.stale)
}

// resolve validates path and joins it to root, rejecting results outside root.
func resolve(root, path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}

	fullPath := filepath.Join(root, filepath.FromSlash(path))

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root directory: %w", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) && absPath != absRoot {
		return "", fmt.Errorf("path escapes root directory: %q", path)
	}
	return fullPath, nil
}

// ValidatePath checks if a path is valid for output.
// Paths must be relative, use / as separator, not contain .. components,
// and be clean.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New("path is empty")
	}

	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return errors.New("absolute paths not allowed")
	}

	// Windows drive letters, even on Unix.
	if len(path) >= 2 && path[1] == ':' && ((path[0] >= 'A' && path[0] <= 'Z') || (path[0] >= 'a' && path[0] <= 'z')) {
		return errors.New("absolute paths not allowed")
	}

	if slices.Contains(strings.Split(filepath.ToSlash(path), "/"), "..") {
		return errors.New("path traversal not allowed")
	}

	cleaned := filepath.ToSlash(filepath.Clean(path))
	if cleaned != filepath.ToSlash(path) {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, path)
	}

	return nil
}
