// Package storage is the file persistence layer behind the toolhost tools.
//
// Every path handed to a tool is resolved against a single workspace root and
// rejected if it escapes it. The store also hands out per-path exclusive locks
// so read-modify-write cycles such as apply_diff cannot race each other on the
// same file.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"
)

// ErrNotFound marks paths that do not exist. Callers test for it with
// errors.Is to distinguish a missing file from an I/O failure.
var ErrNotFound = errors.New("path does not exist")

// ErrNotText marks files whose bytes cannot be decoded as UTF-8 text.
var ErrNotText = errors.New("content is not valid text")

// Store abstracts the filesystem for the tool handlers so tests can run them
// against a temporary root.
type Store interface {
	// Resolve turns a tool-supplied path into an absolute path inside the
	// workspace root, or fails when the path escapes it.
	Resolve(path string) (string, error)
	// ReadText loads a file as UTF-8 text.
	ReadText(path string) (string, error)
	// ReadBytes loads a file without decoding.
	ReadBytes(path string) ([]byte, error)
	// WriteText persists text, creating parent directories as needed.
	WriteText(path, content string) error
	// Delete removes a file, or a directory with its contents.
	Delete(path string) error
	// Move renames a file, creating destination parents as needed.
	Move(source, destination string) error
	// List returns directory entries; directories carry a trailing slash.
	// Recursive listings are relative to the listed directory.
	List(path string, recursive bool) ([]string, error)
	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error
	// Lock takes the exclusive per-path lock and returns its release func.
	Lock(path string) func()
}

// OSStore is the production Store rooted at a workspace directory.
type OSStore struct {
	root string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOSStore builds a store rooted at root. The root must exist.
func NewOSStore(root string) (*OSStore, error) {
	abs, err := filepath.Abs(strings.TrimSpace(root))
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &OSStore{root: abs, locks: make(map[string]*sync.Mutex)}, nil
}

// Root reports the workspace root the store confines paths to.
func (s *OSStore) Root() string { return s.root }

func (s *OSStore) Resolve(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("empty path")
	}
	abs := filepath.Clean(trimmed)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.root, abs)
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s escapes the workspace root", trimmed)
	}
	return abs, nil
}

func (s *OSStore) ReadText(path string) (string, error) {
	data, err := s.ReadBytes(path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("read %s: %w", path, ErrNotText)
	}
	return string(data), nil
}

func (s *OSStore) ReadBytes(path string) ([]byte, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (s *OSStore) WriteText(path, content string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create parent directories for %s: %w", path, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (s *OSStore) Delete(path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("delete directory %s: %w", path, err)
		}
		return nil
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *OSStore) Move(source, destination string) error {
	srcAbs, err := s.Resolve(source)
	if err != nil {
		return err
	}
	dstAbs, err := s.Resolve(destination)
	if err != nil {
		return err
	}
	if _, err := os.Stat(srcAbs); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", source, ErrNotFound)
	}
	if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
		return fmt.Errorf("create destination parents for %s: %w", destination, err)
	}
	if err := os.Rename(srcAbs, dstAbs); err != nil {
		return fmt.Errorf("move %s to %s: %w", source, destination, err)
	}
	return nil
}

func (s *OSStore) List(path string, recursive bool) ([]string, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}

	if !recursive {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", path, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				name += "/"
			}
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}

	var names []string
	err = filepath.WalkDir(abs, func(walked string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if walked == abs {
			return nil
		}
		rel, relErr := filepath.Rel(abs, walked)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			rel += "/"
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s recursively: %w", path, err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *OSStore) MkdirAll(path string) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// Lock serializes mutations of a single path. Locks are keyed by the resolved
// absolute path so "a.txt" and "./a.txt" contend on the same mutex.
func (s *OSStore) Lock(path string) func() {
	key := path
	if abs, err := s.Resolve(path); err == nil {
		key = abs
	}

	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
