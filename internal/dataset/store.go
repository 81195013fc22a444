package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Snapshot is the raw dataset of one completed ingest. Rows keep the upload
// order, so a row's position equals the id of its normalized booking.
type Snapshot struct {
	Version    string
	Filename   string
	Rows       []RawBooking
	UploadedAt time.Time
}

// Store holds the current snapshot in memory and mirrors the original upload
// to one cached file on disk. The most recent successful ingest wins; cached
// files live only for the lifetime of the process.
type Store struct {
	mu  sync.RWMutex
	dir string
	cur *Snapshot
	log *zap.Logger
}

func NewStore(dir string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// Swap replaces the current snapshot and the cached file. The file is written
// to a temp path and renamed into place so readers never observe a partial
// upload.
func (s *Store) Swap(rows []RawBooking, raw []byte, filename string) (*Snapshot, error) {
	filename = filepath.Base(filename)
	if filename == "." || filename == "/" || filename == "" {
		filename = "upload.csv"
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	target := filepath.Join(s.dir, filename)
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	snap := &Snapshot{
		Version:    uuid.NewString(),
		Filename:   filename,
		Rows:       rows,
		UploadedAt: time.Now(),
	}

	s.mu.Lock()
	prev := s.cur
	s.cur = snap
	s.mu.Unlock()

	if prev != nil && prev.Filename != filename {
		if err := os.Remove(filepath.Join(s.dir, prev.Filename)); err != nil {
			s.log.Warn("failed to remove previous cached upload", zap.Error(err))
		}
	}

	return snap, nil
}

// Current returns the snapshot of the most recent successful ingest.
func (s *Store) Current() (*Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur, s.cur != nil
}

// Ready reports whether any upload has completed since process start.
func (s *Store) Ready() bool {
	_, ok := s.Current()
	return ok
}

// Cleanup deletes every cached file. Called on process shutdown.
func (s *Store) Cleanup() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.log.Warn("failed to read data dir on cleanup", zap.Error(err))
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		if err := os.Remove(path); err != nil {
			s.log.Warn("failed to remove cached file", zap.String("path", path), zap.Error(err))
		}
	}

	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
}
