package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"jobboard/geo-service/internal/geo"
	"jobboard/geo-service/internal/model"
)

// snapshot holds the decoded documents of the JSON file store.
type snapshot struct {
	Jobs  []model.Job  `json:"jobs"`
	Users []model.User `json:"users"`
}

// rawSnapshot is the file decoded one document at a time.
type rawSnapshot struct {
	Jobs  []json.RawMessage `json:"jobs"`
	Users []json.RawMessage `json:"users"`
}

// FileStore keeps every document in memory and rewrites the backing file
// after each update. Writes are serialised and reads return copies. Location
// updates touch only latitude/longitude so repeating one is a no-op.
//
// Documents that do not decode are left out of reads but written back
// verbatim on flush.
type FileStore struct {
	mu       sync.RWMutex
	path     string
	data     snapshot
	badJobs  []json.RawMessage
	badUsers []json.RawMessage
}

// OpenFile loads path. A missing file yields an empty store that will be
// created on the first write.
func OpenFile(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var rs rawSnapshot
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	s.data.Jobs, s.badJobs = decodeDocs[model.Job](rs.Jobs, path, "jobs")
	s.data.Users, s.badUsers = decodeDocs[model.User](rs.Users, path, "users")
	return s, nil
}

// decodeDocs decodes each document on its own; the ones that do not fit the
// model are logged and returned separately.
func decodeDocs[T any](raws []json.RawMessage, path, collection string) ([]T, []json.RawMessage) {
	out := make([]T, 0, len(raws))
	var bad []json.RawMessage
	for i, r := range raws {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			slog.Warn("skipping undecodable document", "file", path, "collection", collection, "index", i, "err", err)
			bad = append(bad, r)
			continue
		}
		out = append(out, v)
	}
	return out, bad
}

// NewMemory returns a FileStore with no backing file, seeded with the given
// documents.
func NewMemory(jobs []model.Job, users []model.User) *FileStore {
	s := &FileStore{}
	s.data.Jobs = append(s.data.Jobs, jobs...)
	s.data.Users = append(s.data.Users, users...)
	return s
}

func (s *FileStore) ListJobs(_ context.Context) ([]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Job, len(s.data.Jobs))
	copy(out, s.data.Jobs)
	return out, nil
}

func (s *FileStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.User, len(s.data.Users))
	copy(out, s.data.Users)
	return out, nil
}

func (s *FileStore) GetUser(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.data.Users {
		if s.data.Users[i].ID == id {
			u := s.data.Users[i]
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) UpdateJobLocation(_ context.Context, id string, c geo.Coordinate) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Jobs {
		j := &s.data.Jobs[i]
		if j.ID != id {
			continue
		}
		j.Latitude, j.Longitude = ptr(c.Latitude), ptr(c.Longitude)
		if err := s.flush(); err != nil {
			return nil, err
		}
		out := *j
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) UpdateUserLocation(_ context.Context, id string, c geo.Coordinate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.Users {
		u := &s.data.Users[i]
		if u.ID != id {
			continue
		}
		u.Latitude, u.Longitude = ptr(c.Latitude), ptr(c.Longitude)
		if err := s.flush(); err != nil {
			return nil, err
		}
		out := *u
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *FileStore) Close(context.Context) error { return nil }

// flush writes the snapshot through a temp file so a crash never leaves a
// truncated document. Caller holds mu.
func (s *FileStore) flush() error {
	if s.path == "" {
		return nil
	}
	doc := struct {
		Jobs  []any `json:"jobs"`
		Users []any `json:"users"`
	}{
		Jobs:  make([]any, 0, len(s.data.Jobs)+len(s.badJobs)),
		Users: make([]any, 0, len(s.data.Users)+len(s.badUsers)),
	}
	for _, j := range s.data.Jobs {
		doc.Jobs = append(doc.Jobs, j)
	}
	for _, r := range s.badJobs {
		doc.Jobs = append(doc.Jobs, r)
	}
	for _, u := range s.data.Users {
		doc.Users = append(doc.Users, u)
	}
	for _, r := range s.badUsers {
		doc.Users = append(doc.Users, r)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func ptr(f float64) *float64 { return &f }
