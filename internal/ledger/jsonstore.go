package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/example/drillbot/pkg/models"
)

// JSONStore persists the whole ledger state as one human-inspectable JSON
// document. Every mutation rewrites the document to a temporary file in
// the same directory and renames it over the old one, so the previous
// state survives any failed write.
type JSONStore struct {
	path string
	doc  *State
}

// NewJSONStore opens (or creates) a JSON-backed store at the given path.
// Parent directories are created as needed.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &JSONStore{path: path}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	s.doc = doc
	return s, nil
}

// read loads the document from disk. A missing file yields an empty state.
func (s *JSONStore) read() (*State, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()

	doc := NewState()
	dec := json.NewDecoder(f)
	// Unknown fields are rejected rather than silently dropped on the
	// next write.
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode ledger file %s: %w", s.path, err)
	}
	if doc.Records == nil {
		doc.Records = make(map[string]models.RetentionRecord)
	}
	if doc.Unlocks == nil {
		doc.Unlocks = make(map[string]models.Unlock)
	}
	return doc, nil
}

// flush atomically replaces the document on disk with next.
func (s *JSONStore) flush(next *State) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close ledger file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}
	return nil
}

// Load implements Store. The caller gets its own copy of the state.
func (s *JSONStore) Load() (*State, error) {
	return s.doc.Clone(), nil
}

// ApplyAnswer implements Store.
func (s *JSONStore) ApplyAnswer(key string, rec models.RetentionRecord, ev models.AnswerEvent, stats models.LearnerStats) error {
	next := s.doc.Clone()
	next.Records[key] = rec
	next.Answers = append(next.Answers, ev)
	if len(next.Answers) > maxAnswerLog {
		next.Answers = next.Answers[len(next.Answers)-maxAnswerLog:]
	}
	next.Stats = stats

	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// AppendSession implements Store.
func (s *JSONStore) AppendSession(sess models.Session) error {
	next := s.doc.Clone()
	next.Sessions = append(next.Sessions, sess)
	if len(next.Sessions) > maxSessions {
		next.Sessions = next.Sessions[len(next.Sessions)-maxSessions:]
	}

	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// SaveStats implements Store.
func (s *JSONStore) SaveStats(stats models.LearnerStats) error {
	next := s.doc.Clone()
	next.Stats = stats

	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// PutUnlock implements Store.
func (s *JSONStore) PutUnlock(id string, u models.Unlock) error {
	next := s.doc.Clone()
	next.Unlocks[id] = u

	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Reset implements Store.
func (s *JSONStore) Reset() error {
	next := NewState()
	if err := s.flush(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// Close implements Store. The JSON store holds no open resources.
func (s *JSONStore) Close() error {
	return nil
}
