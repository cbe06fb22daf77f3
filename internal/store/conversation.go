// Package store persists conversation data as JSON files: the durable
// normal-mode transcript, named session snapshots, and the per-mode
// settings records.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"biseogo/internal/models"
)

const conversationFile = "conversation_history.json"

// ConversationStore owns the single durable transcript file. Writes are
// whole-file replacements serialized by a mutex, written via a temp file
// and rename so a crash cannot leave a half-written transcript.
type ConversationStore struct {
	mu  sync.Mutex
	dir string
	log *logrus.Logger
}

func NewConversationStore(dir string, log *logrus.Logger) (*ConversationStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create conversations dir: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &ConversationStore{dir: dir, log: log}, nil
}

func (s *ConversationStore) path() string {
	return filepath.Join(s.dir, conversationFile)
}

// Save overwrites the transcript with the given history.
func (s *ConversationStore) Save(history []models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(history)
}

func (s *ConversationStore) saveLocked(history []models.Message) error {
	if history == nil {
		history = []models.Message{}
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	return writeFileAtomic(s.path(), data)
}

// Load returns the transcript, degrading to an empty history when the file
// is missing or unreadable: durability is best-effort for a personal tool
// and a corrupt file must not take chat down with it.
func (s *ConversationStore) Load() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *ConversationStore) loadLocked() []models.Message {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Warn("read conversation history failed")
		}
		return []models.Message{}
	}
	var history []models.Message
	if err := json.Unmarshal(data, &history); err != nil {
		s.log.WithError(err).Warn("decode conversation history failed")
		return []models.Message{}
	}
	return history
}

// Append loads, extends and rewrites the transcript in one critical
// section, returning the appended-to history.
func (s *ConversationStore) Append(messages ...models.Message) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.loadLocked(), messages...)
	if err := s.saveLocked(history); err != nil {
		return history, err
	}
	return history, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
