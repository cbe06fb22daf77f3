package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"biseogo/internal/models"
)

// ErrSnapshotNotFound reports a missing snapshot file.
var ErrSnapshotNotFound = errors.New("session not found")

const snapshotTimeLayout = "20060102_150405"

// SnapshotStore keeps named, timestamped transcript copies, one JSON file
// per save.
type SnapshotStore struct {
	mu  sync.Mutex
	dir string
	log *logrus.Logger
	now func() time.Time
}

func NewSnapshotStore(dir string, log *logrus.Logger) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &SnapshotStore{dir: dir, log: log, now: time.Now}, nil
}

// ValidateSessionName rejects empty names and names carrying characters
// unusable in a filename.
func ValidateSessionName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	return !strings.ContainsAny(name, `<>:"/\|?*`)
}

// Save writes a new snapshot and returns its filename.
func (s *SnapshotStore) Save(history []models.Message, name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if history == nil {
		history = []models.Message{}
	}
	timestamp := s.now().Format(snapshotTimeLayout)
	filename := fmt.Sprintf("%s_%s.json", name, timestamp)
	snapshot := models.SessionSnapshot{
		Name:      name,
		Timestamp: timestamp,
		Messages:  history,
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(s.dir, filename), data); err != nil {
		return "", err
	}
	s.log.WithFields(logrus.Fields{"name": name, "filename": filename}).Info("session saved")
	return filename, nil
}

// List returns all snapshots, newest first. Unreadable files are skipped
// with a warning rather than failing the whole listing.
func (s *SnapshotStore) List() ([]models.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.SessionInfo{}, nil
		}
		return nil, fmt.Errorf("read sessions dir: %w", err)
	}
	infos := make([]models.SessionInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		snapshot, err := s.readSnapshot(entry.Name())
		if err != nil {
			s.log.WithError(err).WithField("filename", entry.Name()).Warn("skipping unreadable snapshot")
			continue
		}
		infos = append(infos, models.SessionInfo{
			Filename:     entry.Name(),
			Name:         snapshot.Name,
			Timestamp:    snapshot.Timestamp,
			MessageCount: len(snapshot.Messages),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp > infos[j].Timestamp
	})
	return infos, nil
}

// Load returns the messages of one snapshot.
func (s *SnapshotStore) Load(filename string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, err := s.readSnapshot(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return snapshot.Messages, nil
}

// Delete removes a snapshot file.
func (s *SnapshotStore) Delete(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, err := s.safePath(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSnapshotNotFound
		}
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) readSnapshot(filename string) (*models.SessionSnapshot, error) {
	path, err := s.safePath(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snapshot models.SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", filename, err)
	}
	return &snapshot, nil
}

// safePath refuses filenames that would escape the sessions directory.
func (s *SnapshotStore) safePath(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) {
		return "", ErrSnapshotNotFound
	}
	return filepath.Join(s.dir, filename), nil
}
