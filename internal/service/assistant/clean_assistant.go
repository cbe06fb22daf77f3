package assistant

import (
	"context"
	"os"
	"time"

	"biseogo/internal/service/tts"
)

const (
	DefaultAudioTTL             = 24 * time.Hour
	DefaultAudioCleanupInterval = time.Hour
)

// recordAudioFile indexes a synthesized mp3 so the cleaner can expire it.
// Indexing is best-effort like the synthesis itself.
func (s *Service) recordAudioFile(ctx context.Context, result *tts.Result) {
	if s.db == nil || result == nil {
		return
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audio_files (file_name, stored_path, size, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		result.URLPath, result.StoredPath, result.Size, now, now.Add(s.audioTTL),
	)
	if err != nil {
		s.log.WithError(err).Warn("record audio file failed")
	}
}

// StartAudioCleaner removes expired audio files on a ticker until ctx ends.
func (s *Service) StartAudioCleaner(ctx context.Context, interval time.Duration) {
	if s.db == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultAudioCleanupInterval
	}
	go s.cleanupLoop(ctx, interval)
}

func (s *Service) cleanupLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.cleanupExpiredAudio(); err != nil {
				s.log.WithError(err).Warn("cleanup audio files failed")
			}
		}
	}
}

func (s *Service) cleanupExpiredAudio() error {
	rows, err := s.db.Query(
		`SELECT id, stored_path FROM audio_files WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return err
	}
	defer rows.Close()

	type audioRow struct {
		id   int64
		path string
	}
	var expired []audioRow
	for rows.Next() {
		var row audioRow
		if err := rows.Scan(&row.id, &row.path); err != nil {
			return err
		}
		expired = append(expired, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, row := range expired {
		if err := os.Remove(row.path); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).WithField("path", row.path).Warn("remove audio file failed")
			continue
		}
		if _, err := s.db.Exec(`DELETE FROM audio_files WHERE id = ?`, row.id); err != nil {
			s.log.WithError(err).Warn("delete audio record failed")
		}
	}
	return nil
}
