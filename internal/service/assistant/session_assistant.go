package assistant

import (
	"strings"

	"biseogo/internal/export"
	"biseogo/internal/models"
	"biseogo/internal/search"
	"biseogo/internal/store"
)

// SaveSession snapshots the durable transcript under the given name and
// returns the snapshot filename. Private mode has no durable transcript to
// snapshot, so it refuses.
func (s *Service) SaveSession(mode models.Mode, name string) (string, error) {
	if mode.IsPrivate() {
		return "", validationError("비공개 모드에서는 세션을 저장할 수 없습니다.")
	}
	name = strings.TrimSpace(name)
	if !store.ValidateSessionName(name) {
		return "", validationError("세션 이름이 유효하지 않습니다.")
	}
	return s.snapshots.Save(s.conversations.Load(), name)
}

// ListSessions returns stored snapshots, newest first.
func (s *Service) ListSessions() ([]models.SessionInfo, error) {
	return s.snapshots.List()
}

// LoadSession restores a snapshot into the normal-mode window and the
// durable transcript, returning its messages. store.ErrSnapshotNotFound
// passes through for missing files.
func (s *Service) LoadSession(mode models.Mode, filename string) ([]models.Message, error) {
	if mode.IsPrivate() {
		return nil, validationError("비공개 모드에서는 세션을 불러올 수 없습니다.")
	}
	messages, err := s.snapshots.Load(filename)
	if err != nil {
		return nil, err
	}
	s.sessions[models.ModeNormal].ReplaceContext(messages)
	if err := s.conversations.Save(messages); err != nil {
		s.log.WithError(err).Warn("replace durable transcript failed")
	}
	return messages, nil
}

// DeleteSession removes a snapshot file.
func (s *Service) DeleteSession(filename string) error {
	return s.snapshots.Delete(filename)
}

// Export renders the durable transcript to the requested format and
// returns the written file path.
func (s *Service) Export(format string) (string, error) {
	var f export.Format
	switch format {
	case "txt":
		f = export.FormatTxt
	case "pdf":
		f = export.FormatPDF
	default:
		return "", validationError("지원하지 않는 내보내기 형식입니다.")
	}
	path, err := s.renderer.Render(s.conversations.Load(), f)
	if err != nil {
		if err == export.ErrEmptyTranscript {
			return "", validationError("내보낼 대화 내용이 없습니다.")
		}
		return "", err
	}
	return path, nil
}

// Search scans the durable transcript for the query. An empty query is a
// validation error, not an empty result.
func (s *Service) Search(query string) ([]models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, validationError("검색어를 입력해주세요.")
	}
	return search.InConversation(s.conversations.Load(), query), nil
}
