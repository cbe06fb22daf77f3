package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"biseogo/internal/models"
	"biseogo/internal/session"
)

func sampleHistory() []models.Message {
	return []models.Message{
		{Role: models.RoleUser, Content: "안녕"},
		{Role: models.RoleAssistant, Content: "안녕하세요", AudioURL: "/static/audio/response_x.mp3"},
		{Role: models.RoleUser, Content: "날씨 알려줘"},
	}
}

func TestConversationRoundTrip(t *testing.T) {
	s, err := NewConversationStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	history := sampleHistory()
	if err := s.Save(history); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := s.Load()
	if len(got) != len(history) {
		t.Fatalf("expected %d messages, got %d", len(history), len(got))
	}
	for i := range history {
		if got[i] != history[i] {
			t.Fatalf("message %d mismatch: %+v vs %+v", i, got[i], history[i])
		}
	}
}

func TestConversationRoundTripEmpty(t *testing.T) {
	s, err := NewConversationStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Save(nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	if got := s.Load(); len(got) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(got))
	}
}

func TestConversationLoadMissingFile(t *testing.T) {
	s, err := NewConversationStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if got := s.Load(); got == nil || len(got) != 0 {
		t.Fatalf("missing file must load as empty history, got %v", got)
	}
}

func TestConversationLoadCorruptFileDegrades(t *testing.T) {
	dir := t.TempDir()
	s, err := NewConversationStore(dir, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, conversationFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if got := s.Load(); len(got) != 0 {
		t.Fatalf("corrupt file must degrade to empty history, got %d messages", len(got))
	}
}

func TestConversationAppend(t *testing.T) {
	s, err := NewConversationStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Save(sampleHistory()[:1]); err != nil {
		t.Fatalf("save: %v", err)
	}
	history, err := s.Append(models.Message{Role: models.RoleAssistant, Content: "답변"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages after append, got %d", len(history))
	}
	if got := s.Load(); len(got) != 2 || got[1].Content != "답변" {
		t.Fatalf("append not persisted: %+v", got)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	history := sampleHistory()
	filename, err := s.Save(history, "주말 계획")
	if err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, err := s.Load(filename)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if len(got) != len(history) {
		t.Fatalf("expected %d messages, got %d", len(history), len(got))
	}
	for i := range history {
		if got[i] != history[i] {
			t.Fatalf("message %d mismatch", i)
		}
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 session, got %d", len(infos))
	}
	if infos[0].Filename != filename || infos[0].Name != "주말 계획" || infos[0].MessageCount != len(history) {
		t.Fatalf("unexpected session info: %+v", infos[0])
	}
}

func TestSnapshotListSortsNewestFirst(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	base := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	if _, err := s.Save(sampleHistory(), "first"); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.now = func() time.Time { return base.Add(time.Minute) }
	if _, err := s.Save(sampleHistory(), "second"); err != nil {
		t.Fatalf("save: %v", err)
	}

	infos, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(infos))
	}
	if infos[0].Name != "second" || infos[1].Name != "first" {
		t.Fatalf("expected newest first, got %q then %q", infos[0].Name, infos[1].Name)
	}
}

func TestSnapshotDeleteThenLoadNotFound(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	filename, err := s.Save(sampleHistory(), "temp")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Delete(filename); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Load(filename); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if err := s.Delete(filename); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound on second delete, got %v", err)
	}
}

func TestSnapshotRejectsPathEscape(t *testing.T) {
	s, err := NewSnapshotStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	for _, name := range []string{"../evil.json", "a/b.json", ""} {
		if _, err := s.Load(name); !errors.Is(err, ErrSnapshotNotFound) {
			t.Fatalf("expected ErrSnapshotNotFound for %q, got %v", name, err)
		}
	}
}

func TestValidateSessionName(t *testing.T) {
	valid := []string{"회의 기록", "plan-2026", "a b c"}
	for _, name := range valid {
		if !ValidateSessionName(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}
	invalid := []string{"", "   ", "a/b", `a\b`, "a:b", "a*b", "a?b", `a"b`, "a<b", "a|b"}
	for _, name := range invalid {
		if ValidateSessionName(name) {
			t.Fatalf("expected %q to be invalid", name)
		}
	}
}

func TestFileSettingsStoreRoundTrip(t *testing.T) {
	st, err := NewSettingsStore(SettingsStoreFile, WithSettingsDir(t.TempDir()))
	if err != nil {
		t.Fatalf("new settings store: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := st.Load(ctx, models.ModeNormal); err != nil || ok {
		t.Fatalf("expected empty load before save, ok=%v err=%v", ok, err)
	}

	want := session.Settings{Style: "detailed", Persona: "cynical"}
	if err := st.Save(ctx, models.ModeNormal, want); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	got, ok, err := st.Load(ctx, models.ModeNormal)
	if err != nil || !ok {
		t.Fatalf("load settings: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	// modes are namespaced
	if _, ok, _ := st.Load(ctx, models.ModePrivate); ok {
		t.Fatalf("private settings must not leak from normal mode")
	}
}

func TestSettingsStoreFactoryRejectsMissingOptions(t *testing.T) {
	if _, err := NewSettingsStore(SettingsStoreFile); !errors.Is(err, ErrInvalidStoreConfig) {
		t.Fatalf("expected ErrInvalidStoreConfig, got %v", err)
	}
	if _, err := NewSettingsStore(SettingsStoreRedis); !errors.Is(err, ErrInvalidStoreConfig) {
		t.Fatalf("expected ErrInvalidStoreConfig, got %v", err)
	}
	if _, err := NewSettingsStore("bolt"); err == nil {
		t.Fatalf("expected error for unsupported store type")
	}
}
