package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"biseogo/internal/models"
)

func userMsg(i int) models.Message {
	return models.Message{Role: models.RoleUser, Content: fmt.Sprintf("message %d", i)}
}

func TestWindowBoundHolds(t *testing.T) {
	const size = 5
	s := New(models.ModeNormal, size, nil)
	for i := 0; i < 20; i++ {
		s.AddMessage(userMsg(i))
		if got := s.Len(); got > size {
			t.Fatalf("window exceeded bound after %d adds: %d", i+1, got)
		}
	}
	ctx := s.Context()
	if len(ctx) != size {
		t.Fatalf("expected %d messages, got %d", size, len(ctx))
	}
	// the retained messages are exactly the most recent ones, in order
	for i, msg := range ctx {
		want := fmt.Sprintf("message %d", 20-size+i)
		if msg.Content != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, msg.Content)
		}
	}
}

func TestAddExchangeKeepsPairsTogether(t *testing.T) {
	s := New(models.ModeNormal, 4, nil)
	for i := 0; i < 6; i++ {
		s.AddExchange(
			models.Message{Role: models.RoleUser, Content: fmt.Sprintf("q%d", i)},
			models.Message{Role: models.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	ctx := s.Context()
	if len(ctx) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(ctx))
	}
	if ctx[0].Content != "q4" || ctx[1].Content != "a4" || ctx[2].Content != "q5" || ctx[3].Content != "a5" {
		t.Fatalf("unexpected window contents: %+v", ctx)
	}
}

func TestContextReturnsCopy(t *testing.T) {
	s := New(models.ModeNormal, 5, nil)
	s.AddMessage(userMsg(0))
	ctx := s.Context()
	ctx[0].Content = "mutated"
	if s.Context()[0].Content != "message 0" {
		t.Fatalf("Context must return a copy")
	}
}

func TestInvalidSettingsAreNoOps(t *testing.T) {
	s := New(models.ModeNormal, 5, nil)
	s.UpdateStyle("detailed")
	s.UpdatePersona("cynical")

	s.UpdateStyle("nope")
	s.UpdatePersona("")
	s.UpdateStyle("DETAILED")

	if got := s.Style(); got != "detailed" {
		t.Fatalf("style changed by invalid key: %q", got)
	}
	if got := s.Persona(); got != "cynical" {
		t.Fatalf("persona changed by invalid key: %q", got)
	}
}

func TestClearPreservesSettings(t *testing.T) {
	s := New(models.ModePrivate, 5, nil)
	s.AddMessage(userMsg(0))
	s.UpdateStyle("concise")
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("expected empty window after clear")
	}
	if s.Style() != "concise" {
		t.Fatalf("clear must not touch settings")
	}
}

type fakeSettingsStore struct {
	mu       sync.Mutex
	settings Settings
	ok       bool
	err      error
	loads    int
}

func (f *fakeSettingsStore) Load(_ context.Context, _ models.Mode) (Settings, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.settings, f.ok, f.err
}

func (f *fakeSettingsStore) Save(_ context.Context, _ models.Mode, s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings = s
	f.ok = true
	return nil
}

func TestRestoreSettingsHappensOnce(t *testing.T) {
	store := &fakeSettingsStore{settings: Settings{Style: "detailed", Persona: "friendly"}, ok: true}
	s := New(models.ModeNormal, 5, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RestoreSettings(context.Background(), store)
		}()
	}
	wg.Wait()

	if store.loads != 1 {
		t.Fatalf("expected exactly one store load, got %d", store.loads)
	}
	if s.Style() != "detailed" || s.Persona() != "friendly" {
		t.Fatalf("restored settings not applied: %+v", s.Settings())
	}
	if !s.SettingsRestored() {
		t.Fatalf("expected settings_restored flag set")
	}
}

func TestRestoreDropsInvalidPersistedValues(t *testing.T) {
	store := &fakeSettingsStore{settings: Settings{Style: "bogus", Persona: "friendly"}, ok: true}
	s := New(models.ModeNormal, 5, nil)
	s.RestoreSettings(context.Background(), store)
	if s.Style() != "normal" {
		t.Fatalf("invalid persisted style must be dropped, got %q", s.Style())
	}
	if s.Persona() != "friendly" {
		t.Fatalf("valid persisted persona must be applied, got %q", s.Persona())
	}
}

func TestRestoreSurvivesStoreFailure(t *testing.T) {
	store := &fakeSettingsStore{err: errors.New("disk on fire")}
	s := New(models.ModeNormal, 5, nil)
	s.RestoreSettings(context.Background(), store)
	if !s.SettingsRestored() {
		t.Fatalf("restore failure must still mark the session restored")
	}
	if s.Style() != "normal" || s.Persona() != "professional" {
		t.Fatalf("defaults must survive a failed restore: %+v", s.Settings())
	}
}

func TestRestoreDoesNotStompLaterUpdates(t *testing.T) {
	store := &fakeSettingsStore{settings: Settings{Style: "concise", Persona: "professional"}, ok: true}
	s := New(models.ModeNormal, 5, nil)
	s.RestoreSettings(context.Background(), store)
	s.UpdateStyle("detailed")
	// a second restore must be a no-op
	s.RestoreSettings(context.Background(), store)
	if s.Style() != "detailed" {
		t.Fatalf("second restore stomped an in-flight update: %q", s.Style())
	}
}

func TestReplaceContextBounds(t *testing.T) {
	s := New(models.ModeNormal, 3, nil)
	var history []models.Message
	for i := 0; i < 10; i++ {
		history = append(history, userMsg(i))
	}
	s.ReplaceContext(history)
	ctx := s.Context()
	if len(ctx) != 3 {
		t.Fatalf("expected bounded window, got %d", len(ctx))
	}
	if ctx[0].Content != "message 7" {
		t.Fatalf("expected most recent messages, got %q first", ctx[0].Content)
	}
}

func TestConcurrentAddsKeepInvariant(t *testing.T) {
	const size = 10
	s := New(models.ModeNormal, size, nil)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.AddMessage(models.Message{Role: models.RoleUser, Content: fmt.Sprintf("g%d-%d", g, i)})
			}
		}(g)
	}
	wg.Wait()
	if got := s.Len(); got != size {
		t.Fatalf("expected window at bound after concurrent adds, got %d", got)
	}
}
