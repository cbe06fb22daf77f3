// Package session implements the per-mode chat state machine: a bounded,
// mutex-guarded message window plus the style/persona settings pair.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"biseogo/internal/models"
	"biseogo/internal/registry"
)

// DefaultContextSize bounds the rolling window sent to the completion
// provider.
const DefaultContextSize = 20

// Settings is the durable style/persona pair.
type Settings struct {
	Style   string `json:"style"`
	Persona string `json:"persona"`
}

// SettingsStore persists one Settings record per mode. ok reports whether a
// record existed.
type SettingsStore interface {
	Load(ctx context.Context, mode models.Mode) (settings Settings, ok bool, err error)
	Save(ctx context.Context, mode models.Mode, settings Settings) error
}

// ChatSession holds one mode's conversational context. Exactly one instance
// exists per mode for the process lifetime and every request in that mode
// shares it, so all mutation goes through the mutex.
type ChatSession struct {
	mu          sync.Mutex
	mode        models.Mode
	messages    []models.Message
	contextSize int
	style       string
	persona     string
	restored    bool
	log         *logrus.Logger
}

// New constructs a session for the given mode. contextSize <= 0 falls back
// to DefaultContextSize.
func New(mode models.Mode, contextSize int, log *logrus.Logger) *ChatSession {
	if contextSize <= 0 {
		contextSize = DefaultContextSize
	}
	if log == nil {
		log = logrus.New()
	}
	return &ChatSession{
		mode:        mode,
		contextSize: contextSize,
		style:       registry.DefaultStyle,
		persona:     registry.DefaultPersona,
		log:         log,
	}
}

func (s *ChatSession) Mode() models.Mode { return s.mode }

// AddMessage appends to the window, evicting from the front once the window
// exceeds its bound.
func (s *ChatSession) AddMessage(msg models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(msg)
}

// AddExchange appends a user/assistant pair as one critical section so a
// concurrent request cannot interleave between the two halves of an
// exchange.
func (s *ChatSession) AddExchange(user, assistant models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(user)
	s.appendLocked(assistant)
}

func (s *ChatSession) appendLocked(msg models.Message) {
	s.messages = append(s.messages, msg)
	for len(s.messages) > s.contextSize {
		dropped := s.messages[0]
		s.messages = s.messages[1:]
		s.log.WithFields(logrus.Fields{
			"mode": s.mode,
			"role": dropped.Role,
		}).Debug("evicted oldest message from context window")
	}
}

// Context returns a copy of the current window, oldest first.
func (s *ChatSession) Context() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// ReplaceContext swaps the window for the given messages, keeping only the
// most recent contextSize entries. Used when a saved session is loaded.
func (s *ChatSession) ReplaceContext(messages []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(messages) > s.contextSize {
		messages = messages[len(messages)-s.contextSize:]
	}
	s.messages = make([]models.Message, len(messages))
	copy(s.messages, messages)
}

// Clear empties the window without touching settings.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.log.WithField("mode", s.mode).Info("chat context cleared")
}

func (s *ChatSession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// UpdateStyle sets the style iff the key is valid; invalid keys are logged
// and ignored so a bad value can never corrupt state mid-chat.
func (s *ChatSession) UpdateStyle(key string) {
	if !registry.IsValidStyle(key) {
		s.log.WithFields(logrus.Fields{"mode": s.mode, "style": key}).Warn("ignoring invalid style")
		return
	}
	s.mu.Lock()
	s.style = key
	s.mu.Unlock()
}

// UpdatePersona is symmetric to UpdateStyle.
func (s *ChatSession) UpdatePersona(key string) {
	if !registry.IsValidPersona(key) {
		s.log.WithFields(logrus.Fields{"mode": s.mode, "persona": key}).Warn("ignoring invalid persona")
		return
	}
	s.mu.Lock()
	s.persona = key
	s.mu.Unlock()
}

func (s *ChatSession) Style() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

func (s *ChatSession) Persona() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// Settings returns the current pair as one consistent read.
func (s *ChatSession) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Settings{Style: s.style, Persona: s.persona}
}

// RestoreSettings loads the persisted pair for this mode exactly once per
// process lifetime. Later calls are no-ops, so a restore can never stomp a
// same-request update with stale data. Persisted values go through the same
// validation as live updates; invalid ones are dropped. Store failures mark
// the session restored anyway: durability is best-effort and defaults are
// fine.
func (s *ChatSession) RestoreSettings(ctx context.Context, store SettingsStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return
	}
	s.restored = true

	if store == nil {
		return
	}
	settings, ok, err := store.Load(ctx, s.mode)
	if err != nil {
		s.log.WithError(err).WithField("mode", s.mode).Warn("restore settings failed, keeping defaults")
		return
	}
	if !ok {
		return
	}
	if registry.IsValidStyle(settings.Style) {
		s.style = settings.Style
	} else if settings.Style != "" {
		s.log.WithFields(logrus.Fields{"mode": s.mode, "style": settings.Style}).Warn("dropping invalid persisted style")
	}
	if registry.IsValidPersona(settings.Persona) {
		s.persona = settings.Persona
	} else if settings.Persona != "" {
		s.log.WithFields(logrus.Fields{"mode": s.mode, "persona": settings.Persona}).Warn("dropping invalid persisted persona")
	}
	s.log.WithFields(logrus.Fields{
		"mode":    s.mode,
		"style":   s.style,
		"persona": s.persona,
	}).Info("settings restored")
}

// SettingsRestored reports whether the one-shot restore already ran.
func (s *ChatSession) SettingsRestored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}
