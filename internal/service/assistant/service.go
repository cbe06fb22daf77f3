// Package assistant orchestrates chat requests: it owns the two
// process-wide chat sessions, composes prompts from the registry, calls the
// completion and speech providers, and keeps the durable transcript in step
// with the normal-mode window.
package assistant

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"biseogo/internal/export"
	"biseogo/internal/middleware"
	"biseogo/internal/models"
	"biseogo/internal/notify"
	"biseogo/internal/registry"
	"biseogo/internal/service/tts"
	"biseogo/internal/session"
	"biseogo/internal/store"
)

// Completer is the external completion provider contract.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message) (string, error)
}

// Synthesizer is the external speech provider contract. Failures degrade to
// "no audio" and never fail a chat request.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (*tts.Result, error)
}

const defaultRequestTimeout = time.Minute

// Service wires the chat state machines to their collaborators.
type Service struct {
	sessions      map[models.Mode]*session.ChatSession
	settingsStore session.SettingsStore
	conversations *store.ConversationStore
	snapshots     *store.SnapshotStore
	renderer      *export.Renderer
	completer     Completer
	tts           Synthesizer
	db            *sql.DB
	timeout       time.Duration
	audioTTL      time.Duration
	log           *logrus.Logger
}

// Options carries the optional collaborators of NewService.
type Options struct {
	SettingsStore  session.SettingsStore
	Synthesizer    Synthesizer
	DB             *sql.DB // audio index; nil disables it
	RequestTimeout time.Duration
	AudioTTL       time.Duration
	ContextSize    int
}

// NewService builds the orchestrator with one permanently-resident session
// per mode.
func NewService(
	completer Completer,
	conversations *store.ConversationStore,
	snapshots *store.SnapshotStore,
	renderer *export.Renderer,
	log *logrus.Logger,
	opts Options,
) *Service {
	if log == nil {
		log = logrus.New()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	audioTTL := opts.AudioTTL
	if audioTTL <= 0 {
		audioTTL = DefaultAudioTTL
	}
	return &Service{
		sessions: map[models.Mode]*session.ChatSession{
			models.ModeNormal:  session.New(models.ModeNormal, opts.ContextSize, log),
			models.ModePrivate: session.New(models.ModePrivate, opts.ContextSize, log),
		},
		settingsStore: opts.SettingsStore,
		conversations: conversations,
		snapshots:     snapshots,
		renderer:      renderer,
		completer:     completer,
		tts:           opts.Synthesizer,
		db:            opts.DB,
		timeout:       timeout,
		audioTTL:      audioTTL,
		log:           log,
	}
}

// Session exposes the mode's state machine, mostly for tests.
func (s *Service) Session(mode models.Mode) *session.ChatSession {
	return s.sessions[mode]
}

// settingsStoreFor returns the store used for settings restore/persist.
// Private-mode settings stay in memory for the process lifetime, so the
// private session restores against nothing.
func (s *Service) settingsStoreFor(mode models.Mode) session.SettingsStore {
	if mode.IsPrivate() {
		return nil
	}
	return s.settingsStore
}

// AskResult is the outcome of one successful chat exchange.
type AskResult struct {
	Response     string
	AudioURL     string
	Notification *models.Notification
}

// Ask runs one chat exchange for the mode. On provider failure nothing is
// mutated: the user message is only recorded once a reply exists, so the
// window always holds complete exchanges. Provider calls happen outside the
// session lock.
func (s *Service) Ask(ctx context.Context, mode models.Mode, question, styleOverride, personaOverride string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, validationError("메시지가 비어있습니다.")
	}

	sess := s.sessions[mode]
	sess.RestoreSettings(ctx, s.settingsStoreFor(mode))
	if styleOverride != "" {
		sess.UpdateStyle(styleOverride)
	}
	if personaOverride != "" {
		sess.UpdatePersona(personaOverride)
	}

	var notification *models.Notification
	if seconds, ok := notify.ParseNotificationTime(question); ok {
		notification = &models.Notification{DelaySeconds: seconds, Message: question}
	}

	settings := sess.Settings()
	prompt := make([]models.Message, 0, sess.Len()+2)
	prompt = append(prompt, models.Message{
		Role:    models.RoleSystem,
		Content: registry.PersonaInstruction(settings.Persona) + "\n\n" + registry.StyleInstruction(settings.Style),
	})
	prompt = append(prompt, sess.Context()...)
	prompt = append(prompt, models.Message{Role: models.RoleUser, Content: question})

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()
	reply, err := s.completer.Complete(callCtx, prompt)
	if err != nil {
		middleware.ObserveCompletion("error", time.Since(start).Seconds())
		s.log.WithError(err).WithField("mode", mode).Error("completion failed")
		return nil, &ProviderError{Err: err}
	}
	middleware.ObserveCompletion("success", time.Since(start).Seconds())

	audioURL := s.synthesize(ctx, reply)

	userMsg := models.Message{Role: models.RoleUser, Content: question}
	aiMsg := models.Message{Role: models.RoleAssistant, Content: reply, AudioURL: audioURL}
	sess.AddExchange(userMsg, aiMsg)

	if !mode.IsPrivate() {
		if _, err := s.conversations.Append(userMsg, aiMsg); err != nil {
			s.log.WithError(err).Warn("persist conversation failed")
		}
	}

	s.log.WithFields(logrus.Fields{
		"mode":    mode,
		"style":   settings.Style,
		"persona": settings.Persona,
		"audio":   audioURL != "",
	}).Info("chat exchange completed")

	return &AskResult{Response: reply, AudioURL: audioURL, Notification: notification}, nil
}

// synthesize wraps the speech provider so any failure maps to an absent
// audio URL.
func (s *Service) synthesize(ctx context.Context, text string) string {
	if s.tts == nil {
		return ""
	}
	result, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		middleware.RecordTTSFailure()
		s.log.WithError(err).Warn("speech synthesis failed, continuing without audio")
		return ""
	}
	s.recordAudioFile(ctx, result)
	return result.URLPath
}

// ClearContext empties the mode's window; normal mode also resets the
// durable transcript.
func (s *Service) ClearContext(ctx context.Context, mode models.Mode) {
	s.sessions[mode].Clear()
	if !mode.IsPrivate() {
		if err := s.conversations.Save(nil); err != nil {
			s.log.WithError(err).Warn("clear durable transcript failed")
		}
	}
}

// UpdateStyle validates and applies a style change, persisting normal-mode
// settings, and returns the registry's confirmation message.
func (s *Service) UpdateStyle(ctx context.Context, mode models.Mode, key string) (string, error) {
	key = strings.TrimSpace(key)
	if !registry.IsValidStyle(key) {
		return "", validationError("유효하지 않은 응답 스타일입니다.")
	}
	sess := s.sessions[mode]
	sess.RestoreSettings(ctx, s.settingsStoreFor(mode))
	sess.UpdateStyle(key)
	s.persistSettings(ctx, mode, sess.Settings())
	return registry.StyleConfirmation(key), nil
}

// UpdatePersona is symmetric to UpdateStyle.
func (s *Service) UpdatePersona(ctx context.Context, mode models.Mode, key string) (string, error) {
	key = strings.TrimSpace(key)
	if !registry.IsValidPersona(key) {
		return "", validationError("유효하지 않은 페르소나입니다.")
	}
	sess := s.sessions[mode]
	sess.RestoreSettings(ctx, s.settingsStoreFor(mode))
	sess.UpdatePersona(key)
	s.persistSettings(ctx, mode, sess.Settings())
	return registry.PersonaConfirmation(key), nil
}

func (s *Service) persistSettings(ctx context.Context, mode models.Mode, settings session.Settings) {
	store := s.settingsStoreFor(mode)
	if store == nil {
		return
	}
	if err := store.Save(ctx, mode, settings); err != nil {
		s.log.WithError(err).WithField("mode", mode).Warn("persist settings failed")
	}
}

// Settings returns the mode's current style/persona pair, restoring
// persisted values first when this is the mode's first touch.
func (s *Service) Settings(ctx context.Context, mode models.Mode) session.Settings {
	sess := s.sessions[mode]
	sess.RestoreSettings(ctx, s.settingsStoreFor(mode))
	return sess.Settings()
}
