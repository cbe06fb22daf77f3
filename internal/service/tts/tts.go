// Package tts synthesizes speech for assistant replies through the Naver
// Clova Voice REST API.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"biseogo/internal/config"
)

const defaultEndpoint = "https://naveropenapi.apigw.ntruss.com/tts-premium/v1/tts"

// Result describes one synthesized audio file.
type Result struct {
	URLPath    string // public path served to the browser
	StoredPath string // location on disk
	Size       int64
}

// Service converts reply text to mp3 files under the audio directory.
// Callers treat every failure as "no audio"; nothing here is fatal.
type Service struct {
	client       *http.Client
	endpoint     string
	clientID     string
	clientSecret string
	speaker      string
	maxLength    int
	audioDir     string
	log          *logrus.Logger
}

// NewService builds the TTS client from config. endpoint overrides the
// Clova URL (used by tests).
func NewService(cfg *config.TTSConfig, audioDir, endpoint string, log *logrus.Logger) (*Service, error) {
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	speaker := cfg.Speaker
	if speaker == "" {
		speaker = "nara"
	}
	maxLength := cfg.MaxLength
	if maxLength <= 0 {
		maxLength = 3000
	}
	if log == nil {
		log = logrus.New()
	}
	return &Service{
		client:       &http.Client{Timeout: 30 * time.Second},
		endpoint:     endpoint,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		speaker:      speaker,
		maxLength:    maxLength,
		audioDir:     audioDir,
		log:          log,
	}, nil
}

// Synthesize renders text to an mp3 file and returns its locations.
func (s *Service) Synthesize(ctx context.Context, text string) (*Result, error) {
	text = prepareText(text, s.maxLength)
	if text == "" {
		return nil, errors.New("nothing to synthesize")
	}
	if s.clientID == "" || s.clientSecret == "" {
		return nil, errors.New("tts credentials not configured")
	}

	form := url.Values{}
	form.Set("speaker", s.speaker)
	form.Set("text", text)
	form.Set("format", "mp3")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", s.clientID)
	req.Header.Set("X-NCP-APIGW-API-KEY", s.clientSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	filename := fmt.Sprintf("response_%s.mp3", uuid.NewString())
	storedPath := filepath.Join(s.audioDir, filename)
	out, err := os.Create(storedPath)
	if err != nil {
		return nil, fmt.Errorf("create audio file: %w", err)
	}
	size, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("write audio file: %w", err)
	}
	if closeErr != nil {
		os.Remove(storedPath)
		return nil, fmt.Errorf("close audio file: %w", closeErr)
	}

	return &Result{
		URLPath:    "/static/audio/" + filename,
		StoredPath: storedPath,
		Size:       size,
	}, nil
}

// prepareText normalizes the reply into one run of sentences and truncates
// it to the provider's length cap.
func prepareText(text string, maxLength int) string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		switch r {
		case '.', '!', '?':
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	full := strings.Join(sentences, " ")
	if len(full) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(full[cut]) {
			cut--
		}
		full = full[:cut]
	}
	return full
}
