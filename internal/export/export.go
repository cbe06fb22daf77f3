// Package export renders the durable transcript to downloadable files.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"

	"biseogo/internal/models"
)

// Format selects the output rendering.
type Format string

const (
	FormatTxt Format = "txt"
	FormatPDF Format = "pdf"
)

// ErrEmptyTranscript rejects exporting a conversation with no messages.
var ErrEmptyTranscript = errors.New("no conversation to export")

// ErrUnsupportedFormat rejects formats other than txt and pdf.
var ErrUnsupportedFormat = errors.New("unsupported export format")

const koreanFontName = "NanumGothic"

// Renderer writes transcript exports into a directory.
type Renderer struct {
	dir      string
	fontPath string
	log      *logrus.Logger
	now      func() time.Time
}

// NewRenderer creates a Renderer. fontPath points at a UTF-8 TTF used for
// PDF output; when it is missing the renderer falls back to a core font and
// Korean text degrades, which beats failing the export outright.
func NewRenderer(dir, fontPath string, log *logrus.Logger) (*Renderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create exports dir: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Renderer{dir: dir, fontPath: fontPath, log: log, now: time.Now}, nil
}

// Render writes the transcript in the requested format and returns the
// written file path.
func (r *Renderer) Render(history []models.Message, format Format) (string, error) {
	if len(history) == 0 {
		return "", ErrEmptyTranscript
	}
	timestamp := r.now().Format("20060102_150405")
	switch format {
	case FormatTxt:
		return r.renderTxt(history, timestamp)
	case FormatPDF:
		return r.renderPDF(history, timestamp)
	default:
		return "", ErrUnsupportedFormat
	}
}

func roleLabel(role models.Role) string {
	if role == models.RoleUser {
		return "사용자"
	}
	return "AI 비서"
}

func (r *Renderer) renderTxt(history []models.Message, timestamp string) (string, error) {
	var b strings.Builder
	b.WriteString("=== AI 개인비서 대화 내용 ===\n")
	b.WriteString(fmt.Sprintf("내보내기 시간: %s\n\n", r.now().Format("2006-01-02 15:04:05")))
	for _, msg := range history {
		b.WriteString(fmt.Sprintf("[%s]\n%s\n\n", roleLabel(msg.Role), msg.Content))
	}
	path := filepath.Join(r.dir, fmt.Sprintf("conversation_%s.txt", timestamp))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write txt export: %w", err)
	}
	return path, nil
}

func (r *Renderer) renderPDF(history []models.Message, timestamp string) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")

	font := koreanFontName
	if _, err := os.Stat(r.fontPath); err == nil {
		pdf.AddUTF8Font(koreanFontName, "", r.fontPath)
	} else {
		r.log.WithField("font", r.fontPath).Warn("korean font missing, falling back to core font")
		font = "Helvetica"
	}

	pdf.SetFont(font, "", 16)
	pdf.AddPage()
	pdf.CellFormat(0, 10, "=== AI 개인비서 대화 내용 ===", "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("내보내기 시간: %s", r.now().Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	for _, msg := range history {
		pdf.SetFont(font, "", 12)
		pdf.CellFormat(0, 7, fmt.Sprintf("[%s]", roleLabel(msg.Role)), "", 1, "L", false, 0, "")
		pdf.MultiCell(0, 6, msg.Content, "", "L", false)
		pdf.Ln(5)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("conversation_%s.pdf", timestamp))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf export: %w", err)
	}
	return path, nil
}
