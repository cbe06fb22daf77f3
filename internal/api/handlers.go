package api

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"biseogo/internal/models"
	"biseogo/internal/registry"
	"biseogo/internal/service/assistant"
	"biseogo/internal/store"
)

const privateModeHeader = "X-Private-Mode"

// Handler wires HTTP routes to the assistant service.
type Handler struct {
	assistant *assistant.Service
	audioDir  string
	log       *logrus.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(service *assistant.Service, audioDir string, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{assistant: service, audioDir: audioDir, log: log}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	if h.audioDir != "" {
		router.Static("/static/audio", h.audioDir)
	}
	api := router.Group("/api")
	api.POST("/ask", h.ask)
	api.POST("/clear-context", h.clearContext)
	api.GET("/settings", h.getSettings)
	api.POST("/style", h.updateStyle)
	api.POST("/persona", h.updatePersona)
	api.POST("/export", h.exportConversation)
	api.POST("/search", h.searchConversation)
	api.POST("/sessions", h.saveSession)
	api.GET("/sessions", h.listSessions)
	api.POST("/sessions/:filename/load", h.loadSession)
	api.DELETE("/sessions/:filename", h.deleteSession)
}

func requestMode(c *gin.Context) models.Mode {
	return models.ParseMode(c.GetHeader(privateModeHeader))
}

// fail converts core errors into the uniform {status, message} error shape.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "서버 처리 중 오류가 발생했습니다."
	switch {
	case assistant.IsValidation(err):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, store.ErrSnapshotNotFound):
		status = http.StatusNotFound
		message = "해당 세션을 찾을 수 없습니다."
	case assistant.IsProvider(err):
		status = http.StatusBadGateway
		message = "AI 서비스 연결에 문제가 발생했습니다."
	default:
		h.log.WithError(err).Error("unhandled request error")
	}
	c.JSON(status, gin.H{"status": "error", "message": message})
}

type askRequest struct {
	Question string `json:"question"`
	Style    string `json:"style"`
	Persona  string `json:"persona"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &assistant.ValidationError{Message: "요청 데이터가 없습니다."})
		return
	}
	result, err := h.assistant.Ask(c.Request.Context(), requestMode(c), req.Question, req.Style, req.Persona)
	if err != nil {
		h.fail(c, err)
		return
	}
	resp := gin.H{
		"status":   "success",
		"response": result.Response,
	}
	if result.AudioURL != "" {
		resp["audio_url"] = result.AudioURL
	} else {
		resp["audio_url"] = nil
	}
	if result.Notification != nil {
		resp["notification"] = result.Notification
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) clearContext(c *gin.Context) {
	h.assistant.ClearContext(c.Request.Context(), requestMode(c))
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "대화 내용이 초기화되었습니다."})
}

func (h *Handler) getSettings(c *gin.Context) {
	settings := h.assistant.Settings(c.Request.Context(), requestMode(c))
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"style":    settings.Style,
		"persona":  settings.Persona,
		"styles":   registry.ListStyles(),
		"personas": registry.ListPersonas(),
	})
}

func (h *Handler) updateStyle(c *gin.Context) {
	var req struct {
		Style string `json:"style"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &assistant.ValidationError{Message: "요청 데이터가 없습니다."})
		return
	}
	confirmation, err := h.assistant.UpdateStyle(c.Request.Context(), requestMode(c), req.Style)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": confirmation})
}

func (h *Handler) updatePersona(c *gin.Context) {
	var req struct {
		Persona string `json:"persona"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &assistant.ValidationError{Message: "요청 데이터가 없습니다."})
		return
	}
	confirmation, err := h.assistant.UpdatePersona(c.Request.Context(), requestMode(c), req.Persona)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": confirmation})
}

func (h *Handler) exportConversation(c *gin.Context) {
	var req struct {
		Format string `json:"format"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &assistant.ValidationError{Message: "요청 데이터가 없습니다."})
		return
	}
	path, err := h.assistant.Export(req.Format)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "filename": filepath.Base(path)})
}

func (h *Handler) searchConversation(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &assistant.ValidationError{Message: "요청 데이터가 없습니다."})
		return
	}
	results, err := h.assistant.Search(req.Query)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results})
}

func (h *Handler) saveSession(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, &assistant.ValidationError{Message: "요청 데이터가 없습니다."})
		return
	}
	filename, err := h.assistant.SaveSession(requestMode(c), req.Name)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "filename": filename})
}

func (h *Handler) listSessions(c *gin.Context) {
	sessions, err := h.assistant.ListSessions()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "sessions": sessions})
}

func (h *Handler) loadSession(c *gin.Context) {
	messages, err := h.assistant.LoadSession(requestMode(c), c.Param("filename"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "messages": messages})
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.assistant.DeleteSession(c.Param("filename")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "세션이 삭제되었습니다."})
}
