package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thrivingcare-api/internal/repository"
	"thrivingcare-api/internal/service"
)

// ChatHandler es el gemelo sincronico del webhook SMS: misma maquina de
// estados, entrega por cuerpo de respuesta.
type ChatHandler struct {
	logger  *zap.Logger
	vetting *service.VettingService
}

func NewChatHandler(logger *zap.Logger, vetting *service.VettingService) *ChatHandler {
	return &ChatHandler{logger: logger, vetting: vetting}
}

// PostMessage maneja POST /api/chat. Un mensaje vacio devuelve el prompt
// pendiente sin mutar estado.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		CandidateID string `json:"candidate_id" binding:"required"`
		Message     string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.vetting.HandleChat(c.Request.Context(), req.CandidateID, req.Message)
	if errors.Is(err, repository.ErrCandidateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
		return
	}
	if err != nil {
		h.logger.Error("chat processing failed", zap.String("candidate_id", req.CandidateID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not process message"})
		return
	}

	c.JSON(http.StatusOK, result)
}
