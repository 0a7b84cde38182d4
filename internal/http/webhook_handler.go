package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thrivingcare-api/internal/service"
	"thrivingcare-api/internal/sms"
)

// WebhookHandler recibe los POST del proveedor de SMS.
type WebhookHandler struct {
	logger    *zap.Logger
	vetting   *service.VettingService
	messenger sms.Messenger
}

func NewWebhookHandler(logger *zap.Logger, vetting *service.VettingService, messenger sms.Messenger) *WebhookHandler {
	return &WebhookHandler{logger: logger, vetting: vetting, messenger: messenger}
}

// IncomingSMS maneja POST /webhooks/sms. Responde 200 con cuerpo vacio en
// todos los caminos: un error nuestro no debe provocar reintentos del
// proveedor.
func (h *WebhookHandler) IncomingSMS(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")
	messageSID := c.PostForm("MessageSid")

	if from == "" {
		c.String(http.StatusOK, "")
		return
	}

	reply, err := h.vetting.HandleInbound(c.Request.Context(), from, body, messageSID)
	switch {
	case errors.Is(err, service.ErrUnknownSender):
		// Telefono desconocido: recibo confirmado, silencio.
		h.logger.Info("sms from unknown sender", zap.String("from", from))
	case err != nil:
		h.logger.Error("inbound sms processing failed", zap.String("from", from), zap.Error(err))
	case reply != "":
		h.sendReply(from, reply)
	}

	c.String(http.StatusOK, "")
}

// sendReply despacha la respuesta fuera del request: el envio no puede
// demorar ni hacer fallar el acknowledgment.
func (h *WebhookHandler) sendReply(to, body string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.messenger.Send(ctx, to, body); err != nil {
			h.logger.Warn("sms reply failed", zap.String("to", to), zap.Error(err))
		}
	}()
}
