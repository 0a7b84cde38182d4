package sms

import (
	"context"
	"errors"
	"unicode/utf8"
)

// MaxBodyLen es el limite practico de un mensaje saliente; cuerpos mas
// largos se truncan antes de enviar.
const MaxBodyLen = 1500

// Messenger define la interfaz de envio de mensajes salientes.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
}

type disabledMessenger struct {
	reason string
}

// NewDisabledMessenger devuelve un Messenger que siempre falla; se usa cuando
// el proveedor no esta configurado.
func NewDisabledMessenger(reason string) Messenger {
	return &disabledMessenger{reason: reason}
}

func (m *disabledMessenger) Send(_ context.Context, _, _ string) error {
	if m.reason == "" {
		return errors.New("sms messenger disabled")
	}
	return errors.New(m.reason)
}

// Truncate corta el cuerpo al limite de transporte agregando puntos
// suspensivos cuando hubo recorte. El corte retrocede hasta un borde de
// runa para no emitir UTF-8 invalido.
func Truncate(body string) string {
	if len(body) <= MaxBodyLen {
		return body
	}
	cut := MaxBodyLen - 3
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + "..."
}
