package sms

import "context"

// MockMessenger permite tests sin proveedor real; registra los envios.
type MockMessenger struct {
	Sent []SentMessage
	Err  error
}

type SentMessage struct {
	To   string
	Body string
}

func (m *MockMessenger) Send(_ context.Context, to, body string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMessage{To: to, Body: body})
	return nil
}
