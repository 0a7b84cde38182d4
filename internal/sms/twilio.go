package sms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TwilioMessenger implementa Messenger contra la API REST de Twilio.
type TwilioMessenger struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	client     *http.Client
	logger     *zap.Logger
}

// NewTwilioMessenger construye un cliente apuntando a la API de mensajes.
func NewTwilioMessenger(accountSID, authToken, from string, logger *zap.Logger) *TwilioMessenger {
	return &TwilioMessenger{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    "https://api.twilio.com",
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

func (m *TwilioMessenger) Send(ctx context.Context, to, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("sms to is required")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", m.from)
	form.Set("Body", Truncate(body))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", m.baseURL, m.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(m.accountSID, m.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		if m.logger != nil {
			m.logger.Warn("twilio send failed",
				zap.Int("status", resp.StatusCode),
				zap.String("body", string(respBody)),
			)
		}
		return fmt.Errorf("twilio http error: status=%d", resp.StatusCode)
	}
	return nil
}
