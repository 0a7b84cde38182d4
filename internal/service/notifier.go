package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/email"
)

// RecruiterNotifier manda avisos best-effort al equipo humano; nunca bloquea
// ni hace fallar la transicion que lo dispara.
type RecruiterNotifier struct {
	logger *zap.Logger
	sender email.Sender
	to     string
}

func NewRecruiterNotifier(logger *zap.Logger, sender email.Sender, to string) *RecruiterNotifier {
	return &RecruiterNotifier{logger: logger, sender: sender, to: to}
}

// NewCandidate avisa de un alta nueva desde el sitio.
func (n *RecruiterNotifier) NewCandidate(c domain.Candidate) {
	subject := "New candidate: " + c.FullName()
	body := fmt.Sprintf(
		"Name: %s\nEmail: %s\nPhone: %s\nDiscipline: %s\nLocation: %s, %s\nSource: %s\n",
		c.FullName(), c.Email, c.Phone, c.LicenseType, c.HomeCity, c.HomeState, c.Source,
	)
	n.dispatch(subject, body)
}

// VettingCompleted avisa que un candidato termino el cuestionario.
func (n *RecruiterNotifier) VettingCompleted(c domain.Candidate) {
	subject := "Vetting completed: " + c.FullName()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate %s (%s) finished vetting.\n\n", c.FullName(), c.Phone)
	fmt.Fprintf(&sb, "License states: %s\n", c.LicenseStates)
	if c.YearsExperience != nil {
		fmt.Fprintf(&sb, "Years of experience: %d\n", *c.YearsExperience)
	}
	fmt.Fprintf(&sb, "Available: %s\n", c.AvailableDate)
	if c.MinWeeklyPay != nil {
		fmt.Fprintf(&sb, "Minimum weekly pay: $%d\n", *c.MinWeeklyPay)
	}
	if c.OpenToTravel != nil {
		fmt.Fprintf(&sb, "Open to travel: %t\n", *c.OpenToTravel)
	}
	n.dispatch(subject, sb.String())
}

func (n *RecruiterNotifier) dispatch(subject, body string) {
	if n == nil || n.sender == nil || strings.TrimSpace(n.to) == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.sender.SendRecruiterAlert(ctx, n.to, subject, body); err != nil && n.logger != nil {
			n.logger.Warn("recruiter alert failed", zap.String("subject", subject), zap.Error(err))
		}
	}()
}
