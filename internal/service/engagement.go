package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/llm"
	"thrivingcare-api/internal/repository"
)

const (
	assistTimeout  = 5 * time.Second
	maxContextJobs = 5
)

// EngagementService produce respuestas asistidas a mensajes libres usando el
// perfil del candidato y posiciones afines como contexto. Si el generador no
// esta disponible devuelve el fallback estatico: el transporte nunca ve el
// fallo.
type EngagementService struct {
	logger    *zap.Logger
	llmClient llm.Client
	jobs      repository.JobRepository
}

func NewEngagementService(logger *zap.Logger, llmClient llm.Client, jobs repository.JobRepository) *EngagementService {
	return &EngagementService{logger: logger, llmClient: llmClient, jobs: jobs}
}

// Reply genera la respuesta asistida con timeout acotado y fallback.
func (s *EngagementService) Reply(ctx context.Context, c domain.Candidate, freeText string) string {
	if s == nil || s.llmClient == nil {
		return fallbackText
	}

	ctx, cancel := context.WithTimeout(ctx, assistTimeout)
	defer cancel()

	var jobs []domain.Job
	if s.jobs != nil {
		found, err := s.jobs.FindForCandidate(ctx, c, maxContextJobs)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("job context lookup failed", zap.Error(err))
			}
		} else {
			jobs = found
		}
	}

	prompt := buildEngagementPrompt(c, jobs, freeText)

	out, err := s.llmClient.Generate(ctx, prompt)
	if err != nil || strings.TrimSpace(out) == "" {
		if s.logger != nil {
			s.logger.Warn("assisted reply unavailable", zap.String("candidate_id", c.ID), zap.Error(err))
		}
		return fallbackText
	}
	return strings.TrimSpace(out)
}

func buildEngagementPrompt(c domain.Candidate, jobs []domain.Job, freeText string) string {
	var sb strings.Builder

	sb.WriteString("You are a friendly staffing assistant for ThrivingCare, a healthcare staffing agency. ")
	sb.WriteString("Answer the candidate's message over SMS: warm, concise, no markdown, under 3 short sentences.\n\n")

	sb.WriteString("=== CANDIDATE ===\n")
	fmt.Fprintf(&sb, "Name: %s\n", c.FullName())
	if c.LicenseType != "" {
		fmt.Fprintf(&sb, "Discipline: %s\n", c.LicenseType)
	}
	if len(c.Specialties) > 0 {
		fmt.Fprintf(&sb, "Specialties: %s\n", strings.Join(c.Specialties, ", "))
	}
	if c.LicenseStates != "" {
		fmt.Fprintf(&sb, "Licensed states: %s\n", c.LicenseStates)
	}
	if c.MinWeeklyPay != nil {
		fmt.Fprintf(&sb, "Minimum weekly pay: $%d\n", *c.MinWeeklyPay)
	}

	if len(jobs) > 0 {
		sb.WriteString("\n=== OPEN POSITIONS (use only if relevant) ===\n")
		for _, j := range jobs {
			pkg := CalculatePayPackage(j)
			fmt.Fprintf(&sb, "- %s | %s, %s | $%d/week gross ($%d/week tax-free stipends)\n",
				j.Title, j.City, j.State, j.WeeklyGross, pkg.LodgingStipend+pkg.MealsStipend)
		}
	}

	sb.WriteString("\n=== CANDIDATE MESSAGE ===\n")
	fmt.Fprintf(&sb, "%q\n\n", freeText)
	sb.WriteString("Reply as the assistant. If you don't know something, say a recruiter will follow up. Never invent pay numbers beyond the positions listed.")

	return sb.String()
}
