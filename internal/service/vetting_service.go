package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/repository"
)

var (
	// ErrUnknownSender indica un telefono sin candidato: se confirma el
	// recibo al transporte pero no se responde ni se muta nada.
	ErrUnknownSender = errors.New("unknown sender")
)

// ChatResult es la respuesta del transporte sincronico.
type ChatResult struct {
	Reply             string               `json:"reply_text"`
	ProfileCompletion int                  `json:"profile_completion_percentage"`
	VettingStatus     domain.VettingStatus `json:"vetting_status"`
}

// VettingService aplica la maquina de estados de vetting sobre mensajes
// entrantes. Los dos transportes (webhook SMS y chat web) pasan por aqui,
// asi que el avance de un candidato es agnostico del canal.
type VettingService struct {
	logger       *zap.Logger
	candidates   repository.CandidateRepository
	applications repository.ApplicationRepository
	vettingLog   repository.VettingLogRepository
	engine       *VettingEngine
	engagement   *EngagementService
	notifier     *RecruiterNotifier
	deduper      MessageDeduper
	locks        *CandidateLocks
}

func NewVettingService(
	logger *zap.Logger,
	candidates repository.CandidateRepository,
	applications repository.ApplicationRepository,
	vettingLog repository.VettingLogRepository,
	engine *VettingEngine,
	engagement *EngagementService,
	notifier *RecruiterNotifier,
	deduper MessageDeduper,
) *VettingService {
	return &VettingService{
		logger:       logger,
		candidates:   candidates,
		applications: applications,
		vettingLog:   vettingLog,
		engine:       engine,
		engagement:   engagement,
		notifier:     notifier,
		deduper:      deduper,
		locks:        NewCandidateLocks(),
	}
}

// HandleInbound procesa un mensaje del webhook SMS y devuelve la respuesta a
// enviar (vacia = silencio).
func (s *VettingService) HandleInbound(ctx context.Context, phone, body, messageID string) (string, error) {
	if s.deduper != nil && !s.deduper.FirstSeen(ctx, messageID) {
		s.logger.Info("duplicate inbound message ignored", zap.String("message_id", messageID))
		return "", nil
	}

	cand, err := s.candidates.GetByPhone(ctx, strings.TrimSpace(phone))
	if errors.Is(err, repository.ErrCandidateNotFound) {
		return "", ErrUnknownSender
	}
	if err != nil {
		return "", fmt.Errorf("get candidate by phone: %w", err)
	}

	reply, _, err := s.process(ctx, cand.ID, body)
	return reply, err
}

// HandleChat procesa un mensaje del chat web. Un mensaje vacio devuelve el
// prompt pendiente sin mutar estado (reanudar conversacion).
func (s *VettingService) HandleChat(ctx context.Context, candidateID, message string) (ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		cand, err := s.candidates.GetByID(ctx, candidateID)
		if err != nil {
			return ChatResult{}, err
		}
		return ChatResult{
			Reply:             s.resumeReply(cand),
			ProfileCompletion: s.engine.CompletionPercent(cand),
			VettingStatus:     cand.VettingStatus,
		}, nil
	}

	reply, cand, err := s.process(ctx, candidateID, message)
	if err != nil {
		return ChatResult{}, err
	}
	return ChatResult{
		Reply:             reply,
		ProfileCompletion: s.engine.CompletionPercent(cand),
		VettingStatus:     cand.VettingStatus,
	}, nil
}

// resumeReply arma el saludo de reanudacion; repetirlo no muta nada, asi que
// el prompt es identico hasta que llegue una respuesta real.
func (s *VettingService) resumeReply(c domain.Candidate) string {
	if pending := s.engine.PendingPrompt(c); pending != "" {
		return fmt.Sprintf("Welcome back, %s! Let's pick up where we left off.\n\n%s", c.FirstName, pending)
	}
	if c.VettingStatus == domain.VettingCompleted {
		return fmt.Sprintf("Welcome back, %s! Your profile is complete. Ask me anything about open positions.", c.FirstName)
	}
	return fmt.Sprintf("Hi %s! Ask me anything about ThrivingCare positions.", c.FirstName)
}

// process decide y aplica la transicion bajo el lock del candidato; la
// generacion asistida (LLM, hasta su timeout) corre FUERA de la seccion
// critica, esos caminos no mutan estado y no deben frenar otros mensajes.
func (s *VettingService) process(ctx context.Context, candidateID, text string) (string, domain.Candidate, error) {
	reply, cand, pending, assist, err := s.applyLocked(ctx, candidateID, text)
	if err != nil || !assist {
		return reply, cand, err
	}

	out := s.engagement.Reply(ctx, cand, text)
	if pending != "" {
		out = out + "\n\n" + pending
	}
	return out, cand, nil
}

// applyLocked es la seccion critica por candidato: lee estado, decide y
// aplica mutaciones. assist=true delega la respuesta al generador asistido
// una vez liberado el lock, con pending como prompt a reanexar.
func (s *VettingService) applyLocked(ctx context.Context, candidateID, text string) (reply string, cand domain.Candidate, pending string, assist bool, err error) {
	unlock := s.locks.Lock(candidateID)
	defer unlock()

	cand, err = s.candidates.GetByID(ctx, candidateID)
	if err != nil {
		return "", domain.Candidate{}, "", false, fmt.Errorf("get candidate: %w", err)
	}

	tr := s.engine.Decide(cand, text)

	switch tr.Disposition {
	case DispositionOptOut:
		active := false
		if err := s.candidates.UpdateFields(ctx, cand.ID, repository.CandidateUpdate{Active: &active}); err != nil {
			return "", cand, "", false, fmt.Errorf("opt out: %w", err)
		}
		cand.Active = false
		s.logger.Info("candidate opted out", zap.String("candidate_id", cand.ID))
		return tr.Reply, cand, "", false, nil

	case DispositionOptIn:
		active := true
		if err := s.candidates.UpdateFields(ctx, cand.ID, repository.CandidateUpdate{Active: &active}); err != nil {
			return "", cand, "", false, fmt.Errorf("opt in: %w", err)
		}
		cand.Active = true
		s.logger.Info("candidate opted in", zap.String("candidate_id", cand.ID))
		return tr.Reply, cand, "", false, nil

	case DispositionHelp:
		return tr.Reply, cand, "", false, nil

	case DispositionQuestion, DispositionEngagement:
		return "", cand, tr.PendingPrompt, true, nil

	case DispositionAnswer:
		reply, cand, err = s.applyAnswer(ctx, cand, text, tr)
		return reply, cand, "", false, err
	}

	return fallbackText, cand, "", false, nil
}

// applyAnswer escribe campo y paso en un solo UPDATE condicionado al paso
// esperado; el paso nunca avanza antes de que el campo quede persistido.
func (s *VettingService) applyAnswer(ctx context.Context, cand domain.Candidate, text string, tr Transition) (string, domain.Candidate, error) {
	advanced, err := s.candidates.AdvanceVetting(ctx, cand.ID, cand.VettingStep, tr.Update, tr.NextStep, tr.NextStatus)
	if err != nil {
		// Nada se aplico: se volvera a preguntar lo mismo en el proximo
		// mensaje, re-preguntar el mismo id es inocuo.
		return "", cand, fmt.Errorf("advance vetting: %w", err)
	}
	if !advanced {
		// Otro mensaje del mismo candidato gano la carrera; re-leer y
		// repetir la pregunta vigente en vez de avanzar dos veces.
		current, err := s.candidates.GetByID(ctx, cand.ID)
		if err != nil {
			return "", cand, fmt.Errorf("reread candidate: %w", err)
		}
		if pending := s.engine.PendingPrompt(current); pending != "" {
			return pending, current, nil
		}
		return completionText, current, nil
	}

	entry := domain.VettingLogEntry{
		ID:          uuid.NewString(),
		CandidateID: cand.ID,
		QuestionID:  tr.Question.ID,
		Step:        tr.Question.Step,
		Response:    text,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.vettingLog.Append(ctx, entry); err != nil {
		s.logger.Error("vetting log append failed", zap.String("candidate_id", cand.ID), zap.Error(err))
	}

	if err := s.applications.SyncVetting(ctx, cand.ID, tr.NextStatus, tr.NextStep, tr.Question.ID, text); err != nil {
		s.logger.Error("application vetting sync failed", zap.String("candidate_id", cand.ID), zap.Error(err))
	}

	tr.Update.ApplyTo(&cand)
	cand.VettingStep = tr.NextStep
	cand.VettingStatus = tr.NextStatus

	if tr.Completed {
		s.logger.Info("vetting completed", zap.String("candidate_id", cand.ID))
		s.notifier.VettingCompleted(cand)
	}

	return tr.Reply, cand, nil
}
