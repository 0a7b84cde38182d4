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
	"thrivingcare-api/internal/sms"
)

var (
	ErrIntakeInvalid = errors.New("intake invalid input")
	ErrPhoneInUse    = errors.New("phone already registered")
)

// IntakeInput es el alta desde el formulario del sitio.
type IntakeInput struct {
	FirstName   string
	LastName    string
	Discipline  string
	Specialty   string
	Email       string
	Phone       string
	HomeAddress string
	Source      string
}

// Address son los componentes parseados de una direccion en una linea.
type Address struct {
	City  string
	State string
	Zip   string
}

// ParseAddress separa "calle, ciudad, ST 12345" en componentes; es un parser
// simple por comas, igual de permisivo que el formulario que lo alimenta.
func ParseAddress(address string) Address {
	parts := strings.Split(address, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var out Address
	if len(parts) >= 2 {
		out.City = parts[len(parts)-2]
	}
	if len(parts) >= 1 {
		stateZip := strings.Fields(parts[len(parts)-1])
		if len(stateZip) > 0 {
			out.State = stateZip[0]
		}
		if len(stateZip) > 1 {
			out.Zip = stateZip[1]
		}
	}
	return out
}

// IntakeService crea candidatos y aplicaciones desde el sitio de marketing.
type IntakeService struct {
	logger       *zap.Logger
	candidates   repository.CandidateRepository
	applications repository.ApplicationRepository
	jobs         repository.JobRepository
	messenger    sms.Messenger
	notifier     *RecruiterNotifier
	questions    []domain.VettingQuestion
}

func NewIntakeService(
	logger *zap.Logger,
	candidates repository.CandidateRepository,
	applications repository.ApplicationRepository,
	jobs repository.JobRepository,
	messenger sms.Messenger,
	notifier *RecruiterNotifier,
	questions []domain.VettingQuestion,
) *IntakeService {
	return &IntakeService{
		logger:       logger,
		candidates:   candidates,
		applications: applications,
		jobs:         jobs,
		messenger:    messenger,
		notifier:     notifier,
		questions:    questions,
	}
}

// CreateCandidate da de alta al candidato, abre su aplicacion y dispara el
// mensaje de bienvenida con la primera pregunta del vetting.
func (s *IntakeService) CreateCandidate(ctx context.Context, in IntakeInput) (domain.Candidate, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.FirstName == "" || in.Email == "" || in.Phone == "" {
		return domain.Candidate{}, ErrIntakeInvalid
	}
	if in.Source == "" {
		in.Source = "website_first_visit"
	}

	if _, err := s.candidates.GetByPhone(ctx, in.Phone); err == nil {
		return domain.Candidate{}, ErrPhoneInUse
	} else if !errors.Is(err, repository.ErrCandidateNotFound) {
		return domain.Candidate{}, fmt.Errorf("check phone: %w", err)
	}

	addr := ParseAddress(in.HomeAddress)
	now := time.Now().UTC()
	cand := domain.Candidate{
		ID:          uuid.NewString(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		HomeAddress: in.HomeAddress,
		HomeCity:    addr.City,
		HomeState:   addr.State,
		HomeZip:     addr.Zip,
		LicenseType: in.Discipline,
		Specialties: []string{in.Specialty},
		Source:      in.Source,
		// El alta arranca el vetting de inmediato: paso 1 pendiente.
		VettingStatus: domain.VettingInProgress,
		VettingStep:   1,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.candidates.Create(ctx, cand); err != nil {
		return domain.Candidate{}, fmt.Errorf("create candidate: %w", err)
	}

	if err := s.createApplication(ctx, cand, nil); err != nil {
		s.logger.Error("create application failed", zap.String("candidate_id", cand.ID), zap.Error(err))
	}

	s.sendWelcome(ctx, cand)
	s.notifier.NewCandidate(cand)

	s.logger.Info("new candidate",
		zap.String("candidate_id", cand.ID),
		zap.String("discipline", cand.LicenseType),
		zap.String("city", cand.HomeCity),
		zap.String("state", cand.HomeState),
	)
	return cand, nil
}

// QuickApply crea (o reutiliza) el candidato y abre una aplicacion atada a
// una posicion concreta.
func (s *IntakeService) QuickApply(ctx context.Context, in IntakeInput, jobID string) (domain.Candidate, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return domain.Candidate{}, err
	}

	cand, err := s.candidates.GetByPhone(ctx, strings.TrimSpace(in.Phone))
	if errors.Is(err, repository.ErrCandidateNotFound) {
		in.Source = "quick_apply"
		cand, err = s.CreateCandidate(ctx, in)
		if err != nil {
			return domain.Candidate{}, err
		}
	} else if err != nil {
		return domain.Candidate{}, fmt.Errorf("get candidate: %w", err)
	}

	if err := s.createApplication(ctx, cand, &job.ID); err != nil {
		return domain.Candidate{}, fmt.Errorf("create application: %w", err)
	}
	return cand, nil
}

func (s *IntakeService) createApplication(ctx context.Context, cand domain.Candidate, jobID *string) error {
	now := time.Now().UTC()
	status := domain.ApplicationStatusNew
	if cand.VettingStatus == domain.VettingInProgress {
		status = domain.ApplicationStatusVetting
	}
	return s.applications.Create(ctx, domain.Application{
		ID:            uuid.NewString(),
		CandidateID:   cand.ID,
		JobID:         jobID,
		Status:        status,
		VettingStatus: cand.VettingStatus,
		VettingStep:   cand.VettingStep,
		Answers:       map[string]string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

// sendWelcome manda la bienvenida con la pregunta 1; el fallo se traga y se
// loguea, el alta ya quedo persistida.
func (s *IntakeService) sendWelcome(ctx context.Context, cand domain.Candidate) {
	if s.messenger == nil || len(s.questions) == 0 {
		return
	}
	body := fmt.Sprintf(
		"Hi %s! 👋 Welcome to ThrivingCare Staffing. We're matching your profile (%s) to open positions. "+
			"While we do, a few quick questions:\n\n%s\n\nReply STOP to opt out.",
		cand.FirstName, strings.Join(cand.Specialties, ", "), s.questions[0].Prompt,
	)
	if err := s.messenger.Send(ctx, cand.Phone, body); err != nil {
		s.logger.Warn("welcome sms failed", zap.String("candidate_id", cand.ID), zap.Error(err))
	}
}
