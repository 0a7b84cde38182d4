// cli_chat es una consola local para probar la conversacion de vetting
// contra la base real, sin pasar por Twilio ni por el router HTTP.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"thrivingcare-api/internal/config"
	"thrivingcare-api/internal/db"
	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/llm"
	"thrivingcare-api/internal/repository"
	"thrivingcare-api/internal/service"
)

const testPhone = "+15550100000"

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	candidateRepo := repository.NewPgCandidateRepository(pool)
	applicationRepo := repository.NewPgApplicationRepository(pool)
	vettingLogRepo := repository.NewPgVettingLogRepository(pool)
	jobRepo := repository.NewPgJobRepository(pool)

	var llmClient llm.Client
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	}

	engine := service.NewVettingEngine(service.DefaultQuestions(), service.NewKeywordClassifier())
	engagementSvc := service.NewEngagementService(logger, llmClient, jobRepo)
	vettingSvc := service.NewVettingService(logger, candidateRepo, applicationRepo, vettingLogRepo, engine, engagementSvc, nil, nil)

	cand, err := ensureCandidate(ctx, candidateRepo)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("===== ThrivingCare vetting chat (%s) =====\n", cand.Phone)
	fmt.Println("Mensaje vacio = prompt pendiente. Ctrl+D para salir.")

	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}
		line = strings.TrimRight(line, "\n")

		result, err := vettingSvc.HandleChat(ctx, cand.ID, line)
		if err != nil {
			log.Printf("chat error: %v", err)
			continue
		}
		fmt.Printf("[%s %d%%] %s\n\n", result.VettingStatus, result.ProfileCompletion, result.Reply)
	}
}

func ensureCandidate(ctx context.Context, repo repository.CandidateRepository) (domain.Candidate, error) {
	cand, err := repo.GetByPhone(ctx, testPhone)
	if err == nil {
		return cand, nil
	}
	if !errors.Is(err, repository.ErrCandidateNotFound) {
		return domain.Candidate{}, err
	}

	now := time.Now().UTC()
	cand = domain.Candidate{
		ID:            uuid.NewString(),
		FirstName:     "Test",
		LastName:      "Candidate",
		Email:         "cli_test@example.com",
		Phone:         testPhone,
		LicenseType:   "RN",
		Specialties:   []string{"ICU"},
		Source:        "cli_chat",
		VettingStatus: domain.VettingInProgress,
		VettingStep:   1,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := repo.Create(ctx, cand); err != nil {
		return domain.Candidate{}, err
	}
	return cand, nil
}
