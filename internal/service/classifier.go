package service

import (
	"strings"

	"thrivingcare-api/internal/domain"
)

// Disposition es el destino de un mensaje entrante tras clasificarlo.
type Disposition int

const (
	DispositionOptOut Disposition = iota
	DispositionOptIn
	DispositionHelp
	DispositionQuestion
	DispositionAnswer
	DispositionEngagement
)

// Classifier decide que hacer con un mensaje entrante dado el estado de
// vetting actual. Es intercambiable para poder ajustar heuristicas sin tocar
// la logica de transicion.
type Classifier interface {
	Classify(text string, status domain.VettingStatus) Disposition
}

// KeywordClassifier implementa la clasificacion por prioridad estricta:
// comando de suscripcion > HELP > pregunta tangencial (solo mid-vetting) >
// respuesta de vetting > mensaje libre.
type KeywordClassifier struct {
	JobKeywords    []string
	MinQuestionLen int
}

var interrogativeLeads = []string{
	"what", "where", "when", "how", "why", "which",
	"can", "do", "does", "is", "are", "will", "would", "could", "should",
	"tell me", "explain",
}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		JobKeywords: []string{
			"pay", "salary", "rate", "job", "jobs", "position", "assignment",
			"contract", "shift", "housing", "stipend", "benefit", "location", "hours",
		},
		MinQuestionLen: 25,
	}
}

func (c *KeywordClassifier) Classify(text string, status domain.VettingStatus) Disposition {
	trimmed := strings.TrimSpace(text)
	switch strings.ToUpper(trimmed) {
	case "STOP", "UNSUBSCRIBE", "QUIT":
		return DispositionOptOut
	case "START", "SUBSCRIBE":
		return DispositionOptIn
	case "HELP":
		return DispositionHelp
	}

	if status == domain.VettingInProgress {
		if c.looksLikeQuestion(trimmed) {
			return DispositionQuestion
		}
		return DispositionAnswer
	}
	return DispositionEngagement
}

// looksLikeQuestion es best-effort y esta sesgado a NO robarle el turno a una
// respuesta de vetting: el keyword match solo aplica a mensajes largos.
func (c *KeywordClassifier) looksLikeQuestion(text string) bool {
	if strings.Contains(text, "?") {
		return true
	}
	lower := strings.ToLower(text)
	for _, lead := range interrogativeLeads {
		if strings.HasPrefix(lower, lead+" ") {
			return true
		}
	}
	if len(lower) >= c.MinQuestionLen {
		for _, kw := range c.JobKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}
