package service

import (
	"thrivingcare-api/internal/domain"
	"thrivingcare-api/internal/repository"
)

// Transition es el resultado puro de decidir sobre un mensaje entrante:
// que escribir, a que paso avanzar y que responder. Los efectos (repos,
// LLM, SMS) los aplica VettingService.
type Transition struct {
	Disposition Disposition
	Reply       string

	// Solo para DispositionAnswer.
	Question   *domain.VettingQuestion
	Update     repository.CandidateUpdate
	NextStep   int
	NextStatus domain.VettingStatus
	Completed  bool

	// Prompt pendiente a reanexar cuando la respuesta la genera el LLM.
	PendingPrompt string
}

// VettingEngine encapsula la secuencia de preguntas y el clasificador; su
// Decide es una funcion pura de (estado actual, texto entrante).
type VettingEngine struct {
	questions  []domain.VettingQuestion
	classifier Classifier
}

func NewVettingEngine(questions []domain.VettingQuestion, classifier Classifier) *VettingEngine {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	return &VettingEngine{questions: questions, classifier: classifier}
}

// QuestionForStep devuelve la pregunta de un paso 1..N, o nil fuera de rango.
func (e *VettingEngine) QuestionForStep(step int) *domain.VettingQuestion {
	if step < 1 || step > len(e.questions) {
		return nil
	}
	q := e.questions[step-1]
	return &q
}

// PendingPrompt es el texto de la pregunta pendiente, vacio si no hay.
func (e *VettingEngine) PendingPrompt(c domain.Candidate) string {
	if c.VettingStatus != domain.VettingInProgress {
		return ""
	}
	if q := e.QuestionForStep(c.VettingStep); q != nil {
		return q.Prompt
	}
	return ""
}

// CompletionPercent estima el avance del perfil segun el paso actual.
func (e *VettingEngine) CompletionPercent(c domain.Candidate) int {
	total := len(e.questions)
	if total == 0 {
		return 0
	}
	answered := c.VettingStep - 1
	if c.VettingStatus == domain.VettingCompleted || answered > total {
		answered = total
	}
	if answered < 0 {
		answered = 0
	}
	return answered * 100 / total
}

// Decide clasifica el mensaje y arma la transicion correspondiente sin tocar
// ningun estado.
func (e *VettingEngine) Decide(c domain.Candidate, text string) Transition {
	disposition := e.classifier.Classify(text, c.VettingStatus)

	switch disposition {
	case DispositionOptOut:
		// Gana siempre y no altera el avance del vetting.
		return Transition{Disposition: disposition, Reply: optOutText}

	case DispositionOptIn:
		reply := optInText
		if pending := e.PendingPrompt(c); pending != "" {
			reply += "\n\n" + pending
		}
		return Transition{Disposition: disposition, Reply: reply}

	case DispositionHelp:
		reply := helpText
		if pending := e.PendingPrompt(c); pending != "" {
			reply += "\n\n" + pending
		}
		return Transition{Disposition: disposition, Reply: reply}

	case DispositionQuestion:
		// Transicion sin efectos sobre el vetting: solo se produce una
		// respuesta, recordando la pregunta pendiente.
		return Transition{Disposition: disposition, PendingPrompt: e.PendingPrompt(c)}

	case DispositionAnswer:
		return e.decideAnswer(c, text)
	}

	return Transition{Disposition: DispositionEngagement}
}

func (e *VettingEngine) decideAnswer(c domain.Candidate, text string) Transition {
	question := e.QuestionForStep(c.VettingStep)
	if question == nil {
		// Paso fuera de rango: estado inconsistente, tratar como mensaje libre.
		return Transition{Disposition: DispositionEngagement}
	}

	next := c.VettingStep + 1
	tr := Transition{
		Disposition: DispositionAnswer,
		Question:    question,
		Update:      ExtractAnswer(question.Field, text),
		NextStep:    next,
		NextStatus:  domain.VettingInProgress,
	}

	if next > len(e.questions) {
		tr.NextStatus = domain.VettingCompleted
		tr.Completed = true
		tr.Reply = completionText
		return tr
	}

	tr.Reply = e.questions[next-1].Prompt
	return tr
}
