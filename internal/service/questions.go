package service

import "thrivingcare-api/internal/domain"

// DefaultQuestions devuelve la secuencia fija del vetting. Ambos transportes
// (SMS y web chat) usan exactamente la misma lista, en el mismo orden, para
// que un candidato pueda migrar de canal sin repetir ni saltar preguntas.
func DefaultQuestions() []domain.VettingQuestion {
	return []domain.VettingQuestion{
		{
			ID:     "license_states",
			Step:   1,
			Prompt: "Which states are you licensed in? Reply with the state codes (e.g. TX, CA).",
			Field:  domain.FieldLicenseStates,
		},
		{
			ID:     "years_experience",
			Step:   2,
			Prompt: "How many years of experience do you have in your specialty?",
			Field:  domain.FieldYearsExperience,
		},
		{
			ID:     "available_date",
			Step:   3,
			Prompt: "When are you available to start? Any date or timeframe works.",
			Field:  domain.FieldAvailableDate,
		},
		{
			ID:     "min_weekly_pay",
			Step:   4,
			Prompt: "What's the minimum weekly pay you'd accept for an assignment?",
			Field:  domain.FieldMinWeeklyPay,
		},
		{
			ID:     "open_to_travel",
			Step:   5,
			Prompt: "Are you open to travel assignments? (YES/NO)",
			Field:  domain.FieldOpenToTravel,
		},
	}
}

// Textos estaticos de la conversacion.
const (
	helpText = "I'm the ThrivingCare assistant. I can answer questions about jobs, pay and assignments, " +
		"and I'll walk you through a few quick questions to complete your profile. " +
		"Reply STOP to opt out at any time."

	completionText = "That's everything we need! 🎉 A ThrivingCare recruiter will review your profile " +
		"and reach out with matching positions shortly. You can keep texting me questions anytime."

	optOutText = "You've been unsubscribed from ThrivingCare messages. Reply START anytime to resume."

	optInText = "Welcome back! You're subscribed to ThrivingCare messages again."

	fallbackText = "Thanks for reaching out! A ThrivingCare recruiter will get back to you with details shortly."
)
