package domain

import "time"

// Campos destino de cada pregunta del vetting.
const (
	FieldLicenseStates   = "license_states"
	FieldYearsExperience = "years_experience"
	FieldAvailableDate   = "available_date"
	FieldMinWeeklyPay    = "min_weekly_pay"
	FieldOpenToTravel    = "open_to_travel"
)

// VettingQuestion es un paso fijo del cuestionario: dato, no comportamiento.
// Los steps son 1..N contiguos; step > N significa vetting completo.
type VettingQuestion struct {
	ID     string `json:"id"`
	Step   int    `json:"step"`
	Prompt string `json:"prompt"`
	Field  string `json:"field"`
}

// VettingLogEntry es una fila de auditoria append-only: una por respuesta
// aceptada, siempre con el texto crudo, nunca se muta ni se borra.
type VettingLogEntry struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidate_id"`
	QuestionID  string    `json:"question_id"`
	Step        int       `json:"step"`
	Response    string    `json:"response"`
	CreatedAt   time.Time `json:"created_at"`
}
