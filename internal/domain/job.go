package domain

import "time"

// Job es una posicion publicada; el nucleo conversacional solo la lee para
// armar contexto de respuestas asistidas.
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Discipline  string    `json:"discipline"`
	Specialty   string    `json:"specialty,omitempty"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	WeeklyGross int       `json:"weekly_gross"`
	HourlyRate  float64   `json:"hourly_rate"`
	Active      bool      `json:"active"`
	Enriched    bool      `json:"enriched"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobFilter acota listados publicos y de admin.
type JobFilter struct {
	// IncludeInactive muestra tambien posiciones desactivadas (panel admin).
	IncludeInactive bool

	Specialty string
	Location  string
	Page      int
	PerPage   int
}
