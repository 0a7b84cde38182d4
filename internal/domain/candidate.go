package domain

import "time"

// VettingStatus representa el avance del candidato en el cuestionario de vetting.
type VettingStatus string

const (
	VettingNotStarted VettingStatus = "not_started"
	VettingInProgress VettingStatus = "in_progress"
	VettingCompleted  VettingStatus = "completed"
)

// Candidate es el registro principal; el telefono actua como clave de sesion
// para las conversaciones SMS/chat.
type Candidate struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	HomeAddress string   `json:"home_address,omitempty"`
	HomeCity    string   `json:"home_city,omitempty"`
	HomeState   string   `json:"home_state,omitempty"`
	HomeZip     string   `json:"home_zip,omitempty"`
	LicenseType string   `json:"license_type,omitempty"`
	Specialties []string `json:"specialties,omitempty"`

	// Campos que el vetting va llenando pregunta a pregunta.
	LicenseStates   string `json:"license_states,omitempty"`
	YearsExperience *int   `json:"years_experience,omitempty"`
	AvailableDate   string `json:"available_date,omitempty"`
	MinWeeklyPay    *int   `json:"min_weekly_pay,omitempty"`
	OpenToTravel    *bool  `json:"open_to_travel,omitempty"`

	ResumeURL     string        `json:"resume_url,omitempty"`
	Source        string        `json:"source,omitempty"`
	VettingStatus VettingStatus `json:"vetting_status"`
	VettingStep   int           `json:"vetting_step"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// FullName devuelve nombre y apellido para mensajes y notificaciones.
func (c *Candidate) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
