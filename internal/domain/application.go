package domain

import "time"

// Estados del pipeline de una aplicacion.
const (
	ApplicationStatusNew       = "new"
	ApplicationStatusVetting   = "vetting"
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusOffer     = "offer"
	ApplicationStatusPlaced    = "placed"
	ApplicationStatusRejected  = "rejected"
)

// Application une candidato con una intencion de trabajo (job opcional).
// Los campos de vetting son una sombra desnormalizada de los del candidato y
// se actualizan juntos en cada respuesta aceptada.
type Application struct {
	ID            string            `json:"id"`
	CandidateID   string            `json:"candidate_id"`
	JobID         *string           `json:"job_id,omitempty"`
	Status        string            `json:"status"`
	VettingStatus VettingStatus     `json:"vetting_status"`
	VettingStep   int               `json:"vetting_step"`
	Answers       map[string]string `json:"answers"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
