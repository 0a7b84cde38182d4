package service

import "sync"

// CandidateLocks serializa el read-modify-write de vetting por candidato;
// dos mensajes concurrentes del mismo telefono no deben correr el contador
// de paso en paralelo.
type CandidateLocks struct {
	mu sync.Map
}

func NewCandidateLocks() *CandidateLocks {
	return &CandidateLocks{}
}

// Lock toma el mutex del candidato y devuelve su unlock.
func (l *CandidateLocks) Lock(candidateID string) func() {
	v, _ := l.mu.LoadOrStore(candidateID, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
