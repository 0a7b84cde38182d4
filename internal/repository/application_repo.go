package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thrivingcare-api/internal/domain"
)

var ErrApplicationNotFound = errors.New("application not found")

// ApplicationRepository define el contrato de persistencia para aplicaciones.
type ApplicationRepository interface {
	Create(ctx context.Context, a domain.Application) error
	GetByID(ctx context.Context, id string) (domain.Application, error)
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, id, status string) error
	// SyncVetting replica estado/paso y agrega la respuesta cruda al mapa
	// answers de todas las aplicaciones del candidato.
	SyncVetting(ctx context.Context, candidateID string, status domain.VettingStatus, step int, questionID, rawAnswer string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// PgApplicationRepository implementa ApplicationRepository usando pgxpool.
type PgApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewPgApplicationRepository(pool *pgxpool.Pool) *PgApplicationRepository {
	return &PgApplicationRepository{pool: pool}
}

const applicationColumns = `
	id, candidate_id, job_id, status, vetting_status, vetting_step, answers, created_at, updated_at
`

func scanApplication(row pgx.Row) (domain.Application, error) {
	var a domain.Application
	err := row.Scan(
		&a.ID, &a.CandidateID, &a.JobID, &a.Status,
		&a.VettingStatus, &a.VettingStep, &a.Answers, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Application{}, ErrApplicationNotFound
	}
	return a, err
}

func (r *PgApplicationRepository) Create(ctx context.Context, a domain.Application) error {
	const query = `
		INSERT INTO applications (
			id, candidate_id, job_id, status, vetting_status, vetting_step, answers, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	answers := a.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	_, err := r.pool.Exec(ctx, query,
		a.ID, a.CandidateID, a.JobID, a.Status, a.VettingStatus, a.VettingStep, answers, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *PgApplicationRepository) GetByID(ctx context.Context, id string) (domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(r.pool.QueryRow(ctx, query, id))
}

func (r *PgApplicationRepository) ListByCandidate(ctx context.Context, candidateID string) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE candidate_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PgApplicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE applications SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *PgApplicationRepository) SyncVetting(ctx context.Context, candidateID string, status domain.VettingStatus, step int, questionID, rawAnswer string) error {
	const query = `
		UPDATE applications SET
			vetting_status = $2,
			vetting_step = $3,
			answers = answers || jsonb_build_object($4::text, $5::text),
			updated_at = NOW()
		WHERE candidate_id = $1
	`
	_, err := r.pool.Exec(ctx, query, candidateID, status, step, questionID, rawAnswer)
	return err
}

func (r *PgApplicationRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT status, COUNT(*) FROM applications GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
