package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"thrivingcare-api/internal/domain"
)

// VettingLogRepository define el log append-only de respuestas de vetting.
type VettingLogRepository interface {
	Append(ctx context.Context, entry domain.VettingLogEntry) error
	ListByCandidate(ctx context.Context, candidateID string) ([]domain.VettingLogEntry, error)
}

// PgVettingLogRepository implementa VettingLogRepository usando pgxpool.
type PgVettingLogRepository struct {
	pool *pgxpool.Pool
}

func NewPgVettingLogRepository(pool *pgxpool.Pool) *PgVettingLogRepository {
	return &PgVettingLogRepository{pool: pool}
}

func (r *PgVettingLogRepository) Append(ctx context.Context, entry domain.VettingLogEntry) error {
	const query = `
		INSERT INTO vetting_log (id, candidate_id, question_id, step, response, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.CandidateID, entry.QuestionID, entry.Step, entry.Response, entry.CreatedAt,
	)
	return err
}

func (r *PgVettingLogRepository) ListByCandidate(ctx context.Context, candidateID string) ([]domain.VettingLogEntry, error) {
	const query = `
		SELECT id, candidate_id, question_id, step, response, created_at
		FROM vetting_log
		WHERE candidate_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.VettingLogEntry
	for rows.Next() {
		var e domain.VettingLogEntry
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.QuestionID, &e.Step, &e.Response, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
