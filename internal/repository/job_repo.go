package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thrivingcare-api/internal/domain"
)

var ErrJobNotFound = errors.New("job not found")

// JobRepository define el contrato de persistencia para posiciones.
type JobRepository interface {
	Create(ctx context.Context, j domain.Job) error
	Update(ctx context.Context, j domain.Job) error
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (domain.Job, error)
	List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int, error)
	CountActive(ctx context.Context) (int, error)
	// FindForCandidate trae hasta limit posiciones activas afines al
	// candidato para armar contexto de respuestas asistidas.
	FindForCandidate(ctx context.Context, c domain.Candidate, limit int) ([]domain.Job, error)
}

// PgJobRepository implementa JobRepository usando pgxpool.
type PgJobRepository struct {
	pool *pgxpool.Pool
}

func NewPgJobRepository(pool *pgxpool.Pool) *PgJobRepository {
	return &PgJobRepository{pool: pool}
}

const jobColumns = `
	id, title, discipline, specialty, city, state,
	weekly_gross, hourly_rate, active, enriched, created_at, updated_at
`

func scanJob(row pgx.Row) (domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.Title, &j.Discipline, &j.Specialty, &j.City, &j.State,
		&j.WeeklyGross, &j.HourlyRate, &j.Active, &j.Enriched, &j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, ErrJobNotFound
	}
	return j, err
}

func (r *PgJobRepository) Create(ctx context.Context, j domain.Job) error {
	const query = `
		INSERT INTO jobs (
			id, title, discipline, specialty, city, state,
			weekly_gross, hourly_rate, active, enriched, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		j.ID, j.Title, j.Discipline, j.Specialty, j.City, j.State,
		j.WeeklyGross, j.HourlyRate, j.Active, j.Enriched, j.CreatedAt, j.UpdatedAt,
	)
	return err
}

func (r *PgJobRepository) Update(ctx context.Context, j domain.Job) error {
	const query = `
		UPDATE jobs SET
			title = $2, discipline = $3, specialty = $4, city = $5, state = $6,
			weekly_gross = $7, hourly_rate = $8, active = $9, enriched = $10, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		j.ID, j.Title, j.Discipline, j.Specialty, j.City, j.State,
		j.WeeklyGross, j.HourlyRate, j.Active, j.Enriched,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PgJobRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE jobs SET active = FALSE, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PgJobRepository) GetByID(ctx context.Context, id string) (domain.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(r.pool.QueryRow(ctx, query, id))
}

func (r *PgJobRepository) List(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int, error) {
	where := ` WHERE active = TRUE AND enriched = TRUE`
	if filter.IncludeInactive {
		where = ` WHERE TRUE`
	}
	args := []any{}
	if filter.Specialty != "" {
		where += fmt.Sprintf(` AND (specialty ILIKE $%d OR title ILIKE $%d)`, len(args)+1, len(args)+2)
		pattern := "%" + filter.Specialty + "%"
		args = append(args, pattern, pattern)
	}
	if filter.Location != "" {
		where += fmt.Sprintf(` AND (city ILIKE $%d OR state ILIKE $%d)`, len(args)+1, len(args)+2)
		pattern := "%" + filter.Location + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}
	query := `SELECT ` + jobColumns + ` FROM jobs` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, j)
	}
	return out, total, rows.Err()
}

func (r *PgJobRepository) CountActive(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM jobs WHERE active = TRUE`
	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&count)
	return count, err
}

func (r *PgJobRepository) FindForCandidate(ctx context.Context, c domain.Candidate, limit int) ([]domain.Job, error) {
	if limit <= 0 {
		limit = 5
	}
	// Prioriza matches de disciplina y estados con licencia; completa con lo
	// mas reciente si no hay suficientes.
	query := `SELECT ` + jobColumns + ` FROM jobs
		WHERE active = TRUE
		ORDER BY
			(discipline ILIKE $1) DESC,
			(state = ANY(string_to_array($2, ','))) DESC,
			created_at DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, "%"+c.LicenseType+"%", c.LicenseStates, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
