package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"thrivingcare-api/internal/domain"
)

// ErrCandidateNotFound se devuelve cuando el telefono o id no existe.
var ErrCandidateNotFound = errors.New("candidate not found")

// CandidateUpdate es una actualizacion parcial: solo los punteros no nulos
// se escriben.
type CandidateUpdate struct {
	LicenseStates   *string
	YearsExperience *int
	AvailableDate   *string
	MinWeeklyPay    *int
	OpenToTravel    *bool
	Active          *bool
}

// CandidateRepository define el contrato de persistencia para candidatos.
type CandidateRepository interface {
	Create(ctx context.Context, c domain.Candidate) error
	GetByID(ctx context.Context, id string) (domain.Candidate, error)
	GetByPhone(ctx context.Context, phone string) (domain.Candidate, error)
	UpdateFields(ctx context.Context, id string, update CandidateUpdate) error
	// AdvanceVetting aplica campo + paso en un solo UPDATE condicionado al
	// paso esperado; devuelve false si otro mensaje ya avanzo el contador.
	AdvanceVetting(ctx context.Context, id string, expectedStep int, update CandidateUpdate, nextStep int, nextStatus domain.VettingStatus) (bool, error)
	SetResumeURL(ctx context.Context, id, url string) error
	List(ctx context.Context, vettingStatus string, limit, offset int) ([]domain.Candidate, error)
	CountByVettingStatus(ctx context.Context) (map[string]int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

// PgCandidateRepository implementa CandidateRepository usando pgxpool.
type PgCandidateRepository struct {
	pool *pgxpool.Pool
}

func NewPgCandidateRepository(pool *pgxpool.Pool) *PgCandidateRepository {
	return &PgCandidateRepository{pool: pool}
}

const candidateColumns = `
	id, first_name, last_name, email, phone,
	home_address, home_city, home_state, home_zip,
	license_type, specialties,
	license_states, years_experience, available_date, min_weekly_pay, open_to_travel,
	resume_url, source, vetting_status, vetting_step, active, created_at, updated_at
`

func scanCandidate(row pgx.Row) (domain.Candidate, error) {
	var c domain.Candidate
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.HomeAddress, &c.HomeCity, &c.HomeState, &c.HomeZip,
		&c.LicenseType, &c.Specialties,
		&c.LicenseStates, &c.YearsExperience, &c.AvailableDate, &c.MinWeeklyPay, &c.OpenToTravel,
		&c.ResumeURL, &c.Source, &c.VettingStatus, &c.VettingStep, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Candidate{}, ErrCandidateNotFound
	}
	return c, err
}

func (r *PgCandidateRepository) Create(ctx context.Context, c domain.Candidate) error {
	const query = `
		INSERT INTO candidates (
			id, first_name, last_name, email, phone,
			home_address, home_city, home_state, home_zip,
			license_type, specialties, source,
			vetting_status, vetting_step, active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err := r.pool.Exec(ctx, query,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone,
		c.HomeAddress, c.HomeCity, c.HomeState, c.HomeZip,
		c.LicenseType, c.Specialties, c.Source,
		c.VettingStatus, c.VettingStep, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PgCandidateRepository) GetByID(ctx context.Context, id string) (domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return scanCandidate(r.pool.QueryRow(ctx, query, id))
}

func (r *PgCandidateRepository) GetByPhone(ctx context.Context, phone string) (domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE phone = $1`
	return scanCandidate(r.pool.QueryRow(ctx, query, phone))
}

// ApplyTo refleja la actualizacion parcial sobre una copia en memoria.
func (u CandidateUpdate) ApplyTo(c *domain.Candidate) {
	if u.LicenseStates != nil {
		c.LicenseStates = *u.LicenseStates
	}
	if u.YearsExperience != nil {
		c.YearsExperience = u.YearsExperience
	}
	if u.AvailableDate != nil {
		c.AvailableDate = *u.AvailableDate
	}
	if u.MinWeeklyPay != nil {
		c.MinWeeklyPay = u.MinWeeklyPay
	}
	if u.OpenToTravel != nil {
		c.OpenToTravel = u.OpenToTravel
	}
	if u.Active != nil {
		c.Active = *u.Active
	}
}

// setClauses traduce la actualizacion parcial a fragmentos SET posicionales.
func (u CandidateUpdate) setClauses(startAt int) ([]string, []any) {
	var clauses []string
	var args []any
	add := func(column string, value any) {
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, startAt+len(args)))
		args = append(args, value)
	}
	if u.LicenseStates != nil {
		add("license_states", *u.LicenseStates)
	}
	if u.YearsExperience != nil {
		add("years_experience", *u.YearsExperience)
	}
	if u.AvailableDate != nil {
		add("available_date", *u.AvailableDate)
	}
	if u.MinWeeklyPay != nil {
		add("min_weekly_pay", *u.MinWeeklyPay)
	}
	if u.OpenToTravel != nil {
		add("open_to_travel", *u.OpenToTravel)
	}
	if u.Active != nil {
		add("active", *u.Active)
	}
	return clauses, args
}

func (r *PgCandidateRepository) UpdateFields(ctx context.Context, id string, update CandidateUpdate) error {
	clauses, args := update.setClauses(2)
	if len(clauses) == 0 {
		return nil
	}
	clauses = append(clauses, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE candidates SET %s WHERE id = $1", strings.Join(clauses, ", "))
	tag, err := r.pool.Exec(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *PgCandidateRepository) AdvanceVetting(ctx context.Context, id string, expectedStep int, update CandidateUpdate, nextStep int, nextStatus domain.VettingStatus) (bool, error) {
	clauses, args := update.setClauses(4)
	clauses = append(clauses,
		"vetting_step = $2",
		"vetting_status = $3",
		"updated_at = NOW()",
	)
	query := fmt.Sprintf(
		"UPDATE candidates SET %s WHERE id = $1 AND vetting_step = $%d",
		strings.Join(clauses, ", "),
		4+len(args),
	)
	allArgs := append([]any{id, nextStep, nextStatus}, args...)
	allArgs = append(allArgs, expectedStep)
	tag, err := r.pool.Exec(ctx, query, allArgs...)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgCandidateRepository) SetResumeURL(ctx context.Context, id, url string) error {
	const query = `UPDATE candidates SET resume_url = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *PgCandidateRepository) List(ctx context.Context, vettingStatus string, limit, offset int) ([]domain.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates`
	args := []any{}
	if vettingStatus != "" {
		query += ` WHERE vetting_status = $1`
		args = append(args, vettingStatus)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgCandidateRepository) CountByVettingStatus(ctx context.Context) (map[string]int, error) {
	const query = `SELECT vetting_status, COUNT(*) FROM candidates GROUP BY vetting_status`
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

func (r *PgCandidateRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM candidates WHERE created_at >= $1`
	var count int
	err := r.pool.QueryRow(ctx, query, since).Scan(&count)
	return count, err
}
