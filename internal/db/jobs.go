package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobFilters narrows ListJobs results. Zero values mean "no filter".
type JobFilters struct {
	Query    string // matches title or company, case-insensitive
	Location string
	Remote   *bool
	Tag      string
	Limit    int
	Offset   int
}

// CreateJob inserts a job posting and returns its generated ID.
func (db *DB) CreateJob(ctx context.Context, job *Job) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO jobs (title, company, location, remote, url, tags, salary_min, salary_max, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		job.Title, job.Company, job.Location, job.Remote, job.URL, job.Tags,
		job.SalaryMin, job.SalaryMax, job.Description,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

// GetJob retrieves a job posting by ID, or nil if it does not exist.
func (db *DB) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, COALESCE(location, ''), remote, url, tags,
		        salary_min, salary_max, COALESCE(description, ''), posted_at
		 FROM jobs WHERE id = $1`,
		id,
	).Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Remote, &j.URL, &j.Tags,
		&j.SalaryMin, &j.SalaryMax, &j.Description, &j.PostedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &j, nil
}

// GetJobByURL retrieves a job posting by its listing URL, or nil if unknown.
func (db *DB) GetJobByURL(ctx context.Context, url string) (*Job, error) {
	var j Job
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, company, COALESCE(location, ''), remote, url, tags,
		        salary_min, salary_max, COALESCE(description, ''), posted_at
		 FROM jobs WHERE url = $1`,
		url,
	).Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Remote, &j.URL, &j.Tags,
		&j.SalaryMin, &j.SalaryMax, &j.Description, &j.PostedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job by url: %w", err)
	}
	return &j, nil
}

// DeleteJob removes a job posting.
func (db *DB) DeleteJob(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// ListJobs retrieves job postings matching the given filters, newest first.
func (db *DB) ListJobs(ctx context.Context, filters JobFilters) ([]Job, error) {
	query := `SELECT id, title, company, COALESCE(location, ''), remote, url, tags,
	                 salary_min, salary_max, COALESCE(description, ''), posted_at
	          FROM jobs`

	var conditions []string
	var args []interface{}
	argNum := 1

	if filters.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR company ILIKE $%d)", argNum, argNum))
		args = append(args, "%"+filters.Query+"%")
		argNum++
	}
	if filters.Location != "" {
		conditions = append(conditions, fmt.Sprintf("location ILIKE $%d", argNum))
		args = append(args, "%"+filters.Location+"%")
		argNum++
	}
	if filters.Remote != nil {
		conditions = append(conditions, fmt.Sprintf("remote = $%d", argNum))
		args = append(args, *filters.Remote)
		argNum++
	}
	if filters.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(tags)", argNum))
		args = append(args, filters.Tag)
		argNum++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY posted_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Remote, &j.URL, &j.Tags,
			&j.SalaryMin, &j.SalaryMax, &j.Description, &j.PostedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// SalaryGuide aggregates posted salary ranges for jobs whose title matches
// the given role. Listings without salary data are excluded from the
// averages but counted toward the remote percentage.
func (db *DB) SalaryGuide(ctx context.Context, role string) (*SalaryBand, error) {
	band := SalaryBand{Role: role}
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(ROUND(AVG(salary_min)), 0),
		        COALESCE(ROUND(AVG(salary_max)), 0),
		        COALESCE(ROUND(100.0 * COUNT(*) FILTER (WHERE remote) / NULLIF(COUNT(*), 0)), 0)
		 FROM jobs WHERE title ILIKE $1`,
		"%"+role+"%",
	).Scan(&band.Listings, &band.AvgMin, &band.AvgMax, &band.RemotePct)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate salary guide: %w", err)
	}
	return &band, nil
}
