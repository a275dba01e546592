package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ApplicationByUserAndJob retrieves the application a user already submitted
// for a job, or nil if none exists.
func (db *DB) ApplicationByUserAndJob(ctx context.Context, userID, jobID uuid.UUID) (*Application, error) {
	var a Application
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, job_id, job_url, COALESCE(external_ref, ''), submitted_fields, applied_at
		 FROM applications WHERE user_id = $1 AND job_id = $2`,
		userID, jobID,
	).Scan(&a.ID, &a.UserID, &a.JobID, &a.JobURL, &a.ExternalRef, &a.SubmittedFields, &a.AppliedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return &a, nil
}

// CreateApplication records a successful submission. The UNIQUE(user_id,
// job_id) constraint makes this idempotent: if a concurrent attempt won the
// race, the winner's row is returned and no second ID is ever issued.
func (db *DB) CreateApplication(ctx context.Context, app *Application) (*Application, error) {
	var a Application
	err := db.pool.QueryRow(ctx,
		`INSERT INTO applications (user_id, job_id, job_url, external_ref, submitted_fields)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		 ON CONFLICT (user_id, job_id) DO NOTHING
		 RETURNING id, user_id, job_id, job_url, COALESCE(external_ref, ''), submitted_fields, applied_at`,
		app.UserID, app.JobID, app.JobURL, app.ExternalRef, app.SubmittedFields,
	).Scan(&a.ID, &a.UserID, &a.JobID, &a.JobURL, &a.ExternalRef, &a.SubmittedFields, &a.AppliedAt)
	if err == nil {
		return &a, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	// Conflict: someone inserted first. Return the existing row.
	existing, err := db.ApplicationByUserAndJob(ctx, app.UserID, app.JobID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("application conflict but no existing row for user %s job %s", app.UserID, app.JobID)
	}
	return existing, nil
}

// ListApplicationsByUser retrieves a user's applications, newest first.
func (db *DB) ListApplicationsByUser(ctx context.Context, userID uuid.UUID) ([]Application, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, job_id, job_url, COALESCE(external_ref, ''), submitted_fields, applied_at
		 FROM applications WHERE user_id = $1 ORDER BY applied_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.JobID, &a.JobURL, &a.ExternalRef, &a.SubmittedFields, &a.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, nil
}
