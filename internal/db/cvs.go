package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertCV stores or replaces a user's CV text. Replacing the body clears
// the extraction marker so the profile extractor runs again.
func (db *DB) UpsertCV(ctx context.Context, userID uuid.UUID, body string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO cv_documents (user_id, body)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET body = EXCLUDED.body, extracted_at = NULL, updated_at = NOW()`,
		userID, body,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cv: %w", err)
	}
	return nil
}

// GetCV retrieves a user's CV document, or nil if none was uploaded.
func (db *DB) GetCV(ctx context.Context, userID uuid.UUID) (*CVDocument, error) {
	var doc CVDocument
	err := db.pool.QueryRow(ctx,
		`SELECT user_id, body, extracted_at, updated_at
		 FROM cv_documents WHERE user_id = $1`,
		userID,
	).Scan(&doc.UserID, &doc.Body, &doc.ExtractedAt, &doc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cv: %w", err)
	}
	return &doc, nil
}

// MarkCVExtracted records that profile extraction ran against the current
// CV body.
func (db *DB) MarkCVExtracted(ctx context.Context, userID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE cv_documents SET extracted_at = NOW() WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark cv extracted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no cv for user %s", userID)
	}
	return nil
}
