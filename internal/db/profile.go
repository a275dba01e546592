package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AttributeInput is one profile attribute to upsert.
type AttributeInput struct {
	Name  string
	Value string
}

// ProfileAttributes retrieves a user's profile attributes ordered by name.
func (db *DB) ProfileAttributes(ctx context.Context, userID uuid.UUID) ([]ProfileAttribute, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT user_id, name, value, updated_at
		 FROM profile_attributes WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profile attributes: %w", err)
	}
	defer rows.Close()

	var attrs []ProfileAttribute
	for rows.Next() {
		var a ProfileAttribute
		if err := rows.Scan(&a.UserID, &a.Name, &a.Value, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile attribute: %w", err)
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// UpsertProfileAttributes writes attributes for a user. updated_at is only
// bumped when the stored value actually changes, so re-saving an unchanged
// profile does not shuffle the mapper's recency tie-breaking.
func (db *DB) UpsertProfileAttributes(ctx context.Context, userID uuid.UUID, attrs []AttributeInput) error {
	for _, attr := range attrs {
		_, err := db.pool.Exec(ctx,
			`INSERT INTO profile_attributes (user_id, name, value)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, name) DO UPDATE
			   SET value = EXCLUDED.value, updated_at = NOW()
			   WHERE profile_attributes.value IS DISTINCT FROM EXCLUDED.value`,
			userID, attr.Name, attr.Value,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert profile attribute %s: %w", attr.Name, err)
		}
	}
	return nil
}

// DeleteProfileAttribute removes one attribute from a user's profile.
func (db *DB) DeleteProfileAttribute(ctx context.Context, userID uuid.UUID, name string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM profile_attributes WHERE user_id = $1 AND name = $2`,
		userID, name,
	)
	if err != nil {
		return fmt.Errorf("failed to delete profile attribute %s: %w", name, err)
	}
	return nil
}
