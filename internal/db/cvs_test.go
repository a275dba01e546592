package db

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCVLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	uid, err := db.CreateUser(ctx, "CV Tester", "cv-"+uuid.New().String()+"@example.com", "")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, uid) // Cleanup

	// No CV yet
	doc, err := db.GetCV(ctx, uid)
	require.NoError(t, err)
	assert.Nil(t, doc)

	// Upload
	err = db.UpsertCV(ctx, uid, "Jane Doe\nGo engineer, 8 years.")
	require.NoError(t, err)

	doc, err = db.GetCV(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Contains(t, doc.Body, "Go engineer")
	assert.Nil(t, doc.ExtractedAt)

	// Mark extracted
	err = db.MarkCVExtracted(ctx, uid)
	require.NoError(t, err)

	doc, err = db.GetCV(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.NotNil(t, doc.ExtractedAt)

	// Replacing the body clears the extraction marker
	err = db.UpsertCV(ctx, uid, "Jane Doe\nStaff engineer now.")
	require.NoError(t, err)

	doc, err = db.GetCV(ctx, uid)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Nil(t, doc.ExtractedAt)
	assert.Contains(t, doc.Body, "Staff engineer")
}

func TestMarkCVExtracted_NoCV(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	uid, err := db.CreateUser(ctx, "No CV", "nocv-"+uuid.New().String()+"@example.com", "")
	require.NoError(t, err)
	defer db.DeleteUser(ctx, uid) // Cleanup

	err = db.MarkCVExtracted(ctx, uid)
	assert.Error(t, err)
}
