package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertAnnotation persists a raw submission for manual review and returns
// the generated identifier. The record is never mutated by this service.
func (db *DB) InsertAnnotation(ctx context.Context, content string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO annotations (content, status)
		 VALUES ($1, $2)
		 RETURNING id`,
		content, AnnotationPending,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert annotation: %w", err)
	}
	return id, nil
}

// GetAnnotation retrieves an annotation record by ID. Returns nil when not
// found.
func (db *DB) GetAnnotation(ctx context.Context, id uuid.UUID) (*Annotation, error) {
	var a Annotation
	err := db.pool.QueryRow(ctx,
		`SELECT id, content, status, created_at FROM annotations WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Content, &a.Status, &a.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get annotation: %w", err)
	}
	return &a, nil
}
