package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ali01/trailnet/internal/models"
)

// VertexStore persists models.Vertex. It is stateless: every method takes
// the Executor to run against, so the same store works uniformly against a
// plain connection or an open transaction.
type VertexStore struct{}

// NewVertexStore returns a VertexStore.
func NewVertexStore() *VertexStore { return &VertexStore{} }

// Upsert inserts or replaces a vertex by ID.
func (s *VertexStore) Upsert(exec Executor, ctx context.Context, v models.Vertex) error {
	query := exec.Rebind(`
		INSERT INTO vertices (id, x, y, z, degree) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET x = excluded.x, y = excluded.y, z = excluded.z, degree = excluded.degree
	`)
	_, err := exec.ExecContext(ctx, query, v.ID, v.X, v.Y, v.Z, v.Degree)
	if err != nil {
		return fmt.Errorf("store: failed to upsert vertex %s: %w", v.ID, err)
	}
	return nil
}

// UpsertBatch upserts many vertices. Callers running a large pipeline
// result should wrap this in a DB.Transaction for a single commit.
func (s *VertexStore) UpsertBatch(exec Executor, ctx context.Context, vertices []models.Vertex) error {
	for _, v := range vertices {
		if err := s.Upsert(exec, ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a vertex by ID.
func (s *VertexStore) GetByID(exec Executor, ctx context.Context, id models.VertexID) (*models.Vertex, error) {
	var v models.Vertex
	query := exec.Rebind(`SELECT id, x, y, z, degree FROM vertices WHERE id = ?`)
	if err := exec.GetContext(ctx, &v, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "vertex", ID: id.String()}
		}
		return nil, fmt.Errorf("store: failed to get vertex %s: %w", id, err)
	}
	return &v, nil
}

// GetAll retrieves every vertex, ordered by ID for deterministic output.
func (s *VertexStore) GetAll(exec Executor, ctx context.Context) ([]models.Vertex, error) {
	var vertices []models.Vertex
	query := `SELECT id, x, y, z, degree FROM vertices ORDER BY id`
	if err := exec.SelectContext(ctx, &vertices, query); err != nil {
		return nil, fmt.Errorf("store: failed to get all vertices: %w", err)
	}
	return vertices, nil
}

// Delete removes a vertex by ID. Idempotent: deleting an absent vertex is
// not an error.
func (s *VertexStore) Delete(exec Executor, ctx context.Context, id models.VertexID) error {
	query := exec.Rebind(`DELETE FROM vertices WHERE id = ?`)
	if _, err := exec.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("store: failed to delete vertex %s: %w", id, err)
	}
	return nil
}

// Count returns the total number of vertices.
func (s *VertexStore) Count(exec Executor, ctx context.Context) (int64, error) {
	var count int64
	row := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM vertices`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("store: failed to count vertices: %w", err)
	}
	return count, nil
}

// DeleteAll removes every vertex, used to reset the store between pipeline
// runs that rebuild the graph from scratch.
func (s *VertexStore) DeleteAll(exec Executor, ctx context.Context) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM vertices`); err != nil {
		return fmt.Errorf("store: failed to delete all vertices: %w", err)
	}
	return nil
}
