package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline"
)

// txPersister adapts DB to pipeline.Persister, giving each stage its own
// transaction (spec §5 "per-stage transactions").
type txPersister struct {
	db *DB
}

// NewPersister returns a pipeline.Persister backed by db. Passing it as
// Pipeline.Persister makes every stage run inside its own transaction,
// committed on success and rolled back on any stage or verify failure.
func NewPersister(db *DB) pipeline.Persister {
	return &txPersister{db: db}
}

func (p *txPersister) Begin(ctx context.Context) (pipeline.Transaction, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlxTransaction{tx: tx}, nil
}

type sqlxTransaction struct {
	tx *sqlx.Tx
}

func (t *sqlxTransaction) Commit() error   { return t.tx.Commit() }
func (t *sqlxTransaction) Rollback() error { return t.tx.Rollback() }

// Snapshot writes the working set's current vertices and edges into tx,
// replacing whatever was checkpointed by the previous stage. Trails are
// not re-written here -- they're seeded once at ingest and never mutated
// by a topology stage's own checkpoint.
func (p *txPersister) Snapshot(ctx context.Context, tx pipeline.Transaction, ws *graph.WorkingSet) error {
	sqlTx, ok := tx.(*sqlxTransaction)
	if !ok {
		return fmt.Errorf("store: snapshot called with foreign transaction type")
	}

	vertexStore := NewVertexStore()
	edgeStore := NewEdgeStore()

	if err := vertexStore.DeleteAll(sqlTx.tx, ctx); err != nil {
		return err
	}
	if err := edgeStore.DeleteAll(sqlTx.tx, ctx); err != nil {
		return err
	}
	if err := vertexStore.UpsertBatch(sqlTx.tx, ctx, derefVertices(ws.Vertices())); err != nil {
		return err
	}
	if err := edgeStore.UpsertBatch(sqlTx.tx, ctx, derefEdges(ws.Edges())); err != nil {
		return err
	}
	return nil
}

func derefVertices(ptrs []*models.Vertex) []models.Vertex {
	out := make([]models.Vertex, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}

func derefEdges(ptrs []*models.Edge) []models.Edge {
	out := make([]models.Edge, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}
