package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/models"
)

// EdgeStore persists models.Edge. Provenance is flattened into its own
// columns rather than serialized whole, so the chain-vertex/chain-edge
// lists stay queryable (e.g. "which edges absorbed vertex 42") without a
// JSON predicate.
type EdgeStore struct{}

// NewEdgeStore returns an EdgeStore.
func NewEdgeStore() *EdgeStore { return &EdgeStore{} }

// edgeRow is the flat column shape edges are stored as.
type edgeRow struct {
	ID                      models.EdgeID        `db:"id"`
	SourceVertexID          models.VertexID       `db:"source_vertex_id"`
	TargetVertexID          models.VertexID       `db:"target_vertex_id"`
	Geometry                geomops.LineString3D  `db:"geometry"`
	LengthKM                float64               `db:"length_km"`
	ElevationGainM          float64               `db:"elevation_gain_m"`
	ElevationLossM          float64               `db:"elevation_loss_m"`
	TrailID                 sql.NullString        `db:"trail_id"`
	Name                    string                `db:"name"`
	ProvenanceKind          int                   `db:"provenance_kind"`
	ProvenanceTrailID       sql.NullString        `db:"provenance_trail_id"`
	ProvenanceConnectorID   sql.NullString        `db:"provenance_connector_id"`
	ProvenanceChainVertices sql.NullString        `db:"provenance_chain_vertices"`
	ProvenanceChainEdges    sql.NullString         `db:"provenance_chain_edges"`
}

func toRow(e models.Edge) edgeRow {
	row := edgeRow{
		ID:             e.ID,
		SourceVertexID: e.Source,
		TargetVertexID: e.Target,
		Geometry:       e.Geometry,
		LengthKM:       e.LengthKM,
		ElevationGainM: e.ElevationGainM,
		ElevationLossM: e.ElevationLossM,
		Name:           e.Name,
		ProvenanceKind: int(e.Provenance.Kind),
	}
	if e.TrailID != nil {
		row.TrailID = sql.NullString{String: e.TrailID.String(), Valid: true}
	}
	if e.Provenance.TrailID != uuid.Nil {
		row.ProvenanceTrailID = sql.NullString{String: e.Provenance.TrailID.String(), Valid: true}
	}
	if e.Provenance.ConnectorID != uuid.Nil {
		row.ProvenanceConnectorID = sql.NullString{String: e.Provenance.ConnectorID.String(), Valid: true}
	}
	if len(e.Provenance.ChainVertices) > 0 {
		row.ProvenanceChainVertices = sql.NullString{String: joinVertexIDs(e.Provenance.ChainVertices), Valid: true}
	}
	if len(e.Provenance.ChainEdges) > 0 {
		row.ProvenanceChainEdges = sql.NullString{String: joinEdgeIDs(e.Provenance.ChainEdges), Valid: true}
	}
	return row
}

func fromRow(row edgeRow) (models.Edge, error) {
	e := models.Edge{
		ID:             row.ID,
		Source:         row.SourceVertexID,
		Target:         row.TargetVertexID,
		Geometry:       row.Geometry,
		LengthKM:       row.LengthKM,
		ElevationGainM: row.ElevationGainM,
		ElevationLossM: row.ElevationLossM,
		Name:           row.Name,
		Provenance:     models.Provenance{Kind: models.ProvenanceKind(row.ProvenanceKind)},
	}
	if row.TrailID.Valid {
		id, err := uuid.Parse(row.TrailID.String)
		if err != nil {
			return models.Edge{}, fmt.Errorf("store: bad trail_id for edge %s: %w", row.ID, err)
		}
		e.TrailID = &id
	}
	if row.ProvenanceTrailID.Valid {
		id, err := uuid.Parse(row.ProvenanceTrailID.String)
		if err != nil {
			return models.Edge{}, fmt.Errorf("store: bad provenance_trail_id for edge %s: %w", row.ID, err)
		}
		e.Provenance.TrailID = id
	}
	if row.ProvenanceConnectorID.Valid {
		id, err := uuid.Parse(row.ProvenanceConnectorID.String)
		if err != nil {
			return models.Edge{}, fmt.Errorf("store: bad provenance_connector_id for edge %s: %w", row.ID, err)
		}
		e.Provenance.ConnectorID = id
	}
	if row.ProvenanceChainVertices.Valid {
		ids, err := parseVertexIDs(row.ProvenanceChainVertices.String)
		if err != nil {
			return models.Edge{}, err
		}
		e.Provenance.ChainVertices = ids
	}
	if row.ProvenanceChainEdges.Valid {
		ids, err := parseEdgeIDs(row.ProvenanceChainEdges.String)
		if err != nil {
			return models.Edge{}, err
		}
		e.Provenance.ChainEdges = ids
	}
	return e, nil
}

func joinVertexIDs(ids []models.VertexID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

func joinEdgeIDs(ids []models.EdgeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ",")
}

func parseVertexIDs(s string) ([]models.VertexID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]models.VertexID, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("store: bad chain vertex id %q: %w", p, err)
		}
		ids[i] = models.VertexID(n)
	}
	return ids, nil
}

func parseEdgeIDs(s string) ([]models.EdgeID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]models.EdgeID, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("store: bad chain edge id %q: %w", p, err)
		}
		ids[i] = models.EdgeID(n)
	}
	return ids, nil
}

const edgeColumns = `id, source_vertex_id, target_vertex_id, geometry, length_km, elevation_gain_m,
	elevation_loss_m, trail_id, name, provenance_kind, provenance_trail_id, provenance_connector_id,
	provenance_chain_vertices, provenance_chain_edges`

// Upsert inserts or replaces an edge by ID.
func (s *EdgeStore) Upsert(exec Executor, ctx context.Context, e models.Edge) error {
	row := toRow(e)
	query := exec.Rebind(`
		INSERT INTO edges (` + edgeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			source_vertex_id = excluded.source_vertex_id,
			target_vertex_id = excluded.target_vertex_id,
			geometry = excluded.geometry,
			length_km = excluded.length_km,
			elevation_gain_m = excluded.elevation_gain_m,
			elevation_loss_m = excluded.elevation_loss_m,
			trail_id = excluded.trail_id,
			name = excluded.name,
			provenance_kind = excluded.provenance_kind,
			provenance_trail_id = excluded.provenance_trail_id,
			provenance_connector_id = excluded.provenance_connector_id,
			provenance_chain_vertices = excluded.provenance_chain_vertices,
			provenance_chain_edges = excluded.provenance_chain_edges
	`)
	_, err := exec.ExecContext(ctx, query,
		row.ID, row.SourceVertexID, row.TargetVertexID, row.Geometry, row.LengthKM, row.ElevationGainM,
		row.ElevationLossM, row.TrailID, row.Name, row.ProvenanceKind, row.ProvenanceTrailID,
		row.ProvenanceConnectorID, row.ProvenanceChainVertices, row.ProvenanceChainEdges,
	)
	if err != nil {
		return fmt.Errorf("store: failed to upsert edge %s: %w", e.ID, err)
	}
	return nil
}

// UpsertBatch upserts many edges.
func (s *EdgeStore) UpsertBatch(exec Executor, ctx context.Context, edges []models.Edge) error {
	for _, e := range edges {
		if err := s.Upsert(exec, ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves an edge by ID.
func (s *EdgeStore) GetByID(exec Executor, ctx context.Context, id models.EdgeID) (*models.Edge, error) {
	var row edgeRow
	query := exec.Rebind(`SELECT ` + edgeColumns + ` FROM edges WHERE id = ?`)
	if err := exec.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "edge", ID: id.String()}
		}
		return nil, fmt.Errorf("store: failed to get edge %s: %w", id, err)
	}
	e, err := fromRow(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetAll retrieves every edge, ordered by ID.
func (s *EdgeStore) GetAll(exec Executor, ctx context.Context) ([]models.Edge, error) {
	var rows []edgeRow
	query := `SELECT ` + edgeColumns + ` FROM edges ORDER BY id`
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("store: failed to get all edges: %w", err)
	}
	edges := make([]models.Edge, len(rows))
	for i, row := range rows {
		e, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		edges[i] = e
	}
	return edges, nil
}

// Delete removes an edge by ID. Idempotent.
func (s *EdgeStore) Delete(exec Executor, ctx context.Context, id models.EdgeID) error {
	query := exec.Rebind(`DELETE FROM edges WHERE id = ?`)
	if _, err := exec.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("store: failed to delete edge %s: %w", id, err)
	}
	return nil
}

// Count returns the total number of edges.
func (s *EdgeStore) Count(exec Executor, ctx context.Context) (int64, error) {
	var count int64
	row := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM edges`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("store: failed to count edges: %w", err)
	}
	return count, nil
}

// DeleteAll removes every edge.
func (s *EdgeStore) DeleteAll(exec Executor, ctx context.Context) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("store: failed to delete all edges: %w", err)
	}
	return nil
}
