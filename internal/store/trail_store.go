package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/models"
)

// TrailStore persists the input trails a pipeline run consumed, so a report
// server can show provenance back to its source trail without re-reading
// the ingest collaborator.
type TrailStore struct{}

// NewTrailStore returns a TrailStore.
func NewTrailStore() *TrailStore { return &TrailStore{} }

const trailColumns = `id, name, kind, length_km, elevation_gain_m, elevation_loss_m,
	min_lng, min_lat, max_lng, max_lat, geometry`

type trailRow struct {
	ID             string               `db:"id"`
	Name           string               `db:"name"`
	Kind           string               `db:"kind"`
	LengthKM       float64              `db:"length_km"`
	ElevationGainM float64              `db:"elevation_gain_m"`
	ElevationLossM float64              `db:"elevation_loss_m"`
	MinLng         float64              `db:"min_lng"`
	MinLat         float64              `db:"min_lat"`
	MaxLng         float64              `db:"max_lng"`
	MaxLat         float64              `db:"max_lat"`
	Geometry       geomops.LineString3D `db:"geometry"`
}

func (r trailRow) toModel() (models.Trail, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.Trail{}, fmt.Errorf("store: bad trail id %q: %w", r.ID, err)
	}
	return models.Trail{
		ID:             id,
		Name:           r.Name,
		Kind:           models.TrailKind(r.Kind),
		LengthKM:       r.LengthKM,
		ElevationGainM: r.ElevationGainM,
		ElevationLossM: r.ElevationLossM,
		BBox: models.BBox{
			MinLng: r.MinLng, MinLat: r.MinLat,
			MaxLng: r.MaxLng, MaxLat: r.MaxLat,
		},
		Geometry: r.Geometry,
	}, nil
}

// Upsert inserts or replaces a trail by ID.
func (s *TrailStore) Upsert(exec Executor, ctx context.Context, t models.Trail) error {
	query := exec.Rebind(`
		INSERT INTO trails (` + trailColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, kind = excluded.kind,
			length_km = excluded.length_km, elevation_gain_m = excluded.elevation_gain_m,
			elevation_loss_m = excluded.elevation_loss_m,
			min_lng = excluded.min_lng, min_lat = excluded.min_lat,
			max_lng = excluded.max_lng, max_lat = excluded.max_lat,
			geometry = excluded.geometry
	`)
	_, err := exec.ExecContext(ctx, query,
		t.ID.String(), t.Name, string(t.Kind), t.LengthKM, t.ElevationGainM, t.ElevationLossM,
		t.BBox.MinLng, t.BBox.MinLat, t.BBox.MaxLng, t.BBox.MaxLat, t.Geometry,
	)
	if err != nil {
		return fmt.Errorf("store: failed to upsert trail %s: %w", t.ID, err)
	}
	return nil
}

// GetByID retrieves a trail by ID.
func (s *TrailStore) GetByID(exec Executor, ctx context.Context, id uuid.UUID) (*models.Trail, error) {
	var row trailRow
	query := exec.Rebind(`SELECT ` + trailColumns + ` FROM trails WHERE id = ?`)
	if err := exec.GetContext(ctx, &row, query, id.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Resource: "trail", ID: id.String()}
		}
		return nil, fmt.Errorf("store: failed to get trail %s: %w", id, err)
	}
	t, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetAll retrieves every trail, ordered by ID.
func (s *TrailStore) GetAll(exec Executor, ctx context.Context) ([]models.Trail, error) {
	var rows []trailRow
	query := `SELECT ` + trailColumns + ` FROM trails ORDER BY id`
	if err := exec.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("store: failed to get all trails: %w", err)
	}
	trails := make([]models.Trail, len(rows))
	for i, row := range rows {
		t, err := row.toModel()
		if err != nil {
			return nil, err
		}
		trails[i] = t
	}
	return trails, nil
}

// Count returns the total number of stored trails.
func (s *TrailStore) Count(exec Executor, ctx context.Context) (int64, error) {
	var count int64
	row := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM trails`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("store: failed to count trails: %w", err)
	}
	return count, nil
}

// DeleteAll removes every trail.
func (s *TrailStore) DeleteAll(exec Executor, ctx context.Context) error {
	if _, err := exec.ExecContext(ctx, `DELETE FROM trails`); err != nil {
		return fmt.Errorf("store: failed to delete all trails: %w", err)
	}
	return nil
}
