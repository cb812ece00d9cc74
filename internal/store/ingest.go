package store

import (
	"context"
	"fmt"

	"github.com/ali01/trailnet/internal/models"
)

// trailSource adapts TrailStore to ingest.TrailSource, letting the build CLI
// read its input trails from the same database the finished graph is
// checkpointed into.
type trailSource struct {
	db    *DB
	trail *TrailStore
}

// NewTrailSource returns an ingest.TrailSource backed by the trails table.
func NewTrailSource(db *DB) *trailSource {
	return &trailSource{db: db, trail: NewTrailStore()}
}

func (s *trailSource) Trails(ctx context.Context) ([]models.Trail, error) {
	trails, err := s.trail.GetAll(s.db, ctx)
	if err != nil {
		return nil, fmt.Errorf("store: failed to load input trails: %w", err)
	}
	return trails, nil
}
