// Package ingest defines the pipeline's inbound boundary: the external
// collaborator that supplies trail records (spec §6 Inbound, spec §1
// Non-goals "region ingestion"). Region discovery and file parsing live
// outside this module; ingest only describes the shape a source must
// produce.
package ingest

import (
	"context"

	"github.com/ali01/trailnet/internal/models"
)

// TrailSource yields the full set of input trails for one pipeline run.
// Implementations (file readers, database queries, upstream services) are
// out of scope for this module -- callers wire their own.
type TrailSource interface {
	Trails(ctx context.Context) ([]models.Trail, error)
}

// SliceSource is a trivial TrailSource backed by an in-memory slice, useful
// for tests and for callers that have already materialized their trails.
type SliceSource []models.Trail

func (s SliceSource) Trails(ctx context.Context) ([]models.Trail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.Trail(s), nil
}
