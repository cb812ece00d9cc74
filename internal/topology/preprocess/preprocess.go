// Package preprocess implements the Geometry Preprocessor stage (spec
// §4.1): validates, simplifies, and de-duplicates input trails before any
// later stage sees them.
package preprocess

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables (spec §6 "minTrailLengthMeters",
// §4.1 "maxPasses", plus the simplify tolerance carried in from the
// topology config).
type Config struct {
	MaxPasses          int
	MinLengthMeters    float64
	SimplifyToleranceM float64
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
	ops geomops.Ops
}

// New returns a configured preprocessor stage.
func New(cfg Config) *Stage {
	return &Stage{cfg: cfg, ops: geomops.New()}
}

func (s *Stage) Name() string { return "preprocess" }

// Run simplifies every trail's geometry, then removes trails that fail
// validity, simplicity, minimum length, or duplicate-hash checks, iterating
// until a pass removes nothing or MaxPasses is reached (spec §4.1
// Algorithm).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	for _, t := range ws.Trails {
		if t.Geometry == nil {
			continue
		}
		simplified := s.ops.Simplify(t.Geometry, s.cfg.SimplifyToleranceM)
		t.Geometry = simplified
		t.RecomputeDerived()
	}

	seenHashes := make(map[string]string) // hash -> surviving trail ID

	for pass := 0; pass < s.cfg.MaxPasses; pass++ {
		if err := ctx.Err(); err != nil {
			return result, stageerr.Cancelled(s.Name(), err)
		}

		removedThisPass := 0
		for id, t := range ws.Trails {
			reason, drop := s.shouldDrop(t, seenHashes)
			if !drop {
				continue
			}
			ws.DeleteTrail(id)
			removedThisPass++
			switch reason {
			case reasonInvalid, reasonNonSimple, reasonEmpty:
				result.Skipped++
			default:
				result.Removed++
			}
		}

		if removedThisPass == 0 {
			break
		}
	}

	return result, nil
}

type dropReason int

const (
	reasonNone dropReason = iota
	reasonEmpty
	reasonInvalid
	reasonNonSimple
	reasonTooShort
	reasonDuplicate
)

func (s *Stage) shouldDrop(t *models.Trail, seenHashes map[string]string) (dropReason, bool) {
	if len(t.Geometry) < 2 {
		return reasonEmpty, true
	}
	if !s.ops.IsValid(t.Geometry) {
		return reasonInvalid, true
	}
	if !s.ops.IsSimple(t.Geometry) {
		return reasonNonSimple, true
	}
	if s.ops.LengthMeters(t.Geometry) < s.cfg.MinLengthMeters {
		return reasonTooShort, true
	}

	hash := geometryHash(t.Geometry)
	if existing, ok := seenHashes[hash]; ok && existing != t.ID.String() {
		return reasonDuplicate, true
	}
	seenHashes[hash] = t.ID.String()

	return reasonNone, false
}

// geometryHash hashes the normalized coordinate sequence, catching
// duplicate trails regardless of ID (spec §4.1 "duplicate by a hash of the
// normalized ... point sequence").
func geometryHash(l geomops.LineString3D) string {
	h := sha256.New()
	for _, p := range l {
		fmt.Fprintf(h, "%.7f,%.7f,%.3f;", p.X, p.Y, p.Z)
	}
	return hex.EncodeToString(h.Sum(nil))
}
