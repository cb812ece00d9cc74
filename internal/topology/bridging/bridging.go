// Package bridging implements Trail-Level Bridging (spec §2 item 2):
// inserts short synthetic connector trails between endpoints of distinct
// trails that lie within tolerance but are not already touching, before
// the Noder ever runs. This catches endpoint gaps the Noder's
// snap-and-intersect pass cannot close on its own, since the Noder only
// splits trails at points they actually share.
package bridging

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ali01/trailnet/internal/geomops"
	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/models"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Config holds this stage's tunables.
type Config struct {
	// ToleranceMeters is the maximum endpoint gap bridged. Pairs closer
	// than SnapMeters are left for the Noder, which will merge them at no
	// cost; pairs farther than ToleranceMeters are left for the Gap
	// Bridger after noding.
	ToleranceMeters float64
	SnapMeters      float64
}

// Stage implements pipeline.Stage.
type Stage struct {
	cfg Config
}

// New returns a configured trail-level bridging stage.
func New(cfg Config) *Stage { return &Stage{cfg: cfg} }

func (s *Stage) Name() string { return "trail-bridging" }

type endpoint struct {
	trailID uuid.UUID
	atStart bool
	pos     geomops.Point3D
}

// Run enumerates every trail endpoint, pairs up endpoints from distinct
// trails within tolerance, and appends a short straight connector trail
// for each surviving pair, deterministically ordered (spec §4.4's ordering
// guarantee applied here too, since this stage shares the same
// candidate-pair shape).
func (s *Stage) Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error) {
	result := report.StageResult{}

	var endpoints []endpoint
	for _, t := range ws.Trails {
		if len(t.Geometry) < 2 {
			continue
		}
		endpoints = append(endpoints, endpoint{trailID: t.ID, atStart: true, pos: t.Geometry.Start()})
		endpoints = append(endpoints, endpoint{trailID: t.ID, atStart: false, pos: t.Geometry.End()})
	}
	sort.Slice(endpoints, func(i, j int) bool { return endpoints[i].trailID.String() < endpoints[j].trailID.String() })

	seen := make(map[[2]string]bool)

	for i := 0; i < len(endpoints); i++ {
		if err := ctx.Err(); err != nil {
			return result, stageerr.Cancelled(s.Name(), err)
		}
		for j := i + 1; j < len(endpoints); j++ {
			a, b := endpoints[i], endpoints[j]
			if a.trailID == b.trailID {
				continue
			}
			d := geomops.DistanceMeters(a.pos, b.pos)
			if d <= s.cfg.SnapMeters || d > s.cfg.ToleranceMeters {
				continue
			}

			key := pairKey(a.trailID, a.atStart, b.trailID, b.atStart)
			if seen[key] {
				continue
			}
			seen[key] = true

			connector := models.NewTrail(uuid.New(), "trail bridge", models.TrailKindConnector,
				geomops.LineString3D{a.pos, b.pos})
			ws.AddTrail(connector)
			result.Created++
		}
	}

	return result, nil
}

func pairKey(aID uuid.UUID, aStart bool, bID uuid.UUID, bStart bool) [2]string {
	ak := aID.String()
	bk := bID.String()
	if aStart {
		ak += ":s"
	} else {
		ak += ":e"
	}
	if bStart {
		bk += ":s"
	} else {
		bk += ":e"
	}
	if ak > bk {
		ak, bk = bk, ak
	}
	return [2]string{ak, bk}
}
