// Package pipeline drives the nine topology stages in fixed order over a
// shared working set, wrapping each stage in an optional persistence
// transaction and accumulating a report (spec §5 "Pipeline").
package pipeline

import (
	"context"
	"time"

	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/pipeline/stageerr"
	"github.com/ali01/trailnet/internal/report"
)

// Stage is one topology transformation step. Implementations live under
// internal/topology/<name> and are constructed with their own tunables
// already bound, so Run needs only the working set.
type Stage interface {
	Name() string
	Run(ctx context.Context, ws *graph.WorkingSet) (report.StageResult, error)
}

// Verifier is optionally implemented by a Stage to re-check its own
// postconditions against the working set after Run returns (spec §3
// "supplemented feature": idempotence verification per stage).
type Verifier interface {
	Verify(ws *graph.WorkingSet) error
}

// Transaction is committed after a stage succeeds and rolled back if that
// stage fails; a later stage's failure does not undo it. Mirrors the repository package's
// Transaction abstraction but scoped to one stage at a time.
type Transaction interface {
	Commit() error
	Rollback() error
}

// Persister begins a transaction for a single stage. A nil Persister on
// Pipeline disables persistence entirely -- the pipeline still runs
// correctly as a pure in-memory transform, which is how every topology
// stage's own tests exercise it.
type Persister interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Snapshotter is optionally implemented by a Persister to write the working
// set's current state into the just-begun transaction before it commits,
// giving each stage a durable checkpoint (spec §3 supplemented feature:
// per-stage transactions).
type Snapshotter interface {
	Snapshot(ctx context.Context, tx Transaction, ws *graph.WorkingSet) error
}

// Pipeline runs a fixed, ordered sequence of stages over one working set.
type Pipeline struct {
	Stages    []Stage
	Persister Persister
}

// New returns a Pipeline over the given stages, run in the order supplied.
func New(stages ...Stage) *Pipeline {
	return &Pipeline{Stages: stages}
}

// Run executes every stage in order, stopping at the first fatal error.
// KindResource errors from a stage abort the run the same as any other
// error -- retrying a partially-applied run is the caller's decision, not
// the driver's (spec §5 "recoverable errors are resumed by the caller").
func (p *Pipeline) Run(ctx context.Context, ws *graph.WorkingSet) (*report.Report, error) {
	rep := report.New()

	for _, stage := range p.Stages {
		if err := ctx.Err(); err != nil {
			return rep, stageerr.Cancelled(stage.Name(), err)
		}

		var tx Transaction
		if p.Persister != nil {
			var err error
			tx, err = p.Persister.Begin(ctx)
			if err != nil {
				return rep, stageerr.Resource(stage.Name(), err)
			}
		}

		start := time.Now()
		result, err := stage.Run(ctx, ws)
		result.Stage = stage.Name()
		result.Duration = time.Since(start)

		if err != nil {
			if tx != nil {
				_ = tx.Rollback()
			}
			return rep, err
		}

		if v, ok := stage.(Verifier); ok {
			if verr := v.Verify(ws); verr != nil {
				if tx != nil {
					_ = tx.Rollback()
				}
				return rep, stageerr.Invariant(stage.Name(), verr)
			}
		}

		if snap, ok := p.Persister.(Snapshotter); ok && tx != nil {
			if err := snap.Snapshot(ctx, tx, ws); err != nil {
				_ = tx.Rollback()
				return rep, stageerr.Resource(stage.Name(), err)
			}
		}

		if tx != nil {
			if err := tx.Commit(); err != nil {
				return rep, stageerr.Resource(stage.Name(), err)
			}
		}

		rep.AddStage(result)
	}

	rep.FinalVertices = ws.VertexCount()
	rep.FinalEdges = ws.EdgeCount()
	ws.RecomputeDegrees()
	rep.DegreeHistogram = ws.DegreeHistogram()

	return rep, nil
}
