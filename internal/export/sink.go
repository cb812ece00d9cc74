// Package export defines the pipeline's outbound boundary: the external
// collaborator that consumes the finished routing graph (spec §6 Outbound,
// spec §1 Non-goals "export formatting"). Format-specific serialization
// (GeoJSON, PBF, a routing engine's native format) lives outside this
// module.
package export

import (
	"context"

	"github.com/ali01/trailnet/internal/graph"
	"github.com/ali01/trailnet/internal/report"
)

// GraphSink receives the finished working set and its run report. A sink
// implementation owns its own serialization and transport; this interface
// only fixes the handoff point.
type GraphSink interface {
	Write(ctx context.Context, ws *graph.WorkingSet, rep *report.Report) error
}

// Recorder is a trivial GraphSink that retains the last write, useful for
// tests and for the report CLI which inspects the graph in-process rather
// than through a real sink.
type Recorder struct {
	WorkingSet *graph.WorkingSet
	Report     *report.Report
}

func (r *Recorder) Write(ctx context.Context, ws *graph.WorkingSet, rep *report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.WorkingSet = ws
	r.Report = rep
	return nil
}
