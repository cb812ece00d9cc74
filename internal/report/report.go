// Package report builds the pipeline's outbound summary: per-stage counts
// and a final vertex degree histogram (spec §6 Outbound).
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StageResult records one stage's effect on the working set.
type StageResult struct {
	Stage    string
	Created  int
	Merged   int
	Removed  int
	Skipped  int
	Duration time.Duration
}

// Report accumulates StageResults across a full pipeline run plus the final
// graph shape.
type Report struct {
	Stages          []StageResult
	FinalVertices   int
	FinalEdges      int
	DegreeHistogram map[int]int
}

// New returns an empty report.
func New() *Report { return &Report{DegreeHistogram: make(map[int]int)} }

// AddStage appends a stage's result.
func (r *Report) AddStage(res StageResult) { r.Stages = append(r.Stages, res) }

// TotalCreated sums Created across every stage.
func (r *Report) TotalCreated() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Created
	}
	return total
}

// TotalRemoved sums Removed across every stage.
func (r *Report) TotalRemoved() int {
	total := 0
	for _, s := range r.Stages {
		total += s.Removed
	}
	return total
}

// String renders a human-readable summary table, in the spirit of the
// console reports the build CLI prints after a run.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-28s %8s %8s %8s %8s %10s\n", "stage", "created", "merged", "removed", "skipped", "duration")
	for _, s := range r.Stages {
		fmt.Fprintf(&b, "%-28s %8d %8d %8d %8d %10s\n", s.Stage, s.Created, s.Merged, s.Removed, s.Skipped, s.Duration)
	}
	fmt.Fprintf(&b, "\nfinal graph: %d vertices, %d edges\n", r.FinalVertices, r.FinalEdges)
	fmt.Fprintf(&b, "degree histogram:\n")
	degrees := make([]int, 0, len(r.DegreeHistogram))
	for d := range r.DegreeHistogram {
		degrees = append(degrees, d)
	}
	sort.Ints(degrees)
	for _, d := range degrees {
		fmt.Fprintf(&b, "  degree %d: %d\n", d, r.DegreeHistogram[d])
	}
	return b.String()
}
