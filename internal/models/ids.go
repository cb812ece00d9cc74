// Package models defines the data structures of the trail routing graph:
// trails, vertices, edges, and their provenance.
package models

import "fmt"

// VertexID identifies a routing vertex, unique within the current working
// set (spec §3 "Vertex (routing vertex)").
type VertexID int64

func (v VertexID) String() string { return fmt.Sprintf("v%d", int64(v)) }

// EdgeID identifies a routing edge, unique within the current working set.
type EdgeID int64

func (e EdgeID) String() string { return fmt.Sprintf("e%d", int64(e)) }
