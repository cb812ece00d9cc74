package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ProvenanceKind tags how an edge came to exist. Spec §9 calls out the
// source's free-form provenance strings ("merged-degree2-chain-…",
// "bridge-extend", "connector-bridged") for redesign as a tagged enum.
type ProvenanceKind int

const (
	ProvenanceOriginal ProvenanceKind = iota
	ProvenanceBridge
	ProvenanceBridgeExtend
	ProvenanceConnectorBridged
	ProvenanceMergedChain
)

func (k ProvenanceKind) String() string {
	switch k {
	case ProvenanceOriginal:
		return "original"
	case ProvenanceBridge:
		return "bridge"
	case ProvenanceBridgeExtend:
		return "bridge-extend"
	case ProvenanceConnectorBridged:
		return "connector-bridged"
	case ProvenanceMergedChain:
		return "merged-chain"
	default:
		return "unknown"
	}
}

// Provenance is the full tag attached to every edge: a kind plus whatever
// payload that kind carries (the origin trail ID, the connector trail ID
// fused in, or the chain's constituent vertex/edge IDs).
type Provenance struct {
	Kind          ProvenanceKind
	TrailID       uuid.UUID   // set for Original
	ConnectorID   uuid.UUID   // set for ConnectorBridged
	ChainVertices []VertexID  // set for MergedChain
	ChainEdges    []EdgeID    // set for MergedChain
}

// Original tags an edge as an unmodified split of an input trail.
func Original(trailID uuid.UUID) Provenance {
	return Provenance{Kind: ProvenanceOriginal, TrailID: trailID}
}

// Bridge tags a generic straight-line bridge edge. No stage in this module
// constructs it (the Gap Bridger uses BridgeExtend and the Connector
// Integrator uses ConnectorBridged); the pruner treats it as connector-typed.
func Bridge() Provenance { return Provenance{Kind: ProvenanceBridge} }

// BridgeExtend tags a Gap Bridger edge spanning a near-miss endpoint pair
// (spec §4.4).
func BridgeExtend() Provenance { return Provenance{Kind: ProvenanceBridgeExtend} }

// ConnectorBridged tags an edge created to guarantee a connector trail has a
// traversable span (spec §4.5).
func ConnectorBridged(connectorID uuid.UUID) Provenance {
	return Provenance{Kind: ProvenanceConnectorBridged, ConnectorID: connectorID}
}

// MergedChain tags a Compactor-fused edge with the vertex and edge IDs it
// absorbed, in chain order (spec §4.8).
func MergedChain(vertices []VertexID, edges []EdgeID) Provenance {
	return Provenance{Kind: ProvenanceMergedChain, ChainVertices: vertices, ChainEdges: edges}
}

// String renders a human-readable provenance tag resembling the source's
// free-form labels, e.g. "merged-chain:v3,v4,v5:e10,e11".
func (p Provenance) String() string {
	switch p.Kind {
	case ProvenanceOriginal:
		return fmt.Sprintf("original:%s", p.TrailID)
	case ProvenanceConnectorBridged:
		return fmt.Sprintf("connector-bridged:%s", p.ConnectorID)
	case ProvenanceMergedChain:
		return fmt.Sprintf("merged-chain:%s:%s", joinVertexIDs(p.ChainVertices), joinEdgeIDs(p.ChainEdges))
	default:
		return p.Kind.String()
	}
}

func joinVertexIDs(ids []VertexID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}

func joinEdgeIDs(ids []EdgeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ",")
}
