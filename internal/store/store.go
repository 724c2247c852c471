// Package store defines the GraphStore interface the activation and
// snapshot layers operate through, plus the bundled implementations.
package store

import (
	"context"
)

// Node represents an entity in the property graph.
type Node struct {
	ID   string `json:"id"`
	Kind string `json:"kind"` // "use-case", "tag", "level", "object", "operation", "save"

	// Props holds the node's properties. Well-known keys depend on the
	// kind: "name", "active", "request", "description", "full_name",
	// "application", "timestamp", "grouped_objects".
	Props map[string]interface{} `json:"props,omitempty"`
}

// Edge represents a directed, typed relationship between two nodes.
// Edge kinds are configuration values (use-case to tag, use-case to
// use-case, operation to save, aggregates), not hardcoded here.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Kind   string `json:"kind"`
}

// Direction specifies edge traversal direction.
type Direction string

const (
	DirectionOutbound Direction = "outbound" // Follow edges from source to target
	DirectionInbound  Direction = "inbound"  // Follow edges from target to source
	DirectionBoth     Direction = "both"     // Follow edges in both directions
)

// GraphStore defines the interface for storing and querying the graph.
type GraphStore interface {
	// Node operations
	AddNode(ctx context.Context, node Node) (string, error)
	GetNode(ctx context.Context, id string) (*Node, error)
	DeleteNode(ctx context.Context, id string) error

	// QueryNodes queries nodes by predicate.
	// Predicate is a map of field names to required values.
	// Supports flat key matching over "kind", "id", and props
	// (e.g., {"kind": "level", "application": "shop"}).
	QueryNodes(ctx context.Context, predicate map[string]interface{}) ([]Node, error)

	// Edge operations
	AddEdge(ctx context.Context, edge Edge) error
	RemoveEdge(ctx context.Context, source, target, kind string) error
	GetEdges(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error)

	// Traverse returns all nodes reachable from start by following edges of the given kinds.
	Traverse(ctx context.Context, start string, edgeKinds []string, direction Direction, maxDepth int) ([]Node, error)

	// Persistence
	Sync(ctx context.Context) error
	Close() error
}

// Transactor is implemented by stores that can scope a sequence of
// operations into a single atomic unit. The GraphStore passed to fn is
// only valid for the duration of the call; if fn returns an error, none
// of its writes remain visible afterwards.
type Transactor interface {
	Transact(ctx context.Context, fn func(GraphStore) error) error
}

// matchesPredicate checks if a node matches a predicate.
func matchesPredicate(node Node, predicate map[string]interface{}) bool {
	for key, required := range predicate {
		var actual interface{}

		switch key {
		case "kind":
			actual = node.Kind
		case "id":
			actual = node.ID
		default:
			actual = node.Props[key]
		}

		if actual != required {
			return false
		}
	}
	return true
}

// edgeKindMatches checks if an edge kind is in the allowed list.
// An empty list allows every kind.
func edgeKindMatches(kind string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, k := range allowed {
		if k == kind {
			return true
		}
	}
	return false
}
