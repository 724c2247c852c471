package store

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryGraphStore implements GraphStore for testing and development.
type InMemoryGraphStore struct {
	mu    sync.RWMutex
	nodes map[string]Node
	edges []Edge
}

// NewInMemoryGraphStore creates a new in-memory store.
func NewInMemoryGraphStore() *InMemoryGraphStore {
	return &InMemoryGraphStore{
		nodes: make(map[string]Node),
		edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the store.
func (s *InMemoryGraphStore) AddNode(ctx context.Context, node Node) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID == "" {
		return "", fmt.Errorf("node ID is required")
	}

	s.nodes[node.ID] = node
	return node.ID, nil
}

// GetNode retrieves a node by ID. Returns nil if not found.
func (s *InMemoryGraphStore) GetNode(ctx context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[id]
	if !exists {
		return nil, nil
	}
	return &node, nil
}

// DeleteNode removes a node and its incident edges.
func (s *InMemoryGraphStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.nodes, id)

	filtered := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if e.Source != id && e.Target != id {
			filtered = append(filtered, e)
		}
	}
	s.edges = filtered

	return nil
}

// QueryNodes returns nodes matching the predicate.
func (s *InMemoryGraphStore) QueryNodes(ctx context.Context, predicate map[string]interface{}) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Node, 0)
	for _, node := range s.nodes {
		if matchesPredicate(node, predicate) {
			results = append(results, node)
		}
	}
	return results, nil
}

// AddEdge adds an edge to the store. Both endpoints must exist.
func (s *InMemoryGraphStore) AddEdge(ctx context.Context, edge Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if edge.Kind == "" {
		return fmt.Errorf("edge kind is required")
	}
	if _, ok := s.nodes[edge.Source]; !ok {
		return fmt.Errorf("edge source not found: %s", edge.Source)
	}
	if _, ok := s.nodes[edge.Target]; !ok {
		return fmt.Errorf("edge target not found: %s", edge.Target)
	}

	s.edges = append(s.edges, edge)
	return nil
}

// RemoveEdge removes an edge matching source, target, and kind.
func (s *InMemoryGraphStore) RemoveEdge(ctx context.Context, source, target, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]Edge, 0, len(s.edges))
	for _, e := range s.edges {
		if !(e.Source == source && e.Target == target && e.Kind == kind) {
			filtered = append(filtered, e)
		}
	}
	s.edges = filtered
	return nil
}

// GetEdges returns edges connected to a node.
func (s *InMemoryGraphStore) GetEdges(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Edge, 0)
	for _, e := range s.edges {
		if kind != "" && e.Kind != kind {
			continue
		}

		switch direction {
		case DirectionOutbound:
			if e.Source == nodeID {
				results = append(results, e)
			}
		case DirectionInbound:
			if e.Target == nodeID {
				results = append(results, e)
			}
		case DirectionBoth:
			if e.Source == nodeID || e.Target == nodeID {
				results = append(results, e)
			}
		}
	}
	return results, nil
}

// Traverse returns all nodes reachable from start by following edges of the given kinds.
func (s *InMemoryGraphStore) Traverse(ctx context.Context, start string, edgeKinds []string, direction Direction, maxDepth int) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visited := make(map[string]bool)
	results := make([]Node, 0)

	s.traverseRecursive(start, edgeKinds, direction, maxDepth, 0, visited, &results)

	return results, nil
}

func (s *InMemoryGraphStore) traverseRecursive(current string, edgeKinds []string, direction Direction, maxDepth, depth int, visited map[string]bool, results *[]Node) {
	if depth > maxDepth || visited[current] {
		return
	}
	visited[current] = true

	if node, exists := s.nodes[current]; exists {
		*results = append(*results, node)
	}

	for _, e := range s.edges {
		if !edgeKindMatches(e.Kind, edgeKinds) {
			continue
		}

		var next string
		switch direction {
		case DirectionOutbound:
			if e.Source == current {
				next = e.Target
			}
		case DirectionInbound:
			if e.Target == current {
				next = e.Source
			}
		case DirectionBoth:
			if e.Source == current {
				next = e.Target
			} else if e.Target == current {
				next = e.Source
			}
		}

		if next != "" {
			s.traverseRecursive(next, edgeKinds, direction, maxDepth, depth+1, visited, results)
		}
	}
}

// Transact runs fn against a scratch copy of the store and commits the
// copy back only if fn succeeds. Writes from other goroutines are
// blocked for the duration of the call.
func (s *InMemoryGraphStore) Transact(ctx context.Context, fn func(GraphStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	scratch := s.cloneLocked()
	if err := fn(scratch); err != nil {
		return err
	}

	s.nodes = scratch.nodes
	s.edges = scratch.edges
	return nil
}

// cloneLocked copies nodes (one level of props deep) and edges.
// Caller must hold the write lock.
func (s *InMemoryGraphStore) cloneLocked() *InMemoryGraphStore {
	clone := &InMemoryGraphStore{
		nodes: make(map[string]Node, len(s.nodes)),
		edges: make([]Edge, len(s.edges)),
	}
	for id, n := range s.nodes {
		props := make(map[string]interface{}, len(n.Props))
		for k, v := range n.Props {
			props[k] = v
		}
		n.Props = props
		clone.nodes[id] = n
	}
	copy(clone.edges, s.edges)
	return clone
}

// Sync is a no-op for in-memory storage.
func (s *InMemoryGraphStore) Sync(ctx context.Context) error {
	return nil
}

// Close is a no-op for in-memory storage.
func (s *InMemoryGraphStore) Close() error {
	return nil
}
