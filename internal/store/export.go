package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// exportNodesToJSONL writes every node to the nodes.jsonl exchange file.
// Caller must hold the write lock.
func (s *SQLiteGraphStore) exportNodesToJSONL(ctx context.Context) error {
	// Collect IDs first, close rows before nested queries
	rows, err := s.q.QueryContext(ctx, `SELECT id FROM nodes ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan ID: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	f, err := os.Create(s.nodesFile)
	if err != nil {
		return fmt.Errorf("failed to create nodes file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for _, id := range ids {
		node, err := s.getNodeUnlocked(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get node %s: %w", id, err)
		}
		if node == nil {
			continue
		}
		if err := encoder.Encode(node); err != nil {
			return fmt.Errorf("failed to encode node: %w", err)
		}
	}

	return nil
}

// exportEdgesToJSONL writes every edge to the edges.jsonl exchange file.
// Caller must hold the write lock.
func (s *SQLiteGraphStore) exportEdgesToJSONL(ctx context.Context) error {
	rows, err := s.q.QueryContext(ctx, `SELECT source, target, kind FROM edges ORDER BY source, target, kind`)
	if err != nil {
		return fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	f, err := os.Create(s.edgesFile)
	if err != nil {
		return fmt.Errorf("failed to create edges file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Kind); err != nil {
			return fmt.Errorf("failed to scan edge: %w", err)
		}
		if err := encoder.Encode(e); err != nil {
			return fmt.Errorf("failed to encode edge: %w", err)
		}
	}

	return rows.Err()
}

// ImportNodesFromJSONL loads nodes from a JSONL exchange file into the store.
func (s *SQLiteGraphStore) ImportNodesFromJSONL(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open nodes file: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var node Node
		if err := json.Unmarshal(line, &node); err != nil {
			return count, fmt.Errorf("failed to decode node line: %w", err)
		}
		if _, err := s.AddNode(ctx, node); err != nil {
			return count, fmt.Errorf("failed to import node %s: %w", node.ID, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read nodes file: %w", err)
	}

	return count, nil
}

// ImportEdgesFromJSONL loads edges from a JSONL exchange file into the store.
func (s *SQLiteGraphStore) ImportEdgesFromJSONL(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open edges file: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var edge Edge
		if err := json.Unmarshal(line, &edge); err != nil {
			return count, fmt.Errorf("failed to decode edge line: %w", err)
		}
		if err := s.AddEdge(ctx, edge); err != nil {
			return count, fmt.Errorf("failed to import edge %s->%s: %w", edge.Source, edge.Target, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read edges file: %w", err)
	}

	return count, nil
}
