package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx,
// letting store methods run either directly or inside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteGraphStore implements GraphStore using SQLite for persistence.
// It stores nodes and edges in a SQLite database and exports to JSONL on Sync().
type SQLiteGraphStore struct {
	mu        sync.RWMutex
	db        *sql.DB
	q         dbtx
	dataDir   string
	dbPath    string
	nodesFile string
	edgesFile string
	inTx      bool
}

// NewSQLiteGraphStore creates a new SQLiteGraphStore rooted at dataDir.
// The database lives at <dataDir>/strata.db; Sync exports JSONL exchange
// files next to it.
func NewSQLiteGraphStore(dataDir string) (*SQLiteGraphStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "strata.db")
	nodesFile := filepath.Join(dataDir, "nodes.jsonl")
	edgesFile := filepath.Join(dataDir, "edges.jsonl")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteGraphStore{
		db:        db,
		q:         db,
		dataDir:   dataDir,
		dbPath:    dbPath,
		nodesFile: nodesFile,
		edgesFile: edgesFile,
	}, nil
}

// AddNode adds a node to the store, replacing any node with the same ID.
func (s *SQLiteGraphStore) AddNode(ctx context.Context, node Node) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if node.ID == "" {
		return "", fmt.Errorf("node ID is required")
	}

	propsJSON, err := json.Marshal(node.Props)
	if err != nil {
		return "", fmt.Errorf("failed to marshal props: %w", err)
	}

	name, _ := node.Props["name"].(string)
	application, _ := node.Props["application"].(string)
	now := time.Now().Format(time.RFC3339)

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO nodes (id, kind, name, application, props, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			application = excluded.application,
			props = excluded.props,
			updated_at = excluded.updated_at
	`, node.ID, node.Kind, nullString(name), nullString(application), string(propsJSON), now, now)
	if err != nil {
		return "", fmt.Errorf("failed to insert node: %w", err)
	}

	return node.ID, nil
}

// GetNode retrieves a node by ID. Returns nil if not found.
func (s *SQLiteGraphStore) GetNode(ctx context.Context, id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getNodeUnlocked(ctx, id)
}

// getNodeUnlocked retrieves a node without locking (caller must hold lock).
func (s *SQLiteGraphStore) getNodeUnlocked(ctx context.Context, id string) (*Node, error) {
	var kind, propsJSON string

	err := s.q.QueryRowContext(ctx, `SELECT kind, props FROM nodes WHERE id = ?`, id).Scan(&kind, &propsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}

	props := make(map[string]interface{})
	if propsJSON != "" {
		if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
			return nil, fmt.Errorf("failed to unmarshal props for %s: %w", id, err)
		}
	}

	return &Node{ID: id, Kind: kind, Props: props}, nil
}

// DeleteNode removes a node and its incident edges.
func (s *SQLiteGraphStore) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.q.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	if _, err := s.q.ExecContext(ctx, `DELETE FROM edges WHERE source = ? OR target = ?`, id, id); err != nil {
		return fmt.Errorf("failed to delete edges: %w", err)
	}

	return nil
}

// QueryNodes returns nodes matching the predicate. Indexed fields (kind,
// id, name, application) are pushed into SQL; remaining keys are matched
// against the decoded props.
func (s *SQLiteGraphStore) QueryNodes(ctx context.Context, predicate map[string]interface{}) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var whereClauses []string
	var args []interface{}
	rest := make(map[string]interface{})

	for key, value := range predicate {
		switch key {
		case "kind":
			whereClauses = append(whereClauses, "kind = ?")
			args = append(args, value)
		case "id":
			whereClauses = append(whereClauses, "id = ?")
			args = append(args, value)
		case "name":
			whereClauses = append(whereClauses, "name = ?")
			args = append(args, value)
		case "application":
			whereClauses = append(whereClauses, "application = ?")
			args = append(args, value)
		default:
			rest[key] = value
		}
	}

	query := `SELECT id FROM nodes`
	for i, clause := range whereClauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	// Collect IDs first, then close rows before nested queries
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan node ID: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	var nodes []Node
	for _, id := range ids {
		node, err := s.getNodeUnlocked(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get node %s: %w", id, err)
		}
		if node == nil {
			continue
		}
		if len(rest) > 0 && !matchesPredicate(*node, rest) {
			continue
		}
		nodes = append(nodes, *node)
	}

	return nodes, nil
}

// AddEdge adds an edge to the store.
func (s *SQLiteGraphStore) AddEdge(ctx context.Context, edge Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if edge.Kind == "" {
		return fmt.Errorf("edge kind is required")
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT OR REPLACE INTO edges (source, target, kind) VALUES (?, ?, ?)
	`, edge.Source, edge.Target, edge.Kind)
	if err != nil {
		return fmt.Errorf("failed to add edge: %w", err)
	}

	return nil
}

// RemoveEdge removes an edge matching source, target, and kind.
func (s *SQLiteGraphStore) RemoveEdge(ctx context.Context, source, target, kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.q.ExecContext(ctx, `
		DELETE FROM edges WHERE source = ? AND target = ? AND kind = ?
	`, source, target, kind)
	if err != nil {
		return fmt.Errorf("failed to remove edge: %w", err)
	}

	return nil
}

// GetEdges returns edges connected to a node.
func (s *SQLiteGraphStore) GetEdges(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getEdgesUnlocked(ctx, nodeID, direction, kind)
}

func (s *SQLiteGraphStore) getEdgesUnlocked(ctx context.Context, nodeID string, direction Direction, kind string) ([]Edge, error) {
	var query string
	var args []interface{}

	switch direction {
	case DirectionOutbound:
		query = `SELECT source, target, kind FROM edges WHERE source = ?`
		args = append(args, nodeID)
	case DirectionInbound:
		query = `SELECT source, target, kind FROM edges WHERE target = ?`
		args = append(args, nodeID)
	case DirectionBoth:
		query = `SELECT source, target, kind FROM edges WHERE source = ? OR target = ?`
		args = append(args, nodeID, nodeID)
	}

	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.Kind); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

// Traverse returns all nodes reachable from start by following edges of the given kinds.
func (s *SQLiteGraphStore) Traverse(ctx context.Context, start string, edgeKinds []string, direction Direction, maxDepth int) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	visited := make(map[string]bool)
	var results []Node

	s.traverseRecursive(ctx, start, edgeKinds, direction, maxDepth, 0, visited, &results)

	return results, nil
}

func (s *SQLiteGraphStore) traverseRecursive(ctx context.Context, current string, edgeKinds []string, direction Direction, maxDepth, depth int, visited map[string]bool, results *[]Node) {
	if depth > maxDepth || visited[current] {
		return
	}
	visited[current] = true

	node, err := s.getNodeUnlocked(ctx, current)
	if err == nil && node != nil {
		*results = append(*results, *node)
	}

	edges, err := s.getEdgesUnlocked(ctx, current, direction, "")
	if err != nil {
		return
	}

	for _, e := range edges {
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
			s.traverseRecursive(ctx, next, edgeKinds, direction, maxDepth, depth+1, visited, results)
		}
	}
}

// Transact runs fn inside a single database transaction. The scoped
// store passed to fn shares the database handle but routes every
// statement through the transaction; Sync and Close are deferred to the
// outer store. Nested calls reuse the enclosing transaction.
func (s *SQLiteGraphStore) Transact(ctx context.Context, fn func(GraphStore) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	scoped := &SQLiteGraphStore{
		db:        s.db,
		q:         tx,
		dataDir:   s.dataDir,
		dbPath:    s.dbPath,
		nodesFile: s.nodesFile,
		edgesFile: s.edgesFile,
		inTx:      true,
	}

	if err := fn(scoped); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Sync exports nodes and edges to JSONL exchange files.
// Inside a transaction it is a no-op; the outer store syncs on Close.
func (s *SQLiteGraphStore) Sync(ctx context.Context) error {
	if s.inTx {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.exportNodesToJSONL(ctx); err != nil {
		return fmt.Errorf("failed to export nodes: %w", err)
	}
	if err := s.exportEdgesToJSONL(ctx); err != nil {
		return fmt.Errorf("failed to export edges: %w", err)
	}

	return nil
}

// Close syncs and closes the store.
func (s *SQLiteGraphStore) Close() error {
	if s.inTx {
		return nil
	}
	if err := s.Sync(context.Background()); err != nil {
		// Log but don't fail on sync error during close
		fmt.Fprintf(os.Stderr, "warning: failed to sync during close: %v\n", err)
	}
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
