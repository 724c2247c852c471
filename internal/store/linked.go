package store

import (
	"context"
	"fmt"
)

// CreateLinked persists a node and an edge attaching it to an existing
// parent as one unit: inside a transaction when the store supports one,
// otherwise with a compensating node delete if the edge write fails.
// Callers never observe the node without its edge.
func CreateLinked(ctx context.Context, st GraphStore, node Node, edge Edge) error {
	if tx, ok := st.(Transactor); ok {
		return tx.Transact(ctx, func(s GraphStore) error {
			if _, err := s.AddNode(ctx, node); err != nil {
				return err
			}
			return s.AddEdge(ctx, edge)
		})
	}

	if _, err := st.AddNode(ctx, node); err != nil {
		return err
	}
	if err := st.AddEdge(ctx, edge); err != nil {
		if delErr := st.DeleteNode(ctx, node.ID); delErr != nil {
			return fmt.Errorf("edge creation failed (%v); orphan cleanup also failed: %w", err, delErr)
		}
		return err
	}
	return nil
}
