package snapshot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/logging"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/store"
)

// errCodeAmbiguousSaveName is returned when a name-addressed removal
// matches more than one save.
const errCodeAmbiguousSaveName = "CATC-RMSV1"

// Catalog lists and removes save records. Removing a save also removes
// the operations it exclusively owns.
type Catalog struct {
	store store.GraphStore
	cfg   *config.Config
	log   *slog.Logger
	audit *logging.AuditLogger
}

// NewCatalog creates a save catalog over the given store. audit may be
// nil.
func NewCatalog(st store.GraphStore, cfg *config.Config, log *slog.Logger, audit *logging.AuditLogger) *Catalog {
	return &Catalog{store: st, cfg: cfg, log: log, audit: audit}
}

// AllSaves returns every save record in the store. Malformed save nodes
// are logged and skipped.
func (c *Catalog) AllSaves(ctx context.Context) ([]models.Save, error) {
	return c.querySaves(ctx, map[string]interface{}{"kind": models.KindSave})
}

// SavesByApplication returns the save records scoped to application.
func (c *Catalog) SavesByApplication(ctx context.Context, application string) ([]models.Save, error) {
	return c.querySaves(ctx, map[string]interface{}{
		"kind":        models.KindSave,
		"application": application,
	})
}

func (c *Catalog) querySaves(ctx context.Context, predicate map[string]interface{}) ([]models.Save, error) {
	nodes, err := c.store.QueryNodes(ctx, predicate)
	if err != nil {
		return nil, &models.QueryError{Op: "query saves", Err: err}
	}

	saves := make([]models.Save, 0, len(nodes))
	for _, n := range nodes {
		sv, err := models.SaveFromNode(n)
		if err != nil {
			c.log.Warn("dropping malformed save", "node", n.ID, "error", err)
			continue
		}
		saves = append(saves, sv)
	}
	return saves, nil
}

// RemoveSave removes the save named name along with its operations.
// Returns false when no save carries that name. When more than one save
// does, nothing is removed and a BadRequestError is returned; use
// RemoveSaveByID to disambiguate.
func (c *Catalog) RemoveSave(ctx context.Context, name string) (bool, error) {
	nodes, err := c.store.QueryNodes(ctx, map[string]interface{}{
		"kind": models.KindSave,
		"name": name,
	})
	if err != nil {
		return false, &models.QueryError{Op: "query saves", Err: err}
	}

	switch len(nodes) {
	case 0:
		return false, nil
	case 1:
		return c.removeByID(ctx, nodes[0].ID)
	default:
		return false, &models.BadRequestError{
			Code: errCodeAmbiguousSaveName,
			Msg:  fmt.Sprintf("%d saves named %q exist, remove by ID instead", len(nodes), name),
		}
	}
}

// RemoveSaveByID removes the save with the given node ID along with its
// operations. Returns false when no such save exists.
func (c *Catalog) RemoveSaveByID(ctx context.Context, id string) (bool, error) {
	node, err := c.store.GetNode(ctx, id)
	if err != nil {
		return false, &models.QueryError{Op: "resolve save", Err: err}
	}
	if node == nil || node.Kind != models.KindSave {
		return false, nil
	}
	return c.removeByID(ctx, id)
}

// RemoveAllSaves removes every save record and its operations, returning
// the number of saves removed.
func (c *Catalog) RemoveAllSaves(ctx context.Context) (int, error) {
	nodes, err := c.store.QueryNodes(ctx, map[string]interface{}{"kind": models.KindSave})
	if err != nil {
		return 0, &models.QueryError{Op: "query saves", Err: err}
	}

	removed := 0
	for _, n := range nodes {
		ok, err := c.removeByID(ctx, n.ID)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}

	c.audit.Log(map[string]any{
		"event": "remove_all_saves",
		"saves": removed,
	})
	return removed, nil
}

func (c *Catalog) removeByID(ctx context.Context, id string) (bool, error) {
	var ops int
	var err error
	if tx, ok := c.store.(store.Transactor); ok {
		err = tx.Transact(ctx, func(s store.GraphStore) error {
			ops, err = removeSaveCascade(ctx, s, c.cfg, id)
			return err
		})
	} else {
		ops, err = removeSaveCascade(ctx, c.store, c.cfg, id)
	}
	if err != nil {
		return false, err
	}

	c.audit.Log(map[string]any{
		"event":      "remove_save",
		"save":       id,
		"operations": ops,
	})
	c.log.Info("save removed", "save", id, "operations", ops)
	return true, nil
}

// removeSaveCascade deletes the save node and the operation nodes
// pointing at it, returning the number of operations deleted.
func removeSaveCascade(ctx context.Context, s store.GraphStore, cfg *config.Config, saveID string) (int, error) {
	edges, err := s.GetEdges(ctx, saveID, store.DirectionInbound, cfg.Graph.OperationToSaveEdge)
	if err != nil {
		return 0, &models.QueryError{Op: "collect save operations", Err: err}
	}

	ops := 0
	for _, e := range edges {
		if err := s.DeleteNode(ctx, e.Source); err != nil {
			return ops, &models.QueryError{Op: "delete operation", Err: err}
		}
		ops++
	}
	if err := s.DeleteNode(ctx, saveID); err != nil {
		return ops, &models.QueryError{Op: "delete save", Err: err}
	}
	return ops, nil
}
