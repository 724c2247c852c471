package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/store"
)

// Error codes for use-case registry validation failures.
const (
	errCodeParentNotUseCase = "USEC-ADDU1"
	errCodeDuplicateRoot    = "USEC-ADDR1"
)

// Registry creates and maintains use-case nodes in the activation tree.
type Registry struct {
	store store.GraphStore
	cfg   *config.Config
	log   *slog.Logger
}

// NewRegistry creates a use-case registry over the given store.
func NewRegistry(st store.GraphStore, cfg *config.Config, log *slog.Logger) *Registry {
	return &Registry{store: st, cfg: cfg, log: log}
}

// AddUseCase creates a use-case node. With an empty parentID the node
// becomes a configuration root; the name must not collide with an
// existing root. Otherwise parentID must resolve to a use-case node and
// the new node is linked beneath it. The node and its tree edge are
// created together or not at all.
func (g *Registry) AddUseCase(ctx context.Context, name string, active bool, parentID string) (models.UseCase, error) {
	node := models.UseCaseToNode(models.UseCase{Name: name, Active: active})

	if parentID == "" {
		if err := g.checkRootName(ctx, name); err != nil {
			return models.UseCase{}, err
		}
		if _, err := g.store.AddNode(ctx, node); err != nil {
			return models.UseCase{}, &models.QueryError{Op: "create use case", Err: err}
		}
		return models.UseCase{ID: node.ID, Name: name, Active: active}, nil
	}

	parent, err := g.store.GetNode(ctx, parentID)
	if err != nil {
		return models.UseCase{}, &models.QueryError{Op: "resolve use-case parent", Err: err}
	}
	if parent == nil {
		return models.UseCase{}, fmt.Errorf("parent %q: %w", parentID, models.ErrNotFound)
	}
	if parent.Kind != models.KindUseCase {
		return models.UseCase{}, &models.BadRequestError{
			Code: errCodeParentNotUseCase,
			Msg:  fmt.Sprintf("can only attach a %s node to a %s node, parent %s is %s", models.KindUseCase, models.KindUseCase, parent.ID, parent.Kind),
		}
	}

	edge := store.Edge{Source: parent.ID, Target: node.ID, Kind: g.cfg.Graph.UseCaseToUseCaseEdge}
	if err := store.CreateLinked(ctx, g.store, node, edge); err != nil {
		return models.UseCase{}, &models.QueryError{Op: "create use case", Err: err}
	}

	return models.UseCase{ID: node.ID, Name: name, Active: active}, nil
}

// checkRootName enforces the one-root-per-configuration-name invariant.
func (g *Registry) checkRootName(ctx context.Context, name string) error {
	existing, err := g.store.QueryNodes(ctx, map[string]interface{}{
		"kind": models.KindUseCase,
		"name": name,
	})
	if err != nil {
		return &models.QueryError{Op: "check root name", Err: err}
	}
	for _, n := range existing {
		inbound, err := g.store.GetEdges(ctx, n.ID, store.DirectionInbound, g.cfg.Graph.UseCaseToUseCaseEdge)
		if err != nil {
			return &models.QueryError{Op: "check root name", Err: err}
		}
		if len(inbound) == 0 {
			return &models.BadRequestError{
				Code: errCodeDuplicateRoot,
				Msg:  fmt.Sprintf("a configuration root named %q already exists", name),
			}
		}
	}
	return nil
}

// SetActivation flips a use case's active flag and returns the updated
// record.
func (g *Registry) SetActivation(ctx context.Context, id string, active bool) (models.UseCase, error) {
	node, err := g.store.GetNode(ctx, id)
	if err != nil {
		return models.UseCase{}, &models.QueryError{Op: "resolve use case", Err: err}
	}
	if node == nil {
		return models.UseCase{}, fmt.Errorf("use case %q: %w", id, models.ErrNotFound)
	}

	uc, err := models.UseCaseFromNode(*node)
	if err != nil {
		return models.UseCase{}, err
	}
	uc.Active = active

	updated := models.UseCaseToNode(uc)
	if _, err := g.store.AddNode(ctx, updated); err != nil {
		return models.UseCase{}, &models.QueryError{Op: "update use case", Err: err}
	}

	return uc, nil
}

// Children returns the direct child use cases of id, in store iteration
// order. Malformed children are logged and skipped.
func (g *Registry) Children(ctx context.Context, id string) ([]models.UseCase, error) {
	edges, err := g.store.GetEdges(ctx, id, store.DirectionOutbound, g.cfg.Graph.UseCaseToUseCaseEdge)
	if err != nil {
		return nil, &models.QueryError{Op: "collect child edges", Err: err}
	}

	children := make([]models.UseCase, 0, len(edges))
	for _, e := range edges {
		node, err := g.store.GetNode(ctx, e.Target)
		if err != nil {
			return nil, &models.QueryError{Op: "resolve child use case", Err: err}
		}
		if node == nil {
			continue
		}
		child, err := models.UseCaseFromNode(*node)
		if err != nil {
			g.log.Warn("dropping malformed child use case", "node", node.ID, "error", err)
			continue
		}
		children = append(children, child)
	}

	return children, nil
}
