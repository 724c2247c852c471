// Package usecase manages the activation tree: a hierarchy of use-case
// nodes whose active flags scope which tags are live for downstream
// classification.
package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/store"
)

// Resolver walks the use-case tree and reports which tags are selected
// under the current activation state.
type Resolver struct {
	store store.GraphStore
	cfg   *config.Config
	log   *slog.Logger
}

// NewResolver creates a resolver over the given store.
func NewResolver(st store.GraphStore, cfg *config.Config, log *slog.Logger) *Resolver {
	return &Resolver{store: st, cfg: cfg, log: log}
}

// SelectedTags returns all active tags reachable through the active
// branches of the use-case tree rooted at configName. The root is
// entered unconditionally; a use-case edge is followed only when the
// child's active flag is set. Tag nodes that fail conversion are logged
// and dropped rather than aborting the whole query; the final result
// contains only tags whose own active flag is true.
func (r *Resolver) SelectedTags(ctx context.Context, configName string) ([]models.Tag, error) {
	root, err := r.findRoot(ctx, configName)
	if err != nil {
		return nil, err
	}

	tagNodes, err := r.activeBranchTags(ctx, root.ID)
	if err != nil {
		return nil, err
	}

	selected := make([]models.Tag, 0, len(tagNodes))
	for _, n := range tagNodes {
		tag, err := models.TagFromNode(n)
		if err != nil {
			r.log.Warn("dropping tag node during discovery", "node", n.ID, "error", err)
			continue
		}
		if tag.Active {
			selected = append(selected, tag)
		}
	}

	return selected, nil
}

// findRoot locates the distinguished root of the configuration tree:
// the use-case node carrying the configuration name with no inbound
// tree edge.
func (r *Resolver) findRoot(ctx context.Context, configName string) (*models.UseCase, error) {
	candidates, err := r.store.QueryNodes(ctx, map[string]interface{}{
		"kind": models.KindUseCase,
		"name": configName,
	})
	if err != nil {
		return nil, &models.QueryError{Op: "find configuration root", Err: err}
	}

	var roots []models.UseCase
	for _, n := range candidates {
		inbound, err := r.store.GetEdges(ctx, n.ID, store.DirectionInbound, r.cfg.Graph.UseCaseToUseCaseEdge)
		if err != nil {
			return nil, &models.QueryError{Op: "check root inbound edges", Err: err}
		}
		if len(inbound) > 0 {
			continue
		}
		uc, err := models.UseCaseFromNode(n)
		if err != nil {
			r.log.Warn("dropping malformed use case while locating root", "node", n.ID, "error", err)
			continue
		}
		roots = append(roots, uc)
	}

	switch len(roots) {
	case 0:
		return nil, fmt.Errorf("configuration %q: %w", configName, models.ErrNotFound)
	case 1:
		return &roots[0], nil
	default:
		return nil, &models.BadRequestError{
			Code: "ACTR-ROOT1",
			Msg:  fmt.Sprintf("configuration %q has %d roots, expected exactly one", configName, len(roots)),
		}
	}
}

// activeBranchTags walks the tree breadth-first from rootID, following
// use-case edges only into children whose active flag is set, and
// collects the tag nodes hanging off every entered use case.
func (r *Resolver) activeBranchTags(ctx context.Context, rootID string) ([]store.Node, error) {
	visited := make(map[string]bool)
	queue := []string{rootID}
	var tags []store.Node

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		tagEdges, err := r.store.GetEdges(ctx, current, store.DirectionOutbound, r.cfg.Graph.UseCaseToTagEdge)
		if err != nil {
			return nil, &models.QueryError{Op: "collect tag edges", Err: err}
		}
		for _, e := range tagEdges {
			node, err := r.store.GetNode(ctx, e.Target)
			if err != nil {
				return nil, &models.QueryError{Op: "resolve tag node", Err: err}
			}
			if node == nil {
				r.log.Warn("dangling tag edge", "use_case", current, "target", e.Target)
				continue
			}
			tags = append(tags, *node)
		}

		childEdges, err := r.store.GetEdges(ctx, current, store.DirectionOutbound, r.cfg.Graph.UseCaseToUseCaseEdge)
		if err != nil {
			return nil, &models.QueryError{Op: "collect child edges", Err: err}
		}
		for _, e := range childEdges {
			node, err := r.store.GetNode(ctx, e.Target)
			if err != nil {
				return nil, &models.QueryError{Op: "resolve child use case", Err: err}
			}
			if node == nil {
				r.log.Warn("dangling use-case edge", "use_case", current, "target", e.Target)
				continue
			}
			child, err := models.UseCaseFromNode(*node)
			if err != nil {
				r.log.Warn("dropping malformed use case during traversal", "node", node.ID, "error", err)
				continue
			}
			if child.Active {
				queue = append(queue, child.ID)
			}
		}
	}

	return tags, nil
}
