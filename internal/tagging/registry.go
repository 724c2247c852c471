// Package tagging manages tag nodes: named selection rules attached to
// use cases in the activation tree.
package tagging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/store"
)

// errCodeParentNotUseCase is returned when a tag's parent resolves to a
// node of a different kind.
const errCodeParentNotUseCase = "TAGC-ADDU1"

// Registry creates and reads tag nodes under use cases.
type Registry struct {
	store store.GraphStore
	cfg   *config.Config
	log   *slog.Logger
}

// NewRegistry creates a tag registry over the given store.
func NewRegistry(st store.GraphStore, cfg *config.Config, log *slog.Logger) *Registry {
	return &Registry{store: st, cfg: cfg, log: log}
}

// AddTag creates a tag node and attaches it under the use case parentID.
// The parent must exist and be a use-case node. The tag node and its
// edge are created together or not at all.
func (g *Registry) AddTag(ctx context.Context, name string, active bool, request, description, parentID string) (models.Tag, error) {
	parent, err := g.store.GetNode(ctx, parentID)
	if err != nil {
		return models.Tag{}, &models.QueryError{Op: "resolve tag parent", Err: err}
	}
	if parent == nil {
		return models.Tag{}, fmt.Errorf("parent %q: %w", parentID, models.ErrNotFound)
	}
	if parent.Kind != models.KindUseCase {
		return models.Tag{}, &models.BadRequestError{
			Code: errCodeParentNotUseCase,
			Msg:  fmt.Sprintf("can only attach a %s node to a %s node, parent %s is %s", models.KindTag, models.KindUseCase, parent.ID, parent.Kind),
		}
	}

	tag := models.Tag{Name: name, Active: active, Request: request, Description: description}
	node := models.TagToNode(tag)
	edge := store.Edge{Source: parent.ID, Target: node.ID, Kind: g.cfg.Graph.UseCaseToTagEdge}
	if err := store.CreateLinked(ctx, g.store, node, edge); err != nil {
		return models.Tag{}, &models.QueryError{Op: "create tag", Err: err}
	}

	tag.ID = node.ID
	return tag, nil
}

// TagsForUseCase returns the tags attached directly to the use case
// parentID, in store iteration order. Malformed tag nodes are logged and
// skipped.
func (g *Registry) TagsForUseCase(ctx context.Context, parentID string) ([]models.Tag, error) {
	edges, err := g.store.GetEdges(ctx, parentID, store.DirectionOutbound, g.cfg.Graph.UseCaseToTagEdge)
	if err != nil {
		return nil, &models.QueryError{Op: "collect tag edges", Err: err}
	}

	tags := make([]models.Tag, 0, len(edges))
	for _, e := range edges {
		node, err := g.store.GetNode(ctx, e.Target)
		if err != nil {
			return nil, &models.QueryError{Op: "resolve tag node", Err: err}
		}
		if node == nil {
			g.log.Warn("dangling tag edge", "use_case", parentID, "target", e.Target)
			continue
		}
		tag, err := models.TagFromNode(*node)
		if err != nil {
			g.log.Warn("dropping malformed tag", "node", node.ID, "error", err)
			continue
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

// ActiveTags returns the subset of TagsForUseCase whose active flag is
// set.
func (g *Registry) ActiveTags(ctx context.Context, parentID string) ([]models.Tag, error) {
	tags, err := g.TagsForUseCase(ctx, parentID)
	if err != nil {
		return nil, err
	}
	active := tags[:0]
	for _, t := range tags {
		if t.Active {
			active = append(active, t)
		}
	}
	return active, nil
}
