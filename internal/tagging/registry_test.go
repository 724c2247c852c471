package tagging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func addParentUseCase(t *testing.T, s store.GraphStore, id string) {
	t.Helper()
	_, err := s.AddNode(context.Background(), store.Node{
		ID:   id,
		Kind: models.KindUseCase,
		Props: map[string]interface{}{
			"name":   "shop",
			"active": true,
		},
	})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
}

func TestAddTag(t *testing.T) {
	s := store.NewInMemoryGraphStore()
	cfg := config.Default()
	reg := NewRegistry(s, cfg, testLogger())
	ctx := context.Background()

	addParentUseCase(t, s, "uc-1")

	tag, err := reg.AddTag(ctx, "legacy-io", true, "obj.type = 'file'", "legacy file access", "uc-1")
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if tag.ID == "" {
		t.Error("expected minted ID")
	}

	node, err := s.GetNode(ctx, tag.ID)
	if err != nil || node == nil {
		t.Fatalf("expected persisted tag node, got %v, %v", node, err)
	}
	if node.Props["request"] != "obj.type = 'file'" {
		t.Errorf("unexpected request prop: %v", node.Props["request"])
	}

	edges, err := s.GetEdges(ctx, "uc-1", store.DirectionOutbound, cfg.Graph.UseCaseToTagEdge)
	if err != nil {
		t.Fatalf("GetEdges failed: %v", err)
	}
	if len(edges) != 1 || edges[0].Target != tag.ID {
		t.Errorf("expected use-case-to-tag edge, got %v", edges)
	}
}

func TestAddTagParentNotFound(t *testing.T) {
	s := store.NewInMemoryGraphStore()
	reg := NewRegistry(s, config.Default(), testLogger())

	_, err := reg.AddTag(context.Background(), "x", false, "", "", "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddTagParentWrongKind(t *testing.T) {
	s := store.NewInMemoryGraphStore()
	cfg := config.Default()
	reg := NewRegistry(s, cfg, testLogger())
	ctx := context.Background()

	if _, err := s.AddNode(ctx, store.Node{ID: "level-1", Kind: models.KindLevel, Props: map[string]interface{}{"name": "L1", "full_name": "a##genL1"}}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}

	_, err := reg.AddTag(ctx, "x", false, "", "", "level-1")
	var badReq *models.BadRequestError
	if !errors.As(err, &badReq) {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
	if badReq.Code != "TAGC-ADDU1" {
		t.Errorf("expected code TAGC-ADDU1, got %s", badReq.Code)
	}

	// Nothing was created.
	nodes, _ := s.QueryNodes(ctx, map[string]interface{}{"kind": models.KindTag})
	if len(nodes) != 0 {
		t.Errorf("expected no tag nodes after rejection, got %d", len(nodes))
	}
}

func TestTagsForUseCase(t *testing.T) {
	s := store.NewInMemoryGraphStore()
	cfg := config.Default()
	reg := NewRegistry(s, cfg, testLogger())
	ctx := context.Background()

	addParentUseCase(t, s, "uc-1")
	t1, err := reg.AddTag(ctx, "alpha", true, "a", "", "uc-1")
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	t2, err := reg.AddTag(ctx, "beta", false, "b", "", "uc-1")
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}

	tags, err := reg.TagsForUseCase(ctx, "uc-1")
	if err != nil {
		t.Fatalf("TagsForUseCase failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(tags))
	}
	ids := map[string]bool{tags[0].ID: true, tags[1].ID: true}
	if !ids[t1.ID] || !ids[t2.ID] {
		t.Errorf("unexpected tags: %+v", tags)
	}
}

func TestTagsForUseCaseSkipsMalformed(t *testing.T) {
	s := store.NewInMemoryGraphStore()
	cfg := config.Default()
	reg := NewRegistry(s, cfg, testLogger())
	ctx := context.Background()

	addParentUseCase(t, s, "uc-1")
	if _, err := reg.AddTag(ctx, "good", true, "r", "", "uc-1"); err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	// Hand-planted node missing the request property.
	if _, err := s.AddNode(ctx, store.Node{ID: "broken", Kind: models.KindTag, Props: map[string]interface{}{"name": "broken"}}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if err := s.AddEdge(ctx, store.Edge{Source: "uc-1", Target: "broken", Kind: cfg.Graph.UseCaseToTagEdge}); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	tags, err := reg.TagsForUseCase(ctx, "uc-1")
	if err != nil {
		t.Fatalf("TagsForUseCase failed: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "good" {
		t.Errorf("expected only the well-formed tag, got %+v", tags)
	}
}

func TestActiveTags(t *testing.T) {
	s := store.NewInMemoryGraphStore()
	cfg := config.Default()
	reg := NewRegistry(s, cfg, testLogger())
	ctx := context.Background()

	addParentUseCase(t, s, "uc-1")
	active, err := reg.AddTag(ctx, "on", true, "r", "", "uc-1")
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if _, err := reg.AddTag(ctx, "off", false, "r", "", "uc-1"); err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}

	tags, err := reg.ActiveTags(ctx, "uc-1")
	if err != nil {
		t.Fatalf("ActiveTags failed: %v", err)
	}
	if len(tags) != 1 || tags[0].ID != active.ID {
		t.Errorf("expected only the active tag, got %+v", tags)
	}
}
