package mcp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/jmourtada/strata/internal/config"
	"github.com/jmourtada/strata/internal/models"
	"github.com/jmourtada/strata/internal/snapshot"
	"github.com/jmourtada/strata/internal/store"
	"github.com/jmourtada/strata/internal/tagging"
	"github.com/jmourtada/strata/internal/usecase"
)

// newTestServer wires a server over an in-memory store, skipping the
// SQLite and transport setup.
func newTestServer(t *testing.T) (*Server, store.GraphStore) {
	t.Helper()
	s := store.NewInMemoryGraphStore()
	cfg := config.Default()
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	srv := &Server{
		store:    s,
		log:      log,
		resolver: usecase.NewResolver(s, cfg, log),
		tags:     tagging.NewRegistry(s, cfg, log),
		manager:  snapshot.NewManager(s, cfg, log, nil),
		catalog:  snapshot.NewCatalog(s, cfg, log, nil),
	}
	return srv, s
}

// seedLevelWithObject plants one generated level aggregating one object
// for "shop".
func seedLevelWithObject(t *testing.T, s store.GraphStore) {
	t.Helper()
	ctx := context.Background()
	cfg := config.Default()

	_, err := s.AddNode(ctx, store.Node{
		ID:   "level-1",
		Kind: models.KindLevel,
		Props: map[string]interface{}{
			"name":        "L1",
			"full_name":   "shop##genL1",
			"application": "shop",
		},
	})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	_, err = s.AddNode(ctx, store.Node{
		ID:   "obj-1",
		Kind: cfg.Graph.ObjectKind,
		Props: map[string]interface{}{
			cfg.Graph.ObjectFullNameProp: "shop.pkg.A",
		},
	})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	if err := s.AddEdge(ctx, store.Edge{Source: "level-1", Target: "obj-1", Kind: cfg.Graph.AggregatesEdge}); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}
}

func seedUseCase(t *testing.T, s store.GraphStore, id, name string, active bool) {
	t.Helper()
	_, err := s.AddNode(context.Background(), store.Node{
		ID:   id,
		Kind: models.KindUseCase,
		Props: map[string]interface{}{
			"name":   name,
			"active": active,
		},
	})
	if err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
}

func TestHandleAddTagAndSelectedTags(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()

	seedUseCase(t, s, "uc-1", "shop", true)

	_, added, err := srv.handleAddTag(ctx, nil, AddTagInput{
		Name:     "legacy-io",
		ParentID: "uc-1",
		Request:  "obj.type = 'file'",
		Active:   true,
	})
	if err != nil {
		t.Fatalf("handleAddTag failed: %v", err)
	}
	if added.ID == "" {
		t.Error("expected tag ID in output")
	}

	_, selected, err := srv.handleSelectedTags(ctx, nil, SelectedTagsInput{Configuration: "shop"})
	if err != nil {
		t.Fatalf("handleSelectedTags failed: %v", err)
	}
	if selected.Count != 1 || selected.Tags[0].Name != "legacy-io" {
		t.Errorf("unexpected selection: %+v", selected)
	}
}

func TestHandleAddTagValidation(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()

	if _, _, err := srv.handleAddTag(ctx, nil, AddTagInput{Name: "x"}); err == nil {
		t.Error("expected error for missing parent_id")
	}

	// Wrong parent kind surfaces the registry's diagnostic code.
	if _, err := s.AddNode(ctx, store.Node{ID: "save-1", Kind: models.KindSave, Props: map[string]interface{}{"name": "s", "application": "a"}}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	_, _, err := srv.handleAddTag(ctx, nil, AddTagInput{Name: "x", ParentID: "save-1"})
	var badReq *models.BadRequestError
	if !errors.As(err, &badReq) || badReq.Code != "TAGC-ADDU1" {
		t.Errorf("expected TAGC-ADDU1, got %v", err)
	}
}

func TestHandleSaveLevelsAndListSaves(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()

	seedLevelWithObject(t, s)

	_, saved, err := srv.handleSaveLevels(ctx, nil, SaveLevelsInput{Application: "shop", Name: "before-upgrade"})
	if err != nil {
		t.Fatalf("handleSaveLevels failed: %v", err)
	}
	if saved.Captured != 1 {
		t.Errorf("expected 1 captured object, got %d", saved.Captured)
	}

	_, listed, err := srv.handleListSaves(ctx, nil, ListSavesInput{})
	if err != nil {
		t.Fatalf("handleListSaves failed: %v", err)
	}
	if listed.Count != 1 || listed.Saves[0].Name != "before-upgrade" {
		t.Errorf("unexpected listing: %+v", listed)
	}

	_, scoped, err := srv.handleListSaves(ctx, nil, ListSavesInput{Application: "crm"})
	if err != nil {
		t.Fatalf("handleListSaves failed: %v", err)
	}
	if scoped.Count != 0 {
		t.Errorf("expected no crm saves, got %d", scoped.Count)
	}
}

func TestHandleRemoveSave(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()

	seedLevelWithObject(t, s)
	if _, _, err := srv.handleSaveLevels(ctx, nil, SaveLevelsInput{Application: "shop", Name: "s1"}); err != nil {
		t.Fatalf("handleSaveLevels failed: %v", err)
	}

	if _, _, err := srv.handleRemoveSave(ctx, nil, RemoveSaveInput{}); err == nil {
		t.Error("expected error when no selector given")
	}

	_, out, err := srv.handleRemoveSave(ctx, nil, RemoveSaveInput{Name: "s1"})
	if err != nil {
		t.Fatalf("handleRemoveSave failed: %v", err)
	}
	if out.Removed != 1 {
		t.Errorf("expected 1 removed, got %d", out.Removed)
	}

	_, again, err := srv.handleRemoveSave(ctx, nil, RemoveSaveInput{Name: "s1"})
	if err != nil {
		t.Fatalf("handleRemoveSave failed: %v", err)
	}
	if again.Removed != 0 {
		t.Errorf("expected 0 removed on second attempt, got %d", again.Removed)
	}
}
