package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmourtada/strata/internal/store"
)

func TestMintID(t *testing.T) {
	id := MintID(KindTag)
	if !strings.HasPrefix(id, "tag-") {
		t.Errorf("expected tag- prefix, got %s", id)
	}
	if id == MintID(KindTag) {
		t.Error("expected minted IDs to differ")
	}
}

func TestUseCaseFromNode(t *testing.T) {
	tests := []struct {
		name    string
		node    store.Node
		wantErr bool
	}{
		{
			name: "valid",
			node: store.Node{ID: "uc-1", Kind: KindUseCase, Props: map[string]interface{}{"name": "shop", "active": true}},
		},
		{
			name:    "wrong kind",
			node:    store.Node{ID: "t-1", Kind: KindTag, Props: map[string]interface{}{"name": "x"}},
			wantErr: true,
		},
		{
			name:    "missing name",
			node:    store.Node{ID: "uc-2", Kind: KindUseCase, Props: map[string]interface{}{"active": true}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, err := UseCaseFromNode(tt.node)
			if tt.wantErr {
				var malformed *MalformedNodeError
				if !errors.As(err, &malformed) {
					t.Fatalf("expected MalformedNodeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if uc.Name != "shop" || !uc.Active {
				t.Errorf("unexpected record: %+v", uc)
			}
		})
	}
}

func TestUseCaseFromNodeMissingActiveDefaultsFalse(t *testing.T) {
	uc, err := UseCaseFromNode(store.Node{ID: "uc-1", Kind: KindUseCase, Props: map[string]interface{}{"name": "shop"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uc.Active {
		t.Error("absent active flag should read as false")
	}
}

func TestTagRoundTrip(t *testing.T) {
	tag := Tag{Name: "legacy-io", Active: true, Request: "obj.type = 'file'", Description: "legacy file access"}
	node := TagToNode(tag)
	if node.ID == "" {
		t.Fatal("expected minted ID")
	}

	got, err := TagFromNode(node)
	if err != nil {
		t.Fatalf("TagFromNode failed: %v", err)
	}
	tag.ID = node.ID
	if got != tag {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, tag)
	}
}

func TestTagFromNodeRequiresRequest(t *testing.T) {
	node := store.Node{ID: "t-1", Kind: KindTag, Props: map[string]interface{}{"name": "x", "active": true}}
	if _, err := TagFromNode(node); err == nil {
		t.Error("expected error for missing request property")
	}
}

func TestLevelFromNodeRequiresFullName(t *testing.T) {
	node := store.Node{ID: "l-1", Kind: KindLevel, Props: map[string]interface{}{"name": "L1"}}
	if _, err := LevelFromNode(node); err == nil {
		t.Error("expected error for missing full_name property")
	}
}

func TestOperationFromNodeGroupedShapes(t *testing.T) {
	// The SQLite store round-trips props through JSON, so a stored
	// []string comes back as []interface{}.
	tests := []struct {
		name    string
		grouped interface{}
		want    int
		wantErr bool
	}{
		{"string slice", []string{"a.B", "a.C"}, 2, false},
		{"interface slice", []interface{}{"a.B", "a.C", "a.D"}, 3, false},
		{"absent", nil, 0, false},
		{"non-string entry", []interface{}{"a.B", 7}, 0, true},
		{"not a list", "a.B", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := map[string]interface{}{"level_name": "L1"}
			if tt.grouped != nil {
				props["grouped_objects"] = tt.grouped
			}
			op, err := OperationFromNode(store.Node{ID: "op-1", Kind: KindOperation, Props: props})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(op.GroupedObjects) != tt.want {
				t.Errorf("expected %d grouped objects, got %d", tt.want, len(op.GroupedObjects))
			}
		})
	}
}

func TestSaveFromNode(t *testing.T) {
	node := SaveToNode(Save{Name: "before-upgrade", Application: "shop", Timestamp: "2026-01-02 15:04:05"})
	sv, err := SaveFromNode(node)
	if err != nil {
		t.Fatalf("SaveFromNode failed: %v", err)
	}
	if sv.Application != "shop" || sv.Timestamp != "2026-01-02 15:04:05" {
		t.Errorf("unexpected record: %+v", sv)
	}

	broken := store.Node{ID: "s-1", Kind: KindSave, Props: map[string]interface{}{"name": "x"}}
	if _, err := SaveFromNode(broken); err == nil {
		t.Error("expected error for missing application property")
	}
}
