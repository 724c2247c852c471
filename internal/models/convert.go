package models

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jmourtada/strata/internal/store"
)

// MintID generates a fresh node identifier for the given kind.
func MintID(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.NewString())
}

// UseCaseFromNode converts a store node to a UseCase record.
func UseCaseFromNode(n store.Node) (UseCase, error) {
	if n.Kind != KindUseCase {
		return UseCase{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "expected kind " + KindUseCase}
	}
	name, ok := n.Props["name"].(string)
	if !ok || name == "" {
		return UseCase{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing name property"}
	}
	return UseCase{
		ID:     n.ID,
		Name:   name,
		Active: boolProp(n.Props, "active"),
	}, nil
}

// UseCaseToNode converts a UseCase record to a store node, minting an ID
// when the record has none.
func UseCaseToNode(uc UseCase) store.Node {
	id := uc.ID
	if id == "" {
		id = MintID(KindUseCase)
	}
	return store.Node{
		ID:   id,
		Kind: KindUseCase,
		Props: map[string]interface{}{
			"name":   uc.Name,
			"active": uc.Active,
		},
	}
}

// TagFromNode converts a store node to a Tag record.
func TagFromNode(n store.Node) (Tag, error) {
	if n.Kind != KindTag {
		return Tag{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "expected kind " + KindTag}
	}
	name, ok := n.Props["name"].(string)
	if !ok || name == "" {
		return Tag{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing name property"}
	}
	request, ok := n.Props["request"].(string)
	if !ok {
		return Tag{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing request property"}
	}
	description, _ := n.Props["description"].(string)
	return Tag{
		ID:          n.ID,
		Name:        name,
		Active:      boolProp(n.Props, "active"),
		Request:     request,
		Description: description,
	}, nil
}

// TagToNode converts a Tag record to a store node, minting an ID when
// the record has none.
func TagToNode(t Tag) store.Node {
	id := t.ID
	if id == "" {
		id = MintID(KindTag)
	}
	return store.Node{
		ID:   id,
		Kind: KindTag,
		Props: map[string]interface{}{
			"name":        t.Name,
			"active":      t.Active,
			"request":     t.Request,
			"description": t.Description,
		},
	}
}

// LevelFromNode converts a store node to a Level record.
func LevelFromNode(n store.Node) (Level, error) {
	if n.Kind != KindLevel {
		return Level{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "expected kind " + KindLevel}
	}
	name, ok := n.Props["name"].(string)
	if !ok || name == "" {
		return Level{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing name property"}
	}
	fullName, ok := n.Props["full_name"].(string)
	if !ok || fullName == "" {
		return Level{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing full_name property"}
	}
	application, _ := n.Props["application"].(string)
	return Level{
		ID:          n.ID,
		Name:        name,
		FullName:    fullName,
		Application: application,
	}, nil
}

// LevelToNode converts a Level record to a store node, minting an ID
// when the record has none.
func LevelToNode(l Level) store.Node {
	id := l.ID
	if id == "" {
		id = MintID(KindLevel)
	}
	return store.Node{
		ID:   id,
		Kind: KindLevel,
		Props: map[string]interface{}{
			"name":        l.Name,
			"full_name":   l.FullName,
			"application": l.Application,
		},
	}
}

// OperationFromNode converts a store node to an Operation record.
func OperationFromNode(n store.Node) (Operation, error) {
	if n.Kind != KindOperation {
		return Operation{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "expected kind " + KindOperation}
	}
	levelName, ok := n.Props["level_name"].(string)
	if !ok || levelName == "" {
		return Operation{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing level_name property"}
	}
	grouped, err := stringSliceProp(n.Props, "grouped_objects")
	if err != nil {
		return Operation{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: err.Error()}
	}
	return Operation{
		ID:             n.ID,
		LevelName:      levelName,
		GroupedObjects: grouped,
	}, nil
}

// OperationToNode converts an Operation record to a store node, minting
// an ID when the record has none.
func OperationToNode(op Operation) store.Node {
	id := op.ID
	if id == "" {
		id = MintID(KindOperation)
	}
	return store.Node{
		ID:   id,
		Kind: KindOperation,
		Props: map[string]interface{}{
			"level_name":      op.LevelName,
			"grouped_objects": op.GroupedObjects,
		},
	}
}

// SaveFromNode converts a store node to a Save record.
func SaveFromNode(n store.Node) (Save, error) {
	if n.Kind != KindSave {
		return Save{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "expected kind " + KindSave}
	}
	name, ok := n.Props["name"].(string)
	if !ok || name == "" {
		return Save{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing name property"}
	}
	application, ok := n.Props["application"].(string)
	if !ok || application == "" {
		return Save{}, &MalformedNodeError{NodeID: n.ID, Kind: n.Kind, Reason: "missing application property"}
	}
	timestamp, _ := n.Props["timestamp"].(string)
	return Save{
		ID:          n.ID,
		Name:        name,
		Application: application,
		Timestamp:   timestamp,
	}, nil
}

// SaveToNode converts a Save record to a store node, minting an ID when
// the record has none.
func SaveToNode(sv Save) store.Node {
	id := sv.ID
	if id == "" {
		id = MintID(KindSave)
	}
	return store.Node{
		ID:   id,
		Kind: KindSave,
		Props: map[string]interface{}{
			"name":        sv.Name,
			"application": sv.Application,
			"timestamp":   sv.Timestamp,
		},
	}
}

// boolProp reads a boolean property, treating absence as false.
func boolProp(props map[string]interface{}, key string) bool {
	v, ok := props[key].(bool)
	return ok && v
}

// stringSliceProp reads a string-slice property. JSON round-trips through
// the SQLite store decode slices as []interface{}, so both shapes are
// accepted.
func stringSliceProp(props map[string]interface{}, key string) ([]string, error) {
	raw, ok := props[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string entry in %s property", key)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s property is not a list", key)
	}
}
