// Package models defines the typed records the controllers exchange and
// their conversions to and from graph store nodes.
package models

// Node kinds used across the graph.
const (
	KindUseCase   = "use-case"
	KindTag       = "tag"
	KindLevel     = "level"
	KindObject    = "object"
	KindOperation = "operation"
	KindSave      = "save"
)

// UseCase is a node in the activation tree. Its Active flag is stored
// per-node; effective activation is decided by the traversal policy, not
// inherited from the parent.
type UseCase struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Tag is a leaf attached to exactly one use case. Request is the
// selection rule: opaque predicate text evaluated by the store
// collaborator, never interpreted here.
type Tag struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
	Request     string `json:"request"`
	Description string `json:"description,omitempty"`
}

// Level is an externally generated grouping of base objects. Levels
// whose full name carries the reserved generated marker participate in
// snapshotting; all others are user-authored and out of snapshot scope.
type Level struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Application string `json:"application"`
}

// Operation is a per-level capture record: the level's name plus the
// full names of the base objects it aggregated at capture time.
// Immutable after creation.
type Operation struct {
	ID             string   `json:"id"`
	LevelName      string   `json:"level_name"`
	GroupedObjects []string `json:"grouped_objects"`
}

// Save is a named, timestamped snapshot record scoped to one
// application. It exclusively owns its operations; save names are not
// required to be unique, callers disambiguate by ID.
type Save struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Application string `json:"application"`
	Timestamp   string `json:"timestamp"` // "2006-01-02 15:04:05", opaque sortable string
}
