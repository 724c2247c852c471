// Package mcp provides an MCP (Model Context Protocol) server for strata.
package mcp

// SelectedTagsInput defines the input for the strata_selected_tags tool.
type SelectedTagsInput struct {
	Configuration string `json:"configuration" jsonschema:"description=Name of the activation configuration root,required"`
}

// SelectedTagsOutput defines the output for the strata_selected_tags tool.
type SelectedTagsOutput struct {
	Tags  []TagSummary `json:"tags" jsonschema:"description=Active tags reachable through active branches"`
	Count int          `json:"count" jsonschema:"description=Number of selected tags"`
}

// TagSummary provides a client-facing view of a tag.
type TagSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Request     string `json:"request"`
	Description string `json:"description,omitempty"`
}

// AddTagInput defines the input for the strata_add_tag tool.
type AddTagInput struct {
	Name        string `json:"name" jsonschema:"description=Tag name,required"`
	ParentID    string `json:"parent_id" jsonschema:"description=ID of the use-case node to attach the tag to,required"`
	Request     string `json:"request" jsonschema:"description=Selection rule evaluated by the store backend,required"`
	Description string `json:"description,omitempty" jsonschema:"description=Human-readable description"`
	Active      bool   `json:"active,omitempty" jsonschema:"description=Whether the tag starts active (default: false)"`
}

// AddTagOutput defines the output for the strata_add_tag tool.
type AddTagOutput struct {
	ID      string `json:"id" jsonschema:"description=ID of the created tag node"`
	Message string `json:"message" jsonschema:"description=Human-readable result message"`
}

// SaveLevelsInput defines the input for the strata_save_levels tool.
type SaveLevelsInput struct {
	Application string `json:"application" jsonschema:"description=Application whose generated levels are captured,required"`
	Name        string `json:"name" jsonschema:"description=Name for the new save,required"`
}

// SaveLevelsOutput defines the output for the strata_save_levels tool.
type SaveLevelsOutput struct {
	SaveID    string `json:"save_id" jsonschema:"description=ID of the created save node"`
	Timestamp string `json:"timestamp" jsonschema:"description=Capture timestamp"`
	Captured  int    `json:"captured" jsonschema:"description=Total member objects captured across all generated levels"`
	Message   string `json:"message" jsonschema:"description=Human-readable result message"`
}

// ListSavesInput defines the input for the strata_list_saves tool.
type ListSavesInput struct {
	Application string `json:"application,omitempty" jsonschema:"description=Restrict the listing to one application"`
}

// ListSavesOutput defines the output for the strata_list_saves tool.
type ListSavesOutput struct {
	Saves []SaveSummary `json:"saves" jsonschema:"description=Save records"`
	Count int           `json:"count" jsonschema:"description=Number of saves"`
}

// SaveSummary provides a client-facing view of a save.
type SaveSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Application string `json:"application"`
	Timestamp   string `json:"timestamp"`
}

// RemoveSaveInput defines the input for the strata_remove_save tool.
// Exactly one of name, id, or all should be provided.
type RemoveSaveInput struct {
	Name string `json:"name,omitempty" jsonschema:"description=Name of the save to remove (fails when ambiguous)"`
	ID   string `json:"id,omitempty" jsonschema:"description=ID of the save to remove"`
	All  bool   `json:"all,omitempty" jsonschema:"description=Remove every save"`
}

// RemoveSaveOutput defines the output for the strata_remove_save tool.
type RemoveSaveOutput struct {
	Removed int    `json:"removed" jsonschema:"description=Number of saves removed"`
	Message string `json:"message" jsonschema:"description=Human-readable result message"`
}
