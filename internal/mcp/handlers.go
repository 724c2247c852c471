package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools registers all strata MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strata_selected_tags",
		Description: "Get the active tags selected by the current activation state of a configuration tree",
	}, s.handleSelectedTags)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strata_add_tag",
		Description: "Create a tag under a use case in the activation tree",
	}, s.handleAddTag)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strata_save_levels",
		Description: "Capture a snapshot of an application's generated levels into a named save",
	}, s.handleSaveLevels)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strata_list_saves",
		Description: "List save records, optionally scoped to one application",
	}, s.handleListSaves)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "strata_remove_save",
		Description: "Remove one save by name or ID, or every save, along with the operations each save owns",
	}, s.handleRemoveSave)

	return nil
}

// handleSelectedTags implements the strata_selected_tags tool.
func (s *Server) handleSelectedTags(ctx context.Context, req *sdk.CallToolRequest, args SelectedTagsInput) (*sdk.CallToolResult, SelectedTagsOutput, error) {
	if args.Configuration == "" {
		return nil, SelectedTagsOutput{}, fmt.Errorf("configuration is required")
	}

	tags, err := s.resolver.SelectedTags(ctx, args.Configuration)
	if err != nil {
		return nil, SelectedTagsOutput{}, err
	}

	out := SelectedTagsOutput{
		Tags:  make([]TagSummary, 0, len(tags)),
		Count: len(tags),
	}
	for _, t := range tags {
		out.Tags = append(out.Tags, TagSummary{
			ID:          t.ID,
			Name:        t.Name,
			Request:     t.Request,
			Description: t.Description,
		})
	}
	return nil, out, nil
}

// handleAddTag implements the strata_add_tag tool.
func (s *Server) handleAddTag(ctx context.Context, req *sdk.CallToolRequest, args AddTagInput) (*sdk.CallToolResult, AddTagOutput, error) {
	if args.Name == "" || args.ParentID == "" {
		return nil, AddTagOutput{}, fmt.Errorf("name and parent_id are required")
	}

	tag, err := s.tags.AddTag(ctx, args.Name, args.Active, args.Request, args.Description, args.ParentID)
	if err != nil {
		return nil, AddTagOutput{}, err
	}

	return nil, AddTagOutput{
		ID:      tag.ID,
		Message: fmt.Sprintf("tag %q created under %s", tag.Name, args.ParentID),
	}, nil
}

// handleSaveLevels implements the strata_save_levels tool.
func (s *Server) handleSaveLevels(ctx context.Context, req *sdk.CallToolRequest, args SaveLevelsInput) (*sdk.CallToolResult, SaveLevelsOutput, error) {
	if args.Application == "" || args.Name == "" {
		return nil, SaveLevelsOutput{}, fmt.Errorf("application and name are required")
	}

	save, captured, err := s.manager.SaveLevels(ctx, args.Application, args.Name)
	if err != nil {
		return nil, SaveLevelsOutput{}, err
	}

	return nil, SaveLevelsOutput{
		SaveID:    save.ID,
		Timestamp: save.Timestamp,
		Captured:  captured,
		Message:   fmt.Sprintf("save %q captured %d objects for %s", save.Name, captured, save.Application),
	}, nil
}

// handleListSaves implements the strata_list_saves tool.
func (s *Server) handleListSaves(ctx context.Context, req *sdk.CallToolRequest, args ListSavesInput) (*sdk.CallToolResult, ListSavesOutput, error) {
	var (
		saves []SaveSummary
		err   error
	)
	if args.Application != "" {
		records, qerr := s.catalog.SavesByApplication(ctx, args.Application)
		err = qerr
		for _, sv := range records {
			saves = append(saves, SaveSummary{ID: sv.ID, Name: sv.Name, Application: sv.Application, Timestamp: sv.Timestamp})
		}
	} else {
		records, qerr := s.catalog.AllSaves(ctx)
		err = qerr
		for _, sv := range records {
			saves = append(saves, SaveSummary{ID: sv.ID, Name: sv.Name, Application: sv.Application, Timestamp: sv.Timestamp})
		}
	}
	if err != nil {
		return nil, ListSavesOutput{}, err
	}

	return nil, ListSavesOutput{Saves: saves, Count: len(saves)}, nil
}

// handleRemoveSave implements the strata_remove_save tool.
func (s *Server) handleRemoveSave(ctx context.Context, req *sdk.CallToolRequest, args RemoveSaveInput) (*sdk.CallToolResult, RemoveSaveOutput, error) {
	switch {
	case args.All:
		removed, err := s.catalog.RemoveAllSaves(ctx)
		if err != nil {
			return nil, RemoveSaveOutput{}, err
		}
		return nil, RemoveSaveOutput{
			Removed: removed,
			Message: fmt.Sprintf("removed %d saves", removed),
		}, nil

	case args.ID != "":
		ok, err := s.catalog.RemoveSaveByID(ctx, args.ID)
		if err != nil {
			return nil, RemoveSaveOutput{}, err
		}
		if !ok {
			return nil, RemoveSaveOutput{Message: fmt.Sprintf("no save with ID %q", args.ID)}, nil
		}
		return nil, RemoveSaveOutput{Removed: 1, Message: fmt.Sprintf("removed save %s", args.ID)}, nil

	case args.Name != "":
		ok, err := s.catalog.RemoveSave(ctx, args.Name)
		if err != nil {
			return nil, RemoveSaveOutput{}, err
		}
		if !ok {
			return nil, RemoveSaveOutput{Message: fmt.Sprintf("no save named %q", args.Name)}, nil
		}
		return nil, RemoveSaveOutput{Removed: 1, Message: fmt.Sprintf("removed save %q", args.Name)}, nil

	default:
		return nil, RemoveSaveOutput{}, fmt.Errorf("one of name, id, or all is required")
	}
}
