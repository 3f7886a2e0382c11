package tools

import (
	"context"
	"strings"

	"github.com/appdotbuilder/weekly-planner/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetSectionsTool handles the getSections query.
type GetSectionsTool struct {
	store tasks.Store
}

// NewGetSectionsTool creates a GetSectionsTool with the given store.
func NewGetSectionsTool(store tasks.Store) *GetSectionsTool {
	return &GetSectionsTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetSectionsTool) Definition() mcp.Tool {
	return mcp.NewTool("getSections",
		mcp.WithDescription(
			"List all task sections (projects) with their tasks, sorted by section name.",
		),
	)
}

// Handle processes the getSections call.
func (t *GetSectionsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sections, err := t.store.Sections()
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(sections)
}

// CreateSectionTool handles the createSection mutation.
type CreateSectionTool struct {
	store tasks.Store
}

// NewCreateSectionTool creates a CreateSectionTool with the given store.
func NewCreateSectionTool(store tasks.Store) *CreateSectionTool {
	return &CreateSectionTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateSectionTool) Definition() mcp.Tool {
	return mcp.NewTool("createSection",
		mcp.WithDescription(
			"Create a new empty task section. Fails if a section with that name already exists.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Section name. Used directly as the storage key, so it must be filename-safe."),
		),
	)
}

// Handle processes the createSection call.
func (t *CreateSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	sec, err := t.store.CreateSection(name)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(sec)
}

// RenameSectionTool handles the renameSection mutation.
type RenameSectionTool struct {
	store tasks.Store
}

// NewRenameSectionTool creates a RenameSectionTool with the given store.
func NewRenameSectionTool(store tasks.Store) *RenameSectionTool {
	return &RenameSectionTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *RenameSectionTool) Definition() mcp.Tool {
	return mcp.NewTool("renameSection",
		mcp.WithDescription(
			"Rename a section, moving its record (tasks included) to the new name. "+
				"Fails if the old name is absent or the new name is taken.",
		),
		mcp.WithString("old_name",
			mcp.Required(),
			mcp.Description("Current section name."),
		),
		mcp.WithString("new_name",
			mcp.Required(),
			mcp.Description("New section name."),
		),
	)
}

// Handle processes the renameSection call.
func (t *RenameSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldName := req.GetString("old_name", "")
	newName := req.GetString("new_name", "")
	if strings.TrimSpace(oldName) == "" || strings.TrimSpace(newName) == "" {
		return mcp.NewToolResultError("'old_name' and 'new_name' are required"), nil
	}

	if err := t.store.RenameSection(oldName, newName); err != nil {
		return storeResult(err)
	}
	return jsonResult(map[string]bool{"success": true})
}

// DeleteSectionTool handles the deleteSection mutation.
type DeleteSectionTool struct {
	store tasks.Store
}

// NewDeleteSectionTool creates a DeleteSectionTool with the given store.
func NewDeleteSectionTool(store tasks.Store) *DeleteSectionTool {
	return &DeleteSectionTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteSectionTool) Definition() mcp.Tool {
	return mcp.NewTool("deleteSection",
		mcp.WithDescription(
			"Delete a section and every task it contains. Irrevocable.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Section name to delete."),
		),
	)
}

// Handle processes the deleteSection call.
func (t *DeleteSectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	if err := t.store.DeleteSection(name); err != nil {
		return storeResult(err)
	}
	return jsonResult(map[string]bool{"success": true})
}
