package tools

import (
	"context"
	"strings"

	"github.com/appdotbuilder/weekly-planner/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// GetTasksTool handles the getTasks query: every task across all sections.
type GetTasksTool struct {
	store tasks.Store
}

// NewGetTasksTool creates a GetTasksTool with the given store.
func NewGetTasksTool(store tasks.Store) *GetTasksTool {
	return &GetTasksTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("getTasks",
		mcp.WithDescription(
			"List every task across all sections, concatenated in section order.",
		),
	)
}

// Handle processes the getTasks call.
func (t *GetTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	all, err := t.store.AllTasks()
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(all)
}

// GetTasksBySectionTool handles the getTasksBySection query.
type GetTasksBySectionTool struct {
	store tasks.Store
}

// NewGetTasksBySectionTool creates a GetTasksBySectionTool with the given store.
func NewGetTasksBySectionTool(store tasks.Store) *GetTasksBySectionTool {
	return &GetTasksBySectionTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetTasksBySectionTool) Definition() mcp.Tool {
	return mcp.NewTool("getTasksBySection",
		mcp.WithDescription(
			"List one section's tasks sorted by priority (High, Medium, Low) and due date "+
				"(ascending, tasks without a due date last). A missing section yields an empty list.",
		),
		mcp.WithString("section_name",
			mcp.Required(),
			mcp.Description("Section to list tasks for."),
		),
	)
}

// Handle processes the getTasksBySection call.
func (t *GetTasksBySectionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("section_name", "")
	if strings.TrimSpace(name) == "" {
		return mcp.NewToolResultError("'section_name' is required"), nil
	}

	ts, err := t.store.TasksBySection(name)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(ts)
}

// CreateTaskTool handles the createTask mutation.
type CreateTaskTool struct {
	store tasks.Store
}

// NewCreateTaskTool creates a CreateTaskTool with the given store.
func NewCreateTaskTool(store tasks.Store) *CreateTaskTool {
	return &CreateTaskTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("createTask",
		mcp.WithDescription(
			"Create a task in a section. If the section record does not exist yet it is "+
				"created implicitly as part of this call.",
		),
		mcp.WithString("section_name",
			mcp.Required(),
			mcp.Description("Owning section."),
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("What the task is. Must not be empty."),
		),
		mcp.WithString("priority",
			mcp.Required(),
			mcp.Description("Task priority."),
			mcp.Enum("High", "Medium", "Low"),
		),
		mcp.WithString("due_date",
			mcp.Description("Optional due date as YYYY-MM-DD."),
		),
		mcp.WithString("comments",
			mcp.Description("Optional free-text comments."),
		),
	)
}

// Handle processes the createTask call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	dueDate, _, err := dateArg(args, "due_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	comments, _, err := stringArg(args, "comments")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := t.store.CreateTask(tasks.CreateTaskParams{
		SectionName: req.GetString("section_name", ""),
		Description: req.GetString("description", ""),
		Priority:    tasks.Priority(req.GetString("priority", "")),
		DueDate:     dueDate,
		Comments:    comments,
	})
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(task)
}

// UpdateTaskTool handles the updateTask mutation.
type UpdateTaskTool struct {
	store tasks.Store
}

// NewUpdateTaskTool creates an UpdateTaskTool with the given store.
func NewUpdateTaskTool(store tasks.Store) *UpdateTaskTool {
	return &UpdateTaskTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("updateTask",
		mcp.WithDescription(
			"Partially update a task. Only supplied fields change; passing null for "+
				"due_date or comments clears them. updated_at is always refreshed.",
		),
		mcp.WithString("section_name",
			mcp.Required(),
			mcp.Description("Owning section."),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to update."),
		),
		mcp.WithString("description",
			mcp.Description("New description."),
		),
		mcp.WithString("priority",
			mcp.Description("New priority."),
			mcp.Enum("High", "Medium", "Low"),
		),
		mcp.WithString("due_date",
			mcp.Description("New due date as YYYY-MM-DD, or null to clear."),
		),
		mcp.WithString("comments",
			mcp.Description("New comments, or null to clear."),
		),
		mcp.WithBoolean("completed",
			mcp.Description("New completion state."),
		),
	)
}

// Handle processes the updateTask call.
func (t *UpdateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	sectionName := req.GetString("section_name", "")
	taskID := req.GetString("task_id", "")
	if strings.TrimSpace(sectionName) == "" || strings.TrimSpace(taskID) == "" {
		return mcp.NewToolResultError("'section_name' and 'task_id' are required"), nil
	}

	var patch tasks.TaskPatch
	var err error

	if desc, present, derr := stringArg(args, "description"); derr != nil {
		return mcp.NewToolResultError(derr.Error()), nil
	} else if present && desc != nil {
		patch.Description = desc
	}

	if prio, present, perr := stringArg(args, "priority"); perr != nil {
		return mcp.NewToolResultError(perr.Error()), nil
	} else if present && prio != nil {
		p := tasks.Priority(*prio)
		patch.Priority = &p
	}

	patch.DueDate, patch.DueDateSet, err = dateArg(args, "due_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patch.Comments, patch.CommentsSet, err = stringArg(args, "comments")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patch.Completed, _, err = boolArg(args, "completed")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	task, err := t.store.UpdateTask(sectionName, taskID, patch)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(task)
}

// DeleteTaskTool handles the deleteTask mutation.
type DeleteTaskTool struct {
	store tasks.Store
}

// NewDeleteTaskTool creates a DeleteTaskTool with the given store.
func NewDeleteTaskTool(store tasks.Store) *DeleteTaskTool {
	return &DeleteTaskTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("deleteTask",
		mcp.WithDescription(
			"Delete one task from its section. The section record stays, even when empty.",
		),
		mcp.WithString("section_name",
			mcp.Required(),
			mcp.Description("Owning section."),
		),
		mcp.WithString("task_id",
			mcp.Required(),
			mcp.Description("ID of the task to delete."),
		),
	)
}

// Handle processes the deleteTask call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sectionName := req.GetString("section_name", "")
	taskID := req.GetString("task_id", "")
	if strings.TrimSpace(sectionName) == "" || strings.TrimSpace(taskID) == "" {
		return mcp.NewToolResultError("'section_name' and 'task_id' are required"), nil
	}

	if err := t.store.DeleteTask(sectionName, taskID); err != nil {
		return storeResult(err)
	}
	return jsonResult(map[string]bool{"success": true})
}
