package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/appdotbuilder/weekly-planner/internal/plans"
	"github.com/mark3labs/mcp-go/mcp"
)

// weekStartArg parses a required week date argument and normalizes it to the
// Monday of its week.
func weekStartArg(req mcp.CallToolRequest, key string) (time.Time, error) {
	raw := req.GetString(key, "")
	if raw == "" {
		return time.Time{}, fmt.Errorf("'%s' is required", key)
	}
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("'%s': %v", key, err)
	}
	return plans.MondayOf(t), nil
}

// GetWeeklyPlanTool handles the getWeeklyPlan query.
type GetWeeklyPlanTool struct {
	store plans.Store
}

// NewGetWeeklyPlanTool creates a GetWeeklyPlanTool with the given store.
func NewGetWeeklyPlanTool(store plans.Store) *GetWeeklyPlanTool {
	return &GetWeeklyPlanTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetWeeklyPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("getWeeklyPlan",
		mcp.WithDescription(
			"Get the plan for one week. Returns null (not an error) when no plan is stored. "+
				"Any date within the week is accepted; it is normalized to the week's Monday.",
		),
		mcp.WithString("week_start",
			mcp.Required(),
			mcp.Description("A date in the requested week, as YYYY-MM-DD."),
		),
	)
}

// Handle processes the getWeeklyPlan call.
func (t *GetWeeklyPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekStart, err := weekStartArg(req, "week_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	plan, err := t.store.Get(weekStart)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(plan)
}

// GetAllWeeklyPlansTool handles the getAllWeeklyPlans query.
type GetAllWeeklyPlansTool struct {
	store plans.Store
}

// NewGetAllWeeklyPlansTool creates a GetAllWeeklyPlansTool with the given store.
func NewGetAllWeeklyPlansTool(store plans.Store) *GetAllWeeklyPlansTool {
	return &GetAllWeeklyPlansTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *GetAllWeeklyPlansTool) Definition() mcp.Tool {
	return mcp.NewTool("getAllWeeklyPlans",
		mcp.WithDescription(
			"List every stored weekly plan, most recent week first.",
		),
	)
}

// Handle processes the getAllWeeklyPlans call.
func (t *GetAllWeeklyPlansTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.store.List()
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(result)
}

// CreateWeeklyPlanTool handles the createWeeklyPlan mutation.
type CreateWeeklyPlanTool struct {
	store plans.Store
}

// NewCreateWeeklyPlanTool creates a CreateWeeklyPlanTool with the given store.
func NewCreateWeeklyPlanTool(store plans.Store) *CreateWeeklyPlanTool {
	return &CreateWeeklyPlanTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *CreateWeeklyPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("createWeeklyPlan",
		mcp.WithDescription(
			"Create the plan for a week. Fails if one already exists. When content is "+
				"omitted, a day-by-day template for the week is generated.",
		),
		mcp.WithString("week_start",
			mcp.Required(),
			mcp.Description("A date in the target week, as YYYY-MM-DD."),
		),
		mcp.WithString("short_week_note",
			mcp.Description("Optional short note shown above the plan content."),
		),
		mcp.WithString("content",
			mcp.Description("Markdown body. Defaults to the generated week template."),
		),
	)
}

// Handle processes the createWeeklyPlan call.
func (t *CreateWeeklyPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekStart, err := weekStartArg(req, "week_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	note, _, err := stringArg(args, "short_week_note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, present, err := stringArg(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := ""
	if present && content != nil {
		body = *content
	} else {
		body = plans.WeekTemplate(weekStart)
	}

	plan, err := t.store.Create(weekStart, note, body)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(plan)
}

// UpdateWeeklyPlanTool handles the updateWeeklyPlan mutation.
type UpdateWeeklyPlanTool struct {
	store plans.Store
}

// NewUpdateWeeklyPlanTool creates an UpdateWeeklyPlanTool with the given store.
func NewUpdateWeeklyPlanTool(store plans.Store) *UpdateWeeklyPlanTool {
	return &UpdateWeeklyPlanTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *UpdateWeeklyPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("updateWeeklyPlan",
		mcp.WithDescription(
			"Partially update a week's plan. Omitted fields keep their stored values; "+
				"passing null for short_week_note clears the note.",
		),
		mcp.WithString("week_start",
			mcp.Required(),
			mcp.Description("A date in the target week, as YYYY-MM-DD."),
		),
		mcp.WithString("short_week_note",
			mcp.Description("New short note, or null to clear it."),
		),
		mcp.WithString("content",
			mcp.Description("New markdown body."),
		),
	)
}

// Handle processes the updateWeeklyPlan call.
func (t *UpdateWeeklyPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekStart, err := weekStartArg(req, "week_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := req.GetArguments()
	var patch plans.PlanPatch

	patch.ShortNote, patch.ShortNoteSet, err = stringArg(args, "short_week_note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, present, err := stringArg(args, "content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if present && content != nil {
		patch.Content = content
	}

	plan, err := t.store.Update(weekStart, patch)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(plan)
}

// DeleteWeeklyPlanTool handles the deleteWeeklyPlan mutation.
type DeleteWeeklyPlanTool struct {
	store plans.Store
}

// NewDeleteWeeklyPlanTool creates a DeleteWeeklyPlanTool with the given store.
func NewDeleteWeeklyPlanTool(store plans.Store) *DeleteWeeklyPlanTool {
	return &DeleteWeeklyPlanTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DeleteWeeklyPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("deleteWeeklyPlan",
		mcp.WithDescription(
			"Delete a week's plan. Fails when none is stored for that week.",
		),
		mcp.WithString("week_start",
			mcp.Required(),
			mcp.Description("A date in the target week, as YYYY-MM-DD."),
		),
	)
}

// Handle processes the deleteWeeklyPlan call.
func (t *DeleteWeeklyPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weekStart, err := weekStartArg(req, "week_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := t.store.Delete(weekStart); err != nil {
		return storeResult(err)
	}
	return jsonResult(map[string]bool{"success": true})
}

// DuplicateWeeklyPlanTool handles the duplicateWeeklyPlan mutation.
type DuplicateWeeklyPlanTool struct {
	store plans.Store
}

// NewDuplicateWeeklyPlanTool creates a DuplicateWeeklyPlanTool with the given store.
func NewDuplicateWeeklyPlanTool(store plans.Store) *DuplicateWeeklyPlanTool {
	return &DuplicateWeeklyPlanTool{store: store}
}

// Definition returns the MCP tool definition for registration.
func (t *DuplicateWeeklyPlanTool) Definition() mcp.Tool {
	return mcp.NewTool("duplicateWeeklyPlan",
		mcp.WithDescription(
			"Copy one week's plan to another week, rewriting 'Week of DD-MMM-YYYY' "+
				"headings to the target date. Fails if the source is absent or the "+
				"target already has a plan.",
		),
		mcp.WithString("source_week_start",
			mcp.Required(),
			mcp.Description("A date in the source week, as YYYY-MM-DD."),
		),
		mcp.WithString("target_week_start",
			mcp.Required(),
			mcp.Description("A date in the target week, as YYYY-MM-DD."),
		),
	)
}

// Handle processes the duplicateWeeklyPlan call.
func (t *DuplicateWeeklyPlanTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := weekStartArg(req, "source_week_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target, err := weekStartArg(req, "target_week_start")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if source.Equal(target) {
		return mcp.NewToolResultError("source and target weeks must differ"), nil
	}

	plan, err := t.store.Duplicate(source, target)
	if err != nil {
		return storeResult(err)
	}
	return jsonResult(plan)
}
