package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/appdotbuilder/weekly-planner/internal/plans"
	"github.com/appdotbuilder/weekly-planner/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Test helpers ---

func testTaskStore(t *testing.T) tasks.Store {
	t.Helper()
	return tasks.NewFileStore(filepath.Join(t.TempDir(), "sections"))
}

func testPlanStore(t *testing.T) plans.Store {
	t.Helper()
	return plans.NewFileStore(filepath.Join(t.TempDir(), "weekly-plans"))
}

func callReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeResult unmarshals a successful JSON tool result into out.
func decodeResult(t *testing.T, result *mcp.CallToolResult, out any) {
	t.Helper()
	if isErrorResult(result) {
		t.Fatalf("expected success, got tool error: %s", getResultText(result))
	}
	if err := json.Unmarshal([]byte(getResultText(result)), out); err != nil {
		t.Fatalf("result is not valid JSON: %v\n%s", err, getResultText(result))
	}
}

// --- Section tools ---

func TestCreateSectionTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	tool := NewCreateSectionTool(store)

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"name": "Work",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var sec tasks.Section
	decodeResult(t, result, &sec)
	if sec.Name != "Work" {
		t.Errorf("Name = %q, want Work", sec.Name)
	}

	// Same name again is a tool error, not a handler error.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"name": "Work",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("duplicate create should be a tool error")
	}
	if !strings.Contains(getResultText(result), "already exists") {
		t.Errorf("error text = %q, want mention of already exists", getResultText(result))
	}
}

func TestCreateSectionTool_Handle_MissingName(t *testing.T) {
	tool := NewCreateSectionTool(testTaskStore(t))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("missing name should be a tool error")
	}
}

func TestGetSectionsTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	if _, err := store.CreateSection("Personal"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}
	if _, err := store.CreateSection("Work"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	tool := NewGetSectionsTool(store)
	result, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var sections []tasks.Section
	decodeResult(t, result, &sections)
	if len(sections) != 2 || sections[0].Name != "Personal" || sections[1].Name != "Work" {
		t.Fatalf("sections = %v, want [Personal Work]", sections)
	}
}

func TestRenameSectionTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	if _, err := store.CreateSection("Old"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	tool := NewRenameSectionTool(store)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"old_name": "Old",
		"new_name": "New",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var resp map[string]bool
	decodeResult(t, result, &resp)
	if !resp["success"] {
		t.Errorf("response = %v, want success true", resp)
	}

	// Renaming a missing section is a tool error.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"old_name": "Ghost",
		"new_name": "X",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("rename of missing section should be a tool error")
	}
}

func TestDeleteSectionTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	if _, err := store.CreateSection("Doomed"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	tool := NewDeleteSectionTool(store)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"name": "Doomed",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	sections, err := store.Sections()
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(sections) != 0 {
		t.Fatalf("sections after delete = %v, want empty", sections)
	}
}

// --- Task tools ---

func TestCreateTaskTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	tool := NewCreateTaskTool(store)

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Work",
		"description":  "Write report",
		"priority":     "High",
		"due_date":     "2024-06-07",
		"comments":     "for the board",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var task tasks.Task
	decodeResult(t, result, &task)
	if task.ID == "" {
		t.Error("task ID is empty")
	}
	if task.Priority != tasks.PriorityHigh {
		t.Errorf("Priority = %q", task.Priority)
	}
	if task.DueDate == nil || task.DueDate.Format("2006-01-02") != "2024-06-07" {
		t.Errorf("DueDate = %v", task.DueDate)
	}
	if task.Comments == nil || *task.Comments != "for the board" {
		t.Errorf("Comments = %v", task.Comments)
	}
}

func TestCreateTaskTool_Handle_BadInput(t *testing.T) {
	tool := NewCreateTaskTool(testTaskStore(t))

	cases := []map[string]interface{}{
		{"section_name": "Work", "description": "ok", "priority": "urgent"},
		{"section_name": "Work", "description": "   ", "priority": "High"},
		{"section_name": "Work", "description": "ok", "priority": "High", "due_date": "June 7th"},
	}
	for i, args := range cases {
		result, err := tool.Handle(context.Background(), callReq(args))
		if err != nil {
			t.Fatalf("case %d: Handle failed: %v", i, err)
		}
		if !isErrorResult(result) {
			t.Errorf("case %d: expected tool error, got: %s", i, getResultText(result))
		}
	}
}

func TestUpdateTaskTool_Handle_PartialAndNull(t *testing.T) {
	store := testTaskStore(t)

	created, err := store.CreateTask(tasks.CreateTaskParams{
		SectionName: "Work",
		Description: "Original",
		Priority:    tasks.PriorityMedium,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tool := NewUpdateTaskTool(store)

	// Set comments and completion; description stays.
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Work",
		"task_id":      created.ID,
		"comments":     "added later",
		"completed":    true,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var task tasks.Task
	decodeResult(t, result, &task)
	if task.Description != "Original" {
		t.Errorf("Description = %q, want Original", task.Description)
	}
	if task.Comments == nil || *task.Comments != "added later" {
		t.Errorf("Comments = %v", task.Comments)
	}
	if !task.Completed {
		t.Error("Completed = false, want true")
	}

	// Explicit null clears comments.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Work",
		"task_id":      created.ID,
		"comments":     nil,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	decodeResult(t, result, &task)
	if task.Comments != nil {
		t.Errorf("Comments = %v, want cleared", task.Comments)
	}
	if !task.Completed {
		t.Error("Completed reset by unrelated update")
	}
}

func TestUpdateTaskTool_Handle_NotFound(t *testing.T) {
	store := testTaskStore(t)
	if _, err := store.CreateSection("Work"); err != nil {
		t.Fatalf("CreateSection failed: %v", err)
	}

	tool := NewUpdateTaskTool(store)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Work",
		"task_id":      "no-such-id",
		"completed":    true,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("update of missing task should be a tool error")
	}
	if !strings.Contains(getResultText(result), "not found") {
		t.Errorf("error text = %q, want mention of not found", getResultText(result))
	}
}

func TestGetTasksBySectionTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	if _, err := store.CreateTask(tasks.CreateTaskParams{
		SectionName: "Work", Description: "low", Priority: tasks.PriorityLow,
	}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := store.CreateTask(tasks.CreateTaskParams{
		SectionName: "Work", Description: "high", Priority: tasks.PriorityHigh,
	}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tool := NewGetTasksBySectionTool(store)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Work",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var ts []tasks.Task
	decodeResult(t, result, &ts)
	if len(ts) != 2 || ts[0].Description != "high" || ts[1].Description != "low" {
		t.Fatalf("tasks = %v, want [high low]", ts)
	}

	// Missing section yields an empty list, not an error.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Ghost",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	decodeResult(t, result, &ts)
	if len(ts) != 0 {
		t.Fatalf("tasks for missing section = %v, want empty", ts)
	}
}

func TestDeleteTaskTool_Handle(t *testing.T) {
	store := testTaskStore(t)
	created, err := store.CreateTask(tasks.CreateTaskParams{
		SectionName: "Work", Description: "Delete me", Priority: tasks.PriorityLow,
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tool := NewDeleteTaskTool(store)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"section_name": "Work",
		"task_id":      created.ID,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	ts, err := store.TasksBySection("Work")
	if err != nil {
		t.Fatalf("TasksBySection failed: %v", err)
	}
	if len(ts) != 0 {
		t.Fatalf("tasks after delete = %v, want empty", ts)
	}
}

// --- Weekly plan tools ---

func TestCreateWeeklyPlanTool_Handle_DefaultsToTemplate(t *testing.T) {
	store := testPlanStore(t)
	tool := NewCreateWeeklyPlanTool(store)

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"week_start": "2024-01-15",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var plan plans.WeeklyPlan
	decodeResult(t, result, &plan)
	if !strings.Contains(plan.Content, "# Monday - Jan 15") {
		t.Errorf("content is not the week template:\n%s", plan.Content)
	}
	if !strings.Contains(plan.Content, "# Weekly Goals") {
		t.Errorf("template missing goals block:\n%s", plan.Content)
	}
}

func TestCreateWeeklyPlanTool_Handle_NormalizesToMonday(t *testing.T) {
	store := testPlanStore(t)
	tool := NewCreateWeeklyPlanTool(store)

	// Thursday 18 Jan 2024 belongs to the week of Monday 15 Jan.
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"week_start": "2024-01-18",
		"content":    "# custom",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got: %s", getResultText(result))
	}

	plan, err := store.Get(plans.MondayOf(mustDate(t, "2024-01-18")))
	if err != nil || plan == nil {
		t.Fatalf("Get = (%v, %v), want the created plan", plan, err)
	}
	if plans.FormatWeekKey(plan.WeekStart) != "15-Jan-2024" {
		t.Errorf("stored under %s, want 15-Jan-2024", plans.FormatWeekKey(plan.WeekStart))
	}
}

func TestGetWeeklyPlanTool_Handle_AbsentIsNull(t *testing.T) {
	tool := NewGetWeeklyPlanTool(testPlanStore(t))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"week_start": "2024-01-15",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("absent plan should not be a tool error: %s", getResultText(result))
	}
	if got := strings.TrimSpace(getResultText(result)); got != "null" {
		t.Errorf("result = %q, want null", got)
	}
}

func TestUpdateWeeklyPlanTool_Handle_TriStateNote(t *testing.T) {
	store := testPlanStore(t)
	ws := plans.MondayOf(mustDate(t, "2024-01-15"))
	if _, err := store.Create(ws, strP("Initial note"), "# Monday"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tool := NewUpdateWeeklyPlanTool(store)

	// Omitted note: unchanged.
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"week_start": "2024-01-15",
		"content":    "# Tuesday",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	var plan plans.WeeklyPlan
	decodeResult(t, result, &plan)
	if plan.ShortWeekNote == nil || *plan.ShortWeekNote != "Initial note" {
		t.Errorf("ShortWeekNote = %v, want Initial note", plan.ShortWeekNote)
	}
	if plan.Content != "# Tuesday" {
		t.Errorf("Content = %q", plan.Content)
	}

	// Null note: cleared.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"week_start":      "2024-01-15",
		"short_week_note": nil,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	decodeResult(t, result, &plan)
	if plan.ShortWeekNote != nil {
		t.Errorf("ShortWeekNote = %v, want nil after null", plan.ShortWeekNote)
	}
}

func TestDeleteWeeklyPlanTool_Handle_Missing(t *testing.T) {
	tool := NewDeleteWeeklyPlanTool(testPlanStore(t))

	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"week_start": "2024-01-15",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("delete of missing plan should be a tool error")
	}
}

func TestDuplicateWeeklyPlanTool_Handle(t *testing.T) {
	store := testPlanStore(t)
	source := plans.MondayOf(mustDate(t, "2024-01-01"))
	if _, err := store.Create(source, nil, "# Week of 01-Jan-2024\n\n- carry over"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tool := NewDuplicateWeeklyPlanTool(store)
	result, err := tool.Handle(context.Background(), callReq(map[string]interface{}{
		"source_week_start": "2024-01-01",
		"target_week_start": "2024-01-08",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var plan plans.WeeklyPlan
	decodeResult(t, result, &plan)
	if !strings.Contains(plan.Content, "Week of 08-Jan-2024") {
		t.Errorf("heading not rewritten:\n%s", plan.Content)
	}

	// Same source and target (after Monday normalization) is rejected.
	result, err = tool.Handle(context.Background(), callReq(map[string]interface{}{
		"source_week_start": "2024-01-01",
		"target_week_start": "2024-01-03",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("same-week duplicate should be a tool error")
	}
}

func TestGetAllWeeklyPlansTool_Handle(t *testing.T) {
	store := testPlanStore(t)
	for _, key := range []string{"2024-01-08", "2024-01-22"} {
		if _, err := store.Create(plans.MondayOf(mustDate(t, key)), nil, "content"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tool := NewGetAllWeeklyPlansTool(store)
	result, err := tool.Handle(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	var all []plans.WeeklyPlan
	decodeResult(t, result, &all)
	if len(all) != 2 {
		t.Fatalf("got %d plans, want 2", len(all))
	}
	if !all[0].WeekStart.After(all[1].WeekStart) {
		t.Errorf("plans not in most-recent-first order: %v", all)
	}
}

// --- Helpers for plan tests ---

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := parseDate(s)
	if err != nil {
		t.Fatalf("parseDate(%q) failed: %v", s, err)
	}
	return parsed
}

func strP(s string) *string { return &s }
