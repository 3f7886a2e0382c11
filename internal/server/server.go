// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it loads configuration, picks the storage
// backend, and injects the resulting stores into the tool handlers.
// No business logic lives here — only wiring.
package server

import (
	"fmt"
	"log"

	"github.com/appdotbuilder/weekly-planner/internal/config"
	"github.com/appdotbuilder/weekly-planner/internal/plans"
	"github.com/appdotbuilder/weekly-planner/internal/sqlite"
	"github.com/appdotbuilder/weekly-planner/internal/tasks"
	"github.com/appdotbuilder/weekly-planner/internal/tools"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all planner tools
// registered.
//
// The returned cleanup function releases backend resources (the sqlite
// connection, when that backend is selected) and must be called on
// shutdown, typically via defer. It is always non-nil.
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}

	// --- Select the storage backend ---

	var (
		taskStore tasks.Store
		planStore plans.Store
		cleanup   = noop
	)

	switch cfg.Backend {
	case config.BackendSQLite:
		db, err := sqlite.New(cfg.DataDir)
		if err != nil {
			return nil, noop, fmt.Errorf("opening sqlite backend: %w", err)
		}
		taskStore = db
		planStore = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Printf("WARNING: closing sqlite store: %v", err)
			}
		}
	default:
		taskStore = tasks.NewFileStore(cfg.SectionsDir())
		planStore = plans.NewFileStore(cfg.PlansDir())
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"weekly-planner",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register section tools ---

	getSections := tools.NewGetSectionsTool(taskStore)
	s.AddTool(getSections.Definition(), getSections.Handle)

	createSection := tools.NewCreateSectionTool(taskStore)
	s.AddTool(createSection.Definition(), createSection.Handle)

	renameSection := tools.NewRenameSectionTool(taskStore)
	s.AddTool(renameSection.Definition(), renameSection.Handle)

	deleteSection := tools.NewDeleteSectionTool(taskStore)
	s.AddTool(deleteSection.Definition(), deleteSection.Handle)

	// --- Register task tools ---

	getTasks := tools.NewGetTasksTool(taskStore)
	s.AddTool(getTasks.Definition(), getTasks.Handle)

	getTasksBySection := tools.NewGetTasksBySectionTool(taskStore)
	s.AddTool(getTasksBySection.Definition(), getTasksBySection.Handle)

	createTask := tools.NewCreateTaskTool(taskStore)
	s.AddTool(createTask.Definition(), createTask.Handle)

	updateTask := tools.NewUpdateTaskTool(taskStore)
	s.AddTool(updateTask.Definition(), updateTask.Handle)

	deleteTask := tools.NewDeleteTaskTool(taskStore)
	s.AddTool(deleteTask.Definition(), deleteTask.Handle)

	// --- Register weekly plan tools ---

	getPlan := tools.NewGetWeeklyPlanTool(planStore)
	s.AddTool(getPlan.Definition(), getPlan.Handle)

	getAllPlans := tools.NewGetAllWeeklyPlansTool(planStore)
	s.AddTool(getAllPlans.Definition(), getAllPlans.Handle)

	createPlan := tools.NewCreateWeeklyPlanTool(planStore)
	s.AddTool(createPlan.Definition(), createPlan.Handle)

	updatePlan := tools.NewUpdateWeeklyPlanTool(planStore)
	s.AddTool(updatePlan.Definition(), updatePlan.Handle)

	deletePlan := tools.NewDeleteWeeklyPlanTool(planStore)
	s.AddTool(deletePlan.Definition(), deletePlan.Handle)

	duplicatePlan := tools.NewDuplicateWeeklyPlanTool(planStore)
	s.AddTool(duplicatePlan.Definition(), duplicatePlan.Handle)

	return s, cleanup, nil
}

// noop is the default cleanup when the backend holds no resources.
func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use the planner effectively.
func serverInstructions() string {
	return `You have access to a personal task and weekly planning server.

## Tasks
Tasks live in named sections (projects). Use getSections for the full
picture, getTasksBySection for one section's tasks sorted by priority and
due date. createTask creates the section implicitly when it does not
exist yet. updateTask is a partial update: send only the fields to
change; send null for due_date or comments to clear them.

## Weekly plans
Each week has at most one plan, keyed by the Monday of the week — any
date you pass is normalized to that Monday. Plan content is markdown;
an optional short_week_note summarizes the week in a line. createWeeklyPlan
without content generates a day-by-day template. duplicateWeeklyPlan
copies a week's plan to another week and rewrites "Week of DD-MMM-YYYY"
headings to the target week.

## Conventions
- Dates are YYYY-MM-DD.
- Priorities are High, Medium, Low.
- Not-found and already-exists conditions come back as tool errors with
  a plain message; surface them to the user rather than retrying.`
}
