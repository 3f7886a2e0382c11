// Package tasks implements the section/task subsystem: named sections
// (projects) each owning an ordered list of tasks, persisted as one JSON
// record per section.
//
// This package follows the same design principles as the plans package:
// - SRP: types, sorting, and the store live in separate files
// - DIP: Store is an interface; tools depend on the abstraction
package tasks

import (
	"fmt"
	"sort"
	"time"
)

// --- Priority enum ---

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// priorityRank orders priorities for sorting: High before Medium before Low.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// ValidatePriority returns an error if the priority is not recognized.
func ValidatePriority(p Priority) error {
	if _, ok := priorityRank[p]; !ok {
		return fmt.Errorf("%w: invalid priority %q: must be one of: High, Medium, Low", ErrInvalidInput, p)
	}
	return nil
}

// --- Core data structures ---

// Task is a single actionable item within a section.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Comments    *string    `json:"comments"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Section is a named grouping of tasks, persisted as <name>.json.
// The name doubles as the storage key.
type Section struct {
	Name  string `json:"name"`
	Tasks []Task `json:"tasks"`
}

// --- Operation inputs ---

// CreateTaskParams holds the input for creating a new task.
type CreateTaskParams struct {
	SectionName string
	Description string
	Priority    Priority
	DueDate     *time.Time
	Comments    *string
}

// TaskPatch holds partial update fields for a task. Pointer fields that are
// nil are left unchanged. DueDate and Comments are nullable as well as
// optional, so each carries a Set flag: Set=true with a nil value clears the
// field, Set=false leaves it alone.
type TaskPatch struct {
	Description *string
	Priority    *Priority
	DueDate     *time.Time
	DueDateSet  bool
	Comments    *string
	CommentsSet bool
	Completed   *bool
}

// --- Sorting ---

// SortTasks orders tasks by priority (High, Medium, Low) and, within equal
// priority, by due date ascending with nil due dates last. The sort is
// stable so equal tasks keep their stored order.
func SortTasks(ts []Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		ri, rj := priorityRank[ts[i].Priority], priorityRank[ts[j].Priority]
		if ri != rj {
			return ri < rj
		}
		di, dj := ts[i].DueDate, ts[j].DueDate
		switch {
		case di == nil && dj == nil:
			return false
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
}
