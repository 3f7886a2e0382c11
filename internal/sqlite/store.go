// Package sqlite is the alternate storage adapter: sections, tasks, and
// weekly plans in one SQLite database instead of one file per record. It
// implements the same store contracts as the file-backed adapters, with the
// same operation semantics — weekly-plan bodies are stored as the encoded
// markdown documents, so the note convention is shared too.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/appdotbuilder/weekly-planner/internal/plans"
	"github.com/appdotbuilder/weekly-planner/internal/tasks"
	"github.com/google/uuid"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DatabaseFile is the filename of the planner database inside the data dir.
const DatabaseFile = "planner.db"

// Store is the SQLite-backed implementation of both store contracts.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ tasks.Store = (*Store)(nil)
	_ plans.Store = (*Store)(nil)
)

// New opens (or creates) the planner database under dataDir, applies the
// pragmas and runs migrations.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(dataDir, DatabaseFile))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("sqlite: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS sections (
			name TEXT PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS tasks (
			id           TEXT    NOT NULL,
			section_name TEXT    NOT NULL,
			description  TEXT    NOT NULL,
			priority     TEXT    NOT NULL,
			due_date     TEXT,
			comments     TEXT,
			completed    INTEGER NOT NULL DEFAULT 0,
			created_at   TEXT    NOT NULL,
			updated_at   TEXT    NOT NULL,
			position     INTEGER NOT NULL,
			PRIMARY KEY (section_name, id),
			FOREIGN KEY (section_name) REFERENCES sections(name)
				ON DELETE CASCADE ON UPDATE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_section ON tasks(section_name, position);

		CREATE TABLE IF NOT EXISTS weekly_plans (
			week_key TEXT PRIMARY KEY,
			body     TEXT NOT NULL
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// --- Section/task store ---

// Sections returns every section with its tasks in stored order, sorted by
// name.
func (s *Store) Sections() ([]tasks.Section, error) {
	rows, err := s.db.Query(`SELECT name FROM sections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning section: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}

	sections := make([]tasks.Section, 0, len(names))
	for _, name := range names {
		ts, err := s.sectionTasks(name)
		if err != nil {
			return nil, err
		}
		sections = append(sections, tasks.Section{Name: name, Tasks: ts})
	}
	return sections, nil
}

// CreateSection inserts a new empty section row.
func (s *Store) CreateSection(name string) (*tasks.Section, error) {
	if err := tasks.ValidateSectionName(name); err != nil {
		return nil, err
	}
	exists, err := s.sectionExists(name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", tasks.ErrSectionExists, name)
	}

	if _, err := s.db.Exec(`INSERT INTO sections (name) VALUES (?)`, name); err != nil {
		return nil, fmt.Errorf("inserting section: %w", err)
	}
	return &tasks.Section{Name: name, Tasks: []tasks.Task{}}, nil
}

// RenameSection changes a section's key; the tasks follow via the cascading
// foreign key.
func (s *Store) RenameSection(oldName, newName string) error {
	if err := tasks.ValidateSectionName(newName); err != nil {
		return err
	}
	exists, err := s.sectionExists(oldName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", tasks.ErrSectionNotFound, oldName)
	}
	exists, err = s.sectionExists(newName)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %q", tasks.ErrSectionExists, newName)
	}

	if _, err := s.db.Exec(`UPDATE sections SET name = ? WHERE name = ?`, newName, oldName); err != nil {
		return fmt.Errorf("renaming section: %w", err)
	}
	return nil
}

// DeleteSection removes a section and, via cascade, all its tasks.
func (s *Store) DeleteSection(name string) error {
	res, err := s.db.Exec(`DELETE FROM sections WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting section: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", tasks.ErrSectionNotFound, name)
	}
	return nil
}

// TasksBySection returns a section's tasks sorted by priority then due date.
// A missing section yields an empty slice, not an error.
func (s *Store) TasksBySection(name string) ([]tasks.Task, error) {
	exists, err := s.sectionExists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return []tasks.Task{}, nil
	}

	ts, err := s.sectionTasks(name)
	if err != nil {
		return nil, err
	}
	tasks.SortTasks(ts)
	return ts, nil
}

// AllTasks returns every task, concatenated in section iteration order.
func (s *Store) AllTasks() ([]tasks.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, description, priority, due_date, comments, completed, created_at, updated_at
		FROM tasks ORDER BY section_name, position`)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

// CreateTask appends a task to a section, implicitly creating the section
// row if it does not exist yet.
func (s *Store) CreateTask(params tasks.CreateTaskParams) (*tasks.Task, error) {
	if err := tasks.ValidateSectionName(params.SectionName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("%w: task description must not be empty", tasks.ErrInvalidInput)
	}
	if err := tasks.ValidatePriority(params.Priority); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR IGNORE INTO sections (name) VALUES (?)`, params.SectionName); err != nil {
		return nil, fmt.Errorf("ensuring section: %w", err)
	}

	var next int
	if err := tx.QueryRow(
		`SELECT COALESCE(MAX(position), -1) + 1 FROM tasks WHERE section_name = ?`,
		params.SectionName,
	).Scan(&next); err != nil {
		return nil, fmt.Errorf("computing task position: %w", err)
	}

	ts := s.now()
	task := tasks.Task{
		ID:          uuid.NewString(),
		Description: params.Description,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		Comments:    params.Comments,
		Completed:   false,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	if _, err := tx.Exec(`
		INSERT INTO tasks (id, section_name, description, priority, due_date, comments, completed, created_at, updated_at, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, params.SectionName, task.Description, string(task.Priority),
		timeColumn(task.DueDate), task.Comments, task.Completed,
		task.CreatedAt.Format(time.RFC3339Nano), task.UpdatedAt.Format(time.RFC3339Nano), next,
	); err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing task: %w", err)
	}
	return &task, nil
}

// UpdateTask applies a partial update to one task row.
func (s *Store) UpdateTask(sectionName, taskID string, patch tasks.TaskPatch) (*tasks.Task, error) {
	exists, err := s.sectionExists(sectionName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %q", tasks.ErrSectionNotFound, sectionName)
	}

	row := s.db.QueryRow(`
		SELECT id, description, priority, due_date, comments, completed, created_at, updated_at
		FROM tasks WHERE section_name = ? AND id = ?`, sectionName, taskID)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: task %q in section %q", tasks.ErrTaskNotFound, taskID, sectionName)
		}
		return nil, err
	}

	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDateSet {
		task.DueDate = patch.DueDate
	}
	if patch.CommentsSet {
		task.Comments = patch.Comments
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if strings.TrimSpace(task.Description) == "" {
		return nil, fmt.Errorf("%w: task description must not be empty", tasks.ErrInvalidInput)
	}
	if err := tasks.ValidatePriority(task.Priority); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.now()

	if _, err := s.db.Exec(`
		UPDATE tasks SET description = ?, priority = ?, due_date = ?, comments = ?, completed = ?, updated_at = ?
		WHERE section_name = ? AND id = ?`,
		task.Description, string(task.Priority), timeColumn(task.DueDate), task.Comments,
		task.Completed, task.UpdatedAt.Format(time.RFC3339Nano), sectionName, taskID,
	); err != nil {
		return nil, fmt.Errorf("updating task: %w", err)
	}
	return task, nil
}

// DeleteTask removes one task row; the section row stays.
func (s *Store) DeleteTask(sectionName, taskID string) error {
	exists, err := s.sectionExists(sectionName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", tasks.ErrSectionNotFound, sectionName)
	}

	res, err := s.db.Exec(`DELETE FROM tasks WHERE section_name = ? AND id = ?`, sectionName, taskID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: task %q in section %q", tasks.ErrTaskNotFound, taskID, sectionName)
	}
	return nil
}

// --- Weekly plan store ---

// Get returns the decoded plan for a week, or nil when none is stored.
func (s *Store) Get(weekStart time.Time) (*plans.WeeklyPlan, error) {
	body, err := s.planBody(weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return decodedPlan(weekStart, body), nil
}

// List returns every stored plan, most recent week first. Rows whose keys
// don't parse are ignored.
func (s *Store) List() ([]plans.WeeklyPlan, error) {
	rows, err := s.db.Query(`SELECT week_key, body FROM weekly_plans`)
	if err != nil {
		return nil, fmt.Errorf("querying weekly plans: %w", err)
	}
	defer rows.Close()

	var result []plans.WeeklyPlan
	for rows.Next() {
		var key, body string
		if err := rows.Scan(&key, &body); err != nil {
			return nil, fmt.Errorf("scanning weekly plan: %w", err)
		}
		ws, err := plans.ParseWeekKey(key)
		if err != nil {
			continue
		}
		result = append(result, *decodedPlan(ws, body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating weekly plans: %w", err)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].WeekStart.After(result[j].WeekStart)
	})
	if result == nil {
		result = []plans.WeeklyPlan{}
	}
	return result, nil
}

// Create inserts a new plan row for a week that has none yet.
func (s *Store) Create(weekStart time.Time, shortNote *string, content string) (*plans.WeeklyPlan, error) {
	key := plans.FormatWeekKey(weekStart)
	if _, err := s.planBody(weekStart); err == nil {
		return nil, fmt.Errorf("%w: %s", plans.ErrPlanExists, key)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	note := ""
	if shortNote != nil {
		note = *shortNote
	}
	body := plans.EncodeDocument(note, content)
	if _, err := s.db.Exec(`INSERT INTO weekly_plans (week_key, body) VALUES (?, ?)`, key, body); err != nil {
		return nil, fmt.Errorf("inserting weekly plan: %w", err)
	}
	return decodedPlan(weekStart, body), nil
}

// Update applies a partial update to an existing plan row.
func (s *Store) Update(weekStart time.Time, patch plans.PlanPatch) (*plans.WeeklyPlan, error) {
	key := plans.FormatWeekKey(weekStart)
	body, err := s.planBody(weekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", plans.ErrPlanNotFound, key)
		}
		return nil, err
	}

	note, content := plans.DecodeDocument(body)
	if patch.ShortNoteSet {
		if patch.ShortNote == nil {
			note = ""
		} else {
			note = *patch.ShortNote
		}
	}
	if patch.Content != nil {
		content = *patch.Content
	}

	body = plans.EncodeDocument(note, content)
	if _, err := s.db.Exec(`UPDATE weekly_plans SET body = ? WHERE week_key = ?`, body, key); err != nil {
		return nil, fmt.Errorf("updating weekly plan: %w", err)
	}
	return decodedPlan(weekStart, body), nil
}

// Delete removes a week's plan row.
func (s *Store) Delete(weekStart time.Time) error {
	res, err := s.db.Exec(`DELETE FROM weekly_plans WHERE week_key = ?`, plans.FormatWeekKey(weekStart))
	if err != nil {
		return fmt.Errorf("deleting weekly plan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting weekly plan: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", plans.ErrPlanNotFound, plans.FormatWeekKey(weekStart))
	}
	return nil
}

// Duplicate copies the source week's document to the target week with the
// same "Week of" rewrite as the file adapter.
func (s *Store) Duplicate(sourceWeekStart, targetWeekStart time.Time) (*plans.WeeklyPlan, error) {
	sourceKey := plans.FormatWeekKey(sourceWeekStart)
	targetKey := plans.FormatWeekKey(targetWeekStart)

	body, err := s.planBody(sourceWeekStart)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: source %s", plans.ErrPlanNotFound, sourceKey)
		}
		return nil, err
	}
	if _, err := s.planBody(targetWeekStart); err == nil {
		return nil, fmt.Errorf("%w: target %s", plans.ErrPlanExists, targetKey)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	text := plans.RewriteWeekReferences(body, targetWeekStart)
	if _, err := s.db.Exec(`INSERT INTO weekly_plans (week_key, body) VALUES (?, ?)`, targetKey, text); err != nil {
		return nil, fmt.Errorf("inserting weekly plan: %w", err)
	}
	return decodedPlan(targetWeekStart, text), nil
}

// --- Internals ---

func (s *Store) sectionExists(name string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM sections WHERE name = ?`, name).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking section %q: %w", name, err)
	}
	return true, nil
}

func (s *Store) sectionTasks(name string) ([]tasks.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, description, priority, due_date, comments, completed, created_at, updated_at
		FROM tasks WHERE section_name = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("querying tasks for %q: %w", name, err)
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Store) planBody(weekStart time.Time) (string, error) {
	var body string
	err := s.db.QueryRow(
		`SELECT body FROM weekly_plans WHERE week_key = ?`,
		plans.FormatWeekKey(weekStart),
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("reading weekly plan %s: %w", plans.FormatWeekKey(weekStart), err)
	}
	return body, nil
}

func decodedPlan(weekStart time.Time, body string) *plans.WeeklyPlan {
	note, content := plans.DecodeDocument(body)
	plan := plans.WeeklyPlan{WeekStart: weekStart, Content: content}
	if note != "" {
		plan.ShortWeekNote = &note
	}
	return &plan
}

// timeColumn renders an optional timestamp for storage.
func timeColumn(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

type scannable interface {
	Scan(dest ...any) error
}

// scanTask reads one task row into the domain type.
func scanTask(row scannable) (*tasks.Task, error) {
	var (
		task      tasks.Task
		priority  string
		due       sql.NullString
		comments  sql.NullString
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&task.ID, &task.Description, &priority, &due, &comments,
		&task.Completed, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}

	task.Priority = tasks.Priority(priority)
	if due.Valid {
		t, err := time.Parse(time.RFC3339Nano, due.String)
		if err != nil {
			return nil, fmt.Errorf("parsing due date: %w", err)
		}
		task.DueDate = &t
	}
	if comments.Valid {
		c := comments.String
		task.Comments = &c
	}

	var err error
	if task.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if task.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &task, nil
}

// scanTasks collects every readable row. Rows that fail to scan or parse are
// skipped individually so one bad record never fails a whole listing.
func scanTasks(rows *sql.Rows) ([]tasks.Task, error) {
	result := []tasks.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Printf("WARNING: skipping task row: %v", err)
			continue
		}
		result = append(result, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return result, nil
}
