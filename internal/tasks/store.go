package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for the section/task operations. Callers match them with
// errors.Is; the wrapped message carries the offending key.
var (
	ErrSectionNotFound = errors.New("section not found")
	ErrSectionExists   = errors.New("section already exists")
	ErrTaskNotFound    = errors.New("task not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// Store defines the persistence contract for sections and tasks.
// Abstracted so the file-backed and SQLite-backed adapters are
// interchangeable behind the tool handlers.
type Store interface {
	Sections() ([]Section, error)
	CreateSection(name string) (*Section, error)
	RenameSection(oldName, newName string) error
	DeleteSection(name string) error
	TasksBySection(name string) ([]Task, error)
	AllTasks() ([]Task, error)
	CreateTask(params CreateTaskParams) (*Task, error)
	UpdateTask(sectionName, taskID string, patch TaskPatch) (*Task, error)
	DeleteTask(sectionName, taskID string) error
}

// FileStore implements Store with one JSON file per section.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a filesystem-backed section store rooted at dir.
// The directory is created lazily on first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// sectionPath returns the absolute path of a section's backing file.
func (fs *FileStore) sectionPath(name string) string {
	return filepath.Join(fs.dir, name+".json")
}

// ValidateSectionName rejects names that are empty or not filename-safe.
// Both storage adapters enforce it so records stay portable between them.
func ValidateSectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: section name must not be empty", ErrInvalidInput)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: section name %q must be filename-safe", ErrInvalidInput, name)
	}
	return nil
}

// Sections returns every readable section sorted by name. Unreadable or
// corrupt records are skipped individually so one bad file never fails the
// whole listing.
func (fs *FileStore) Sections() ([]Section, error) {
	names, err := fs.sectionFiles()
	if err != nil {
		return nil, err
	}

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		sec, err := fs.loadSection(name)
		if err != nil {
			log.Printf("WARNING: skipping section file %s.json: %v", name, err)
			continue
		}
		sections = append(sections, *sec)
	}

	return sections, nil
}

// CreateSection persists a new empty section.
func (fs *FileStore) CreateSection(name string) (*Section, error) {
	if err := ValidateSectionName(name); err != nil {
		return nil, err
	}
	if fs.exists(name) {
		return nil, fmt.Errorf("%w: %q", ErrSectionExists, name)
	}

	sec := &Section{Name: name, Tasks: []Task{}}
	if err := fs.writeSection(sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// RenameSection moves a section record (tasks included, unmodified) to a new
// key. The write to the new key and the removal of the old one are separate
// steps; if the second fails both keys may transiently exist.
func (fs *FileStore) RenameSection(oldName, newName string) error {
	if err := ValidateSectionName(newName); err != nil {
		return err
	}
	sec, err := fs.loadSection(oldName)
	if err != nil {
		return err
	}
	if fs.exists(newName) {
		return fmt.Errorf("%w: %q", ErrSectionExists, newName)
	}

	sec.Name = newName
	if err := fs.writeSection(sec); err != nil {
		return err
	}
	if err := os.Remove(fs.sectionPath(oldName)); err != nil {
		return fmt.Errorf("removing old section file: %w", err)
	}
	return nil
}

// DeleteSection removes a section and all its tasks.
func (fs *FileStore) DeleteSection(name string) error {
	err := os.Remove(fs.sectionPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrSectionNotFound, name)
		}
		return fmt.Errorf("deleting section file: %w", err)
	}
	return nil
}

// TasksBySection returns a section's tasks sorted by priority then due date.
// A missing section yields an empty slice, not an error.
func (fs *FileStore) TasksBySection(name string) ([]Task, error) {
	sec, err := fs.loadSection(name)
	if err != nil {
		if errors.Is(err, ErrSectionNotFound) {
			return []Task{}, nil
		}
		return nil, err
	}

	ts := make([]Task, len(sec.Tasks))
	copy(ts, sec.Tasks)
	SortTasks(ts)
	return ts, nil
}

// AllTasks aggregates the tasks of every readable section, concatenated in
// section iteration order. Corrupt files are skipped.
func (fs *FileStore) AllTasks() ([]Task, error) {
	names, err := fs.sectionFiles()
	if err != nil {
		return nil, err
	}

	all := []Task{}
	for _, name := range names {
		sec, err := fs.loadSection(name)
		if err != nil {
			log.Printf("WARNING: skipping section file %s.json: %v", name, err)
			continue
		}
		all = append(all, sec.Tasks...)
	}
	return all, nil
}

// CreateTask appends a new task to a section, implicitly creating the
// section record if it does not exist yet. This implicit creation is a
// documented side effect, relied on by first-task flows in the client.
func (fs *FileStore) CreateTask(params CreateTaskParams) (*Task, error) {
	if err := ValidateSectionName(params.SectionName); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("%w: task description must not be empty", ErrInvalidInput)
	}
	if err := ValidatePriority(params.Priority); err != nil {
		return nil, err
	}

	sec, err := fs.loadSection(params.SectionName)
	if errors.Is(err, ErrSectionNotFound) {
		sec = &Section{Name: params.SectionName, Tasks: []Task{}}
	} else if err != nil {
		return nil, err
	}

	ts := now()
	task := Task{
		ID:          uuid.NewString(),
		Description: params.Description,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		Comments:    params.Comments,
		Completed:   false,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	sec.Tasks = append(sec.Tasks, task)
	if err := fs.writeSection(sec); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial update to one task. Only fields present in
// the patch change; updated_at is refreshed regardless.
func (fs *FileStore) UpdateTask(sectionName, taskID string, patch TaskPatch) (*Task, error) {
	sec, err := fs.loadSection(sectionName)
	if err != nil {
		return nil, err
	}

	idx := taskIndex(sec.Tasks, taskID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: task %q in section %q", ErrTaskNotFound, taskID, sectionName)
	}

	task := sec.Tasks[idx]
	applyPatch(&task, patch)
	if strings.TrimSpace(task.Description) == "" {
		return nil, fmt.Errorf("%w: task description must not be empty", ErrInvalidInput)
	}
	if err := ValidatePriority(task.Priority); err != nil {
		return nil, err
	}
	task.UpdatedAt = now()

	sec.Tasks[idx] = task
	if err := fs.writeSection(sec); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes one task from its section. The section record stays,
// even when its task list becomes empty.
func (fs *FileStore) DeleteTask(sectionName, taskID string) error {
	sec, err := fs.loadSection(sectionName)
	if err != nil {
		return err
	}

	idx := taskIndex(sec.Tasks, taskID)
	if idx < 0 {
		return fmt.Errorf("%w: task %q in section %q", ErrTaskNotFound, taskID, sectionName)
	}

	sec.Tasks = append(sec.Tasks[:idx], sec.Tasks[idx+1:]...)
	return fs.writeSection(sec)
}

// --- Internals ---

// applyPatch copies the supplied patch fields onto a task.
func applyPatch(task *Task, patch TaskPatch) {
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
}

// taskIndex returns the index of the task with the given ID, or -1.
func taskIndex(ts []Task, id string) int {
	for i := range ts {
		if ts[i].ID == id {
			return i
		}
	}
	return -1
}

// exists reports whether a section file is present.
func (fs *FileStore) exists(name string) bool {
	_, err := os.Stat(fs.sectionPath(name))
	return err == nil
}

// sectionFiles lists section names (filenames without the .json suffix) in
// filename order. A missing directory is an empty store, not an error.
func (fs *FileStore) sectionFiles() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading sections directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		// Dotfiles cover stray temp files from interrupted writes.
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	// ReadDir orders by filename, where the ".json" suffix can shuffle names
	// sharing a prefix. Sort the bare names.
	sort.Strings(names)
	return names, nil
}

// loadSection reads and parses one section record.
func (fs *FileStore) loadSection(name string) (*Section, error) {
	data, err := os.ReadFile(fs.sectionPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
		}
		return nil, fmt.Errorf("reading section %q: %w", name, err)
	}

	var sec Section
	if err := json.Unmarshal(data, &sec); err != nil {
		return nil, fmt.Errorf("parsing section %q: %w", name, err)
	}
	if sec.Tasks == nil {
		sec.Tasks = []Task{}
	}
	return &sec, nil
}

// writeSection rewrites a whole section record. The write goes through a
// temp file in the same directory followed by a rename, so readers never
// observe a partially written record.
func (fs *FileStore) writeSection(sec *Section) error {
	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("creating sections directory: %w", err)
	}

	data, err := json.MarshalIndent(sec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling section %q: %w", sec.Name, err)
	}

	tmp, err := os.CreateTemp(fs.dir, ".section-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing section %q: %w", sec.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.sectionPath(sec.Name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming section file: %w", err)
	}
	return nil
}
