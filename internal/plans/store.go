package plans

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Sentinel errors for the weekly-plan operations.
var (
	ErrPlanNotFound = errors.New("weekly plan not found")
	ErrPlanExists   = errors.New("weekly plan already exists")
)

// weekOfPattern matches the "Week of DD-MMM-YYYY" heading text that
// duplication rewrites. Only this pattern is touched; every other date-like
// substring in a body is left alone.
var weekOfPattern = regexp.MustCompile(`(?i)Week of \d{1,2}-[A-Za-z]{3}-\d{4}`)

// Store defines the persistence contract for weekly plans. All weekStart
// arguments are expected to be Monday dates (see MondayOf).
type Store interface {
	Get(weekStart time.Time) (*WeeklyPlan, error)
	List() ([]WeeklyPlan, error)
	Create(weekStart time.Time, shortNote *string, content string) (*WeeklyPlan, error)
	Update(weekStart time.Time, patch PlanPatch) (*WeeklyPlan, error)
	Delete(weekStart time.Time) error
	Duplicate(sourceWeekStart, targetWeekStart time.Time) (*WeeklyPlan, error)
}

// FileStore implements Store with one markdown file per week.
type FileStore struct {
	dir string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a filesystem-backed plan store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// planPath returns the absolute path of a week's backing file.
func (fs *FileStore) planPath(weekStart time.Time) string {
	return filepath.Join(fs.dir, FormatWeekKey(weekStart)+".md")
}

// Get returns the decoded plan for a week, or nil when none is stored.
func (fs *FileStore) Get(weekStart time.Time) (*WeeklyPlan, error) {
	data, err := os.ReadFile(fs.planPath(weekStart))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading weekly plan %s: %w", FormatWeekKey(weekStart), err)
	}

	note, content := DecodeDocument(string(data))
	return &WeeklyPlan{WeekStart: weekStart, ShortWeekNote: notePtr(note), Content: content}, nil
}

// List returns every stored plan, most recent week first. Files whose names
// don't parse as week keys are ignored; unreadable files are skipped with a
// logged diagnostic.
func (fs *FileStore) List() ([]WeeklyPlan, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []WeeklyPlan{}, nil
		}
		return nil, fmt.Errorf("reading weekly plans directory: %w", err)
	}

	var weeks []time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		ws, err := ParseWeekKey(strings.TrimSuffix(entry.Name(), ".md"))
		if err != nil {
			continue
		}
		weeks = append(weeks, ws)
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].After(weeks[j]) })

	result := make([]WeeklyPlan, 0, len(weeks))
	for _, ws := range weeks {
		plan, err := fs.Get(ws)
		if err != nil {
			log.Printf("WARNING: skipping weekly plan %s: %v", FormatWeekKey(ws), err)
			continue
		}
		if plan != nil {
			result = append(result, *plan)
		}
	}
	return result, nil
}

// Create persists a new plan for a week that has none yet.
func (fs *FileStore) Create(weekStart time.Time, shortNote *string, content string) (*WeeklyPlan, error) {
	key := FormatWeekKey(weekStart)
	if fs.exists(weekStart) {
		return nil, fmt.Errorf("%w: %s", ErrPlanExists, key)
	}

	note := ""
	if shortNote != nil {
		note = *shortNote
	}
	if err := fs.writeDocument(weekStart, EncodeDocument(note, content)); err != nil {
		return nil, err
	}
	return &WeeklyPlan{WeekStart: weekStart, ShortWeekNote: notePtr(note), Content: content}, nil
}

// Update applies a partial update to an existing plan. The stored document
// is decoded first; fields absent from the patch keep their decoded values.
func (fs *FileStore) Update(weekStart time.Time, patch PlanPatch) (*WeeklyPlan, error) {
	key := FormatWeekKey(weekStart)
	data, err := os.ReadFile(fs.planPath(weekStart))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, key)
		}
		return nil, fmt.Errorf("reading weekly plan %s: %w", key, err)
	}

	note, content := DecodeDocument(string(data))
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

	if err := fs.writeDocument(weekStart, EncodeDocument(note, content)); err != nil {
		return nil, err
	}
	return &WeeklyPlan{WeekStart: weekStart, ShortWeekNote: notePtr(note), Content: content}, nil
}

// Delete removes a week's plan.
func (fs *FileStore) Delete(weekStart time.Time) error {
	err := os.Remove(fs.planPath(weekStart))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrPlanNotFound, FormatWeekKey(weekStart))
		}
		return fmt.Errorf("deleting weekly plan: %w", err)
	}
	return nil
}

// Duplicate copies the source week's document to the target week, rewriting
// every "Week of DD-MMM-YYYY" occurrence to the target date. A document with
// no such heading gets one prepended. The short note is re-extracted from
// the rewritten text with the standard convention.
func (fs *FileStore) Duplicate(sourceWeekStart, targetWeekStart time.Time) (*WeeklyPlan, error) {
	sourceKey := FormatWeekKey(sourceWeekStart)
	targetKey := FormatWeekKey(targetWeekStart)

	data, err := os.ReadFile(fs.planPath(sourceWeekStart))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: source %s", ErrPlanNotFound, sourceKey)
		}
		return nil, fmt.Errorf("reading weekly plan %s: %w", sourceKey, err)
	}
	if fs.exists(targetWeekStart) {
		return nil, fmt.Errorf("%w: target %s", ErrPlanExists, targetKey)
	}

	text := RewriteWeekReferences(string(data), targetWeekStart)
	if err := fs.writeDocument(targetWeekStart, text); err != nil {
		return nil, err
	}

	note, content := DecodeDocument(text)
	return &WeeklyPlan{WeekStart: targetWeekStart, ShortWeekNote: notePtr(note), Content: content}, nil
}

// RewriteWeekReferences replaces all "Week of <date>" headings in text with
// the target week's date, or prepends a fresh heading when none is present.
func RewriteWeekReferences(text string, targetWeekStart time.Time) string {
	replacement := "Week of " + FormatWeekKey(targetWeekStart)
	if weekOfPattern.MatchString(text) {
		return weekOfPattern.ReplaceAllString(text, replacement)
	}
	return "# " + replacement + "\n\n" + text
}

// --- Internals ---

// exists reports whether a week's file is present.
func (fs *FileStore) exists(weekStart time.Time) bool {
	_, err := os.Stat(fs.planPath(weekStart))
	return err == nil
}

// writeDocument rewrites a whole week document via temp file + rename.
func (fs *FileStore) writeDocument(weekStart time.Time, text string) error {
	if err := os.MkdirAll(fs.dir, 0o755); err != nil {
		return fmt.Errorf("creating weekly plans directory: %w", err)
	}

	tmp, err := os.CreateTemp(fs.dir, ".plan-*.md")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing weekly plan: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, fs.planPath(weekStart)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming weekly plan file: %w", err)
	}
	return nil
}
