// Package plans implements the weekly-plan subsystem: one freeform markdown
// document per calendar week, keyed by the Monday date. An optional "short
// week note" rides at the top of the document, separated from the body by a
// text convention rather than structured fields (see codec.go).
package plans

import "time"

// WeeklyPlan is the decoded view of one week's document.
type WeeklyPlan struct {
	WeekStart     time.Time `json:"week_start"`
	ShortWeekNote *string   `json:"short_week_note"`
	Content       string    `json:"content"`
}

// PlanPatch holds partial update fields for a plan. ShortNote is nullable as
// well as optional: ShortNoteSet=true with a nil value clears the note,
// ShortNoteSet=false keeps the existing one.
type PlanPatch struct {
	ShortNote    *string
	ShortNoteSet bool
	Content      *string
}

// notePtr maps the codec's empty-string-means-absent convention to the
// nullable wire field.
func notePtr(note string) *string {
	if note == "" {
		return nil
	}
	return &note
}
