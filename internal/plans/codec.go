package plans

import "strings"

// The short-note convention: a document is `<note>\n\n<content>` when a note
// is present, otherwise just `<content>`. The split is inferred on decode
// from heading markers and blank-line structure. Both directions live here
// and nowhere else — callers never poke at the heuristic.

// DecodeDocument splits a stored document into its optional short note and
// its content. An empty note return means the document has no note.
//
// Rules, in order:
//  1. If the text has a heading line and at least one non-empty line before
//     it, the leading block is the note and everything from the heading on
//     is the content.
//  2. With a heading but no leading block, the whole text is content.
//  3. With no heading and a blank-line paragraph split, the first paragraph
//     is the note and the remainder is the content.
//  4. With no heading and no split, the whole text is the note.
func DecodeDocument(text string) (note, content string) {
	if text == "" {
		return "", ""
	}

	lines := strings.Split(text, "\n")

	heading := -1
	for i, line := range lines {
		if strings.HasPrefix(line, "#") {
			heading = i
			break
		}
	}

	if heading >= 0 {
		lead := lines[:heading]
		if !hasText(lead) {
			return "", text
		}
		note = strings.TrimRight(strings.Join(lead, "\n"), "\n")
		return note, strings.Join(lines[heading:], "\n")
	}

	// No heading anywhere: split at the first blank line that has text on
	// both sides.
	for i, line := range lines {
		if strings.TrimSpace(line) == "" && hasText(lines[:i]) && hasText(lines[i+1:]) {
			return strings.Join(lines[:i], "\n"), strings.Join(lines[i+1:], "\n")
		}
	}

	return strings.TrimRight(text, "\n"), ""
}

// EncodeDocument is the inverse of DecodeDocument for convention-following
// input: note and content joined by one blank line, or the bare content when
// there is no note.
func EncodeDocument(note, content string) string {
	if note == "" {
		return content
	}
	return note + "\n\n" + content
}

// hasText reports whether any line contains non-whitespace.
func hasText(lines []string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return true
		}
	}
	return false
}
