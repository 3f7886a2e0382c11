// Package tools implements the MCP tool handlers for the planner.
//
// Each handler is a struct that receives its store via the constructor and
// exposes Definition()/Handle() compatible with mcp-go registration. Domain
// errors (not found, already exists, invalid input) come back as tool error
// results so the client can surface the message; storage failures propagate
// as handler errors.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/appdotbuilder/weekly-planner/internal/plans"
	"github.com/appdotbuilder/weekly-planner/internal/tasks"
	"github.com/mark3labs/mcp-go/mcp"
)

// parseDate accepts a calendar date as YYYY-MM-DD, or a full RFC3339
// timestamp whose date part is used.
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// jsonResult marshals a response value into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling response: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// storeResult maps a store error onto the MCP result contract: expected
// domain errors become tool errors, anything else propagates.
func storeResult(err error) (*mcp.CallToolResult, error) {
	if isDomainErr(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func isDomainErr(err error) bool {
	return errors.Is(err, tasks.ErrSectionNotFound) ||
		errors.Is(err, tasks.ErrSectionExists) ||
		errors.Is(err, tasks.ErrTaskNotFound) ||
		errors.Is(err, tasks.ErrInvalidInput) ||
		errors.Is(err, plans.ErrPlanNotFound) ||
		errors.Is(err, plans.ErrPlanExists)
}

// --- Raw argument access ---
//
// Partial-update tools must tell three cases apart: key absent (keep the
// stored value), key present with null (clear the field), key present with a
// value. req.GetString cannot make that distinction, so these helpers work
// on the raw argument map.

// stringArg returns the value of a string-or-null argument and whether the
// key was present at all. A null value yields (nil, true, nil).
func stringArg(args map[string]any, key string) (*string, bool, error) {
	raw, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	if raw == nil {
		return nil, true, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, true, fmt.Errorf("'%s' must be a string or null", key)
	}
	return &s, true, nil
}

// boolArg returns the value of a boolean argument and whether it was present.
func boolArg(args map[string]any, key string) (*bool, bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, ok, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return nil, true, fmt.Errorf("'%s' must be a boolean", key)
	}
	return &b, true, nil
}

// dateArg returns the parsed value of a date-or-null argument and whether it
// was present.
func dateArg(args map[string]any, key string) (*time.Time, bool, error) {
	s, present, err := stringArg(args, key)
	if err != nil || !present || s == nil {
		return nil, present, err
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, true, fmt.Errorf("'%s': %v", key, err)
	}
	return &t, true, nil
}
