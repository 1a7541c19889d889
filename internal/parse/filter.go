// Package parse turns loosely formatted request parameters into typed values.
package parse

import (
	"net/url"
	"regexp"
	"strings"

	"hostel-dashboard-backend/internal/apperr"
	"hostel-dashboard-backend/internal/model"
	"hostel-dashboard-backend/internal/query"
)

var spaceRe = regexp.MustCompile(`\s+`)

// normalize lower-cases s and collapses whitespace runs.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(spaceRe.ReplaceAllString(s, " ")))
}

// isAll reports whether v selects everything, which the dashboard sends as "all".
func isAll(v string) bool {
	return v == "" || v == "all" || v == "any"
}

// Filter builds a query.Filter from request parameters category, priority,
// search and read. Unknown enum values are a Validation error.
func Filter(values url.Values) (query.Filter, error) {
	const op = "parse.Filter"
	var f query.Filter

	if raw := normalize(values.Get("category")); !isAll(raw) {
		c := model.Category(raw)
		if !c.Valid() {
			return query.Filter{}, apperr.Validation(op, "unknown category %q", values.Get("category"))
		}
		f.Category = &c
	}

	if raw := normalize(values.Get("priority")); !isAll(raw) {
		p := model.Priority(raw)
		if !p.Valid() {
			return query.Filter{}, apperr.Validation(op, "unknown priority %q", values.Get("priority"))
		}
		f.Priority = &p
	}

	f.Search = strings.TrimSpace(spaceRe.ReplaceAllString(values.Get("search"), " "))

	read, err := ReadState(values.Get("read"))
	if err != nil {
		return query.Filter{}, err
	}
	f.Read = read
	return f, nil
}

// ReadState parses a read-state selector. It accepts true/false, read/unread
// and 1/0; an empty value or "all" yields nil.
func ReadState(raw string) (*bool, error) {
	v := normalize(raw)
	if isAll(v) {
		return nil, nil
	}

	var read bool
	switch v {
	case "true", "read", "1", "yes":
		read = true
	case "false", "unread", "0", "no":
		read = false
	default:
		return nil, apperr.Validation("parse.ReadState", "unknown read state %q", raw)
	}
	return &read, nil
}
