package model

import (
	"fmt"
	"regexp"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	reIncomplete = regexp.MustCompile(`(?i)incomplete value`)
	reNotAllowed = regexp.MustCompile(`(?i)not allowed|unknown field`)
	reConflict   = regexp.MustCompile(`(?i)conflicting values|cannot unify|incompatible`)
	reMismatch   = regexp.MustCompile(`(?i)expected .* got .*|invalid value`)
)

// CueErrDetails turns a CUE validation error into one human line per
// problem, with the config path in front of the message.
func CueErrDetails(err error) []string {
	if err == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, e := range cueerrors.Errors(err) {
		raw, _ := e.Msg()
		path := normalizePath(e.Path())
		msg := classify(raw, path)

		key := path + "\x00" + msg
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if path != "" {
			msg = path + ": " + msg
		}
		out = append(out, msg)
	}
	return out
}

func classify(raw, path string) string {
	switch {
	case reNotAllowed.MatchString(raw):
		return fmt.Sprintf("field %s is not allowed", last(path))
	case reIncomplete.MatchString(raw):
		return fmt.Sprintf("field %s is required", last(path))
	case reConflict.MatchString(raw):
		return fmt.Sprintf("field %s has a conflicting value", last(path))
	case reMismatch.MatchString(raw):
		return fmt.Sprintf("field %s has a wrong type or value", last(path))
	default:
		return raw
	}
}

func normalizePath(p []string) string {
	if len(p) == 0 {
		return ""
	}
	// drop the leading #Config definition
	if strings.HasPrefix(p[0], "#") {
		p = p[1:]
	}
	return strings.Join(p, ".")
}

func last(p string) string {
	if p == "" {
		return p
	}
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return p[i+1:]
	}
	return p
}
