// Package hierarchy reconstructs finding-aid nesting from the printed
// left-margin references.
//
// The numbering schemes in scope, in parse order:
//
//	slash paths   "2/1", "10./4./7."   full path, children attach via composite syntax
//	composite     "6.(1)", "101 (1)"   path (parent, child), root context (parent,)
//	fuzzy numeric "25.", "106.?"       leading digit run, path and root (n,)
//	child-only    "(3)"                attaches under the running root context
//
// First match wins; there is no backtracking across categories. Anything
// else parses to no path at all — never an error.
package hierarchy

import (
	"regexp"
	"strconv"
	"strings"

	"findingaids/pkg/models"
)

var (
	slashPathRe  = regexp.MustCompile(`^\d+\.?(?:/\d+\.?)+\.?$`)
	compositeRe  = regexp.MustCompile(`^(\d+)\.?\s*\((\d+)\)$`)
	leadingNumRe = regexp.MustCompile(`^\d+`)
	childRe      = regexp.MustCompile(`^\((\d+)\)$`)
)

// clean trims the raw reference and strips stray quote characters the OCR
// tends to leave behind (e.g. `"26.`). Returns "" for empty or "nan".
func clean(ref string) string {
	s := strings.TrimSpace(ref)
	if s == "" || strings.EqualFold(s, "nan") {
		return ""
	}
	s = strings.NewReplacer(`"`, "", `'`, "").Replace(s)
	return strings.TrimSpace(s)
}

// ParseParent classifies a parent-style reference and returns its path and
// the root context it establishes for subsequent bare children. ok is false
// when the reference matches none of the parent forms.
func ParseParent(ref string) (path, root models.Path, ok bool) {
	s := clean(ref)
	if s == "" {
		return nil, nil, false
	}

	// Slash paths: 2/1, 2/1., 2./1, 10./4./7.
	if slashPathRe.MatchString(s) {
		parts := strings.Split(strings.TrimRight(s, "."), "/")
		p := make(models.Path, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.Atoi(strings.TrimRight(part, "."))
			if err != nil {
				return nil, nil, false
			}
			p = append(p, n)
		}
		// Children of a slash path attach under the full path.
		return p, p, true
	}

	// Composite: 6.(1), 101.(1), 101. (1), 101(1)
	if m := compositeRe.FindStringSubmatch(s); m != nil {
		parent, _ := strconv.Atoi(m[1])
		child, _ := strconv.Atoi(m[2])
		return models.Path{parent, child}, models.Path{parent}, true
	}

	// Fuzzy numeric parent: "106.?", "102.", "25", "25." — only when the
	// string carries neither slash nor parenthesis syntax.
	if !strings.Contains(s, "/") && !strings.Contains(s, "(") {
		if m := leadingNumRe.FindString(s); m != "" {
			n, _ := strconv.Atoi(m)
			p := models.Path{n}
			return p, p, true
		}
	}

	return nil, nil, false
}

// ParseChild matches a bare child reference of the exact form "(n)".
func ParseChild(ref string) (int, bool) {
	m := childRe.FindStringSubmatch(strings.TrimSpace(ref))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
