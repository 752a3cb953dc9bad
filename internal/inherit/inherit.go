// Package inherit propagates values from ancestor rows to descendant rows.
//
// All passes are forward-only: a row may inherit only from rows that appear
// earlier in the document. Rows whose value is purely inherited never become
// donors themselves, so re-running a pass over its own output changes
// nothing.
package inherit

import (
	"strings"

	"findingaids/pkg/models"
)

// isNonEmpty reports whether a cell carries a real value. Whitespace-only
// strings and the literal "nan" count as empty.
func isNonEmpty(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && !strings.EqualFold(t, "nan")
}

// Units fills UnitInherited by straight carry-forward of the most recent
// non-empty Unit. No hierarchy involved.
func Units(rows []models.Record) {
	current := ""
	for i := range rows {
		if isNonEmpty(rows[i].Unit) {
			current = rows[i].Unit
			rows[i].UnitInherited = rows[i].Unit
		} else {
			rows[i].UnitInherited = current
		}
	}
}

// ancestor returns the nearest proper ancestor of path present in seen,
// walking P[:-1], P[:-2], ... down to length one.
func ancestor(path models.Path, seen map[string]bool) (string, bool) {
	for cur := path.Parent(); len(cur) > 0; cur = cur.Parent() {
		if key := cur.String(); seen[key] {
			return key, true
		}
	}
	return "", false
}

// Series fills SeriesInherited and SeriesNotesInherited from the nearest
// previously-seen ancestor. Series and its notes travel as a pair: a row
// enters the donor map when either field is non-empty, and it contributes
// both of its own values, empty or not. Each field then resolves
// independently, own value winning over the inherited one.
func Series(rows []models.Record) {
	type entry struct {
		series string
		notes  string
	}
	donors := map[string]entry{}
	seen := map[string]bool{}

	for i := range rows {
		r := &rows[i]

		var inherited entry
		if r.Path != nil {
			if key, ok := ancestor(r.Path, seen); ok {
				inherited = donors[key]
			}
		}

		if isNonEmpty(r.Series) {
			r.SeriesInherited = r.Series
		} else {
			r.SeriesInherited = inherited.series
		}
		if isNonEmpty(r.SeriesNotes) {
			r.SeriesNotesInherited = r.SeriesNotes
		} else {
			r.SeriesNotesInherited = inherited.notes
		}

		if r.Path != nil && (isNonEmpty(r.Series) || isNonEmpty(r.SeriesNotes)) {
			key := r.Path.String()
			donors[key] = entry{series: r.Series, notes: r.SeriesNotes}
			seen[key] = true
		}
	}
}

// GroupNotes fills GroupNotesInherited from the nearest previously-seen
// ancestor with its own non-empty note.
func GroupNotes(rows []models.Record) {
	donors := map[string]string{}
	seen := map[string]bool{}

	for i := range rows {
		r := &rows[i]

		if isNonEmpty(r.GroupNotes) {
			r.GroupNotesInherited = r.GroupNotes
		} else if r.Path != nil {
			if key, ok := ancestor(r.Path, seen); ok {
				r.GroupNotesInherited = donors[key]
			}
		}

		if r.Path != nil && isNonEmpty(r.GroupNotes) {
			key := r.Path.String()
			donors[key] = r.GroupNotes
			seen[key] = true
		}
	}
}
