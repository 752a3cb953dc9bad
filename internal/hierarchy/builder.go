package hierarchy

import (
	"regexp"
	"strconv"
	"strings"

	"findingaids/pkg/models"
)

// Builder assigns hierarchy paths to flattened rows. It is stateful: bare
// child references attach under the most recent parent's root context, so
// rows must be fed in document order.
type Builder struct {
	lastRoot models.Path
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Assign walks rows in order and fills in Path for every row whose
// reference (or, failing that, group number) yields one. Rows that resolve
// to no path keep a nil Path; they still take part in group output but
// never in inheritance.
func (b *Builder) Assign(rows []models.Record) {
	for i := range rows {
		rows[i].Path = b.assignOne(&rows[i])
	}
}

func (b *Builder) assignOne(r *models.Record) models.Path {
	if path, root, ok := ParseParent(r.Reference); ok {
		b.lastRoot = root
		return path
	}
	if n, ok := ParseChild(r.Reference); ok {
		if b.lastRoot != nil {
			return b.lastRoot.Child(n)
		}
		// Orphan child with no preceding parent: treat n as a root.
		return models.Path{n}
	}
	// Fallback: a purely numeric group column places the row at depth one.
	// The running root context is left untouched.
	if g := strings.TrimSpace(r.Group); isDigits(g) {
		n, _ := strconv.Atoi(g)
		return models.Path{n}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

var (
	topLevelRe  = regexp.MustCompile(`^\d+\.\s*$`)
	parenPairRe = regexp.MustCompile(`^\d+\.?\s*\(\d+\)\s*$`)
	slashPairRe = regexp.MustCompile(`^\d+\s*/\s*\d+\s*$`)
	bareChildRe = regexp.MustCompile(`^\(?(\d+)\)?\s*$`)
)

// RepairReferences rewrites bare child numbers like "(2)" or "2" into fully
// qualified references by re-attaching the most recent top-level number.
// The output style (paren "5.(2)" versus slash "5/2") follows whichever
// qualified form the document last used; paren is the default. Rows are
// modified in place.
func RepairReferences(rows []models.Record) {
	top := ""
	slashStyle := false
	for i := range rows {
		ref := strings.TrimSpace(rows[i].Reference)
		if ref == "" {
			continue
		}
		if topLevelRe.MatchString(ref) {
			top = strings.TrimSuffix(ref, ".")
		} else if m := bareChildRe.FindStringSubmatch(ref); m != nil && top != "" {
			if slashStyle {
				rows[i].Reference = top + "/" + m[1]
			} else {
				rows[i].Reference = top + ".(" + m[1] + ")"
			}
		}
		// Style tracking keys off the reference as printed, not the repair.
		if parenPairRe.MatchString(ref) {
			slashStyle = false
		} else if slashPairRe.MatchString(ref) {
			slashStyle = true
		}
	}
}
