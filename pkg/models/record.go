package models

import "strconv"

// Path is an item's position in the finding-aid hierarchy, one integer per
// nesting level. A nil Path means no position could be derived from the
// printed reference.
type Path []int

// String renders the path in dotted form, e.g. (25, 3) -> "25.3".
// The rendering is injective for positive components, so it is safe to use
// as a map key standing in for the path itself.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	s := strconv.Itoa(p[0])
	for _, n := range p[1:] {
		s += "." + strconv.Itoa(n)
	}
	return s
}

// Parent returns the path with the last component removed, or nil for a
// single-component path.
func (p Path) Parent() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[:len(p)-1]
}

// Child returns a new path with n appended. The receiver is not modified.
func (p Path) Child(n int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = n
	return out
}

// Record is one flattened finding-aid entry: a single output row.
//
// Row order is significant. The hierarchy and inheritance passes read rows
// top to bottom and carry state forward, so records must never be re-sorted
// before those passes have run.
type Record struct {
	// Provenance
	ChunkIndex int    // 1-based index of the source chunk
	PageRange  string // "a-b", 1-based inclusive page numbers

	// Fields as extracted by the model
	Unit        string // "Unit n" line in effect for this item
	Reference   string // left-margin numbering exactly as printed, e.g. "25.(3)"
	Series      string // parent-level heading above the item's block
	SeriesNotes string // verbatim "Note:" under the series heading
	Group       string // group label (flat schema only)
	GroupNotes  string // group-level note (flat schema only)
	Title       string
	Text        string
	Dates       string // verbatim date string
	Annotations string // item-level annotations joined with "; "

	// Derived
	Path Path // from Reference (or Group fallback); nil if unparseable

	// Inherited variants, filled by the inheritance passes
	UnitInherited        string
	SeriesInherited      string
	SeriesNotesInherited string
	GroupNotesInherited  string

	// Date enrichment
	DatesSortable     string // ISO YYYY-MM-DD; 9999-12-31 sentinel sorts last
	DateComplete      string // "complete" or "incomplete"
	StartDate         string // reconstructed start-of-range text
	EndDate           string // reconstructed end-of-range text
	StartDateSortable string
	EndDateSortable   string
	StartDateComplete string
	EndDateComplete   string
}

// Columns is the tabular output header, in order. Inherited and derived
// columns sit directly after the field they derive from, matching the
// layout of the archive spreadsheets this feeds.
var Columns = []string{
	"Unit",
	"Unit_Inherited",
	"Finding_Aid_Reference",
	"Hierarchy_Path",
	"Series",
	"Series_Inherited",
	"Series_Notes",
	"Series_Notes_Inherited",
	"Group",
	"Group_Notes",
	"Group_Notes_Inherited",
	"Title",
	"Text",
	"Dates",
	"Dates_Sortable",
	"Date_Complete",
	"Start_Date",
	"End_Date",
	"Start_Date_Sortable",
	"End_Date_Sortable",
	"Start_Date_Complete",
	"End_Date_Complete",
	"Item_Annotations",
	"Page_Chunk",
	"Page_Number",
}

// Row renders the record's values in Columns order.
func (r *Record) Row() []string {
	return []string{
		r.Unit,
		r.UnitInherited,
		r.Reference,
		r.Path.String(),
		r.Series,
		r.SeriesInherited,
		r.SeriesNotes,
		r.SeriesNotesInherited,
		r.Group,
		r.GroupNotes,
		r.GroupNotesInherited,
		r.Title,
		r.Text,
		r.Dates,
		r.DatesSortable,
		r.DateComplete,
		r.StartDate,
		r.EndDate,
		r.StartDateSortable,
		r.EndDateSortable,
		r.StartDateComplete,
		r.EndDateComplete,
		r.Annotations,
		strconv.Itoa(r.ChunkIndex),
		r.PageRange,
	}
}
