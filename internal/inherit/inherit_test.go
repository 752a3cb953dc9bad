package inherit

import (
	"reflect"
	"testing"

	"findingaids/pkg/models"
)

func TestUnits(t *testing.T) {
	rows := []models.Record{
		{Unit: "Unit 3"},
		{Unit: ""},
		{Unit: "Unit 4"},
		{Unit: "  "},
		{Unit: "nan"},
	}
	Units(rows)

	want := []string{"Unit 3", "Unit 3", "Unit 4", "Unit 4", "Unit 4"}
	for i, w := range want {
		if rows[i].UnitInherited != w {
			t.Errorf("row %d UnitInherited = %q, want %q", i, rows[i].UnitInherited, w)
		}
	}
}

func TestUnitsLeadingEmpty(t *testing.T) {
	rows := []models.Record{{Unit: ""}, {Unit: "Unit 1"}}
	Units(rows)
	if rows[0].UnitInherited != "" {
		t.Errorf("row before any unit inherited %q, want empty", rows[0].UnitInherited)
	}
}

func TestGroupNotes(t *testing.T) {
	rows := []models.Record{
		{Path: models.Path{5}, GroupNotes: "Records of the estate office."},
		{Path: models.Path{5, 1}},
		{Path: models.Path{5, 2}, GroupNotes: "See also bundle 7."},
		{Path: models.Path{5, 2, 1}},
		{Path: nil},
	}
	GroupNotes(rows)

	want := []string{
		"Records of the estate office.",
		"Records of the estate office.",
		"See also bundle 7.",
		"See also bundle 7.",
		"",
	}
	for i, w := range want {
		if rows[i].GroupNotesInherited != w {
			t.Errorf("row %d GroupNotesInherited = %q, want %q", i, rows[i].GroupNotesInherited, w)
		}
	}
}

func TestGroupNotesInheritedRowsAreNotDonors(t *testing.T) {
	// (5,1) inherits from (5,) but carries no note of its own, so (5,1,1)
	// must still resolve to the (5,) note through the ancestor walk, and a
	// sibling subtree with its own note must not leak across.
	rows := []models.Record{
		{Path: models.Path{5}, GroupNotes: "root note"},
		{Path: models.Path{5, 1}},
		{Path: models.Path{5, 1, 1}},
		{Path: models.Path{6}, GroupNotes: "other root"},
		{Path: models.Path{5, 1, 2}},
	}
	GroupNotes(rows)

	if rows[2].GroupNotesInherited != "root note" {
		t.Errorf("grandchild inherited %q, want %q", rows[2].GroupNotesInherited, "root note")
	}
	if rows[4].GroupNotesInherited != "root note" {
		t.Errorf("late child inherited %q, want %q", rows[4].GroupNotesInherited, "root note")
	}
}

func TestGroupNotesForwardOnly(t *testing.T) {
	// The donor appears after its would-be descendant; nothing flows backward.
	rows := []models.Record{
		{Path: models.Path{5, 1}},
		{Path: models.Path{5}, GroupNotes: "too late"},
	}
	GroupNotes(rows)
	if rows[0].GroupNotesInherited != "" {
		t.Errorf("row 0 inherited %q from a later donor", rows[0].GroupNotesInherited)
	}
}

func TestSeries(t *testing.T) {
	rows := []models.Record{
		{Path: models.Path{25}, Series: "Correspondence", SeriesNotes: "Arranged by year."},
		{Path: models.Path{25, 1}},
		{Path: models.Path{25, 2}, SeriesNotes: "Damaged."},
		{Path: models.Path{26}, Series: "Accounts"},
		{Path: models.Path{26, 1}},
	}
	Series(rows)

	type pair struct{ series, notes string }
	want := []pair{
		{"Correspondence", "Arranged by year."},
		{"Correspondence", "Arranged by year."},
		{"Correspondence", "Damaged."},
		{"Accounts", ""},
		// (26,) entered the donor map with an empty note, so the child
		// inherits the empty note alongside the series name.
		{"Accounts", ""},
	}
	for i, w := range want {
		got := pair{rows[i].SeriesInherited, rows[i].SeriesNotesInherited}
		if got != w {
			t.Errorf("row %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestSeriesIdempotent(t *testing.T) {
	rows := []models.Record{
		{Path: models.Path{25}, Series: "Correspondence"},
		{Path: models.Path{25, 1}},
		{Path: models.Path{25, 1, 1}},
	}
	Series(rows)
	first := make([]models.Record, len(rows))
	copy(first, rows)

	Series(rows)
	if !reflect.DeepEqual(first, rows) {
		t.Errorf("second pass changed rows: %+v vs %+v", first, rows)
	}
}
