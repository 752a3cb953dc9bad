package hierarchy

import (
	"reflect"
	"testing"

	"findingaids/pkg/models"
)

func rowsFromRefs(refs ...string) []models.Record {
	rows := make([]models.Record, len(refs))
	for i, r := range refs {
		rows[i].Reference = r
	}
	return rows
}

func paths(rows []models.Record) []models.Path {
	out := make([]models.Path, len(rows))
	for i := range rows {
		out[i] = rows[i].Path
	}
	return out
}

func TestBuilderAssign(t *testing.T) {
	rows := rowsFromRefs("25.", "(1)", "(2)", "6.(1)", "(2)", "2/1", "(5)")
	NewBuilder().Assign(rows)

	want := []models.Path{
		{25},
		{25, 1},
		{25, 2},
		{6, 1},
		{6, 2},
		{2, 1},
		{2, 1, 5}, // slash paths keep children under the full path
	}
	if got := paths(rows); !reflect.DeepEqual(got, want) {
		t.Errorf("Assign paths = %v, want %v", got, want)
	}
}

func TestBuilderAssignOrphanChild(t *testing.T) {
	rows := rowsFromRefs("(4)")
	NewBuilder().Assign(rows)
	if want := (models.Path{4}); !reflect.DeepEqual(rows[0].Path, want) {
		t.Errorf("orphan child path = %v, want %v", rows[0].Path, want)
	}
}

func TestBuilderAssignGroupFallback(t *testing.T) {
	rows := rowsFromRefs("25.", "", "")
	rows[1].Group = "7"
	rows[2].Group = "7." // not pure digits, no path

	NewBuilder().Assign(rows)

	if want := (models.Path{7}); !reflect.DeepEqual(rows[1].Path, want) {
		t.Errorf("group fallback path = %v, want %v", rows[1].Path, want)
	}
	if rows[2].Path != nil {
		t.Errorf("dotted group should not produce a path, got %v", rows[2].Path)
	}
}

func TestBuilderGroupFallbackKeepsRootContext(t *testing.T) {
	// The group fallback must not disturb the running root, so a later bare
	// child still attaches under the last real parent.
	rows := rowsFromRefs("25.", "", "(3)")
	rows[1].Group = "7"
	NewBuilder().Assign(rows)

	if want := (models.Path{25, 3}); !reflect.DeepEqual(rows[2].Path, want) {
		t.Errorf("child after group fallback = %v, want %v", rows[2].Path, want)
	}
}

func TestRepairReferences(t *testing.T) {
	tests := []struct {
		name string
		refs []string
		want []string
	}{
		{
			name: "paren style default",
			refs: []string{"5.", "(1)", "2"},
			want: []string{"5.", "5.(1)", "5.(2)"},
		},
		{
			name: "slash style learned from earlier reference",
			refs: []string{"3/1", "5.", "(2)"},
			want: []string{"3/1", "5.", "5/2"},
		},
		{
			name: "no top level means no repair",
			refs: []string{"(1)", "(2)"},
			want: []string{"(1)", "(2)"},
		},
		{
			name: "qualified references untouched",
			refs: []string{"5.", "6.(1)", "(2)"},
			want: []string{"5.", "6.(1)", "5.(2)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := rowsFromRefs(tt.refs...)
			RepairReferences(rows)
			got := make([]string, len(rows))
			for i := range rows {
				got[i] = rows[i].Reference
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RepairReferences = %v, want %v", got, tt.want)
			}
		})
	}
}
