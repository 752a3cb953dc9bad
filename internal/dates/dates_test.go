package dates

import (
	"testing"

	"findingaids/pkg/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		sortable string
		complete string
	}{
		{"month and year", "Nov. 1861.", "1861-11-01", Incomplete},
		{"day month year", "30 Sept. 1870", "1870-09-30", Complete},
		{"full date no abbreviation dot", "14 Oct 1839", "1839-10-14", Complete},
		{"year range uses left side", "1857 - 1860.", "1857-01-01", Incomplete},
		{"range of full dates uses left side", "1 Feb. 1867 - 5 Feb. 1867", "1867-02-01", Complete},
		{"to connector", "1850 to 1855", "1850-01-01", Incomplete},
		{"semicolon keeps first segment", "1861; 1863", "1861-01-01", Incomplete},
		{"no date", "n.d.", Sentinel, Incomplete},
		{"no date spelled out", "No date", Sentinel, Incomplete},
		{"dangling dash", "1868-", Sentinel, Incomplete},
		{"empty", "", Sentinel, Incomplete},
		{"no recognizable year", "undated fragment", Sentinel, Incomplete},
		{"long dash range", "1857 – 1860", "1857-01-01", Incomplete},
		{"year only", "1900", "1900-01-01", Incomplete},
		{"full month name", "4 January 1861", "1861-01-04", Complete},
		{"ordinal day", "2nd Feb. 1867", "1867-02-02", Complete},
		{"ordinal day thirty-first", "31st Dec. 1899", "1899-12-31", Complete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sortable, complete := Normalize(tt.raw)
			if sortable != tt.sortable || complete != tt.complete {
				t.Errorf("Normalize(%q) = (%q, %q), want (%q, %q)",
					tt.raw, sortable, complete, tt.sortable, tt.complete)
			}
		})
	}
}

func TestSplitRange(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		start string
		end   string
	}{
		{"two full dates", "1 Feb. 1867 - 5 Feb. 1867", "1 Feb 1867", "5 Feb 1867"},
		{"day span borrows month and year", "14-15 Oct. 1839", "14 Oct 1839", "15 Oct 1839"},
		{"year range", "1857 - 1860", "1857", "1860"},
		{"and connector", "1861 and 1863", "1861", "1863"},
		{"ampersand connector", "1861 & 1863", "1861", "1863"},
		{"single date repeats", "Nov. 1861", "Nov 1861", "Nov 1861"},
		{"single full date", "30 Sept. 1870", "30 Sep 1870", "30 Sep 1870"},
		{"ordinal days", "2nd Feb. 1867 - 5th Feb. 1867", "2 Feb 1867", "5 Feb 1867"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := SplitRange(tt.raw)
			if start != tt.start || end != tt.end {
				t.Errorf("SplitRange(%q) = (%q, %q), want (%q, %q)",
					tt.raw, start, end, tt.start, tt.end)
			}
		})
	}
}

func TestEnrich(t *testing.T) {
	rows := []struct {
		dates             string
		wantSortable      string
		wantComplete      string
		wantStartSortable string
		wantEndSortable   string
	}{
		{"1 Feb. 1867 - 5 Feb. 1867", "1867-02-01", Complete, "1867-02-01", "1867-02-05"},
		{"n.d.", Sentinel, Incomplete, Sentinel, Sentinel},
	}

	for _, tt := range rows {
		recs := []models.Record{{Dates: tt.dates}}
		Enrich(recs)
		r := recs[0]
		if r.DatesSortable != tt.wantSortable || r.DateComplete != tt.wantComplete {
			t.Errorf("Enrich(%q) sortable = (%q, %q), want (%q, %q)",
				tt.dates, r.DatesSortable, r.DateComplete, tt.wantSortable, tt.wantComplete)
		}
		if r.StartDateSortable != tt.wantStartSortable || r.EndDateSortable != tt.wantEndSortable {
			t.Errorf("Enrich(%q) range = (%q, %q), want (%q, %q)",
				tt.dates, r.StartDateSortable, r.EndDateSortable, tt.wantStartSortable, tt.wantEndSortable)
		}
	}
}
