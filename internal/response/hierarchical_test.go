package response

import "testing"

const hierSample = "```json\n" + `{
  "series": [
    {
      "series": "Correspondence",
      "series_notes": "Arranged by year.",
      "items": [
        {
          "unit": "Unit 1",
          "finding_aid_reference": "25.",
          "title": "Agent letters",
          "text": "Letters from the agent.",
          "dates": "1861",
          "annotations": ["torn"]
        },
        {
          "unit": null,
          "finding_aid_reference": "(1)",
          "title": null,
          "text": "Reply bundle.",
          "dates": null,
          "annotations": []
        }
      ]
    }
  ],
  "unassigned_items": [
    {
      "unit": null,
      "finding_aid_reference": "(2)",
      "title": null,
      "text": "Loose sheet.",
      "dates": "n.d.",
      "annotations": []
    }
  ],
  "document_notes": "Final page illegible."
}` + "\n```"

func TestHierarchicalParse(t *testing.T) {
	p := &HierarchicalParser{}
	rows, docNotes, issues := p.Parse(hierSample, "chunk1-5")

	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if docNotes != "Final page illegible." {
		t.Errorf("docNotes = %q", docNotes)
	}

	if rows[0].Series != "Correspondence" || rows[0].SeriesNotes != "Arranged by year." {
		t.Errorf("row 0 series = (%q, %q)", rows[0].Series, rows[0].SeriesNotes)
	}
	if rows[1].Series != "Correspondence" {
		t.Errorf("row 1 series = %q, want block series", rows[1].Series)
	}
	if rows[1].Unit != "" || rows[1].Dates != "" {
		t.Errorf("null scalars should map to empty strings, got unit=%q dates=%q", rows[1].Unit, rows[1].Dates)
	}
	// Unassigned items carry no series.
	if rows[2].Series != "" || rows[2].Text != "Loose sheet." {
		t.Errorf("row 2 = series %q text %q", rows[2].Series, rows[2].Text)
	}
	if rows[0].Annotations != "torn" {
		t.Errorf("row 0 annotations = %q", rows[0].Annotations)
	}
}

func TestHierarchicalParseSkipsBadItem(t *testing.T) {
	raw := `{
	  "series": [
	    {
	      "series": "Accounts",
	      "series_notes": "",
	      "items": [
	        {"unit": null, "finding_aid_reference": "1.", "title": null, "text": "Ledger.", "dates": "1850", "annotations": []},
	        {"unit": null, "finding_aid_reference": "(1)", "title": null, "dates": "1851", "annotations": []}
	      ]
	    }
	  ],
	  "unassigned_items": [],
	  "document_notes": ""
	}`

	p := &HierarchicalParser{}
	rows, _, issues := p.Parse(raw, "chunk6-10")

	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	iss := issues[0]
	if iss.Level != LevelItem || iss.ItemIndex == nil || *iss.ItemIndex != 1 {
		t.Errorf("issue = %+v, want item-level with index 1", iss)
	}
}

func TestHierarchicalParseMissingSeries(t *testing.T) {
	p := &HierarchicalParser{}
	rows, _, issues := p.Parse(`{"items": []}`, "chunk1-5")
	if len(rows) != 0 || len(issues) != 1 || issues[0].Level != LevelChunk {
		t.Errorf("rows=%d issues=%+v, want one chunk-level issue", len(rows), issues)
	}
}

func TestHierarchicalParseTrailingProse(t *testing.T) {
	p := &HierarchicalParser{}
	raw := `{"series": [], "unassigned_items": [], "document_notes": ""} Let me know if you need the next pages.`
	rows, notes, issues := p.Parse(raw, "chunk1-5")
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}
	if len(rows) != 0 || notes != "" {
		t.Errorf("rows=%d notes=%q, want empty result", len(rows), notes)
	}
}

func TestNewParserDefaultsToHierarchical(t *testing.T) {
	if _, ok := NewParser("").(*HierarchicalParser); !ok {
		t.Error("empty variant should yield the hierarchical parser")
	}
	if _, ok := NewParser(VariantFlat).(*FlatParser); !ok {
		t.Error("flat variant should yield the flat parser")
	}
}
