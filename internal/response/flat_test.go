package response

import (
	"encoding/json"
	"testing"
)

// makeFlatItem builds a schema-valid flat item, then applies overrides.
// Setting an override to nil deletes the field.
func makeFlatItem(overrides map[string]any) map[string]any {
	item := map[string]any{}
	for _, field := range flatScalarFields {
		item[field] = map[string]any{"value": "", "confidence": 0.9}
	}
	item["finding_aid_reference_raw"] = map[string]any{"value": "25.", "confidence": 0.95}
	item["text"] = map[string]any{"value": "Letters from the agent.", "confidence": 0.9}
	item["annotations"] = []any{}

	for k, v := range overrides {
		if v == nil {
			delete(item, k)
		} else {
			item[k] = v
		}
	}
	return item
}

func marshalItems(t *testing.T, items ...map[string]any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestFlatParseNonJSON(t *testing.T) {
	p := &FlatParser{}
	rows, _, issues := p.Parse("this is not json at all", "chunk1-5")

	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	if issues[0].Level != LevelChunk || issues[0].ChunkID != "chunk1-5" {
		t.Errorf("issue = %+v, want chunk-level for chunk1-5", issues[0])
	}
}

func TestFlatParseMissingItems(t *testing.T) {
	p := &FlatParser{}
	rows, _, issues := p.Parse(`{"records": []}`, "chunk1-5")
	if len(rows) != 0 || len(issues) != 1 {
		t.Fatalf("rows=%d issues=%d, want 0 rows, 1 issue", len(rows), len(issues))
	}
	if issues[0].Level != LevelChunk {
		t.Errorf("issue level = %q, want %q", issues[0].Level, LevelChunk)
	}
}

func TestFlatParseSkipsBadItem(t *testing.T) {
	good1 := makeFlatItem(map[string]any{
		"unit": map[string]any{"value": "Unit 1", "confidence": 1.0},
	})
	bad := makeFlatItem(map[string]any{"text": nil}) // missing field
	good2 := makeFlatItem(nil)

	p := &FlatParser{}
	rows, _, issues := p.Parse(marshalItems(t, good1, bad, good2), "chunk1-5")

	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	iss := issues[0]
	if iss.Level != LevelItem || iss.ItemIndex == nil || *iss.ItemIndex != 1 {
		t.Errorf("issue = %+v, want item-level with index 1", iss)
	}
	if rows[0].Unit != "Unit 1" {
		t.Errorf("row 0 unit = %q, want %q", rows[0].Unit, "Unit 1")
	}
}

func TestFlatParseScalarShape(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
	}{
		{"scalar is a plain string", makeFlatItem(map[string]any{"unit": "Unit 1"})},
		{"scalar missing confidence", makeFlatItem(map[string]any{"unit": map[string]any{"value": "Unit 1"}})},
		{"annotations not a list", makeFlatItem(map[string]any{"annotations": "note"})},
	}

	p := &FlatParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, _, issues := p.Parse(marshalItems(t, tt.item), "chunk1-5")
			if len(rows) != 0 || len(issues) != 1 {
				t.Errorf("rows=%d issues=%d, want 0 rows, 1 issue", len(rows), len(issues))
			}
		})
	}
}

func TestFlatParseDatesFromRange(t *testing.T) {
	item := makeFlatItem(map[string]any{
		"start_date_original": map[string]any{"value": "1 Feb. 1867", "confidence": 0.9},
		"end_date_original":   map[string]any{"value": "5 Feb. 1867", "confidence": 0.9},
		"annotations":         []any{"torn", map[string]any{"value": "faded", "confidence": 0.5}},
	})

	p := &FlatParser{}
	rows, _, issues := p.Parse(marshalItems(t, item), "chunk1-5")
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if want := "1 Feb. 1867 - 5 Feb. 1867"; rows[0].Dates != want {
		t.Errorf("Dates = %q, want %q", rows[0].Dates, want)
	}
	if want := "torn; faded"; rows[0].Annotations != want {
		t.Errorf("Annotations = %q, want %q", rows[0].Annotations, want)
	}
}

func TestExtractJSONFenced(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"items\": []}\n```\nDone."
	got, ok := extractJSON(raw)
	if !ok {
		t.Fatal("extractJSON failed on fenced block")
	}
	if got != `{"items": []}` {
		t.Errorf("extractJSON = %q", got)
	}
}

func TestExtractJSONBraceSlice(t *testing.T) {
	raw := `The model says {"items": [{"a": 1}]} and then rambles on`
	got, ok := extractJSON(raw)
	if !ok {
		t.Fatal("extractJSON failed on embedded object")
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Errorf("sliced JSON does not decode: %v", err)
	}
}

func TestExtractJSONTrailingProse(t *testing.T) {
	raw := `{"items": []} Done, let me know if you need the next pages.`
	got, ok := extractJSON(raw)
	if !ok {
		t.Fatal("extractJSON failed on object with trailing prose")
	}
	if got != `{"items": []}` {
		t.Errorf("extractJSON = %q, want the bare object", got)
	}
}
