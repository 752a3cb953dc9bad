package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"findingaids/internal/response"
	"findingaids/pkg/models"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "records.csv")
	rows := []models.Record{
		{Reference: "25.", Title: "Bundle", ChunkIndex: 1, PageRange: "1-5", Path: models.Path{25}},
	}
	if err := WriteCSV(path, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d csv rows, want header + 1 data row", len(records))
	}
	if !reflect.DeepEqual(records[0], models.Columns) {
		t.Errorf("header = %v", records[0])
	}
	if records[1][2] != "25." || records[1][3] != "25" {
		t.Errorf("row = %v", records[1])
	}
}

func TestWriteIssuesEmptyIsList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parse_issues.json")
	if err := WriteIssues(path, nil); err != nil {
		t.Fatalf("WriteIssues: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var issues []response.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		t.Fatalf("issues file does not decode as a list: %v", err)
	}
	if issues == nil {
		t.Error("issues decoded to null, want empty list")
	}
}

func TestWriteItemsJSONHierarchical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	rows := []models.Record{
		{Series: "Correspondence", SeriesNotes: "By year.", Title: "A"},
		{Series: "Correspondence", SeriesNotes: "By year.", Title: "B"},
		{Series: "Accounts", Title: "C"},
		{Series: "", Title: "Loose"},
	}
	if err := WriteItemsJSON(path, response.VariantHierarchical, rows, "final page illegible"); err != nil {
		t.Fatalf("WriteItemsJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Series []struct {
			Series string `json:"series"`
			Items  []any  `json:"items"`
		} `json:"series"`
		UnassignedItems []any  `json:"unassigned_items"`
		DocumentNotes   string `json:"document_notes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Series) != 2 {
		t.Fatalf("got %d series blocks, want 2", len(doc.Series))
	}
	if doc.Series[0].Series != "Correspondence" || len(doc.Series[0].Items) != 2 {
		t.Errorf("block 0 = %q with %d items", doc.Series[0].Series, len(doc.Series[0].Items))
	}
	if len(doc.UnassignedItems) != 1 {
		t.Errorf("unassigned = %d, want 1", len(doc.UnassignedItems))
	}
	if doc.DocumentNotes != "final page illegible" {
		t.Errorf("document_notes = %q", doc.DocumentNotes)
	}
}

func TestWriteItemsJSONFlat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.json")
	rows := []models.Record{{Title: "A", Reference: "1."}}
	if err := WriteItemsJSON(path, response.VariantFlat, rows, ""); err != nil {
		t.Fatalf("WriteItemsJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Items []map[string]string `json:"items"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(doc.Items))
	}
	if doc.Items[0]["Finding_Aid_Reference"] != "1." {
		t.Errorf("item = %v", doc.Items[0])
	}
}
