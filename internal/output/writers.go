// Package output writes the pipeline's artifacts: raw model transcripts,
// structured JSON, CSV, XLSX and the run log files.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"findingaids/internal/response"
	"findingaids/pkg/models"
)

// RawBlock is one chunk's verbatim model output, kept for combined_raw.txt.
type RawBlock struct {
	Index     int    // 1-based chunk index
	PageRange string // "a-b"
	Text      string
}

// WriteChunkRaw saves a single chunk transcript as chunk<a>-<b>.txt.
func WriteChunkRaw(dir, pageRange, text string) error {
	const op = "output.WriteChunkRaw"
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: create raw dir: %w", op, err)
	}
	path := filepath.Join(dir, "chunk"+pageRange+".txt")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("%s: write %s: %w", op, path, err)
	}
	return nil
}

// WriteCombinedRaw concatenates all chunk transcripts into combined_raw.txt,
// each preceded by a CHUNK header naming its index and page range.
func WriteCombinedRaw(dir string, blocks []RawBlock) error {
	const op = "output.WriteCombinedRaw"
	var b strings.Builder
	for _, blk := range blocks {
		fmt.Fprintf(&b, "\n\n===== CHUNK %d (pages %s) =====\n\n", blk.Index, blk.PageRange)
		b.WriteString(blk.Text)
	}
	path := filepath.Join(dir, "combined_raw.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%s: write %s: %w", op, path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// flatItem renders one record as a JSON object keyed by the tabular column
// names, values always strings.
func flatItem(r *models.Record) map[string]string {
	row := r.Row()
	item := make(map[string]string, len(models.Columns))
	for i, col := range models.Columns {
		item[col] = row[i]
	}
	return item
}

type hierItem struct {
	Unit          string `json:"unit"`
	Reference     string `json:"finding_aid_reference"`
	HierarchyPath string `json:"hierarchy_path"`
	Title         string `json:"title"`
	Text          string `json:"text"`
	Dates         string `json:"dates"`
	Annotations   string `json:"item_annotations"`
}

type hierSeries struct {
	Series      string     `json:"series"`
	SeriesNotes string     `json:"series_notes"`
	Items       []hierItem `json:"items"`
}

type hierDoc struct {
	Series          []hierSeries `json:"series"`
	UnassignedItems []hierItem   `json:"unassigned_items"`
	DocumentNotes   string       `json:"document_notes"`
}

func toHierItem(r *models.Record) hierItem {
	return hierItem{
		Unit:          r.Unit,
		Reference:     r.Reference,
		HierarchyPath: r.Path.String(),
		Title:         r.Title,
		Text:          r.Text,
		Dates:         r.Dates,
		Annotations:   r.Annotations,
	}
}

// WriteItemsJSON writes the structured JSON output. The flat variant keeps
// the row-per-item shape; the hierarchical variant groups consecutive rows
// of the same series back into series blocks, with series-less rows landing
// in unassigned_items.
func WriteItemsJSON(path, variant string, rows []models.Record, docNotes string) error {
	const op = "output.WriteItemsJSON"

	if variant == response.VariantFlat {
		items := make([]map[string]string, 0, len(rows))
		for i := range rows {
			items = append(items, flatItem(&rows[i]))
		}
		if err := writeJSON(path, map[string]any{"items": items}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	doc := hierDoc{Series: []hierSeries{}, UnassignedItems: []hierItem{}, DocumentNotes: docNotes}
	for i := range rows {
		r := &rows[i]
		if strings.TrimSpace(r.Series) == "" {
			doc.UnassignedItems = append(doc.UnassignedItems, toHierItem(r))
			continue
		}
		n := len(doc.Series)
		if n == 0 || doc.Series[n-1].Series != r.Series {
			doc.Series = append(doc.Series, hierSeries{Series: r.Series, SeriesNotes: r.SeriesNotes})
			n++
		}
		doc.Series[n-1].Items = append(doc.Series[n-1].Items, toHierItem(r))
	}
	if err := writeJSON(path, doc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// WriteCSV writes all rows with the standard column header.
func WriteCSV(path string, rows []models.Record) error {
	const op = "output.WriteCSV"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%s: create dir: %w", op, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: create %s: %w", op, path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns); err != nil {
		return fmt.Errorf("%s: write header: %w", op, err)
	}
	for i := range rows {
		if err := w.Write(rows[i].Row()); err != nil {
			return fmt.Errorf("%s: write row %d: %w", op, i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("%s: flush: %w", op, err)
	}
	return nil
}

// Wider columns for the fields that hold running text.
var columnWidths = map[string]float64{
	"Title":                  42,
	"Text":                   42,
	"Series":                 28,
	"Series_Inherited":       28,
	"Series_Notes":           32,
	"Series_Notes_Inherited": 32,
	"Group_Notes":            32,
	"Group_Notes_Inherited":  32,
	"Item_Annotations":       32,
	"Finding_Aid_Reference":  22,
}

const defaultColumnWidth = 16

// WriteXLSX writes rows to a "Records" sheet. Every cell is forced to the
// text format so Excel never reinterprets references or sortable dates, and
// the header row stays visible via frozen panes plus an autofilter.
func WriteXLSX(path string, rows []models.Record) error {
	const op = "output.WriteXLSX"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%s: create dir: %w", op, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Records"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("%s: rename sheet: %w", op, err)
	}

	textFmt := "@"
	textStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &textFmt})
	if err != nil {
		return fmt.Errorf("%s: text style: %w", op, err)
	}

	header := make([]any, len(models.Columns))
	for i, c := range models.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("%s: write header: %w", op, err)
	}

	for i := range rows {
		cells := rows[i].Row()
		vals := make([]any, len(cells))
		for j, c := range cells {
			vals[j] = c
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("%s: cell name: %w", op, err)
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("%s: write row %d: %w", op, i, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(models.Columns))
	if err != nil {
		return fmt.Errorf("%s: column name: %w", op, err)
	}
	for i, col := range models.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("%s: column name: %w", op, err)
		}
		width := columnWidths[col]
		if width == 0 {
			width = defaultColumnWidth
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("%s: column width: %w", op, err)
		}
		if err := f.SetColStyle(sheet, name, textStyle); err != nil {
			return fmt.Errorf("%s: column style: %w", op, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("%s: freeze panes: %w", op, err)
	}
	filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1)
	if err := f.AutoFilter(sheet, filterRange, nil); err != nil {
		return fmt.Errorf("%s: autofilter: %w", op, err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: save %s: %w", op, path, err)
	}
	return nil
}

// WriteIssues saves the parse issue log as JSON. An empty slice writes "[]",
// never "null", so downstream tooling can always decode a list.
func WriteIssues(path string, issues []response.Issue) error {
	const op = "output.WriteIssues"
	if issues == nil {
		issues = []response.Issue{}
	}
	if err := writeJSON(path, issues); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RunMetadata describes one completed pipeline run.
type RunMetadata struct {
	PDFStem            string            `json:"pdf_stem"`
	Engine             string            `json:"engine"`
	ModelName          string            `json:"model_name"`
	ModelTag           string            `json:"model_tag"`
	SchemaVariant      string            `json:"schema_variant"`
	PagesArg           string            `json:"pages_arg"`
	PagesPerChunk      int               `json:"pages_per_chunk"`
	Workers            int               `json:"workers"`
	StartedAtUTC       string            `json:"started_at_utc"`
	FinishedAtUTC      string            `json:"finished_at_utc"`
	TotalPages         int               `json:"total_pages"`
	ProcessedStartPage int               `json:"processed_start_page"`
	ProcessedEndPage   int               `json:"processed_end_page"`
	NumChunks          int               `json:"num_chunks"`
	NumRows            int               `json:"num_items"`
	NumIssues          int               `json:"num_issues"`
	Paths              map[string]string `json:"paths"`
}

// WriteRunMetadata saves run_metadata.json next to the issue log.
func WriteRunMetadata(path string, meta RunMetadata) error {
	const op = "output.WriteRunMetadata"
	if err := writeJSON(path, meta); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
