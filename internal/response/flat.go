package response

import (
	"encoding/json"
	"fmt"
	"strings"

	"findingaids/pkg/models"
)

// Fields every flat-schema item must carry.
var flatItemFields = []string{
	"group",
	"group_notes",
	"series",
	"series_notes",
	"unit",
	"finding_aid_reference_raw",
	"text",
	"start_date_original",
	"end_date_original",
	"start_date_formatted",
	"end_date_formatted",
	"annotations",
}

// Scalar fields that must be {"value": ..., "confidence": ...} objects.
var flatScalarFields = []string{
	"group",
	"group_notes",
	"series",
	"series_notes",
	"unit",
	"finding_aid_reference_raw",
	"text",
	"start_date_original",
	"end_date_original",
	"start_date_formatted",
	"end_date_formatted",
}

// FlatParser validates the confidence-annotated flat item schema.
type FlatParser struct{}

// Parse decodes one chunk of flat-schema output. Malformed chunks yield zero
// rows and a single chunk-level issue; malformed items are skipped
// individually while their siblings are kept.
func (p *FlatParser) Parse(rawText, chunkID string) ([]models.Record, string, []Issue) {
	var issues []Issue

	candidate, ok := extractJSON(rawText)
	if !ok {
		issues = append(issues, chunkIssue(chunkID, "no JSON object found in model output"))
		return nil, "", issues
	}

	var data any
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		issues = append(issues, chunkIssue(chunkID, "JSON decode error: %v", err))
		return nil, "", issues
	}

	top, ok := data.(map[string]any)
	if !ok {
		issues = append(issues, chunkIssue(chunkID, "top-level JSON is %s, expected object", jsonType(data)))
		return nil, "", issues
	}

	items, ok := top["items"].([]any)
	if !ok {
		issues = append(issues, chunkIssue(chunkID, "missing or non-list `items` field on top-level object"))
		return nil, "", issues
	}

	var rows []models.Record
	for idx, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			issues = append(issues, itemIssue(chunkID, idx, "item is %s, expected object", jsonType(raw)))
			continue
		}

		if iss, ok := validateFlatItem(chunkID, idx, item); !ok {
			issues = append(issues, iss)
			continue
		}

		rows = append(rows, flatRecord(item))
	}
	return rows, "", issues
}

// validateFlatItem runs the per-item checks in order and reports the first
// failure. Checks short-circuit to skip-and-record; they never panic past
// the item boundary.
func validateFlatItem(chunkID string, idx int, item map[string]any) (Issue, bool) {
	for _, field := range flatItemFields {
		if _, present := item[field]; !present {
			return itemIssue(chunkID, idx, "missing field `%s`", field), false
		}
	}

	if _, ok := item["annotations"].([]any); !ok {
		return itemIssue(chunkID, idx, "`annotations` is not a list"), false
	}

	for _, field := range flatScalarFields {
		obj, ok := item[field].(map[string]any)
		if !ok {
			return itemIssue(chunkID, idx, "`%s` is %s, expected object", field, jsonType(item[field])), false
		}
		if _, hasValue := obj["value"]; !hasValue {
			return itemIssue(chunkID, idx, "`%s` missing `value` or `confidence` key", field), false
		}
		if _, hasConf := obj["confidence"]; !hasConf {
			return itemIssue(chunkID, idx, "`%s` missing `value` or `confidence` key", field), false
		}
	}
	return Issue{}, true
}

func flatRecord(item map[string]any) models.Record {
	start := scalarValue(item, "start_date_original")
	end := scalarValue(item, "end_date_original")
	dates := start
	if end != "" && end != start {
		if dates == "" {
			dates = end
		} else {
			dates = dates + " - " + end
		}
	}

	return models.Record{
		Group:       scalarValue(item, "group"),
		GroupNotes:  scalarValue(item, "group_notes"),
		Series:      scalarValue(item, "series"),
		SeriesNotes: scalarValue(item, "series_notes"),
		Unit:        scalarValue(item, "unit"),
		Reference:   scalarValue(item, "finding_aid_reference_raw"),
		Text:        scalarValue(item, "text"),
		Dates:       dates,
		Annotations: joinAnnotations(item["annotations"]),
	}
}

// scalarValue pulls the "value" string out of a validated scalar object.
func scalarValue(item map[string]any, field string) string {
	obj, ok := item[field].(map[string]any)
	if !ok {
		return ""
	}
	return strings.TrimSpace(asString(obj["value"]))
}

// joinAnnotations joins annotation entries with "; ". Entries may be plain
// strings or {value, confidence} objects.
func joinAnnotations(raw any) string {
	list, ok := raw.([]any)
	if !ok {
		return ""
	}
	var parts []string
	for _, entry := range list {
		var s string
		switch v := entry.(type) {
		case map[string]any:
			s = asString(v["value"])
		default:
			s = asString(v)
		}
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", s)
	}
}

// jsonType names a decoded JSON value's type for diagnostics.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
