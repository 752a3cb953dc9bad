package response

import (
	"encoding/json"
	"strings"

	"findingaids/pkg/models"
)

// Fields every hierarchical-schema item must carry, as plain strings except
// the annotations list.
var hierItemFields = []string{
	"unit",
	"finding_aid_reference",
	"title",
	"text",
	"dates",
	"annotations",
}

var hierScalarFields = []string{
	"unit",
	"finding_aid_reference",
	"title",
	"text",
	"dates",
}

// HierarchicalParser validates the nested series schema and flattens it:
// each series block's items become rows carrying the block's series name and
// notes, followed by the chunk's unassigned items with neither.
type HierarchicalParser struct{}

func (p *HierarchicalParser) Parse(rawText, chunkID string) ([]models.Record, string, []Issue) {
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

	seriesBlocks, ok := top["series"].([]any)
	if !ok {
		issues = append(issues, chunkIssue(chunkID, "missing or non-list `series` field on top-level object"))
		return nil, "", issues
	}
	unassigned, _ := top["unassigned_items"].([]any)
	docNotes := strings.TrimSpace(asString(top["document_notes"]))

	var rows []models.Record
	itemIdx := 0 // running item index across the whole chunk, for issues

	for _, rawBlock := range seriesBlocks {
		block, ok := rawBlock.(map[string]any)
		if !ok {
			issues = append(issues, chunkIssue(chunkID, "series block is %s, expected object", jsonType(rawBlock)))
			continue
		}
		seriesName := strings.TrimSpace(asString(block["series"]))
		seriesNotes := strings.TrimSpace(asString(block["series_notes"]))
		items, _ := block["items"].([]any)

		for _, rawItem := range items {
			if rec, iss, ok := p.item(chunkID, itemIdx, rawItem); ok {
				rec.Series = seriesName
				rec.SeriesNotes = seriesNotes
				rows = append(rows, rec)
			} else {
				issues = append(issues, iss)
			}
			itemIdx++
		}
	}

	for _, rawItem := range unassigned {
		if rec, iss, ok := p.item(chunkID, itemIdx, rawItem); ok {
			rows = append(rows, rec)
		} else {
			issues = append(issues, iss)
		}
		itemIdx++
	}

	return rows, docNotes, issues
}

// item validates one item and converts it to a record. A failed check skips
// only this item.
func (p *HierarchicalParser) item(chunkID string, idx int, raw any) (models.Record, Issue, bool) {
	item, ok := raw.(map[string]any)
	if !ok {
		return models.Record{}, itemIssue(chunkID, idx, "item is %s, expected object", jsonType(raw)), false
	}

	for _, field := range hierItemFields {
		if _, present := item[field]; !present {
			return models.Record{}, itemIssue(chunkID, idx, "missing field `%s`", field), false
		}
	}
	for _, field := range hierScalarFields {
		switch item[field].(type) {
		case string, nil:
		default:
			return models.Record{}, itemIssue(chunkID, idx, "`%s` is %s, expected string", field, jsonType(item[field])), false
		}
	}
	if _, ok := item["annotations"].([]any); !ok {
		return models.Record{}, itemIssue(chunkID, idx, "`annotations` is not a list"), false
	}

	return models.Record{
		Unit:        strings.TrimSpace(asString(item["unit"])),
		Reference:   strings.TrimSpace(asString(item["finding_aid_reference"])),
		Title:       strings.TrimSpace(asString(item["title"])),
		Text:        strings.TrimSpace(asString(item["text"])),
		Dates:       strings.TrimSpace(asString(item["dates"])),
		Annotations: joinAnnotations(item["annotations"]),
	}, Issue{}, true
}
