package response

import "findingaids/pkg/models"

// Schema variants
const (
	// VariantFlat is the confidence-annotated flat item list: a top-level
	// {"items": [...]} where every scalar field is a {value, confidence}
	// object.
	VariantFlat = "flat"

	// VariantHierarchical is the nested series schema: {"series": [...],
	// "unassigned_items": [...], "document_notes": "..."} with plain string
	// fields.
	VariantHierarchical = "hierarchical"
)

// Parser converts one chunk's raw model output into flat records.
//
// docNotes carries any document-level notes the schema supports (empty for
// the flat variant). The returned issues describe everything that was
// skipped; they are never fatal.
type Parser interface {
	Parse(rawText, chunkID string) (rows []models.Record, docNotes string, issues []Issue)
}

// NewParser returns the parser for a schema variant, defaulting to the
// hierarchical schema for unknown names.
func NewParser(variant string) Parser {
	if variant == VariantFlat {
		return &FlatParser{}
	}
	return &HierarchicalParser{}
}
