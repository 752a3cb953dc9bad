package response

import "fmt"

// Issue levels
const (
	// LevelChunk marks a problem with a whole chunk (e.g. a JSON decode
	// error); the chunk contributes zero rows.
	LevelChunk = "chunk"

	// LevelItem marks a problem with one item inside a chunk; only that
	// item is skipped.
	LevelItem = "item"
)

// Issue is a structured record of something that went wrong while parsing.
// Issues accumulate across the whole run and never abort processing of
// sibling items or chunks.
type Issue struct {
	Level     string `json:"level"`
	ChunkID   string `json:"chunk_id"`
	ItemIndex *int   `json:"item_index"`
	Message   string `json:"message"`
}

func chunkIssue(chunkID, format string, args ...any) Issue {
	return Issue{
		Level:   LevelChunk,
		ChunkID: chunkID,
		Message: fmt.Sprintf(format, args...),
	}
}

func itemIssue(chunkID string, index int, format string, args ...any) Issue {
	idx := index
	return Issue{
		Level:     LevelItem,
		ChunkID:   chunkID,
		ItemIndex: &idx,
		Message:   fmt.Sprintf(format, args...),
	}
}
