// Package pipeline runs the end-to-end extraction: chunk the PDF, call the
// model once per chunk, parse the responses into rows, reconstruct the
// hierarchy and inherited fields, and write every output artifact.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"findingaids/internal/dates"
	"findingaids/internal/hierarchy"
	"findingaids/internal/inherit"
	"findingaids/internal/llm"
	"findingaids/internal/logger"
	"findingaids/internal/output"
	"findingaids/internal/pdfchunk"
	"findingaids/internal/prompts"
	"findingaids/internal/response"
	"findingaids/pkg/models"
)

// Chunker provides page access to the source document. *pdfchunk.Document
// satisfies it; tests substitute fakes.
type Chunker interface {
	PageCount() int
	ExtractChunk(start, end int) ([]byte, error)
}

// Options configures one pipeline run.
type Options struct {
	PDFPath string

	// Output roots; each gains an <engine>/<model_tag>/ suffix so runs
	// against different models never collide.
	OutRaw  string
	OutJSON string
	OutCSV  string
	OutXLSX string
	OutLog  string

	Engine        string // "gemini" or "openai"
	ModelName     string
	Variant       string // response schema variant
	Pages         string // "" (all), "N" or "A-B"
	PagesPerChunk int
	Workers       int // concurrent model calls; <=1 means sequential
}

// Result summarizes a completed run.
type Result struct {
	Rows   []models.Record
	Issues []response.Issue
	Paths  map[string]string
}

// Pipeline wires a document, a model client and a response parser together.
type Pipeline struct {
	opts   Options
	doc    Chunker
	client llm.Client
	parser response.Parser
	log    zerolog.Logger
}

func New(opts Options, doc Chunker, client llm.Client) *Pipeline {
	return &Pipeline{
		opts:   opts,
		doc:    doc,
		client: client,
		parser: response.NewParser(opts.Variant),
		log:    logger.WithComponent("pipeline"),
	}
}

// ModelTag converts a model name into a filesystem-safe directory tag,
// e.g. "gemini-2.5-pro" -> "gemini-2_5-pro".
func ModelTag(modelName string) string {
	return strings.ToLower(strings.NewReplacer(
		"/", "_",
		":", "_",
		".", "_",
		" ", "_",
	).Replace(modelName))
}

func pdfStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(stem, " ", "_")
}

func (p *Pipeline) prompt() string {
	if p.opts.Variant == response.VariantFlat {
		return prompts.FlatConfidence
	}
	return prompts.Hierarchical
}

// Run executes the full pipeline. Model failures for individual chunks are
// downgraded to placeholder text so one bad chunk never aborts the run; the
// placeholder then surfaces as a parse issue for that chunk.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	const op = "pipeline.Run"
	startedAt := time.Now().UTC()

	tag := ModelTag(p.opts.ModelName)
	stem := pdfStem(p.opts.PDFPath)

	rawDir := filepath.Join(p.opts.OutRaw, p.opts.Engine, tag, stem)
	logDir := filepath.Join(p.opts.OutLog, p.opts.Engine, tag, stem)
	jsonOut := filepath.Join(p.opts.OutJSON, p.opts.Engine, tag, stem+"_"+tag+".json")
	csvOut := filepath.Join(p.opts.OutCSV, p.opts.Engine, tag, stem+"_"+tag+".csv")
	xlsxOut := filepath.Join(p.opts.OutXLSX, p.opts.Engine, tag, stem+"_"+tag+".xlsx")
	issuesOut := filepath.Join(logDir, "parse_issues.json")
	metaOut := filepath.Join(logDir, "run_metadata.json")

	// Raw transcripts from a previous run of the same PDF are stale in
	// whole, not per file.
	if err := os.RemoveAll(rawDir); err != nil {
		return nil, fmt.Errorf("%s: reset raw dir: %w", op, err)
	}
	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: create raw dir: %w", op, err)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("%s: create log dir: %w", op, err)
	}

	total := p.doc.PageCount()
	start, end, err := pdfchunk.ParsePageRange(p.opts.Pages, total)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	chunks := pdfchunk.MakeChunks(start, end, p.opts.PagesPerChunk)

	p.log.Info().
		Int("total_pages", total).
		Int("start_page", start).
		Int("end_page", end).
		Int("chunks", len(chunks)).
		Str("engine", p.opts.Engine).
		Str("model", p.opts.ModelName).
		Str("variant", p.opts.Variant).
		Msg("Starting extraction run")

	rawTexts, err := p.generateAll(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Commit strictly in chunk order so downstream row order matches the
	// document.
	var (
		rows      []models.Record
		issues    []response.Issue
		blocks    []output.RawBlock
		noteParts []string
	)
	for i, spec := range chunks {
		raw := rawTexts[i]
		if err := output.WriteChunkRaw(rawDir, spec.PageRange(), raw); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blocks = append(blocks, output.RawBlock{Index: spec.Index, PageRange: spec.PageRange(), Text: raw})

		chunkRows, docNotes, chunkIssues := p.parser.Parse(raw, spec.ID())
		for j := range chunkRows {
			chunkRows[j].ChunkIndex = spec.Index
			chunkRows[j].PageRange = spec.PageRange()
		}
		rows = append(rows, chunkRows...)
		issues = append(issues, chunkIssues...)
		if strings.TrimSpace(docNotes) != "" {
			noteParts = append(noteParts, strings.TrimSpace(docNotes))
		}

		p.log.Debug().
			Str("chunk", spec.ID()).
			Int("rows", len(chunkRows)).
			Int("issues", len(chunkIssues)).
			Msg("Chunk parsed")
	}
	if err := output.WriteCombinedRaw(rawDir, blocks); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	docNotes := strings.Join(noteParts, " | ")

	p.postprocess(rows)

	if err := output.WriteItemsJSON(jsonOut, p.opts.Variant, rows, docNotes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := output.WriteCSV(csvOut, rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := output.WriteXLSX(xlsxOut, rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := output.WriteIssues(issuesOut, issues); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paths := map[string]string{
		"raw_dir":    rawDir,
		"json_out":   jsonOut,
		"csv_out":    csvOut,
		"xlsx_out":   xlsxOut,
		"log_dir":    logDir,
		"issues_out": issuesOut,
	}
	meta := output.RunMetadata{
		PDFStem:            stem,
		Engine:             p.opts.Engine,
		ModelName:          p.opts.ModelName,
		ModelTag:           tag,
		SchemaVariant:      p.opts.Variant,
		PagesArg:           p.opts.Pages,
		PagesPerChunk:      p.opts.PagesPerChunk,
		Workers:            p.opts.Workers,
		StartedAtUTC:       startedAt.Format(time.RFC3339),
		FinishedAtUTC:      time.Now().UTC().Format(time.RFC3339),
		TotalPages:         total,
		ProcessedStartPage: start,
		ProcessedEndPage:   end,
		NumChunks:          len(chunks),
		NumRows:            len(rows),
		NumIssues:          len(issues),
		Paths:              paths,
	}
	if err := output.WriteRunMetadata(metaOut, meta); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.log.Info().
		Int("rows", len(rows)).
		Int("issues", len(issues)).
		Str("csv", csvOut).
		Str("xlsx", xlsxOut).
		Msg("Extraction run completed")

	return &Result{Rows: rows, Issues: issues, Paths: paths}, nil
}

// generateAll fetches model output for every chunk, in parallel when
// Workers allows. A failed chunk yields placeholder text instead of an
// error; only context cancellation aborts the run.
func (p *Pipeline) generateAll(ctx context.Context, chunks []pdfchunk.Spec) ([]string, error) {
	texts := make([]string, len(chunks))
	prompt := p.prompt()

	workers := p.opts.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, spec := range chunks {
		g.Go(func() error {
			pdfBytes, err := p.doc.ExtractChunk(spec.Start, spec.End)
			if err != nil {
				return err
			}
			text, err := p.client.GenerateChunk(gctx, pdfBytes, prompt)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.log.Warn().
					Err(err).
					Str("chunk", spec.ID()).
					Msg("Model call failed, recording placeholder")
				text = fmt.Sprintf("ERROR for pages %d-%d: %v", spec.Start, spec.End, err)
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// postprocess runs every row-level pass in document order.
func (p *Pipeline) postprocess(rows []models.Record) {
	mergeSeriesRuns(rows)
	stripSeriesNotePrefix(rows)
	hierarchy.RepairReferences(rows)
	hierarchy.NewBuilder().Assign(rows)
	inherit.GroupNotes(rows)
	inherit.Series(rows)
	inherit.Units(rows)
	dates.Enrich(rows)
}

// mergeSeriesRuns backfills series notes across a consecutive run of rows
// sharing the same series name. Chunk boundaries often split a series block
// so that only the rows from one chunk carry the note.
func mergeSeriesRuns(rows []models.Record) {
	for i := 0; i < len(rows); {
		name := strings.TrimSpace(rows[i].Series)
		j := i + 1
		for j < len(rows) && strings.TrimSpace(rows[j].Series) == name {
			j++
		}
		if name != "" {
			note := ""
			for k := i; k < j; k++ {
				if strings.TrimSpace(rows[k].SeriesNotes) != "" {
					note = rows[k].SeriesNotes
					break
				}
			}
			if note != "" {
				for k := i; k < j; k++ {
					if strings.TrimSpace(rows[k].SeriesNotes) == "" {
						rows[k].SeriesNotes = note
					}
				}
			}
		}
		i = j
	}
}

// stripSeriesNotePrefix removes a series note the model echoed verbatim at
// the start of an item's text. Only an exact prefix match is stripped.
func stripSeriesNotePrefix(rows []models.Record) {
	for i := range rows {
		note := strings.TrimSpace(rows[i].SeriesNotes)
		if note == "" {
			continue
		}
		if strings.HasPrefix(rows[i].Text, note) {
			rows[i].Text = strings.TrimLeft(rows[i].Text[len(note):], " \n\r\t")
		}
	}
}
