package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"findingaids/internal/config"
	"findingaids/internal/llm"
	"findingaids/internal/logger"
	"findingaids/internal/pdfchunk"
	"findingaids/internal/pipeline"
	"findingaids/internal/response"
)

var extractCmd = &cobra.Command{
	Use:   "extract [pdf-file]",
	Short: "Extract structured records from a finding-aid PDF",
	Long: `Process a scanned finding-aid PDF with a vision-capable language model
and write the extracted records as JSON, CSV and XLSX.

The document is split into page chunks. Each chunk travels to the model as a
standalone mini-PDF together with the extraction prompt; the responses are
parsed, repaired and merged into one row-per-item table with hierarchy
paths, inherited fields and sortable dates.

Required environment variables (engine-dependent):
  GEMINI_API_KEY or GOOGLE_API_KEY - for --engine gemini
  OPENAI_API_KEY                   - for --engine openai`,
	Example: `  # Full document with the default Gemini model
  findingaids extract inventory.pdf

  # Pages 10-40 only, 5 pages per model call
  findingaids extract inventory.pdf --pages 10-40 --pages-per-chunk 5

  # OpenAI engine with the flat confidence schema
  findingaids extract inventory.pdf --engine openai --model gpt-4o --schema flat

  # Four model calls in flight at once
  findingaids extract inventory.pdf --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().String("engine", "gemini", "Model engine: gemini or openai")
	extractCmd.Flags().String("model", "gemini-2.5-pro", "Model name for the selected engine")
	extractCmd.Flags().Float32("temperature", 0.0, "Sampling temperature")
	extractCmd.Flags().String("schema", response.VariantHierarchical, "Response schema: hierarchical or flat")
	extractCmd.Flags().String("pages", "", "Page selection: N or A-B (1-based, default: all pages)")
	extractCmd.Flags().Int("pages-per-chunk", 10, "Pages per model call (0 = whole selection in one call)")
	extractCmd.Flags().Int("max-retries", 3, "Retries per model call on transient failures")
	extractCmd.Flags().Int("workers", 1, "Concurrent model calls")
	extractCmd.Flags().Int("timeout", 3600, "Overall run timeout in seconds")

	extractCmd.Flags().String("out-raw", "output/raw", "Root directory for raw model transcripts")
	extractCmd.Flags().String("out-json", "output/json", "Root directory for structured JSON output")
	extractCmd.Flags().String("out-csv", "output/csv", "Root directory for CSV output")
	extractCmd.Flags().String("out-xlsx", "output/xlsx", "Root directory for XLSX output")
	extractCmd.Flags().String("out-log", "output/logs", "Root directory for parse issues and run metadata")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	engine, _ := cmd.Flags().GetString("engine")
	model, _ := cmd.Flags().GetString("model")
	temperature, _ := cmd.Flags().GetFloat32("temperature")
	schema, _ := cmd.Flags().GetString("schema")
	pages, _ := cmd.Flags().GetString("pages")
	pagesPerChunk, _ := cmd.Flags().GetInt("pages-per-chunk")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	workers, _ := cmd.Flags().GetInt("workers")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	outRaw, _ := cmd.Flags().GetString("out-raw")
	outJSON, _ := cmd.Flags().GetString("out-json")
	outCSV, _ := cmd.Flags().GetString("out-csv")
	outXLSX, _ := cmd.Flags().GetString("out-xlsx")
	outLog, _ := cmd.Flags().GetString("out-log")

	pdfPath := args[0]

	if engine != "gemini" && engine != "openai" {
		return fmt.Errorf("engine %q is not implemented, use --engine gemini or --engine openai", engine)
	}
	if schema != response.VariantHierarchical && schema != response.VariantFlat {
		return fmt.Errorf("schema %q is not implemented, use --schema hierarchical or --schema flat", schema)
	}

	log.Info().
		Str("file", pdfPath).
		Str("engine", engine).
		Str("model", model).
		Str("schema", schema).
		Str("pages", pages).
		Int("pages_per_chunk", pagesPerChunk).
		Int("workers", workers).
		Msg("Starting extraction")

	if err := validatePDFFile(pdfPath, log); err != nil {
		return err
	}

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	client, err := createClient(engine, model, temperature, maxRetries, log)
	if err != nil {
		return err
	}

	doc, err := pdfchunk.Open(pdfPath)
	if err != nil {
		if errors.Is(err, pdfchunk.ErrEmptyDocument) {
			return fmt.Errorf("PDF has no pages: %s", pdfPath)
		}
		return fmt.Errorf("failed to open PDF: %w", err)
	}

	opts := pipeline.Options{
		PDFPath:       pdfPath,
		OutRaw:        outRaw,
		OutJSON:       outJSON,
		OutCSV:        outCSV,
		OutXLSX:       outXLSX,
		OutLog:        outLog,
		Engine:        engine,
		ModelName:     model,
		Variant:       schema,
		Pages:         pages,
		PagesPerChunk: pagesPerChunk,
		Workers:       workers,
	}

	startTime := time.Now()
	result, err := pipeline.New(opts, doc, client).Run(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("extraction timed out after %d seconds", timeoutSecs)
		}
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("extraction canceled")
		}
		if errors.Is(err, pdfchunk.ErrBadPageRange) {
			return fmt.Errorf("invalid --pages value %q: use N or A-B (1-based)", pages)
		}
		return fmt.Errorf("extraction failed: %w", err)
	}

	log.Info().
		Int("rows", len(result.Rows)).
		Int("issues", len(result.Issues)).
		Dur("duration", time.Since(startTime)).
		Msg("Extraction completed successfully")

	fmt.Println("Completed end-to-end pipeline.")
	fmt.Printf("- Raw chunks: %s\n", result.Paths["raw_dir"])
	fmt.Printf("- JSON:       %s\n", result.Paths["json_out"])
	fmt.Printf("- CSV:        %s\n", result.Paths["csv_out"])
	fmt.Printf("- XLSX:       %s\n", result.Paths["xlsx_out"])
	fmt.Printf("- Issues:     %s\n", result.Paths["issues_out"])
	return nil
}

// validatePDFFile checks that the path exists, is a regular non-empty file
// and looks like a PDF.
func validatePDFFile(pdfPath string, log zerolog.Logger) error {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().
				Str("file", pdfPath).
				Msg("PDF file not found")
			return fmt.Errorf("PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			log.Error().
				Str("file", pdfPath).
				Msg("Permission denied accessing PDF file")
			return fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().
			Str("file", pdfPath).
			Msg("Path is not a regular file")
		return fmt.Errorf("path is not a regular file: %s", pdfPath)
	}

	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().
			Str("file", pdfPath).
			Msg("File does not have .pdf extension")
	}

	if fileInfo.Size() == 0 {
		log.Error().
			Str("file", pdfPath).
			Msg("PDF file is empty")
		return fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	return nil
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling extraction")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// createClient builds the model client for the chosen engine, mapping
// missing credentials to an actionable message.
func createClient(engine, model string, temperature float32, maxRetries int, log zerolog.Logger) (llm.Client, error) {
	cfg := config.Load()

	switch engine {
	case "gemini":
		client, err := llm.NewGeminiClient(cfg.GeminiAPIKey, model, temperature, maxRetries)
		if err != nil {
			if errors.Is(err, llm.ErrMissingAPIKey) {
				log.Error().Msg("Gemini API key not configured")
				return nil, fmt.Errorf("Gemini API key not configured. Set GEMINI_API_KEY or GOOGLE_API_KEY " +
					"in the environment or in your .env file")
			}
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return client, nil
	case "openai":
		client, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, model, temperature, maxRetries)
		if err != nil {
			if errors.Is(err, llm.ErrMissingAPIKey) {
				log.Error().Msg("OpenAI API key not configured")
				return nil, fmt.Errorf("OpenAI API key not configured. Set OPENAI_API_KEY " +
					"in the environment or in your .env file")
			}
			return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported engine: %s", engine)
}
