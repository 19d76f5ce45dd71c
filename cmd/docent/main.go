// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/docent"
	"github.com/poiesic/docent/chunk"
	"github.com/poiesic/docent/config"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/query"
	"github.com/poiesic/docent/reembed"
)

func main() {
	app := &cli.App{
		Name:  "docent",
		Usage: "Document knowledge base with grounded, cited answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				Value:   "docent.yaml",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to database directory (overrides config)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest one or more files into the knowledge base",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
			},
			{
				Name:      "reprocess",
				Usage:     "Re-run parsing, chunking, and embedding for a document",
				ArgsUsage: "FILE",
				Action:    reprocessCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Document ID to reprocess",
						Required: true,
					},
				},
			},
			{
				Name:   "list",
				Usage:  "List all documents",
				Action: listCommand,
			},
			{
				Name:   "status",
				Usage:  "Show one document's processing state and classification",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Document ID",
						Required: true,
					},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask a question against the selected documents",
				ArgsUsage: "QUESTION",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session ID for conversation history",
						Value:   1,
					},
					&cli.Uint64Flag{
						Name:  "org",
						Usage: "Organization ID for usage accounting",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  "documents",
						Usage: "Comma-separated document IDs to search (default: all completed)",
					},
					&cli.BoolFlag{
						Name:  "stream",
						Usage: "Print the answer as it is generated",
					},
				},
			},
			{
				Name:   "sessions",
				Usage:  "Show a session's messages with their citations",
				Action: sessionsCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "session",
						Aliases:  []string{"s"},
						Usage:    "Session ID",
						Required: true,
					},
				},
			},
			{
				Name:   "usage",
				Usage:  "Show accumulated token and query counters",
				Action: usageCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{
						Name:     "org",
						Usage:    "Organization ID",
						Required: true,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored chunks with the configured embedder",
				Action: reembedCommand,
				Flags:  maintenanceFlags(),
			},
			{
				Name:   "reclassify",
				Usage:  "Reclassify all documents from their stored chunks",
				Action: reclassifyCommand,
				Flags:  maintenanceFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// maintenanceFlags are shared by the reembed and reclassify commands.
func maintenanceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of chunks to process in each batch",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N items",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for failed operations",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

// openDatabase loads configuration and opens the database it points at.
// The --db flag takes precedence over the configured path.
func openDatabase(c *cli.Context) (*docent.Database, *config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	path := cfg.Database.Path
	if flagPath := c.String("db"); flagPath != "" {
		path = flagPath
	}

	db, err := docent.NewDatabase(path, docent.WithAIConfig(cfg.AIServiceConfig()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	return db, cfg, nil
}

// newPipeline builds an ingestion pipeline honoring the configured chunking
// and worker settings.
func newPipeline(db *docent.Database, cfg *config.Config) (*ingestion.Pipeline, error) {
	var opts []ingestion.Option
	if cfg.Ingestion.Workers > 0 {
		opts = append(opts, ingestion.WithWorkers(cfg.Ingestion.Workers))
	}
	if cfg.Ingestion.QueueDepth > 0 {
		opts = append(opts, ingestion.WithQueue(ingestion.NewMemoryQueue(cfg.Ingestion.QueueDepth)))
	}
	if cfg.Chunking.MaxTokens > 0 || cfg.Chunking.OverlapTokens > 0 {
		var chunkOpts []chunk.ChunkerOption
		if cfg.Chunking.MaxTokens > 0 {
			chunkOpts = append(chunkOpts, chunk.WithMaxTokens(cfg.Chunking.MaxTokens))
		}
		if cfg.Chunking.OverlapTokens > 0 {
			chunkOpts = append(chunkOpts, chunk.WithOverlapTokens(cfg.Chunking.OverlapTokens))
		}
		chunker, err := chunk.NewChunker(chunk.NewTokenizer(), chunkOpts...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ingestion.WithChunker(chunker))
	}
	return db.NewIngestionPipeline(opts...)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := newPipeline(db, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	queued := make([]core.ID, 0, c.NArg())
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		document, err := pipeline.IngestFile(ctx, filepath.Base(path), "", data)
		if err != nil {
			return fmt.Errorf("failed to queue %s: %w", path, err)
		}
		queued = append(queued, document.Id)
		fmt.Printf("queued %s as document %d\n", path, uint64(document.Id))
	}

	pipeline.Wait()

	for _, id := range queued {
		document, err := db.DocumentRepository().GetDocument(ctx, id)
		if err != nil {
			return err
		}
		printDocumentLine(document)
	}
	return nil
}

func reprocessCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file is required")
	}

	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.Args().First(), err)
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := newPipeline(db, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Release()

	ctx := context.Background()
	id := core.ID(c.Uint64("id"))
	if err := pipeline.Reprocess(ctx, id, data); err != nil {
		return fmt.Errorf("failed to reprocess document %d: %w", uint64(id), err)
	}
	pipeline.Wait()

	document, err := db.DocumentRepository().GetDocument(ctx, id)
	if err != nil {
		return err
	}
	printDocumentLine(document)
	return nil
}

func listCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	documents, err := db.DocumentRepository().ListDocuments(context.Background())
	if err != nil {
		return err
	}

	if len(documents) == 0 {
		fmt.Println("no documents")
		return nil
	}
	for _, document := range documents {
		printDocumentLine(document)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	document, err := db.DocumentRepository().GetDocument(context.Background(), core.ID(c.Uint64("id")))
	if err != nil {
		return err
	}

	fmt.Printf("Document:  %d\n", uint64(document.Id))
	fmt.Printf("Filename:  %s\n", document.Filename)
	fmt.Printf("Title:     %s\n", document.Title)
	fmt.Printf("Mime type: %s\n", document.MimeType)
	fmt.Printf("Status:    %s\n", document.Status)
	if document.Error != "" {
		fmt.Printf("Error:     %s\n", document.Error)
	}
	fmt.Printf("Pages:     %d\n", document.PageCount)
	fmt.Printf("Chunks:    %d\n", document.ChunkCount)
	if document.Classification.DocumentType != "" {
		fmt.Printf("Type:      %s (%.2f)\n",
			document.Classification.DocumentType, document.Classification.Confidence)
	}
	if document.Classification.Summary != "" {
		fmt.Printf("Summary:   %s\n", document.Classification.Summary)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("a question is required")
	}

	documentIds, err := parseDocumentIds(c.String("documents"))
	if err != nil {
		return err
	}

	db, cfg, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []query.ProcessorOption{
		query.WithSearchAllFallback(cfg.SearchAllFallback()),
		query.WithSimilarityFloor(cfg.SimilarityFloor()),
	}
	if cfg.Retrieval.TopK > 0 {
		opts = append(opts, query.WithTopK(cfg.Retrieval.TopK))
	}
	processor, err := db.NewQueryProcessor(opts...)
	if err != nil {
		return err
	}

	request := query.Request{
		SessionId:      core.ID(c.Uint64("session")),
		OrganizationId: core.ID(c.Uint64("org")),
		Question:       strings.Join(c.Args().Slice(), " "),
		DocumentIds:    documentIds,
		Template:       cfg.Generation.Template,
	}

	streaming := c.Bool("stream")
	if streaming {
		request.StreamFunc = func(_ context.Context, fragment []byte) error {
			_, err := os.Stdout.Write(fragment)
			return err
		}
	}

	message, err := processor.Ask(context.Background(), request)
	if err != nil {
		return err
	}

	if streaming {
		fmt.Println()
	} else {
		fmt.Println(message.Contents)
	}
	printCitations(message.Citations)
	return nil
}

func sessionsCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	messages, err := db.MessageRepository().GetSessionMessages(
		context.Background(), core.ID(c.Uint64("session")), 0)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		fmt.Println("no messages")
		return nil
	}
	for _, message := range messages {
		fmt.Printf("[%s] %s\n", message.Role, message.Contents)
		printCitations(message.Citations)
		if message.Role == core.MessageRoleAssistant && message.ModelUsed != "" {
			fmt.Printf("  (%s, %d in / %d out tokens, %d ms)\n",
				message.ModelUsed, message.InputTokens, message.OutputTokens, message.LatencyMs)
		}
	}
	return nil
}

func usageCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	usage, err := db.UsageRepository().GetUsage(context.Background(), core.ID(c.Uint64("org")))
	if err != nil {
		return err
	}
	if usage == nil {
		fmt.Println("no recorded usage")
		return nil
	}

	fmt.Printf("Organization:  %d\n", uint64(usage.OrganizationId))
	fmt.Printf("Queries:       %d\n", usage.QueryCount)
	fmt.Printf("Input tokens:  %d\n", usage.InputTokens)
	fmt.Printf("Output tokens: %d\n", usage.OutputTokens)
	return nil
}

func reembedCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	maintenanceConfig, err := parseMaintenanceConfig(c)
	if err != nil {
		return err
	}

	reembedder := reembed.NewReembedder(
		db.DocumentRepository(),
		db.ChunkRepository(),
		db.Provider().Embedder(),
		maintenanceConfig,
		os.Stderr,
	)

	if err := reembedder.Run(context.Background()); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func reclassifyCommand(c *cli.Context) error {
	db, _, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	maintenanceConfig, err := parseMaintenanceConfig(c)
	if err != nil {
		return err
	}

	reclassifier := reembed.NewReclassifier(
		db.DocumentRepository(),
		db.ChunkRepository(),
		db.Provider().Classifier(),
		maintenanceConfig,
		os.Stderr,
	)

	if err := reclassifier.Run(context.Background()); err != nil {
		return fmt.Errorf("reclassification failed: %w", err)
	}
	return nil
}

func parseMaintenanceConfig(c *cli.Context) (*reembed.Config, error) {
	cfg := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch-size must be greater than 0")
	}
	if cfg.ReportInterval <= 0 {
		return nil, fmt.Errorf("report-interval must be greater than 0")
	}
	if cfg.MaxRetries <= 0 {
		return nil, fmt.Errorf("max-retries must be greater than 0")
	}
	return cfg, nil
}

// parseDocumentIds parses a comma-separated list of document IDs.
// An empty string selects no documents, leaving the fallback policy to decide.
func parseDocumentIds(list string) ([]core.ID, error) {
	if strings.TrimSpace(list) == "" {
		return nil, nil
	}

	parts := strings.Split(list, ",")
	ids := make([]core.ID, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid document id %q", part)
		}
		ids = append(ids, core.ID(id))
	}
	return ids, nil
}

func printDocumentLine(document *core.Document) {
	line := fmt.Sprintf("%d: %s [%s]", uint64(document.Id), document.Filename, document.Status)
	if document.Status == core.DocumentStatusCompleted {
		line += fmt.Sprintf(" pages=%d chunks=%d", document.PageCount, document.ChunkCount)
		if document.Classification.DocumentType != "" {
			line += " type=" + document.Classification.DocumentType
		}
	}
	if document.Error != "" {
		line += " error=" + document.Error
	}
	fmt.Println(line)
}

func printCitations(citations []core.Citation) {
	for _, citation := range citations {
		location := citation.DocumentTitle
		if citation.PageNumber > 0 {
			location += fmt.Sprintf(", p.%d", citation.PageNumber)
		}
		if len(citation.SectionPath) > 0 {
			location += ", " + strings.Join(citation.SectionPath, " > ")
		}
		fmt.Printf("  [%d] %s: %q\n", citation.Marker, location, citation.Excerpt)
	}
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
