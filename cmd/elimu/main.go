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
	"strings"
	"time"

	"github.com/poiesic/elimu"
	"github.com/poiesic/elimu/ai"
	"github.com/poiesic/elimu/core"
	"github.com/poiesic/elimu/reindex"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "elimu",
		Usage: "Document search and relevance ranking for curriculum content",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest a document from a text file",
				ArgsUsage: "<file>",
				Action:    ingestCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Document title",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Subject the document covers",
					},
					&cli.StringFlag{
						Name:  "grade",
						Usage: "Grade level",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Document type (notes, exam, scheme)",
					},
					&cli.StringFlag{
						Name:  "uploaded-by",
						Usage: "Uploader identity",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search documents",
				ArgsUsage: "[query]",
				Action:    searchCommand,
				Flags: append(databaseFlags(),
					&cli.StringFlag{
						Name:  "subject",
						Usage: "Filter by subject",
					},
					&cli.StringFlag{
						Name:  "grade",
						Usage: "Filter by grade",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by document type",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Result page",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Results per page",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "facets",
						Usage: "Print facet counts alongside results",
					},
				),
			},
			{
				Name:      "suggest",
				Usage:     "Suggest search terms for a partial query",
				ArgsUsage: "<partial>",
				Action:    suggestCommand,
				Flags:     databaseFlags(),
			},
			{
				Name:   "reindex",
				Usage:  "Re-chunk and re-embed all documents",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
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
					&cli.BoolFlag{
						Name:  "resume",
						Usage: "Resume from the last saved checkpoint",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func databaseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
	}
}

func openDatabase(c *cli.Context) (*elimu.Database, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	return elimu.NewDatabase(c.String("db"), elimu.WithAIConfig(aiConfig))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}

	content, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	added, err := pipeline.Ingest(c.Context, &core.Document{
		Title:            c.String("title"),
		Subject:          c.String("subject"),
		Grade:            c.String("grade"),
		DocumentType:     c.String("type"),
		UploadedBy:       c.String("uploaded-by"),
		ExtractedContent: string(content),
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	// Let async embedding finish before the process exits
	pipeline.Wait()

	fmt.Printf("Ingested document %d: %s\n", added[0].Id, added[0].Title)
	return nil
}

func searchCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	query := core.NewSearchQuery(strings.Join(c.Args().Slice(), " "))
	query.Filter.Subject = c.String("subject")
	query.Filter.Grade = c.String("grade")
	query.Filter.DocumentType = c.String("type")
	query.Page = c.Int("page")
	query.Limit = c.Int("limit")

	response, err := searcher.Search(c.Context, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("%d results (page %d of %d, %v)\n",
		response.Stats.TotalResults, response.Stats.CurrentPage,
		response.Stats.TotalPages, response.Stats.QueryTime.Round(time.Millisecond))

	for i, result := range response.Results {
		fmt.Printf("%d. [%.2f] %s (%s, %s)\n", i+1, result.Relevance,
			result.Title, result.Subject, result.Grade)
		for _, highlight := range result.Highlights {
			fmt.Printf("     ... %s\n", highlight)
		}
	}

	if c.Bool("facets") {
		printFacets(&response.Stats.Facets)
	}

	return nil
}

func printFacets(facets *core.Facets) {
	sections := []struct {
		name   string
		counts []core.FacetCount
	}{
		{"Subjects", facets.Subjects},
		{"Grades", facets.Grades},
		{"Types", facets.DocumentTypes},
		{"Dates", facets.Dates},
	}
	for _, section := range sections {
		fmt.Printf("\n%s:\n", section.name)
		for _, fc := range section.counts {
			fmt.Printf("  %-16s %d\n", fc.Value, fc.Count)
		}
	}
}

func suggestCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one partial-query argument")
	}

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return err
	}

	suggestions, err := searcher.Suggestions(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	if len(suggestions) == 0 {
		suggestions = searcher.PopularSearches()
		fmt.Println("No matches; popular searches:")
	}
	for _, s := range suggestions {
		fmt.Println(s)
	}
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Resume:         c.Bool("resume"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := db.NewReindexer(config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	return nil
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
