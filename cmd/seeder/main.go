package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/docent"
	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/query"
)

// seedDocuments are small synthetic documents covering a few structural
// shapes: numbered clauses, headings, list items, and plain prose.
var seedDocuments = []struct {
	filename string
	contents string
}{
	{
		filename: "services-agreement.txt",
		contents: `SERVICES AGREEMENT

1. Definitions

1.1 "Client" means Meridian Holdings Ltd, a company registered in Delaware.

1.2 "Provider" means Atlas Consulting LLC, including its permitted assignees.

2. Payment Terms

2.1 Invoices are issued monthly and are due within 30 days of receipt.

2.2 Late payments accrue interest at 1.5% per month on the outstanding balance.

2.3 All fees are exclusive of applicable taxes, which the Client bears.

3. Termination

3.1 Either party may terminate with 60 days written notice.

3.2 Sections 2 and 5 survive termination of this agreement.`,
	},
	{
		filename: "quarterly-report.txt",
		contents: `QUARTERLY OPERATIONS REPORT

Executive Summary
-----------------

Revenue grew 12% quarter over quarter, driven by the enterprise segment.
Operating costs held flat despite the data center migration.

Key Risks
---------

- Vendor concentration: two suppliers account for 60% of component volume.
- Currency exposure on the APAC contracts remains unhedged.
- Hiring in the platform team is three months behind plan.

Outlook
-------

We expect mid-single-digit growth next quarter. The board approved a
contingency budget of $2M for the migration overrun scenario.`,
	},
	{
		filename: "onboarding-notes.md",
		contents: `# Onboarding Notes

## Accounts

Every new hire needs an SSO account before day one. The identity team
handles provisioning; file the request at least a week ahead.

## First Week

Pair with a buddy from the same team. The buddy walks through the build
system, the deploy pipeline, and the incident process.

## Equipment

Laptops ship directly to the hire's address. Monitors and peripherals
are stocked in the office storage room.`,
	},
}

var (
	seedDir = flag.String("dir", "", "directory of files to seed instead of the builtin samples")
	dbPath  = flag.String("db", "./docent_db", "path to database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	// The mock provider keeps the seeder self-contained: deterministic
	// vectors, canned classification, and a fixed cited answer.
	db, err := docent.NewDatabase(*dbPath, docent.WithProvider(mock.NewMockProvider()))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	if *seedDir != "" {
		if err := ingestDirectory(ctx, pipeline, *seedDir); err != nil {
			panic(err)
		}
	} else {
		for _, seed := range seedDocuments {
			document, err := pipeline.IngestFile(ctx, seed.filename, "", []byte(seed.contents))
			if err != nil {
				panic(err)
			}
			fmt.Printf("queued %s as document %d\n", seed.filename, uint64(document.Id))
		}
	}

	pipeline.Wait()

	documents, err := db.DocumentRepository().ListDocuments(ctx)
	if err != nil {
		panic(err)
	}
	for _, document := range documents {
		fmt.Printf("%d: %s [%s] chunks=%d\n",
			uint64(document.Id), document.Filename, document.Status, document.ChunkCount)
	}

	// Demo query against everything just seeded.
	processor, err := db.NewQueryProcessor(query.WithSimilarityFloor(0))
	if err != nil {
		panic(err)
	}

	message, err := processor.Ask(ctx, query.Request{
		SessionId:      1,
		OrganizationId: 1,
		Question:       "When are invoices due and what happens if payment is late?",
	})
	if err != nil {
		panic(err)
	}

	fmt.Printf("\nanswer: %s\n", message.Contents)
	for _, citation := range message.Citations {
		fmt.Printf("  [%d] %s: %q\n", citation.Marker, citation.DocumentTitle, citation.Excerpt)
	}
}

func ingestDirectory(ctx context.Context, pipeline *ingestion.Pipeline, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		document, err := pipeline.IngestFile(ctx, entry.Name(), "", data)
		if err != nil {
			fmt.Printf("skipping %s: %v\n", path, err)
			continue
		}
		fmt.Printf("queued %s as document %d\n", path, uint64(document.Id))
	}
	return nil
}
