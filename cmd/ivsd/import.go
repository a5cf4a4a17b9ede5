package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/glyphlab/ivsd/pkg/importer"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	source := fs.String("source", "", "adapter ID to import (e.g. ivd-sequences)")
	all := fs.Bool("all", false, "import all available sources")
	check := fs.Bool("check", false, "check source availability instead of importing")
	outputDir := fs.String("output-dir", "data", "output directory for data files")
	fs.Parse(args)

	sourcesDBPath := filepath.Join(*outputDir, "sources.db")
	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}
	sdb, err := importer.OpenSourceDB(sourcesDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources.db: %v\n", err)
		os.Exit(1)
	}
	defer sdb.Close()

	if err := sdb.Seed(importer.All()); err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding sources: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if *check {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		importer.NewChecker(sdb, logger, time.Hour).CheckAll(ctx)
		return
	}

	if !*all && *source == "" {
		fmt.Println("Available sources:")
		fmt.Println()
		sources, _ := sdb.ListSources()
		for _, src := range sources {
			status := ""
			if src.LastStatus != nil {
				status = fmt.Sprintf("  [%d]", *src.LastStatus)
			}
			fmt.Printf("  %-18s  %s  (-> %s)%s\n", src.AdapterID, src.Description, src.File, status)
		}
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  ivsd import --source <id> [--output-dir <dir>]")
		fmt.Println("  ivsd import --all [--output-dir <dir>]")
		return
	}

	if *all {
		for _, a := range importer.All() {
			runImport(ctx, sdb, a, *outputDir)
		}
		return
	}

	a, err := importer.Get(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Println("\nAvailable sources:")
		for _, a := range importer.All() {
			fmt.Printf("  %s\n", a.ID())
		}
		os.Exit(1)
	}
	if !runImport(ctx, sdb, a, *outputDir) {
		os.Exit(1)
	}
}

func runImport(ctx context.Context, sdb *importer.SourceDB, a importer.Adapter, outputDir string) bool {
	url, err := sdb.GetURL(a.ID())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR (URL): %v\n", a.ID(), err)
		return false
	}
	fmt.Printf("[%s] Importing...\n", a.ID())
	if err := a.Import(ctx, url, outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR: %v\n", a.ID(), err)
		return false
	}
	fmt.Printf("[%s] OK -> %s/%s\n", a.ID(), outputDir, a.File())
	return true
}
