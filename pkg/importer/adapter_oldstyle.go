package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glyphlab/ivsd/pkg/ivd"
)

// OldStyleFile is the installed name of the old-style variants table.
const OldStyleFile = "oldstyle.txt"

func init() {
	Register(&oldStyleAdapter{})
}

// oldStyleAdapter fetches the tab-separated modern/historical character table.
type oldStyleAdapter struct{}

func (a *oldStyleAdapter) ID() string   { return "oldstyle-table" }
func (a *oldStyleAdapter) File() string { return OldStyleFile }
func (a *oldStyleAdapter) Description() string {
	return "Modern to old-style historical character variants"
}
func (a *oldStyleAdapter) DefaultURL() string {
	return "https://raw.githubusercontent.com/kawabata/ivs-edit/master/ivs-oldstyle.txt"
}
func (a *oldStyleAdapter) License() string { return "GPL-3.0" }

func (a *oldStyleAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	if err := ensureDir(outputDir); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "oldstyle-import-*")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpPath := filepath.Join(tmpDir, OldStyleFile)
	if err := downloadFile(ctx, sourceURL, tmpPath); err != nil {
		return err
	}

	table, err := ivd.LoadOldStyle(tmpPath)
	if err != nil {
		return fmt.Errorf("validate old-style file: %w", err)
	}
	if len(table) == 0 {
		return fmt.Errorf("old-style file %s contains no entries", sourceURL)
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return fmt.Errorf("read downloaded file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, OldStyleFile), data, 0o644); err != nil {
		return fmt.Errorf("install old-style file: %w", err)
	}

	return writeManifest(outputDir, &Manifest{
		AdapterID: a.ID(),
		File:      OldStyleFile,
		SourceURL: sourceURL,
		License:   a.License(),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Records:   len(table),
	})
}
