package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glyphlab/ivsd/pkg/ivd"
)

// SequencesFile is the installed name of the variation sequences table.
const SequencesFile = "IVD_Sequences.txt"

func init() {
	Register(&ivdAdapter{})
}

// ivdAdapter fetches the Ideographic Variation Database release zip from
// unicode.org and installs IVD_Sequences.txt.
type ivdAdapter struct{}

func (a *ivdAdapter) ID() string   { return "ivd-sequences" }
func (a *ivdAdapter) File() string { return SequencesFile }
func (a *ivdAdapter) Description() string {
	return "Registered ideographic variation sequences (IVD release)"
}
func (a *ivdAdapter) DefaultURL() string {
	return "https://www.unicode.org/ivd/data/2022-09-13/IVD.zip"
}
func (a *ivdAdapter) License() string { return "Unicode License v3" }

func (a *ivdAdapter) Import(ctx context.Context, sourceURL, outputDir string) error {
	if err := ensureDir(outputDir); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "ivd-import-*")
	if err != nil {
		return fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	zipPath := filepath.Join(tmpDir, "IVD.zip")
	if err := downloadFile(ctx, sourceURL, zipPath); err != nil {
		return err
	}

	extracted, err := extractFromZip(zipPath, SequencesFile, tmpDir)
	if err != nil {
		return err
	}

	// Parse before installing: a file the registry cannot load is not data.
	reg, err := ivd.LoadRegistry(extracted)
	if err != nil {
		return fmt.Errorf("validate sequences file: %w", err)
	}
	if reg.TotalSequences() == 0 {
		return fmt.Errorf("sequences file %s contains no registrations", sourceURL)
	}

	dest := filepath.Join(outputDir, SequencesFile)
	if err := os.Rename(extracted, dest); err != nil {
		// Rename fails across filesystems; fall back to a copy.
		data, readErr := os.ReadFile(extracted)
		if readErr != nil {
			return fmt.Errorf("install sequences file: %w", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("install sequences file: %w", err)
		}
	}

	return writeManifest(outputDir, &Manifest{
		AdapterID: a.ID(),
		File:      SequencesFile,
		SourceURL: sourceURL,
		License:   a.License(),
		FetchedAt: time.Now().UTC().Format(time.RFC3339),
		Records:   reg.TotalSequences(),
	})
}
