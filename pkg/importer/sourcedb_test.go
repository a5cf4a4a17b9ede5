package importer

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SourceDB {
	t.Helper()
	sdb, err := OpenSourceDB(filepath.Join(t.TempDir(), "sources.db"))
	if err != nil {
		t.Fatalf("OpenSourceDB: %v", err)
	}
	t.Cleanup(func() { sdb.Close() })
	return sdb
}

func TestSeedAndList(t *testing.T) {
	sdb := openTestDB(t)

	if err := sdb.Seed(All()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	if len(sources) != len(All()) {
		t.Fatalf("sources = %d, want %d", len(sources), len(All()))
	}
	// Sorted by adapter_id: ivd-sequences < oldstyle-table
	if sources[0].AdapterID != "ivd-sequences" {
		t.Errorf("first = %q, want ivd-sequences", sources[0].AdapterID)
	}
	if sources[0].File != SequencesFile {
		t.Errorf("file = %q, want %q", sources[0].File, SequencesFile)
	}
}

func TestSeed_PreservesOverrides(t *testing.T) {
	sdb := openTestDB(t)

	if err := sdb.Seed(All()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := sdb.SetURL("ivd-sequences", "https://mirror.example/IVD.zip"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}

	// Re-seeding must not clobber the manual override.
	if err := sdb.Seed(All()); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	url, err := sdb.GetURL("ivd-sequences")
	if err != nil {
		t.Fatalf("GetURL: %v", err)
	}
	if url != "https://mirror.example/IVD.zip" {
		t.Errorf("url = %q, want the override", url)
	}
}

func TestSetURL_Unknown(t *testing.T) {
	sdb := openTestDB(t)
	if err := sdb.Seed(All()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := sdb.SetURL("no-such-adapter", "https://example.com/x"); err == nil {
		t.Error("expected error for unknown adapter")
	}
}

func TestUpdateCheck(t *testing.T) {
	sdb := openTestDB(t)
	if err := sdb.Seed(All()); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	if err := sdb.UpdateCheck("ivd-sequences", 200, ""); err != nil {
		t.Fatalf("UpdateCheck: %v", err)
	}

	sources, err := sdb.ListSources()
	if err != nil {
		t.Fatalf("ListSources: %v", err)
	}
	for _, src := range sources {
		if src.AdapterID != "ivd-sequences" {
			continue
		}
		if src.LastStatus == nil || *src.LastStatus != 200 {
			t.Errorf("last_status = %v, want 200", src.LastStatus)
		}
		if src.LastCheck == nil {
			t.Error("last_check not set")
		}
		if src.LastError != nil {
			t.Errorf("last_error = %v, want nil", *src.LastError)
		}
		return
	}
	t.Fatal("ivd-sequences row not found")
}

func TestAdapterRegistry(t *testing.T) {
	if _, err := Get("ivd-sequences"); err != nil {
		t.Errorf("Get(ivd-sequences): %v", err)
	}
	if _, err := Get("oldstyle-table"); err != nil {
		t.Errorf("Get(oldstyle-table): %v", err)
	}
	if _, err := Get("bogus"); err == nil {
		t.Error("Get(bogus) succeeded, want error")
	}
}
