package ivd

import (
	"os"
	"path/filepath"
	"testing"
)

func writeOldStyle(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oldstyle.txt")
	os.WriteFile(path, []byte(content), 0o644)
	return path
}

func TestLoadOldStyle(t *testing.T) {
	table, err := LoadOldStyle(writeOldStyle(t,
		"亜\t亞\n"+
			"悪\t惡\n"+
			"弁\t辨\n"+
			"弁\t辯\n"+
			"# not a record\n"))
	if err != nil {
		t.Fatalf("LoadOldStyle: %v", err)
	}

	if len(table) != 3 {
		t.Errorf("entries = %d, want 3", len(table))
	}

	variants, ok := table.Lookup('亜')
	if !ok || len(variants) != 1 || variants[0] != "亞" {
		t.Errorf("Lookup(亜) = %q, %v; want [亞], true", variants, ok)
	}

	// Ambiguous forms keep every alternative in file order.
	variants, ok = table.Lookup('弁')
	if !ok || len(variants) != 2 || variants[0] != "辨" || variants[1] != "辯" {
		t.Errorf("Lookup(弁) = %q, %v; want [辨 辯], true", variants, ok)
	}
}

func TestLoadOldStyle_WithSelectors(t *testing.T) {
	table, err := LoadOldStyle(writeOldStyle(t, "葛\U000E0101\t葛\U000E0100\n"))
	if err != nil {
		t.Fatalf("LoadOldStyle: %v", err)
	}
	variants, ok := table.Lookup('葛')
	if !ok || len(variants) != 1 {
		t.Fatalf("Lookup(葛) = %q, %v; want one variant", variants, ok)
	}
	if variants[0] != "葛\U000E0100" {
		t.Errorf("variant = %q, want selector preserved", variants[0])
	}
}

func TestLoadOldStyle_MissingFile(t *testing.T) {
	_, err := LoadOldStyle(filepath.Join(t.TempDir(), "nonexistent.txt"))
	if err == nil {
		t.Fatal("expected error for missing old-style file")
	}
}

func TestParseOldStyleLine(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"亜\t亞", true},
		{"葛\U000E0101\t葛\U000E0100", true},
		{"亜 亞", false},       // no tab
		{"亜亜\t亞", false},     // two characters on the left
		{"亜\t亞亞", false},     // two characters on the right
		{"", false},
		{"\t亞", false},
	}
	for _, tt := range tests {
		_, _, ok := parseOldStyleLine(tt.line)
		if ok != tt.ok {
			t.Errorf("parseOldStyleLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
		}
	}
}
