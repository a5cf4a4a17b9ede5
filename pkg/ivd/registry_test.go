package ivd

import (
	"os"
	"path/filepath"
	"testing"
)

// writeSequences writes a sequences fixture and returns its path.
func writeSequences(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "IVD_Sequences.txt")
	os.WriteFile(path, []byte(content), 0o644)
	return path
}

const sampleSequences = `# IVD_Sequences.txt
# Comment and header lines must be skipped.
3402 E0100; Adobe-Japan1; CID+13698
3402 E0101; Hanyo-Denshi; IB0071
4E9C E0100; Adobe-Japan1; CID+01234
4E9C E0101; Hanyo-Denshi; HD-01
4E9C E0102; Moji_Joho; MJ006462
not a record line
`

func TestLoadRegistry(t *testing.T) {
	reg, err := LoadRegistry(writeSequences(t, sampleSequences))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}

	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
	if reg.TotalSequences() != 5 {
		t.Errorf("TotalSequences = %d, want 5", reg.TotalSequences())
	}

	seqs, ok := reg.Lookup('亜') // U+4E9C
	if !ok {
		t.Fatal("expected sequences for U+4E9C")
	}
	if len(seqs) != 3 {
		t.Fatalf("sequences = %d, want 3", len(seqs))
	}
	// File order preserved.
	want := []Sequence{
		{Selector: 0xE0100, Collection: "Adobe-Japan1", Name: "CID+01234"},
		{Selector: 0xE0101, Collection: "Hanyo-Denshi", Name: "HD-01"},
		{Selector: 0xE0102, Collection: "Moji_Joho", Name: "MJ006462"},
	}
	for i, w := range want {
		if seqs[i] != w {
			t.Errorf("seqs[%d] = %+v, want %+v", i, seqs[i], w)
		}
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nonexistent.txt"))
	if err == nil {
		t.Fatal("expected error for missing sequences file")
	}
}

func TestLookup_Absent(t *testing.T) {
	reg, err := LoadRegistry(writeSequences(t, sampleSequences))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if _, ok := reg.Lookup('鬼'); ok {
		t.Error("Lookup(U+9B3C) = ok, want absent")
	}
}

func TestParseSequenceLine(t *testing.T) {
	tests := []struct {
		line string
		ok   bool
	}{
		{"4E9C E0100; Adobe-Japan1; CID+01234", true},
		{"4E9C FE00; Adobe-Japan1; CID+01234", true},
		{"# comment", false},
		{"", false},
		{"4E9C; Adobe-Japan1; CID+01234", false},
		{"4E9C E0100; Adobe-Japan1", false},
		{"XXXX E0100; Adobe-Japan1; CID+01234", false},
		{"4E9C XXXX; Adobe-Japan1; CID+01234", false},
		// Selector position must hold an actual variation selector.
		{"4E9C 4E9D; Adobe-Japan1; CID+01234", false},
	}
	for _, tt := range tests {
		_, _, ok := parseSequenceLine(tt.line)
		if ok != tt.ok {
			t.Errorf("parseSequenceLine(%q) ok = %v, want %v", tt.line, ok, tt.ok)
		}
	}
}

func TestBases_Order(t *testing.T) {
	reg, err := LoadRegistry(writeSequences(t, sampleSequences))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	bases := reg.Bases()
	if len(bases) != 2 || bases[0] != 0x3402 || bases[1] != 0x4E9C {
		t.Errorf("Bases = %U, want [U+3402 U+4E9C]", bases)
	}
}

func TestHasCollection(t *testing.T) {
	reg, err := LoadRegistry(writeSequences(t, sampleSequences))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if !reg.HasCollection('亜', "Moji_Joho") {
		t.Error("HasCollection(U+4E9C, Moji_Joho) = false, want true")
	}
	if reg.HasCollection(0x3402, "Moji_Joho") {
		t.Error("HasCollection(U+3402, Moji_Joho) = true, want false")
	}
}

func TestCollections(t *testing.T) {
	reg, err := LoadRegistry(writeSequences(t, sampleSequences))
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	got := reg.Collections()
	want := []string{"Adobe-Japan1", "Hanyo-Denshi", "Moji_Joho"}
	if len(got) != len(want) {
		t.Fatalf("Collections = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Collections[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestIsVariationSelector(t *testing.T) {
	tests := []struct {
		r    rune
		want bool
	}{
		{0x180B, true},
		{0x180D, true},
		{0xFE00, true},
		{0xFE0F, true},
		{0xE0100, true},
		{0xE01EF, true},
		{0x180A, false},
		{0xFE10, false},
		{0xE01F0, false},
		{'亜', false},
	}
	for _, tt := range tests {
		if got := IsVariationSelector(tt.r); got != tt.want {
			t.Errorf("IsVariationSelector(%U) = %v, want %v", tt.r, got, tt.want)
		}
	}
}
