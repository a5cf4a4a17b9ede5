package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDownloadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := downloadFile(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("content = %q, want payload", data)
	}
}

func TestDownloadFile_Retries(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("eventually"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := downloadFile(context.Background(), srv.URL, dest); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDownloadFile_Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.txt")
	if err := downloadFile(context.Background(), srv.URL, dest); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestExtractFromZip(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"readme.txt":            "ignore me",
		"IVD/IVD_Sequences.txt": "4E9C E0100; Adobe-Japan1; CID+01234\n",
	} {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		f.Write([]byte(content))
	}
	zw.Close()

	zipPath := filepath.Join(dir, "IVD.zip")
	os.WriteFile(zipPath, buf.Bytes(), 0o644)

	path, err := extractFromZip(zipPath, "IVD_Sequences.txt", dir)
	if err != nil {
		t.Fatalf("extractFromZip: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read extracted: %v", err)
	}
	if !bytes.Contains(data, []byte("Adobe-Japan1")) {
		t.Errorf("extracted content = %q", data)
	}

	if _, err := extractFromZip(zipPath, "missing.txt", dir); err == nil {
		t.Error("expected error for missing zip entry")
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{
		AdapterID: "ivd-sequences",
		File:      SequencesFile,
		SourceURL: "https://example.com/IVD.zip",
		License:   "Unicode License v3",
		FetchedAt: "2026-01-01T00:00:00Z",
		Records:   42,
	}
	if err := writeManifest(dir, m); err != nil {
		t.Fatalf("writeManifest: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SequencesFile+".manifest.yaml"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var got Manifest
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal manifest: %v", err)
	}
	if got != *m {
		t.Errorf("manifest = %+v, want %+v", got, *m)
	}
}
