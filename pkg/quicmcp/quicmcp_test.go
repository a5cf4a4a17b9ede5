package quicmcp

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestMagicRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMagic(&buf); err != nil {
		t.Fatalf("WriteMagic: %v", err)
	}
	if err := ReadMagic(&buf); err != nil {
		t.Errorf("ReadMagic: %v", err)
	}
}

func TestReadMagic_Invalid(t *testing.T) {
	err := ReadMagic(strings.NewReader("HTTP/1.1 GET /"))
	if !errors.Is(err, ErrBadMagic) {
		t.Errorf("err = %v, want ErrBadMagic", err)
	}
}

func TestReadMagic_Short(t *testing.T) {
	if err := ReadMagic(strings.NewReader("IV")); err == nil {
		t.Error("expected error on truncated magic")
	}
}

func TestSelfSignedTLSConfig(t *testing.T) {
	cfg, err := SelfSignedTLSConfig()
	if err != nil {
		t.Fatalf("SelfSignedTLSConfig: %v", err)
	}
	if len(cfg.Certificates) != 1 {
		t.Errorf("certificates = %d, want 1", len(cfg.Certificates))
	}
	if len(cfg.NextProtos) != 1 || cfg.NextProtos[0] != ALPN {
		t.Errorf("NextProtos = %v, want [%s]", cfg.NextProtos, ALPN)
	}
}
