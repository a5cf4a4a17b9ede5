// Package quicmcp carries MCP JSON-RPC sessions over a single QUIC stream,
// newline-delimited, one message per line. The client sends a four-byte
// magic immediately after opening the stream so an ALPN mixup is caught
// before any JSON is parsed.
package quicmcp

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// ALPN is the protocol identifier negotiated for MCP sessions.
	ALPN = "ivsd-mcp-v1"
	// Magic opens every MCP stream.
	Magic = "IVS1"

	DefaultIdleTimeout = 5 * time.Minute
	DefaultKeepAlive   = 30 * time.Second
)

// Stream-level error codes.
const (
	StreamErrProtocolConfusion quic.StreamErrorCode = 0x02
)

// Connection-level error codes.
const (
	ConnErrNone              quic.ApplicationErrorCode = 0x00
	ConnErrUnsupportedALPN   quic.ApplicationErrorCode = 0x01
	ConnErrProtocolViolation quic.ApplicationErrorCode = 0x03
)

var (
	ErrBadMagic        = errors.New("invalid stream magic: expected " + Magic)
	ErrUnsupportedALPN = errors.New("ALPN negotiation failed: " + ALPN + " not selected")
)

// QUICConfig returns the transport tuning shared by server and client.
func QUICConfig() *quic.Config {
	return &quic.Config{
		MaxStreamReceiveWindow:     10 * 1024 * 1024,
		MaxConnectionReceiveWindow: 50 * 1024 * 1024,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// ReadMagic consumes and validates the stream magic on the server side.
func ReadMagic(r io.Reader) error {
	buf := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("read stream magic: %w", err)
	}
	if !bytes.Equal(buf, []byte(Magic)) {
		return fmt.Errorf("%w: got %q", ErrBadMagic, string(buf))
	}
	return nil
}

// WriteMagic sends the stream magic; the client calls this right after
// opening its stream.
func WriteMagic(w io.Writer) error {
	if _, err := w.Write([]byte(Magic)); err != nil {
		return fmt.Errorf("write stream magic: %w", err)
	}
	return nil
}

// ServerTLSConfig loads a production cert/key pair with the MCP ALPN.
func ServerTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{ALPN},
		MinVersion:   tls.VersionTLS13,
	}, nil
}

// SelfSignedTLSConfig generates an ECDSA P-256 localhost cert for development.
func SelfSignedTLSConfig() (*tls.Config, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, _ := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{Organization: []string{"ivsd dev"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:     []string{"localhost"},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}

	return &tls.Config{
		Certificates: []tls.Certificate{{
			Certificate: [][]byte{certDER},
			PrivateKey:  key,
		}},
		NextProtos: []string{ALPN},
		MinVersion: tls.VersionTLS13,
	}, nil
}

// ClientTLSConfig returns the client-side TLS config. insecure skips
// certificate verification for self-signed development servers.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPN},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}
