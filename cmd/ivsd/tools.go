package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/glyphlab/ivsd/pkg/quicmcp"
)

// cmdTools connects to a running ivsd over QUIC and lists its MCP tools.
func cmdTools(args []string) {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8423", "server address")
	insecure := fs.Bool("insecure", true, "skip TLS verification (self-signed dev servers)")
	fs.Parse(args)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := quicmcp.NewClient(*addr, quicmcp.ClientTLSConfig(*insecure))
	if err := c.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer c.Close()

	result, err := c.ListTools(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list tools: %v\n", err)
		os.Exit(1)
	}

	for _, tool := range result.Tools {
		fmt.Printf("%-18s  %s\n", tool.Name, tool.Description)
	}
}
