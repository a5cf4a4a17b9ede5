package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"

	"github.com/glyphlab/ivsd/pkg/api"
	"github.com/glyphlab/ivsd/pkg/chassis"
	"github.com/glyphlab/ivsd/pkg/ivd"
	"github.com/glyphlab/ivsd/pkg/rewrite"
)

type config struct {
	Addr          string   `yaml:"addr"`
	DataDir       string   `yaml:"data_dir"`
	SequencesFile string   `yaml:"sequences_file"`
	OldStyleFile  string   `yaml:"oldstyle_file"`
	Collections   []string `yaml:"collections"`
	Interchange   string   `yaml:"interchange"`
	CertFile      string   `yaml:"cert_file"`
	KeyFile       string   `yaml:"key_file"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "annotate", "tex", "untex", "oldstyle", "scan":
		cmdFilter(os.Args[1], os.Args[2:])
	case "tools":
		cmdTools(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ivsd <command>

Commands:
  serve      Start the HTTP + QUIC server
  import     Download data files from their published sources
  annotate   Annotate or verify the character at a position (stdin -> stdout)
  tex        Rewrite variation sequences to \CID{n} escapes (stdin -> stdout)
  untex      Rewrite \CID{n} escapes back to sequences (stdin -> stdout)
  oldstyle   Substitute old-style variants (stdin -> stdout)
  scan       Find the first non-member ideograph (stdin)
  tools      List MCP tools of a remote ivsd over QUIC
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg := loadConfig(*cfgPath, logger)

	reg, oldStyle, eng := loadTables(cfg, logger)
	logger.Info("tables loaded",
		"bases", reg.Len(),
		"sequences", reg.TotalSequences(),
		"old_style", len(oldStyle),
	)

	mcpSrv := server.NewMCPServer("ivsd", "1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	api.RegisterMCPTools(mcpSrv, reg, eng)

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Handler:   api.NewRouter(reg, oldStyle, eng),
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("chassis init failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx := context.Background()
	srv.Stop(shutdownCtx)
}

// loadTables builds the three registries. A missing source file is fatal:
// without it there is nothing to serve.
func loadTables(cfg config, logger *slog.Logger) (*ivd.Registry, ivd.OldStyle, *rewrite.Engine) {
	reg, err := ivd.LoadRegistry(filepath.Join(cfg.DataDir, cfg.SequencesFile))
	if err != nil {
		logger.Error("failed to load sequences table", "error", err)
		os.Exit(1)
	}
	oldStyle, err := ivd.LoadOldStyle(filepath.Join(cfg.DataDir, cfg.OldStyleFile))
	if err != nil {
		logger.Error("failed to load old-style table", "error", err)
		os.Exit(1)
	}
	eng := rewrite.New(reg, oldStyle, &rewrite.Options{
		Collections: cfg.Collections,
		Interchange: cfg.Interchange,
	})
	return reg, oldStyle, eng
}

func loadConfig(path string, logger *slog.Logger) config {
	cfg := config{
		Addr:          ":8423",
		DataDir:       "data",
		SequencesFile: "IVD_Sequences.txt",
		OldStyleFile:  "oldstyle.txt",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("no config file, using defaults", "path", path)
			return cfg
		}
		logger.Error("read config", "error", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Error("parse config", "error", err)
		os.Exit(1)
	}
	return cfg
}
