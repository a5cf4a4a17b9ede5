package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/glyphlab/ivsd/pkg/rewrite"
)

// cmdFilter runs one transform over stdin and writes the result to stdout.
// The whole input is the span; verification notes and scan results go to
// stderr so the output stays pipeable.
func cmdFilter(name string, args []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	pos := fs.Int("pos", 0, "byte offset of the character (annotate only)")
	from := fs.Int("from", 0, "byte offset to scan from (scan only)")
	bound := fs.Int("bound", 0, "byte offset to stop at, 0 = end of input (scan only)")
	fs.Parse(args)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg := loadConfig(*cfgPath, logger)
	_, _, eng := loadTables(cfg, logger)

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		os.Exit(1)
	}
	text := string(input)

	switch name {
	case "annotate":
		reps, notes := eng.Annotate(text, *pos)
		for _, n := range notes {
			fmt.Fprintf(os.Stderr, "%s: %s\n", n.Collection, n.Name)
		}
		os.Stdout.WriteString(rewrite.Apply(text, reps))
	case "tex":
		os.Stdout.WriteString(rewrite.Apply(text, eng.ExportTeX(text)))
	case "untex":
		os.Stdout.WriteString(rewrite.Apply(text, eng.ImportTeX(text)))
	case "oldstyle":
		os.Stdout.WriteString(rewrite.Apply(text, eng.OldStyle(text)))
	case "scan":
		limit := *bound
		if limit == 0 {
			limit = len(text)
		}
		if at, found := eng.NextNonMember(text, *from, limit); found {
			fmt.Println(at)
		} else {
			fmt.Fprintln(os.Stderr, "no non-member character found")
			os.Exit(1)
		}
	}
}
