package api

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/glyphlab/ivsd/pkg/ivd"
	"github.com/glyphlab/ivsd/pkg/kit"
	"github.com/glyphlab/ivsd/pkg/rewrite"
)

// RegisterMCPTools registers the ivsd MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, reg *ivd.Registry, eng *rewrite.Engine) {
	wrap := logErrors(slog.Default())
	registerAnnotate(srv, eng, wrap)
	registerSpanTool(srv, "tex_export",
		"Rewrite registered interchange-collection variation sequences in the text to \\CID{n} TeX escapes.",
		wrap(spanEndpoint(eng.ExportTeX)))
	registerSpanTool(srv, "tex_import",
		"Rewrite \\CID{n} TeX escapes in the text back to their registered variation sequences. Unknown codes are left untouched.",
		wrap(spanEndpoint(eng.ImportTeX)))
	registerSpanTool(srv, "oldstyle_text",
		"Substitute old-style historical variants for registered characters in the text. Ambiguous forms come back bracketed.",
		wrap(spanEndpoint(eng.OldStyle)))
	registerScan(srv, eng, wrap)
	registerLookup(srv, reg, wrap)
}

func registerAnnotate(srv *server.MCPServer, eng *rewrite.Engine, wrap kit.Middleware) {
	tool := mcp.NewTool("annotate_text",
		mcp.WithDescription("Attach or verify a variation selector for the character at a byte position. An already-valid sequence is reported, not modified; otherwise the character is replaced by a bracketed display of all registered variations."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text containing the character")),
		mcp.WithNumber("pos", mcp.Description("Byte offset of the character (default 0)")),
	)

	kit.RegisterMCPTool(srv, tool, wrap(annotateEndpoint(eng)), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		text, _ := args["text"].(string)
		pos, _ := args["pos"].(float64)
		return &annotateReq{Text: text, Pos: int(pos)}, nil
	})
}

func registerSpanTool(srv *server.MCPServer, name, description string, ep kit.Endpoint) {
	tool := mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text span to transform")),
	)

	kit.RegisterMCPTool(srv, tool, ep, func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		text, _ := args["text"].(string)
		return &spanReq{Text: text}, nil
	})
}

func registerScan(srv *server.MCPServer, eng *rewrite.Engine, wrap kit.Middleware) {
	tool := mcp.NewTool("scan_nonmember",
		mcp.WithDescription("Find the first ideograph in the text with no variation sequence in the interchange collection. Returns the byte offset just past it."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The text to scan")),
		mcp.WithNumber("from", mcp.Description("Byte offset to start from (default 0)")),
		mcp.WithNumber("bound", mcp.Description("Byte offset to stop at (default end of text)")),
	)

	kit.RegisterMCPTool(srv, tool, wrap(scanEndpoint(eng)), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		text, _ := args["text"].(string)
		from, _ := args["from"].(float64)
		bound, _ := args["bound"].(float64)
		return &scanReq{Text: text, From: int(from), Bound: int(bound)}, nil
	})
}

func registerLookup(srv *server.MCPServer, reg *ivd.Registry, wrap kit.Middleware) {
	tool := mcp.NewTool("lookup_sequences",
		mcp.WithDescription("List every registered variation sequence for a single character, with collection and name."),
		mcp.WithString("char", mcp.Required(), mcp.Description("A single character")),
	)

	kit.RegisterMCPTool(srv, tool, wrap(lookupEndpoint(reg)), func(req mcp.CallToolRequest) (any, error) {
		args := req.GetArguments()
		char, _ := args["char"].(string)
		return &lookupReq{Char: char}, nil
	})
}
