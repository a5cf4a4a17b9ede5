package api

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/runenames"

	"github.com/glyphlab/ivsd/pkg/ivd"
	"github.com/glyphlab/ivsd/pkg/kit"
	"github.com/glyphlab/ivsd/pkg/rewrite"
)

// Shared request/response types used by both HTTP and MCP transports.

type annotateReq struct {
	Text string
	Pos  int
}

type spanReq struct {
	Text string
}

type scanReq struct {
	Text  string
	From  int
	Bound int
}

type lookupReq struct {
	Char string
}

type annotateResponse struct {
	Text         string                `json:"text"`
	Replacements []rewrite.Replacement `json:"replacements"`
	Notes        []rewrite.Note        `json:"notes,omitempty"`
}

type spanResponse struct {
	Text         string                `json:"text"`
	Replacements []rewrite.Replacement `json:"replacements"`
}

type scanResponse struct {
	Pos   int  `json:"pos"`
	Found bool `json:"found"`
}

type sequenceInfo struct {
	Selector   string `json:"selector"`
	Collection string `json:"collection"`
	Name       string `json:"name"`
	Sequence   string `json:"sequence"`
}

type lookupResponse struct {
	Char      string         `json:"char"`
	CharName  string         `json:"char_name"`
	Sequences []sequenceInfo `json:"sequences"`
}

type collectionsResponse struct {
	Collections []string `json:"collections"`
	Interchange string   `json:"interchange"`
}

func annotateEndpoint(eng *rewrite.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*annotateReq)
		if req.Pos < 0 || req.Pos >= len(req.Text) {
			return nil, fmt.Errorf("pos %d out of range [0,%d)", req.Pos, len(req.Text))
		}
		reps, notes := eng.Annotate(req.Text, req.Pos)
		return annotateResponse{
			Text:         rewrite.Apply(req.Text, reps),
			Replacements: emptyIfNil(reps),
			Notes:        notes,
		}, nil
	}
}

func spanEndpoint(op func(string) []rewrite.Replacement) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*spanReq)
		reps := op(req.Text)
		return spanResponse{
			Text:         rewrite.Apply(req.Text, reps),
			Replacements: emptyIfNil(reps),
		}, nil
	}
}

func scanEndpoint(eng *rewrite.Engine) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*scanReq)
		if req.From < 0 || req.Bound < 0 {
			return nil, fmt.Errorf("scan range [%d,%d) out of range", req.From, req.Bound)
		}
		bound := req.Bound
		if bound == 0 {
			bound = len(req.Text)
		}
		pos, found := eng.NextNonMember(req.Text, req.From, bound)
		return scanResponse{Pos: pos, Found: found}, nil
	}
}

func lookupEndpoint(reg *ivd.Registry) kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*lookupReq)
		base, size := utf8.DecodeRuneInString(req.Char)
		if size == 0 || base == utf8.RuneError {
			return nil, fmt.Errorf("char must be a single UTF-8 character")
		}

		resp := lookupResponse{
			Char:      string(base),
			CharName:  runenames.Name(base),
			Sequences: []sequenceInfo{},
		}
		seqs, _ := reg.Lookup(base)
		for _, s := range seqs {
			resp.Sequences = append(resp.Sequences, sequenceInfo{
				Selector:   fmt.Sprintf("%04X", s.Selector),
				Collection: s.Collection,
				Name:       s.Name,
				Sequence:   s.Render(base),
			})
		}
		return resp, nil
	}
}

func collectionsEndpoint(reg *ivd.Registry, eng *rewrite.Engine) kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return collectionsResponse{
			Collections: reg.Collections(),
			Interchange: eng.Interchange(),
		}, nil
	}
}

func emptyIfNil(reps []rewrite.Replacement) []rewrite.Replacement {
	if reps == nil {
		return []rewrite.Replacement{}
	}
	return reps
}
