package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/glyphlab/ivsd/pkg/ivd"
	"github.com/glyphlab/ivsd/pkg/kit"
	"github.com/glyphlab/ivsd/pkg/rewrite"
)

// NewRouter returns an http.Handler with all ivsd API routes.
func NewRouter(reg *ivd.Registry, oldStyle ivd.OldStyle, eng *rewrite.Engine) http.Handler {
	mux := http.NewServeMux()
	wrap := logErrors(slog.Default())
	h := &handler{
		annotate:    wrap(annotateEndpoint(eng)),
		exportTeX:   wrap(spanEndpoint(eng.ExportTeX)),
		importTeX:   wrap(spanEndpoint(eng.ImportTeX)),
		oldStyleOp:  wrap(spanEndpoint(eng.OldStyle)),
		scan:        wrap(scanEndpoint(eng)),
		lookup:      wrap(lookupEndpoint(reg)),
		collections: wrap(collectionsEndpoint(reg, eng)),
		reg:         reg,
		oldStyle:    oldStyle,
	}

	mux.HandleFunc("POST /v1/annotate", h.handleAnnotate)
	mux.HandleFunc("POST /v1/tex/export", h.spanHandler(h.exportTeX))
	mux.HandleFunc("POST /v1/tex/import", h.spanHandler(h.importTeX))
	mux.HandleFunc("POST /v1/oldstyle", h.spanHandler(h.oldStyleOp))
	mux.HandleFunc("POST /v1/scan", h.handleScan)
	mux.HandleFunc("GET /v1/sequences/{char}", h.handleLookup)
	mux.HandleFunc("GET /v1/collections", h.handleCollections)
	mux.HandleFunc("GET /v1/health", h.handleHealth)

	return cors(withRequestID(mux))
}

type handler struct {
	annotate    kit.Endpoint
	exportTeX   kit.Endpoint
	importTeX   kit.Endpoint
	oldStyleOp  kit.Endpoint
	scan        kit.Endpoint
	lookup      kit.Endpoint
	collections kit.Endpoint
	reg         *ivd.Registry
	oldStyle    ivd.OldStyle
}

const maxBodySize = 1 << 20 // 1 MiB per request body

// --- annotate ---

type httpAnnotateRequest struct {
	Text string `json:"text"`
	Pos  int    `json:"pos"`
}

func (h *handler) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req httpAnnotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.annotate(r.Context(), &annotateReq{Text: req.Text, Pos: req.Pos})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- span transforms (export, import, old-style) ---

type httpSpanRequest struct {
	Text string `json:"text"`
}

func (h *handler) spanHandler(ep kit.Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		var req httpSpanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		resp, err := ep(r.Context(), &spanReq{Text: req.Text})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// --- non-member scan ---

type httpScanRequest struct {
	Text  string `json:"text"`
	From  int    `json:"from"`
	Bound int    `json:"bound,omitempty"`
}

func (h *handler) handleScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var req httpScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.scan(r.Context(), &scanReq{Text: req.Text, From: req.From, Bound: req.Bound})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- sequence lookup ---

func (h *handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	char := r.PathValue("char")
	if char == "" {
		writeError(w, http.StatusBadRequest, "missing char")
		return
	}

	resp, err := h.lookup(r.Context(), &lookupReq{Char: char})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- collections ---

func (h *handler) handleCollections(w http.ResponseWriter, r *http.Request) {
	resp, err := h.collections(r.Context(), nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- health ---

type healthResponse struct {
	Status    string `json:"status"`
	Bases     int    `json:"bases"`
	Sequences int    `json:"sequences"`
	OldStyle  int    `json:"old_style"`
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Bases:     h.reg.Len(),
		Sequences: h.reg.TotalSequences(),
		OldStyle:  len(h.oldStyle),
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// withRequestID tags each request with a short random ID, echoed back in the
// X-Request-ID response header and readable downstream via kit.GetRequestID.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := newRequestID()
		ctx := kit.WithRequestID(kit.WithTransport(r.Context(), "http"), id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// logErrors reports endpoint failures with the transport and request ID the
// transport layer attached to the context.
func logErrors(logger *slog.Logger) kit.Middleware {
	return func(next kit.Endpoint) kit.Endpoint {
		return func(ctx context.Context, request any) (any, error) {
			resp, err := next(ctx, request)
			if err != nil {
				logger.Warn("endpoint failed",
					"transport", kit.GetTransport(ctx),
					"request_id", kit.GetRequestID(ctx),
					"error", err,
				)
			}
			return resp, err
		}
	}
}

// cors is a simple CORS middleware for browser-based clients.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
