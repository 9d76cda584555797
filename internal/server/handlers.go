package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vanshika/graphbatch/internal/graph"
	"github.com/vanshika/graphbatch/internal/ngql"
	"github.com/vanshika/graphbatch/internal/schema"
	"github.com/vanshika/graphbatch/internal/service"
)

// APIHandlers exposes HTTP handlers for rendering and ingestion.
type APIHandlers struct {
	logger   *slog.Logger
	ingestor *service.BulkIngestor
	dialect  ngql.Dialect
	batch    ngql.Options
	maxBody  int64
}

// APIOptions configures the handlers.
type APIOptions struct {
	Dialect ngql.Dialect
	Batch   ngql.Options
	// MaxBodyBytes limits request bodies; zero means unlimited.
	MaxBodyBytes int64
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, ingestor *service.BulkIngestor, opts APIOptions) *APIHandlers {
	if opts.Dialect == nil {
		opts.Dialect = ngql.NGQL
	}
	return &APIHandlers{
		logger:   logger,
		ingestor: ingestor,
		dialect:  opts.Dialect,
		batch:    opts.Batch,
		maxBody:  opts.MaxBodyBytes,
	}
}

type renderResponse struct {
	Dialect    string                  `json:"dialect"`
	Groups     []service.RenderedGroup `json:"groups"`
	Statements int                     `json:"statements"`
}

type ingestResponse struct {
	Status string `json:"status"`
	service.Summary
}

type labelResponse struct {
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	KeyPolicy string          `json:"keyPolicy,omitempty"`
	SrcPolicy string          `json:"srcPolicy,omitempty"`
	DstPolicy string          `json:"dstPolicy,omitempty"`
	Fields    []fieldResponse `json:"fields"`
}

type fieldResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type schemaResponse struct {
	Space string          `json:"space"`
	Tags  []labelResponse `json:"tags"`
	Edges []labelResponse `json:"edges"`
}

// handleRender renders a dataset without touching the graph. With
// ?format=text the statements are returned as a plain script, one per line.
func (h *APIHandlers) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ds, err := h.decodeDataset(w, r)
	if err != nil {
		writeError(w, statusForDecode(err), err.Error())
		return
	}

	groups, err := service.Render(h.ingestor.Catalog(), h.dialect, ds, ngql.WithOptions(h.batch))
	if err != nil {
		h.logger.Warn("render failed", "error", err, "kind", ngql.ErrorKind(err))
		writeError(w, statusFor(err), err.Error())
		return
	}
	stmts := service.Statements(groups)

	if strings.EqualFold(r.URL.Query().Get("format"), "text") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		for _, stmt := range stmts {
			_, _ = io.WriteString(w, stmt+ngql.StatementSeparator+"\n")
		}
		return
	}

	respondJSON(w, http.StatusOK, renderResponse{
		Dialect:    h.dialect.Name(),
		Groups:     groups,
		Statements: len(stmts),
	})
}

func (h *APIHandlers) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	ds, err := h.decodeDataset(w, r)
	if err != nil {
		writeError(w, statusForDecode(err), err.Error())
		return
	}

	summary, err := h.ingestor.Ingest(r.Context(), ds)
	h.respondIngest(w, summary, err)
}

func (h *APIHandlers) handleVertices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload []service.VertexInput
	if err := h.decodeJSON(w, r, &payload); err != nil {
		writeError(w, statusForDecode(err), err.Error())
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "at least one vertex is required")
		return
	}

	summary, err := h.ingestor.IngestVertices(r.Context(), payload)
	h.respondIngest(w, summary, err)
}

func (h *APIHandlers) handleEdges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload []service.EdgeInput
	if err := h.decodeJSON(w, r, &payload); err != nil {
		writeError(w, statusForDecode(err), err.Error())
		return
	}
	if len(payload) == 0 {
		writeError(w, http.StatusBadRequest, "at least one edge is required")
		return
	}

	summary, err := h.ingestor.IngestEdges(r.Context(), payload)
	h.respondIngest(w, summary, err)
}

func (h *APIHandlers) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	cat := h.ingestor.Catalog()
	response := schemaResponse{
		Space: cat.Space(),
		Tags:  []labelResponse{},
		Edges: []labelResponse{},
	}
	for _, d := range cat.Tags() {
		response.Tags = append(response.Tags, describeLabel(d))
	}
	for _, d := range cat.Edges() {
		response.Edges = append(response.Edges, describeLabel(d))
	}
	respondJSON(w, http.StatusOK, response)
}

func (h *APIHandlers) respondIngest(w http.ResponseWriter, summary service.Summary, err error) {
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("ingest failed", "error", err, "vertices", summary.Vertices, "edges", summary.Edges)
		}
		writeError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, ingestResponse{Status: "ok", Summary: summary})
}

func describeLabel(d *schema.Descriptor) labelResponse {
	out := labelResponse{
		Name:   d.Name(),
		Kind:   d.Kind().String(),
		Fields: make([]fieldResponse, 0, d.NumFields()),
	}
	if d.IsEdge() {
		out.SrcPolicy = d.SrcPolicy().String()
		out.DstPolicy = d.DstPolicy().String()
	} else {
		out.KeyPolicy = d.KeyPolicy().String()
	}
	for _, field := range d.Fields() {
		t, _ := d.Type(field)
		out.Fields = append(out.Fields, fieldResponse{Name: field, Type: t.String()})
	}
	return out
}

// statusFor maps rendering and input errors to 4xx and graph failures to 502.
func statusFor(err error) int {
	var execErr *graph.ExecutionError
	switch {
	case errors.Is(err, service.ErrUnknownLabel),
		ngql.ErrorKind(err) != "other":
		return http.StatusBadRequest
	case errors.As(err, &execErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func statusForDecode(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

func (h *APIHandlers) decodeDataset(w http.ResponseWriter, r *http.Request) (service.Dataset, error) {
	if r.Body == nil {
		return service.Dataset{}, errors.New("request body is required")
	}
	defer r.Body.Close()
	return service.DecodeDataset(h.limit(w, r))
}

func (h *APIHandlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(h.limit(w, r))
	decoder.UseNumber()
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func (h *APIHandlers) limit(w http.ResponseWriter, r *http.Request) io.Reader {
	if h.maxBody <= 0 {
		return r.Body
	}
	return http.MaxBytesReader(w, r.Body, h.maxBody)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
