package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/burrow/pkg/buildinfo"
	"github.com/matzehuels/burrow/pkg/burrow"
	"github.com/matzehuels/burrow/pkg/diagram"
	"github.com/matzehuels/burrow/pkg/errors"
	"github.com/matzehuels/burrow/pkg/history"
	burrowio "github.com/matzehuels/burrow/pkg/io"
	"github.com/matzehuels/burrow/pkg/pipeline"
)

// maxBodyBytes bounds request bodies. Diagrams are limited separately.
const maxBodyBytes = 2 * errors.MaxDiagramSize

// SolveRequest is the body of POST /v1/solve. Exactly one of Diagram and
// Layout must be set; Layout uses the layout file format. Unset Memoize and
// Bound fall back to the server's defaults.
type SolveRequest struct {
	Diagram   string          `json:"diagram,omitempty"`
	Layout    json.RawMessage `json:"layout,omitempty"`
	Unfold    bool            `json:"unfold,omitempty"`
	Memoize   *bool           `json:"memoize,omitempty"`
	Bound     int             `json:"bound,omitempty"`
	TimeoutMS int64           `json:"timeout_ms,omitempty"`
	Refresh   bool            `json:"refresh,omitempty"`
	Formats   []string        `json:"formats,omitempty"`
}

// SolveResponse is the body of a successful POST /v1/solve.
type SolveResponse struct {
	RunID      string            `json:"run_id,omitempty"`
	LayoutHash string            `json:"layout_hash"`
	Diagram    string            `json:"diagram"`
	Cached     bool              `json:"cached"`
	Result     json.RawMessage   `json:"result"`
	Artifacts  map[string]string `json:"artifacts,omitempty"`
}

// RunsResponse is the body of GET /v1/runs.
type RunsResponse struct {
	Runs []*history.Run `json:"runs"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SolveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	opts, err := s.solveOptions(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var res *pipeline.Result
	if len(opts.Formats) > 0 {
		res, err = s.runner.Execute(r.Context(), opts)
	} else {
		res, err = s.runner.Solve(r.Context(), opts)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	var result bytes.Buffer
	if err := burrowio.WriteResultJSON(res.Search, res.Catalog, &result); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode result"))
		return
	}
	resp := SolveResponse{
		RunID:      res.RunID,
		LayoutHash: res.LayoutHash,
		Diagram:    diagram.Format(res.Layout, res.Catalog),
		Cached:     res.CacheInfo.SolveHit,
		Result:     json.RawMessage(bytes.TrimSpace(result.Bytes())),
	}
	if len(res.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(res.Artifacts))
		for format, data := range res.Artifacts {
			resp.Artifacts[format] = string(data)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// solveOptions converts a request into pipeline options. Layouts are
// decoded here so that their symbols resolve against the server catalog.
func (s *Server) solveOptions(req SolveRequest) (pipeline.Options, error) {
	opts := pipeline.Options{
		Diagram: req.Diagram,
		Unfold:  req.Unfold,
		Catalog: s.catalog,
		Memoize: s.memoize,
		Bound:   s.bound,
		Timeout: s.solveTimeout,
		Refresh: req.Refresh,
		Formats: req.Formats,
	}
	if req.Memoize != nil {
		opts.Memoize = *req.Memoize
	}
	if req.Bound != 0 {
		opts.Bound = req.Bound
	}
	if req.TimeoutMS < 0 {
		return opts, errors.New(errors.ErrCodeInvalidInput, "timeout_ms must not be negative")
	}
	if t := time.Duration(req.TimeoutMS) * time.Millisecond; t > 0 && t < opts.Timeout {
		opts.Timeout = t
	}
	if len(req.Layout) > 0 {
		l, err := burrowio.ReadJSON(bytes.NewReader(req.Layout), s.catalog)
		if err != nil {
			return opts, err
		}
		opts.Layout = &l
	}
	return opts, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeBackend, err, "list runs"))
		return
	}
	for _, run := range runs {
		run.Moves = nil
	}
	if runs == nil {
		runs = []*history.Run{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateRunID(id); err != nil {
		s.writeError(w, err)
		return
	}

	run, err := s.store.Get(r.Context(), id)
	if stderrors.Is(err, history.ErrNotFound) {
		s.writeError(w, errors.Wrap(errors.ErrCodeNotFound, err, "run %s", id))
		return
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeBackend, err, "get run"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, ErrorResponse{
		Error:  errors.UserMessage(err),
		Code:   string(code),
		Detail: detail(err),
	})
}

// detail returns the innermost cause's message, which is usually the most
// specific one (for instance the reason a diagram is malformed).
func detail(err error) string {
	var m *burrow.MalformedLayoutError
	if stderrors.As(err, &m) {
		return m.Reason
	}
	for {
		next := stderrors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
