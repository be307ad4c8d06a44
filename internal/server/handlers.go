package server

import (
	"bytes"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/stagegraph/pkg/buildinfo"
	"github.com/matzehuels/stagegraph/pkg/cache"
	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/pipeline"
	"github.com/matzehuels/stagegraph/pkg/route"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// GraphRequest is the body of POST /v1/graph. Document is either a JSON
// workflow object or a string holding JSON or YAML text.
type GraphRequest struct {
	Document     json.RawMessage   `json:"document"`
	Format       workflow.Format   `json:"format,omitempty"`
	Stage        string            `json:"stage,omitempty"`
	Statuses     map[string]string `json:"statuses,omitempty"`
	NoValidation bool              `json:"noValidation,omitempty"`
}

// RouteRequest is the body of POST /v1/route and POST /v1/render.
type RouteRequest struct {
	GraphRequest
	Boxes     layout.MapQuery `json:"boxes,omitempty"`
	Scale     float64         `json:"scale,omitempty"`
	Editable  bool            `json:"editable,omitempty"`
	Collapsed []string        `json:"collapsed,omitempty"`
}

// GraphResponse answers POST /v1/graph.
type GraphResponse struct {
	GraphHash string            `json:"graphHash"`
	Nodes     []*graph.Node     `json:"nodes"`
	Errors    workflow.ErrorMap `json:"errors,omitempty"`
	Cached    bool              `json:"cached"`
}

// RouteResponse answers POST /v1/route.
type RouteResponse struct {
	GraphHash string          `json:"graphHash"`
	Paths     route.Paths     `json:"paths"`
	Boxes     layout.MapQuery `json:"boxes"`
	Drawable  int             `json:"drawable"`
	Cached    bool            `json:"cached"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

var contentTypes = map[string]string{
	pipeline.FormatJSON:     "application/json",
	pipeline.FormatSVG:      "image/svg+xml",
	pipeline.FormatGraphviz: "image/svg+xml",
	pipeline.FormatDOT:      "text/vnd.graphviz",
	pipeline.FormatPNG:      "image/png",
	pipeline.FormatPDF:      "application/pdf",
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var req GraphRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req, RouteRequest{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	built, hit, err := s.runner.BuildWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	hash, _ := cache.HashJSON(built)
	s.writeJSON(w, http.StatusOK, GraphResponse{
		GraphHash: hash,
		Nodes:     built.Nodes,
		Errors:    built.Errors,
		Cached:    hit,
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req RouteRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.GraphRequest, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	built, err := s.runner.BuildState(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	routed, hit, err := s.runner.RouteWithCacheInfo(r.Context(), built, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	hash, _ := cache.HashJSON(built)
	s.writeJSON(w, http.StatusOK, RouteResponse{
		GraphHash: hash,
		Paths:     routed.Paths,
		Boxes:     routed.Boxes,
		Drawable:  routed.Paths.Drawable(),
		Cached:    hit,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}

	var req RouteRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.GraphRequest, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Formats = []string{format}
	opts.Title = r.URL.Query().Get("title")

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// options converts a request into pipeline options using the server's
// geometry and spacing.
func (s *Server) options(g GraphRequest, rt RouteRequest) (pipeline.Options, error) {
	doc, err := documentBytes(g.Document)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Input:        doc,
		Format:       g.Format,
		Stage:        g.Stage,
		Statuses:     g.Statuses,
		NoValidation: g.NoValidation,
		Boxes:        rt.Boxes,
		Scale:        rt.Scale,
		Editable:     rt.Editable,
		Collapsed:    rt.Collapsed,
		Spacing:      s.spacing,
		Geometry:     s.geometry,
		Logger:       s.logger,
	}, nil
}

// documentBytes unwraps a string document and passes objects through.
func documentBytes(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is required")
	}
	if raw[0] != '"' {
		return raw, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "document string")
	}
	return []byte(text), nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", "err", err)
	}
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
	s.writeJSON(w, status, ErrorResponse{Code: string(code), Message: errors.UserMessage(err)})
}
