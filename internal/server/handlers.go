package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/drawkit/pkg/buildinfo"
	"github.com/matzehuels/drawkit/pkg/errors"
	drawio "github.com/matzehuels/drawkit/pkg/io"
	"github.com/matzehuels/drawkit/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := s.Runner.Inspect(r.Context(), data, s.options(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleValidate answers 200 for valid documents and 422 otherwise; the
// report is the body either way.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.Runner.Validate(r.Context(), data, s.options(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if !rep.Valid {
		status = statusFor(errors.New(rep.Code, "%s", rep.Message))
	}
	writeJSON(w, status, rep)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r)
	q := r.URL.Query()
	if v := q.Get("compress"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "compress must be true or false, got %q", v))
			return
		}
		opts.Compression = drawio.CompressionNever.String()
		if on {
			opts.Compression = drawio.CompressionAlways.String()
		}
	}
	if v := q.Get("pretty"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "pretty must be true or false, got %q", v))
			return
		}
		opts.Indent = 0
		if on {
			opts.Indent = 2
		}
	}

	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.Runner.Convert(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// dotContentTypes lists the formats /v1/dot serves. Raster formats need
// rsvg-convert and are left to the CLI.
var dotContentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) handleDot(w http.ResponseWriter, r *http.Request) {
	opts := s.options(r)
	q := r.URL.Query()
	opts.PageID = q.Get("page")
	if v := q.Get("engine"); v != "" {
		if err := pipeline.ValidateEngine(v); err != nil {
			s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "engine"))
			return
		}
		opts.Engine = v
	}
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}
	contentType, ok := dotContentTypes[format]
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "format %q is not served over HTTP", format))
		return
	}
	opts.Formats = []string{format}
	opts.Detailed = q.Has("detailed")
	opts.Colors = q.Has("colors")

	data, err := readBody(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.Runner.Layout(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.Runner.Render(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func readBody(r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return data, nil
}
