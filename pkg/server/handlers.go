package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"

	verrors "github.com/vango-dev/varint/internal/errors"
	"github.com/vango-dev/varint/pkg/varint"
)

// DecodeResponse is the body of a successful decode.
type DecodeResponse struct {
	Kind     string        `json:"kind"`
	Values   []json.Number `json:"values"`
	Consumed int           `json:"consumed"`
}

// SizeResponse is the body of a size query.
type SizeResponse struct {
	Kind  string      `json:"kind"`
	Value json.Number `json:"value"`
	Size  int         `json:"size"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "ok\n")
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var out []byte
	for _, field := range strings.Fields(string(body)) {
		before := len(out)
		var err error
		if out, err = kind.AppendText(out, field); err != nil {
			s.obs.Record("write", kind, 0, err)
			s.writeError(w, r, http.StatusBadRequest, verrors.FromDecode(err, kind))
			return
		}
		s.obs.Record("write", kind, len(out)-before, nil)
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(out)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	resp := DecodeResponse{Kind: kind.String(), Values: []json.Number{}}
	for resp.Consumed < len(body) {
		text, n, err := kind.DecodeText(body[resp.Consumed:])
		s.obs.Record("read", kind, n, err)
		if err != nil {
			s.writeError(w, r, http.StatusUnprocessableEntity,
				verrors.FromDecode(err, kind).WithOffset(resp.Consumed))
			return
		}
		resp.Values = append(resp.Values, json.Number(text))
		resp.Consumed += n
	}
	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSize(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	value := chi.URLParam(r, "value")
	n, err := kind.RequiredSpaceText(value)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, verrors.FromDecode(err, kind))
		return
	}
	s.writeJSON(w, r, http.StatusOK, SizeResponse{
		Kind:  kind.String(),
		Value: json.Number(strings.TrimSpace(value)),
		Size:  n,
	})
}

func (s *Server) kindParam(w http.ResponseWriter, r *http.Request) (varint.Kind, bool) {
	kind, err := varint.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, verrors.FromDecode(err, kind))
		return 0, false
	}
	return kind, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge,
				verrors.New(verrors.CodeIO).WithDetail("The request body exceeds the configured limit.").Wrap(err))
			return nil, false
		}
		s.writeError(w, r, http.StatusBadRequest, verrors.New(verrors.CodeIO).Wrap(err))
		return nil, false
	}
	return body, true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err *verrors.Error) {
	s.logger.DebugContext(r.Context(), "request failed",
		"path", r.URL.Path,
		"status", status,
		"code", err.Code,
		"error", err.FormatCompact(),
	)
	s.writeJSON(w, r, status, map[string]any{"error": err})
}
