package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	gerrors "github.com/matzehuels/gridder/pkg/errors"
	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
	"github.com/matzehuels/gridder/pkg/pipeline"
)

// GenerateRequest is the body of POST /v1/grids.
type GenerateRequest struct {
	Params    grid.Params `json:"params"`
	Seed      *int64      `json:"seed,omitempty"`
	Tolerance float64     `json:"tolerance,omitempty"`
	Refresh   bool        `json:"refresh,omitempty"`
}

// ListResponse is the body of GET /v1/grids.
type ListResponse struct {
	IDs []string `json:"ids"`
}

func (s *Server) createGrid(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req GenerateRequest
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, gerrors.Wrap(gerrors.ErrCodeMalformedInput, err, "invalid request body"))
		return
	}

	_, doc, err := s.Runner.Generate(r.Context(), pipeline.Options{
		Params:    req.Params,
		Seed:      req.Seed,
		Tolerance: req.Tolerance,
		Refresh:   req.Refresh,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	doc.ID = graph.NewID()
	if err := s.Store.Save(r.Context(), doc); err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Info("stored grid", "id", doc.ID, "vertices", len(doc.Vertices), "edges", len(doc.Edges))

	w.Header().Set("Location", "/v1/grids/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) listGrids(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ListResponse{IDs: ids})
}

func (s *Server) loadGrid(r *http.Request) (graph.Document, error) {
	id := chi.URLParam(r, "id")
	if err := gerrors.ValidateID(id); err != nil {
		return graph.Document{}, err
	}
	return s.Store.Load(r.Context(), id)
}

func (s *Server) getGrid(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadGrid(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) deleteGrid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := gerrors.ValidateID(id); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportGrid(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	doc, err := s.loadGrid(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var data []byte
	if format == pipeline.FormatJSON {
		var buf bytes.Buffer
		if err = graph.WriteDocument(doc, &buf); err == nil {
			data = buf.Bytes()
		}
	} else {
		data, err = s.render(r, doc, format)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) render(r *http.Request, doc graph.Document, format string) ([]byte, error) {
	g, err := graph.ToGrid(doc)
	if err != nil {
		return nil, err
	}
	artifacts, err := s.Runner.Render(r.Context(), g, doc, pipeline.Options{
		Formats: []string{format},
		Labels:  r.URL.Query().Get("labels") == "true",
	})
	if err != nil {
		return nil, err
	}
	return artifacts[format], nil
}
