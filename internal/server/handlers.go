package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/archdraw/pkg/arch"
	"github.com/matzehuels/archdraw/pkg/buildinfo"
	"github.com/matzehuels/archdraw/pkg/drawio"
	"github.com/matzehuels/archdraw/pkg/errors"
	"github.com/matzehuels/archdraw/pkg/geom"
	recordio "github.com/matzehuels/archdraw/pkg/io"
	"github.com/matzehuels/archdraw/pkg/pipeline"
	"github.com/matzehuels/archdraw/pkg/storage"
)

const documentContentType = "application/xml; charset=utf-8"

// Response headers set on rendered documents.
const (
	headerCache     = "X-Archdraw-Cache"
	headerCrossings = "X-Archdraw-Crossings"
	headerWarnings  = "X-Archdraw-Warnings"
)

// renderRequest is the body of /v1/layout, /v1/render, and POST /v1/diagrams.
type renderRequest struct {
	Records arch.Diagram     `json:"records"`
	Options pipeline.Options `json:"options"`
}

type layoutResponse struct {
	Rects     map[string]geom.Rect `json:"rects"`
	Crossings int                  `json:"crossings"`
	Warnings  []arch.Warning       `json:"warnings"`
	Cached    bool                 `json:"cached"`
}

// mergeRequest carries two encoded documents. Offset overrides the default
// placement right of the base.
type mergeRequest struct {
	Base       string      `json:"base"`
	Addition   string      `json:"addition"`
	Offset     *geom.Point `json:"offset,omitempty"`
	Compressed bool        `json:"compressed,omitempty"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) error {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
	return nil
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) error {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	result, err := s.runner.Layout(r.Context(), req.Records, req.Options)
	if err != nil {
		return err
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []arch.Warning{}
	}
	writeJSON(s.logger, w, http.StatusOK, layoutResponse{
		Rects:     result.Rects,
		Crossings: result.Crossings,
		Warnings:  warnings,
		Cached:    result.CacheInfo.LayoutHit,
	})
	return nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) error {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	result, err := s.runner.Render(r.Context(), req.Records, req.Options)
	if err != nil {
		return err
	}

	cache := "miss"
	if result.CacheInfo.DocumentHit {
		cache = "hit"
	}
	w.Header().Set(headerCache, cache)
	w.Header().Set(headerCrossings, strconv.Itoa(result.Crossings))
	w.Header().Set(headerWarnings, strconv.Itoa(len(result.Warnings)))
	writeDocument(w, http.StatusOK, result.Data)
	return nil
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) error {
	var req mergeRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	base, err := drawio.Unmarshal([]byte(req.Base))
	if err != nil {
		return err
	}
	addition, err := drawio.Unmarshal([]byte(req.Addition))
	if err != nil {
		return err
	}

	var opts []drawio.MergeOption
	if req.Offset != nil {
		opts = append(opts, drawio.WithOffset(req.Offset.X, req.Offset.Y))
	}
	merged := s.runner.Merge(r.Context(), base, addition, opts...)

	encode := pipeline.Options{Compressed: req.Compressed}
	data, err := encode.Encode(merged)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode merged document")
	}
	writeDocument(w, http.StatusOK, data)
	return nil
}

// handleReconstruct reads a raw document body and answers with records in
// the format named by ?format= (json by default).
func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) error {
	format := recordio.FormatJSON
	if name := r.URL.Query().Get("format"); name != "" {
		f, err := recordio.ParseFormat(name)
		if err != nil {
			return err
		}
		format = f
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	doc, err := drawio.Unmarshal(body)
	if err != nil {
		return err
	}
	d := s.runner.Reconstruct(r.Context(), doc)

	var buf bytes.Buffer
	if err := recordio.WriteRecords(d, &buf, format); err != nil {
		return err
	}
	w.Header().Set("Content-Type", recordsContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func (s *Server) requireStore() error {
	if s.store == nil {
		return errors.New(errors.ErrCodeUnavailable, "diagram storage is not configured")
	}
	return nil
}

func (s *Server) handleSaveDiagram(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}
	result, err := s.runner.Render(r.Context(), req.Records, req.Options)
	if err != nil {
		return err
	}

	entry := storage.NewEntry(result.Forest.Title, result.Data, req.Options.Compressed)
	entry.Cells = result.Stats.CellCount
	if records, err := json.Marshal(req.Records); err == nil {
		entry.Records = records
	}
	if err := s.store.Save(r.Context(), entry); err != nil {
		return err
	}
	w.Header().Set("Location", "/v1/diagrams/"+entry.ID)
	writeJSON(s.logger, w, http.StatusCreated, entry.Summary())
	return nil
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer")
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		return err
	}
	if list == nil {
		list = []storage.Summary{}
	}
	writeJSON(s.logger, w, http.StatusOK, list)
	return nil
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	entry, err := s.store.Get(r.Context(), id)
	if err != nil {
		return err
	}
	writeDocument(w, http.StatusOK, entry.Document)
	return nil
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	id := chi.URLParam(r, "id")
	if err := errors.ValidateID(id); err != nil {
		return err
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func writeDocument(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", documentContentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func recordsContentType(f recordio.Format) string {
	switch f {
	case recordio.FormatYAML:
		return "application/yaml; charset=utf-8"
	case recordio.FormatTOML:
		return "application/toml; charset=utf-8"
	default:
		return "application/json; charset=utf-8"
	}
}
