package httpserver

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/store"
)

// schemaKey extracts and unescapes the {key} path parameter.
func schemaKey(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "key")
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("invalid schema key %q: %w", raw, err)
	}
	return key, nil
}

func (s *Server) handlePutSchema(w http.ResponseWriter, r *http.Request) {
	key, err := schemaKey(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("reading request body: %w", err))
		return
	}
	doc, err := codec.UnmarshalJSON(body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parsing schema: %w", err))
		return
	}
	if err := s.checker.CheckSchema(doc); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.st.Put(store.Entry{Key: key, Source: key, ModTime: time.Now(), Schema: doc})
	s.logger.Info("schema stored", "key", key)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	key, err := schemaKey(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	schema, err := s.st.Get(key)
	if err != nil {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeJSON(w, http.StatusOK, schema)
}

type listSchemasResponse struct {
	Count int      `json:"count"`
	Keys  []string `json:"keys"`
}

func (s *Server) handleListSchemas(w http.ResponseWriter, _ *http.Request) {
	keys := s.st.Keys()
	if keys == nil {
		keys = []string{}
	}
	s.writeJSON(w, http.StatusOK, listSchemasResponse{Count: len(keys), Keys: keys})
}
