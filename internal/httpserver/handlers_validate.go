package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/Phonebooth/jesse"
	"github.com/Phonebooth/jesse/codec"
	"github.com/Phonebooth/jesse/jesseerrors"
	"github.com/Phonebooth/jesse/validator"
)

type validateRequest struct {
	Data      json.RawMessage `json:"data"`
	Schema    json.RawMessage `json:"schema,omitempty"`
	SchemaKey string          `json:"schema_key,omitempty"`
	Draft     string          `json:"draft,omitempty"`
	FailFast  bool            `json:"fail_fast,omitempty"`
}

type validateIssue struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type validateResponse struct {
	Valid      bool            `json:"valid"`
	ErrorCount int             `json:"error_count"`
	Errors     []validateIssue `json:"errors,omitempty"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("reading request body: %w", err))
		return
	}

	var req validateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	if len(req.Data) == 0 {
		s.writeError(w, http.StatusBadRequest, errors.New("data must be provided"))
		return
	}
	if (len(req.Schema) == 0) == (req.SchemaKey == "") {
		s.writeError(w, http.StatusBadRequest, errors.New("exactly one of schema or schema_key must be provided"))
		return
	}

	value, err := codec.UnmarshalJSON(req.Data)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("parsing data: %w", err))
		return
	}

	mode := validator.CollectAll
	if req.FailFast {
		mode = validator.FailFast
	}
	opts := []validator.Option{
		validator.WithStore(s.st),
		validator.WithErrorMode(mode),
	}
	if req.Draft != "" {
		d, derr := validator.ParseDraft(req.Draft)
		if derr != nil {
			s.writeError(w, http.StatusBadRequest, derr)
			return
		}
		opts = append(opts, validator.WithDefaultDraft(d))
	}
	v, err := validator.New(opts...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	if req.SchemaKey != "" {
		schema, gerr := s.st.Get(req.SchemaKey)
		if gerr != nil {
			s.writeError(w, http.StatusNotFound, gerr)
			return
		}
		err = v.Validate(value, schema)
	} else {
		schema, perr := codec.UnmarshalJSON(req.Schema)
		if perr != nil {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("parsing schema: %w", perr))
			return
		}
		err = v.Validate(value, schema)
	}
	if err == nil {
		s.writeJSON(w, http.StatusOK, validateResponse{Valid: true})
		return
	}

	var (
		list   jesseerrors.DataErrors
		single *jesseerrors.DataError
	)
	switch {
	case errors.As(err, &list):
		resp := validateResponse{ErrorCount: len(list), Errors: make([]validateIssue, 0, len(list))}
		for _, e := range list {
			resp.Errors = append(resp.Errors, validateIssue{
				Path:    e.Path,
				Kind:    string(e.Kind),
				Message: e.Message,
			})
		}
		s.writeJSON(w, http.StatusOK, resp)
	case errors.As(err, &single):
		s.writeJSON(w, http.StatusOK, validateResponse{
			ErrorCount: 1,
			Errors: []validateIssue{{
				Path:    single.Path,
				Kind:    string(single.Kind),
				Message: single.Message,
			}},
		})
	default:
		// a schema fault or resource limit: the document was never judged
		s.writeError(w, http.StatusUnprocessableEntity, err)
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Schemas int    `json:"schemas"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: jesse.Version(),
		Schemas: s.st.Len(),
	})
}
