package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// respondError maps err's code to a status and writes the error body.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	case errors.IsInvalid(err), errors.Is(err, errors.ErrCodeDecodeFailed):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.respondJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errors.UserMessage(err)}})
}

// decode reads a JSON request body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

// character loads the character named by the {charID} URL parameter.
func (s *Server) character(r *http.Request) (*dialogue.Character, error) {
	id := chi.URLParam(r, "charID")
	if err := errors.ValidateID(id, dialogue.CharacterPrefix); err != nil {
		return nil, err
	}
	return s.ed.Character(id)
}

// node loads the character and checks that the {nodeID} parameter (or id,
// when given) names one of its nodes.
func (s *Server) node(r *http.Request, id string) (*dialogue.Character, error) {
	c, err := s.character(r)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = chi.URLParam(r, "nodeID")
	}
	if err := errors.ValidateID(id, dialogue.NodePrefix); err != nil {
		return nil, err
	}
	if c.Dialogue.Node(id) == nil {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "no node %q", id)
	}
	return c, nil
}

// connectionIndex parses {index} and checks it against c's connections.
func connectionIndex(r *http.Request, c *dialogue.Character) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "connection index %q is not a number", raw)
	}
	if i < 0 || i >= len(c.Dialogue.Connections) {
		return 0, errors.New(errors.ErrCodeConnectionNotFound, "no connection at index %d", i)
	}
	return i, nil
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

func optionalColor(color string) error {
	if color == "" {
		return nil
	}
	return errors.ValidateColor(color)
}

func requireIDs(ids []string) error {
	if len(ids) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ids must not be empty")
	}
	return nil
}

func positionError(x, y *float64) error {
	if x == nil || y == nil {
		return errors.New(errors.ErrCodeInvalidInput, "x and y are required")
	}
	if err := errors.ValidatePosition(*x, *y); err != nil {
		return fmt.Errorf("position: %w", err)
	}
	return nil
}
