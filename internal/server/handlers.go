package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/dialogtree/pkg/dialogue"
	"github.com/matzehuels/dialogtree/pkg/editor"
	"github.com/matzehuels/dialogtree/pkg/errors"
	"github.com/matzehuels/dialogtree/pkg/render/nodelink"
)

// =============================================================================
// State and history
// =============================================================================

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	data, err := dialogue.Marshal(s.ed.State())
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

type historyResponse struct {
	Changed bool               `json:"changed"`
	History editor.HistoryInfo `json:"history"`
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.ed.History())
}

func (s *Server) undo(w http.ResponseWriter, r *http.Request) {
	ok := s.ed.Undo(r.Context())
	s.respondJSON(w, http.StatusOK, historyResponse{Changed: ok, History: s.ed.History()})
}

func (s *Server) redo(w http.ResponseWriter, r *http.Request) {
	ok := s.ed.Redo(r.Context())
	s.respondJSON(w, http.StatusOK, historyResponse{Changed: ok, History: s.ed.History()})
}

// =============================================================================
// Characters
// =============================================================================

type createCharacterRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type characterResponse struct {
	Changed   bool                `json:"changed"`
	Character *dialogue.Character `json:"character,omitempty"`
}

func (s *Server) createCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := optionalColor(req.Color); err != nil {
		s.respondError(w, err)
		return
	}
	c, ok := s.ed.CreateCharacter(r.Context(), req.Name, req.Color)
	s.respondJSON(w, http.StatusOK, characterResponse{Changed: ok, Character: c})
}

// getCharacter returns one character, giving an empty dialogue its starting
// node first as opening it in the editor does.
func (s *Server) getCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	if s.ed.EnsureStart(r.Context(), c.ID) {
		if c, err = s.ed.Character(c.ID); err != nil {
			s.respondError(w, err)
			return
		}
	}
	s.respondJSON(w, http.StatusOK, c)
}

type editCharacterRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) editCharacter(w http.ResponseWriter, r *http.Request) {
	var req editCharacterRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.EditCharacterInfo(r.Context(), c.ID, req.Name, req.Icon)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

type positionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (s *Server) moveCharacter(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := positionError(req.X, req.Y); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.MoveCharacter(r.Context(), c.ID, *req.X, *req.Y)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

type recolorRequest struct {
	IDs   []string `json:"ids"`
	Color string   `json:"color"`
}

func (s *Server) recolorCharacters(w http.ResponseWriter, r *http.Request) {
	var req recolorRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := optionalColor(req.Color); err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.RecolorCharacters(r.Context(), req.IDs, req.Color)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) deleteCharacters(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := requireIDs(req.IDs); err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.DeleteCharacters(r.Context(), req.IDs)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

// =============================================================================
// Nodes
// =============================================================================

type createNodeRequest struct {
	From     string `json:"from"`
	Label    string `json:"label"`
	Seed     string `json:"seed"`
	FullText string `json:"fullText"`
	Notes    string `json:"notes"`
	Color    string `json:"color"`

	// X and Y place the node; both or neither. Without them a root goes to
	// the default root position and an option to the right of "from".
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func (req createNodeRequest) position() (x, y float64, ok bool, err error) {
	if req.X == nil && req.Y == nil {
		return 0, 0, false, nil
	}
	if req.X == nil || req.Y == nil {
		return 0, 0, false, errors.New(errors.ErrCodeInvalidInput, "x and y must be given together")
	}
	if err := errors.ValidatePosition(*req.X, *req.Y); err != nil {
		return 0, 0, false, err
	}
	return *req.X, *req.Y, true, nil
}

type nodeResponse struct {
	Changed    bool                 `json:"changed"`
	Node       *dialogue.Node       `json:"node,omitempty"`
	Connection *dialogue.Connection `json:"connection,omitempty"`
}

// createNode adds a root node, or an option after "from" when it is set.
// With x and y the node is placed there in the same edit.
func (s *Server) createNode(w http.ResponseWriter, r *http.Request) {
	var req createNodeRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := optionalColor(req.Color); err != nil {
		s.respondError(w, err)
		return
	}
	x, y, placed, err := req.position()
	if err != nil {
		s.respondError(w, err)
		return
	}

	var c *dialogue.Character
	if req.From == "" {
		c, err = s.character(r)
	} else {
		c, err = s.node(r, req.From)
	}
	if err != nil {
		s.respondError(w, err)
		return
	}

	if req.From == "" {
		var (
			n  dialogue.Node
			ok bool
		)
		if placed {
			n, ok = s.ed.CreateNode(r.Context(), c.ID, req.Seed, x, y, req.FullText, req.Notes, req.Color)
		} else {
			n, ok = s.ed.CreateRoot(r.Context(), c.ID, req.FullText, req.Notes, req.Color)
		}
		resp := nodeResponse{Changed: ok}
		if ok {
			resp.Node = &n
		}
		s.respondJSON(w, http.StatusOK, resp)
		return
	}

	var (
		n    dialogue.Node
		conn dialogue.Connection
		ok   bool
	)
	if placed {
		n, conn, ok = s.ed.CreateOptionAt(r.Context(), c.ID, req.From, req.Label, x, y, req.FullText, req.Notes, req.Color)
	} else {
		n, conn, ok = s.ed.CreateOption(r.Context(), c.ID, req.From, req.Label, req.FullText, req.Notes, req.Color)
	}
	resp := nodeResponse{Changed: ok}
	if ok {
		resp.Node, resp.Connection = &n, &conn
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type editNodeRequest struct {
	FullText string `json:"fullText"`
	Notes    string `json:"notes"`
}

func (s *Server) editNode(w http.ResponseWriter, r *http.Request) {
	var req editNodeRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.node(r, "")
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.EditNodeText(r.Context(), c.ID, chi.URLParam(r, "nodeID"), req.FullText, req.Notes)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := positionError(req.X, req.Y); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.node(r, "")
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.MoveNode(r.Context(), c.ID, chi.URLParam(r, "nodeID"), *req.X, *req.Y)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

func (s *Server) recolorNodes(w http.ResponseWriter, r *http.Request) {
	var req recolorRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := optionalColor(req.Color); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.RecolorNodes(r.Context(), c.ID, req.IDs, req.Color)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

func (s *Server) deleteNodes(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := requireIDs(req.IDs); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.DeleteNodes(r.Context(), c.ID, req.IDs)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

// =============================================================================
// Connections
// =============================================================================

type connectRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

type connectResponse struct {
	Result     string               `json:"result"`
	Changed    bool                 `json:"changed"`
	Connection *dialogue.Connection `json:"connection,omitempty"`
}

// connect completes a drag gesture. A cancelled gesture is not an error:
// the client follows up by creating an option node instead.
func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.node(r, req.From)
	if err != nil {
		s.respondError(w, err)
		return
	}
	res, conn := s.ed.ConnectNodes(r.Context(), c.ID, req.From, req.To, req.Label)
	resp := connectResponse{Result: res.String(), Changed: res == editor.ConnectCreated}
	if resp.Changed {
		resp.Connection = &conn
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type labelRequest struct {
	Text string `json:"text"`
}

func (s *Server) editLabel(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	i, err := connectionIndex(r, c)
	if err != nil {
		s.respondError(w, err)
		return
	}
	ok := s.ed.EditConnectionLabel(r.Context(), c.ID, i, req.Text)
	s.respondJSON(w, http.StatusOK, changedResponse{Changed: ok})
}

type branchRequest struct {
	Color string `json:"color"`
}

type interruptionResponse struct {
	Changed      bool                   `json:"changed"`
	Node         *dialogue.Node         `json:"node,omitempty"`
	Interruption *dialogue.Interruption `json:"interruption,omitempty"`
}

func (s *Server) branch(w http.ResponseWriter, r *http.Request) {
	var req branchRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	if err := optionalColor(req.Color); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.character(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	i, err := connectionIndex(r, c)
	if err != nil {
		s.respondError(w, err)
		return
	}
	n, in, ok := s.ed.BranchConnection(r.Context(), c.ID, i, req.Color)
	resp := interruptionResponse{Changed: ok}
	if ok {
		resp.Node, resp.Interruption = &n, &in
	}
	s.respondJSON(w, http.StatusOK, resp)
}

type interruptRequest struct {
	To string `json:"to"`
}

func (s *Server) interrupt(w http.ResponseWriter, r *http.Request) {
	var req interruptRequest
	if err := decode(w, r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	c, err := s.node(r, req.To)
	if err != nil {
		s.respondError(w, err)
		return
	}
	i, err := connectionIndex(r, c)
	if err != nil {
		s.respondError(w, err)
		return
	}
	in, ok := s.ed.CreateInterruption(r.Context(), c.ID, i, req.To)
	resp := interruptionResponse{Changed: ok}
	if ok {
		resp.Interruption = &in
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Paths and export
// =============================================================================

type pathResponse struct {
	Path []string `json:"path"`
}

func (s *Server) getPath(w http.ResponseWriter, r *http.Request) {
	path, err := s.ed.Path(chi.URLParam(r, "charID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, pathResponse{Path: path})
}

func (s *Server) dot(r *http.Request) (string, error) {
	c, err := s.character(r)
	if err != nil {
		return "", err
	}
	opts := nodelink.Options{
		Highlight: r.URL.Query().Get("highlight"),
		Detailed:  r.URL.Query().Get("detailed") == "true",
	}
	return nodelink.ToDOT(c, opts), nil
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(dot))
}

func (s *Server) getSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.dot(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		s.respondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}
