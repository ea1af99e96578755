package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/gridpath/pkg/buildinfo"
	"github.com/matzehuels/gridpath/pkg/errors"
	"github.com/matzehuels/gridpath/pkg/graph"
	"github.com/matzehuels/gridpath/pkg/grid"
	"github.com/matzehuels/gridpath/pkg/heuristic"
	"github.com/matzehuels/gridpath/pkg/render"
	"github.com/matzehuels/gridpath/pkg/search"
	"github.com/matzehuels/gridpath/pkg/session"
)

// =============================================================================
// Wire Types
// =============================================================================

type createRunRequest struct {
	Graph     *graph.Document `json:"graph,omitempty"`
	Grid      *grid.Config    `json:"grid,omitempty"`
	Start     string          `json:"start,omitempty"`
	Goal      string          `json:"goal,omitempty"`
	Algorithm string          `json:"algorithm,omitempty"`
	Heuristic string          `json:"heuristic,omitempty"`
}

type runResponse struct {
	ID          string    `json:"id"`
	Algorithm   string    `json:"algorithm"`
	Heuristic   string    `json:"heuristic,omitempty"`
	Start       string    `json:"start"`
	Goal        string    `json:"goal"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
	Seed        int64     `json:"seed,omitempty"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type snapshotResponse struct {
	ID         string                        `json:"id"`
	Outcome    search.Outcome                `json:"outcome"`
	Checkpoint search.Checkpoint             `json:"checkpoint"`
	Current    graph.Node                    `json:"current,omitempty"`
	Categories map[graph.Node]search.Category `json:"categories"`
	Path       []graph.Node                  `json:"path"`
	Cost       *float64                      `json:"cost"`
	Stats      search.Stats                  `json:"stats"`
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) createRun(w http.ResponseWriter, r *http.Request) {
	defaults := s.cfg.Grid
	req := createRunRequest{Grid: &defaults}

	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	g, start, goal, seed, err := s.buildGraph(req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sc, err := s.cfg.Search()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Algorithm != "" {
		if sc.Algorithm, err = search.ParseAlgorithm(req.Algorithm); err != nil {
			s.writeError(w, err)
			return
		}
	}
	if req.Heuristic != "" {
		if sc.Heuristic, err = heuristic.ParseType(req.Heuristic); err != nil {
			s.writeError(w, err)
			return
		}
	}

	solver, err := search.New(sc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	run, err := solver.Solve(g, start, goal)
	if err != nil {
		s.writeError(w, err)
		return
	}

	sess := session.New(g, run, s.cfg.Server.SessionTTL.Duration)
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, sessionError(err))
		return
	}

	resp := runResponse{
		ID:          sess.ID,
		Algorithm:   sc.Algorithm.String(),
		Start:       string(start),
		Goal:        string(goal),
		Nodes:       g.Len(),
		Connections: g.ConnectionCount(),
		Seed:        seed,
		ExpiresAt:   sess.ExpiresAt(),
	}
	if sc.Algorithm == search.AlgorithmAStar {
		resp.Heuristic = sc.Heuristic.String()
	}
	s.logger.Debug("run created", "id", sess.ID, "algorithm", resp.Algorithm, "nodes", resp.Nodes)
	writeJSON(w, http.StatusCreated, resp)
}

// buildGraph resolves the graph and endpoints of a create request. A posted
// document takes precedence over grid settings; generated grids default to
// their corners.
func (s *Server) buildGraph(req createRunRequest) (*graph.Graph, graph.Node, graph.Node, int64, error) {
	start, goal := graph.Node(req.Start), graph.Node(req.Goal)

	if req.Graph != nil {
		g, err := req.Graph.ToGraph()
		if err != nil {
			return nil, "", "", 0, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph document")
		}
		if g.Len() > 0 && (start == "" || goal == "") {
			return nil, "", "", 0, errors.New(errors.ErrCodeInvalidInput, "start and goal are required with a posted graph")
		}
		return g, start, goal, 0, nil
	}

	gr, err := grid.Generate(*req.Grid)
	if err != nil {
		return nil, "", "", 0, err
	}
	first, last := gr.Corners()
	if start == "" {
		start = first
	}
	if goal == "" {
		goal = last
	}
	return gr.Graph, start, goal, gr.Seed, nil
}

func (s *Server) stepRun(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r.URL.Query().Get("count"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var resp snapshotResponse
	sess.Do(func(run *search.Run) {
		for i := 0; i < count && !run.Done(); i++ {
			run.Step()
		}
		resp = snapshotOf(sess.ID, run)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var resp snapshotResponse
	sess.Do(func(run *search.Run) {
		resp = snapshotOf(sess.ID, run)
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, graph.FromGraph(sess.Graph))
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var snap search.Snapshot
	sess.Do(func(run *search.Run) { snap = run.Snapshot() })

	dot := render.ToDOT(sess.Graph, &snap, render.Options{Labels: r.URL.Query().Has("labels")})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(dot))
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, sessionError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, sessionError(err))
		return nil, false
	}
	return sess, true
}

func snapshotOf(id string, run *search.Run) snapshotResponse {
	snap := run.Snapshot()
	res := search.ResultOf(run)
	resp := snapshotResponse{
		ID:         id,
		Outcome:    snap.Outcome,
		Checkpoint: snap.Checkpoint,
		Current:    snap.Current,
		Categories: snap.Categories,
		Path:       res.Nodes(),
		Stats:      snap.Stats,
	}
	if resp.Path == nil {
		resp.Path = []graph.Node{}
	}
	if res.Found {
		resp.Cost = &res.Cost
	}
	return resp
}

func parseCount(raw string) (int, error) {
	switch raw {
	case "":
		return 1, nil
	case "all":
		return maxStepsPerCall, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "count must be a positive integer or \"all\", got %q", raw)
	}
	return min(n, maxStepsPerCall), nil
}

func sessionError(err error) error {
	switch {
	case stderrors.Is(err, session.ErrNotFound):
		return errors.Wrap(errors.ErrCodeSessionNotFound, err, "unknown run")
	case stderrors.Is(err, session.ErrExpired):
		return errors.Wrap(errors.ErrCodeSessionExpired, err, "run expired")
	case stderrors.Is(err, session.ErrFull):
		return errors.Wrap(errors.ErrCodeUnavailable, err, "too many live runs")
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "session store")
	}
}

func statusOf(err error) int {
	code := errors.GetCode(err)
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case code == errors.ErrCodeSessionNotFound, code == errors.ErrCodeSessionExpired, code == errors.ErrCodeNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.Describe(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		msg = errors.UserMessage(err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
