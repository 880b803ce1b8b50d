package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/overflow"
	"github.com/matzehuels/overflow/pkg/resize"
	"github.com/matzehuels/overflow/pkg/scenario"
	"github.com/matzehuels/overflow/pkg/turn"
)

// sessionBacklog is the task buffer of a session's loop.
const sessionBacklog = 16

// session is a live engine owned by one client.
//
// The engine runs on the session's own turn.Loop. Requests are serialised
// by mu and each one is a turn: its work and everything it deferred finish
// before the state is read back.
type session struct {
	mu      sync.Mutex
	id      string
	created time.Time
	axis    overflow.Axis

	m    *overflow.Manager
	loop *turn.Loop
	stop context.CancelFunc
	src  *resize.Source
	obs  *resize.Observer

	capacity      float64
	nextOrder     int
	notifications int
}

// sessionState is the JSON view of a session.
type sessionState struct {
	ID            string                         `json:"id"`
	Created       time.Time                      `json:"created"`
	Capacity      float64                        `json:"capacity"`
	Visible       []string                       `json:"visible"`
	Hidden        []string                       `json:"hidden"`
	Groups        map[string]overflow.GroupState `json:"groups,omitempty"`
	Notifications int                            `json:"notifications"`
}

// newSession starts an engine configured like sc and registers its items.
// Steps are not applied.
func newSession(ctx context.Context, sc *scenario.Scenario) (*session, error) {
	axis, _ := overflow.ParseAxis(sc.Axis)
	runCtx, stop := context.WithCancel(context.Background())
	sess := &session{
		id:       uuid.NewString(),
		created:  time.Now().UTC(),
		axis:     axis,
		loop:     turn.NewLoop(sessionBacklog),
		stop:     stop,
		src:      resize.NewSource(),
		capacity: sc.Capacity,
	}
	go func() { _ = sess.loop.Run(runCtx) }()

	sess.m = overflow.New(func(overflow.Update) { sess.notifications++ },
		overflow.WithScheduler(sess.loop))

	err := sess.loop.Do(ctx, func() {
		sess.m.Observe(scenario.Extent(axis, sc.Capacity), sc.ObserveOptions()...)
		sess.obs = resize.Observe(sess.src, sess.m, sess.loop)
		sess.addItems(sc.Items)
	})
	if err != nil {
		stop()
		return nil, err
	}
	return sess, nil
}

func (sess *session) addItems(specs []scenario.ItemSpec) {
	items := scenario.Items(&scenario.Scenario{Items: specs})
	for i := range items {
		items[i].Order = sess.nextOrder
		sess.nextOrder++
	}
	sess.m.AddItems(items...)
}

func (sess *session) state() sessionState {
	u := sess.m.Snapshot()
	st := sessionState{
		ID:            sess.id,
		Created:       sess.created,
		Capacity:      sess.capacity,
		Visible:       u.VisibleIDs(),
		Hidden:        u.HiddenIDs(),
		Notifications: sess.notifications,
	}
	if len(u.GroupVisibility) > 0 {
		st.Groups = u.GroupVisibility
	}
	return st
}

// do runs fn as one turn on the session loop and returns the resulting
// state. The state is read in a later turn so that size reports posted by
// fn are applied first.
func (sess *session) do(ctx context.Context, fn func()) (sessionState, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if fn != nil {
		if err := sess.loop.Do(ctx, fn); err != nil {
			return sessionState{}, err
		}
	}
	var st sessionState
	err := sess.loop.Do(ctx, func() { st = sess.state() })
	return st, err
}

// close disconnects the engine and stops the loop.
func (sess *session) close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	_ = sess.obs.Close()
	_ = sess.loop.Do(context.Background(), func() {})
	sess.stop()
	<-sess.loop.Done()
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if err := decodeJSON(w, r, &sc); err != nil {
		s.writeError(w, err)
		return
	}
	if err := sc.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	sess, err := newSession(r.Context(), &sc)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.do(r.Context(), nil)
	if err != nil {
		sess.close()
		s.writeError(w, err)
		return
	}
	s.sessions.Store(sess.id, sess)
	s.logger.Info("session created", "id", sess.id, "items", len(sc.Items))

	w.Header().Set("Location", "/v1/sessions/"+sess.id)
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) session(r *http.Request) (*session, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidID, "invalid session id %q", id)
	}
	sess, ok := s.sessions.Load(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, nil)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, loaded := s.sessions.LoadAndDelete(sess.id); loaded {
		sess.close()
	}
	w.WriteHeader(http.StatusNoContent)
}

type addItemsRequest struct {
	Items []scenario.ItemSpec `json:"items"`
}

func (s *Server) handleAddItems(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req addItemsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	check := scenario.Scenario{Items: req.Items}
	if err := check.Validate(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeState(w, r, sess, func() { sess.addItems(req.Items) })
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	itemID := chi.URLParam(r, "itemID")
	s.writeState(w, r, sess, func() { sess.m.RemoveItem(itemID) })
}

type resizeRequest struct {
	Capacity float64 `json:"capacity"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req resizeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Capacity < 0 {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "capacity must not be negative"))
		return
	}
	s.writeState(w, r, sess, func() {
		sess.capacity = req.Capacity
		sess.src.Set(scenario.Extent(sess.axis, req.Capacity).Size())
	})
}

// writeState runs fn on sess and responds with the resulting state.
func (s *Server) writeState(w http.ResponseWriter, r *http.Request, sess *session, fn func()) {
	st, err := sess.do(r.Context(), fn)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Close ends every live session.
func (s *Server) Close() error {
	s.sessions.Range(func(id string, sess *session) bool {
		if _, loaded := s.sessions.LoadAndDelete(id); loaded {
			sess.close()
		}
		return true
	})
	return nil
}
