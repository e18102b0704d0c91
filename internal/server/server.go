// Package server serves the demo model to browsers over websockets.
//
// Cells are not safe for concurrent use, so the server owns them from a
// single loop goroutine. HTTP handlers and websocket readers hand work to the
// loop and wait for it to finish.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/delaneyj/coiled/bind"
	"github.com/delaneyj/coiled/graph"
	"github.com/delaneyj/coiled/internal/demo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var ErrStopped = errors.New("server loop stopped")

const sendBufferSize = 16

type Server struct {
	model    *demo.Model
	gatherer prometheus.Gatherer
	ops      chan func()
	stopped  chan struct{}
	upgrader websocket.Upgrader

	// owned by the loop
	clients map[*client]struct{}
}

// New creates a server for model. gatherer may be nil, in which case
// /metrics is not served.
func New(model *demo.Model, gatherer prometheus.Gatherer) *Server {
	return &Server{
		model:    model,
		gatherer: gatherer,
		ops:      make(chan func()),
		stopped:  make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: map[*client]struct{}{},
	}
}

// Run executes queued work until ctx is done.
func (s *Server) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case <-ctx.Done():
			for c := range s.clients {
				s.drop(c)
			}
			return
		case op := <-s.ops:
			op()
			s.flush()
		}
	}
}

// call runs fn on the loop and waits for it.
func (s *Server) call(fn func()) error {
	done := make(chan struct{})
	select {
	case s.ops <- func() {
		defer close(done)
		fn()
	}:
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-s.stopped:
		return ErrStopped
	}
}

// flush renders every client whose scope was invalidated by the last op.
func (s *Server) flush() {
	for c := range s.clients {
		if c.dirty {
			c.dirty = false
			s.render(c)
		}
	}
}

func (s *Server) render(c *client) {
	view := demo.Render(c.scope, s.model)
	c.push(message{Type: "view", View: &view})
}

func (s *Server) drop(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.scope.Teardown()
	close(c.send)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/state", s.handleState)
	r.Get("/graph.dot", s.handleGraph)
	r.Get("/ws", s.handleWebSocket)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	var view demo.View
	if err := s.call(func() {
		view = demo.Render(nil, s.model)
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(view)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var dot string
	if err := s.call(func() {
		dot = graph.Dot(graph.Collect(s.model.Nodes()...))
	}); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	w.Write([]byte(dot))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{send: make(chan []byte, sendBufferSize)}
	if err := s.call(func() {
		c.scope = bind.NewScope(bind.HostFunc(func() {
			c.dirty = true
		}))
		s.clients[c] = struct{}{}
		s.render(c)
	}); err != nil {
		return
	}

	go c.writeLoop(conn)

	for {
		var cmd command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			break
		}

		var applyErr error
		if err := s.call(func() {
			applyErr = s.apply(cmd)
			if applyErr != nil {
				c.push(message{Type: "error", Error: applyErr.Error()})
			}
		}); err != nil {
			break
		}
		if applyErr != nil {
			log.Printf("websocket command %q: %v", cmd.Op, applyErr)
		}
	}

	s.call(func() {
		s.drop(c)
	})
}

func (s *Server) apply(cmd command) error {
	switch cmd.Op {
	case "inc":
		return s.model.Increment()
	case "dec":
		return s.model.Decrement()
	case "step":
		return s.model.SetStep(cmd.Value)
	case "reset":
		return s.model.Reset()
	default:
		return fmt.Errorf("unknown op %q", cmd.Op)
	}
}
