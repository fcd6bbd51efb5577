package gallery

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/example/pixelpad/assets"
	"github.com/gorilla/websocket"
)

// MaxUploadBytes bounds POST bodies.
const MaxUploadBytes = 32 << 20

const faviconSize = 32

// SaveRequest is the body of POST /api/drawings.
type SaveRequest struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
	// PNG is the base64 encoded image.
	PNG string `json:"png"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes a FileStore as a JSON API with a websocket change feed.
type Server struct {
	store    *FileStore
	mux      *http.ServeMux
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	cancel  func()
}

type client struct {
	addr string
	send chan Event
	done chan struct{}

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// attach hands the upgraded connection to c. It reports false, closing
// conn, when c was dropped during the handshake.
func (c *client) attach(conn *websocket.Conn) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		conn.Close()
		return false
	}
	c.conn = conn
	return true
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
}

// NewServer builds the handler for store and starts relaying its events.
func NewServer(store *FileStore) *Server {
	s := &Server{
		store:   store,
		mux:     http.NewServeMux(),
		clients: map[*client]struct{}{},
	}
	s.mux.HandleFunc("GET /api/drawings", s.handleList)
	s.mux.HandleFunc("POST /api/drawings", s.handleSave)
	s.mux.HandleFunc("GET /api/drawings/{file}", s.handleImage)
	s.mux.HandleFunc("DELETE /api/drawings/{id}", s.handleDelete)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /favicon.png", s.handleIcon)
	s.cancel = store.Subscribe(s.broadcast)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.mux.ServeHTTP(w, r) }

// Serve listens on l until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	srv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}
	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("gallery server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops relaying events and disconnects every websocket client.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	clients := s.clients
	s.clients = map[*client]struct{}{}
	s.mu.Unlock()

	s.cancel()
	for c := range clients {
		c.close()
	}
}

func (s *Server) broadcast(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- e:
		default:
			log.Printf("gallery: dropping slow event client %s", c.addr)
			delete(s.clients, c)
			go c.close()
		}
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.URL.Query()["tag"]...)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json: " + err.Error()})
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.PNG)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid base64: " + err.Error()})
		return
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid png: " + err.Error()})
		return
	}
	d, err := s.store.Save(req.Name, req.Tags, img)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		d, err := s.store.Get(r.PathValue("file"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, d)
		return
	}
	path, err := s.store.ImagePath(id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	data, err := assets.IconPNG(faviconSize)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=86400")
	w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEvents registers the client before upgrading so that no event
// published after the handshake completes is missed.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	c := &client{addr: r.RemoteAddr, send: make(chan Event, 16), done: make(chan struct{})}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		http.Error(w, "server closing", http.StatusServiceUnavailable)
		return
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("gallery: websocket upgrade: %v", err)
		s.drop(c)
		return
	}
	if !c.attach(conn) {
		return
	}

	go s.readLoop(c)
	s.writeLoop(c)
}

// readLoop discards client messages and notices disconnects.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(c *client) {
	defer s.drop(c)
	for {
		select {
		case <-c.done:
			return
		case e := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(e); err != nil {
				return
			}
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidTag):
		status = http.StatusBadRequest
	default:
		log.Printf("gallery: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("gallery: encode response: %v", err)
	}
}
