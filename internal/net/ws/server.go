package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"chosenoffset.com/roam/internal/controller"
	"chosenoffset.com/roam/internal/input"
)

const (
	maxMessageSize  = 4096
	shutdownTimeout = 5 * time.Second
)

// Server exposes the driver over HTTP and websockets.
type Server struct {
	driver   *controller.Driver
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
	router   *mux.Router

	// SendInterval broadcasts every Nth tick.
	SendInterval uint64
}

// NewServer creates a server for a driver. Frames reach the hub through
// ObserveFrame.
func NewServer(driver *controller.Driver, hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		driver: driver,
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		SendInterval: 1,
	}

	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWebsocket).Methods(http.MethodGet)
	router.HandleFunc("/landmarks", s.handleLandmarks).Methods(http.MethodGet)
	router.HandleFunc("/frame", s.handleFrame).Methods(http.MethodGet)
	router.HandleFunc("/sections/{id}", s.handleShow).Methods(http.MethodPost)
	s.router = router
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ObserveFrame forwards a tick frame to the clients every SendInterval ticks.
func (s *Server) ObserveFrame(f controller.Frame) {
	interval := s.SendInterval
	if interval == 0 {
		interval = 1
	}
	if f.Tick%interval == 0 {
		s.hub.BroadcastFrame(f)
	}
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("Feed shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("Feed listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve feed: %w", err)
	}
	return nil
}

func (s *Server) handleLandmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewLandmarks(s.driver.Engine().Landmarks()))
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.driver.Last())
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !s.driver.Overlay().Show(id) {
		writeJSON(w, http.StatusNotFound, errorMessage{Ver: ProtocolVersion, Type: TypeError, Message: "unknown section " + id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(uuid.NewString(), conn)
	s.hub.add(c)
	go c.writePump()
	defer s.hub.remove(c.id)

	var sink input.Sink
	release := s.driver.Sampler().Subscribe(input.FuncSource(func(k input.Sink) func() {
		sink = k
		return nil
	}))
	defer release()

	welcome := welcomeMessage{
		Ver:       ProtocolVersion,
		Type:      TypeWelcome,
		ClientID:  c.id,
		Boundary:  s.driver.Boundary(),
		Landmarks: viewLandmarks(s.driver.Engine().Landmarks()),
		Frame:     s.driver.Last(),
	}
	if !s.send(c.id, welcome) {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Debug("Discarding malformed message", zap.String("client", c.id), zap.Error(err))
			continue
		}
		s.dispatch(c.id, sink, msg)
	}
}

func (s *Server) dispatch(clientID string, sink input.Sink, msg clientMessage) {
	ov := s.driver.Overlay()
	switch msg.Type {
	case TypeKeyDown:
		if msg.Key != "" {
			sink.Press(msg.Key)
		}
	case TypeKeyUp:
		if msg.Key != "" {
			sink.Release(msg.Key)
		}
	case TypeShow:
		if !ov.Show(msg.ID) {
			s.send(clientID, errorMessage{Ver: ProtocolVersion, Type: TypeError, Message: "unknown section " + msg.ID})
		}
	case TypeClose:
		ov.Close()
	case TypeOpenGallery:
		ov.OpenGallery()
	case TypeCloseGallery:
		ov.CloseGallery()
	default:
		s.logger.Debug("Unknown message type", zap.String("client", clientID), zap.String("type", msg.Type))
	}
}

func (s *Server) send(clientID string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("Failed to marshal message", zap.String("client", clientID), zap.Error(err))
		return false
	}
	return s.hub.sendTo(clientID, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
