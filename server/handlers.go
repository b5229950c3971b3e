package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const contentTypeMsgpack = "application/x-msgpack"

// Server is the HTTP and websocket surface around the room manager.
type Server struct {
	rooms *Manager
	cfg   *Config
	log   *log.Logger
}

func NewServer(rooms *Manager, cfg *Config, logger *log.Logger) *Server {
	return &Server{rooms: rooms, cfg: cfg, log: logger}
}

// Router wires every route onto a gorilla/mux router.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(corsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms", s.handleListRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", s.handleJoin).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/{code}/input", s.handleInput).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/{code}/state", s.handleState).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/players/{id}", s.handleLeave).Methods(http.MethodDelete, http.MethodOptions)

	r.HandleFunc(WebSocketPath, s.handleWebSocket)

	if s.cfg.Server.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.cfg.Server.StaticDir)))
	}
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	maxPlayers := s.cfg.Rooms.MaxPlayers.Default
	if req.MaxPlayers != nil {
		maxPlayers = *req.MaxPlayers
	}
	botCount := s.cfg.Rooms.Bots.Default
	if req.BotCount != nil {
		botCount = *req.BotCount
	}

	room, err := s.rooms.CreateRoom(maxPlayers, botCount)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateRoomResponse{
		Code:       room.Code,
		MaxPlayers: room.MaxPlayers,
		BotCount:   room.BotCount,
	})
}

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.rooms.List())
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(mux.Vars(r)["code"])
	if err != nil {
		writeErr(w, err)
		return
	}
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	res, err := room.Join(req.Name, req.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(mux.Vars(r)["code"])
	if err != nil {
		writeErr(w, err)
		return
	}
	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ok := room.SubmitInput(req.ID, req.X, req.Y, req.Boost, req.Split)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": ok})
}

// handleState serves the latest snapshot as JSON, or msgpack when the
// client asks for it.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(mux.Vars(r)["code"])
	if err != nil {
		writeErr(w, err)
		return
	}
	snap := room.Snapshot()
	if strings.Contains(r.Header.Get("Accept"), contentTypeMsgpack) {
		data, err := msgpack.Marshal(&snap)
		if err != nil {
			s.log.Error("encode snapshot", "room", room.Code, "err", err)
			writeError(w, http.StatusInternalServerError, "encode failed")
			return
		}
		w.Header().Set("Content-Type", contentTypeMsgpack)
		_, _ = w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	room, err := s.rooms.Get(vars["code"])
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := room.Leave(vars["id"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRoomFull):
		return http.StatusConflict
	case errors.Is(err, ErrTooManyRooms):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
