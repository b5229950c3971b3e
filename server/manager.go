package main

import (
	"crypto/rand"
	"math/big"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Manager owns every live room, keyed by code.
type Manager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   *Config
	log   *log.Logger
	now   func() time.Time
}

func NewManager(cfg *Config, logger *log.Logger) *Manager {
	return &Manager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		log:   logger,
		now:   time.Now,
	}
}

const codeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// CreateRoom clamps the requested sizes, generates a unique code and
// registers a fully populated room.
func (m *Manager) CreateRoom(maxPlayers, botCount int) (*Room, error) {
	maxPlayers = m.cfg.Rooms.MaxPlayers.Clamp(maxPlayers)
	botCount = m.cfg.Rooms.Bots.Clamp(botCount)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cfg.Server.MaxRooms > 0 && len(m.rooms) >= m.cfg.Server.MaxRooms {
		return nil, ErrTooManyRooms
	}
	code := generateCode(RoomCodeLength)
	for {
		if _, exists := m.rooms[code]; !exists {
			break
		}
		code = generateCode(RoomCodeLength)
	}
	r := newRoom(code, maxPlayers, botCount, m.cfg, m.log, m.now)
	m.rooms[code] = r
	m.log.Info("room created", "room", code, "maxPlayers", maxPlayers, "bots", botCount)
	return r, nil
}

func (m *Manager) Get(code string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (m *Manager) Remove(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[code]; !ok {
		return false
	}
	delete(m.rooms, code)
	m.log.Info("room removed", "room", code)
	return true
}

// List returns all active rooms sorted by code.
func (m *Manager) List() []RoomInfo {
	rooms := m.snapshotRooms()
	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// ExpireIdle removes rooms that have had no humans for longer than the
// idle timeout and returns their codes.
func (m *Manager) ExpireIdle() []string {
	timeout := m.cfg.Server.RoomIdleTimeout
	if timeout <= 0 {
		return nil
	}
	now := m.now()
	var expired []string
	for _, r := range m.snapshotRooms() {
		since, idle := r.idleSince()
		if idle && now.Sub(since) > timeout {
			expired = append(expired, r.Code)
		}
	}
	for _, code := range expired {
		m.Remove(code)
	}
	return expired
}

func (m *Manager) snapshotRooms() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		list = append(list, r)
	}
	return list
}

func generateCode(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, _ := rand.Int(rand.Reader, max)
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}
