package main

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Room is one independent game instance. All simulation state is guarded
// by mu: Tick and the intent writers take the write lock, snapshots take
// the read lock, so readers only ever see settled ticks.
type Room struct {
	Code       string
	MaxPlayers int
	BotCount   int

	mu      sync.RWMutex
	cfg     *Config
	log     *log.Logger
	rng     *rand.Rand
	now     func() time.Time
	tick    uint64
	clock   float64 // simulated seconds
	agents  map[string]*Agent
	order   []string // agent IDs in join order; iteration over agents uses this
	pellets []*Pellet
	viruses []*Virus
	grid    *SpatialGrid

	lastOccupied time.Time // last time a human was present
}

// newRoom builds a room with its pellets, viruses and bots in place.
func newRoom(code string, maxPlayers, botCount int, cfg *Config, logger *log.Logger, now func() time.Time) *Room {
	r := &Room{
		Code:       code,
		MaxPlayers: maxPlayers,
		BotCount:   botCount,
		cfg:        cfg,
		log:        logger.With("room", code),
		rng:        newRoomRNG(code),
		now:        now,
		agents:     make(map[string]*Agent),
		grid:       NewSpatialGrid(gridCellSize(cfg)),
	}
	r.lastOccupied = now()
	r.refillPellets()
	for i := 0; i < cfg.World.VirusCount; i++ {
		r.viruses = append(r.viruses, newVirus(r.rng, cfg.World))
	}
	for i := 0; i < botCount; i++ {
		r.addAgent(spawnAgent(botID(i), botName(i), true, r.rng, cfg))
	}
	return r
}

// gridCellSize sizes pellet cells around a typical blob so a query
// touches only a handful of cells.
func gridCellSize(cfg *Config) float64 {
	return 4 * cfg.Blob.HumanStartRadius
}

// addAgent registers a new agent (caller must hold mu.Lock)
func (r *Room) addAgent(a *Agent) {
	if _, exists := r.agents[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.agents[a.ID] = a
}

// removeAgent drops an agent entirely (caller must hold mu.Lock)
func (r *Room) removeAgent(id string) {
	if _, ok := r.agents[id]; !ok {
		return
	}
	delete(r.agents, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// living returns the living agents in join order (caller must hold mu)
func (r *Room) living() []*Agent {
	out := make([]*Agent, 0, len(r.order))
	for _, id := range r.order {
		if a := r.agents[id]; a != nil && a.Alive() {
			out = append(out, a)
		}
	}
	return out
}

func (r *Room) humanCount() int {
	n := 0
	for _, a := range r.agents {
		if !a.IsBot {
			n++
		}
	}
	return n
}

// Join adds a human agent. An identity that already belongs to a dead
// human of this room respawns that human in place, while a living one is
// returned as is. An empty or bot-owned identity is replaced with a
// fresh one.
func (r *Room) Join(name, id string) (JoinResult, error) {
	name = cleanName(name, r.cfg.Players.NameMaxLen)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.agents[id]
	if id == "" || (exists && existing.IsBot) {
		id = uuid.New().String()
		exists = false
	}
	if exists && existing.Alive() {
		existing.LastInput = r.now()
		return existing.joinResult(r.cfg.World.Size), nil
	}
	if !exists && r.humanCount() >= r.MaxPlayers {
		return JoinResult{}, ErrRoomFull
	}

	a := spawnAgent(id, name, false, r.rng, r.cfg)
	a.LastInput = r.now()
	r.addAgent(a)
	r.lastOccupied = a.LastInput
	r.log.Info("player joined", "id", id, "name", name, "rejoin", exists)

	return a.joinResult(r.cfg.World.Size), nil
}

func cleanName(name string, maxLen int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Player"
	}
	if maxLen > 0 {
		if runes := []rune(name); len(runes) > maxLen {
			name = string(runes[:maxLen])
		}
	}
	return name
}

// Leave removes a human agent. Bots cannot be removed.
func (r *Room) Leave(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok || a.IsBot {
		return ErrAgentNotFound
	}
	r.removeAgent(id)
	r.log.Info("player left", "id", id)
	return nil
}

// SubmitInput records an agent's intent for the next tick. The aim is
// normalized (zero when too short). It reports false for unknown, bot or
// dead agents; that is an expected outcome, not an error.
func (r *Room) SubmitInput(id string, aimX, aimY float64, boost, split bool) bool {
	aim := normalize(r2.Vec{X: aimX, Y: aimY})

	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.agents[id]
	if !ok || a.IsBot || !a.Alive() {
		return false
	}
	a.Aim = aim
	a.Boost = boost
	// A split request stays latched until a tick consumes it.
	a.SplitRequested = a.SplitRequested || split
	a.LastInput = r.now()
	return true
}

// Snapshot returns the state of the last completed tick.
func (r *Room) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Code:      r.Code,
		Tick:      r.tick,
		Clock:     r.clock,
		WorldSize: r.cfg.World.Size,
		Pellets:   make([]PelletDTO, len(r.pellets)),
		Viruses:   make([]VirusDTO, len(r.viruses)),
		Agents:    []AgentDTO{},
	}
	for i, p := range r.pellets {
		snap.Pellets[i] = p.ToDTO()
	}
	for i, v := range r.viruses {
		snap.Viruses[i] = v.ToDTO()
	}
	for _, a := range r.living() {
		snap.Agents = append(snap.Agents, a.ToDTO())
	}
	snap.Leaderboard = r.leaderboard()
	return snap
}

// leaderboard returns the top living agents by mass (caller must hold mu)
func (r *Room) leaderboard() []LeaderboardEntry {
	agents := r.living()
	mass := make(map[string]float64, len(agents))
	for _, a := range agents {
		mass[a.ID] = a.TotalMass()
	}
	sort.SliceStable(agents, func(i, j int) bool {
		return mass[agents[i].ID] > mass[agents[j].ID]
	})
	if len(agents) > LeaderboardSize {
		agents = agents[:LeaderboardSize]
	}
	entries := make([]LeaderboardEntry, len(agents))
	for i, a := range agents {
		entries[i] = LeaderboardEntry{ID: a.ID, Name: a.Name, Mass: roundTo1(mass[a.ID])}
	}
	return entries
}

// Info summarizes the room for listings and idle expiry.
func (r *Room) Info() RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	humans := r.humanCount()
	return RoomInfo{
		Code:       r.Code,
		Humans:     humans,
		Bots:       len(r.agents) - humans,
		MaxPlayers: r.MaxPlayers,
		Clock:      r.clock,
	}
}

// idleSince reports when a human was last present, or false if one is
// present right now.
func (r *Room) idleSince() (time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.humanCount() > 0 {
		return time.Time{}, false
	}
	return r.lastOccupied, true
}
