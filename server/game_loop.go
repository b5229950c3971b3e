package main

import (
	"context"
	"sync"
	"time"
)

// Tick executes a single fixed-duration simulation step. Intent writes
// and snapshot reads wait for it to finish.
func (r *Room) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()

	dt := r.cfg.World.TickDuration()
	now := r.now()

	// 1. Drop humans that stopped sending input, before they can collide
	r.expireInactive(now)

	// 2. Bots decide aim and boost
	r.updateBots()

	// 3. Voluntary splits requested since the last tick
	for _, a := range r.living() {
		if a.SplitRequested {
			a.SplitRequested = false
			splitAgent(a, r.rng, r.cfg)
		}
	}

	// 4. Movement, clamping, knockback, decay and boost cost
	for _, a := range r.living() {
		stepPhysics(a, dt, r.cfg)
	}

	// 5. Pellets, then a single top-up
	r.eatPellets()

	// 6. Virus pops and bounces
	r.hitViruses()

	// 7. Player-vs-player engulfment
	r.resolveEngulfment()

	// 8. Growth may have pushed blobs past the wall
	for _, a := range r.living() {
		for _, b := range a.Blobs {
			b.Pos = clampToWorld(b.Pos, b.Radius, r.cfg.World.Size)
		}
	}

	// 9. Dead bots come straight back
	r.respawnBots()

	if r.humanCount() > 0 {
		r.lastOccupied = now
	}
	r.tick++
	r.clock += dt
}

// expireInactive removes humans whose last input is older than the
// inactivity timeout (caller must hold mu.Lock)
func (r *Room) expireInactive(now time.Time) {
	timeout := r.cfg.Players.InactivityTimeout
	if timeout <= 0 {
		return
	}
	var stale []string
	for _, id := range r.order {
		a := r.agents[id]
		if !a.IsBot && now.Sub(a.LastInput) > timeout {
			stale = append(stale, id)
		}
	}
	for _, id := range stale {
		r.removeAgent(id)
		r.log.Info("player timed out", "id", id)
	}
}

// Run drives every room at the configured tick rate until ctx is done.
// A slow tick delays the next one; missed ticks are dropped, not replayed.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(m.cfg.World.TickRate))
	defer ticker.Stop()

	var sweep <-chan time.Time
	if m.cfg.Server.RoomSweepInterval > 0 {
		sweeper := time.NewTicker(m.cfg.Server.RoomSweepInterval)
		defer sweeper.Stop()
		sweep = sweeper.C
	}

	m.log.Info("game loop started", "tickRate", m.cfg.World.TickRate)
	for {
		select {
		case <-ctx.Done():
			m.log.Info("game loop stopped")
			return
		case <-ticker.C:
			m.TickAll()
		case <-sweep:
			m.ExpireIdle()
		}
	}
}

// TickAll advances every room once. Rooms share no state, so they tick
// concurrently; each room's own lock keeps its tick exclusive.
func (m *Manager) TickAll() {
	rooms := m.snapshotRooms()
	var wg sync.WaitGroup
	wg.Add(len(rooms))
	for _, r := range rooms {
		go func(r *Room) {
			defer wg.Done()
			r.Tick()
		}(r)
	}
	wg.Wait()
}
