package main

import (
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestNewRoomIsPopulated(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	r, _ := newTestRoom(t, cfg, 8, 5)

	if len(r.pellets) != cfg.World.PelletTarget {
		t.Fatalf("pellets = %d, want %d", len(r.pellets), cfg.World.PelletTarget)
	}
	if len(r.viruses) != cfg.World.VirusCount {
		t.Fatalf("viruses = %d, want %d", len(r.viruses), cfg.World.VirusCount)
	}
	if len(r.agents) != 5 {
		t.Fatalf("agents = %d, want 5 bots", len(r.agents))
	}
	for _, a := range r.agents {
		b := a.Primary()
		inset := cfg.World.SpawnMargin + b.Radius
		if b.Pos.X < inset || b.Pos.X > cfg.World.Size-inset || b.Pos.Y < inset || b.Pos.Y > cfg.World.Size-inset {
			t.Fatalf("bot %s spawned inside the margin: %v", a.ID, b.Pos)
		}
		if b.Mass < cfg.Blob.BotStartMass.Min || b.Mass > cfg.Blob.BotStartMass.Max {
			t.Fatalf("bot mass %v out of range", b.Mass)
		}
	}
}

func TestJoinCapacityAndRejoin(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 2, 3)

	p1, err := r.Join("  alice  ", "")
	if err != nil {
		t.Fatalf("join 1: %v", err)
	}
	if p1.ID == "" || p1.Name != "alice" {
		t.Fatalf("unexpected join result %+v", p1)
	}
	if _, err := r.Join("", "bob-id"); err != nil {
		t.Fatalf("join 2: %v", err)
	}
	if _, err := r.Join("carol", ""); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("join 3 err = %v, want ErrRoomFull", err)
	}

	// rejoining an existing human does not need a free slot
	r.agents[p1.ID].Blobs = nil
	again, err := r.Join("alice", p1.ID)
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if again.ID != p1.ID || !r.agents[p1.ID].Alive() {
		t.Fatalf("rejoin should respawn the same identity")
	}
	if r.agents["bob-id"].Name != "Player" {
		t.Fatalf("empty name should default to Player")
	}
}

func TestJoinCannotTakeOverBot(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 4, 1)
	res, err := r.Join("mallory", botID(0))
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if res.ID == botID(0) {
		t.Fatalf("human took over a bot identity")
	}
	if !r.agents[botID(0)].IsBot {
		t.Fatalf("bot replaced by human")
	}
}

func TestJoinTruncatesLongNames(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 4, 0)
	res, err := r.Join("ábcdefghijklmnopqrstuvwxyz", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if n := len([]rune(res.Name)); n != cfg.Players.NameMaxLen {
		t.Fatalf("name length = %d, want %d", n, cfg.Players.NameMaxLen)
	}
}

func TestSubmitInput(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, clock := newTestRoom(t, cfg, 4, 1)
	res, err := r.Join("alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	clock.Advance(time.Second)
	if !r.SubmitInput(res.ID, 3, 4, true, false) {
		t.Fatalf("input to a living human should succeed")
	}
	a := r.agents[res.ID]
	if !approx(a.Aim.X, 0.6, 1e-12) || !approx(a.Aim.Y, 0.8, 1e-12) || !a.Boost {
		t.Fatalf("intent = %+v", a)
	}
	if !a.LastInput.Equal(clock.Now()) {
		t.Fatalf("last input not refreshed")
	}

	r.SubmitInput(res.ID, 1e-9, 0, false, true)
	if a.Aim.X != 0 || a.Aim.Y != 0 || !a.SplitRequested {
		t.Fatalf("near-zero aim should zero out, split should latch: %+v", a)
	}
	// a later input without split must not clear the latched request
	r.SubmitInput(res.ID, 1, 0, false, false)
	if !a.SplitRequested {
		t.Fatalf("split request dropped before the tick consumed it")
	}

	if r.SubmitInput("nobody", 1, 0, false, false) {
		t.Fatalf("unknown agent must report failure")
	}
	if r.SubmitInput(botID(0), 1, 0, false, false) {
		t.Fatalf("bots are not steerable from outside")
	}
	a.Blobs = nil
	if r.SubmitInput(res.ID, 1, 0, false, false) {
		t.Fatalf("dead agent must report failure")
	}
}

func TestTickAppliesRequestedSplit(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 4, 0)
	a := placeAgent(r, "a", false, blobAt(1500, 1500, 200, 60))

	if !r.SubmitInput("a", 0, -1, false, true) {
		t.Fatalf("input rejected")
	}
	r.Tick()

	if len(a.Blobs) != 2 {
		t.Fatalf("blobs = %d, want 2", len(a.Blobs))
	}
	if a.SplitRequested {
		t.Fatalf("split request should be consumed")
	}
	if a.Blobs[1].Pos.Y >= a.Blobs[0].Pos.Y {
		t.Fatalf("sibling should be ahead along the aim")
	}
}

func TestInactiveHumanIsRemoved(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, clock := newTestRoom(t, cfg, 4, 2)
	idle, _ := r.Join("idle", "")
	active, _ := r.Join("active", "")

	clock.Advance(cfg.Players.InactivityTimeout - time.Second)
	r.SubmitInput(active.ID, 1, 0, false, false)
	clock.Advance(2 * time.Second)
	r.Tick()

	snap := r.Snapshot()
	for _, a := range snap.Agents {
		if a.ID == idle.ID {
			t.Fatalf("idle human still in snapshot")
		}
	}
	if _, ok := r.agents[idle.ID]; ok {
		t.Fatalf("idle human still in room")
	}
	if _, ok := r.agents[active.ID]; !ok {
		t.Fatalf("active human removed")
	}
	if len(r.agents) != 3 {
		t.Fatalf("agents = %d, want 2 bots + 1 human", len(r.agents))
	}
}

func TestLeave(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 4, 1)
	res, _ := r.Join("alice", "")
	if err := r.Leave(res.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := r.Leave(res.ID); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("second leave err = %v", err)
	}
	if err := r.Leave(botID(0)); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("bots cannot leave, err = %v", err)
	}
}

func TestAimRightUntilClamped(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 1, 0)
	res, err := r.Join("runner", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	a := r.agents[res.ID]
	w := cfg.World.Size

	prev := a.Primary().Pos.X
	clamped := false
	for i := 0; i < 1000; i++ {
		r.SubmitInput(res.ID, 1, 0, false, false)
		r.Tick()
		b := a.Primary()
		if b.Pos.X > w-b.Radius {
			t.Fatalf("tick %d: x=%v beyond %v", i, b.Pos.X, w-b.Radius)
		}
		if !clamped {
			if b.Pos.X <= prev {
				t.Fatalf("tick %d: x did not increase (%v -> %v)", i, prev, b.Pos.X)
			}
			clamped = w-b.Radius-b.Pos.X < 0.01
		} else if w-b.Radius-b.Pos.X >= 0.01 {
			t.Fatalf("tick %d: left the wall after clamping, x=%v", i, b.Pos.X)
		}
		prev = b.Pos.X
	}
	if !clamped {
		t.Fatalf("never reached the wall, x=%v", prev)
	}
}

func TestSnapshotLeaderboard(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, _ := newTestRoom(t, cfg, 4, 14)
	r.agents[botID(3)].Blobs = nil

	snap := r.Snapshot()
	if len(snap.Agents) != 13 {
		t.Fatalf("agents = %d, want 13 living", len(snap.Agents))
	}
	if len(snap.Leaderboard) != LeaderboardSize {
		t.Fatalf("leaderboard = %d, want %d", len(snap.Leaderboard), LeaderboardSize)
	}
	for i := 1; i < len(snap.Leaderboard); i++ {
		if snap.Leaderboard[i].Mass > snap.Leaderboard[i-1].Mass {
			t.Fatalf("leaderboard not sorted: %+v", snap.Leaderboard)
		}
	}
	for _, e := range snap.Leaderboard {
		if e.ID == botID(3) {
			t.Fatalf("dead agent on the leaderboard")
		}
	}
	if snap.WorldSize != cfg.World.Size || snap.Code != "TEST01" {
		t.Fatalf("snapshot header = %+v", snap)
	}
}

func TestRoomIsDeterministic(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	a, _ := newTestRoom(t, cfg, 4, 10)
	b, _ := newTestRoom(t, cfg, 4, 10)
	for i := 0; i < 120; i++ {
		a.Tick()
		b.Tick()
	}
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Fatalf("rooms with the same code diverged")
	}
}

func TestFloorsHoldOverLongRun(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	cfg.World.Size = 1200
	cfg.World.VirusCount = 6
	r, _ := newTestRoom(t, cfg, 4, 25)

	for tick := 0; tick < 900; tick++ {
		r.Tick()
		for _, ag := range r.agents {
			if ag.IsBot && !ag.Alive() {
				t.Fatalf("tick %d: bot %s left dead", tick, ag.ID)
			}
			for _, b := range ag.Blobs {
				if b.Mass < cfg.Blob.MinMass || b.Radius < cfg.Blob.MinRadius {
					t.Fatalf("tick %d: %s blob under floors: mass=%v r=%v", tick, ag.ID, b.Mass, b.Radius)
				}
			}
		}
	}
	if r.Snapshot().Tick != 900 {
		t.Fatalf("tick counter off")
	}
}

func TestJoinLivingIdentityKeepsAgent(t *testing.T) {
	cfg := emptyWorldConfig(t)
	r, clock := newTestRoom(t, cfg, 1, 0)

	first, err := r.Join("alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	a := r.agents[first.ID]
	a.Blobs[0].Mass = 250
	a.Blobs[0].Radius = 60
	before := *a.Blobs[0]

	clock.Advance(5 * time.Second)
	again, err := r.Join("someone-else", first.ID)
	if err != nil {
		t.Fatalf("rejoin of a full room's living player: %v", err)
	}
	if again != first {
		t.Fatalf("join result = %+v, want unchanged %+v", again, first)
	}
	if r.agents[first.ID] != a || len(a.Blobs) != 1 || *a.Blobs[0] != before {
		t.Fatalf("living agent was replaced or reset")
	}
	if a.Name != "alice" {
		t.Fatalf("name = %q, want alice", a.Name)
	}
	if !a.LastInput.Equal(clock.Now()) {
		t.Fatalf("rejoin should count as activity")
	}
}

func TestConcurrentIntentAndSnapshots(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	cfg.World.Size = 1200
	r, _ := newTestRoom(t, cfg, 8, 12)
	size := cfg.World.Size

	stop := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(stop)
		for i := 0; i < 300; i++ {
			r.Tick()
		}
	}()

	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			res, err := r.Join("player", "")
			if err != nil {
				t.Errorf("join %d: %v", p, err)
				return
			}
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				x, y := float64(i%7-3), float64(p-2)
				if !r.SubmitInput(res.ID, x, y, i%5 == 0, i%40 == 0) {
					if _, err := r.Join("player", res.ID); err != nil {
						t.Errorf("respawn %d: %v", p, err)
						return
					}
				}
			}
		}(p)
	}

	const tol = 0.11 // both coordinates and radii are rounded to one decimal
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var lastTick uint64
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := r.Snapshot()
				if snap.Tick < lastTick {
					t.Errorf("tick went backwards: %d after %d", snap.Tick, lastTick)
					return
				}
				lastTick = snap.Tick
				if len(snap.Leaderboard) > LeaderboardSize {
					t.Errorf("leaderboard has %d entries", len(snap.Leaderboard))
					return
				}
				for i := 1; i < len(snap.Leaderboard); i++ {
					if snap.Leaderboard[i].Mass > snap.Leaderboard[i-1].Mass {
						t.Errorf("leaderboard not sorted at tick %d", snap.Tick)
						return
					}
				}
				seen := make(map[string]bool, len(snap.Agents))
				for _, a := range snap.Agents {
					if len(a.Blobs) == 0 {
						t.Errorf("dead agent %s in snapshot", a.ID)
						return
					}
					if seen[a.ID] {
						t.Errorf("agent %s listed twice", a.ID)
						return
					}
					seen[a.ID] = true
					for _, b := range a.Blobs {
						if b.X < b.Radius-tol || b.X > size-b.Radius+tol ||
							b.Y < b.Radius-tol || b.Y > size-b.Radius+tol {
							t.Errorf("tick %d: blob of %s at (%v,%v) r=%v outside the world", snap.Tick, a.ID, b.X, b.Y, b.Radius)
							return
						}
					}
				}
				_ = r.Info()
			}
		}()
	}

	wg.Wait()
	if got := r.Snapshot().Tick; got != 300 {
		t.Fatalf("tick = %d, want 300", got)
	}
}
