package main

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// emptyWorldConfig returns the defaults with no pellets and no viruses so
// scenarios can place every entity by hand.
func emptyWorldConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.World.PelletTarget = 0
	cfg.World.VirusCount = 0
	return cfg
}

func newTestRoom(t *testing.T, cfg *Config, maxPlayers, bots int) (*Room, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	return newRoom("TEST01", maxPlayers, bots, cfg, quietLogger(), clock.Now), clock
}

// placeAgent puts an agent with the given blobs straight into the room.
func placeAgent(r *Room, id string, isBot bool, blobs ...*Blob) *Agent {
	a := &Agent{ID: id, Name: id, Color: "#808080", IsBot: isBot, LastInput: r.now(), Blobs: blobs}
	r.addAgent(a)
	return a
}

func blobAt(x, y, mass, radius float64) *Blob {
	return &Blob{Pos: r2.Vec{X: x, Y: y}, Mass: mass, Radius: radius}
}

func approx(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
