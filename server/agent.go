package main

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
)

// Color channels are drawn from this band so agents stay readable on a
// dark background and distinct from one another.
const (
	colorChannelMin = 100
	colorChannelMax = 230
)

// Agent is a human player or a bot together with all of its blobs.
// An agent is alive exactly while it owns at least one blob.
type Agent struct {
	ID        string
	Name      string
	Color     string
	IsBot     bool
	LastInput time.Time // humans only

	// Intent, written by SubmitInput or the bot AI, read by the tick.
	Aim            r2.Vec
	Boost          bool
	SplitRequested bool

	Blobs []*Blob
}

// spawnAgent creates an agent with a single blob at a random position
// inset from the world edges. Bots get a randomized starting size,
// humans the fixed one.
func spawnAgent(id, name string, isBot bool, rng *rand.Rand, cfg *Config) *Agent {
	mass, radius := cfg.Blob.HumanStartMass, cfg.Blob.HumanStartRadius
	if isBot {
		t := rng.Float64()
		mass = cfg.Blob.BotStartMass.Lerp(t)
		radius = cfg.Blob.BotStartRadius.Lerp(t)
	}
	inset := cfg.World.SpawnMargin + radius
	pos := r2.Vec{
		X: randRange(rng, inset, cfg.World.Size-inset),
		Y: randRange(rng, inset, cfg.World.Size-inset),
	}
	return &Agent{
		ID:    id,
		Name:  name,
		Color: randomColor(rng),
		IsBot: isBot,
		Blobs: []*Blob{{Pos: pos, Mass: mass, Radius: radius}},
	}
}

func randomColor(rng *rand.Rand) string {
	span := colorChannelMax - colorChannelMin + 1
	r := colorChannelMin + rng.Intn(span)
	g := colorChannelMin + rng.Intn(span)
	b := colorChannelMin + rng.Intn(span)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func (a *Agent) Alive() bool {
	return len(a.Blobs) > 0
}

func (a *Agent) TotalMass() float64 {
	total := 0.0
	for _, b := range a.Blobs {
		total += b.Mass
	}
	return total
}

// Primary returns the first blob, which the bot AI steers from.
func (a *Agent) Primary() *Blob {
	if len(a.Blobs) == 0 {
		return nil
	}
	return a.Blobs[0]
}

// largest returns the index of the blob with the biggest radius, or -1.
func (a *Agent) largest() int {
	best := -1
	for i, b := range a.Blobs {
		if best < 0 || b.Radius > a.Blobs[best].Radius {
			best = i
		}
	}
	return best
}

// removeBlob drops the blob at index i, keeping the order of the rest.
func (a *Agent) removeBlob(i int) {
	a.Blobs = append(a.Blobs[:i], a.Blobs[i+1:]...)
}

func (a *Agent) joinResult(worldSize float64) JoinResult {
	return JoinResult{ID: a.ID, Name: a.Name, Color: a.Color, WorldSize: worldSize}
}

// ToDTO converts a living agent to its snapshot form.
func (a *Agent) ToDTO() AgentDTO {
	blobs := make([]BlobDTO, len(a.Blobs))
	for i, b := range a.Blobs {
		blobs[i] = b.ToDTO()
	}
	return AgentDTO{
		ID:        a.ID,
		Name:      a.Name,
		Color:     a.Color,
		Bot:       a.IsBot,
		Blobs:     blobs,
		TotalMass: roundTo1(a.TotalMass()),
	}
}
