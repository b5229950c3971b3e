package main

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// botNames is the pool bots draw their display names from
var botNames = []string{
	"Amoeba", "Blinky", "Chomper", "Dotty", "Ember",
	"Fizz", "Gobbler", "Halo", "Inky", "Jelly",
	"Kiwi", "Lumen", "Mochi", "Nibbles", "Orbit",
	"Pebble", "Quark", "Ripple", "Sprout", "Tofu",
	"Umbra", "Vortex", "Wobble", "Yolk", "Zest",
}

func botID(n int) string {
	return fmt.Sprintf("bot-%d", n)
}

func botName(n int) string {
	return botNames[n%len(botNames)]
}

// decideBot picks an aim and boost flag for a living bot. It is greedy
// and memoryless: flee the nearest threat, else chase the nearest prey,
// else head for a random pellet.
func decideBot(bot *Agent, agents []*Agent, pellets []*Pellet, rng *rand.Rand, cfg *Config) (r2.Vec, bool) {
	me := bot.Primary()
	if me == nil {
		return r2.Vec{}, false
	}
	bc := cfg.Bots

	var threat, prey *Blob
	threatDist, preyDist := math.Inf(1), math.Inf(1)
	for _, other := range agents {
		if other == bot || !other.Alive() {
			continue
		}
		for _, ob := range other.Blobs {
			d := dist(me.Pos, ob.Pos)
			if d > bc.PerceptionRadius {
				continue
			}
			switch {
			case ob.Radius > me.Radius*bc.ThreatRatio:
				if d < threatDist {
					threat, threatDist = ob, d
				}
			case me.Radius > ob.Radius*bc.PreyRatio:
				if d < preyDist {
					prey, preyDist = ob, d
				}
			}
		}
	}

	switch {
	case threat != nil:
		return direction(threat.Pos, me.Pos), false
	case prey != nil:
		return direction(me.Pos, prey.Pos), rng.Float64() < bc.ChaseBoostChance
	case len(pellets) > 0:
		p := pellets[rng.Intn(len(pellets))]
		return direction(me.Pos, p.Pos), false
	}
	return r2.Vec{}, false
}

// updateBots runs the AI for every living bot. Caller must hold r.mu.
func (r *Room) updateBots() {
	agents := r.living()
	for _, a := range agents {
		if !a.IsBot {
			continue
		}
		a.Aim, a.Boost = decideBot(a, agents, r.pellets, r.rng, r.cfg)
	}
}

// respawnBots replaces every dead bot with a fresh one under the same
// identity. Caller must hold r.mu.
func (r *Room) respawnBots() {
	for _, id := range r.order {
		a := r.agents[id]
		if !a.IsBot || a.Alive() {
			continue
		}
		r.agents[id] = spawnAgent(id, a.Name, true, r.rng, r.cfg)
	}
}
