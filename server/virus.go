package main

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Virus is a permanent hazard. It never moves, shrinks or respawns.
type Virus struct {
	Pos    r2.Vec
	Radius float64
}

func newVirus(rng *rand.Rand, w WorldConfig) *Virus {
	margin := w.SpawnMargin + w.VirusRadius
	return &Virus{
		Pos: r2.Vec{
			X: randRange(rng, margin, w.Size-margin),
			Y: randRange(rng, margin, w.Size-margin),
		},
		Radius: w.VirusRadius,
	}
}

func (v *Virus) ToDTO() VirusDTO {
	return VirusDTO{
		X:      roundTo1(v.Pos.X),
		Y:      roundTo1(v.Pos.Y),
		Radius: roundTo1(v.Radius),
	}
}
