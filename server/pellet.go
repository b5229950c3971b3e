package main

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pellet is a static food particle.
type Pellet struct {
	Pos    r2.Vec
	Radius float64
	Value  int
	eaten  bool
}

// newPellet places a pellet uniformly inside the world. Higher-value
// pellets are drawn slightly larger so clients can tell them apart.
func newPellet(rng *rand.Rand, w WorldConfig) *Pellet {
	value := 1 + rng.Intn(w.PelletMaxValue)
	r := w.PelletRadius + float64(value-1)
	return &Pellet{
		Pos: r2.Vec{
			X: randRange(rng, r, w.Size-r),
			Y: randRange(rng, r, w.Size-r),
		},
		Radius: r,
		Value:  value,
	}
}

// maxPelletRadius is the largest radius newPellet can produce.
func maxPelletRadius(w WorldConfig) float64 {
	return w.PelletRadius + float64(w.PelletMaxValue-1)
}

func (p *Pellet) ToDTO() PelletDTO {
	return PelletDTO{
		X:      roundTo1(p.Pos.X),
		Y:      roundTo1(p.Pos.Y),
		Radius: roundTo1(p.Radius),
		Value:  p.Value,
	}
}
