package main

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// splitAgent divides the agent's largest blob along its aim. It returns
// false, leaving the agent untouched, when the blob is below the minimum
// split size or cannot give both halves the minimum mass.
func splitAgent(a *Agent, rng *rand.Rand, cfg *Config) bool {
	i := a.largest()
	if i < 0 {
		return false
	}
	b := a.Blobs[i]
	if b.Radius < cfg.Blob.MinRadius*cfg.Split.MinRadiusMultiple || b.Mass < 2*cfg.Blob.MinMass {
		return false
	}

	dir := a.Aim
	if r2.Norm(dir) < aimEpsilon {
		dir = fromAngle(randAngle(rng))
	}

	half := b.Mass / 2
	b.Mass = half
	b.Radius = math.Max(b.Radius*cfg.Split.RadiusFactor, cfg.Blob.MinRadius)
	b.SplitTimer = 0

	offset := r2.Scale(2*b.Radius+cfg.Split.Gap, dir)
	sibling := &Blob{
		Pos:    clampToWorld(r2.Add(b.Pos, offset), b.Radius, cfg.World.Size),
		Vel:    r2.Add(b.Vel, r2.Scale(cfg.Split.Impulse, dir)),
		Mass:   half,
		Radius: b.Radius,
	}
	a.Blobs = append(a.Blobs, sibling)
	return true
}

// canPop reports whether a blob touching a virus explodes. A blob that
// is too small, or too light to give every fragment the minimum mass,
// bounces instead.
func canPop(b *Blob, cfg *Config) bool {
	return b.Radius >= cfg.Virus.PopRadius && b.Mass >= float64(cfg.Virus.Fragments)*cfg.Blob.MinMass
}

// popBlob explodes b into the configured number of fragments flying off
// in random directions. Mass is divided evenly and each fragment radius
// is scaled by 1/sqrt(n) so total area is preserved. Callers check canPop
// first.
func popBlob(b *Blob, rng *rand.Rand, cfg *Config) []*Blob {
	n := cfg.Virus.Fragments
	mass := b.Mass / float64(n)
	radius := math.Max(b.Radius/math.Sqrt(float64(n)), cfg.Blob.MinRadius)

	fragments := make([]*Blob, n)
	for k := range fragments {
		dir := fromAngle(randAngle(rng))
		speed := randRange(rng, cfg.Virus.FragmentSpeed.Min, cfg.Virus.FragmentSpeed.Max)
		fragments[k] = &Blob{
			Pos:    b.Pos,
			Vel:    r2.Add(b.Vel, r2.Scale(speed, dir)),
			Mass:   mass,
			Radius: radius,
		}
	}
	return fragments
}
