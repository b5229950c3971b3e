package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Blob is one physical body of an agent. Mass and radius move together
// but are tracked separately: radius decays slower than mass so heavily
// decayed blobs stay visible and collidable.
type Blob struct {
	Pos        r2.Vec
	Vel        r2.Vec // residual knockback, decays toward zero
	Mass       float64
	Radius     float64
	SplitTimer float64 // seconds since this blob was last produced by a split
}

// grow applies a nominal mass gain through the soft-cap penalty and
// returns the mass actually added. Radius never shrinks from growth.
func (b *Blob) grow(gain float64, cfg BlobConfig) float64 {
	if gain <= 0 {
		return 0
	}
	applied := gain
	if b.Mass > cfg.SoftMassCap {
		applied = gain * math.Max(cfg.SoftMassCap/b.Mass, cfg.MinGrowthFraction)
	}
	b.Mass += applied
	b.Radius += applied * cfg.RadiusGrowthFactor
	return applied
}

// shrink removes mass and radius, respecting both floors.
func (b *Blob) shrink(mass, radius float64, cfg BlobConfig) {
	b.Mass = math.Max(b.Mass-mass, cfg.MinMass)
	b.Radius = math.Max(b.Radius-radius, cfg.MinRadius)
}

// decay applies passive per-second decay for a step of dt seconds.
func (b *Blob) decay(rate, radiusFraction, dt float64, cfg BlobConfig) {
	b.shrink(b.Mass*rate*dt, b.Radius*rate*radiusFraction*dt, cfg)
}

// engulfs reports whether b can swallow other: b must be larger by the
// margin ratio and cover other almost entirely.
func (b *Blob) engulfs(other *Blob, cfg EngulfConfig) bool {
	if b.Radius <= other.Radius*cfg.MarginRatio {
		return false
	}
	return dist(b.Pos, other.Pos) < b.Radius-other.Radius*cfg.OverlapFactor
}

// engulfGain is the nominal mass b receives for eating other. The eaten
// share is other/b clamped into the configured band.
func (b *Blob) engulfGain(other *Blob, cfg EngulfConfig) float64 {
	ratio := 0.0
	if b.Mass > 0 {
		ratio = other.Mass / b.Mass
	}
	return clamp(ratio, cfg.MinGainFraction, cfg.MaxGainFraction) * other.Mass
}

func (b *Blob) ToDTO() BlobDTO {
	return BlobDTO{
		X:      roundTo1(b.Pos.X),
		Y:      roundTo1(b.Pos.Y),
		Radius: roundTo1(b.Radius),
	}
}
