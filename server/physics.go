package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// blobSpeed is the movement speed (units/s) of a blob of radius r owned
// by an agent of the given total mass. Bigger blobs are slower, and
// agents past the soft mass cap are slowed further down to a floor.
func blobSpeed(radius, totalMass float64, boost bool, cfg *Config) float64 {
	p := cfg.Physics
	speed := p.BaseSpeed / (1 + radius*p.SpeedSizeFactor)
	if totalMass > cfg.Blob.SoftMassCap {
		speed *= math.Max(cfg.Blob.SoftMassCap/totalMass, p.MinSpeedFactor)
	}
	if boost {
		speed *= p.BoostMultiplier
	}
	return speed
}

// stepPhysics moves, clamps and decays every blob of a living agent for
// one tick of dt seconds.
func stepPhysics(a *Agent, dt float64, cfg *Config) {
	if !a.Alive() {
		return
	}
	p := cfg.Physics
	total := a.TotalMass()
	decayRate := p.HumanDecayRate
	if a.IsBot {
		decayRate = p.BotDecayRate
	}
	payBoost := a.Boost && !a.IsBot && total > 0
	velDecay := math.Exp(-p.KnockbackDecay * dt)

	for _, b := range a.Blobs {
		speed := blobSpeed(b.Radius, total, a.Boost, cfg)
		pos := r2.Add(b.Pos, r2.Scale(speed*dt, a.Aim))

		// knockback goes in before the clamp
		pos = r2.Add(pos, r2.Scale(dt, b.Vel))
		b.Pos = clampToWorld(pos, b.Radius, cfg.World.Size)
		b.Vel = r2.Scale(velDecay, b.Vel)

		b.SplitTimer += dt

		share := b.Mass / total
		b.decay(decayRate, p.RadiusDecayFraction, dt, cfg.Blob)

		if payBoost {
			b.shrink(p.BoostMassCost*share*dt, p.BoostRadiusCost*share*dt, cfg.Blob)
		}
	}
}
