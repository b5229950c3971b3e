package main

import (
	"hash/fnv"
	"math"
	"math/rand"
)

// roomSeed derives a stable seed from a room code so a room replays
// identically for the same sequence of calls.
func roomSeed(code string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(code))
	return int64(h.Sum64() & math.MaxInt64)
}

// newRoomRNG returns the room-scoped generator. It is only touched while
// the room lock is held.
func newRoomRNG(code string) *rand.Rand {
	return rand.New(rand.NewSource(roomSeed(code)))
}

func randRange(rng *rand.Rand, min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + rng.Float64()*(max-min)
}

func randAngle(rng *rand.Rand) float64 {
	return rng.Float64() * 2 * math.Pi
}
