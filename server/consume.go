package main

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// eatPellets lets every living blob eat the pellets it overlaps, then
// tops the pellet list back up in one pass so fresh pellets cannot be
// eaten in the tick they appear. Caller must hold r.mu.
func (r *Room) eatPellets() {
	reach := maxPelletRadius(r.cfg.World)
	r.grid.Rebuild(r.pellets)

	eaten := 0
	for _, a := range r.living() {
		for _, b := range a.Blobs {
			queried := b.Radius
			cands := r.grid.Near(b.Pos, queried+reach)
			for k := 0; k < len(cands); k++ {
				idx := cands[k]
				p := r.pellets[idx]
				if p.eaten || !overlaps(b.Pos, b.Radius, p.Pos, p.Radius) {
					continue
				}
				p.eaten = true
				eaten++
				b.grow(float64(p.Value), r.cfg.Blob)

				// The blob grew past the queried reach; pick up pellets
				// further along the slice that are now in range.
				if b.Radius > queried {
					queried = b.Radius
					cands = after(r.grid.Near(b.Pos, queried+reach), idx)
					k = -1
				}
			}
		}
	}

	if eaten > 0 {
		kept := r.pellets[:0]
		for _, p := range r.pellets {
			if !p.eaten {
				kept = append(kept, p)
			}
		}
		clear(r.pellets[len(kept):])
		r.pellets = kept
	}
	r.refillPellets()
}

// after returns the elements of sorted idxs strictly greater than min.
func after(idxs []int, min int) []int {
	for i, v := range idxs {
		if v > min {
			return idxs[i:]
		}
	}
	return nil
}

// refillPellets spawns pellets up to the target count. Caller must hold r.mu.
func (r *Room) refillPellets() {
	for len(r.pellets) < r.cfg.World.PelletTarget {
		r.pellets = append(r.pellets, newPellet(r.rng, r.cfg.World))
	}
}

// touchingVirus returns the first virus overlapping b, or nil.
func (r *Room) touchingVirus(b *Blob) *Virus {
	for _, v := range r.viruses {
		if overlaps(b.Pos, b.Radius, v.Pos, v.Radius) {
			return v
		}
	}
	return nil
}

// hitViruses pops large blobs touching a virus and bounces the rest
// off it. Fragments from a pop are not checked again this tick.
// Caller must hold r.mu.
func (r *Room) hitViruses() {
	for _, a := range r.living() {
		for i := 0; i < len(a.Blobs); {
			b := a.Blobs[i]
			v := r.touchingVirus(b)
			if v == nil {
				i++
				continue
			}
			if canPop(b, r.cfg) {
				fragments := popBlob(b, r.rng, r.cfg)
				rest := append(fragments, a.Blobs[i+1:]...)
				a.Blobs = append(a.Blobs[:i], rest...)
				i += len(fragments)
				r.log.Debug("blob popped", "agent", a.ID, "fragments", len(fragments))
				continue
			}
			push := direction(v.Pos, b.Pos)
			if r2.Norm(push) == 0 {
				push = fromAngle(randAngle(r.rng))
			}
			b.Vel = r2.Add(b.Vel, r2.Scale(r.cfg.Virus.BounceImpulse, push))
			i++
		}
	}
}

// resolveEngulfment checks every pair of living agents, one pair at a
// time, and lets larger blobs swallow smaller ones. Caller must hold r.mu.
func (r *Room) resolveEngulfment() {
	agents := r.living()
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			a, b := agents[i], agents[j]
			if !a.Alive() || !b.Alive() {
				continue
			}
			r.engulfPair(a, b)
			for _, dead := range []*Agent{a, b} {
				if !dead.Alive() {
					killer := a
					if dead == a {
						killer = b
					}
					r.log.Debug("agent consumed", "agent", dead.ID, "by", killer.ID)
				}
			}
		}
	}
}

// engulfPair runs all blob combinations of one agent pair. A blob that
// has been eaten is never evaluated again, and within one comparison
// only one direction can win since the margin ratio exceeds 1.
func (r *Room) engulfPair(a, b *Agent) {
	blobCfg, cfg := r.cfg.Blob, r.cfg.Engulf
	for i := 0; i < len(a.Blobs); {
		x := a.Blobs[i]
		xEaten := false
		for j := 0; j < len(b.Blobs); {
			y := b.Blobs[j]
			switch {
			case x.engulfs(y, cfg):
				x.grow(x.engulfGain(y, cfg), blobCfg)
				b.removeBlob(j)
			case y.engulfs(x, cfg):
				y.grow(y.engulfGain(x, cfg), blobCfg)
				a.removeBlob(i)
				xEaten = true
			default:
				j++
			}
			if xEaten {
				break
			}
		}
		if !xEaten {
			i++
		}
	}
}
