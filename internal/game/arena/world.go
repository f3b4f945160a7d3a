package arena

import (
	"fmt"
	"math"
	"sync"

	"github.com/paulmach/orb"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// World is a set of colliders. All methods are safe for concurrent use.
type World struct {
	mu        sync.RWMutex
	colliders map[string]*Collider
	order     []string
}

// NewWorld creates a world holding colliders.
//
// Postcondition: returns an error on a duplicate collider ID.
func NewWorld(colliders ...Collider) (*World, error) {
	w := &World{colliders: make(map[string]*Collider)}
	for _, c := range colliders {
		if err := w.Add(c); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Add inserts c.
//
// Precondition: c.ID must be non-empty and unique.
func (w *World) Add(c Collider) error {
	if c.ID == "" {
		return fmt.Errorf("arena.World.Add: collider id must not be empty")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.colliders[c.ID]; exists {
		return fmt.Errorf("arena.World.Add: collider %q already exists", c.ID)
	}
	w.colliders[c.ID] = &c
	w.order = append(w.order, c.ID)
	return nil
}

// Remove deletes the collider with id. It reports whether one was removed.
func (w *World) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.colliders[id]; !ok {
		return false
	}
	delete(w.colliders, id)
	for i, o := range w.order {
		if o == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return true
}

// Move translates the collider with id so its footprint's minimum corner
// sits at (x, z). It reports whether the collider exists.
func (w *World) Move(id string, x, z float64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.colliders[id]
	if !ok {
		return false
	}
	dx := x - c.Footprint.Min[0]
	dz := z - c.Footprint.Min[1]
	c.Footprint = orb.Bound{
		Min: orb.Point{c.Footprint.Min[0] + dx, c.Footprint.Min[1] + dz},
		Max: orb.Point{c.Footprint.Max[0] + dx, c.Footprint.Max[1] + dz},
	}
	return true
}

// Colliders returns a snapshot in insertion order.
func (w *World) Colliders() []Collider {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Collider, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.colliders[id])
	}
	return out
}

// Cast returns the nearest non-trigger collider on a layer selected by mask
// that the segment origin + dir*[0, maxDist] enters. Colliders containing
// origin are ignored.
//
// Precondition: dir should be unit length; it is normalised if not.
func (w *World) Cast(origin, dir geom.Vec3, maxDist float64, mask geom.LayerMask) (geom.Hit, bool) {
	if maxDist <= 0 || dir.LenSq() == 0 {
		return geom.Hit{}, false
	}
	dir = dir.Normalized()
	end := origin.Add(dir.Scale(maxDist))
	reach := orb.Bound{Min: flat(origin), Max: flat(origin)}.Extend(flat(end))

	w.mu.RLock()
	defer w.mu.RUnlock()

	var best geom.Hit
	found := false
	bestT := math.Inf(1)
	for _, id := range w.order {
		c := w.colliders[id]
		if c.Trigger || !mask.Has(c.Layer) {
			continue
		}
		if !reach.Intersects(c.Footprint) {
			continue
		}
		t, ok := c.entry(origin, dir, maxDist)
		if !ok || t >= bestT {
			continue
		}
		bestT = t
		best = geom.Hit{
			Point:      origin.Add(dir.Scale(t)),
			Distance:   t,
			ColliderID: c.ID,
			Tag:        c.Tag,
		}
		found = true
	}
	return best, found
}

// Blocked reports whether p lies inside any solid collider.
func (w *World) Blocked(p geom.Vec3) bool {
	_, ok := w.Occupant(p)
	return ok
}

// Occupant returns the ID of the first solid collider, in insertion order,
// that contains p.
func (w *World) Occupant(p geom.Vec3) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, id := range w.order {
		c := w.colliders[id]
		if !c.Trigger && c.contains(p) {
			return id, true
		}
	}
	return "", false
}

func flat(v geom.Vec3) orb.Point { return orb.Point{v.X, v.Z} }

func (c *Collider) contains(p geom.Vec3) bool {
	return c.Footprint.Contains(flat(p)) && p.Y >= c.MinY && p.Y <= c.MaxY
}

// entry returns the distance along dir at which the ray enters the box, using
// the slab method. Rays starting inside the box report no entry.
func (c *Collider) entry(origin, dir geom.Vec3, maxDist float64) (float64, bool) {
	if c.contains(origin) {
		return 0, false
	}
	tMin, tMax := 0.0, maxDist
	orig := [3]float64{origin.X, origin.Y, origin.Z}
	dirs := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{c.Footprint.Min[0], c.MinY, c.Footprint.Min[1]}
	hi := [3]float64{c.Footprint.Max[0], c.MaxY, c.Footprint.Max[1]}
	for i := range orig {
		o, d := orig[i], dirs[i]
		if math.Abs(d) < 1e-12 {
			if o < lo[i] || o > hi[i] {
				return 0, false
			}
			continue
		}
		t1 := (lo[i] - o) / d
		t2 := (hi[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}
