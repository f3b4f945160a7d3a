// Package arena holds the static obstruction geometry of an encounter and
// answers raycast queries against it.
package arena

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Collider is an axis-aligned box: a ground footprint on the XZ plane
// extruded between MinY and MaxY.
type Collider struct {
	ID  string
	Tag string
	// Footprint is the XZ extent; orb's X holds world X and orb's Y holds world Z.
	Footprint orb.Bound
	MinY      float64
	MaxY      float64
	Layer     int
	// Trigger colliders never block raycasts.
	Trigger bool
}

// ColliderSpec is the YAML form of a Collider.
type ColliderSpec struct {
	ID      string     `yaml:"id"`
	Tag     string     `yaml:"tag"`
	Min     [2]float64 `yaml:"min"`
	Max     [2]float64 `yaml:"max"`
	MinY    float64    `yaml:"min_y"`
	MaxY    float64    `yaml:"max_y"`
	Layer   int        `yaml:"layer"`
	Trigger bool       `yaml:"trigger"`
}

// Collider converts the spec, normalising swapped corners.
//
// Postcondition: returns an error when ID is empty, the layer is outside
// [0, 31], or the box has no height.
func (s ColliderSpec) Collider() (Collider, error) {
	if s.ID == "" {
		return Collider{}, fmt.Errorf("collider: id must not be empty")
	}
	if s.Layer < 0 || s.Layer > 31 {
		return Collider{}, fmt.Errorf("collider %q: layer must be 0-31, got %d", s.ID, s.Layer)
	}
	if s.MaxY <= s.MinY {
		return Collider{}, fmt.Errorf("collider %q: max_y must exceed min_y", s.ID)
	}
	b := orb.Bound{Min: orb.Point{s.Min[0], s.Min[1]}, Max: orb.Point{s.Min[0], s.Min[1]}}
	b = b.Extend(orb.Point{s.Max[0], s.Max[1]})
	return Collider{
		ID:        s.ID,
		Tag:       s.Tag,
		Footprint: b,
		MinY:      s.MinY,
		MaxY:      s.MaxY,
		Layer:     s.Layer,
		Trigger:   s.Trigger,
	}, nil
}

// Box is a convenience constructor for a solid collider on layer 0.
func Box(id, tag string, minX, minZ, maxX, maxZ, height float64) Collider {
	c, _ := ColliderSpec{
		ID: id, Tag: tag,
		Min: [2]float64{minX, minZ}, Max: [2]float64{maxX, maxZ},
		MaxY: height,
	}.Collider()
	return c
}
