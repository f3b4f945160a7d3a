package geom

// LayerMask selects collider layers for a raycast. Bit n selects layer n.
type LayerMask uint32

// AllLayers selects every layer.
const AllLayers LayerMask = ^LayerMask(0)

// MaskOf builds a mask selecting the given layers.
func MaskOf(layers ...int) LayerMask {
	var m LayerMask
	for _, l := range layers {
		if l >= 0 && l < 32 {
			m |= 1 << uint(l)
		}
	}
	return m
}

// Has reports whether layer is selected by m.
func (m LayerMask) Has(layer int) bool {
	if layer < 0 || layer >= 32 {
		return false
	}
	return m&(1<<uint(layer)) != 0
}

// Hit describes the first collider a raycast struck.
type Hit struct {
	Point      Vec3
	Distance   float64
	ColliderID string
	// Tag identifies what the collider belongs to, e.g. "Wall" or "Player".
	Tag string
}
