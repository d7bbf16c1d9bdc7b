package compat

// PlaceType selects which side effects a block placement runs.
type PlaceType int

const (
	// PlaceFull runs the whole simulation pipeline: physics, neighbor
	// updates and lighting.
	PlaceFull PlaceType = iota

	// PlaceNoPhysics writes the block and recalculates light, but does not
	// notify neighbors.
	PlaceNoPhysics

	// PlaceRaw writes the block directly into the chunk. Neither physics nor
	// lighting run. Replaced containers still drop their contents.
	PlaceRaw

	// placeTypeCount is the number of place types.
	placeTypeCount
)

// String returns the string representation of the place type.
func (t PlaceType) String() string {
	switch t {
	case PlaceFull:
		return "full"
	case PlaceNoPhysics:
		return "no_physics"
	case PlaceRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Valid reports whether t is one of the defined place types.
func (t PlaceType) Valid() bool {
	return t >= PlaceFull && t < placeTypeCount
}
