package component

import "github.com/milk9111/fpsmove/movement"

// CollisionLayer declares which layers a body is blocked by and which layers
// count as ground for its probe.
type CollisionLayer struct {
	// Mask is the set of layers that block sweeps. Zero means every solid layer.
	Mask movement.LayerMask `yaml:"mask,omitempty"`
	// Ground is the probe mask.
	Ground movement.LayerMask `yaml:"ground,omitempty"`
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
