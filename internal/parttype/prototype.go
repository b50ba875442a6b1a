package parttype

import "github.com/tilesim/vehicle/pkg/core"

// ProtoPart is one part entry of a vehicle prototype.
type ProtoPart struct {
	Mount core.Point `json:"mount"`
	Type  string     `json:"type"`
	// Ammo presets: charge the part's tank/magazine to this many charges of
	// its default fuel/ammo when spawning with full fuel.
	Charges int `json:"charges,omitempty"`
}

// Prototype is a named vehicle blueprint parts are instantiated from.
type Prototype struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Parts []ProtoPart `json:"parts"`
}
