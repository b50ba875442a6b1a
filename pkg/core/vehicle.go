package core

// ItemRecord is the persisted form of a single item instance.
type ItemRecord struct {
	Type    string `json:"type"`
	Damage  int    `json:"damage"`
	Charges int    `json:"charges,omitempty"`
}

// PartRecord is the persisted form of one mounted vehicle part.
// Derived data (precalculated offsets, category membership) is intentionally
// absent: loaders must rebuild it from the part list.
type PartRecord struct {
	Type        string       `json:"type"`
	Mount       Point        `json:"mount"`
	Base        ItemRecord   `json:"base"`
	Items       []ItemRecord `json:"items,omitempty"`
	AmmoPref    string       `json:"ammo_pref,omitempty"`
	AmmoCurrent string       `json:"ammo_current,omitempty"`
	Enabled     bool         `json:"enabled,omitempty"`
	Open        bool         `json:"open,omitempty"`
	Removed     bool         `json:"removed,omitempty"`
	Passenger   bool         `json:"passenger,omitempty"`
	Blood       int          `json:"blood,omitempty"`
	Direction   int          `json:"direction,omitempty"`
	// CrewID is -1 for an unassigned seat or turret; 0 is a valid crew key.
	CrewID int `json:"crew_id"`
	// Target coordinates used by turrets and power cables: the actual
	// target point and the target vehicle's origin tile.
	Target       Tripoint `json:"target,omitempty"`
	TargetOrigin Tripoint `json:"target_origin,omitempty"`
}

// LabelRecord stores one user label keyed by mount coordinate.
type LabelRecord struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Text string `json:"text"`
}

// VehicleRecord is the full persisted state of a vehicle. It must round-trip
// losslessly; everything derivable (indices, mass, pivot) is rebuilt on load.
type VehicleRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`

	// Anchor position inside the owning submap plus the submap identity.
	PosX int `json:"posx"`
	PosY int `json:"posy"`
	SmX  int `json:"smx"`
	SmY  int `json:"smy"`
	SmZ  int `json:"smz"`

	FaceDir          int     `json:"face_dir"`
	MoveDir          int     `json:"move_dir"`
	TurnDir          int     `json:"turn_dir"`
	Velocity         int     `json:"velocity"`
	CruiseVelocity   int     `json:"cruise_velocity"`
	VerticalVelocity int     `json:"vertical_velocity"`
	LastTurn         int     `json:"last_turn"`
	OfTurnCarry      float64 `json:"of_turn_carry"`

	EngineOn   bool `json:"engine_on"`
	TrackingOn bool `json:"tracking_on"`
	Locked     bool `json:"locked"`
	AlarmOn    bool `json:"alarm_on"`
	CameraOn   bool `json:"camera_on"`
	Skidding   bool `json:"skidding"`

	Parts  []PartRecord  `json:"parts"`
	Labels []LabelRecord `json:"labels,omitempty"`
	Tags   []string      `json:"tags,omitempty"`
}
