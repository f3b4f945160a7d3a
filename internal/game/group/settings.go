package group

import (
	"time"

	"github.com/cory-johannsen/horde/internal/game/geom"
)

// SlotSettings configures the attacker token pool.
type SlotSettings struct {
	// Capacity is the number of agents allowed to attack at once. Values
	// below 1 are clamped to 1.
	Capacity int `mapstructure:"capacity"`
}

// TickSettings configures how often Director.Update runs a full tick.
type TickSettings struct {
	Interval time.Duration `mapstructure:"interval"`
}

// LineOfSightSettings configures visibility checks.
type LineOfSightSettings struct {
	// EyeHeight raises both ends of the ray above the ground.
	EyeHeight float64 `mapstructure:"eye_height"`
	// Mask selects the obstruction layers.
	Mask geom.LayerMask `mapstructure:"mask"`
	// TargetTag is the collider tag of the target itself; hitting it counts as visible.
	TargetTag string `mapstructure:"target_tag"`
}

// SeparationSettings configures pairwise repulsion.
type SeparationSettings struct {
	Radius float64 `mapstructure:"radius"`
}

// SectorSettings configures the angular partition around the target.
type SectorSettings struct {
	Count int `mapstructure:"count"`
	// PreferredMaxDistance plus ScanExtraDistance bounds which agents occupy a sector.
	PreferredMaxDistance float64 `mapstructure:"preferred_max_distance"`
	ScanExtraDistance    float64 `mapstructure:"scan_extra_distance"`
	JitterDegrees        float64 `mapstructure:"jitter_degrees"`
	// AvoidFrontBias in [0, 1] penalises sectors near the target's front.
	AvoidFrontBias float64 `mapstructure:"avoid_front_bias"`
}

// ScanDistance returns the radius within which agents occupy sectors.
func (s SectorSettings) ScanDistance() float64 {
	return s.PreferredMaxDistance + s.ScanExtraDistance
}

// ScoringSettings configures attack slot scoring.
type ScoringSettings struct {
	RangeBuffer float64 `mapstructure:"range_buffer"`
	// PreferredFlankAngle is the absolute target-relative angle scored highest.
	PreferredFlankAngle float64 `mapstructure:"preferred_flank_angle"`
	AngleSigma          float64 `mapstructure:"angle_sigma"`
	AngleWeight         float64 `mapstructure:"angle_weight"`
	// RecentAttackerPenaltySeconds is how long after acquiring a slot an
	// agent's score stays suppressed.
	RecentAttackerPenaltySeconds float64 `mapstructure:"recent_attacker_penalty_seconds"`
}

// SelectionSettings configures the attacker selector.
type SelectionSettings struct {
	MinReassignInterval time.Duration `mapstructure:"min_reassign_interval"`
}

// PositioningSettings configures angle and stance assignment.
type PositioningSettings struct {
	RelocatePerTick  int     `mapstructure:"relocate_per_tick"`
	SeparationWeight float64 `mapstructure:"separation_weight"`
	// AngleHoldTime keeps a freshly relocated agent out of the relocation
	// pool so the same agents are not re-jittered every tick. While an agent
	// is held, the next closest idle agent relocates in its place. Zero
	// disables it and relocation is strictly closest-first every tick.
	AngleHoldTime time.Duration `mapstructure:"angle_hold_time"`
}

// PushbackSettings configures the retreat nudge.
type PushbackSettings struct {
	MaxRange      float64 `mapstructure:"max_range"`
	ConeSemiAngle float64 `mapstructure:"cone_semi_angle"`
	Dampening     float64 `mapstructure:"dampening"`
}

// Settings gathers every tunable of a group.
type Settings struct {
	Slots       SlotSettings        `mapstructure:"slots"`
	Tick        TickSettings        `mapstructure:"tick"`
	LineOfSight LineOfSightSettings `mapstructure:"line_of_sight"`
	Separation  SeparationSettings  `mapstructure:"separation"`
	Sectors     SectorSettings      `mapstructure:"sectors"`
	Scoring     ScoringSettings     `mapstructure:"scoring"`
	Selection   SelectionSettings   `mapstructure:"selection"`
	Positioning PositioningSettings `mapstructure:"positioning"`
	Pushback    PushbackSettings    `mapstructure:"pushback"`
}

// DefaultSettings returns the tuning used when nothing is configured.
// Its non-zero AngleHoldTime means relocation skips agents moved within the
// last 1.5 s instead of always taking the closest idle agents.
func DefaultSettings() Settings {
	return Settings{
		Slots: SlotSettings{Capacity: 2},
		Tick:  TickSettings{Interval: 200 * time.Millisecond},
		LineOfSight: LineOfSightSettings{
			EyeHeight: 1.6,
			Mask:      geom.AllLayers,
			TargetTag: "Player",
		},
		Separation: SeparationSettings{Radius: 1.5},
		Sectors: SectorSettings{
			Count:                12,
			PreferredMaxDistance: 6,
			ScanExtraDistance:    2,
			JitterDegrees:        8,
			AvoidFrontBias:       0.35,
		},
		Scoring: ScoringSettings{
			RangeBuffer:                  0.5,
			PreferredFlankAngle:          90,
			AngleSigma:                   45,
			AngleWeight:                  1.5,
			RecentAttackerPenaltySeconds: 2,
		},
		Selection: SelectionSettings{MinReassignInterval: 500 * time.Millisecond},
		Positioning: PositioningSettings{
			RelocatePerTick:  2,
			SeparationWeight: 0.6,
			AngleHoldTime:    1500 * time.Millisecond,
		},
		Pushback: PushbackSettings{
			MaxRange:      3,
			ConeSemiAngle: 30,
			Dampening:     0.7,
		},
	}
}
