package encounter

import (
	"fmt"
	"os"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/horde/internal/game/arena"
	"github.com/cory-johannsen/horde/internal/game/geom"
)

const (
	defaultTargetRadius   = 0.4
	defaultTargetHeight   = 1.8
	defaultFrontArc       = 60
	defaultAttackInterval = 1.5
	defaultReleaseWhen    = "HeldFor >= 3"
	defaultRetreat        = 2.0
	defaultStrikeInterval = 1.0
	defaultStrikeDamage   = 1
)

// Point is an [x, y, z] triple in scenario YAML.
type Point [3]float64

// Vec returns p as a vector.
func (p Point) Vec() geom.Vec3 { return geom.Vec3{X: p[0], Y: p[1], Z: p[2]} }

// TargetSpec describes the contested entity.
type TargetSpec struct {
	Position Point `yaml:"position"`
	Forward  Point `yaml:"forward"`
	// Tag is the target collider's tag. Empty uses the configured line of sight tag.
	Tag    string  `yaml:"tag"`
	Radius float64 `yaml:"radius"`
	Height float64 `yaml:"height"`
	Layer  int     `yaml:"layer"`
	// MaxHP of zero makes the target invulnerable.
	MaxHP int `yaml:"max_hp"`
	// Waypoints are visited in order at Speed, looping.
	Waypoints []Point `yaml:"waypoints"`
	Speed     float64 `yaml:"speed"`
	// Damage is dealt to the nearest attacker in front of the target every
	// AttackInterval seconds. Zero disables retaliation.
	Damage         int     `yaml:"damage"`
	Reach          float64 `yaml:"reach"`
	FrontArc       float64 `yaml:"front_arc"`
	AttackInterval float64 `yaml:"attack_interval"`
}

// AgentSpec places Count combatants of one profile in a row along +X from
// Position, Spacing metres apart.
type AgentSpec struct {
	Profile  string  `yaml:"profile"`
	Position Point   `yaml:"position"`
	Facing   Point   `yaml:"facing"`
	Count    int     `yaml:"count"`
	Spacing  float64 `yaml:"spacing"`
}

// BehaviorSpec drives slot holders.
type BehaviorSpec struct {
	// ReleaseWhen is an expr-lang boolean over ReleaseEnv. A holder gives its
	// slot back as soon as it evaluates true.
	ReleaseWhen     string  `yaml:"release_when"`
	RetreatDistance float64 `yaml:"retreat_distance"`
	StrikeInterval  float64 `yaml:"strike_interval"`
	StrikeDamage    int     `yaml:"strike_damage"`
}

// Scenario is the YAML definition of an encounter.
type Scenario struct {
	ID        string               `yaml:"id"`
	Name      string               `yaml:"name"`
	Target    TargetSpec           `yaml:"target"`
	Colliders []arena.ColliderSpec `yaml:"colliders"`
	Agents    []AgentSpec          `yaml:"agents"`
	Behavior  BehaviorSpec         `yaml:"behavior"`
}

// ReleaseEnv is the environment a release_when rule sees.
type ReleaseEnv struct {
	// HeldFor is seconds since the slot was acquired.
	HeldFor float64
	// Distance is the horizontal distance to the target.
	Distance    float64
	AttackRange float64
	Now         float64
	// Strikes landed during this hold.
	Strikes int
	// Health is the fraction of hit points left.
	Health float64
}

func compileRelease(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.Env(ReleaseEnv{}), expr.AsBool())
}

func (s *Scenario) applyDefaults() {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Target.Radius == 0 {
		s.Target.Radius = defaultTargetRadius
	}
	if s.Target.Height == 0 {
		s.Target.Height = defaultTargetHeight
	}
	if s.Target.FrontArc == 0 {
		s.Target.FrontArc = defaultFrontArc
	}
	if s.Target.AttackInterval == 0 {
		s.Target.AttackInterval = defaultAttackInterval
	}
	for i := range s.Agents {
		if s.Agents[i].Count == 0 {
			s.Agents[i].Count = 1
		}
	}
	if strings.TrimSpace(s.Behavior.ReleaseWhen) == "" {
		s.Behavior.ReleaseWhen = defaultReleaseWhen
	}
	if s.Behavior.RetreatDistance == 0 {
		s.Behavior.RetreatDistance = defaultRetreat
	}
	if s.Behavior.StrikeInterval == 0 {
		s.Behavior.StrikeInterval = defaultStrikeInterval
	}
	if s.Behavior.StrikeDamage == 0 {
		s.Behavior.StrikeDamage = defaultStrikeDamage
	}
}

// Validate checks the scenario after defaults are applied.
//
// Postcondition: Returns nil if valid, or an error describing every violation.
func (s *Scenario) Validate() error {
	var errs []string
	t := s.Target
	if t.Radius < 0 || t.Height < 0 {
		errs = append(errs, "target radius and height must not be negative")
	}
	if t.Layer < 0 || t.Layer > 31 {
		errs = append(errs, fmt.Sprintf("target layer must be 0-31, got %d", t.Layer))
	}
	if t.MaxHP < 0 || t.Damage < 0 {
		errs = append(errs, "target max_hp and damage must not be negative")
	}
	if t.Speed < 0 || t.Reach < 0 || t.AttackInterval < 0 {
		errs = append(errs, "target speed, reach and attack_interval must not be negative")
	}
	if t.FrontArc < 0 || t.FrontArc > 180 {
		errs = append(errs, fmt.Sprintf("target front_arc must be 0-180, got %g", t.FrontArc))
	}

	ids := map[string]bool{targetColliderID: true}
	for i, cs := range s.Colliders {
		if _, err := cs.Collider(); err != nil {
			errs = append(errs, fmt.Sprintf("colliders[%d]: %v", i, err))
			continue
		}
		if ids[cs.ID] {
			errs = append(errs, fmt.Sprintf("colliders[%d]: duplicate id %q", i, cs.ID))
		}
		ids[cs.ID] = true
	}

	if len(s.Agents) == 0 {
		errs = append(errs, "at least one agent group is required")
	}
	for i, a := range s.Agents {
		if a.Profile == "" {
			errs = append(errs, fmt.Sprintf("agents[%d]: profile must not be empty", i))
		}
		if a.Count < 0 || a.Spacing < 0 {
			errs = append(errs, fmt.Sprintf("agents[%d]: count and spacing must not be negative", i))
		}
	}

	b := s.Behavior
	if _, err := compileRelease(b.ReleaseWhen); err != nil {
		errs = append(errs, fmt.Sprintf("behavior.release_when: %v", err))
	}
	if b.RetreatDistance < 0 || b.StrikeInterval < 0 || b.StrikeDamage < 0 {
		errs = append(errs, "behavior retreat_distance, strike_interval and strike_damage must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("scenario %q: %s", s.ID, strings.Join(errs, "; "))
	}
	return nil
}

// LoadScenarioFromBytes parses, defaults and validates a scenario.
//
// Postcondition: Returns a valid *Scenario or a non-nil error.
func LoadScenarioFromBytes(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads a scenario file.
//
// Postcondition: Returns a valid *Scenario or a non-nil error.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}
	s, err := LoadScenarioFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %s: %w", path, err)
	}
	return s, nil
}
