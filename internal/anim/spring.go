package anim

import (
	"errors"
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
)

// DefaultStiffness matches the stiffness used by the scene scripts.
const DefaultStiffness = 100.0

// restThreshold is the displacement and velocity under which a spring is
// considered settled and reported as exactly 1.
const restThreshold = 1e-4

// ErrInvalidSpring is returned for non-positive damping, mass or stiffness.
var ErrInvalidSpring = errors.New("invalid spring config")

// SpringConfig describes a damped spring pulling progress from 0 to 1.
type SpringConfig struct {
	DampingRatio float64 `yaml:"damping_ratio"`
	Mass         float64 `yaml:"mass"`
	Stiffness    float64 `yaml:"stiffness,omitempty"` // 0 means DefaultStiffness
}

// FromDamping converts a damping coefficient (force per unit velocity) into
// a SpringConfig with the default stiffness. Overdamped coefficients are
// reported as critically damped, the way the scene scripts' spring behaves.
func FromDamping(damping, mass float64) SpringConfig {
	cfg := SpringConfig{Mass: mass}
	if mass > 0 {
		cfg.DampingRatio = math.Min(1, damping/(2*math.Sqrt(DefaultStiffness*mass)))
	}
	return cfg
}

// Spring is a validated SpringConfig. The zero value is not usable.
type Spring struct {
	cfg   SpringConfig
	omega float64 // natural angular frequency, rad/s
}

// NewSpring validates cfg. Invalid parameters are a configuration defect
// and are reported here rather than at evaluation time.
func NewSpring(cfg SpringConfig) (Spring, error) {
	if cfg.Stiffness == 0 {
		cfg.Stiffness = DefaultStiffness
	}
	if !(cfg.DampingRatio > 0) || !(cfg.Mass > 0) || !(cfg.Stiffness > 0) {
		return Spring{}, fmt.Errorf("%w: damping_ratio=%v mass=%v stiffness=%v",
			ErrInvalidSpring, cfg.DampingRatio, cfg.Mass, cfg.Stiffness)
	}
	return Spring{cfg: cfg, omega: math.Sqrt(cfg.Stiffness / cfg.Mass)}, nil
}

// MustSpring is NewSpring for package-level constants.
func MustSpring(cfg SpringConfig) Spring {
	s, err := NewSpring(cfg)
	if err != nil {
		panic(err)
	}
	return s
}

// Config returns the validated parameters.
func (s Spring) Config() SpringConfig {
	return s.cfg
}

// Progress returns the spring position elapsedFrames after its trigger,
// starting at rest at 0 and pulled towards 1. The result depends only on
// the arguments: the trajectory is re-integrated from the trigger on every
// call using harmonica's exact per-step solution.
func (s Spring) Progress(elapsedFrames float64, fps int) float64 {
	if !(elapsedFrames > 0) || fps <= 0 || s.omega == 0 {
		return 0
	}

	whole := math.Floor(elapsedFrames)
	frac := elapsedFrames - whole

	step := harmonica.NewSpring(harmonica.FPS(fps), s.omega, s.cfg.DampingRatio)
	pos, vel := 0.0, 0.0
	for i := 0; i < int(whole); i++ {
		pos, vel = step.Update(pos, vel, 1)
		if math.Abs(1-pos) < restThreshold && math.Abs(vel) < restThreshold {
			return 1
		}
	}

	if frac > 0 {
		partial := harmonica.NewSpring(frac/float64(fps), s.omega, s.cfg.DampingRatio)
		pos, _ = partial.Update(pos, vel, 1)
	}
	return pos
}

// SettleFrames returns the first frame at which the spring reports exactly 1,
// or limit if it has not settled by then.
func (s Spring) SettleFrames(fps, limit int) int {
	for f := 0; f < limit; f++ {
		if s.Progress(float64(f), fps) == 1 {
			return f
		}
	}
	return limit
}
