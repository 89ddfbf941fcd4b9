package creature

import (
	"errors"
	"fmt"

	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/ik"
)

var ErrInvalidConfig = errors.New("invalid creature config")

// DefaultMoveSpeed is the body speed in units per second at full input.
const DefaultMoveSpeed = 6.0

// Config holds the creature tunables.
type Config struct {
	Iterations     int     `yaml:"iterations"`
	BendEpsilon    float64 `yaml:"bend_epsilon"`
	ErrorThreshold float64 `yaml:"error_threshold"`
	MoveSpeed      float64 `yaml:"move_speed"`
	// Parallelism above 1 solves legs concurrently after the gait step.
	Parallelism int    `yaml:"parallelism"`
	Layout      Layout `yaml:"layout"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:     ik.DefaultIterations,
		BendEpsilon:    ik.DefaultBendEpsilon,
		ErrorThreshold: gait.DefaultErrorThreshold,
		MoveSpeed:      DefaultMoveSpeed,
		Parallelism:    1,
		Layout:         DefaultLayout(),
	}
}

func (c Config) Validate() error {
	switch {
	case c.Iterations < 0:
		return fmt.Errorf("%w: iterations must not be negative", ErrInvalidConfig)
	case c.BendEpsilon < 0:
		return fmt.Errorf("%w: bend_epsilon must not be negative", ErrInvalidConfig)
	case c.ErrorThreshold <= 0:
		return fmt.Errorf("%w: error_threshold must be positive", ErrInvalidConfig)
	case c.MoveSpeed < 0:
		return fmt.Errorf("%w: move_speed must not be negative", ErrInvalidConfig)
	case c.Parallelism < 0:
		return fmt.Errorf("%w: parallelism must not be negative", ErrInvalidConfig)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Solver builds the IK solver these tunables describe.
func (c Config) Solver() ik.Solver {
	s := ik.DefaultSolver()
	s.Iterations = c.Iterations
	s.BendEpsilon = c.BendEpsilon
	return s
}
