package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/zeusync/strider/internal/core/observability/log"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STRIDER_"

// LoadDotEnv loads the given files into the process environment without
// overriding variables that are already set. Missing files are skipped; with
// no arguments ".env" is tried.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from STRIDER_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	get := func(name string) (string, bool) {
		return lookup(EnvPrefix + name)
	}
	parseFloat := func(name string, dst *float64) {
		if v, ok := get(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	parseInt := func(name string, dst *int) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	parseBool := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s: %w", ErrInvalidConfig, EnvPrefix, name, err))
				return
			}
			*dst = b
		}
	}

	if v, ok := get("LOG_LEVEL"); ok {
		level, err := log.ParseLevel(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		} else {
			c.Log.Level = level
		}
	}
	if v, ok := get("LOG_FILE"); ok {
		c.Log.File = v
	}
	parseFloat("TICK_RATE", &c.Simulation.TickRate)
	if v, ok := get("TICKS"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %sTICKS: %w", ErrInvalidConfig, EnvPrefix, err))
		} else {
			c.Simulation.Ticks = n
		}
	}
	if v, ok := get("WALK"); ok {
		c.Simulation.Walk = v
	}

	parseInt("ITERATIONS", &c.Creature.Iterations)
	parseFloat("BEND_EPSILON", &c.Creature.BendEpsilon)
	parseFloat("ERROR_THRESHOLD", &c.Creature.ErrorThreshold)
	parseFloat("MOVE_SPEED", &c.Creature.MoveSpeed)
	parseInt("PARALLELISM", &c.Creature.Parallelism)

	parseBool("SERVER_ENABLED", &c.Server.Enabled)
	if v, ok := get("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	parseBool("DEBUG_VIEW", &c.Debug.View)
	parseBool("AUDIO_ENABLED", &c.Audio.Enabled)
	parseBool("REPORT_ENABLED", &c.Report.Enabled)

	return errors.Join(errs...)
}
