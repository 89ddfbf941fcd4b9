package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/strider/internal/core/audio"
	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/debug"
	"github.com/zeusync/strider/internal/core/input"
	"github.com/zeusync/strider/internal/core/observability/log"
	"github.com/zeusync/strider/internal/core/report"
	"github.com/zeusync/strider/internal/server"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of tunables for a run.
type Config struct {
	Log        LogConfig        `yaml:"log"`
	Simulation SimulationConfig `yaml:"simulation"`
	Creature   creature.Config  `yaml:"creature"`
	Server     server.Config    `yaml:"server"`
	Debug      DebugConfig      `yaml:"debug"`
	Audio      audio.Config     `yaml:"audio"`
	Report     ReportConfig     `yaml:"report"`
}

type LogConfig struct {
	Level log.Level `yaml:"level"`
	// File receives logs instead of stderr when set. The terminal viewer
	// needs this since it owns the screen.
	File string `yaml:"file"`
}

type SimulationConfig struct {
	TickRate float64 `yaml:"tick_rate"`
	// Ticks stops the run after that many ticks; 0 runs until interrupted.
	Ticks uint64 `yaml:"ticks"`
	// Walk holds movement keys ("wd") applied every tick when no viewer
	// supplies input.
	Walk string `yaml:"walk"`
}

// Interval is the wall-clock period of one tick.
func (s SimulationConfig) Interval() time.Duration {
	return time.Duration(float64(time.Second) / s.TickRate)
}

// Delta is the simulated seconds per tick.
func (s SimulationConfig) Delta() float64 {
	return 1 / s.TickRate
}

type DebugConfig struct {
	View   bool             `yaml:"view"`
	Gizmos debug.Flags      `yaml:"gizmos"`
	Screen debug.ViewConfig `yaml:"screen"`
}

// ReportConfig controls the gait summary printed after a run.
type ReportConfig struct {
	Enabled bool `yaml:"enabled"`
	Samples int  `yaml:"samples"`
	Height  int  `yaml:"height"`
}

func Default() Config {
	return Config{
		Log: LogConfig{Level: log.LevelInfo},
		Simulation: SimulationConfig{
			TickRate: 60,
		},
		Creature: creature.DefaultConfig(),
		Server:   server.DefaultConfig(),
		Debug: DebugConfig{
			Gizmos: debug.AllFlags(),
			Screen: debug.DefaultViewConfig(),
		},
		Audio: audio.DefaultConfig(),
		Report: ReportConfig{
			Samples: report.DefaultSamples,
			Height:  8,
		},
	}
}

// LoadYAML decodes r over the defaults. An empty document yields the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, nil
}

// LoadFile reads a YAML file. An empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadYAML(f)
}

// Load reads path, applies .env files and the process environment, then
// validates the result.
func Load(path string, envFiles ...string) (Config, error) {
	c, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := LoadDotEnv(envFiles...); err != nil {
		return Config{}, err
	}
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Simulation.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: simulation.tick_rate must be positive", ErrInvalidConfig))
	}
	if _, err := input.ParseKeys(c.Simulation.Walk); err != nil {
		errs = append(errs, fmt.Errorf("%w: simulation.walk: %w", ErrInvalidConfig, err))
	}
	if err := c.Creature.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: creature: %w", ErrInvalidConfig, err))
	}
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: server: %w", ErrInvalidConfig, err))
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalidConfig))
	}
	if c.Report.Enabled && c.Report.Samples <= 0 {
		errs = append(errs, fmt.Errorf("%w: report.samples must be positive", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
