package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/events/bus"
	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/observability/log"
)

var ErrDisabled = errors.New("audio disabled")

// Config for the footstep cue.
type Config struct {
	Enabled    bool          `yaml:"enabled"`
	SampleRate int           `yaml:"sample_rate"`
	Duration   time.Duration `yaml:"duration"`
	// Group1Hz and Group2Hz pick a pitch per movement group so the alternation
	// is audible.
	Group1Hz float64 `yaml:"group1_hz"`
	Group2Hz float64 `yaml:"group2_hz"`
	// Volume is in beep's exponential units; 0 is unchanged, -1 halves.
	Volume float64 `yaml:"volume"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		SampleRate: 44100,
		Duration:   40 * time.Millisecond,
		Group1Hz:   440,
		Group2Hz:   660,
		Volume:     -1,
	}
}

// Player plays a finished streamer. speaker.Play satisfies it.
type Player func(s ...beep.Streamer)

// Footsteps plays a short tone each time a movement group re-plants.
type Footsteps struct {
	cfg    Config
	rate   beep.SampleRate
	play   Player
	logger log.Log

	mu     sync.Mutex
	played uint64
	sub    bus.Subscription
	opened bool
}

// NewFootsteps opens the speaker. A failure is returned so the caller can log
// it and carry on silently.
func NewFootsteps(cfg Config, logger log.Log) (*Footsteps, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	rate := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	f := newFootsteps(cfg, speaker.Play, logger)
	f.opened = true
	return f, nil
}

func newFootsteps(cfg Config, play Player, logger log.Log) *Footsteps {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Footsteps{
		cfg:    cfg,
		rate:   beep.SampleRate(cfg.SampleRate),
		play:   play,
		logger: logger,
	}
}

// Attach subscribes the cue to gait flips.
func (f *Footsteps) Attach(b bus.EventBus) error {
	sub, err := b.Subscribe(creature.EventGaitFlipped, func(e bus.Event) error {
		flip, ok := e.Data().(creature.FlipEvent)
		if !ok {
			return nil
		}
		return f.Step(flip.Active)
	})
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.sub = sub
	f.mu.Unlock()
	return nil
}

// Step plays the tone for group.
func (f *Footsteps) Step(group gait.Group) error {
	freq := f.cfg.Group1Hz
	if group == gait.Group2 {
		freq = f.cfg.Group2Hz
	}
	tone, err := generators.SineTone(f.rate, freq)
	if err != nil {
		f.logger.Warn("footstep tone", log.Error(err), log.Float64("hz", freq))
		return nil
	}

	f.play(&effects.Volume{
		Streamer: beep.Take(f.rate.N(f.cfg.Duration), tone),
		Base:     2,
		Volume:   f.cfg.Volume,
	})

	f.mu.Lock()
	f.played++
	f.mu.Unlock()
	return nil
}

func (f *Footsteps) Played() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.played
}

// Close unsubscribes and releases the speaker when it was opened by NewFootsteps.
func (f *Footsteps) Close() {
	f.mu.Lock()
	sub, opened := f.sub, f.opened
	f.sub, f.opened = nil, false
	f.mu.Unlock()
	if sub != nil {
		_ = sub.Cancel()
	}
	if opened {
		speaker.Close()
	}
}
