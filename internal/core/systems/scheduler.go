package systems

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/zeusync/strider/internal/core/observability/log"
)

var (
	ErrAlreadyRegistered = errors.New("system already registered")
	ErrNotRegistered     = errors.New("system not registered")
)

type entry struct {
	system  System
	enabled bool
	order   int
	metrics Metrics
}

// Scheduler runs registered systems phase by phase. A failing system does not
// stop the frame; its error is recorded and all errors are joined in the result.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
	ordered []*entry
	nextID  int
	frames  uint64
	logger  log.Log
}

func NewScheduler(logger log.Log) *Scheduler {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Scheduler{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Register adds a system enabled.
func (s *Scheduler) Register(sys System) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[sys.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, sys.Name())
	}
	e := &entry{system: sys, enabled: true, order: s.nextID}
	s.nextID++
	s.entries[sys.Name()] = e
	s.ordered = append(s.ordered, e)
	s.sortLocked()

	s.logger.Debug("system registered",
		log.String("system", sys.Name()),
		log.Stringer("phase", sys.Phase()),
	)
	return nil
}

func (s *Scheduler) Unregister(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	delete(s.entries, name)
	for i, o := range s.ordered {
		if o == e {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Scheduler) SetEnabled(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, name)
	}
	e.enabled = enabled
	return nil
}

// Update runs one frame.
func (s *Scheduler) Update(deltaTime float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, e := range s.ordered {
		if !e.enabled {
			continue
		}
		start := time.Now()
		err := e.system.Update(deltaTime)
		elapsed := time.Since(start)
		e.metrics.record(elapsed, err)
		if err != nil {
			s.logger.Warn("system update failed",
				log.String("system", e.system.Name()),
				log.Uint64("frame", s.frames),
				log.Duration("elapsed", elapsed),
				log.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	s.frames++
	return errors.Join(errs...)
}

// ExecutionOrder lists enabled and disabled systems in the order Update visits them.
func (s *Scheduler) ExecutionOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.ordered))
	for i, e := range s.ordered {
		out[i] = e.system.Name()
	}
	return out
}

func (s *Scheduler) Metrics(name string) (Metrics, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

func (s *Scheduler) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Scheduler) sortLocked() {
	sort.SliceStable(s.ordered, func(i, j int) bool {
		a, b := s.ordered[i], s.ordered[j]
		if a.system.Phase() != b.system.Phase() {
			return a.system.Phase() < b.system.Phase()
		}
		if a.system.Priority() != b.system.Priority() {
			return a.system.Priority() > b.system.Priority()
		}
		return a.order < b.order
	})
}
