package systems

import (
	"time"
)

// System is one step of the per-frame pipeline. The scheduler calls Update once
// per frame, grouped by phase and ordered by priority inside a phase.
type System interface {
	Name() string
	Phase() ExecutionPhase
	Priority() Priority
	Update(deltaTime float64) error
}

// Priority orders systems within a phase; higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a frame.
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhasePostUpdate
	PhaseLateUpdate
)

// Phases lists every phase in execution order.
var Phases = []ExecutionPhase{PhasePreUpdate, PhaseUpdate, PhasePostUpdate, PhaseLateUpdate}

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseLateUpdate:
		return "late-update"
	default:
		return "unknown"
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount       uint64
	TotalExecutionTime   time.Duration
	AverageExecutionTime time.Duration
	MaxExecutionTime     time.Duration
	LastExecutionTime    time.Duration
	ErrorCount           uint64
	LastError            error
}

func (m *Metrics) record(elapsed time.Duration, err error) {
	m.ExecutionCount++
	m.TotalExecutionTime += elapsed
	m.AverageExecutionTime = m.TotalExecutionTime / time.Duration(m.ExecutionCount)
	m.LastExecutionTime = elapsed
	if elapsed > m.MaxExecutionTime {
		m.MaxExecutionTime = elapsed
	}
	if err != nil {
		m.ErrorCount++
		m.LastError = err
	}
}

// Func adapts a plain function into a System.
type Func struct {
	SystemName     string
	SystemPhase    ExecutionPhase
	SystemPriority Priority
	Fn             func(deltaTime float64) error
}

func (f Func) Name() string                   { return f.SystemName }
func (f Func) Phase() ExecutionPhase          { return f.SystemPhase }
func (f Func) Priority() Priority             { return f.SystemPriority }
func (f Func) Update(deltaTime float64) error { return f.Fn(deltaTime) }
