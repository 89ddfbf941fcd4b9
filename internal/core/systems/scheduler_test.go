package systems

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/strider/internal/core/observability/log"
)

func recorder(calls *[]string, name string, phase ExecutionPhase, prio Priority) Func {
	return Func{
		SystemName:     name,
		SystemPhase:    phase,
		SystemPriority: prio,
		Fn: func(float64) error {
			*calls = append(*calls, name)
			return nil
		},
	}
}

func TestSchedulerRunsPhasesInOrder(t *testing.T) {
	var calls []string
	s := NewScheduler(nil)

	require.NoError(t, s.Register(recorder(&calls, "solve", PhasePostUpdate, PriorityNormal)))
	require.NoError(t, s.Register(recorder(&calls, "draw", PhaseLateUpdate, PriorityNormal)))
	require.NoError(t, s.Register(recorder(&calls, "gait", PhaseUpdate, PriorityNormal)))
	require.NoError(t, s.Register(recorder(&calls, "move", PhasePreUpdate, PriorityNormal)))
	require.NoError(t, s.Register(recorder(&calls, "urgent-gait", PhaseUpdate, PriorityHigh)))

	require.NoError(t, s.Update(1.0/60))

	want := []string{"move", "urgent-gait", "gait", "solve", "draw"}
	assert.Equal(t, want, calls)
	assert.Equal(t, want, s.ExecutionOrder())
	assert.Equal(t, uint64(1), s.Frames())
}

func TestSchedulerRejectsDuplicates(t *testing.T) {
	var calls []string
	s := NewScheduler(nil)
	require.NoError(t, s.Register(recorder(&calls, "a", PhaseUpdate, PriorityNormal)))
	assert.ErrorIs(t, s.Register(recorder(&calls, "a", PhaseUpdate, PriorityNormal)), ErrAlreadyRegistered)
	assert.ErrorIs(t, s.Unregister("b"), ErrNotRegistered)
	assert.ErrorIs(t, s.SetEnabled("b", false), ErrNotRegistered)
}

func TestSchedulerSkipsDisabled(t *testing.T) {
	var calls []string
	s := NewScheduler(nil)
	require.NoError(t, s.Register(recorder(&calls, "a", PhaseUpdate, PriorityNormal)))
	require.NoError(t, s.Register(recorder(&calls, "b", PhaseUpdate, PriorityNormal)))
	require.NoError(t, s.SetEnabled("a", false))

	require.NoError(t, s.Update(0.1))
	assert.Equal(t, []string{"b"}, calls)

	require.NoError(t, s.Unregister("b"))
	require.NoError(t, s.Update(0.1))
	assert.Equal(t, []string{"b"}, calls)
}

func TestSchedulerCollectsErrorsAndMetrics(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	s := NewScheduler(nil)
	require.NoError(t, s.Register(Func{SystemName: "bad", SystemPhase: PhasePreUpdate, Fn: func(float64) error { return boom }}))
	require.NoError(t, s.Register(Func{SystemName: "good", SystemPhase: PhaseUpdate, Fn: func(float64) error { ran = true; return nil }}))

	err := s.Update(0.1)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran, "later systems still run")

	m, ok := s.Metrics("bad")
	require.True(t, ok)
	assert.Equal(t, uint64(1), m.ExecutionCount)
	assert.Equal(t, uint64(1), m.ErrorCount)
	assert.ErrorIs(t, m.LastError, boom)

	m, ok = s.Metrics("good")
	require.True(t, ok)
	assert.Zero(t, m.ErrorCount)

	_, ok = s.Metrics("missing")
	assert.False(t, ok)
}

func TestSchedulerLogsFailedUpdate(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(log.NewWithWriter(log.LevelWarn, &buf))
	require.NoError(t, s.Register(Func{SystemName: "bad", SystemPhase: PhaseUpdate, Fn: func(float64) error { return errors.New("boom") }}))

	assert.Error(t, s.Update(0.1))
	assert.Error(t, s.Update(0.1))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "system update failed", entry["msg"])
	assert.Equal(t, "bad", entry["system"])
	assert.Equal(t, float64(1), entry["frame"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "elapsed")
}
