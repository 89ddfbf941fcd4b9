package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func entries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

type named string

func (n named) String() string { return "name:" + string(n) }

func TestFieldsAreEncoded(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelDebug, &buf)

	l.Info("gait flipped",
		String("spider", "s1"),
		Int("legs", 8),
		Uint64("tick", 42),
		Float64("combined", 12.5),
		Bool("parallel", true),
		Duration("took", 2*time.Millisecond),
		Stringer("active", named("g2")),
		Error(errors.New("boom")),
		Any("extra", []int{1, 2}),
	)

	got := entries(t, &buf)
	require.Len(t, got, 1)
	e := got[0]
	assert.Equal(t, "info", e["level"])
	assert.Equal(t, "gait flipped", e["msg"])
	assert.Equal(t, "s1", e["spider"])
	assert.Equal(t, 8.0, e["legs"])
	assert.Equal(t, 42.0, e["tick"])
	assert.Equal(t, 12.5, e["combined"])
	assert.Equal(t, true, e["parallel"])
	assert.Equal(t, "name:g2", e["active"])
	assert.Equal(t, "boom", e["error"])
	assert.Equal(t, 0.002, e["took"])
	assert.Equal(t, []any{1.0, 2.0}, e["extra"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelWarn, &buf)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Log(LevelInfo, "hidden")
	l.Log(LevelError, "shown")
	assert.Len(t, entries(t, &buf), 2)

	l.SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, l.GetLevel())
	l.Debug("now shown")
	assert.Len(t, entries(t, &buf), 3)
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(LevelInfo, &buf).With(String("component", "hub"))
	l.Info("client connected", String("client_id", "c1"))

	got := entries(t, &buf)
	require.Len(t, got, 1)
	assert.Equal(t, "hub", got[0]["component"])
	assert.Equal(t, "c1", got[0]["client_id"])
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug": LevelDebug, "INFO": LevelInfo, "": LevelInfo,
		"warning": LevelWarn, " error ": LevelError, "fatal": LevelFatal,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestLevelYAML(t *testing.T) {
	var cfg struct {
		Level Level `yaml:"level"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("level: warn"), &cfg))
	assert.Equal(t, LevelWarn, cfg.Level)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Equal(t, "level: warn\n", string(out))
}

func TestNopAndProvide(t *testing.T) {
	nop := NewNop()
	nop.Info("dropped")
	assert.NotNil(t, Provide())
}
