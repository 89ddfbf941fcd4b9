package debug

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/zeusync/strider/internal/core/input"
	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/internal/core/protocol"
)

// DefaultHold is how long a key counts as held after its last repeat.
// Terminals report presses only, so holding relies on auto-repeat.
const DefaultHold = 150 * time.Millisecond

// ViewConfig tunes the terminal viewer.
type ViewConfig struct {
	// Scale is rows per world unit; columns use twice that.
	Scale float64       `yaml:"scale"`
	Hold  time.Duration `yaml:"hold"`
}

func DefaultViewConfig() ViewConfig {
	return ViewConfig{Scale: 2, Hold: DefaultHold}
}

var shapeStyles = map[Color]tcell.Style{
	ColorJoint:   tcell.StyleDefault.Foreground(tcell.ColorYellow),
	ColorSegment: tcell.StyleDefault.Foreground(tcell.ColorGray),
	ColorTarget:  tcell.StyleDefault.Foreground(tcell.ColorRed),
	ColorBody:    tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
	ColorAxisX:   tcell.StyleDefault.Foreground(tcell.ColorRed),
	ColorAxisY:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
	ColorAxisZ:   tcell.StyleDefault.Foreground(tcell.ColorBlue),
}

var shapeRunes = map[Color]rune{
	ColorJoint:   'o',
	ColorSegment: '.',
	ColorTarget:  'x',
	ColorBody:    '@',
	ColorAxisX:   '-',
	ColorAxisY:   '|',
	ColorAxisZ:   '/',
}

// TerminalView draws a top-down XZ projection of the recorded gizmos centred on
// the body, plus a status line, and turns key presses into movement keys.
type TerminalView struct {
	screen tcell.Screen
	cfg    ViewConfig
	now    func() time.Time

	mu      sync.Mutex
	pressed map[input.Keys]time.Time
}

// NewTerminalView initialises screen and takes ownership of it.
func NewTerminalView(screen tcell.Screen, cfg ViewConfig) (*TerminalView, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init terminal: %w", err)
	}
	if cfg.Scale <= 0 {
		cfg.Scale = DefaultViewConfig().Scale
	}
	if cfg.Hold <= 0 {
		cfg.Hold = DefaultHold
	}
	screen.Clear()
	return &TerminalView{
		screen:  screen,
		cfg:     cfg,
		now:     time.Now,
		pressed: make(map[input.Keys]time.Time),
	}, nil
}

// Events forwards screen events until the screen is finalised.
func (v *TerminalView) Events() <-chan tcell.Event {
	ch := make(chan tcell.Event, 100)
	go func() {
		defer close(ch)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			ch <- ev
		}
	}()
	return ch
}

// HandleEvent records movement keys and reports whether the viewer should quit.
func (v *TerminalView) HandleEvent(ev tcell.Event) (quit bool) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyUp:
			v.press(input.KeyW)
		case tcell.KeyDown:
			v.press(input.KeyS)
		case tcell.KeyLeft:
			v.press(input.KeyA)
		case tcell.KeyRight:
			v.press(input.KeyD)
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return true
			}
			if k, ok := input.FromRune(ev.Rune()); ok {
				v.press(k)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return false
}

// Keys returns the keys pressed within the hold window.
func (v *TerminalView) Keys() input.Keys {
	v.mu.Lock()
	defer v.mu.Unlock()

	now := v.now()
	var keys input.Keys
	for k, at := range v.pressed {
		if now.Sub(at) <= v.cfg.Hold {
			keys = keys.Press(k)
		} else {
			delete(v.pressed, k)
		}
	}
	return keys
}

// Draw renders one frame.
func (v *TerminalView) Draw(pose protocol.Pose, shapes []Shape) {
	v.screen.Clear()
	w, h := v.screen.Size()
	center := physics.Vec3(pose.Body)

	// lines first so points stay visible on top
	for _, s := range shapes {
		if s.Kind != KindSphere {
			x0, y0 := v.project(s.From, center, w, h)
			x1, y1 := v.project(s.To, center, w, h)
			v.line(x0, y0, x1, y1, s.Color)
		}
	}
	for _, s := range shapes {
		if s.Kind == KindSphere {
			x, y := v.project(s.From, center, w, h)
			v.put(x, y, s.Color)
		}
	}

	status := fmt.Sprintf(" tick %d  active %d  error %.2f  keys %s  (wasd/arrows, q quits)",
		pose.Tick, pose.Active, pose.Error, v.Keys())
	for i, r := range status {
		if i >= w {
			break
		}
		v.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Reverse(true))
	}

	v.screen.Show()
}

// Close restores the terminal. Events stops afterwards.
func (v *TerminalView) Close() {
	v.screen.Fini()
}

func (v *TerminalView) press(k input.Keys) {
	v.mu.Lock()
	v.pressed[k] = v.now()
	v.mu.Unlock()
}

func (v *TerminalView) project(p, center physics.Vec3, w, h int) (int, int) {
	dx := (p[0] - center[0]) * v.cfg.Scale * 2
	dz := (p[2] - center[2]) * v.cfg.Scale
	return w/2 + int(math.Round(dx)), h/2 + int(math.Round(dz))
}

func (v *TerminalView) put(x, y int, c Color) {
	w, h := v.screen.Size()
	// row 0 holds the status line
	if x < 0 || y < 1 || x >= w || y >= h {
		return
	}
	v.screen.SetContent(x, y, shapeRunes[c], nil, shapeStyles[c])
}

func (v *TerminalView) line(x0, y0, x1, y1 int, c Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		v.put(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
