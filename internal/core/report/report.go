package report

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/zeusync/strider/internal/core/creature"
	"github.com/zeusync/strider/internal/core/events/bus"
	"github.com/zeusync/strider/internal/core/gait"
	"github.com/zeusync/strider/internal/core/physics"
	"github.com/zeusync/strider/internal/core/systems"
)

const DefaultSamples = 2000

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
)

// Summary is what a Recorder has seen so far.
type Summary struct {
	SpiderID  string
	Ticks     uint64
	Flips     int
	Retargets int
	// Steps counts flips into each group.
	Steps     map[gait.Group]int
	Travelled float64
	PeakError float64
	LastError float64
}

// Recorder samples the combined gait error once per frame and counts gait
// events from the bus. It keeps at most capacity samples, dropping the oldest.
type Recorder struct {
	spider   *creature.Spider
	start    physics.Vec3
	capacity int

	mu        sync.Mutex
	samples   []float64
	flips     int
	retargets int
	steps     map[gait.Group]int
	peak      float64
	subs      []bus.Subscription
}

func NewRecorder(spider *creature.Spider, capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultSamples
	}
	return &Recorder{
		spider:   spider,
		start:    spider.Position(),
		capacity: capacity,
		steps:    make(map[gait.Group]int, 2),
	}
}

// Attach subscribes to the spider's gait events.
func (r *Recorder) Attach(b bus.EventBus) error {
	flipSub, err := b.Subscribe(creature.EventGaitFlipped, func(e bus.Event) error {
		flip, ok := e.Data().(creature.FlipEvent)
		if !ok || flip.SpiderID != r.spider.ID() {
			return nil
		}
		r.mu.Lock()
		r.flips++
		r.steps[flip.Active]++
		r.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	retargetSub, err := b.Subscribe(creature.EventLegRetargeted, func(e bus.Event) error {
		if rt, ok := e.Data().(creature.RetargetEvent); ok && rt.SpiderID == r.spider.ID() {
			r.mu.Lock()
			r.retargets++
			r.mu.Unlock()
		}
		return nil
	})
	if err != nil {
		_ = b.Unsubscribe(flipSub)
		return err
	}

	r.mu.Lock()
	r.subs = append(r.subs, flipSub, retargetSub)
	r.mu.Unlock()
	return nil
}

// Detach cancels the bus subscriptions made by Attach.
func (r *Recorder) Detach() {
	r.mu.Lock()
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()
	for _, s := range subs {
		_ = s.Cancel()
	}
}

func (r *Recorder) Name() string                  { return "report.recorder" }
func (r *Recorder) Phase() systems.ExecutionPhase { return systems.PhaseLateUpdate }
func (r *Recorder) Priority() systems.Priority    { return systems.PriorityLowest }

func (r *Recorder) Update(float64) error {
	r.Sample(r.spider.Controller().CombinedError())
	return nil
}

func (r *Recorder) Sample(e float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.samples) == r.capacity {
		copy(r.samples, r.samples[1:])
		r.samples = r.samples[:len(r.samples)-1]
	}
	r.samples = append(r.samples, e)
	if e > r.peak {
		r.peak = e
	}
}

// Samples returns a copy of the retained error history, oldest first.
func (r *Recorder) Samples() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]float64(nil), r.samples...)
}

func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		SpiderID:  r.spider.ID(),
		Ticks:     r.spider.Ticks(),
		Flips:     r.flips,
		Retargets: r.retargets,
		Steps:     make(map[gait.Group]int, len(r.steps)),
		Travelled: r.spider.Position().Sub(r.start).Len(),
		PeakError: r.peak,
	}
	for g, n := range r.steps {
		s.Steps[g] = n
	}
	if n := len(r.samples); n > 0 {
		s.LastError = r.samples[n-1]
	}
	return s
}

// Render draws the summary and, when there are samples, an error chart of the
// given height.
func (r *Recorder) Render(height int) string {
	sum := r.Summary()
	samples := r.Samples()

	var b strings.Builder
	b.WriteString(headerStyle.Render("spider "+sum.SpiderID) + "\n")
	if len(samples) > 0 {
		if height <= 0 {
			height = 8
		}
		chart := asciigraph.Plot(samples,
			asciigraph.Height(height),
			asciigraph.Width(60),
			asciigraph.Caption("combined gait error"),
		)
		b.WriteString(graphStyle.Render(chart) + "\n")
	}
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("ticks", fmt.Sprintf("%d", sum.Ticks))
	row("flips", fmt.Sprintf("%d (group1 %d, group2 %d)", sum.Flips, sum.Steps[gait.Group1], sum.Steps[gait.Group2]))
	row("retargets", fmt.Sprintf("%d", sum.Retargets))
	row("travelled", fmt.Sprintf("%.3f", sum.Travelled))
	row("peak error", fmt.Sprintf("%.3f", sum.PeakError))
	row("last error", fmt.Sprintf("%.3f", sum.LastError))
	return b.String()
}
