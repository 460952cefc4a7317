package display

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hupe1980/fxcore/pipeline"
)

var (
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#555")).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	editStyle   = lipgloss.NewStyle().Reverse(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e5c07b"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e06c75"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
)

const barWidth = 20

// Panel is a terminal front panel driven by notifications.
// It is safe for concurrent Notify and Render calls.
type Panel struct {
	names func(preset int) string

	mu         sync.Mutex
	preset     int
	loading    bool
	knobs      []float32
	editing    bool
	editKnob   int
	misses     uint64
	failures   int
	dropped    int
	lastError  string
	lastButton string
	updates    uint64
}

// NewPanel creates a panel for the given number of knobs. names resolves
// preset ids to display names and may be nil.
func NewPanel(knobs int, names func(preset int) string) *Panel {
	return &Panel{
		names:  names,
		preset: -1,
		knobs:  make([]float32, knobs),
	}
}

// Notify implements Sink.
func (p *Panel) Notify(n pipeline.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.updates++
	switch n.Kind {
	case pipeline.NotifyPresetLoaded:
		p.preset = n.Preset
		p.loading = false
		p.lastError = ""
	case pipeline.NotifyPresetLoadFailed:
		p.preset = n.Preset
		p.loading = false
		p.failures++
		if n.Err != nil {
			p.lastError = n.Err.Error()
		}
	case pipeline.NotifyKnobChanged, pipeline.NotifyEditValue:
		if n.Index >= 0 && n.Index < len(p.knobs) {
			p.knobs[n.Index] = n.Value
		}
	case pipeline.NotifyEditMode:
		p.editing = n.Value != 0
		p.editKnob = n.Index
	case pipeline.NotifyDeadlineMissed:
		p.misses += n.Count
	case pipeline.NotifySwitchDropped:
		p.dropped++
	case pipeline.NotifyButton:
		p.lastButton = fmt.Sprintf("B%d %s", n.Index+1, n.Events)
	}
}

// Loading marks a pending preset switch until the next load notification.
func (p *Panel) Loading() {
	p.mu.Lock()
	p.loading = true
	p.mu.Unlock()
}

// Updates returns the number of notifications seen.
func (p *Panel) Updates() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updates
}

// Preset returns the displayed preset id, -1 before the first load.
func (p *Panel) Preset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preset
}

// Knob returns the displayed value of knob i.
func (p *Panel) Knob(i int) float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.knobs) {
		return 0
	}
	return p.knobs[i]
}

// Editing reports whether edit mode is shown.
func (p *Panel) Editing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.editing
}

func bar(v float32) string {
	v = min(max(v, 0), 1)
	filled := int(v*barWidth + 0.5)
	return strings.Repeat("█", filled) + dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

// Render draws the panel.
func (p *Panel) Render() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var title string
	switch {
	case p.preset < 0:
		title = "booting"
	case p.names != nil:
		title = fmt.Sprintf("%02d %s", p.preset, p.names(p.preset))
	default:
		title = fmt.Sprintf("preset %02d", p.preset)
	}
	if p.loading {
		title += dimStyle.Render(" loading")
	}

	lines := []string{titleStyle.Render(title), ""}
	for i, v := range p.knobs {
		line := fmt.Sprintf("K%d %s %3.0f%%", i+1, bar(v), v*100)
		if p.editing && i == p.editKnob {
			line = editStyle.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "")

	status := statusStyle.Render(fmt.Sprintf("xruns %d  dropped %d", p.misses, p.dropped))
	if p.misses > 0 {
		status = warnStyle.Render(fmt.Sprintf("xruns %d", p.misses)) + statusStyle.Render(fmt.Sprintf("  dropped %d", p.dropped))
	}
	if p.lastButton != "" {
		status += statusStyle.Render("  " + p.lastButton)
	}
	lines = append(lines, status)
	if p.lastError != "" {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("load failed (%d): %s", p.failures, p.lastError)))
	}

	return frameStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
