package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/sim"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	StatusRunning = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusPaused = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

var kindStyles = map[event.Kind]lipgloss.Style{
	event.KindStopRolling: lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")),
	event.KindHitBall:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")),
	event.KindHitCushion:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00")),
	event.KindHitPocket:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true),
}

// KindLabel renders an event kind in its colour.
func KindLabel(k event.Kind) string {
	st, ok := kindStyles[k]
	if !ok {
		return k.String()
	}
	return st.Render(k.String())
}

// Describe names the participants of an event by ball id. balls is the
// arena the event indexes into.
func Describe(ev event.Event, balls []sim.Snapshot) string {
	id := func(i int) int {
		if i < 0 || i >= len(balls) {
			return -1
		}
		return balls[i].ID
	}
	switch ev.Kind {
	case event.KindStopRolling:
		return fmt.Sprintf("ball %d stops", id(ev.Ball))
	case event.KindHitBall:
		return fmt.Sprintf("ball %d hits ball %d", id(ev.Ball), id(ev.Other))
	case event.KindHitCushion:
		return fmt.Sprintf("ball %d hits cushion %d", id(ev.Ball), ev.Cushion)
	case event.KindHitPocket:
		return fmt.Sprintf("ball %d drops in pocket %d", id(ev.Ball), ev.Pocket)
	}
	return ev.Kind.String()
}

// EventTable lists the records of a result, one line per event.
func EventTable(r *sim.Result) string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(fmt.Sprintf("%-5s %-10s %-12s %s", "STEP", "TIME", "KIND", "DETAIL")) + "\n")
	for _, rec := range r.Records {
		kind := fmt.Sprintf("%-12s", rec.Event.Kind)
		if st, ok := kindStyles[rec.Event.Kind]; ok {
			kind = st.Render(kind)
		}
		fmt.Fprintf(&b, "%-5d %-10.4f %s %s\n", rec.Step, rec.Time, kind, Describe(rec.Event, rec.Balls))
	}
	return b.String()
}

// ProgressBar renders a fraction in [0, 1] as a bar of width cells.
func ProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if percent > 0.8 {
		return SparkHigh.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkLow.Render(bar)
}

// SpeedBars renders one bar per ball, scaled to the fastest.
func SpeedBars(balls []sim.Snapshot) string {
	chars := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	top := 0.0
	for _, b := range balls {
		top = max(top, b.Speed)
	}
	if top == 0 {
		return Subtle.Render(strings.Repeat("▁", len(balls)))
	}

	var out strings.Builder
	for _, b := range balls {
		norm := b.Speed / top
		c := chars[int(norm*float64(len(chars)-1))]
		switch {
		case norm > 0.7:
			out.WriteString(SparkHigh.Render(string(c)))
		case norm > 0.3:
			out.WriteString(SparkMid.Render(string(c)))
		default:
			out.WriteString(SparkLow.Render(string(c)))
		}
	}
	return out.String()
}

func Separator(width int) string {
	mid := width / 2
	left := strings.Repeat("─", max(0, mid-3))
	right := strings.Repeat("─", max(0, width-mid-3))
	return Subtle.Render(left + " ◆ " + right)
}
