package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"
)

const (
	frameRate   = 30
	canvasCols  = 40
	canvasRows  = 40
	trailLength = 120
	maxSpeed    = 8.0
	minSpeed    = 0.125
	energyWidth = 30
)

type TickMsg time.Time

// Replay plays back a stored shot. The state shown at any instant is
// reconstructed from the event log, so seeking is exact.
type Replay struct {
	name    string
	result  *sim.Result
	traj    *sim.Trajectory
	view    *TableView
	events  []float64
	energy  []float64
	t       float64
	speed   float64
	playing bool
	trails  bool
	history map[int][]dynamo.Vec2
}

func NewReplay(name string, p dynamo.Params, tbl *table.Table, r *sim.Result) *Replay {
	traj := sim.NewTrajectory(p, r)
	dt := (traj.End() - traj.Start()) / 100
	return &Replay{
		name:    name,
		result:  r,
		traj:    traj,
		view:    NewTableView(tbl, p.Radius, canvasCols, canvasRows),
		events:  traj.Events(),
		energy:  EnergySeries(traj.Sample(dt)),
		t:       traj.Start(),
		speed:   1,
		playing: true,
		trails:  true,
		history: make(map[int][]dynamo.Vec2),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Replay) Init() tea.Cmd { return tick() }

func (m *Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "space":
			m.playing = !m.playing
			if m.playing && m.t >= m.traj.End() {
				m.restart()
			}
		case "+", "=":
			m.speed = min(maxSpeed, m.speed*2)
		case "-", "_":
			m.speed = max(minSpeed, m.speed/2)
		case "n":
			m.playing = false
			m.seek(m.nextEvent())
		case "b":
			m.playing = false
			m.seek(m.prevEvent())
		case "t":
			m.trails = !m.trails
		case "r":
			m.restart()
		}
	case TickMsg:
		if m.playing {
			m.seek(m.t + m.speed/frameRate)
			if m.t >= m.traj.End() {
				m.playing = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m *Replay) restart() {
	m.history = make(map[int][]dynamo.Vec2)
	m.t = m.traj.Start()
	m.playing = true
}

// seek moves the clock and records ball positions for trails. Seeking
// backwards drops the trails.
func (m *Replay) seek(t float64) {
	t = min(max(t, m.traj.Start()), m.traj.End())
	if t < m.t {
		m.history = make(map[int][]dynamo.Vec2)
	}
	m.t = t
	for _, b := range m.traj.At(t).Balls {
		h := m.history[b.ID]
		if n := len(h); n > 0 && h[n-1] == b.Pos {
			continue
		}
		h = append(h, b.Pos)
		if len(h) > trailLength {
			h = h[1:]
		}
		m.history[b.ID] = h
	}
}

func (m *Replay) nextEvent() float64 {
	for _, et := range m.events {
		if et > m.t {
			return et
		}
	}
	return m.traj.End()
}

func (m *Replay) prevEvent() float64 {
	for i := len(m.events) - 1; i >= 0; i-- {
		if m.events[i] < m.t {
			return m.events[i]
		}
	}
	return m.traj.Start()
}

// current returns the index of the last record applied at or before the
// clock, or -1.
func (m *Replay) current() int {
	k := -1
	for i, et := range m.events {
		if et > m.t {
			break
		}
		k = i
	}
	return k
}

func (m *Replay) Time() float64  { return m.t }
func (m *Replay) Speed() float64 { return m.speed }
func (m *Replay) Playing() bool  { return m.playing }

func (m *Replay) View() string {
	frame := m.traj.At(m.t)
	var trails [][]dynamo.Vec2
	if m.trails {
		for _, b := range frame.Balls {
			trails = append(trails, m.history[b.ID])
		}
	}
	board := Panel.Render(m.view.Render(frame.Balls, trails))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.name)) + "\n\n")
	if m.playing {
		s.WriteString(StatusRunning.Render(fmt.Sprintf("PLAYING x%g", m.speed)) + "\n")
	} else {
		s.WriteString(StatusPaused.Render(fmt.Sprintf("PAUSED x%g", m.speed)) + "\n")
	}

	span := m.traj.End() - m.traj.Start()
	progress := 1.0
	if span > 0 {
		progress = (m.t - m.traj.Start()) / span
	}
	s.WriteString(ProgressBar(progress, energyWidth) + "\n\n")
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.3fs / %.3fs", m.t, m.traj.End())) + "\n")

	k := m.current()
	s.WriteString(MetricLabel.Render("Events") + MetricValue.Render(fmt.Sprintf("%d / %d", k+1, len(m.events))) + "\n")
	if k >= 0 {
		rec := m.result.Records[k]
		s.WriteString(MetricLabel.Render("Last") + KindLabel(rec.Event.Kind) + "\n")
		s.WriteString(MetricLabel.Render("") + Subtle.Render(Describe(rec.Event, rec.Balls)) + "\n")
	}

	moving, pocketed := 0, 0
	for _, b := range frame.Balls {
		switch b.State {
		case ball.Moving:
			moving++
		case ball.Pocketed:
			pocketed++
		}
	}
	s.WriteString(MetricLabel.Render("Moving") + MetricValue.Render(fmt.Sprint(moving)) + "\n")
	s.WriteString(MetricLabel.Render("Pocketed") + MetricValue.Render(fmt.Sprint(pocketed)) + "\n")
	s.WriteString(MetricLabel.Render("Speeds") + SpeedBars(frame.Balls) + "\n\n")

	if chart := Plot(m.energy, "kinetic energy", energyWidth, 5); chart != "" {
		s.WriteString(chart + "\n")
	}
	s.WriteString(KeyHint.Render("\nSP:Pause +/-:Speed N/B:Event\nT:Trails R:Restart Q:Quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, board, Panel.Render(s.String()))
}

// RunReplay opens the replay in the terminal and blocks until it exits.
func RunReplay(name string, p dynamo.Params, tbl *table.Table, r *sim.Result) error {
	_, err := tea.NewProgram(NewReplay(name, p, tbl, r)).Run()
	return err
}
