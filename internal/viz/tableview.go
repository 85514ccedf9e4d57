package viz

import (
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"
)

// TableView maps table coordinates onto a canvas, y pointing up.
type TableView struct {
	tbl    *table.Table
	radius float64
	canvas *Canvas
	scale  float64
	offX   int
	offY   int
}

// NewTableView fits tbl into a canvas of cols x rows cells, keeping the
// table's aspect ratio.
func NewTableView(tbl *table.Table, radius float64, cols, rows int) *TableView {
	c := NewCanvas(cols, rows)
	w, h := float64(c.DotWidth()-1), float64(c.DotHeight()-1)
	scale := math.Min(w/tbl.Width, h/tbl.Length)
	return &TableView{
		tbl:    tbl,
		radius: radius,
		canvas: c,
		scale:  scale,
		offX:   int((w - tbl.Width*scale) / 2),
		offY:   int((h - tbl.Length*scale) / 2),
	}
}

func (v *TableView) Canvas() *Canvas { return v.canvas }

// Project returns the dot holding table point p.
func (v *TableView) Project(p dynamo.Vec2) (int, int) {
	x := v.offX + int(math.Round(p.X*v.scale))
	y := v.canvas.DotHeight() - 1 - v.offY - int(math.Round(p.Y*v.scale))
	return x, y
}

func (v *TableView) dots(d float64) int {
	return int(math.Round(d * v.scale))
}

// Draw clears the canvas and draws cushions, pockets, the given trails and
// every ball still on the table. The cue ball is drawn hollow.
func (v *TableView) Draw(balls []sim.Snapshot, trails [][]dynamo.Vec2) {
	v.canvas.Clear()
	for _, c := range v.tbl.Cushions {
		x0, y0 := v.Project(c.A)
		x1, y1 := v.Project(c.B)
		v.canvas.DrawLine(x0, y0, x1, y1)
	}
	for _, p := range v.tbl.Pockets {
		x, y := v.Project(p.Center)
		v.canvas.DrawCircle(x, y, max(1, v.dots(2*v.radius)))
	}
	for _, tr := range trails {
		for i := 1; i < len(tr); i++ {
			x0, y0 := v.Project(tr[i-1])
			x1, y1 := v.Project(tr[i])
			v.canvas.DrawLine(x0, y0, x1, y1)
		}
	}

	r := max(1, v.dots(v.radius))
	for _, b := range balls {
		if b.State == ball.Pocketed {
			continue
		}
		x, y := v.Project(b.Pos)
		if b.Type == ball.Cue {
			v.canvas.DrawCircle(x, y, r)
		} else {
			v.canvas.FillCircle(x, y, r)
		}
	}
}

// Render draws and returns the canvas text.
func (v *TableView) Render(balls []sim.Snapshot, trails [][]dynamo.Vec2) string {
	v.Draw(balls, trails)
	return v.canvas.String()
}
