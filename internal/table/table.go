package table

import (
	"fmt"
	"math"

	"github.com/san-kum/cuesim/internal/dynamo"
)

const (
	StandardWidth  = 150.0 // cm
	StandardLength = 300.0 // cm
)

// Orientation tells which velocity component a cushion reflects.
type Orientation int

const (
	Vertical   Orientation = iota // runs along y, flips vx
	Horizontal                    // runs along x, flips vy
	Oblique                       // reflects about the cushion normal
)

func (o Orientation) String() string {
	switch o {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	case Oblique:
		return "oblique"
	}
	return fmt.Sprintf("orientation(%d)", int(o))
}

// Pocket is a circular sink; its capture radius comes from the session params.
type Pocket struct {
	ID     int         `json:"id" yaml:"id"`
	Center dynamo.Vec2 `json:"center" yaml:"center"`
}

// Cushion is a straight reflective boundary from A to B.
type Cushion struct {
	ID          int         `json:"id" yaml:"id"`
	A           dynamo.Vec2 `json:"a" yaml:"a"`
	B           dynamo.Vec2 `json:"b" yaml:"b"`
	Orientation Orientation `json:"orientation" yaml:"orientation"`
}

// NewCushion derives the orientation tag from the endpoints.
func NewCushion(id int, a, b dynamo.Vec2) Cushion {
	o := Oblique
	switch {
	case a.X == b.X && a.Y != b.Y:
		o = Vertical
	case a.Y == b.Y && a.X != b.X:
		o = Horizontal
	}
	return Cushion{ID: id, A: a, B: b, Orientation: o}
}

// Line returns l and l0 with l.(x, y) + l0 = 0 for every point on the cushion.
func (c Cushion) Line() (dynamo.Vec2, float64) {
	l := dynamo.V(c.B.Y-c.A.Y, c.A.X-c.B.X)
	return l, -l.Dot(c.A)
}

func (c Cushion) Length() float64 { return c.A.Distance(c.B) }

// Normal is the unit normal of the cushion line.
func (c Cushion) Normal() dynamo.Vec2 {
	l, _ := c.Line()
	return l.Unit()
}

// Reflect returns v after bouncing off the cushion.
func (c Cushion) Reflect(v dynamo.Vec2) dynamo.Vec2 {
	switch c.Orientation {
	case Vertical:
		return dynamo.V(-v.X, v.Y)
	case Horizontal:
		return dynamo.V(v.X, -v.Y)
	}
	n := c.Normal()
	return v.Sub(n.Scale(2 * v.Dot(n)))
}

// Table is the immutable geometry of one session.
type Table struct {
	Width    float64
	Length   float64
	Pockets  []Pocket
	Cushions []Cushion
}

// New validates and returns a table built from the given geometry.
func New(width, length float64, pockets []Pocket, cushions []Cushion) (*Table, error) {
	t := &Table{
		Width:    width,
		Length:   length,
		Pockets:  append([]Pocket(nil), pockets...),
		Cushions: append([]Cushion(nil), cushions...),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewStandard builds a six-pocket table of the given size: one pocket in
// every corner, one at the middle of each long side, and four edge cushions.
func NewStandard(width, length float64) (*Table, error) {
	pockets := []Pocket{
		{ID: 0, Center: dynamo.V(0, 0)},
		{ID: 1, Center: dynamo.V(0, length/2)},
		{ID: 2, Center: dynamo.V(0, length)},
		{ID: 3, Center: dynamo.V(width, 0)},
		{ID: 4, Center: dynamo.V(width, length/2)},
		{ID: 5, Center: dynamo.V(width, length)},
	}
	cushions := []Cushion{
		NewCushion(0, dynamo.V(0, 0), dynamo.V(width, 0)),
		NewCushion(1, dynamo.V(0, 0), dynamo.V(0, length)),
		NewCushion(2, dynamo.V(0, length), dynamo.V(width, length)),
		NewCushion(3, dynamo.V(width, 0), dynamo.V(width, length)),
	}
	return New(width, length, pockets, cushions)
}

func (t *Table) Validate() error {
	if !(t.Width > 0) || !(t.Length > 0) || math.IsInf(t.Width, 0) || math.IsInf(t.Length, 0) {
		return fmt.Errorf("table size %vx%v: %w", t.Width, t.Length, dynamo.ErrInvalidGeometry)
	}
	if len(t.Cushions) == 0 {
		return fmt.Errorf("table needs at least one cushion: %w", dynamo.ErrInvalidGeometry)
	}

	seen := make(map[int]bool, len(t.Cushions))
	for _, c := range t.Cushions {
		if seen[c.ID] {
			return fmt.Errorf("duplicate cushion id %d: %w", c.ID, dynamo.ErrInvalidGeometry)
		}
		seen[c.ID] = true
		if !c.A.IsValid() || !c.B.IsValid() {
			return fmt.Errorf("cushion %d has non-finite endpoints: %w", c.ID, dynamo.ErrInvalidGeometry)
		}
		if c.Length() == 0 {
			return fmt.Errorf("cushion %d has zero length: %w", c.ID, dynamo.ErrInvalidGeometry)
		}
	}

	seen = make(map[int]bool, len(t.Pockets))
	for _, p := range t.Pockets {
		if seen[p.ID] {
			return fmt.Errorf("duplicate pocket id %d: %w", p.ID, dynamo.ErrInvalidGeometry)
		}
		seen[p.ID] = true
		if !p.Center.IsValid() {
			return fmt.Errorf("pocket %d has a non-finite center: %w", p.ID, dynamo.ErrInvalidGeometry)
		}
	}
	return nil
}

func (t *Table) NumPockets() int  { return len(t.Pockets) }
func (t *Table) NumCushions() int { return len(t.Cushions) }

// Contains reports whether pos lies on the playing surface with at least
// margin clearance from the edges.
func (t *Table) Contains(pos dynamo.Vec2, margin float64) bool {
	return pos.X >= margin && pos.X <= t.Width-margin && pos.Y >= margin && pos.Y <= t.Length-margin
}
