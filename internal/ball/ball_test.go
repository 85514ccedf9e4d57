package ball

import (
	"math"
	"testing"

	"github.com/san-kum/cuesim/internal/dynamo"

	. "github.com/onsi/gomega"
)

func testParams() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Mu = 0.02
	p.Gravity = 1000 // deceleration of 20 cm/s^2
	return p
}

func TestTypeForNumber(t *testing.T) {
	tests := []struct {
		n    int
		want Type
	}{
		{0, Cue},
		{1, Solid},
		{7, Solid},
		{8, Eight},
		{9, Striped},
		{15, Striped},
		{16, Cue},
	}

	for _, tt := range tests {
		if got := TypeForNumber(tt.n); got != tt.want {
			t.Errorf("TypeForNumber(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestHitStartsMotion(t *testing.T) {
	g := NewWithT(t)
	b := New(0, Cue, dynamo.V(0, 0), testParams())

	g.Expect(b.IsMoving()).To(BeFalse())

	b.Hit(math.Pi/2, 100)
	g.Expect(b.State).To(Equal(Moving))
	g.Expect(b.Velocity().X).To(BeNumerically("~", 0, 1e-9))
	g.Expect(b.Velocity().Y).To(BeNumerically("~", 100, 1e-9))
	g.Expect(b.StopTime()).To(BeNumerically("~", 5, 1e-12))
}

func TestHitWithZeroForceStaysAtRest(t *testing.T) {
	b := New(0, Cue, dynamo.V(1, 1), testParams())
	b.Hit(0, 0)
	if b.State != Stationary {
		t.Errorf("expected stationary after zero-force hit, got %v", b.State)
	}
}

func TestUpdateMatchesClosedForm(t *testing.T) {
	p := testParams()
	decel := p.Deceleration()

	tests := []struct {
		name  string
		phi   float64
		speed float64
		dt    float64
	}{
		{"along x", 0, 100, 1},
		{"diagonal", math.Pi / 4, 60, 2},
		{"backwards", math.Pi, 40, 0.5},
		{"past stop time", -math.Pi / 3, 30, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)
			b := New(1, Solid, dynamo.V(10, 20), p)
			b.Hit(tt.phi, tt.speed)

			b.Update(tt.dt)

			tEff := math.Min(tt.dt, tt.speed/decel)
			dist := tt.speed*tEff - 0.5*decel*tEff*tEff
			want := dynamo.V(10, 20).Add(dynamo.Polar(tt.phi, dist))
			wantSpeed := math.Max(0, tt.speed-decel*tt.dt)

			g.Expect(b.Pos.X).To(BeNumerically("~", want.X, 1e-9))
			g.Expect(b.Pos.Y).To(BeNumerically("~", want.Y, 1e-9))
			g.Expect(b.Speed).To(BeNumerically("~", wantSpeed, 1e-9))
			if wantSpeed == 0 {
				g.Expect(b.State).To(Equal(Stationary))
			} else {
				g.Expect(b.State).To(Equal(Moving))
			}
		})
	}
}

func TestUpdateZeroIsNoOp(t *testing.T) {
	b := New(2, Striped, dynamo.V(3, 4), testParams())
	b.Hit(1.0, 50)
	before := *b

	b.Update(0)

	if b.Pos != before.Pos || b.Speed != before.Speed || b.State != before.State {
		t.Errorf("Update(0) changed the ball: before %v after %v", before.String(), b.String())
	}
	if b.RCoeffs != before.RCoeffs || b.VCoeffs != before.VCoeffs {
		t.Error("Update(0) changed the coefficients")
	}
}

func TestUpdateToStopTimeComesToRest(t *testing.T) {
	g := NewWithT(t)
	b := New(3, Solid, dynamo.V(0, 0), testParams())
	b.Hit(0, 100)

	b.Update(b.StopTime())

	g.Expect(b.State).To(Equal(Stationary))
	g.Expect(b.Speed).To(BeZero())
	g.Expect(b.Pos.X).To(BeNumerically("~", 100*100/(2*20.0), 1e-9))

	// stopping twice changes nothing
	pos := b.Pos
	b.Stop()
	b.Stop()
	g.Expect(b.Pos).To(Equal(pos))
	g.Expect(b.Speed).To(BeZero())
}

func TestStationaryBallIgnoresTime(t *testing.T) {
	b := New(4, Solid, dynamo.V(5, 5), testParams())
	b.Update(3)
	if b.Pos != dynamo.V(5, 5) {
		t.Errorf("stationary ball moved to %v", b.Pos)
	}
	if b.PositionAt(100) != dynamo.V(5, 5) {
		t.Error("PositionAt should not move a stationary ball")
	}
	if !b.VelocityAt(1).IsZero() {
		t.Error("VelocityAt should be zero for a stationary ball")
	}
}

func TestPositionAtClampsAtRest(t *testing.T) {
	g := NewWithT(t)
	b := New(5, Solid, dynamo.V(0, 0), testParams())
	b.Hit(0, 40)

	rest := b.PositionAt(b.StopTime())
	g.Expect(b.PositionAt(b.StopTime() * 5)).To(Equal(rest))
	g.Expect(b.VelocityAt(b.StopTime() + 1).IsZero()).To(BeTrue())
	g.Expect(b.VelocityAt(0).X).To(BeNumerically("~", 40, 1e-12))
}

func TestSetVelocity(t *testing.T) {
	g := NewWithT(t)
	b := New(6, Solid, dynamo.V(0, 0), testParams())

	b.SetVelocity(dynamo.V(3, 4))
	g.Expect(b.State).To(Equal(Moving))
	g.Expect(b.Speed).To(BeNumerically("~", 5, 1e-12))
	g.Expect(b.VCoeffs[0][0]).To(BeNumerically("~", 3, 1e-12))
	g.Expect(b.VCoeffs[1][0]).To(BeNumerically("~", 4, 1e-12))

	b.SetVelocity(dynamo.Vec2{})
	g.Expect(b.State).To(Equal(Stationary))
	g.Expect(b.RCoeffs[0][2]).To(BeZero())
}

func TestCaptureAndReset(t *testing.T) {
	g := NewWithT(t)
	b := New(7, Solid, dynamo.V(10, 10), testParams())
	b.Hit(0.3, 80)

	b.Capture(2)

	g.Expect(b.State).To(Equal(Pocketed))
	g.Expect(b.Pocket).To(Equal(2))
	g.Expect(b.Pos.IsZero()).To(BeTrue())
	g.Expect(b.Speed).To(BeZero())
	g.Expect(b.RCoeffs).To(Equal([2][3]float64{}))
	g.Expect(b.IsMoving()).To(BeFalse())

	b.Update(5)
	g.Expect(b.State).To(Equal(Pocketed))

	b.Respot(dynamo.V(1, 2))
	g.Expect(b.State).To(Equal(Stationary))
	g.Expect(b.Pocket).To(Equal(-1))
	g.Expect(b.Pos).To(Equal(dynamo.V(1, 2)))
}

func TestCloneIsIndependent(t *testing.T) {
	b := New(8, Eight, dynamo.V(1, 1), testParams())
	c := b.Clone()
	c.Hit(0, 10)
	if b.IsMoving() {
		t.Error("clone shares state with original")
	}
	if !b.Is(c) {
		t.Error("clone should keep identity")
	}
}
