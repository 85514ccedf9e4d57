package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/table"

	. "github.com/onsi/gomega"
)

func slowParams() dynamo.Params {
	p := dynamo.DefaultParams()
	p.Mu = 0.02
	p.Gravity = 1000
	return p
}

func standardTable(t testing.TB) *table.Table {
	t.Helper()
	tbl, err := table.NewStandard(table.StandardWidth, table.StandardLength)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return tbl
}

// openTable has its cushions far from the origin and no pockets.
func openTable(t testing.TB) *table.Table {
	t.Helper()
	const far = 1e4
	tbl, err := table.New(2*far, 2*far, nil, []table.Cushion{
		table.NewCushion(0, dynamo.V(-far, -far), dynamo.V(far, -far)),
		table.NewCushion(1, dynamo.V(-far, -far), dynamo.V(-far, far)),
		table.NewCushion(2, dynamo.V(-far, far), dynamo.V(far, far)),
		table.NewCushion(3, dynamo.V(far, -far), dynamo.V(far, far)),
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	return tbl
}

func mustNew(t testing.TB, p dynamo.Params, tbl *table.Table, balls ...*ball.Ball) *Simulation {
	t.Helper()
	s, err := New(p, tbl, balls)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

type recordingObserver struct {
	kinds []event.Kind
	times []float64
}

func (r *recordingObserver) OnEvent(ev event.Event, t float64, balls []*ball.Ball) {
	r.kinds = append(r.kinds, ev.Kind)
	r.times = append(r.times, t)
}

type countMetric struct{ n int }

func (c *countMetric) Name() string                               { return "count" }
func (c *countMetric) Observe(event.Event, float64, []*ball.Ball) { c.n++ }
func (c *countMetric) Value() float64                             { return float64(c.n) }
func (c *countMetric) Reset()                                     { c.n = 0 }

func TestNewRejectsBadInput(t *testing.T) {
	p := slowParams()
	tbl := standardTable(t)
	cue := ball.New(0, ball.Cue, dynamo.V(75, 75), p)

	badParams := p
	badParams.Mu = 0

	tests := []struct {
		name   string
		params dynamo.Params
		table  *table.Table
		balls  []*ball.Ball
		want   error
	}{
		{"bad params", badParams, tbl, []*ball.Ball{cue}, dynamo.ErrParameterBounds},
		{"nil table", p, nil, []*ball.Ball{cue}, dynamo.ErrInvalidGeometry},
		{"duplicate id", p, tbl, []*ball.Ball{cue, cue}, dynamo.ErrInvalidGeometry},
		{"nil ball", p, tbl, []*ball.Ball{cue, nil}, dynamo.ErrInvalidGeometry},
		{"non-finite position", p, tbl, []*ball.Ball{ball.New(1, ball.Solid, dynamo.V(math.NaN(), 1), p)}, dynamo.ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.params, tt.table, tt.balls)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewCopiesBalls(t *testing.T) {
	p := slowParams()
	cue := ball.New(0, ball.Cue, dynamo.V(75, 75), p)
	s := mustNew(t, p, standardTable(t), cue)

	cue.Hit(0, 100)
	if s.Moving() {
		t.Error("changing the caller's ball should not affect the simulation")
	}

	got, _ := s.Ball(0)
	got.Hit(0, 100)
	if s.Moving() {
		t.Error("changing a returned ball should not affect the simulation")
	}
}

func TestStrikeErrors(t *testing.T) {
	p := slowParams()
	pocketed := ball.New(2, ball.Solid, dynamo.V(30, 30), p)
	pocketed.Capture(0)
	s := mustNew(t, p, standardTable(t), ball.New(0, ball.Cue, dynamo.V(75, 75), p), pocketed)

	tests := []struct {
		name  string
		id    int
		phi   float64
		force float64
		want  error
	}{
		{"unknown ball", 7, 0, 10, dynamo.ErrUnknownBall},
		{"negative force", 0, 0, -1, dynamo.ErrInvalidStrike},
		{"NaN force", 0, 0, math.NaN(), dynamo.ErrInvalidStrike},
		{"infinite angle", 0, math.Inf(1), 10, dynamo.ErrInvalidStrike},
		{"pocketed ball", 2, 0, 10, dynamo.ErrInvalidStrike},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Strike(tt.id, tt.phi, tt.force); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if s.Moving() {
		t.Error("rejected strikes should leave the table at rest")
	}
}

func TestNextEventAtRest(t *testing.T) {
	p := slowParams()
	s := mustNew(t, p, standardTable(t), table.Rack(p, dynamo.V(75, 225), dynamo.V(75, 75))...)

	if ev, ok := s.NextEvent(); ok {
		t.Errorf("expected no event on a resting table, got %v", ev)
	}

	res, err := s.StepUntilQuiescent(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.NumEvents() != 0 {
		t.Errorf("expected no events, got %d", res.NumEvents())
	}
}

func TestOnlyStopRollingOnOpenTable(t *testing.T) {
	g := NewWithT(t)
	p := slowParams()
	s := mustNew(t, p, openTable(t), ball.New(0, ball.Cue, dynamo.V(0, 0), p))
	obs := &recordingObserver{}
	s.AddObserver(obs)

	g.Expect(s.Strike(0, 1.0, 60)).To(Succeed())
	res, err := s.StepUntilQuiescent(context.Background())
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(obs.kinds).To(Equal([]event.Kind{event.KindStopRolling}))
	g.Expect(res.Count(event.KindStopRolling)).To(Equal(1))
	g.Expect(res.EndTime).To(BeNumerically("~", 3, 1e-12))
	g.Expect(s.Time()).To(Equal(res.EndTime))

	dist := 60.0 * 60.0 / (2 * p.Deceleration())
	b, _ := s.Ball(0)
	g.Expect(b.Pos.X).To(BeNumerically("~", dist*math.Cos(1.0), 1e-9))
	g.Expect(b.Pos.Y).To(BeNumerically("~", dist*math.Sin(1.0), 1e-9))
}

func TestRestingBallIsHitInEitherOrder(t *testing.T) {
	p := slowParams()

	for _, movingFirst := range []bool{true, false} {
		mover := ball.New(0, ball.Cue, dynamo.V(75, 100), p)
		rest := ball.New(1, ball.Solid, dynamo.V(75, 150), p)
		balls := []*ball.Ball{rest, mover}
		if movingFirst {
			balls = []*ball.Ball{mover, rest}
		}

		s := mustNew(t, p, standardTable(t), balls...)
		if err := s.Strike(0, math.Pi/2, 100); err != nil {
			t.Fatal(err)
		}

		ev, ok := s.NextEvent()
		if !ok || ev.Kind != event.KindHitBall {
			t.Errorf("moving first=%v: expected a ball hit, got %v", movingFirst, ev)
		}
	}
}

func TestMovingPairConsideredOnce(t *testing.T) {
	g := NewWithT(t)
	p := slowParams()
	a := ball.New(0, ball.Cue, dynamo.V(75, 100), p)
	b := ball.New(1, ball.Solid, dynamo.V(75, 150), p)
	s := mustNew(t, p, standardTable(t), a, b)
	g.Expect(s.Strike(0, math.Pi/2, 50)).To(Succeed())
	g.Expect(s.Strike(1, -math.Pi/2, 50)).To(Succeed())

	ev, ok := s.NextEvent()
	g.Expect(ok).To(BeTrue())
	g.Expect(ev.Kind).To(Equal(event.KindHitBall))
	// ball 1 is scanned last and pairs with the smaller moving id
	g.Expect(ev.Ball).To(Equal(1))
	g.Expect(ev.Other).To(Equal(0))

	s.Apply(ev)
	b0, _ := s.Ball(0)
	b1, _ := s.Ball(1)
	g.Expect(b0.Velocity().Y).To(BeNumerically("<", 0))
	g.Expect(b1.Velocity().Y).To(BeNumerically(">", 0))
}

func TestMaxEventsFault(t *testing.T) {
	p := slowParams()
	p.MaxEvents = 1
	s := mustNew(t, p, standardTable(t),
		ball.New(0, ball.Cue, dynamo.V(75, 100), p),
		ball.New(1, ball.Solid, dynamo.V(75, 150), p),
	)
	if err := s.Strike(0, math.Pi/2, 100); err != nil {
		t.Fatal(err)
	}

	res, err := s.StepUntilQuiescent(context.Background())
	if !errors.Is(err, dynamo.ErrNoQuiescence) {
		t.Fatalf("expected ErrNoQuiescence, got %v", err)
	}
	var simErr *dynamo.SimError
	if !errors.As(err, &simErr) || simErr.Step != 1 {
		t.Errorf("expected SimError at step 1, got %v", err)
	}
	if res == nil || res.NumEvents() != 1 {
		t.Errorf("expected the partial result to hold one event")
	}
}

func TestContextCancel(t *testing.T) {
	p := slowParams()
	s := mustNew(t, p, standardTable(t), ball.New(0, ball.Cue, dynamo.V(75, 75), p))
	if err := s.Strike(0, 0.3, 200); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.StepUntilQuiescent(ctx)
	if !errors.Is(err, dynamo.ErrContextCanceled) {
		t.Errorf("expected ErrContextCanceled, got %v", err)
	}
	if !s.Moving() {
		t.Error("a canceled run should not advance the table")
	}
}

func TestPlayTurn(t *testing.T) {
	g := NewWithT(t)
	p := slowParams()
	s := mustNew(t, p, standardTable(t),
		ball.New(3, ball.Solid, dynamo.V(75, 150), p),
		ball.New(0, ball.Cue, dynamo.V(75, 100), p),
	)
	m := &countMetric{}
	s.AddMetric(m)

	res, err := s.PlayTurn(context.Background(), math.Pi/2, 100)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(s.Moving()).To(BeFalse())
	g.Expect(res.Count(event.KindHitBall)).To(BeNumerically(">=", 1))
	g.Expect(res.Metrics["count"]).To(Equal(float64(res.NumEvents())))
}

func TestPlayTurnWithoutCue(t *testing.T) {
	p := slowParams()
	s := mustNew(t, p, standardTable(t), ball.New(1, ball.Solid, dynamo.V(75, 150), p))
	if _, err := s.PlayTurn(context.Background(), 0, 10); !errors.Is(err, dynamo.ErrUnknownBall) {
		t.Errorf("expected ErrUnknownBall, got %v", err)
	}
}

func breakShot(t testing.TB, p dynamo.Params, phi, force float64) (*Simulation, *Result) {
	t.Helper()
	tbl := standardTable(t)
	apex, cue := table.RackSpot(tbl)
	s := mustNew(t, p, tbl, table.Rack(p, apex, cue)...)
	res, err := s.PlayTurn(context.Background(), phi, force)
	if err != nil {
		t.Fatalf("break failed: %v", err)
	}
	return s, res
}

func TestBreakComesToRest(t *testing.T) {
	p := dynamo.DefaultParams()

	for _, force := range []float64{600, 800, 1200} {
		s, res := breakShot(t, p, math.Pi/2, force)

		if s.Moving() {
			t.Errorf("force %v: balls still moving", force)
		}
		if res.Count(event.KindHitBall) == 0 {
			t.Errorf("force %v: cue ball never reached the rack", force)
		}
		if sep := table.MinSeparation(s.Balls()); sep < 2*p.Radius-1e-6 {
			t.Errorf("force %v: balls overlap, min separation %v", force, sep)
		}
		for _, b := range s.Balls() {
			if !b.IsPocketed() && !s.Table().Contains(b.Pos, p.Radius-1e-6) {
				t.Errorf("force %v: ball %d left the table at %v", force, b.ID, b.Pos)
			}
		}
	}
}

func TestBreakIsDeterministic(t *testing.T) {
	g := NewWithT(t)
	p := dynamo.DefaultParams()

	_, first := breakShot(t, p, math.Pi/2-0.02, 1200)
	_, second := breakShot(t, p, math.Pi/2-0.02, 1200)

	g.Expect(second.Final).To(Equal(first.Final))
	g.Expect(second.Records).To(Equal(first.Records))
}
