package sim_test

import (
	"context"
	"math"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
	"github.com/san-kum/cuesim/internal/event"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newSimulation(p dynamo.Params, tbl *table.Table, balls ...*ball.Ball) *sim.Simulation {
	s, err := sim.New(p, tbl, balls)
	Expect(err).NotTo(HaveOccurred())
	return s
}

func standard() *table.Table {
	tbl, err := table.NewStandard(table.StandardWidth, table.StandardLength)
	Expect(err).NotTo(HaveOccurred())
	return tbl
}

func open() *table.Table {
	const far = 1e4
	tbl, err := table.New(2*far, 2*far, nil, []table.Cushion{
		table.NewCushion(0, dynamo.V(-far, -far), dynamo.V(far, -far)),
		table.NewCushion(1, dynamo.V(-far, -far), dynamo.V(-far, far)),
		table.NewCushion(2, dynamo.V(-far, far), dynamo.V(far, far)),
		table.NewCushion(3, dynamo.V(far, -far), dynamo.V(far, far)),
	})
	Expect(err).NotTo(HaveOccurred())
	return tbl
}

var _ = Describe("Simulation", func() {
	var (
		p     dynamo.Params
		decel float64
	)

	BeforeEach(func() {
		p = dynamo.DefaultParams()
		p.Mu = 0.02
		p.Gravity = 1000
		decel = p.Deceleration()
	})

	Describe("a lone ball on an open table", func() {
		It("stops after the straight-line stopping distance", func() {
			p = dynamo.DefaultParams()
			const force = 300.0
			s := newSimulation(p, open(), ball.New(0, ball.Cue, dynamo.V(0, 0), p))

			res, err := s.PlayTurn(context.Background(), 0, force)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.NumEvents()).To(Equal(1))
			Expect(res.Records[0].Event.Kind).To(Equal(event.KindStopRolling))

			b, ok := s.Ball(0)
			Expect(ok).To(BeTrue())
			Expect(b.State).To(Equal(ball.Stationary))
			Expect(b.Pos.X).To(BeNumerically("~", force*force/(2*p.Mu*p.Gravity), 1e-9))
			Expect(b.Pos.Y).To(BeNumerically("~", 0, 1e-12))
		})
	})

	Describe("a moving ball with a resting ball in its path", func() {
		var s *sim.Simulation

		BeforeEach(func() {
			s = newSimulation(p, standard(),
				ball.New(0, ball.Cue, dynamo.V(75, 100), p),
				ball.New(1, ball.Solid, dynamo.V(75, 100+4*p.Radius), p),
			)
			Expect(s.Strike(0, math.Pi/2, 100)).To(Succeed())
		})

		It("hits the ball before stopping", func() {
			ev, ok := s.NextEvent()
			Expect(ok).To(BeTrue())
			Expect(ev.Kind).To(Equal(event.KindHitBall))
			Expect(ev.Time).To(BeNumerically("<", 100/decel))
		})

		It("hands over its whole velocity along the line of centres", func() {
			ev, _ := s.NextEvent()
			s.Apply(ev)

			speed := math.Sqrt(100*100 - 2*decel*2*p.Radius)
			striker, _ := s.Ball(0)
			target, _ := s.Ball(1)

			Expect(striker.State).To(Equal(ball.Stationary))
			Expect(target.State).To(Equal(ball.Moving))
			Expect(target.Velocity().Y).To(BeNumerically("~", speed, 1e-6))
			Expect(target.Velocity().X).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("a ball aimed at a pocket", func() {
		It("is captured with zero position and velocity", func() {
			s := newSimulation(p, standard(), ball.New(0, ball.Cue, dynamo.V(75, 150), p))
			Expect(s.Strike(0, 0, 100)).To(Succeed())

			ev, ok := s.NextEvent()
			Expect(ok).To(BeTrue())
			Expect(ev.Kind).To(Equal(event.KindHitPocket))
			Expect(ev.Pocket).To(Equal(4))

			res, err := s.StepUntilQuiescent(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Pocketed).To(Equal([]int{0}))

			b, _ := s.Ball(0)
			Expect(b.State).To(Equal(ball.Pocketed))
			Expect(b.Pos.IsZero()).To(BeTrue())
			Expect(b.Velocity().IsZero()).To(BeTrue())
			Expect(s.Pocketed()).To(ConsistOf(0))
		})
	})

	Describe("a ball driven straight into a cushion", func() {
		It("reverses the normal component and keeps the tangential one", func() {
			s := newSimulation(p, standard(), ball.New(0, ball.Cue, dynamo.V(75, 100), p))
			Expect(s.Strike(0, -math.Pi/2, 100)).To(Succeed())

			ev, ok := s.NextEvent()
			Expect(ok).To(BeTrue())
			Expect(ev.Kind).To(Equal(event.KindHitCushion))
			Expect(ev.Cushion).To(Equal(0))

			s.Apply(ev)
			b, _ := s.Ball(0)
			speed := math.Sqrt(100*100 - 2*decel*(100-p.Radius))
			Expect(b.Pos.Y).To(BeNumerically("~", p.Radius, 1e-9))
			Expect(b.Velocity().Y).To(BeNumerically("~", speed, 1e-9))
			Expect(b.Velocity().X).To(BeNumerically("~", 0, 1e-9))
		})
	})

	Describe("a full rack break", func() {
		var res *sim.Result
		var s *sim.Simulation

		BeforeEach(func() {
			p = dynamo.DefaultParams()
			tbl := standard()
			apex, cue := table.RackSpot(tbl)
			s = newSimulation(p, tbl, table.Rack(p, apex, cue)...)

			var err error
			res, err = s.PlayTurn(context.Background(), math.Pi/2, 800)
			Expect(err).NotTo(HaveOccurred())
		})

		It("ends at rest", func() {
			Expect(s.Moving()).To(BeFalse())
			next, ok := s.NextEvent()
			Expect(ok).To(BeFalse())
			Expect(next.IsNull()).To(BeTrue())
		})

		It("never runs time backwards", func() {
			last := res.StartTime
			for _, rec := range res.Records {
				Expect(rec.Event.Time).To(BeNumerically(">=", 0))
				Expect(rec.Time).To(BeNumerically(">=", last))
				last = rec.Time
			}
		})

		It("keeps every speed non-negative and pocketed balls at the origin", func() {
			for _, rec := range res.Records {
				for _, b := range rec.Balls {
					Expect(b.Speed).To(BeNumerically(">=", 0))
					if b.State == ball.Pocketed {
						Expect(b.Pos.IsZero()).To(BeTrue())
						Expect(b.Speed).To(BeZero())
					}
				}
			}
		})

		It("never lets two balls overlap", func() {
			Expect(table.MinSeparation(s.Balls())).To(BeNumerically(">=", 2*p.Radius-1e-6))
		})
	})
})
