package sim

import (
	"math"
	"sort"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/dynamo"
)

// Frame is the state of every ball at one instant.
type Frame struct {
	Time  float64    `json:"time"`
	Balls []Snapshot `json:"balls"`
}

// Trajectory replays a Result at arbitrary times. Between events every ball
// follows its closed-form path, so positions are exact rather than integrated.
type Trajectory struct {
	params dynamo.Params
	times  []float64
	keys   [][]Snapshot
}

func NewTrajectory(p dynamo.Params, r *Result) *Trajectory {
	tr := &Trajectory{
		params: p,
		times:  make([]float64, 0, len(r.Records)+1),
		keys:   make([][]Snapshot, 0, len(r.Records)+1),
	}
	tr.times = append(tr.times, r.StartTime)
	tr.keys = append(tr.keys, r.Initial)
	for _, rec := range r.Records {
		tr.times = append(tr.times, rec.Time)
		tr.keys = append(tr.keys, rec.Balls)
	}
	return tr
}

func (tr *Trajectory) Start() float64 { return tr.times[0] }
func (tr *Trajectory) End() float64   { return tr.times[len(tr.times)-1] }

// At returns the state of every ball at simulation time t, clamped to the
// recorded span.
func (tr *Trajectory) At(t float64) Frame {
	t = math.Min(math.Max(t, tr.Start()), tr.End())
	// last key frame at or before t
	k := sort.Search(len(tr.times), func(i int) bool { return tr.times[i] > t }) - 1
	if k < 0 {
		k = 0
	}

	dt := t - tr.times[k]
	key := tr.keys[k]
	balls := make([]Snapshot, len(key))
	for i, s := range key {
		if s.State != ball.Moving || dt == 0 {
			balls[i] = s
			continue
		}
		b := s.Ball(tr.params)
		b.Update(dt)
		balls[i] = SnapshotOf(b)
	}
	return Frame{Time: t, Balls: balls}
}

// Sample evaluates the trajectory every dt from start to end inclusive.
// Frames are computed in parallel.
func (tr *Trajectory) Sample(dt float64) []Frame {
	if !(dt > 0) {
		return []Frame{tr.At(tr.Start())}
	}
	span := tr.End() - tr.Start()
	n := int(math.Floor(span/dt)) + 1
	frames := make([]Frame, n, n+1)
	dynamo.ParallelFor(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			frames[i] = tr.At(tr.Start() + float64(i)*dt)
		}
	})
	if last := frames[n-1].Time; last < tr.End() {
		frames = append(frames, tr.At(tr.End()))
	}
	return frames
}

// Events returns the key frame times, one per applied event.
func (tr *Trajectory) Events() []float64 {
	return append([]float64(nil), tr.times[1:]...)
}
