package viz

import (
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/cuesim/internal/sim"
)

// SpeedSeries extracts the speed of ball id from each frame. Frames where
// the ball is absent read as zero.
func SpeedSeries(frames []sim.Frame, id int) []float64 {
	out := make([]float64, len(frames))
	for i, fr := range frames {
		for _, b := range fr.Balls {
			if b.ID == id {
				out[i] = b.Speed
				break
			}
		}
	}
	return out
}

// EnergySeries is the total kinetic energy per unit mass in each frame.
func EnergySeries(frames []sim.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, fr := range frames {
		out[i] = KineticEnergy(fr.Balls)
	}
	return out
}

func KineticEnergy(balls []sim.Snapshot) float64 {
	e := 0.0
	for _, b := range balls {
		e += 0.5 * b.Speed * b.Speed
	}
	return e
}

// Plot draws data with asciigraph. A series with fewer than two points
// yields an empty string.
func Plot(data []float64, caption string, width, height int) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}
