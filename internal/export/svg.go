package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/cuesim/internal/ball"
	"github.com/san-kum/cuesim/internal/sim"
	"github.com/san-kum/cuesim/internal/table"
	"github.com/san-kum/cuesim/internal/viz"
)

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.DotWidth()) * scale
	height := float64(canvas.DotHeight()) * scale

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g fill="#00ff00">
`, width, height, width, height)

	dotRadius := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
				float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

var ballFill = map[ball.Type]string{
	ball.Cue:     "#ffffff",
	ball.Solid:   "#ffcc00",
	ball.Striped: "#ff4444",
	ball.Eight:   "#222222",
}

// ShotSVG draws the table at scale pixels per cm with one path per ball
// through the given frames. Balls are drawn where the last frame leaves
// them; pocketed balls are left out.
func ShotSVG(tbl *table.Table, radius float64, frames []sim.Frame, scale float64) string {
	if tbl == nil || len(frames) == 0 {
		return ""
	}
	width, height := tbl.Width*scale, tbl.Length*scale
	px := func(x float64) float64 { return x * scale }
	py := func(y float64) float64 { return height - y*scale }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0b5d2a"/>
`, width, height, width, height)

	sb.WriteString(`<g stroke="#5a3a1a" stroke-width="3">` + "\n")
	for _, c := range tbl.Cushions {
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", px(c.A.X), py(c.A.Y), px(c.B.X), py(c.B.Y))
	}
	sb.WriteString("</g>\n<g fill=\"#000000\">\n")
	for _, p := range tbl.Pockets {
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", px(p.Center.X), py(p.Center.Y), 2*radius*scale)
	}
	sb.WriteString("</g>\n")

	first, last := frames[0], frames[len(frames)-1]
	for i, b := range first.Balls {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-opacity="0.6" stroke-width="1.5" d="M%.1f,%.1f`,
			ballFill[b.Type], px(b.Pos.X), py(b.Pos.Y))
		prev := b.Pos
		for _, fr := range frames[1:] {
			if i >= len(fr.Balls) {
				break
			}
			pos := fr.Balls[i].Pos
			if pos == prev {
				continue
			}
			fmt.Fprintf(&sb, " L%.1f,%.1f", px(pos.X), py(pos.Y))
			prev = pos
		}
		sb.WriteString("\"/>\n")
	}

	for _, b := range last.Balls {
		if b.State == ball.Pocketed {
			continue
		}
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\" stroke=\"#000000\"><title>ball %d</title></circle>\n",
			px(b.Pos.X), py(b.Pos.Y), radius*scale, ballFill[b.Type], b.ID)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
