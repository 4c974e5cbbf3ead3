package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

const background = "#0a0a0a"

// SnapshotSVG draws positions projected onto the xy face of box, one disc of
// diameter sigma per particle. Particles further along z are drawn first and
// fainter. size is the pixel length of the longer box edge.
func SnapshotSVG(positions []r3.Vec, box r3.Vec, size int) string {
	if box.X <= 0 || box.Y <= 0 || size <= 0 {
		return ""
	}

	scale := float64(size) / math.Max(box.X, box.Y)
	width := box.X * scale
	height := box.Y * scale

	order := make([]int, len(positions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return positions[order[a]].Z > positions[order[b]].Z
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<rect x="0.5" y="0.5" width="%.1f" height="%.1f" fill="none" stroke="#444444"/>
<g fill="#00ff00">
`, width, height, width, height, background, width-1, height-1)

	radius := 0.5 * scale
	for _, i := range order {
		p := positions[i]
		opacity := 1.0
		if box.Z > 0 {
			opacity = 1 - 0.7*clamp(p.Z/box.Z, 0, 1)
		}
		// SVG y grows downwards.
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill-opacity="%.2f"/>
`, p.X*scale, height-p.Y*scale, radius, opacity)
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesSVG plots values against their index as a single polyline.
func SeriesSVG(values []float64, width, height int, stroke string) string {
	if len(values) < 2 || width <= 0 || height <= 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, stroke)

	last := float64(len(values) - 1)
	for i, v := range values {
		x := float64(i) / last * float64(width)
		y := float64(height) - (v-lo)/span*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
