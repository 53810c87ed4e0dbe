package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/gridder/pkg/grid"
)

// DefaultWidth is the drawing size of the longer bounding-box side in points.
const DefaultWidth = 720.0

// Options configures node-link diagram rendering.
type Options struct {
	// Labels draws the vertex ID next to each point.
	Labels bool
	// Width is the size of the longer side of the drawing in points.
	// Zero selects DefaultWidth.
	Width float64
}

// ToDOT converts a grid to Graphviz DOT format with every vertex pinned at its
// coordinates. Coordinates are shifted to the bounding box origin and scaled
// so the longer side spans opts.Width points.
func ToDOT(g *grid.Grid, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = DefaultWidth
	}
	lo, hi := g.Bounds()
	span := max(hi.X-lo.X, hi.Y-lo.Y)
	scale := 1.0
	if span > 0 {
		scale = width / span
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  label=%q;\n", g.CRS.String())
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	if opts.Labels {
		buf.WriteString("  node [shape=circle, width=0.25, fixedsize=true, fontsize=8, style=filled, fillcolor=white];\n")
	} else {
		buf.WriteString("  node [shape=point, width=0.08];\n")
	}
	buf.WriteString("  edge [penwidth=1.5];\n")
	buf.WriteString("\n")

	for _, v := range g.Vertices {
		x := (v.Geometry.X - lo.X) * scale
		y := (v.Geometry.Y - lo.Y) * scale
		fmt.Fprintf(&buf, "  %d [pos=\"%s,%s!\"", v.ID, fmtCoord(x), fmtCoord(y))
		if opts.Labels {
			fmt.Fprintf(&buf, ", label=\"%d\"", v.ID)
		}
		buf.WriteString("];\n")
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %d -- %d [id=\"e%d\"];\n", e.Vertex1, e.Vertex2, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz' neato engine so that
// pinned positions are honoured.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz' neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
