// Package nodelink renders grids as node-link diagrams.
//
// # Overview
//
// Vertices are drawn as points pinned at their (scaled) coordinates and edges
// as straight lines, so the picture shows the actual geometry including any
// noise applied during generation.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Labels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Options
//
//   - Labels: draw vertex IDs next to each point
//   - Width: size of the longer bounding-box side in points (default 720)
//
// # DOT Format
//
// [ToDOT] produces an undirected graph using the neato conventions for fixed
// positions (pos="x,y!" with inputscale=72), so it can also be rendered with
// the command line tool:
//
//	neato -n -Tsvg grid.dot > grid.svg
package nodelink
