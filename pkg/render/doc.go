// Package render provides visualization rendering for generated grids.
//
// # Overview
//
// Grids are drawn as node-link diagrams with Graphviz. Because a grid is
// geometric, vertices are pinned at their coordinates instead of being
// placed by a layout engine; see the [nodelink] subpackage.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Formats
//
// [Formats] lists the output formats a renderer produces.
//
// [nodelink]: github.com/matzehuels/gridder/pkg/render/nodelink
package render

import "slices"

// Render output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Formats lists the render output formats.
var Formats = []string{FormatDOT, FormatSVG, FormatPNG}

// IsFormat reports whether format is a render output format.
func IsFormat(format string) bool {
	return slices.Contains(Formats, format)
}
