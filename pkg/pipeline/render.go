package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/gridder/pkg/graph"
	"github.com/matzehuels/gridder/pkg/grid"
	pkgio "github.com/matzehuels/gridder/pkg/io"
	"github.com/matzehuels/gridder/pkg/render/nodelink"
)

// RenderArtifact produces a single artifact for a grid. It does not use the
// cache; see [Runner.Render].
func RenderArtifact(ctx context.Context, g *grid.Grid, doc graph.Document, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return graph.MarshalDocument(doc)
	case FormatGeoJSON:
		var buf bytes.Buffer
		if err := pkgio.WriteGeoJSON(doc, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(nodelink.ToDOT(g, nodeOptions(opts))), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodeOptions(opts)))
	case FormatPNG:
		return nodelink.RenderPNG(ctx, nodelink.ToDOT(g, nodeOptions(opts)))
	default:
		return nil, fmt.Errorf("render: %w", ValidateFormat(format))
	}
}

func nodeOptions(opts Options) nodelink.Options {
	return nodelink.Options{Labels: opts.Labels, Width: opts.Width}
}
