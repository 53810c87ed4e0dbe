package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/gridder/pkg/grid"
)

func TestToDOT(t *testing.T) {
	g, err := grid.Generate(grid.Params{Origin: []float64{500, 1000}, NumEdgeX: 2, NumEdgeY: 1, Dx: 100, Dy: 100})
	require.NoError(t, err)

	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "Default",
			opts: Options{},
			want: []string{
				"graph G {",
				`label="EPSG:32632"`,
				"inputscale=72;",
				"shape=point",
				`0 [pos="0.00,0.00!"];`,
				`5 [pos="720.00,360.00!"];`,
				`0 -- 1 [id="e0"];`,
				`0 -- 2 [id="e3"];`,
			},
			notWant: []string{"->", `label="0"`},
		},
		{
			name: "LabelsAndWidth",
			opts: Options{Labels: true, Width: 100},
			want: []string{
				"shape=circle",
				`5 [pos="100.00,50.00!", label="5"];`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(g, tt.opts)
			for _, s := range tt.want {
				assert.Contains(t, dot, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, dot, s)
			}
			assert.Equal(t, g.EdgeCount(), strings.Count(dot, " -- "))
		})
	}
}

func TestToDOTSinglePointSpan(t *testing.T) {
	g := &grid.Grid{
		CRS:      grid.DefaultCRS,
		Shape:    grid.Shape{NumVertX: 1, NumVertY: 1},
		Vertices: []grid.Vertex{{ID: 0, Geometry: grid.Point{X: 3, Y: 4}}},
	}
	dot := ToDOT(g, Options{})
	assert.Contains(t, dot, `0 [pos="0.00,0.00!"];`)
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	assert.Contains(t, out, `viewBox="0 0 10.00 20.00" width="10" height="20"`)
	assert.Contains(t, out, "<g/>")

	plain := []byte("<svg><g/></svg>")
	assert.Equal(t, plain, normalizeViewBox(plain))
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz rendering in short mode")
	}
	g, err := grid.Generate(grid.Params{Origin: []float64{0, 0}, NumEdgeX: 1, Dx: 10})
	require.NoError(t, err)

	svg, err := RenderSVG(context.Background(), ToDOT(g, Options{}))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(svg), "<svg"))
}
