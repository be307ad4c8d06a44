package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/stagegraph/pkg/render"
	"github.com/matzehuels/stagegraph/pkg/render/dot"
	"github.com/matzehuels/stagegraph/pkg/render/sink"
	"github.com/matzehuels/stagegraph/pkg/viewport"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, built Built, routed Routed, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	scene := Scene(built, routed, opts)

	var svg []byte
	svgOnce := func() []byte {
		if svg == nil {
			svg = sink.RenderSVG(scene, svgOptions(opts)...)
		}
		return svg
	}
	dotOpts := dot.Options{
		Editable:  opts.Editable,
		Collapsed: scene.Collapsed,
		Detailed:  opts.Detailed,
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = sink.RenderJSON(scene, sink.WithJSONTree(), sink.WithJSONIndent())
		case FormatSVG:
			data = svgOnce()
		case FormatDOT:
			data = []byte(dot.ToDOT(built.Nodes, dotOpts))
		case FormatGraphviz:
			data, err = dot.RenderSVG(ctx, dot.ToDOT(built.Nodes, dotOpts))
		case FormatPNG:
			data, err = render.ToPNG(ctx, svgOnce(), DefaultPNGScale)
		case FormatPDF:
			data, err = render.ToPDF(ctx, svgOnce())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// Scene assembles the drawable scene of a routed result.
func Scene(built Built, routed Routed, opts Options) render.Scene {
	w, h := routed.Size()
	return render.Scene{
		Nodes:     built.Nodes,
		Boxes:     routed.Boxes,
		Paths:     routed.Paths,
		Width:     w,
		Height:    h,
		Viewport:  viewport.Viewport{Scale: 1},
		Collapsed: opts.CollapsedSet(),
		Editable:  opts.Editable,
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithInteraction()}
	switch opts.Theme {
	case ThemeSimple:
		svgOpts = append(svgOpts, sink.WithStyle(sink.Simple{}))
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}
