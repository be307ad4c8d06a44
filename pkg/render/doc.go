// Package render turns a routed diagram into files.
//
// A [Scene] bundles what every output needs: the graph-state tree, absolute
// node boxes, routed link paths and the viewport. Renderers live in
// subpackages:
//
//   - [sink]: standalone SVG with nodes, group frames and link paths, and a
//     JSON dump of the same scene
//   - [dot]: Graphviz DOT of the tree with clusters for step groups,
//     rendered to SVG through go-graphviz
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := sink.RenderSVG(scene, sink.WithViewport(vp))
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [sink]: github.com/matzehuels/stagegraph/pkg/render/sink
// [dot]: github.com/matzehuels/stagegraph/pkg/render/dot
package render
