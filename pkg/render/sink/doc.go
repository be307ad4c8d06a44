// Package sink writes a routed diagram [render.Scene] as SVG or JSON.
//
// [RenderSVG] draws group frames first, then link paths, then node boxes,
// labels and terminals, so links never cover a node. Drawing is delegated to
// a [Style]; [Simple] is the default.
//
//	svg := sink.RenderSVG(scene,
//	    sink.WithViewport(vp),
//	    sink.WithInteraction(),
//	)
//
// [RenderJSON] writes the same scene as a document a browser front end can
// draw without routing anything itself.
package sink
