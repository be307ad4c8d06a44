// Package pkg provides the libraries behind Stagegraph, the pipeline
// workflow diagram engine.
//
// # Overview
//
// Stagegraph draws a pipeline workflow (stages, steps, step groups and
// parallel blocks) as a left-to-right diagram of boxes joined by routed
// connectors, and keeps that diagram consistent while the user pans, zooms
// and collapses groups. The data flow:
//
//	JSON / YAML workflow document
//	         ↓
//	    [workflow] (decode, normalize, validate against the schema)
//	         ↓
//	    [graph] (graph state: nodes, parallel children, flags, statuses)
//	         ↓
//	    [layout] (dimension aggregation, box queries, flow placement)
//	         ↓
//	    [route] (one SVG path per link, keyed "from->to")
//	         ↓
//	    [render] (SVG, DOT, Graphviz SVG, PNG, PDF, JSON)
//
// # Quick Start
//
//	loaded, _ := workflow.LoadFile("release.yaml")
//	nodes := graph.BuildDocument(loaded.Document, graph.Options{})
//	routed := pipeline.Route(nodes, pipeline.Options{Scale: 1})
//	for _, key := range routed.Paths.Keys() {
//	    fmt.Println(key, routed.Paths[key])
//	}
//
// # Main Packages
//
// [workflow] - The document model. Documents are either a pipeline with
// stages or a bare list of steps; YAML is normalized to JSON and checked
// against an embedded JSON Schema. Violations come back as an [workflow.ErrorMap]
// keyed by document path.
//
// [graph] - Graph State Builder. Turns document elements into nodes with
// content-derived IDs. Members of a parallel block after the first become
// children of the first.
//
// [layout] - Dimension Aggregator and Box Query Interface. Group sizes are
// computed bottom-up from measured step sizes; boxes are looked up by node
// ID from a placement or an external layout.
//
// [route] - Link Router. Sequential, fan-out, fan-in and group boundary
// links, each an SVG path of lines and quarter-circle curves.
//
// [viewport] - Viewport Controller. Pan and zoom state driven by pointer
// and wheel events, plus the delayed reroute scheduler.
//
// [diagram] - Diagram Orchestrator. Owns the graph state, dimensions,
// viewport and routed paths, and publishes changes on an event bus.
//
// [pipeline] - Build, route and render stages with caching, shared by the
// CLI, the HTTP server and the terminal viewer.
//
// # Infrastructure
//
// [cache] - File, memory, redis and null caches with typed keys per stage.
//
// [config] - TOML configuration merged over defaults.
//
// [errors] - Error codes shared by every entry point.
//
// [observability] - Hooks for logging and metrics around pipeline stages
// and HTTP requests.
//
// # Testing
//
//	go test ./...                 # All tests
//	go test ./pkg/route/...       # Specific package
//	go test -run Example ./pkg/...
package pkg
