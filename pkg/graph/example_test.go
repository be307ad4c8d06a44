package graph_test

import (
	"fmt"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

func ExampleBuild() {
	items := []workflow.Element{
		{Stage: &workflow.Stage{Identifier: "build", Name: "Build"}},
		{Parallel: []workflow.Element{
			{Stage: &workflow.Stage{Identifier: "qa", Name: "QA"}},
			{Stage: &workflow.Stage{Identifier: "perf", Name: "Perf"}},
		}},
	}

	nodes := graph.Build(items, graph.Options{Path: "pipeline.stages"})
	graph.Walk(nodes, func(n, _ *graph.Node) bool {
		fmt.Println(n.Identifier, n.Kind, n.Data.Path)
		return true
	})
	// Output:
	// build Stage pipeline.stages.0
	// qa Stage pipeline.stages.1
	// perf Stage pipeline.stages.1.parallel.0
}
