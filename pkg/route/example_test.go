package route_test

import (
	"fmt"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/route"
)

func ExampleRoute() {
	nodes := []*graph.Node{
		{ID: "build", Kind: graph.KindStage},
		{ID: "deploy", Kind: graph.KindStage},
	}
	boxes := layout.MapQuery{
		"build":  layout.Rect("build", 0, 0, 64, 64),
		"deploy": layout.Rect("deploy", 144, 100, 64, 64),
	}

	paths := route.Route(nodes, route.Context{Query: boxes, NoTerminals: true})
	for _, key := range paths.Keys() {
		fmt.Println(key, paths[key].String())
	}
	// Output:
	// build->deploy M 64,32 L 84,32 Q 104,32 104,52 L 104,112 Q 104,132 124,132 L 144,132
}
