package pipeline

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/stagegraph/pkg/graph"
	"github.com/matzehuels/stagegraph/pkg/workflow"
)

// idNamespace seeds content-derived node IDs.
var idNamespace = uuid.MustParse("6c1f2b7e-8a43-5d2c-9e0b-3f5a7d9c1e24")

// Build loads the document and builds its graph state. A non-empty
// opts.Stage builds that stage's steps instead of the stage sequence.
func Build(opts Options) (Built, error) {
	loaded, err := workflow.Load(opts.Input, opts.Format)
	if err != nil {
		return Built{}, err
	}

	bopts := opts.GraphOptions(loaded)

	out := Built{Errors: loaded.Errors}
	if opts.Stage != "" {
		out.Nodes, err = graph.BuildStage(loaded.Document, opts.Stage, bopts)
		if err != nil {
			return Built{}, err
		}
		return out, nil
	}
	out.Nodes = graph.BuildDocument(loaded.Document, bopts)
	return out, nil
}

// GraphOptions returns the builder options for a loaded document: content
// IDs unless IDFunc is set, the status map, and the document's violations
// unless NoValidation is set.
func (o *Options) GraphOptions(loaded *workflow.Loaded) graph.Options {
	bopts := graph.Options{
		IDFunc:   o.IDFunc,
		Statuses: o.statuses(),
		Logger:   o.Logger,
	}
	if bopts.IDFunc == nil {
		bopts.IDFunc = ContentIDs(loaded.JSON)
	}
	if !o.NoValidation {
		bopts.Errors = loaded.Errors
	}
	return bopts
}

// ContentIDs returns an ID generator whose sequence depends only on doc, so
// rebuilding the same document yields the same node IDs. Clients that
// measure boxes against one build can route against the next.
func ContentIDs(doc []byte) graph.IDFunc {
	seed := uuid.NewSHA1(idNamespace, doc)
	n := 0
	return func() string {
		n++
		return uuid.NewSHA1(seed, []byte(strconv.Itoa(n))).String()
	}
}
