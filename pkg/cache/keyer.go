package cache

// Keyer derives cache keys for each cached result kind.
type Keyer interface {
	// GraphKey is the key of the graph state built from a document.
	GraphKey(documentHash string, opts GraphKeyOpts) string
	// RouteKey is the key of the paths routed over a graph.
	RouteKey(graphHash string, opts RouteKeyOpts) string
	// ArtifactKey is the key of one rendered output format.
	ArtifactKey(routeHash string, opts ArtifactKeyOpts) string
}

// GraphKeyOpts are the build options that change the graph state.
type GraphKeyOpts struct {
	Stage      string            `json:"stage,omitempty"`
	Statuses   map[string]string `json:"statuses,omitempty"`
	Validation bool              `json:"validation,omitempty"`
}

// RouteKeyOpts are the routing options that change the paths.
type RouteKeyOpts struct {
	Scale      float64  `json:"scale"`
	Editable   bool     `json:"editable,omitempty"`
	Collapsed  []string `json:"collapsed,omitempty"`
	BoxesHash  string   `json:"boxes_hash,omitempty"`
	ConfigHash string   `json:"config_hash,omitempty"`
}

// ArtifactKeyOpts select one rendered output.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Theme  string `json:"theme,omitempty"`
}

// DefaultKeyer hashes options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(documentHash string, opts GraphKeyOpts) string {
	return hashKey("graph", documentHash, opts)
}

// RouteKey implements [Keyer].
func (DefaultKeyer) RouteKey(graphHash string, opts RouteKeyOpts) string {
	return hashKey("route", graphHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(routeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, routeHash, opts.Theme)
}
