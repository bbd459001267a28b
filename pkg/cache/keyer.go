package cache

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey keys the output of one adapter run.
	RenderKey(treeHash string, opts RenderKeyOpts) string
	// FinalizeKey keys the output of the trusted pass over a fragment.
	FinalizeKey(fragmentHash, treeHash string) string
}

// RenderKeyOpts holds the render inputs besides the tree that change the
// output.
type RenderKeyOpts struct {
	Context      string         `json:"context"`
	Settings     map[string]any `json:"settings,omitempty"`
	Finalize     bool           `json:"finalize,omitempty"`
	Standalone   bool           `json:"standalone,omitempty"`
	RegistryHash string         `json:"registry,omitempty"`
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// RenderKey returns "render:<context>:<hash>".
func (DefaultKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return hashKey("render:"+opts.Context, treeHash, opts)
}

// FinalizeKey returns "finalize:<hash>".
func (DefaultKeyer) FinalizeKey(fragmentHash, treeHash string) string {
	return hashKey("finalize", fragmentHash, treeHash)
}

var _ Keyer = DefaultKeyer{}
