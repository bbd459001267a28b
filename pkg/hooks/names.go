package hooks

// Hook names used by the rendering core.
//
// Arguments passed to each hook are listed next to its name. Filters receive
// the value being transformed first, followed by the listed arguments.
const (
	// Registered fires after a block definition is registered.
	// Action args: *registry.Definition.
	Registered = "blockpress/registry/registered"

	// Blocks filters the definitions offered for a context.
	// Filter value: []*registry.Definition. Args: context string.
	Blocks = "blockpress/registry/blocks"

	// BeforeGenerate fires before an adapter walks a document.
	// Action args: block.Tree, context string.
	BeforeGenerate = "blockpress/adapter/before-generate"

	// AfterGenerate fires after an adapter walked a document.
	// Action args: block.Tree, context string, output string.
	AfterGenerate = "blockpress/adapter/after-generate"

	// Generated filters the final, wrapped output of an adapter.
	// Filter value: string. Args: block.Tree, block.Settings, context string.
	Generated = "blockpress/adapter/generated"

	// BlockHTMLAll filters the markup of every block.
	// Filter value: string. Args: block.Block, context string.
	BlockHTMLAll = "blockpress/adapter/block-html"

	// AssetURL filters asset URLs (image sources and similar) before they are
	// written into final markup.
	// Filter value: string. Args: block.Block, context string.
	AssetURL = "blockpress/trusted/asset-url"

	// TrustedHTML filters the markup a trusted generator produced for one
	// placeholder.
	// Filter value: string. Args: block.Block.
	TrustedHTML = "blockpress/trusted/block-html"
)

// ContextBlocks names the filter over definitions offered for one context.
func ContextBlocks(ctx string) string {
	return Blocks + "/" + ctx
}

// BlockHTML names the per-type block markup filter.
func BlockHTML(typ string) string {
	return BlockHTMLAll + "/" + typ
}

// CategoryHTML names the per-category block markup filter.
func CategoryHTML(category string) string {
	return BlockHTMLAll + "/category/" + category
}
