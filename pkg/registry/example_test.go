package registry_test

import (
	"fmt"

	"github.com/matzehuels/blockpress/pkg/block"
	"github.com/matzehuels/blockpress/pkg/registry"
)

func ExampleRegistry_CreateInstance() {
	reg := registry.New(nil, nil, registry.WithIDGenerator(func() string { return "b1" }))
	reg.MustRegister(registry.Definition{
		Type:     "callout",
		Label:    "Callout",
		Defaults: block.Props{"tone": "info", "text": ""},
		Generators: map[string]registry.Generator{
			registry.ContextAll: func(p block.Props, _ registry.Options) string {
				return "<aside>" + p.String("text", "") + "</aside>"
			},
		},
	})

	b, err := reg.CreateInstance("callout", block.Props{"text": "Heads up"})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(b.ID, b.Type, b.Props)
	// Output:
	// b1 callout map[text:Heads up tone:info]
}

func ExampleRegistry_Resolve() {
	reg := registry.New(nil, nil)
	reg.MustRegister(registry.Definition{
		Type:     "toc",
		Label:    "Table of contents",
		Contexts: []string{registry.ContextPage},
		Generators: map[string]registry.Generator{
			registry.ContextPage: registry.Deferred(),
		},
	})

	for _, ctx := range []string{registry.ContextPage, registry.ContextEmail} {
		_, res := reg.Resolve("toc", ctx)
		fmt.Println(ctx, res)
	}
	_, res := reg.Resolve("gallery", registry.ContextPage)
	fmt.Println("gallery", res)
	// Output:
	// page resolved
	// email unsupported-context
	// gallery unknown-type
}
