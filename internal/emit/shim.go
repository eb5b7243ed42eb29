package emit

import (
	"io"
	"path/filepath"
	"text/template"

	"github.com/plank-ts/plank/domain"
)

// shimTemplate renders a small CommonJS module that loads the root module's
// compiled JS and re-exports each rooted export under its canonical name,
// erasing all type information (spec.md §6).
var shimTemplate = template.Must(template.New("shim").Parse(
	`// Code generated by plank. DO NOT EDIT.
const __plank_source = require("{{.Source}}");

{{range .Names -}}
exports.{{.}} = __plank_source.{{.}};
{{end -}}
`))

type shimData struct {
	Source string
	Names  []string
}

// JSShim writes the `<stem>.arr.js` artifact for the root module of tg.
// stem names the sibling compiled-JS module this shim requires (default
// "./<stem>.js", matching spec.md §6's default path resolution).
func JSShim(w io.Writer, root domain.CanonPath, stem string, tg *domain.TypedModuleGraph) error {
	node, ok := tg.Nodes[root]
	if !ok {
		return domain.NewEmitError("emit", root, "root module %q has no typed node", root)
	}

	// Only the value namespace has a runtime representation to re-export;
	// "types are erased in this artifact" (spec.md §6) means interfaces,
	// type aliases and enums (rooted type-namespace-only, per the
	// enum-identity simplification) contribute nothing here.
	data := shimData{Source: "./" + filepath.Base(stem) + ".js", Names: node.ExportedValueOrder}
	if err := shimTemplate.Execute(w, data); err != nil {
		return domain.NewEmitError("emit", root, "rendering JS shim: %v", err)
	}
	return nil
}
