package engine

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/deadcore/analyzer/internal/graph"
	"github.com/deadcore/analyzer/internal/tsast"
)

// importRef is one raw specifier found in a file's AST, tagged with the
// EdgeKind it should become once resolved.
type importRef struct {
	specifier string
	kind      graph.EdgeKind
}

// extractImportRefs walks a parsed tree once, collecting every static
// import declaration (type-only or not), re-export, require(...) call, and
// dynamic import(...) expression with a literal argument.
//
// Grounded on the teacher's internal/analyzer/c3_architecture/typescript.go
// (tsExtractModulePath, tsExtractRequirePath): field-based access to
// import_statement's "source" and a text comparison on call_expression's
// "function" child for require detection.
func extractImportRefs(root *tree_sitter.Node, content []byte) []importRef {
	var refs []importRef

	tsast.WalkTree(root, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "import_statement":
			src := node.ChildByFieldName("source")
			if src == nil {
				return
			}
			specifier := tsast.StripQuotes(tsast.NodeText(src, content))
			kind := graph.Import
			if importClauseIsTypeOnly(node, content) {
				kind = graph.TypeImport
			}
			refs = append(refs, importRef{specifier: specifier, kind: kind})

		case "export_statement":
			src := node.ChildByFieldName("source")
			if src == nil {
				return
			}
			specifier := tsast.StripQuotes(tsast.NodeText(src, content))
			refs = append(refs, importRef{specifier: specifier, kind: graph.Import})

		case "call_expression":
			fn := node.ChildByFieldName("function")
			if fn == nil {
				return
			}
			name := tsast.NodeText(fn, content)
			switch {
			case name == "require":
				if specifier := firstStringArgText(node, content); specifier != "" {
					refs = append(refs, importRef{specifier: specifier, kind: graph.Require})
				}
			case fn.Kind() == "import" || name == "import":
				if specifier := firstStringArgText(node, content); specifier != "" {
					refs = append(refs, importRef{specifier: specifier, kind: graph.DynamicImport})
				}
			}
		}
	})

	return refs
}

// importClauseIsTypeOnly reports whether an import_statement carries the
// "type" keyword ahead of its clause (import type { X } from "mod"). The
// grammar places that keyword as a direct child of import_statement,
// before the import_clause node.
func importClauseIsTypeOnly(importStatement *tree_sitter.Node, content []byte) bool {
	for i := uint(0); i < importStatement.ChildCount(); i++ {
		child := importStatement.Child(i)
		if child == nil {
			continue
		}
		if child.Kind() == "import_clause" {
			return false
		}
		if tsast.NodeText(child, content) == "type" {
			return true
		}
	}
	return false
}

func firstStringArgText(call *tree_sitter.Node, content []byte) string {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child != nil && child.Kind() == "string" {
			return tsast.StripQuotes(tsast.NodeText(child, content))
		}
	}
	return ""
}

// exportedNames collects the identifiers a file's symbol-name match can
// key on: every named class declaration and the identifier named by a
// default export, per the spec's "class names, default-exported
// identifier" rule.
func exportedNames(root *tree_sitter.Node, content []byte) []string {
	var names []string

	tsast.WalkTree(root, func(node *tree_sitter.Node) {
		switch node.Kind() {
		case "class_declaration":
			if name := node.ChildByFieldName("name"); name != nil {
				names = append(names, tsast.NodeText(name, content))
			}
		case "export_statement":
			if isDefaultExport(node, content) {
				if ident := defaultExportIdentifier(node, content); ident != "" {
					names = append(names, ident)
				}
			}
		}
	})

	return names
}

func isDefaultExport(exportStatement *tree_sitter.Node, content []byte) bool {
	for i := uint(0); i < exportStatement.ChildCount(); i++ {
		if child := exportStatement.Child(i); child != nil && tsast.NodeText(child, content) == "default" {
			return true
		}
	}
	return false
}

// defaultExportIdentifier returns the bare identifier named by `export
// default X;`, or "" when the default export is an anonymous expression.
func defaultExportIdentifier(exportStatement *tree_sitter.Node, content []byte) string {
	for i := uint(0); i < exportStatement.ChildCount(); i++ {
		child := exportStatement.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "identifier":
			return tsast.NodeText(child, content)
		case "class_declaration", "function_declaration":
			if name := child.ChildByFieldName("name"); name != nil {
				return tsast.NodeText(name, content)
			}
		}
	}
	return ""
}
