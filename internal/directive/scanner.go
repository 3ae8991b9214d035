package directive

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
)

// Scanner parses JavaScript modules with Tree-sitter and extracts the
// directive kind, the export surface, and the static import specifiers.
//
// A Scanner is not safe for concurrent use; create one per goroutine.
type Scanner struct {
	parser *sitter.Parser
}

// NewScanner creates a Scanner for JavaScript sources (.js, .jsx, .mjs).
func NewScanner() *Scanner {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Scanner{parser: p}
}

// Scan classifies the module at path and discovers its exports and imports.
// path is used only for error reporting; src is the module source.
func (s *Scanner) Scan(path string, src []byte) (*ScanResult, error) {
	tree, err := s.parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	result := &ScanResult{Kind: KindShared}

	kind, err := classify(root, path, src)
	if err != nil {
		return nil, err
	}
	result.Kind = kind

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "import_statement":
			if source := child.ChildByFieldName("source"); source != nil {
				result.Imports = append(result.Imports, Import{
					Specifier: stringLiteralValue(source, src),
				})
			}
		case "export_statement":
			names, err := exportNames(child, src)
			if err != nil {
				return nil, fmt.Errorf("module %q: %w", path, err)
			}
			result.Exports = append(result.Exports, names...)
		}
	}

	// Dynamic import() expressions can appear anywhere in the tree.
	dynamic, err := collectDynamicImports(root, path, src)
	if err != nil {
		return nil, err
	}
	result.Imports = append(result.Imports, dynamic...)

	return result, nil
}

// classify scans only top-level expression statements that are bare string
// literals. The first literal matching a directive determines the kind;
// non-matching literals are ignored. Finding both directives anywhere at the
// top level is a classification error.
func classify(root *sitter.Node, path string, src []byte) (Kind, error) {
	kind := KindShared
	var sawClient, sawServer bool

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() != "expression_statement" {
			continue
		}
		if child.NamedChildCount() != 1 {
			continue
		}
		lit := child.NamedChild(0)
		if lit.Type() != "string" {
			continue
		}
		switch stringLiteralValue(lit, src) {
		case UseClient:
			sawClient = true
			if kind == KindShared {
				kind = KindClient
			}
		case UseServer:
			sawServer = true
			if kind == KindShared {
				kind = KindServer
			}
		}
	}

	if sawClient && sawServer {
		return KindShared, &ConflictingDirectiveError{Path: path}
	}
	return kind, nil
}

// exportNames discovers the exported binding names of one export statement.
// Handles function/class declarations, const lists with multiple
// declarators, specifier lists with aliases, and default exports.
func exportNames(node *sitter.Node, src []byte) ([]string, error) {
	// export default <expr-or-named-function> always binds "default",
	// regardless of whether the exported value has its own name.
	if hasDefaultKeyword(node) {
		return []string{"default"}, nil
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		switch decl.Type() {
		case "function_declaration", "generator_function_declaration", "class_declaration":
			if name := decl.ChildByFieldName("name"); name != nil {
				return []string{name.Content(src)}, nil
			}
			return []string{"default"}, nil
		case "lexical_declaration", "variable_declaration":
			var names []string
			for i := 0; i < int(decl.NamedChildCount()); i++ {
				d := decl.NamedChild(i)
				if d.Type() != "variable_declarator" {
					continue
				}
				if name := d.ChildByFieldName("name"); name != nil {
					names = append(names, name.Content(src))
				}
			}
			return names, nil
		default:
			return nil, fmt.Errorf("unsupported export declaration %q", decl.Type())
		}
	}

	// export { a, b as c }: the alias, when present, is the exported name.
	var names []string
	for i := 0; i < int(node.NamedChildCount()); i++ {
		clause := node.NamedChild(i)
		if clause.Type() != "export_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			spec := clause.NamedChild(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			if alias := spec.ChildByFieldName("alias"); alias != nil {
				names = append(names, alias.Content(src))
			} else if name := spec.ChildByFieldName("name"); name != nil {
				names = append(names, name.Content(src))
			}
		}
	}
	return names, nil
}

// hasDefaultKeyword reports whether an export_statement carries the
// "default" keyword token.
func hasDefaultKeyword(node *sitter.Node) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			return true
		}
	}
	return false
}

// collectDynamicImports walks the whole tree looking for import(...) call
// expressions. A non-literal argument is a build-time error.
func collectDynamicImports(node *sitter.Node, path string, src []byte) ([]Import, error) {
	var imports []Import

	var walk func(n *sitter.Node) error
	walk = func(n *sitter.Node) error {
		if n.Type() == "call_expression" {
			fn := n.ChildByFieldName("function")
			if fn != nil && fn.Type() == "import" {
				spec, err := dynamicSpecifier(n, path, src)
				if err != nil {
					return err
				}
				imports = append(imports, Import{Specifier: spec, Dynamic: true})
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if err := walk(n.NamedChild(i)); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(node); err != nil {
		return nil, err
	}
	return imports, nil
}

// dynamicSpecifier extracts the literal argument of an import() call.
func dynamicSpecifier(call *sitter.Node, path string, src []byte) (string, error) {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return "", &UnresolvableImportError{Path: path, Line: call.StartPoint().Row + 1}
	}
	arg := args.NamedChild(0)
	if arg.Type() != "string" {
		return "", &UnresolvableImportError{Path: path, Line: arg.StartPoint().Row + 1}
	}
	return stringLiteralValue(arg, src), nil
}

// stringLiteralValue returns the unquoted contents of a string node.
func stringLiteralValue(node *sitter.Node, src []byte) string {
	text := node.Content(src)
	if len(text) >= 2 {
		switch text[0] {
		case '"', '\'', '`':
			return strings.Trim(text, string(text[0]))
		}
	}
	return text
}
