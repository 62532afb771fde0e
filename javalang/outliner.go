package javalang

import (
	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Outline walks tree depth-first and produces the nested document
// symbol list spec.md §4.G describes, grounded on the original's
// traverse_node in lang/java.rs.
func Outline(tree *sitter.Tree, src []byte) []protocol.DocumentSymbol {
	return traverseNode(tree.RootNode(), src)
}

func traverseNode(node *sitter.Node, src []byte) []protocol.DocumentSymbol {
	var symbols []protocol.DocumentSymbol

	for _, child := range children(node) {
		kind := child.Type()

		if kind == "field_declaration" {
			typeNode := child.ChildByFieldName("type")
			typeName := nodeText(typeNode, src)

			for _, sub := range children(child) {
				if sub.Type() != "variable_declarator" {
					continue
				}
				nameNode := sub.ChildByFieldName("name")
				if nameNode == nil {
					nameNode = sub
				}
				name := nodeText(nameNode, src)
				detail := typeName
				rng := nodeRange(sub)
				selRng := nodeRange(nameNode)
				symbols = append(symbols, protocol.DocumentSymbol{
					Name:           name,
					Detail:         &detail,
					Kind:           protocol.SymbolKindField,
					Range:          rng,
					SelectionRange: selRng,
				})
			}
			continue
		}

		symbolKind, isDecl := declarationSymbolKind(kind)
		if isDecl {
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				nameNode = child
			}
			name := nodeText(nameNode, src)

			var detail *string
			if symbolKind == protocol.SymbolKindMethod {
				if typeNode := child.ChildByFieldName("type"); typeNode != nil {
					d := nodeText(typeNode, src)
					detail = &d
				}
			}

			var nested []protocol.DocumentSymbol
			if symbolKind == protocol.SymbolKindClass || symbolKind == protocol.SymbolKindInterface || symbolKind == protocol.SymbolKindEnum {
				nested = traverseNode(child, src)
			}

			symbols = append(symbols, protocol.DocumentSymbol{
				Name:           name,
				Detail:         detail,
				Kind:           symbolKind,
				Range:          nodeRange(child),
				SelectionRange: nodeRange(nameNode),
				Children:       nested,
			})
			continue
		}

		if kind == "class_body" || kind == "program" || kind == "enum_body" {
			symbols = append(symbols, traverseNode(child, src)...)
		}
	}
	return symbols
}

func declarationSymbolKind(nodeKind string) (protocol.SymbolKind, bool) {
	switch nodeKind {
	case "class_declaration":
		return protocol.SymbolKindClass, true
	case "interface_declaration":
		return protocol.SymbolKindInterface, true
	case "enum_declaration":
		return protocol.SymbolKindEnum, true
	case "method_declaration":
		return protocol.SymbolKindMethod, true
	case "constructor_declaration":
		return protocol.SymbolKindConstructor, true
	default:
		return 0, false
	}
}
