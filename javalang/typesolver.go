package javalang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/index"
)

// TypeSolver infers the InferredType of an expression node. It is a
// pure function of (node, rope-backed source, global index,
// current-file URI): no mutation, no I/O, grounded line-for-line on
// the original's inference.rs TypeSolver.
type TypeSolver struct {
	Src  []byte
	Idx  *index.GlobalIndex
	URI  string
}

// NewTypeSolver builds a solver over one file's source bytes.
func NewTypeSolver(src []byte, idx *index.GlobalIndex, uri string) *TypeSolver {
	return &TypeSolver{Src: src, Idx: idx, URI: uri}
}

// Infer dispatches on node.Type(), one case per expression shape the
// resolver and completion need a type for. Anything else is Unknown.
func (s *TypeSolver) Infer(node *sitter.Node) index.InferredType {
	if node == nil {
		return index.InferredType{}
	}
	switch node.Type() {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal", "binary_integer_literal":
		text := nodeText(node, s.Src)
		if strings.HasSuffix(text, "L") || strings.HasSuffix(text, "l") {
			return index.InferredType{Kind: index.TypeLong}
		}
		return index.InferredType{Kind: index.TypeInt}

	case "decimal_floating_point_literal", "hex_floating_point_literal":
		text := nodeText(node, s.Src)
		if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
			return index.InferredType{Kind: index.TypeFloat}
		}
		return index.InferredType{Kind: index.TypeDouble}

	case "string_literal":
		return index.InferredType{Kind: index.TypeString}

	case "true", "false":
		return index.InferredType{Kind: index.TypeBoolean}

	case "character_literal":
		return index.InferredType{Kind: index.TypeChar}

	case "identifier":
		return s.resolveVariableType(node)

	case "method_invocation":
		return s.resolveMethodReturnType(node)

	case "object_creation_expression":
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			return parseJavaType(typeNode, s.Src)
		}
		return index.InferredType{}

	case "parenthesized_expression":
		if inner := firstNamedChild(node); inner != nil {
			return s.Infer(inner)
		}
		return index.InferredType{}

	case "cast_expression":
		if typeNode := node.ChildByFieldName("type"); typeNode != nil {
			return parseJavaType(typeNode, s.Src)
		}
		return index.InferredType{}

	default:
		return index.InferredType{}
	}
}

func firstNamedChild(node *sitter.Node) *sitter.Node {
	if node == nil || node.NamedChildCount() == 0 {
		return nil
	}
	return node.NamedChild(0)
}

// resolveVariableType walks identifierNode's ancestor chain looking
// for the declaration it names, then reads that declaration's type
// field, grounded on resolve_variable_type.
func (s *TypeSolver) resolveVariableType(identifierNode *sitter.Node) index.InferredType {
	name := nodeText(identifierNode, s.Src)

	def := findDeclarationNode(identifierNode, name, s.Src)
	if def == nil {
		return index.InferredType{}
	}

	if parent := def.Parent(); parent != nil {
		kind := parent.Type()
		if (kind == "local_variable_declaration" || kind == "field_declaration") {
			if typeNode := parent.ChildByFieldName("type"); typeNode != nil {
				return parseJavaType(typeNode, s.Src)
			}
		}
	}

	if def.Type() == "formal_parameter" || def.Type() == "spread_parameter" {
		if typeNode := def.ChildByFieldName("type"); typeNode != nil {
			return parseJavaType(typeNode, s.Src)
		}
	}

	// enhanced_for_statement shape A returns the statement node itself
	if def.Type() == "enhanced_for_statement" {
		if typeNode := def.ChildByFieldName("type"); typeNode != nil {
			return parseJavaType(typeNode, s.Src)
		}
	}

	return index.InferredType{}
}

// resolveMethodReturnType looks up the enclosing class's own
// method_declaration matching the invocation's name (name+arity only,
// per the deliberate non-recursive design note in spec.md §9) and
// reads its return type field.
func (s *TypeSolver) resolveMethodReturnType(invocation *sitter.Node) index.InferredType {
	nameNode := invocation.ChildByFieldName("name")
	if nameNode == nil {
		return index.InferredType{}
	}
	methodName := nodeText(nameNode, s.Src)

	arity := 0
	if args := invocation.ChildByFieldName("arguments"); args != nil {
		arity = int(args.NamedChildCount())
	}
	def := findMethodDefinitionNode(invocation, methodName, arity, s.Src)
	if def == nil {
		return index.InferredType{}
	}
	typeNode := def.ChildByFieldName("type")
	if typeNode == nil {
		return index.InferredType{}
	}
	if typeNode.Type() == "void_type" {
		return index.InferredType{}
	}
	return parseJavaType(typeNode, s.Src)
}

// findDeclarationNode implements the five-step local-scope search from
// spec.md §4.E / the original's find_declaration_node: method/ctor
// parameters, block-scoped locals, enhanced-for loop variables, class
// fields, and try-with-resources resources, innermost-first.
func findDeclarationNode(start *sitter.Node, target string, src []byte) *sitter.Node {
	curr := start
	for {
		parent := curr.Parent()
		if parent == nil {
			return nil
		}
		kind := parent.Type()

		if kind == "method_declaration" || kind == "constructor_declaration" {
			if params := parent.ChildByFieldName("parameters"); params != nil {
				for _, param := range namedChildren(params) {
					if param.Type() == "formal_parameter" || param.Type() == "spread_parameter" {
						if n := param.ChildByFieldName("name"); n != nil && nodeText(n, src) == target {
							return param
						}
					}
				}
			}
		}

		if kind == "block" {
			for _, child := range children(parent) {
				if child.Type() == "local_variable_declaration" {
					if n := findInDeclarators(child, target, src); n != nil {
						return n
					}
				}
			}
		}

		if kind == "enhanced_for_statement" {
			if nameNode := parent.ChildByFieldName("name"); nameNode != nil && nodeText(nameNode, src) == target {
				return parent
			}
			for _, child := range children(parent) {
				if child.Type() == "formal_parameter" {
					if n := child.ChildByFieldName("name"); n != nil && nodeText(n, src) == target {
						return child
					}
				}
			}
		}

		if kind == "class_declaration" {
			if body := parent.ChildByFieldName("body"); body != nil {
				for _, child := range children(body) {
					if child.Type() == "field_declaration" {
						if n := findInDeclarators(child, target, src); n != nil {
							return n
						}
					}
				}
			}
		}

		if kind == "resource_specification" {
			for _, resource := range children(parent) {
				if resource.Type() == "resource" {
					if n := resource.ChildByFieldName("name"); n != nil && nodeText(n, src) == target {
						return resource
					}
				}
			}
		}

		curr = parent
	}
}

func findInDeclarators(declaration *sitter.Node, target string, src []byte) *sitter.Node {
	for _, child := range children(declaration) {
		if child.Type() == "variable_declarator" {
			if n := child.ChildByFieldName("name"); n != nil && nodeText(n, src) == target {
				return child
			}
		}
	}
	return nil
}

// findMethodDefinitionNode walks outward to the nearest enclosing
// class_declaration and returns its first direct method_declaration
// matching target by name and accepting arity arguments (exactly, or
// at least one fewer than its parameter count for varargs). Argument
// types are not inferred here; see spec.md §9 on bounding recursion in
// the type solver.
func findMethodDefinitionNode(start *sitter.Node, target string, arity int, src []byte) *sitter.Node {
	curr := start
	for {
		parent := curr.Parent()
		if parent == nil {
			return nil
		}
		if parent.Type() == "class_declaration" {
			if body := parent.ChildByFieldName("body"); body != nil {
				for _, child := range children(body) {
					if child.Type() == "method_declaration" {
						if n := child.ChildByFieldName("name"); n != nil && nodeText(n, src) == target {
							count, _, varargs := paramSignature(child.ChildByFieldName("parameters"), src)
							if arity == count || (varargs && arity >= count-1) {
								return child
							}
						}
					}
				}
			}
		}
		curr = parent
	}
}

// primitiveTypes maps Java primitive/boxed type names to InferredType
// kinds; apart from String (its own variant), anything else parses as
// Class(name).
var primitiveTypes = map[string]index.TypeKind{
	"int":     index.TypeInt,
	"Integer": index.TypeInt,
	"long":    index.TypeLong,
	"Long":    index.TypeLong,
	"boolean": index.TypeBoolean,
	"Boolean": index.TypeBoolean,
	"char":    index.TypeChar,
	"Character": index.TypeChar,
	"float":   index.TypeFloat,
	"Float":   index.TypeFloat,
	"double":  index.TypeDouble,
	"Double":  index.TypeDouble,
}

// parseJavaType turns a type-field node's text into an InferredType,
// grounded on the original's parse_java_type (ast.rs): primitive and
// boxed names map to their tagged variant, String to the String
// variant, everything else (including
// generic and array types, taken by their head name) is Class(name).
func parseJavaType(typeNode *sitter.Node, src []byte) index.InferredType {
	if typeNode == nil {
		return index.InferredType{}
	}
	return parseTypeText(nodeText(typeNode, src))
}

// parseTypeText is parseJavaType's string-keyed twin, used to parse
// the param_types recorded in the index (plain strings captured at
// index time) instead of a live tree-sitter node.
func parseTypeText(text string) index.InferredType {
	head := text
	if idx := strings.IndexAny(head, "<["); idx >= 0 {
		head = head[:idx]
	}
	head = strings.TrimSpace(head)
	if head == "String" {
		return index.InferredType{Kind: index.TypeString}
	}
	if kind, ok := primitiveTypes[head]; ok {
		return index.InferredType{Kind: kind}
	}
	return index.InferredType{Kind: index.TypeClass, Class: head}
}
