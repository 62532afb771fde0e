package javalang

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/index"
)

// indexQuery captures the declaration-shaped nodes the indexer cares
// about, grounded directly on the original's JAVA_QUERY in indexer.rs.
// Package and import declarations are matched under both the common
// (scoped_identifier) and single-segment (identifier) shapes, since a
// one-segment package name ("package demo;") parses as a bare
// identifier in tree-sitter-java and the original's query misses it.
const indexQuery = `
(package_declaration (scoped_identifier) @package)
(package_declaration (identifier) @package)
(import_declaration (scoped_identifier) @import)
(import_declaration (identifier) @import)
(class_declaration name: (identifier) @class)
(interface_declaration name: (identifier) @interface)
(enum_declaration name: (identifier) @enum)
(record_declaration name: (identifier) @record)
(annotation_type_declaration name: (identifier) @annotation)
`

// IndexFile runs the declaration query over tree and upserts the
// resulting facts/classes/members into idx under uri, in one atomic
// call per spec.md §4.C's atomicity requirement.
func IndexFile(idx *index.GlobalIndex, uri string, tree *sitter.Tree, src []byte) error {
	lang := Language()
	query, err := sitter.NewQuery([]byte(indexQuery), lang)
	if err != nil {
		return err
	}
	defer query.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(query, tree.RootNode())

	var (
		pkg            string
		hasPackage     bool
		imports        []string
		definedClasses []string
		classes        []index.IndexedClass
		members        []index.IndexedMember
	)

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, capture := range match.Captures {
			node := capture.Node
			name := query.CaptureNameForId(capture.Index)
			text := nodeText(node, src)

			switch name {
			case "package":
				pkg = text
				hasPackage = true
			case "import":
				imports = append(imports, text)
			case "class", "interface", "enum", "record", "annotation":
				definedClasses = append(definedClasses, text)

				fqcn := text
				if hasPackage {
					fqcn = pkg + "." + text
				}

				classNode := node.Parent()
				if classNode == nil {
					classNode = node
				}

				classes = append(classes, index.IndexedClass{
					ShortName: text,
					FQCN:      fqcn,
					URI:       uri,
					Range:     nodeRange(classNode),
				})

				if body := classNode.ChildByFieldName("body"); body != nil {
					members = append(members, collectMembers(body, fqcn, uri, src)...)
				}
			}
		}
	}

	facts := index.FileFacts{
		Package:        pkg,
		HasPackage:     hasPackage,
		Imports:        imports,
		DefinedClasses: definedClasses,
	}
	idx.UpsertFile(uri, facts, classes, members)
	return nil
}

// collectMembers recurses one level into a class body, grounded on
// the original's collect_members: direct method_declaration children
// become one IndexedMember each, direct field_declaration children
// contribute one IndexedMember per variable_declarator.
func collectMembers(classBody *sitter.Node, fqcn, uri string, src []byte) []index.IndexedMember {
	var out []index.IndexedMember

	for _, child := range children(classBody) {
		switch child.Type() {
		case "method_declaration":
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := nodeText(nameNode, src)
			count, types, varargs := paramSignature(child.ChildByFieldName("parameters"), src)
			out = append(out, index.IndexedMember{
				Name:       name,
				FQMN:       fqcn + "." + name,
				URI:        uri,
				Range:      nodeRange(nameNode),
				IsField:    false,
				IsVarargs:  varargs,
				ParamCount: count,
				ParamTypes: types,
			})

		case "field_declaration":
			typeNode := child.ChildByFieldName("type")
			fieldType, hasType := parseFieldType(typeNode, src)

			for _, sub := range children(child) {
				if sub.Type() != "variable_declarator" {
					continue
				}
				nameNode := sub.ChildByFieldName("name")
				if nameNode == nil {
					continue
				}
				name := nodeText(nameNode, src)
				out = append(out, index.IndexedMember{
					Name:         name,
					FQMN:         fqcn + "." + name,
					URI:          uri,
					Range:        nodeRange(nameNode),
					IsField:      true,
					FieldType:    fieldType,
					HasFieldType: hasType,
				})
			}
		}
	}
	return out
}

// paramSignature reads a method's "parameters" field node, returning
// its arity, each parameter's textual type, and whether the last
// parameter is a spread_parameter (varargs).
func paramSignature(params *sitter.Node, src []byte) (count int, types []string, varargs bool) {
	if params == nil {
		return 0, nil, false
	}
	kids := namedChildren(params)
	for _, p := range kids {
		switch p.Type() {
		case "formal_parameter":
			types = append(types, nodeText(p.ChildByFieldName("type"), src))
		case "spread_parameter":
			types = append(types, nodeText(p.ChildByFieldName("type"), src))
			varargs = true
		default:
			continue
		}
		count++
	}
	return count, types, varargs
}

// parseFieldType parses a field_declaration's "type" field into an
// InferredType for IndexedMember.field_type.
func parseFieldType(typeNode *sitter.Node, src []byte) (index.InferredType, bool) {
	if typeNode == nil {
		return index.InferredType{}, false
	}
	return parseJavaType(typeNode, src), true
}
