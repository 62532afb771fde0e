package javalang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/index"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Resolve implements the go-to-definition algorithm of spec.md §4.F:
// node selection, then a fixed lookup order where the first non-null
// step wins. Grounded on the original's JavaService::goto_definition
// in lang/java.rs, generalized to the full scored overload lookup the
// original leaves as a TODO ("overload support for global index").
func Resolve(tree *sitter.Tree, src []byte, cursor sitter.Point, idx *index.GlobalIndex, currentURI string) *protocol.Location {
	node := descendantForPoint(tree.RootNode(), cursor)
	if node == nil {
		return nil
	}
	kind := node.Type()
	if kind != "identifier" && kind != "type_identifier" && kind != "field_identifier" {
		return nil
	}
	name := nodeText(node, src)
	parent := node.Parent()

	solver := NewTypeSolver(src, idx, currentURI)

	var argNodes []*sitter.Node
	argCount := -1
	if parent != nil && parent.Type() == "method_invocation" && parent.ChildByFieldName("name") == node {
		if args := parent.ChildByFieldName("arguments"); args != nil {
			argNodes = namedChildren(args)
			argCount = len(argNodes)
		}
	}
	argTypes := make([]index.InferredType, len(argNodes))
	for i, a := range argNodes {
		argTypes[i] = solver.Infer(a)
	}
	isCallLike := argCount >= 0

	var qualifier *sitter.Node
	if parent != nil && (parent.Type() == "field_access" || parent.Type() == "method_invocation") {
		qualifier = parent.ChildByFieldName("object")
	}

	// Steps 1 and 2 build locations in the current file straight from
	// its tree, so they only run while that file is in the index.
	currentIndexed := idx.HasURI(currentURI)

	// Step 1: local scope (parameters, locals, enhanced-for, fields
	// and methods of the enclosing class), only when unqualified.
	if qualifier == nil && currentIndexed {
		if loc := resolveLocal(node, name, argTypes, isCallLike, src, currentURI); loc != nil {
			return loc
		}
	}

	// Step 2: same-file class shadowing beats any global lookup.
	if currentIndexed {
		if loc := resolveSameFileClass(tree, src, name, currentURI); loc != nil {
			return loc
		}
	}

	facts, hasFacts := idx.FileFacts(currentURI)

	// Step 3: explicit import.
	if hasFacts {
		for _, imp := range facts.Imports {
			if !strings.HasSuffix(imp, "."+name) && imp != name {
				continue
			}
			for _, c := range idx.ClassesByShortName(name) {
				if c.FQCN == imp {
					if loc := classLocation(idx, c); loc != nil {
						return loc
					}
				}
			}
		}
	}

	// Step 4: same package.
	if hasFacts && facts.HasPackage {
		wanted := facts.Package + "." + name
		for _, c := range idx.ClassesByShortName(name) {
			if c.FQCN == wanted {
				if loc := classLocation(idx, c); loc != nil {
					return loc
				}
			}
		}
	}

	// Step 5: member lookup via qualifier chain.
	if qualifier != nil {
		if loc := resolveQualifiedMember(qualifier, name, argTypes, isCallLike, idx, src, currentURI); loc != nil {
			return loc
		}
	}

	// Step 6: java.lang fallback.
	for _, c := range idx.ClassesByShortName(name) {
		if strings.HasPrefix(c.FQCN, "java.lang.") {
			if loc := classLocation(idx, c); loc != nil {
				return loc
			}
		}
	}

	return nil
}

// classLocation builds a Location from an indexed class, but only if
// idx still carries records for its URI: a class slice read earlier in
// Resolve can outlive a concurrent RemoveFile/UpsertFile on that file,
// and this check is what keeps the "never returns a Location outside
// the index" guarantee of spec.md §8 true under that race instead of
// true only by the accident of synchronous reindexing.
func classLocation(idx *index.GlobalIndex, c index.IndexedClass) *protocol.Location {
	if !idx.HasURI(c.URI) {
		return nil
	}
	return &protocol.Location{URI: protocol.DocumentUri(c.URI), Range: c.Range}
}

// memberLocation is classLocation's twin for indexed members.
func memberLocation(idx *index.GlobalIndex, m index.IndexedMember) *protocol.Location {
	if !idx.HasURI(m.URI) {
		return nil
	}
	return &protocol.Location{URI: protocol.DocumentUri(m.URI), Range: m.Range}
}

// resolveLocal searches the enclosing scope chain for a matching
// parameter/local/loop-variable, then the enclosing class's own
// fields and methods, applying the field-vs-method and overload
// preference rules from spec.md §4.F step 1.
func resolveLocal(node *sitter.Node, name string, argTypes []index.InferredType, isCallLike bool, src []byte, uri string) *protocol.Location {
	if def := findLocalScopeDeclaration(node, name, src); def != nil {
		nameNode := def.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = def
		}
		return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(nameNode)}
	}

	fieldNode, methodNodes := findClassMembers(node, name, src)

	if !isCallLike {
		if fieldNode != nil {
			return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(fieldNode)}
		}
		if len(methodNodes) > 0 {
			nameNode := methodNodes[0].ChildByFieldName("name")
			return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(nameNode)}
		}
		return nil
	}

	if len(methodNodes) == 0 {
		if fieldNode != nil {
			return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(fieldNode)}
		}
		return nil
	}

	candidates := make([]overloadCandidate, len(methodNodes))
	for i, m := range methodNodes {
		count, types, varargs := paramSignature(m.ChildByFieldName("parameters"), src)
		paramTypes := make([]index.InferredType, len(types))
		for j, t := range types {
			paramTypes[j] = parseTypeText(t)
		}
		candidates[i] = overloadCandidate{ParamTypes: paramTypes, IsVarargs: varargs, ParamCount: count, URI: uri}
	}
	if best, ok := pickBestOverload(argTypes, candidates); ok {
		nameNode := methodNodes[best].ChildByFieldName("name")
		return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(nameNode)}
	}
	nameNode := methodNodes[0].ChildByFieldName("name")
	return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(nameNode)}
}

// findLocalScopeDeclaration is findDeclarationNode (typesolver.go)
// restricted to scopes that actually precede the reference: block
// children are only considered if they start before node, matching
// the "forward references disallowed" clause of spec.md §4.F step 1.
func findLocalScopeDeclaration(start *sitter.Node, target string, src []byte) *sitter.Node {
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
				if child.StartByte() >= start.StartByte() {
					break
				}
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

// findClassMembers returns the nearest enclosing class's field
// variable_declarator node (by name) and every method_declaration
// sharing name, walking outward through nested classes.
func findClassMembers(start *sitter.Node, name string, src []byte) (*sitter.Node, []*sitter.Node) {
	curr := start
	for {
		parent := curr.Parent()
		if parent == nil {
			return nil, nil
		}
		if parent.Type() == "class_declaration" {
			if body := parent.ChildByFieldName("body"); body != nil {
				var field *sitter.Node
				var methods []*sitter.Node
				for _, child := range children(body) {
					switch child.Type() {
					case "field_declaration":
						if field == nil {
							if n := findInDeclarators(child, name, src); n != nil {
								if nn := n.ChildByFieldName("name"); nn != nil {
									field = nn
								} else {
									field = n
								}
							}
						}
					case "method_declaration":
						if n := child.ChildByFieldName("name"); n != nil && nodeText(n, src) == name {
							methods = append(methods, child)
						}
					}
				}
				if field != nil || len(methods) > 0 {
					return field, methods
				}
			}
		}
		curr = parent
	}
}

// resolveSameFileClass looks for a class/interface/enum/record
// declaration named name anywhere in the current file's tree (spec.md
// §4.F step 2: same-file shadowing beats explicit imports).
func resolveSameFileClass(tree *sitter.Tree, src []byte, name, uri string) *protocol.Location {
	var found *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if found != nil || n == nil {
			return
		}
		switch n.Type() {
		case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration", "annotation_type_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil && nodeText(nameNode, src) == name {
				found = nameNode
				return
			}
		}
		for _, c := range children(n) {
			walk(c)
			if found != nil {
				return
			}
		}
	}
	walk(tree.RootNode())
	if found == nil {
		return nil
	}
	return &protocol.Location{URI: protocol.DocumentUri(uri), Range: nodeRange(found)}
}

// resolveQualifiedMember implements spec.md §4.F step 5: resolve the
// qualifier to a class FQCN, filter that class's indexed members by
// name and arity, score call candidates, and return the winner.
func resolveQualifiedMember(qualifier *sitter.Node, name string, argTypes []index.InferredType, isCallLike bool, idx *index.GlobalIndex, src []byte, currentURI string) *protocol.Location {
	fqcn, ok := resolveQualifierChainFQCN(qualifier, idx, src, currentURI)
	if !ok {
		return nil
	}

	members := idx.MembersOfClass(fqcn)
	var matching []index.IndexedMember
	for _, m := range members {
		if m.Name != name {
			continue
		}
		if isCallLike && m.IsField {
			continue
		}
		arity := len(argTypes)
		if m.IsVarargs {
			if arity < m.ParamCount-1 {
				continue
			}
		} else if isCallLike && arity != m.ParamCount {
			continue
		}
		matching = append(matching, m)
	}
	if len(matching) == 0 {
		return nil
	}
	if !isCallLike {
		return memberLocation(idx, matching[0])
	}

	candidates := make([]overloadCandidate, len(matching))
	for i, m := range matching {
		types := make([]index.InferredType, len(m.ParamTypes))
		for j, t := range m.ParamTypes {
			types[j] = parseTypeText(t)
		}
		candidates[i] = overloadCandidate{ParamTypes: types, IsVarargs: m.IsVarargs, ParamCount: m.ParamCount, URI: m.URI}
	}
	if best, ok := pickBestOverload(argTypes, candidates); ok {
		if loc := memberLocation(idx, matching[best]); loc != nil {
			return loc
		}
	}
	return memberLocation(idx, matching[0])
}

// resolveQualifierChainFQCN resolves a dotted qualifier expression
// (an identifier, or a chain of field_access nodes) to a class FQCN,
// per spec.md §9's "Cyclic references" note: depth is bounded by the
// qualifier's own dot count, so a pathological field_type chain can't
// loop forever.
func resolveQualifierChainFQCN(qualifier *sitter.Node, idx *index.GlobalIndex, src []byte, currentURI string) (string, bool) {
	segments := qualifierSegments(qualifier, src)
	if len(segments) == 0 {
		return "", false
	}

	fqcn, ok := resolveFirstSegmentFQCN(leftmostQualifierNode(qualifier), segments[0], idx, src, currentURI)
	if !ok {
		return "", false
	}

	maxDepth := len(segments)
	for i := 1; i < len(segments) && i <= maxDepth; i++ {
		members := idx.MembersOfClass(fqcn)
		var next string
		found := false
		for _, m := range members {
			if m.Name == segments[i] && m.IsField && m.HasFieldType && m.FieldType.Kind == index.TypeClass {
				next = m.FieldType.Class
				found = true
				break
			}
		}
		if !found {
			return "", false
		}
		resolved, ok := resolveClassNameFQCN(next, idx, src, currentURI)
		if !ok {
			return "", false
		}
		fqcn = resolved
	}
	return fqcn, true
}

// leftmostQualifierNode walks down the object chain of a field_access
// expression to the node the chain actually starts from: a bare
// identifier/this/type_identifier, or a method_invocation when the
// chain starts from a call result.
func leftmostQualifierNode(node *sitter.Node) *sitter.Node {
	for node != nil && node.Type() == "field_access" {
		node = node.ChildByFieldName("object")
	}
	return node
}

// resolveFirstSegmentFQCN resolves a qualifier chain's leading segment
// to an FQCN. When node is a plain identifier, a local variable/field
// of that name takes precedence (spec.md §8 scenario 7: `arr.size()`
// resolves through arr's declared type, not by treating "arr" as a
// class name); otherwise, and whenever no such variable is found, name
// is resolved as a class name directly (covers static qualifiers like
// `Data.value` or `HashMap.marker()`).
func resolveFirstSegmentFQCN(node *sitter.Node, name string, idx *index.GlobalIndex, src []byte, currentURI string) (string, bool) {
	if node != nil && node.Type() == "identifier" {
		solver := NewTypeSolver(src, idx, currentURI)
		if t := solver.resolveVariableType(node); t.Kind == index.TypeClass {
			if fqcn, ok := resolveClassNameFQCN(t.Class, idx, src, currentURI); ok {
				return fqcn, true
			}
		}
	}
	return resolveClassNameFQCN(name, idx, src, currentURI)
}

// qualifierSegments flattens a qualifier expression into its dotted
// name segments: `a.b.c` (nested field_access) or a bare identifier.
func qualifierSegments(node *sitter.Node, src []byte) []string {
	if node == nil {
		return nil
	}
	switch node.Type() {
	case "identifier", "this", "type_identifier":
		return []string{nodeText(node, src)}
	case "field_access":
		obj := node.ChildByFieldName("object")
		field := node.ChildByFieldName("field")
		segs := qualifierSegments(obj, src)
		if field != nil {
			segs = append(segs, nodeText(field, src))
		}
		return segs
	case "method_invocation":
		// a().b — treat the call's own name as the leading segment;
		// type resolution of call results is out of scope (spec.md
		// Non-goals: no full type system), so this only terminates
		// the chain rather than resolving further.
		if nameNode := node.ChildByFieldName("name"); nameNode != nil {
			return []string{nodeText(nameNode, src)}
		}
	}
	return nil
}

// resolveClassNameFQCN resolves a single class-name segment to an
// FQCN using the import/package/java.lang/any-match precedence chain
// (spec.md §4.F's "same class-lookup precedence as steps 3→4→6→any"),
// then tries name itself as an FQCN. Classes declared in the current
// file are not preferred here.
func resolveClassNameFQCN(name string, idx *index.GlobalIndex, src []byte, currentURI string) (string, bool) {
	facts, hasFacts := idx.FileFacts(currentURI)

	if hasFacts {
		for _, imp := range facts.Imports {
			if imp == name || strings.HasSuffix(imp, "."+name) {
				for _, c := range idx.ClassesByShortName(name) {
					if c.FQCN == imp {
						return c.FQCN, true
					}
				}
			}
		}
		if facts.HasPackage {
			wanted := facts.Package + "." + name
			for _, c := range idx.ClassesByShortName(name) {
				if c.FQCN == wanted {
					return c.FQCN, true
				}
			}
		}
	}

	for _, c := range idx.ClassesByShortName(name) {
		if strings.HasPrefix(c.FQCN, "java.lang.") {
			return c.FQCN, true
		}
	}

	if cs := idx.ClassesByShortName(name); len(cs) > 0 {
		return cs[0].FQCN, true
	}

	if c, ok := idx.ClassByFQCN(name); ok {
		return c.FQCN, true
	}

	return "", false
}
