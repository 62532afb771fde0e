// Package javalang implements the Java-specific layers of the symbol
// resolution engine on top of tree-sitter-java syntax trees: the
// declaration indexer, the type solver, the definition resolver, the
// document outliner, and member/keyword completion.
//
// Grounded throughout on the original jrsls crate's indexer.rs,
// inference.rs, lang/java.rs and utils.rs, translated from ropey/
// tree-sitter-rust call shapes onto github.com/smacker/go-tree-sitter.
package javalang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Language returns the tree-sitter grammar this package resolves
// against; syntax.Manager registers it under the "java" language id.
func Language() *sitter.Language {
	return java.GetLanguage()
}

// nodeText slices src (the full document content backing node's tree)
// using node's byte range, mirroring the original's get_node_text
// (which slices the rope by char index instead; Node.Content does the
// same job directly off the byte range tree-sitter already gives us).
func nodeText(node *sitter.Node, src []byte) string {
	if node == nil {
		return ""
	}
	return node.Content(src)
}

// nodeRange converts a node's tree-sitter span into a protocol.Range.
// Matches the original's node_range: it reports tree-sitter's own
// column (a byte offset within the line), not a UTF-16 code unit
// count, trading LSP character-encoding fidelity for simplicity, the
// same simplification the original makes.
func nodeRange(node *sitter.Node) protocol.Range {
	start := node.StartPoint()
	end := node.EndPoint()
	return protocol.Range{
		Start: protocol.Position{Line: start.Row, Character: start.Column},
		End:   protocol.Position{Line: end.Row, Character: end.Column},
	}
}

// children returns the direct children of node as a slice, for callers
// that want to scan them more than once (tree-sitter cursors are
// single-pass).
func children(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.ChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, node.Child(i))
	}
	return out
}

// namedChildren is children filtered to named (non-anonymous) nodes.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	count := int(node.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, node.NamedChild(i))
	}
	return out
}

// descendantForPoint returns the smallest named node covering point,
// the Go equivalent of tree-sitter-rust's descendant_for_byte_range
// used by the original's get_node_at_pos.
func descendantForPoint(root *sitter.Node, point sitter.Point) *sitter.Node {
	if root == nil {
		return nil
	}
	return root.NamedDescendantForPointRange(point, point)
}
