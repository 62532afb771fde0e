package javalang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jrsls/jrsls/index"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Complete answers a completion request at cursor. When the cursor
// sits on the field/name half of a qualifier expression, it offers
// the qualifier's members (spec.md §8 scenario 7); otherwise it falls
// back to keyword completion, gated by the rule spec.md §9 settles on
// for the original's duplicated keyword-emission logic: only when the
// character immediately before the cursor isn't alphanumeric/`_` and
// isn't `.`.
func Complete(tree *sitter.Tree, src []byte, cursorByte int, cursor sitter.Point, idx *index.GlobalIndex, currentURI string, keywords []string) []protocol.CompletionItem {
	node := descendantForPoint(tree.RootNode(), cursor)
	if node != nil {
		if qualifier, prefix, ok := qualifierCompletionContext(node, src); ok {
			return completeMembers(qualifier, prefix, idx, src, currentURI)
		}
	}

	if !keywordEligible(src, cursorByte) {
		return nil
	}
	return keywordItems(keywords)
}

// qualifierCompletionContext detects whether node is the field half of
// a field_access, or the name half of a qualified method_invocation,
// and if so returns the qualifier expression and the prefix typed so
// far.
func qualifierCompletionContext(node *sitter.Node, src []byte) (*sitter.Node, string, bool) {
	parent := node.Parent()
	if parent == nil {
		return nil, "", false
	}
	switch parent.Type() {
	case "field_access":
		if parent.ChildByFieldName("field") == node {
			return parent.ChildByFieldName("object"), nodeText(node, src), true
		}
	case "method_invocation":
		if parent.ChildByFieldName("name") == node {
			if obj := parent.ChildByFieldName("object"); obj != nil {
				return obj, nodeText(node, src), true
			}
		}
	}
	return nil, "", false
}

func completeMembers(qualifier *sitter.Node, prefix string, idx *index.GlobalIndex, src []byte, currentURI string) []protocol.CompletionItem {
	fqcn, ok := resolveQualifierChainFQCN(qualifier, idx, src, currentURI)
	if !ok {
		return nil
	}

	var items []protocol.CompletionItem
	for _, m := range idx.MembersOfClass(fqcn) {
		if prefix != "" && !strings.HasPrefix(m.Name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindMethod
		if m.IsField {
			kind = protocol.CompletionItemKindField
		}
		items = append(items, protocol.CompletionItem{Label: m.Name, Kind: &kind})
	}
	return items
}

func keywordItems(keywords []string) []protocol.CompletionItem {
	items := make([]protocol.CompletionItem, 0, len(keywords))
	for _, kw := range keywords {
		kind := protocol.CompletionItemKindKeyword
		items = append(items, protocol.CompletionItem{Label: kw, Kind: &kind})
	}
	return items
}

func keywordEligible(src []byte, cursorByte int) bool {
	if cursorByte <= 0 || cursorByte > len(src) {
		return true
	}
	prev := src[cursorByte-1]
	if prev == '.' {
		return false
	}
	if (prev >= 'a' && prev <= 'z') || (prev >= 'A' && prev <= 'Z') || (prev >= '0' && prev <= '9') || prev == '_' {
		return false
	}
	return true
}
