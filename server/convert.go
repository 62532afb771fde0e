package server

import (
	sitter "github.com/smacker/go-tree-sitter"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jrsls/jrsls/rope"
	"github.com/jrsls/jrsls/syntax"
)

func toSyntaxRange(r *protocol.Range) *syntax.Range {
	if r == nil {
		return nil
	}
	return &syntax.Range{
		StartLine: int(r.Start.Line),
		StartChar: int(r.Start.Character),
		EndLine:   int(r.End.Line),
		EndChar:   int(r.End.Character),
	}
}

func toSitterPoint(p protocol.Position) sitter.Point {
	return sitter.Point{Row: uint32(p.Line), Column: uint32(p.Character)}
}

func toRopePoint(p protocol.Position) rope.Point {
	return rope.Point{Row: int(p.Line), Column: int(p.Character)}
}
