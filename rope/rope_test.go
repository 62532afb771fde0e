package rope

import "testing"

func TestNewRopeString(t *testing.T) {
	r := NewRope("hello\nworld")
	if got := r.String(); got != "hello\nworld" {
		t.Fatalf("String() = %q", got)
	}
	if r.LenBytes() != 11 {
		t.Fatalf("LenBytes() = %d", r.LenBytes())
	}
	if r.LineCount() != 2 {
		t.Fatalf("LineCount() = %d", r.LineCount())
	}
}

func TestReplaceRoundTrip(t *testing.T) {
	r := NewRope("public class Foo {}")
	if err := r.Replace(13, 16, "Bar"); err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "public class Bar {}" {
		t.Fatalf("String() = %q", got)
	}
}

func TestLineCharByteRoundTrip(t *testing.T) {
	r := NewRope("line0\nline1\nline2")
	for _, line := range []int{0, 1, 2} {
		charIdx, err := r.LineToChar(line)
		if err != nil {
			t.Fatal(err)
		}
		byteIdx, err := r.CharToByte(charIdx)
		if err != nil {
			t.Fatal(err)
		}
		backChar, err := r.ByteToChar(byteIdx)
		if err != nil {
			t.Fatal(err)
		}
		if backChar != charIdx {
			t.Fatalf("round trip char->byte->char mismatch: %d != %d", backChar, charIdx)
		}
		backLine, err := r.CharToLine(charIdx)
		if err != nil {
			t.Fatal(err)
		}
		if backLine != line {
			t.Fatalf("CharToLine(%d) = %d, want %d", charIdx, backLine, line)
		}
	}
}

func TestLineOutOfRangeRejected(t *testing.T) {
	r := NewRope("only one line")
	if _, err := r.LineToChar(1); err == nil {
		t.Fatal("expected error for out-of-range line")
	}
}

func TestPointByteRoundTrip(t *testing.T) {
	r := NewRope("abc\ndef\nghi")
	for _, b := range []int{0, 2, 4, 7, 10} {
		p, err := r.ByteToPoint(b)
		if err != nil {
			t.Fatal(err)
		}
		back, err := r.PointToByte(p)
		if err != nil {
			t.Fatal(err)
		}
		if back != b {
			t.Fatalf("ByteToPoint/PointToByte round trip: byte %d -> %+v -> %d", b, p, back)
		}
	}
}

func TestChunkReaderCoversWholeBuffer(t *testing.T) {
	text := ""
	for i := 0; i < 5000; i++ {
		text += "x"
	}
	r := NewRope(text)
	read := r.ChunkReader()
	var out []byte
	offset := 0
	for offset < r.LenBytes() {
		chunk := read(offset, Point{})
		if len(chunk) == 0 {
			t.Fatalf("empty chunk at offset %d", offset)
		}
		out = append(out, chunk...)
		offset += len(chunk)
	}
	if string(out) != text {
		t.Fatalf("chunk reader did not reproduce buffer: len=%d want=%d", len(out), len(text))
	}
}

func TestLargeBufferStaysBalanced(t *testing.T) {
	text := ""
	for i := 0; i < 20000; i++ {
		text += "a"
		if i%80 == 0 {
			text += "\n"
		}
	}
	r := NewRope(text)
	for i := 0; i < 50; i++ {
		if err := r.Replace(10, 10, "Z"); err != nil {
			t.Fatal(err)
		}
	}
	if r.String()[10] != 'Z' {
		t.Fatalf("expected inserted char at position 10")
	}
	if needsRebalance(r.root) {
		t.Fatalf("tree height %d exceeds the rebalance bound after repeated inserts", r.root.height)
	}
}
