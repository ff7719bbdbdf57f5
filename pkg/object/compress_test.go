package object

import (
	"bytes"
	"errors"
	"testing"
)

func TestCompressRoundTrip(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("blob 3\x00abc"),
		bytes.Repeat([]byte("0123456789"), 10_000),
	}
	for _, in := range inputs {
		out, err := Decompress(Compress(in))
		if err != nil {
			t.Fatalf("Decompress(Compress(%d bytes)): %v", len(in), err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("round-trip mismatch for %d-byte input", len(in))
		}
	}
}

func TestCompressLevels(t *testing.T) {
	data := bytes.Repeat([]byte("level test "), 500)
	for level := -1; level <= 9; level++ {
		out, err := CompressLevel(data, level)
		if err != nil {
			t.Fatalf("CompressLevel(%d): %v", level, err)
		}
		back, err := Decompress(out)
		if err != nil {
			t.Fatalf("Decompress(level %d): %v", level, err)
		}
		if !bytes.Equal(back, data) {
			t.Fatalf("level %d round-trip mismatch", level)
		}
	}
	if _, err := CompressLevel(data, 42); err == nil {
		t.Fatal("CompressLevel(42) should fail")
	}
}

func TestDecompressCorrupt(t *testing.T) {
	valid := Compress([]byte("some object content that is long enough"))

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "garbage", data: []byte("definitely not zlib")},
		{name: "truncated", data: valid[:len(valid)/2]},
		{name: "bad checksum", data: flipLastByte(valid)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decompress(tt.data); !errors.Is(err, ErrCorruptStream) {
				t.Fatalf("Decompress err = %v, want ErrCorruptStream", err)
			}
		})
	}
}

func flipLastByte(b []byte) []byte {
	out := bytes.Clone(b)
	out[len(out)-1] ^= 0xff
	return out
}
