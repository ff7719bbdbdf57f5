package object

import (
	"crypto/rand"
	"fmt"
	"testing"
)

func randomPayloads(b *testing.B, n, size int) [][]byte {
	b.Helper()
	payloads := make([][]byte, n)
	for i := range payloads {
		buf := make([]byte, size)
		if _, err := rand.Read(buf); err != nil {
			b.Fatalf("rand.Read: %v", err)
		}
		payloads[i] = buf
	}
	return payloads
}

// Distinct payloads keep every write off the already-stored path.
func BenchmarkStoreWrite(b *testing.B) {
	for _, size := range []int{100, 100 << 10} {
		b.Run(fmt.Sprintf("%dB", size), func(b *testing.B) {
			s := NewStore(b.TempDir())
			payloads := randomPayloads(b, b.N, size)

			b.ReportAllocs()
			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Write(TypeBlob, payloads[i]); err != nil {
					b.Fatalf("Write: %v", err)
				}
			}
		})
	}
}

func BenchmarkStoreWriteExisting(b *testing.B) {
	s := NewStore(b.TempDir())
	payload := []byte("package main\n\nfunc main() { println(\"hello\") }\n")
	if _, err := s.Write(TypeBlob, payload); err != nil {
		b.Fatalf("Write: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Write(TypeBlob, payload); err != nil {
			b.Fatalf("Write: %v", err)
		}
	}
}

func BenchmarkStoreRead(b *testing.B) {
	for _, cacheSize := range []int{0, 16} {
		b.Run(fmt.Sprintf("cache=%d", cacheSize), func(b *testing.B) {
			s := NewStore(b.TempDir(), WithCacheSize(cacheSize))
			data := randomPayloads(b, 1, 4096)[0]
			h, err := s.Write(TypeBlob, data)
			if err != nil {
				b.Fatalf("Write: %v", err)
			}

			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				typ, got, err := s.Read(h)
				if err != nil {
					b.Fatalf("Read: %v", err)
				}
				if typ != TypeBlob || len(got) != len(data) {
					b.Fatalf("Read = (%s, %d bytes)", typ, len(got))
				}
			}
		})
	}
}

var marshalTreeBenchmarkSink []byte

func BenchmarkMarshalTree(b *testing.B) {
	tree := &TreeObj{}
	for i := 0; i < 1000; i++ {
		tree.Entries = append(tree.Entries, TreeEntry{
			Mode: TreeModeFile,
			Name: fmt.Sprintf("file-%04d.go", i),
			Hash: HashObject(TypeBlob, []byte(fmt.Sprint(i))),
		})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		marshalTreeBenchmarkSink = MarshalTree(tree)
	}
}
