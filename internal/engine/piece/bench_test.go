package piece

import (
	"math/rand"
	"testing"
)

func BenchmarkInsertRandom(b *testing.B) {
	tb := New()
	tb.Insert(0, make([]byte, 1<<20))
	data := []byte("cell,")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tb.Insert(rand.Int63n(tb.Len()), data)
	}
}

func BenchmarkChunksScan(b *testing.B) {
	tb := New()
	tb.Insert(0, make([]byte, 1<<20))
	for i := 0; i < 1000; i++ {
		tb.Insert(rand.Int63n(tb.Len()), []byte("x\n"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var n int
		it := tb.Chunks()
		for it.Next() {
			n += len(it.Chunk())
		}
		_ = n
	}
}
