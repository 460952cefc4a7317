package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSPSC_Basic(t *testing.T) {
	q := NewSPSC[int](3)
	require.Equal(t, 4, q.Cap())

	for i := 0; i < 4; i++ {
		require.True(t, q.Push(i))
	}
	assert.False(t, q.Push(99))
	assert.Equal(t, uint64(1), q.Dropped())
	assert.Equal(t, 4, q.Len())

	for i := 0; i < 4; i++ {
		v, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestSPSC_Drain(t *testing.T) {
	q := NewSPSC[string](8)
	q.Push("a")
	q.Push("b")

	var got []string
	n := q.Drain(func(s string) { got = append(got, s) })

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 0, q.Len())
}

func TestSPSC_Concurrent(t *testing.T) {
	const total = 100000
	q := NewSPSC[int](64)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if q.Push(i) {
				i++
			}
		}
	}()

	next := 0
	for next < total {
		if v, ok := q.Pop(); ok {
			require.Equal(t, next, v)
			next++
		}
	}
	wg.Wait()
}

func BenchmarkSPSC(b *testing.B) {
	q := NewSPSC[uint64](1024)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		q.Push(uint64(i))
		q.Pop()
	}
}
