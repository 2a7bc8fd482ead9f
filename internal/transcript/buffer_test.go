package transcript

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer(t *testing.T) {
	t.Run("holds entries in insertion order", func(t *testing.T) {
		b := NewBuffer(6)
		b.Add("first")
		b.Add("second")
		b.Add("third")

		assert.Equal(t, 3, b.Len())
		assert.Equal(t, "first\nsecond\nthird", b.Window())
	})

	t.Run("evicts oldest entry past capacity", func(t *testing.T) {
		b := NewBuffer(3)
		for i := 1; i <= 5; i++ {
			b.Add(fmt.Sprintf("utterance %d", i))
		}

		assert.Equal(t, 3, b.Len())
		assert.Equal(t, "utterance 3\nutterance 4\nutterance 5", b.Window())
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		b := NewBuffer(6)
		for i := 0; i < 100; i++ {
			b.Add("text")
			assert.LessOrEqual(t, b.Len(), 6)
		}
	})

	t.Run("zero capacity falls back to default", func(t *testing.T) {
		b := NewBuffer(0)
		for i := 0; i < 10; i++ {
			b.Add("text")
		}
		assert.Equal(t, DefaultCapacity, b.Len())
	})

	t.Run("entries returns a copy", func(t *testing.T) {
		b := NewBuffer(6)
		b.Add("original")

		entries := b.Entries()
		entries[0].Text = "mutated"

		assert.Equal(t, "original", b.Entries()[0].Text)
	})

	t.Run("clear empties the buffer", func(t *testing.T) {
		b := NewBuffer(6)
		b.Add("one")
		b.Add("two")
		b.Clear()

		assert.Equal(t, 0, b.Len())
		assert.Equal(t, "", b.Window())
	})

	t.Run("concurrent adds stay within capacity", func(t *testing.T) {
		b := NewBuffer(6)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				b.Add(fmt.Sprintf("utterance %d", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 6, b.Len())
	})
}
