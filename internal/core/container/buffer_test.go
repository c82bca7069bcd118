package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueOrderedBuffer_Dedup(t *testing.T) {
	b := NewUniqueOrderedBuffer(func(s string) string { return s })

	added := b.Push("a", "b", "a", "c")
	require.Equal(t, 3, added)
	assert.Equal(t, []string{"a", "b", "c"}, b.Items())
	assert.Equal(t, 3, b.Len())
}

func TestUniqueOrderedBuffer_PreservesInsertionOrder(t *testing.T) {
	b := NewUniqueOrderedBuffer(func(s string) string { return s })
	b.Push("z", "y", "x", "y")
	assert.Equal(t, []string{"z", "y", "x"}, b.Items())
}

func TestUniqueOrderedBuffer_Snapshot_Independent(t *testing.T) {
	b := NewUniqueOrderedBuffer(func(s string) string { return s })
	b.Push("a")
	snap := b.Snapshot()
	b.Push("b")
	assert.Equal(t, []string{"a"}, snap)
	assert.Equal(t, []string{"a", "b"}, b.Items())
}

func FuzzUniqueOrderedBuffer_KeyUniqueness(f *testing.F) {
	f.Add("a,b,a,c")
	f.Add("")
	f.Add("x,x,x")
	f.Fuzz(func(t *testing.T, csv string) {
		values := splitCSV(csv)
		b := NewUniqueOrderedBuffer(func(s string) string { return s })
		b.Push(values...)

		items := b.Items()
		seen := map[string]bool{}
		for i, v := range items {
			if seen[v] {
				t.Fatalf("duplicate value %q at index %d", v, i)
			}
			seen[v] = true
		}
	})
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
