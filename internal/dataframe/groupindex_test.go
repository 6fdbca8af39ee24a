package dataframe

import (
	"fmt"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/internal/series"
)

func TestGroupIndexAddAndRows(t *testing.T) {
	gi := NewGroupIndex(4)

	gi.Add("a", 0)
	gi.Add("b", 1)
	gi.Add("a", 2)
	gi.Add("a", 3)

	rows, ok := gi.Rows("a")
	require.True(t, ok)
	assert.Equal(t, []int{0, 2, 3}, rows)

	rows, ok = gi.Rows("b")
	require.True(t, ok)
	assert.Equal(t, []int{1}, rows)

	_, ok = gi.Rows("c")
	assert.False(t, ok)

	assert.Equal(t, 2, gi.Size())
}

func TestGroupIndexKeysFirstObservationOrder(t *testing.T) {
	gi := NewGroupIndex(0)
	for i, key := range []string{"z", "m", "z", "a", "m", "q"} {
		gi.Add(key, i)
	}
	assert.Equal(t, []string{"z", "m", "a", "q"}, gi.Keys())
}

func TestGroupIndexResize(t *testing.T) {
	gi := NewGroupIndex(1)
	for i := 0; i < 100; i++ {
		gi.Add(fmt.Sprintf("key_%d", i), i)
	}

	assert.Equal(t, 100, gi.Size())
	for i := 0; i < 100; i++ {
		rows, ok := gi.Rows(fmt.Sprintf("key_%d", i))
		require.True(t, ok)
		assert.Equal(t, []int{i}, rows)
	}
}

func TestBuildGroupIndex(t *testing.T) {
	mem := memory.NewGoAllocator()
	col := series.New("label", []float64{0, 1, 0, 1, 1}, mem)
	defer col.Release()

	gi := BuildGroupIndex(col)
	assert.Equal(t, 2, gi.Size())

	zeros, ok := gi.Rows("0")
	require.True(t, ok)
	assert.Equal(t, []int{0, 2}, zeros)

	ones, ok := gi.Rows("1")
	require.True(t, ok)
	assert.Equal(t, []int{1, 3, 4}, ones)
}
