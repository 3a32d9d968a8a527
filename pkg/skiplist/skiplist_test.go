package skiplist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func intCompare(a, b interface{}) int {
	x, y := a.(int), b.(int)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// TestUniqueInsertRejectsDuplicateKey verifies a
// unique-mode skiplist fed [5, 3, 7, 3] must reject the second 3.
func TestUniqueInsertRejectsDuplicateKey(t *testing.T) {
	s := New(Unique, intCompare, 1)

	require.NoError(t, s.Insert(5, "five"))
	require.NoError(t, s.Insert(3, "three"))
	require.NoError(t, s.Insert(7, "seven"))
	err := s.Insert(3, "three-again")
	require.Error(t, err)

	require.Equal(t, 3, s.Len())
}

// TestUniqueRangeQuery verifies range check:
// GE 3 AND LT 7 over [5, 3, 7] yields {3, 5} in order.
func TestUniqueRangeQuery(t *testing.T) {
	s := New(Unique, intCompare, 1)
	require.NoError(t, s.Insert(5, "five"))
	require.NoError(t, s.Insert(3, "three"))
	require.NoError(t, s.Insert(7, "seven"))

	it, err := s.Range(And(GE(3), LT(7)))
	require.NoError(t, err)

	var got []int
	for it.HasNext() {
		k, _, ok := it.Next()
		require.True(t, ok)
		got = append(got, k.(int))
	}

	require.Equal(t, []int{3, 5}, got)
}

// TestMultiInsertPreservesInsertionOrder verifies
// a multi-mode skiplist fed [5, 5, 5] and queried with EQ 5 yields all
// three elements in insertion order.
func TestMultiInsertPreservesInsertionOrder(t *testing.T) {
	s := New(Multi, intCompare, 1)
	require.NoError(t, s.Insert(5, "a"))
	require.NoError(t, s.Insert(5, "b"))
	require.NoError(t, s.Insert(5, "c"))

	it, err := s.Range(EQ(5))
	require.NoError(t, err)

	var got []string
	for it.HasNext() {
		_, v, ok := it.Next()
		require.True(t, ok)
		got = append(got, v.(string))
	}

	require.Equal(t, []string{"a", "b", "c"}, got)
}

func TestMultiRemoveByValue(t *testing.T) {
	s := New(Multi, intCompare, 1)
	require.NoError(t, s.Insert(5, "a"))
	require.NoError(t, s.Insert(5, "b"))

	require.NoError(t, s.Remove(5, "a"))
	require.Equal(t, 1, s.Len())

	it, err := s.Range(EQ(5))
	require.NoError(t, err)
	_, v, ok := it.Next()
	require.True(t, ok)
	require.Equal(t, "b", v)
}

func TestRemoveMissingKeyReturnsNotFound(t *testing.T) {
	s := New(Unique, intCompare, 1)
	require.NoError(t, s.Insert(1, "one"))
	err := s.Remove(2, "two")
	require.Error(t, err)
}

func TestIteratorBidirectional(t *testing.T) {
	s := New(Unique, intCompare, 1)
	for _, k := range []int{1, 2, 3, 4, 5} {
		require.NoError(t, s.Insert(k, k*10))
	}

	it := s.All()
	var forward []int
	for it.HasNext() {
		k, _, _ := it.Next()
		forward = append(forward, k.(int))
	}
	require.Equal(t, []int{1, 2, 3, 4, 5}, forward)

	var backward []int
	for it.HasPrev() {
		k, _, _ := it.Prev()
		backward = append(backward, k.(int))
	}
	require.Equal(t, []int{5, 4, 3, 2, 1}, backward)
}

func TestUpdatePanics(t *testing.T) {
	s := New(Unique, intCompare, 1)
	require.NoError(t, s.Insert(1, "one"))
	require.Panics(t, func() {
		s.Update(1, "one", "uno")
	})
}
