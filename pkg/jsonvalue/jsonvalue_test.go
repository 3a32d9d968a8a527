package jsonvalue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringifyCanonical(t *testing.T) {
	z := NewZone("test")
	obj := z.NewObject()
	require.NoError(t, obj.Insert("a", z.NewNumber(1)))
	require.NoError(t, obj.Insert("b", z.NewString("x")))

	require.Equal(t, `{"a":1,"b":"x"}`, obj.Stringify())
}

func TestGetMissingKeyReturnsNull(t *testing.T) {
	z := NewZone("test")
	obj := z.NewObject()
	got := obj.Get("missing")
	require.Equal(t, Null, got.Type())
}

func TestCloneIsDeep(t *testing.T) {
	z := NewZone("test")
	list := z.NewList()
	require.NoError(t, list.PushBack(z.NewNumber(1)))

	clone := list.Clone(z)
	require.NoError(t, clone.PushBack(z.NewNumber(2)))

	require.Len(t, list.List(), 1)
	require.Len(t, clone.List(), 2)
}

func TestSaveToFileAtomicRename(t *testing.T) {
	z := NewZone("test")
	v := z.NewObject()
	require.NoError(t, v.Insert("cid", z.NewNumber(7)))

	dir := t.TempDir()
	path := filepath.Join(dir, "parameter.json")
	require.NoError(t, SaveToFile(path, v))

	_, err := os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\"cid\":7}\n", string(data))
}
