package shaper

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/pkg/jsonvalue"
)

func TestBasicShapesPreinserted(t *testing.T) {
	s := NewShaper(32)
	require.Equal(t, int64(1), s.NullSid)
	require.NotZero(t, s.BooleanSid)
	require.NotZero(t, s.NumberSid)
	require.NotZero(t, s.ShortStringSid)
	require.NotZero(t, s.LongStringSid)
	require.NotZero(t, s.EmptyListSid)
	require.NotZero(t, s.EmptyArraySid)
}

func TestAttributeNameInterningIsStable(t *testing.T) {
	s := NewShaper(32)
	aid1 := s.FindAttributeName("name")
	aid2 := s.FindAttributeName("age")
	aid3 := s.FindAttributeName("name")
	require.Equal(t, aid1, aid3)
	require.NotEqual(t, aid1, aid2)

	name, ok := s.LookupAttributeID(aid1)
	require.True(t, ok)
	require.Equal(t, "name", name)
}

func TestAttributePathInterning(t *testing.T) {
	s := NewShaper(32)
	pid1, err := s.FindAttributePathByName("address.city")
	require.NoError(t, err)
	pid2, err := s.FindAttributePathByName("address.city")
	require.NoError(t, err)
	require.Equal(t, pid1, pid2)

	path, ok := s.LookupAttributePathByPid(pid1)
	require.True(t, ok)
	require.Len(t, path.Aids, 2)
}

// TestSameShapeRegardlessOfFieldOrder verifies
// two objects with the same field set and value types but different
// insertion order and values must be assigned the same sid.
func TestSameShapeRegardlessOfFieldOrder(t *testing.T) {
	s := NewShaper(32)
	z := jsonvalue.NewZone("test")

	a := z.NewObject()
	require.NoError(t, a.Insert("a", z.NewNumber(1)))
	require.NoError(t, a.Insert("b", z.NewString("x")))

	b := z.NewObject()
	require.NoError(t, b.Insert("b", z.NewString("y")))
	require.NoError(t, b.Insert("a", z.NewNumber(2)))

	sa, err := s.Shape(a)
	require.NoError(t, err)
	sb, err := s.Shape(b)
	require.NoError(t, err)

	require.Equal(t, sa.Sid, sb.Sid)
}

func TestRoundTripScalarsAndObjects(t *testing.T) {
	s := NewShaper(8)
	z := jsonvalue.NewZone("test")

	obj := z.NewObject()
	require.NoError(t, obj.Insert("n", z.NewNumber(42)))
	require.NoError(t, obj.Insert("s", z.NewString("a longer string than the cut")))
	require.NoError(t, obj.Insert("b", z.NewBool(true)))

	sv, err := s.Shape(obj)
	require.NoError(t, err)

	back, err := s.FromShape(z, sv.Sid, sv.Data)
	require.NoError(t, err)

	require.True(t, back.Has("n"))
	require.Equal(t, float64(42), back.Get("n").AsNumber())
	require.Equal(t, "a longer string than the cut", back.Get("s").AsString())
	require.Equal(t, true, back.Get("b").AsBool())
}

func TestRoundTripHomogeneousList(t *testing.T) {
	s := NewShaper(32)
	z := jsonvalue.NewZone("test")

	list := z.NewList()
	require.NoError(t, list.PushBack(z.NewNumber(1)))
	require.NoError(t, list.PushBack(z.NewNumber(2)))
	require.NoError(t, list.PushBack(z.NewNumber(3)))

	sv, err := s.Shape(list)
	require.NoError(t, err)

	sh, ok := s.LookupShape(sv.Sid)
	require.True(t, ok)
	require.Equal(t, KindHomogeneousSizedList, sh.Kind)

	back, err := s.FromShape(z, sv.Sid, sv.Data)
	require.NoError(t, err)
	require.Len(t, back.List(), 3)
	require.Equal(t, float64(2), back.List()[1].AsNumber())
}

func TestRoundTripHeterogeneousList(t *testing.T) {
	s := NewShaper(32)
	z := jsonvalue.NewZone("test")

	list := z.NewList()
	require.NoError(t, list.PushBack(z.NewNumber(1)))
	require.NoError(t, list.PushBack(z.NewString("two")))
	require.NoError(t, list.PushBack(z.NewBool(false)))

	sv, err := s.Shape(list)
	require.NoError(t, err)

	sh, ok := s.LookupShape(sv.Sid)
	require.True(t, ok)
	require.Equal(t, KindList, sh.Kind)

	back, err := s.FromShape(z, sv.Sid, sv.Data)
	require.NoError(t, err)
	require.Len(t, back.List(), 3)
	require.Equal(t, "two", back.List()[1].AsString())
	require.Equal(t, false, back.List()[2].AsBool())
}

func TestIdAttributeSkippedDuringShaping(t *testing.T) {
	s := NewShaper(32)
	z := jsonvalue.NewZone("test")

	withID := z.NewObject()
	require.NoError(t, withID.Insert("_id", z.NewString("123")))
	require.NoError(t, withID.Insert("a", z.NewNumber(1)))

	withoutID := z.NewObject()
	require.NoError(t, withoutID.Insert("a", z.NewNumber(1)))

	svWith, err := s.Shape(withID)
	require.NoError(t, err)
	svWithout, err := s.Shape(withoutID)
	require.NoError(t, err)

	require.Equal(t, svWith.Sid, svWithout.Sid)
}
