package mset_test

import (
	"testing"

	"github.com/go-recdb/recdb/mset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type strElem struct {
	tag mset.Tag
	val string
}

func (e strElem) Tag() mset.Tag { return e.tag }

type dupElem struct {
	tag mset.Tag
	val *string
}

func (e dupElem) Tag() mset.Tag { return e.tag }
func (e dupElem) Dup() mset.Elem {
	v := *e.val
	return dupElem{tag: e.tag, val: &v}
}

func TestCountEmpty(t *testing.T) {
	var s mset.Set
	assert.Equal(t, 0, s.Count(mset.Field))
	assert.Equal(t, 0, s.Count(mset.Any))
	assert.Equal(t, 0, s.Count(mset.Tag(99)))
}

func TestAppendAndCount(t *testing.T) {
	var s mset.Set
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "a"}))
	require.NoError(t, s.Append(strElem{tag: mset.Comment, val: "# hi"}))
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "b"}))

	assert.Equal(t, 2, s.Count(mset.Field))
	assert.Equal(t, 1, s.Count(mset.Comment))
	assert.Equal(t, 3, s.Count(mset.Any))
}

func TestAppendUnknownTagFails(t *testing.T) {
	var s mset.Set
	err := s.Append(strElem{tag: mset.Tag(42), val: "bad"})
	assert.ErrorIs(t, err, mset.ErrUnknownTag)
}

func TestGetAtInsertionOrderAndAny(t *testing.T) {
	var s mset.Set
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "a"}))
	require.NoError(t, s.Append(strElem{tag: mset.Comment, val: "c1"}))
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "b"}))

	e, ok := s.GetAt(mset.Field, 1)
	require.True(t, ok)
	assert.Equal(t, "b", e.(strElem).val)

	e, ok = s.GetAt(mset.Any, 1)
	require.True(t, ok)
	assert.Equal(t, "c1", e.(strElem).val)
}

func TestGetAtOutOfRange(t *testing.T) {
	var s mset.Set
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "a"}))

	_, ok := s.GetAt(mset.Field, -1)
	assert.False(t, ok)
	_, ok = s.GetAt(mset.Field, 5)
	assert.False(t, ok)
	_, ok = s.GetAt(mset.Any, 5)
	assert.False(t, ok)
}

func TestRemoveAtAndReplaceAt(t *testing.T) {
	var s mset.Set
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "a"}))
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "b"}))
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "c"}))

	assert.True(t, s.RemoveAt(mset.Field, 1))
	e, _ := s.GetAt(mset.Field, 1)
	assert.Equal(t, "c", e.(strElem).val)

	assert.True(t, s.ReplaceAt(mset.Field, 0, strElem{tag: mset.Field, val: "z"}))
	e, _ = s.GetAt(mset.Field, 0)
	assert.Equal(t, "z", e.(strElem).val)

	assert.False(t, s.RemoveAt(mset.Field, 99))
}

func TestAllIsSnapshotStable(t *testing.T) {
	var s mset.Set
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "a"}))
	snap := s.All()
	require.NoError(t, s.Append(strElem{tag: mset.Field, val: "b"}))
	assert.Len(t, snap, 1)
	assert.Equal(t, 2, s.Len())
}

func TestDupIsDisjoint(t *testing.T) {
	v := "orig"
	var s mset.Set
	require.NoError(t, s.Append(dupElem{tag: mset.Field, val: &v}))

	dup := s.Dup()
	dupVal := dup.All()[0].(dupElem).val
	*dupVal = "changed"

	orig, _ := s.GetAt(mset.Field, 0)
	assert.Equal(t, "orig", *orig.(dupElem).val)
}
