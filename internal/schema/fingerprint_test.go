package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompareIdentical(t *testing.T) {
	a := New("Point", []FieldSpec{{"x", "f64"}, {"y", "f64"}})
	b := New("Point", []FieldSpec{{"x", "f64"}, {"y", "f64"}})
	c := Compare(a, b)
	require.Equal(t, ChangeNone, c.Kind)
	require.False(t, c.IsBreaking())
}

func TestCompareAdditiveFieldAdded(t *testing.T) {
	old := New("Point", []FieldSpec{{"x", "f64"}})
	new_ := New("Point", []FieldSpec{{"x", "f64"}, {"y", "f64"}})
	c := Compare(old, new_)
	require.Equal(t, ChangeAdditive, c.Kind)
	require.Equal(t, []string{"y"}, c.Added)
	require.False(t, c.IsBreaking())
}

func TestCompareBreakingFieldRemoved(t *testing.T) {
	old := New("Point", []FieldSpec{{"x", "f64"}, {"y", "f64"}})
	new_ := New("Point", []FieldSpec{{"x", "f64"}})
	c := Compare(old, new_)
	require.Equal(t, ChangeBreaking, c.Kind)
	require.Equal(t, []string{"y"}, c.Removed)
	require.True(t, c.IsBreaking())
}

func TestCompareBreakingTypeChanged(t *testing.T) {
	old := New("Point", []FieldSpec{{"x", "i32"}})
	new_ := New("Point", []FieldSpec{{"x", "f64"}})
	c := Compare(old, new_)
	require.Equal(t, ChangeBreaking, c.Kind)
	require.Len(t, c.TypeChanges, 1)
	require.Equal(t, "x", c.TypeChanges[0].Field)
}

func TestCompareTypeRenamed(t *testing.T) {
	old := New("Point", []FieldSpec{{"x", "f64"}})
	new_ := New("Coord", []FieldSpec{{"x", "f64"}})
	c := Compare(old, new_)
	require.Equal(t, ChangeTypeRenamed, c.Kind)
	require.Equal(t, "Point", c.OldName)
	require.Equal(t, "Coord", c.NewName)
}

func TestCompareRenameWithFieldRemovedIsBreakingNotRenamed(t *testing.T) {
	old := New("Point", []FieldSpec{{"x", "f64"}, {"y", "f64"}})
	new_ := New("Coord", []FieldSpec{{"x", "f64"}})
	c := Compare(old, new_)
	require.Equal(t, ChangeBreaking, c.Kind)
	require.Equal(t, []string{"y"}, c.Removed)
	require.True(t, c.IsBreaking())
}

func TestCompareReorderIsBreaking(t *testing.T) {
	old := New("Pair", []FieldSpec{{"a", "i32"}, {"b", "i32"}})
	new_ := New("Pair", []FieldSpec{{"b", "i32"}, {"a", "i32"}})
	c := Compare(old, new_)
	require.True(t, c.IsBreaking())
}

func TestPrimitiveFingerprint(t *testing.T) {
	p := Primitive("i32")
	require.Equal(t, "i32", p.TypeName)
	require.Empty(t, p.Fields)
}
