package widgets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliderClampsAndUsesValue(t *testing.T) {
	SetContext(NewContext(map[string]Value{"speed": NumberValue(150)}))
	defer ClearContext()

	v := Slider("speed", "Speed", 0, 100, 1, 50)
	require.Equal(t, 100.0, v)

	defs := TakeWidgets()
	require.Len(t, defs, 1)
	require.Equal(t, KindSlider, defs[0].Kind)
}

func TestTextInputFallsBackToDefault(t *testing.T) {
	SetContext(NewContext(nil))
	defer ClearContext()

	v := TextInput("name", "Name", "enter name", "Ada")
	require.Equal(t, "Ada", v)
}

func TestSelectClampsIndex(t *testing.T) {
	SetContext(NewContext(map[string]Value{"mode": IndexValue(99)}))
	defer ClearContext()

	v := Select("mode", "Mode", []string{"Fast", "Slow"}, 0)
	require.Equal(t, "Slow", v)
}

func TestCheckboxDefault(t *testing.T) {
	SetContext(NewContext(nil))
	defer ClearContext()
	require.True(t, Checkbox("on", "On", true))
}

func TestDuplicateWidgetIDPanics(t *testing.T) {
	SetContext(NewContext(nil))
	defer ClearContext()
	Slider("speed", "Speed", 0, 100, 1, 50)
	require.Panics(t, func() {
		Slider("speed", "Speed", 0, 100, 1, 50)
	})
}

func TestClearContextDropsState(t *testing.T) {
	SetContext(NewContext(nil))
	Slider("speed", "Speed", 0, 100, 1, 50)
	ClearContext()
	require.Nil(t, TakeWidgets())
}
