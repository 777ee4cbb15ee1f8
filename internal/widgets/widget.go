// Package widgets implements the interactive-input bus cells use to
// register sliders, text inputs, selects, and checkboxes that trigger
// re-execution on user interaction. Grounded on
// original_source/crates/venus-core/src/widgets.rs.
package widgets

// Def is a widget definition sent to the frontend. Go has no tagged
// union, so Kind discriminates which of the value fields are populated -
// the serde(tag = "type") equivalent (the JSON encoding carries Kind as
// an ordinary struct field rather than an external tag).
type Def struct {
	Kind  string
	ID    string
	Label string

	// Slider fields.
	Min, Max, Step, NumberValue float64

	// TextInput fields.
	Placeholder, TextValue string

	// Select fields.
	Options  []string
	Selected int

	// Checkbox field.
	BoolValue bool
}

const (
	KindSlider    = "slider"
	KindTextInput = "text_input"
	KindSelect    = "select"
	KindCheckbox  = "checkbox"
)

// Value is a widget value that can be stored in session state: exactly
// one of the fields is meaningful, selected by the widget's Kind.
type Value struct {
	Number *float64
	Text   *string
	Index  *int
	Bool   *bool
}

func NumberValue(n float64) Value { return Value{Number: &n} }
func TextValue(s string) Value    { return Value{Text: &s} }
func IndexValue(i int) Value      { return Value{Index: &i} }
func BoolValue(b bool) Value      { return Value{Bool: &b} }

func (v Value) AsFloat64() (float64, bool) {
	if v.Number == nil {
		return 0, false
	}
	return *v.Number, true
}

func (v Value) AsString() (string, bool) {
	if v.Text == nil {
		return "", false
	}
	return *v.Text, true
}

func (v Value) AsIndex() (int, bool) {
	if v.Index == nil {
		return 0, false
	}
	return *v.Index, true
}

func (v Value) AsBool() (bool, bool) {
	if v.Bool == nil {
		return false, false
	}
	return *v.Bool, true
}
