package widgets

import "sync"

// Context holds the widgets registered and the values supplied for one
// cell execution.
type Context struct {
	Widgets []Def
	Values  map[string]Value
	seen    map[string]bool
}

func NewContext(values map[string]Value) *Context {
	return &Context{Values: values, seen: make(map[string]bool)}
}

// current is the process-global widget context for the duration of one
// worker Execute call. Workers execute exactly one cell at a time (the
// IPC protocol's request/response discipline forbids pipelining), so a
// package-level variable reproduces the original's thread-local contract
// without Go having a thread-local primitive of its own (SPEC_FULL.md
// §2.11).
var (
	currentMu sync.Mutex
	current   *Context
)

// SetContext installs ctx as the active widget context, called by the
// generated cell entry point (internal/cellcompile's wrapper) before
// invoking the cell function.
func SetContext(ctx *Context) {
	currentMu.Lock()
	current = ctx
	currentMu.Unlock()
}

// ClearContext uninstalls the active widget context, called after the
// cell function returns (success, error, or recovered panic) so no state
// leaks into the next Execute call.
func ClearContext() {
	currentMu.Lock()
	current = nil
	currentMu.Unlock()
}

// TakeWidgets drains and returns the widgets registered during the
// current execution.
func TakeWidgets() []Def {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current == nil {
		return nil
	}
	out := current.Widgets
	current.Widgets = nil
	return out
}

func withCurrent(fn func(*Context)) {
	currentMu.Lock()
	defer currentMu.Unlock()
	if current != nil {
		fn(current)
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Slider registers a numeric slider and returns its current value,
// clamped to [min, max]. Panics if id was already used in this
// execution - widget ids must be unique per cell execution (spec §4.11).
func Slider(id, label string, min, max, step, defaultValue float64) float64 {
	value := defaultValue
	withCurrent(func(c *Context) {
		requireUniqueID(c, id)
		if v, ok := c.Values[id]; ok {
			if n, ok := v.AsFloat64(); ok {
				value = n
			}
		}
		value = clamp(value, min, max)
		c.Widgets = append(c.Widgets, Def{
			Kind: KindSlider, ID: id, Label: label,
			Min: min, Max: max, Step: step, NumberValue: value,
		})
	})
	return value
}

// TextInput registers a text field and returns its current value.
func TextInput(id, label, placeholder, defaultValue string) string {
	value := defaultValue
	withCurrent(func(c *Context) {
		requireUniqueID(c, id)
		if v, ok := c.Values[id]; ok {
			if s, ok := v.AsString(); ok {
				value = s
			}
		}
		c.Widgets = append(c.Widgets, Def{
			Kind: KindTextInput, ID: id, Label: label,
			Placeholder: placeholder, TextValue: value,
		})
	})
	return value
}

// Select registers a dropdown and returns the selected option's text.
func Select(id, label string, options []string, defaultIndex int) string {
	selected := defaultIndex
	result := ""
	withCurrent(func(c *Context) {
		requireUniqueID(c, id)
		if v, ok := c.Values[id]; ok {
			if idx, ok := v.AsIndex(); ok {
				selected = idx
			}
		}
		if selected >= len(options) {
			selected = len(options) - 1
		}
		if selected < 0 {
			selected = 0
		}
		c.Widgets = append(c.Widgets, Def{
			Kind: KindSelect, ID: id, Label: label,
			Options: options, Selected: selected,
		})
		if selected >= 0 && selected < len(options) {
			result = options[selected]
		}
	})
	return result
}

// Checkbox registers a boolean toggle and returns its current value.
func Checkbox(id, label string, defaultValue bool) bool {
	value := defaultValue
	withCurrent(func(c *Context) {
		requireUniqueID(c, id)
		if v, ok := c.Values[id]; ok {
			if b, ok := v.AsBool(); ok {
				value = b
			}
		}
		c.Widgets = append(c.Widgets, Def{Kind: KindCheckbox, ID: id, Label: label, BoolValue: value})
	})
	return value
}

func requireUniqueID(c *Context, id string) {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[id] {
		panic("duplicate widget id in single execution: " + id)
	}
	c.seen[id] = true
}
