package cellcompile

import (
	"fmt"
	"strings"

	"github.com/venus-notebooks/venus/internal/notebook"
)

// wrapperBuilder accumulates generated source while recording a
// generated-line -> source-line correspondence for every emitted line
// that originates from the cell's own source (SPEC_FULL.md §2.5).
type wrapperBuilder struct {
	lines    []string
	mappings []LineMapping
}

func (w *wrapperBuilder) emit(format string, args ...any) {
	w.lines = append(w.lines, fmt.Sprintf(format, args...))
}

func (w *wrapperBuilder) emitFromSource(sourceLine int, text string) {
	w.mappings = append(w.mappings, LineMapping{GeneratedLine: len(w.lines) + 1, SourceLine: sourceLine})
	w.lines = append(w.lines, text)
}

func (w *wrapperBuilder) String() string {
	return strings.Join(w.lines, "\n") + "\n"
}

// GenerateWrapper produces the synthetic cgo-shaped source that inlines
// the cell's function verbatim and exposes venus_cell_<name> as a C ABI
// entry point via cgo's //export mechanism - the Go-native realization
// of "compile to a dynamic library with a fixed C ABI entry point"
// (SPEC_FULL.md §2.5). Returns the source text plus the line mapping
// table used to remap compiler diagnostics back to the notebook source.
func GenerateWrapper(cell notebook.CodeCell) (string, []LineMapping) {
	w := &wrapperBuilder{}
	entrySymbol := EntrySymbol(cell.Name)

	w.emit("// Code generated by the cell compiler. DO NOT EDIT.")
	w.emit("package main")
	w.emit("")
	w.emit(`/*
#include <stdlib.h>
*/`)
	w.emit(`import "C"`)
	w.emit("")
	w.emit("import (")
	w.emit("\t%q", "encoding/json")
	w.emit("\t%q", "fmt")
	w.emit("\t%q", "unsafe")
	w.emit("")
	w.emit("\t%q", "github.com/venus-notebooks/venus/internal/widgets")
	w.emit("\tuniverse \"venus_universe\"")
	w.emit(")")
	w.emit("")
	w.emit("// Original source: %s:%d", cell.SourceFile, cell.Span.StartLine)

	for i, line := range strings.Split(cell.SourceCode, "\n") {
		w.emitFromSource(cell.Span.StartLine+i, line)
	}
	w.emit("")

	writeEntryPoint(w, cell, entrySymbol)
	writeSupportFuncs(w)
	return w.String(), w.mappings
}

func writeSupportFuncs(w *wrapperBuilder) {
	w.emit("")
	w.emit("func decodeWidgetValues(ptr *C.uchar, length C.size_t) map[string]widgets.Value {")
	w.emit("\tif length == 0 {")
	w.emit("\t\treturn nil")
	w.emit("\t}")
	w.emit("\traw := C.GoBytes(unsafe.Pointer(ptr), C.int(length))")
	w.emit("\tvar values map[string]widgets.Value")
	w.emit("\t_ = json.Unmarshal(raw, &values)")
	w.emit("\treturn values")
	w.emit("}")
	w.emit("")
	w.emit("// packOutput lays out display_len(8 LE) | display | widgets_len(8 LE)")
	w.emit("// | widgets | data. The worker process that dlopens this entry point")
	w.emit("// strips the widgets block back out before relaying display+data to")
	w.emit("// the coordinator (internal/cellcompile.UnpackRawOutput).")
	w.emit("func packOutput(display string, widgetsJSON []byte, data []byte) []byte {")
	w.emit("\tdisplayBytes := []byte(display)")
	w.emit("\tout := make([]byte, 8+len(displayBytes)+8+len(widgetsJSON)+len(data))")
	w.emit("\tputLen := func(at int, n int) {")
	w.emit("\t\tfor i := 0; i < 8; i++ {")
	w.emit("\t\t\tout[at+i] = byte(uint64(n) >> (8 * i))")
	w.emit("\t\t}")
	w.emit("\t}")
	w.emit("\tputLen(0, len(displayBytes))")
	w.emit("\tcopy(out[8:], displayBytes)")
	w.emit("\twidgetsAt := 8 + len(displayBytes)")
	w.emit("\tputLen(widgetsAt, len(widgetsJSON))")
	w.emit("\tcopy(out[widgetsAt+8:], widgetsJSON)")
	w.emit("\tcopy(out[widgetsAt+8+len(widgetsJSON):], data)")
	w.emit("\treturn out")
	w.emit("}")
}

// EntrySymbol is the exported C ABI symbol name for a cell, exactly as
// spec §6.2 names it.
func EntrySymbol(cellName string) string {
	return "venus_cell_" + cellName
}

func writeEntryPoint(w *wrapperBuilder, cell notebook.CodeCell, entrySymbol string) {
	w.emit("//export %s", entrySymbol)
	w.emit("func %s(", entrySymbol)
	for _, dep := range cell.Dependencies {
		w.emit("\t%sPtr *C.uchar, %sLen C.size_t,", dep.ParamName, dep.ParamName)
	}
	w.emit("\twidgetValuesPtr *C.uchar, widgetValuesLen C.size_t,")
	w.emit("\toutPtr *unsafe.Pointer, outLen *C.size_t,")
	w.emit(") (rc C.int) {")

	w.emit("\tdefer func() {")
	w.emit("\t\tif recover() != nil {")
	w.emit("\t\t\trc = %d // panic -> return code, never crash the host process", panicCode)
	w.emit("\t\t}")
	w.emit("\t}()")
	w.emit("")

	w.emit("\twidgetValues := decodeWidgetValues(widgetValuesPtr, widgetValuesLen)")
	w.emit("\twidgets.SetContext(widgets.NewContext(widgetValues))")
	w.emit("\tdefer widgets.ClearContext()")
	w.emit("")

	for _, dep := range cell.Dependencies {
		w.emit("\t%sBytes := C.GoBytes(unsafe.Pointer(%sPtr), C.int(%sLen))", dep.ParamName, dep.ParamName, dep.ParamName)
		w.emit("\tvar %s %s", dep.ParamName, dep.ParamType)
		w.emit("\tif err := universe.Decode(%sBytes, &%s); err != nil {", dep.ParamName, dep.ParamName)
		w.emit("\t\treturn %d // deserialization error", accessErrorCode)
		w.emit("\t}")
	}
	w.emit("")

	args := make([]string, len(cell.Dependencies))
	for i, dep := range cell.Dependencies {
		if dep.IsRef {
			args[i] = "&" + dep.ParamName
		} else {
			args[i] = dep.ParamName
		}
	}

	// A (T, error) return (spec: "If the return type is a result-like
	// sum, map a non-nil error to -2") is unwrapped here, before display
	// formatting and serialization ever see the error branch.
	valueExpr := "result"
	if isErrorableReturn(cell.ReturnType) {
		w.emit("\tvalue, err := %s(%s)", cell.Name, strings.Join(args, ", "))
		w.emit("\tif err != nil {")
		w.emit("\t\treturn %d // cell returned a non-nil error", cellErrorCode)
		w.emit("\t}")
		valueExpr = "value"
	} else {
		w.emit("\tresult := %s(%s)", cell.Name, strings.Join(args, ", "))
	}
	w.emit("")
	w.emit("\tdisplayText := fmt.Sprintf(\"%%+v\", %s)", valueExpr)
	w.emit("")
	w.emit("\tserialized, err := universe.Encode(%s)", valueExpr)
	w.emit("\tif err != nil {")
	w.emit("\t\treturn %d // serialization error", serializationErrorCode)
	w.emit("\t}")
	w.emit("")
	w.emit("\tregisteredWidgets := widgets.TakeWidgets()")
	w.emit("\twidgetsJSON, _ := json.Marshal(registeredWidgets)")
	w.emit("")
	w.emit("\toutput := packOutput(displayText, widgetsJSON, serialized)")
	w.emit("\tcOut := C.CBytes(output)")
	w.emit("\t*outPtr = cOut")
	w.emit("\t*outLen = C.size_t(len(output))")
	w.emit("\treturn %d // success", successCode)
	w.emit("}")
}

// isErrorableReturn reports whether returnType is a parenthesized (T,
// error) tuple - Go's two-return-value convention standing in for a
// result-like sum type (spec §4.5 step 2).
func isErrorableReturn(returnType string) bool {
	rt := strings.TrimSpace(returnType)
	if !strings.HasPrefix(rt, "(") || !strings.HasSuffix(rt, ")") {
		return false
	}
	parts := strings.Split(rt[1:len(rt)-1], ",")
	return strings.TrimSpace(parts[len(parts)-1]) == "error"
}

// Return codes exactly as spec §4.5 step 2 / §6.2 specify.
const (
	successCode            = 0
	accessErrorCode        = -1
	cellErrorCode          = -2
	serializationErrorCode = -3
	panicCode              = -4
)
