// Package tfdiags implements the structured error taxonomy surfaced at the
// core's boundary (see spec §6.5). Diagnostics carry a kind, a textual
// message, and an optional recovery hint, and compose with the standard
// errors package via Is/As/Unwrap so callers can use ordinary Go error
// handling instead of a bespoke diagnostics API.
package tfdiags

import "fmt"

// Kind identifies one of the closed set of error variants the core can
// surface. New kinds are never added silently - every operation in
// SPEC_FULL.md maps to one of these.
type Kind string

const (
	Parse             Kind = "Parse"
	CyclicDependency  Kind = "CyclicDependency"
	CellNotFound      Kind = "CellNotFound"
	Compilation       Kind = "Compilation"
	LibraryLoad       Kind = "LibraryLoad"
	Serialization     Kind = "Serialization"
	Deserialization   Kind = "Deserialization"
	SchemaEvolution   Kind = "SchemaEvolution"
	IO                Kind = "Io"
	IPC               Kind = "Ipc"
	Toolchain         Kind = "Toolchain"
	Execution         Kind = "Execution"
	Aborted           Kind = "Aborted"
	InvalidOperation  Kind = "InvalidOperation"
)

// Diagnostic is a single structured error. It implements the error
// interface so it can be returned, wrapped, and matched like any other Go
// error.
type Diagnostic struct {
	Kind Kind
	// Message is the human-readable description of the problem.
	Message string
	// RecoveryHint is set for the subset of kinds where a concrete next
	// step exists (e.g. "install the toolchain").
	RecoveryHint string
	// CellID, when non-nil, names the cell the diagnostic is attached to.
	// Used by Compilation and Execution diagnostics, which are localized
	// to a single cell rather than terminal for the whole notebook.
	CellID *int
	// Cause, when set, is the underlying error this diagnostic wraps.
	Cause error
}

func (d *Diagnostic) Error() string {
	if d.RecoveryHint != "" {
		return fmt.Sprintf("%s: %s (%s)", d.Kind, d.Message, d.RecoveryHint)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Cause }

// Is reports whether target is a *Diagnostic with the same Kind, so
// callers can write errors.Is(err, tfdiags.ErrAborted) style checks via the
// sentinel helpers below instead of comparing Kind fields directly.
func (d *Diagnostic) Is(target error) bool {
	other, ok := target.(*Diagnostic)
	if !ok {
		return false
	}
	if other.Kind == "" {
		return false
	}
	return d.Kind == other.Kind
}

// New constructs a Diagnostic of the given kind.
func New(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a Diagnostic of the given kind with an underlying cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithHint attaches a recovery hint and returns the receiver for chaining.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	d.RecoveryHint = hint
	return d
}

// WithCell attaches a cell id and returns the receiver for chaining.
func (d *Diagnostic) WithCell(id int) *Diagnostic {
	d.CellID = &id
	return d
}

// Sentinel values usable with errors.Is. Only Kind is compared, per the Is
// method above, so these carry no message of their own.
var (
	ErrCyclicDependency = &Diagnostic{Kind: CyclicDependency}
	ErrCellNotFound     = &Diagnostic{Kind: CellNotFound}
	ErrAborted          = &Diagnostic{Kind: Aborted}
	ErrSchemaEvolution  = &Diagnostic{Kind: SchemaEvolution}
	ErrInvalidOperation = &Diagnostic{Kind: InvalidOperation}
)
