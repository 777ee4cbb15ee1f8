package tfdiags

import (
	"github.com/hashicorp/errwrap"
	"github.com/hashicorp/go-multierror"
)

// Aggregate collects diagnostics raised independently during a single
// pass - e.g. multiple definition cells that each fail to parse - into one
// error. A single diagnostic is returned unwrapped; zero diagnostics
// returns nil.
type Aggregate struct {
	merr *multierror.Error
}

func NewAggregate() *Aggregate {
	return &Aggregate{merr: &multierror.Error{
		ErrorFormat: func(errs []error) string {
			if len(errs) == 1 {
				return errs[0].Error()
			}
			s := "multiple diagnostics:"
			for _, e := range errs {
				s += "\n  * " + e.Error()
			}
			return s
		},
	}}
}

func (a *Aggregate) Append(d *Diagnostic) {
	if d == nil {
		return
	}
	a.merr = multierror.Append(a.merr, d)
}

// Err returns nil if no diagnostics were appended, the sole diagnostic if
// exactly one was, or the aggregate otherwise.
func (a *Aggregate) Err() error {
	if a.merr.Len() == 0 {
		return nil
	}
	if a.merr.Len() == 1 {
		return a.merr.Errors[0]
	}
	return a.merr.ErrorOrNil()
}

func (a *Aggregate) Len() int { return a.merr.Len() }

// RootCause walks a wrapped error chain looking for the first *Diagnostic,
// using errwrap's generic walker so this also works across errors
// produced by packages that wrap with errwrap.Wrapf instead of fmt.Errorf.
func RootCause(err error) *Diagnostic {
	var found *Diagnostic
	errwrap.Walk(err, func(e error) {
		if found != nil {
			return
		}
		if d, ok := e.(*Diagnostic); ok {
			found = d
		}
	})
	return found
}
