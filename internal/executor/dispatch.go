package executor

import (
	"fmt"

	"github.com/venus-notebooks/venus/internal/tfdiags"
)

// maxDispatchArity is the highest dependency count the dispatch table
// covers (spec §4.9: "up to 8 dependencies"). The Go realization binds
// the IPC layer's existing [][]byte inputs for any count 0..8, so unlike
// the original's closed set of typed function pointers, a single
// function actually implements all of them - the dispatch table is kept
// as the arity-bound check itself, matching the spec's Open Question
// resolution (SPEC_FULL.md §5: a closed set up to k=8).
const maxDispatchArity = 8

// checkArity rejects an out-of-range dependency count with the spec's
// named Unsupported(n_deps) error rather than attempting dispatch.
func checkArity(depCount int) error {
	if depCount < 0 || depCount > maxDispatchArity {
		return &tfdiags.Diagnostic{
			Kind:    tfdiags.Execution,
			Message: fmt.Sprintf("unsupported dependency arity: %d", depCount),
		}
	}
	return nil
}
