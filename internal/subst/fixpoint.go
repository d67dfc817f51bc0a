package subst

import (
	"fmt"

	"github.com/gofex/gofex/internal/types"
)

// DefaultMaxIterations caps fixpoint passes when the caller does not
// configure one, so non-converging rule sets terminate.
const DefaultMaxIterations = 10

// IterationLimitError reports that fixpoint iteration did not converge
// within the cap. Text holds the output of the last completed pass, which is
// still valid and applied.
type IterationLimitError struct {
	Limit int
	Text  string
}

func (e *IterationLimitError) Error() string {
	return fmt.Sprintf("rewrite did not converge within %d passes", e.Limit)
}

// Searcher produces one pass's candidate substitutions for the given text.
// The fixpoint driver re-invokes it on each rewritten intermediate, which
// re-parses from scratch.
type Searcher func(text string) ([]types.Substitution, error)

// Result summarizes one rewrite run.
type Result struct {
	// Text is the final rewritten source.
	Text string
	// Passes counts completed search-resolve-apply passes.
	Passes int
	// Applied holds every substitution applied, across all passes.
	Applied []types.Substitution
	// Dropped holds overlap conflicts, across all passes.
	Dropped []Conflict
	// Converged is true when the last search pass found nothing.
	Converged bool
}

// Unresolved reports whether the run ended with dropped conflicts it never
// revisited: any drop in a run that did not converge. A converged iterate
// run has re-searched its own output, so every earlier drop was either
// applied on a later pass or no longer applies.
func (r *Result) Unresolved() bool {
	return len(r.Dropped) > 0 && !r.Converged
}

// Fixpoint repeatedly searches and rewrites text until a pass produces no
// candidates or maxIterations passes have been applied. On cap overrun the
// result reflects the last completed pass and the returned error is an
// *IterationLimitError.
func Fixpoint(text string, find Searcher, maxIterations int) (*Result, error) {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	res := &Result{Text: text}
	for pass := 0; pass < maxIterations; pass++ {
		candidates, err := find(res.Text)
		if err != nil {
			return res, fmt.Errorf("search pass %d: %w", pass+1, err)
		}
		if len(candidates) == 0 {
			res.Converged = true
			return res, nil
		}
		plan, dropped := Resolve(candidates)
		next, err := Apply(res.Text, plan)
		if err != nil {
			return res, fmt.Errorf("apply pass %d: %w", pass+1, err)
		}
		res.Text = next
		res.Passes++
		res.Applied = append(res.Applied, plan...)
		res.Dropped = append(res.Dropped, dropped...)
	}

	// One last probe so a rule set that converged exactly on the cap is
	// not misreported.
	candidates, err := find(res.Text)
	if err == nil && len(candidates) == 0 {
		res.Converged = true
		return res, nil
	}
	return res, &IterationLimitError{Limit: maxIterations, Text: res.Text}
}
