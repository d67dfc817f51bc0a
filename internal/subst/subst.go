// Package subst resolves candidate substitutions into a conflict-free edit
// plan, applies the plan to the original text, and drives fixpoint iteration
// across rewrite passes.
package subst

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gofex/gofex/internal/types"
)

// Conflict records one overlapping substitution that was dropped in favor of
// another. Conflicts are diagnostics, never fatal.
type Conflict struct {
	Kept    types.Substitution
	Dropped types.Substitution
}

func (c Conflict) String() string {
	return fmt.Sprintf("substitution %s at %s dropped (overlaps %s at %s)",
		c.Dropped.Rule, c.Dropped.Span, c.Kept.Rule, c.Kept.Span)
}

// Resolve selects a pairwise non-overlapping edit plan from the candidates,
// sorted by start offset. Overlaps are resolved by importance; at equal
// importance the earlier candidate wins — with candidates arriving in
// canonical pre-order and rule-registration order, that means the outer
// match of the first-registered rule.
func Resolve(candidates []types.Substitution) ([]types.Substitution, []Conflict) {
	sorted := make([]types.Substitution, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span.Start != sorted[j].Span.Start {
			return sorted[i].Span.Start < sorted[j].Span.Start
		}
		return sorted[i].Span.End > sorted[j].Span.End
	})

	var (
		plan     []types.Substitution
		dropped  []Conflict
		planEnds int
	)
	for _, cand := range sorted {
		if len(plan) == 0 || cand.Span.Start >= planEnds {
			plan = append(plan, cand)
			planEnds = cand.Span.End
			continue
		}
		last := plan[len(plan)-1]
		// The candidate can only overlap the most recently kept edit:
		// spans are visited in ascending start order.
		beforeLastEnd := 0
		if len(plan) > 1 {
			beforeLastEnd = plan[len(plan)-2].Span.End
		}
		if cand.Importance > last.Importance && cand.Span.Start >= beforeLastEnd {
			plan[len(plan)-1] = cand
			planEnds = cand.Span.End
			dropped = append(dropped, Conflict{Kept: cand, Dropped: last})
		} else {
			dropped = append(dropped, Conflict{Kept: last, Dropped: cand})
		}
	}
	return plan, dropped
}

// Apply splices a resolved edit plan into text. The plan must be sorted by
// start offset, in bounds, and pairwise non-overlapping; every byte outside
// an edited span is copied through unchanged. An empty plan returns text
// as-is.
func Apply(text string, plan []types.Substitution) (string, error) {
	var out strings.Builder
	pos := 0
	for _, sub := range plan {
		if sub.Span.Start < pos || sub.Span.End > len(text) || sub.Span.Start > sub.Span.End {
			return "", fmt.Errorf("edit plan is not sorted and disjoint: span %s at offset %d", sub.Span, pos)
		}
		out.WriteString(text[pos:sub.Span.Start])
		out.WriteString(sub.Replacement)
		pos = sub.Span.End
	}
	out.WriteString(text[pos:])
	return out.String(), nil
}

// ComposeMessage concatenates the messages and reference URLs of the
// important substitutions in a pass; trivial ones fold silently. Duplicate
// messages collapse to one.
func ComposeMessage(subs []types.Substitution) string {
	var parts []string
	seen := make(map[string]bool)
	for _, sub := range subs {
		if sub.Importance == types.ImportanceTrivial || sub.Message == "" {
			continue
		}
		msg := sub.Message
		if sub.URL != "" {
			msg += "\n(" + sub.URL + ")"
		}
		if !seen[msg] {
			seen[msg] = true
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "\n\n")
}
