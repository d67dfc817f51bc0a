package types

import (
	"fmt"
	"strings"

	"github.com/gofex/gofex/internal/source"
)

// Importance ranks a substitution. It breaks ties among conflicting
// overlapping edits and decides whether a substitution's message survives
// message composition.
type Importance int

const (
	// ImportanceTrivial marks cosmetic rewrites whose messages are folded
	// silently when composed with others.
	ImportanceTrivial Importance = iota
	ImportanceInfo
	ImportanceWarning
	ImportanceError
)

var importanceNames = map[Importance]string{
	ImportanceTrivial: "trivial",
	ImportanceInfo:    "info",
	ImportanceWarning: "warning",
	ImportanceError:   "error",
}

func (i Importance) String() string {
	if name, ok := importanceNames[i]; ok {
		return name
	}
	return fmt.Sprintf("importance(%d)", int(i))
}

// ParseImportance converts a rule-file spelling to an Importance.
// Unknown and empty spellings default to warning.
func ParseImportance(s string) Importance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trivial":
		return ImportanceTrivial
	case "info":
		return ImportanceInfo
	case "error":
		return ImportanceError
	}
	return ImportanceWarning
}

// Substitution is one proposed edit: a span of the original text to replace,
// the rendered replacement, and the metadata of the rule that produced it.
type Substitution struct {
	Rule        string
	Span        source.Span
	Replacement string
	Importance  Importance
	Message     string
	URL         string
}
