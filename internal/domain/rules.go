package domain

import "regexp"

// RuleKind identifies one kind of answer check. The set is closed: the
// validator handles every kind exhaustively, and new challenges are authored
// by composing existing kinds rather than adding code.
type RuleKind string

const (
	// RuleSubstrings requires every listed literal substring to appear
	// verbatim in the trimmed answer.
	RuleSubstrings RuleKind = "substrings"
	// RulePattern requires the trimmed answer to match a regular expression.
	RulePattern RuleKind = "pattern"
	// RuleMinLines requires a minimum number of non-blank lines.
	RuleMinLines RuleKind = "min_lines"
	// RuleTableSeparator requires a run of three or more hyphens, the table
	// header-separator convention.
	RuleTableSeparator RuleKind = "table_separator"
	// RuleMermaidBlock requires a fenced mermaid block with a closing fence.
	RuleMermaidBlock RuleKind = "mermaid_block"
	// RuleDecisionNode requires a mermaid block containing a decision node
	// (brace-delimited).
	RuleDecisionNode RuleKind = "decision_node"
	// RuleSequenceDiagram requires a mermaid sequence diagram with message
	// arrows.
	RuleSequenceDiagram RuleKind = "sequence_diagram"
	// RuleBlockquote requires the first non-blank line to start with ">".
	RuleBlockquote RuleKind = "blockquote"
)

// Rule is one declarative validation rule. Which parameter fields are
// meaningful depends on Kind; the rest stay zero.
type Rule struct {
	Kind       RuleKind
	Substrings []string       // RuleSubstrings
	Pattern    *regexp.Regexp // RulePattern, compiled by the catalog loader
	MinLines   int            // RuleMinLines
}
