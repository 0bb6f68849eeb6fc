// Package validator checks free-text answers against a challenge's
// declarative rule set. Rules are evaluated in authored order and the first
// failing rule short-circuits with a reason; an answer passes only when every
// rule holds. Checks are intentionally literal string inspection rather than
// Markdown parsing, which keeps validation deterministic for chat input.
package validator

import (
	"fmt"
	"strings"

	"github.com/amirbiron/markdown-trainer/internal/domain"
)

const mermaidFence = "```mermaid"

// Result is the outcome of validating one answer.
type Result struct {
	Pass   bool
	Reason string
}

// Validate checks a raw answer against the challenge's rules. It never
// fails with an error: malformed rule configuration is a content bug the
// catalog loader rejects at startup.
func Validate(ch *domain.Challenge, rawAnswer string) Result {
	answer := strings.TrimSpace(rawAnswer)

	for _, rule := range ch.Rules {
		if reason := check(rule, answer); reason != "" {
			return Result{Pass: false, Reason: reason}
		}
	}
	return Result{Pass: true}
}

func check(rule domain.Rule, answer string) string {
	switch rule.Kind {
	case domain.RuleSubstrings:
		for _, required := range rule.Substrings {
			if !strings.Contains(answer, required) {
				return fmt.Sprintf("חסר: %s", required)
			}
		}
	case domain.RulePattern:
		if !rule.Pattern.MatchString(answer) {
			return "התבנית לא תואמת"
		}
	case domain.RuleMinLines:
		if countLines(answer) < rule.MinLines {
			return fmt.Sprintf("צריך לפחות %d שורות", rule.MinLines)
		}
	case domain.RuleTableSeparator:
		if !strings.Contains(answer, "---") {
			return "חסרה שורת המפריד של הטבלה"
		}
	case domain.RuleMermaidBlock:
		if !hasMermaidBlock(answer) {
			return "חסר בלוק mermaid תקין"
		}
	case domain.RuleDecisionNode:
		if !hasMermaidBlock(answer) || !hasDecisionNode(answer) {
			return "חסר צומת החלטה בתרשים"
		}
	case domain.RuleSequenceDiagram:
		if !hasMermaidBlock(answer) || !strings.Contains(answer, "sequenceDiagram") {
			return "חסרה דיאגרמת רצף תקינה"
		}
	case domain.RuleBlockquote:
		if !strings.HasPrefix(answer, ">") {
			return "חייב להתחיל בסימן >"
		}
	}
	return ""
}

// countLines counts lines after discarding blank and whitespace-only ones.
func countLines(answer string) int {
	n := 0
	for _, line := range strings.Split(answer, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// hasMermaidBlock checks for an opening mermaid fence with a closing fence
// after it.
func hasMermaidBlock(answer string) bool {
	idx := strings.Index(answer, mermaidFence)
	if idx < 0 {
		return false
	}
	return strings.Contains(answer[idx+len(mermaidFence):], "```")
}

// hasDecisionNode looks for a brace-delimited node, the mermaid decision
// (diamond) shape.
func hasDecisionNode(answer string) bool {
	open := strings.Index(answer, "{")
	if open < 0 {
		return false
	}
	return strings.Contains(answer[open+1:], "}")
}
