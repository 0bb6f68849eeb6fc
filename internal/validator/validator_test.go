package validator

import (
	"regexp"
	"strings"
	"testing"

	"github.com/amirbiron/markdown-trainer/internal/domain"
)

func challengeWith(rules ...domain.Rule) *domain.Challenge {
	return &domain.Challenge{
		ID:    "test_challenge",
		Topic: domain.TopicTables,
		Rules: rules,
	}
}

func TestValidate_Substrings(t *testing.T) {
	ch := challengeWith(domain.Rule{
		Kind:       domain.RuleSubstrings,
		Substrings: []string{"|", "שם"},
	})

	tests := []struct {
		name   string
		answer string
		pass   bool
		reason string
	}{
		{"all present", "| שם | גיל |", true, ""},
		{"missing pipe", "שם וגיל", false, "חסר: |"},
		{"missing hebrew word", "| name | age |", false, "חסר: שם"},
		{"empty answer", "", false, "חסר: |"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(ch, tt.answer)
			if got.Pass != tt.pass {
				t.Errorf("Pass = %v; want %v", got.Pass, tt.pass)
			}
			if got.Reason != tt.reason {
				t.Errorf("Reason = %q; want %q", got.Reason, tt.reason)
			}
		})
	}
}

func TestValidate_Pattern(t *testing.T) {
	ch := challengeWith(domain.Rule{
		Kind:    domain.RulePattern,
		Pattern: regexp.MustCompile(`\[.+\]\(.+\)`),
	})

	tests := []struct {
		name   string
		answer string
		pass   bool
	}{
		{"valid link", "[חיפוש בגוגל](https://google.com)", true},
		{"link inside text", "הנה קישור [גוגל](https://google.com) בשבילך", true},
		{"bare url", "https://google.com", false},
		{"empty brackets", "[]()", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(ch, tt.answer)
			if got.Pass != tt.pass {
				t.Errorf("Validate(%q).Pass = %v; want %v", tt.answer, got.Pass, tt.pass)
			}
			if !tt.pass && got.Reason != "התבנית לא תואמת" {
				t.Errorf("Reason = %q; want pattern mismatch reason", got.Reason)
			}
		})
	}
}

func TestValidate_MinLines(t *testing.T) {
	ch := challengeWith(domain.Rule{Kind: domain.RuleMinLines, MinLines: 3})

	tests := []struct {
		name   string
		answer string
		pass   bool
	}{
		{"exactly three lines", "- אחד\n- שתיים\n- שלוש", true},
		{"blank lines ignored", "- אחד\n\n- שתיים\n\n- שלוש", true},
		{"two lines", "- אחד\n- שתיים", false},
		{"whitespace only lines ignored", "- אחד\n   \n\t\n- שתיים", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(ch, tt.answer)
			if got.Pass != tt.pass {
				t.Errorf("Pass = %v; want %v", got.Pass, tt.pass)
			}
		})
	}
}

func TestValidate_TableSeparator(t *testing.T) {
	ch := challengeWith(
		domain.Rule{Kind: domain.RuleSubstrings, Substrings: []string{"|"}},
		domain.Rule{Kind: domain.RuleTableSeparator},
	)

	valid := "| שם | גיל |\n|-----|-----|\n| דנה | 30 |"
	if got := Validate(ch, valid); !got.Pass {
		t.Errorf("valid table rejected: %q", got.Reason)
	}

	noSeparator := "| שם | גיל |\n| דנה | 30 |"
	got := Validate(ch, noSeparator)
	if got.Pass {
		t.Error("table without separator row should fail")
	}
	if got.Reason != "חסרה שורת המפריד של הטבלה" {
		t.Errorf("Reason = %q; want separator reason", got.Reason)
	}
}

func TestValidate_MermaidBlock(t *testing.T) {
	ch := challengeWith(domain.Rule{Kind: domain.RuleMermaidBlock})

	tests := []struct {
		name   string
		answer string
		pass   bool
	}{
		{"closed block", "```mermaid\ngraph TD\nA --> B\n```", true},
		{"unclosed block", "```mermaid\ngraph TD\nA --> B", false},
		{"plain code block", "```\ngraph TD\n```", false},
		{"no block", "graph TD\nA --> B", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(ch, tt.answer)
			if got.Pass != tt.pass {
				t.Errorf("Pass = %v; want %v", got.Pass, tt.pass)
			}
		})
	}
}

func TestValidate_DecisionNode(t *testing.T) {
	ch := challengeWith(domain.Rule{Kind: domain.RuleDecisionNode})

	withDecision := "```mermaid\ngraph TD\nA --> B{מחובר?}\nB -->|כן| C\nB -->|לא| D\n```"
	if got := Validate(ch, withDecision); !got.Pass {
		t.Errorf("diagram with decision node rejected: %q", got.Reason)
	}

	withoutDecision := "```mermaid\ngraph TD\nA --> B\n```"
	got := Validate(ch, withoutDecision)
	if got.Pass {
		t.Error("diagram without decision node should fail")
	}
	if got.Reason != "חסר צומת החלטה בתרשים" {
		t.Errorf("Reason = %q; want decision node reason", got.Reason)
	}

	// A decision node outside a mermaid block does not count.
	bare := "B{מחובר?}"
	if got := Validate(ch, bare); got.Pass {
		t.Error("decision node without mermaid block should fail")
	}
}

func TestValidate_SequenceDiagram(t *testing.T) {
	ch := challengeWith(domain.Rule{Kind: domain.RuleSequenceDiagram})

	valid := "```mermaid\nsequenceDiagram\nUser->>Server: בקשה\nServer-->>User: תשובה\n```"
	if got := Validate(ch, valid); !got.Pass {
		t.Errorf("sequence diagram rejected: %q", got.Reason)
	}

	flowchart := "```mermaid\ngraph TD\nA --> B\n```"
	if got := Validate(ch, flowchart); got.Pass {
		t.Error("flowchart should not satisfy sequence diagram rule")
	}
}

func TestValidate_Blockquote(t *testing.T) {
	ch := challengeWith(domain.Rule{Kind: domain.RuleBlockquote})

	tests := []struct {
		name   string
		answer string
		pass   bool
	}{
		{"starts with marker", "> ציטוט חשוב", true},
		{"leading whitespace trimmed", "   > ציטוט", true},
		{"marker mid-text", "הוא אמר > משהו", false},
		{"no marker", "ציטוט חשוב", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(ch, tt.answer)
			if got.Pass != tt.pass {
				t.Errorf("Pass = %v; want %v", got.Pass, tt.pass)
			}
		})
	}
}

func TestValidate_RuleOrder(t *testing.T) {
	// The first failing rule wins; later rules are not consulted.
	ch := challengeWith(
		domain.Rule{Kind: domain.RuleSubstrings, Substrings: []string{"|"}},
		domain.Rule{Kind: domain.RuleMinLines, MinLines: 10},
	)

	got := Validate(ch, "no table here")
	if got.Pass {
		t.Fatal("answer should fail")
	}
	if !strings.HasPrefix(got.Reason, "חסר:") {
		t.Errorf("Reason = %q; want the substring failure, not min_lines", got.Reason)
	}
}

func TestValidate_TrimsInput(t *testing.T) {
	ch := challengeWith(domain.Rule{Kind: domain.RuleBlockquote})

	if got := Validate(ch, "\n\n  > ציטוט  \n"); !got.Pass {
		t.Errorf("surrounding whitespace should be trimmed, got reason %q", got.Reason)
	}
}

func TestValidate_NoRules(t *testing.T) {
	ch := challengeWith()
	if got := Validate(ch, "anything"); !got.Pass {
		t.Error("challenge with no rules should accept any answer")
	}
}
