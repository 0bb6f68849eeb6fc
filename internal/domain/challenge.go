package domain

// Topic identifies a named grouping of challenges.
type Topic string

const (
	TopicTables         Topic = "tables"
	TopicLinksImages    Topic = "links-images"
	TopicAdvancedLists  Topic = "advanced-lists"
	TopicTextFormatting Topic = "text-formatting"
	TopicBugDetection   Topic = "bug-detection"
	TopicMermaid        Topic = "mermaid"
	TopicCodeBlocks     Topic = "code-blocks"
	TopicEscaping       Topic = "escaping"
	TopicQuotesAlerts   Topic = "quotes-alerts"
	TopicHTMLMarkdown   Topic = "html-markdown"
)

// Difficulty represents a challenge difficulty tier. It affects the label
// shown to the user, not validation.
type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very-hard"
)

// Label returns the Hebrew display label for a difficulty tier.
func (d Difficulty) Label() string {
	switch d {
	case DifficultyEasy:
		return "קל"
	case DifficultyMedium:
		return "בינוני"
	case DifficultyHard:
		return "מתקדם"
	case DifficultyVeryHard:
		return "קשה במיוחד"
	}
	return string(d)
}

// Challenge is one immutable catalog entry: a prompt the user answers in free
// text, plus the declarative rules that answer is checked against. Entries are
// loaded once at startup and never mutated.
type Challenge struct {
	ID              string
	Topic           Topic
	Difficulty      Difficulty
	Prompt          string
	Hint            string
	CorrectFeedback string
	WrongFeedback   string
	Example         string
	Rules           []Rule
}
