package challenge

import (
	"fmt"
	"io/fs"
	"regexp"

	"github.com/amirbiron/markdown-trainer/internal/domain"
	"gopkg.in/yaml.v3"
)

// catalogFile represents the YAML structure of the catalog index. File order
// is display order for topic menus.
type catalogFile struct {
	Topics []string `yaml:"topics"`
}

// topicFile represents the YAML structure of one topic's challenge file.
// Challenge order within a file encodes the difficulty progression shown to
// the user, easy to hard.
type topicFile struct {
	Topic      string          `yaml:"topic"`
	Name       string          `yaml:"name"`
	Challenges []challengeFile `yaml:"challenges"`
}

type challengeFile struct {
	ID              string     `yaml:"id"`
	Difficulty      string     `yaml:"difficulty"`
	Prompt          string     `yaml:"prompt"`
	Hint            string     `yaml:"hint"`
	CorrectFeedback string     `yaml:"correct_feedback"`
	WrongFeedback   string     `yaml:"wrong_feedback"`
	Example         string     `yaml:"example"`
	Rules           []ruleFile `yaml:"rules"`
}

type ruleFile struct {
	Kind    string   `yaml:"kind"`
	Values  []string `yaml:"values,omitempty"`
	Pattern string   `yaml:"pattern,omitempty"`
	Min     int      `yaml:"min,omitempty"`
}

// TopicSet is one topic's ordered challenge list plus its display name.
type TopicSet struct {
	Topic      domain.Topic
	Name       string
	Challenges []*domain.Challenge
}

// Loader reads challenge catalogs from a filesystem.
type Loader struct {
	fsys fs.FS
}

// NewLoader creates a loader over the given filesystem (the embedded catalog
// or a directory override).
func NewLoader(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys}
}

// LoadCatalog reads catalog.yaml and every topic file it lists, in order.
// Malformed content is a load-time error, never a runtime fault: the
// validator assumes every rule it sees is well formed.
func (l *Loader) LoadCatalog() ([]*TopicSet, error) {
	data, err := fs.ReadFile(l.fsys, "catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("read catalog.yaml: %w", err)
	}

	var index catalogFile
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("parse catalog.yaml: %w", err)
	}
	if len(index.Topics) == 0 {
		return nil, fmt.Errorf("catalog.yaml lists no topics")
	}

	sets := make([]*TopicSet, 0, len(index.Topics))
	for _, name := range index.Topics {
		set, err := l.loadTopic(name)
		if err != nil {
			return nil, fmt.Errorf("load topic %s: %w", name, err)
		}
		sets = append(sets, set)
	}
	return sets, nil
}

func (l *Loader) loadTopic(name string) (*TopicSet, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read topic file: %w", err)
	}

	var tf topicFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse topic file: %w", err)
	}
	if tf.Topic == "" {
		return nil, fmt.Errorf("topic key is required")
	}
	if tf.Name == "" {
		return nil, fmt.Errorf("topic %s: display name is required", tf.Topic)
	}

	topic := domain.Topic(tf.Topic)
	set := &TopicSet{
		Topic:      topic,
		Name:       tf.Name,
		Challenges: make([]*domain.Challenge, 0, len(tf.Challenges)),
	}
	for i, cf := range tf.Challenges {
		ch, err := buildChallenge(topic, cf)
		if err != nil {
			return nil, fmt.Errorf("challenge %d (%s): %w", i, cf.ID, err)
		}
		set.Challenges = append(set.Challenges, ch)
	}
	return set, nil
}

func buildChallenge(topic domain.Topic, cf challengeFile) (*domain.Challenge, error) {
	if cf.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if cf.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}
	if len(cf.Rules) == 0 {
		return nil, fmt.Errorf("at least one rule is required")
	}

	rules := make([]domain.Rule, 0, len(cf.Rules))
	for _, rf := range cf.Rules {
		rule, err := buildRule(rf)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rf.Kind, err)
		}
		rules = append(rules, rule)
	}

	return &domain.Challenge{
		ID:              cf.ID,
		Topic:           topic,
		Difficulty:      domain.Difficulty(cf.Difficulty),
		Prompt:          cf.Prompt,
		Hint:            cf.Hint,
		CorrectFeedback: cf.CorrectFeedback,
		WrongFeedback:   cf.WrongFeedback,
		Example:         cf.Example,
		Rules:           rules,
	}, nil
}

func buildRule(rf ruleFile) (domain.Rule, error) {
	kind := domain.RuleKind(rf.Kind)
	switch kind {
	case domain.RuleSubstrings:
		if len(rf.Values) == 0 {
			return domain.Rule{}, fmt.Errorf("values are required")
		}
		return domain.Rule{Kind: kind, Substrings: rf.Values}, nil
	case domain.RulePattern:
		if rf.Pattern == "" {
			return domain.Rule{}, fmt.Errorf("pattern is required")
		}
		re, err := regexp.Compile(rf.Pattern)
		if err != nil {
			return domain.Rule{}, fmt.Errorf("compile pattern: %w", err)
		}
		return domain.Rule{Kind: kind, Pattern: re}, nil
	case domain.RuleMinLines:
		if rf.Min <= 0 {
			return domain.Rule{}, fmt.Errorf("min must be positive")
		}
		return domain.Rule{Kind: kind, MinLines: rf.Min}, nil
	case domain.RuleTableSeparator, domain.RuleMermaidBlock,
		domain.RuleDecisionNode, domain.RuleSequenceDiagram, domain.RuleBlockquote:
		return domain.Rule{Kind: kind}, nil
	}
	return domain.Rule{}, fmt.Errorf("unknown rule kind %q", rf.Kind)
}
