package training

// Callback data values carried by inline buttons. The transport adapter
// routes button presses back to the matching service call.
const (
	CallbackHint  = "train_hint"
	CallbackSkip  = "train_skip"
	CallbackExit  = "train_exit"
	CallbackTopic = "train_topic_" // prefix, followed by the topic key
)

// Button is one inline choice offered with a message.
type Button struct {
	Label string
	Data  string
}

// Message is one outbound chat instruction: text, optionally with choice
// buttons. Transitions emit an ordered message plan; nothing in this package
// talks to a transport directly.
type Message struct {
	Text     string
	Keyboard [][]Button
}

// text builds a plain message.
func text(s string) Message {
	return Message{Text: s}
}

// controlsKeyboard offers the in-challenge actions.
func controlsKeyboard() [][]Button {
	return [][]Button{{
		{Label: "💡 רמז", Data: CallbackHint},
		{Label: "⏭️ דלג", Data: CallbackSkip},
		{Label: "🚪 יציאה", Data: CallbackExit},
	}}
}
