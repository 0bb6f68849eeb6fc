package training

// ModeKind tags which interactive flow currently owns a user's next free-text
// message. Exactly one mode is active per user at a time.
type ModeKind string

const (
	ModeNone     ModeKind = "normal"
	ModeTraining ModeKind = "training"
	ModeSandbox  ModeKind = "sandbox"
)

// Mode is the per-user flow slot as a tagged union: the session pointer is
// set only when Kind is ModeTraining.
type Mode struct {
	Kind    ModeKind
	Session *Session
}

// NoMode is the cleared flow slot.
func NoMode() Mode {
	return Mode{Kind: ModeNone}
}

// TrainingMode wraps an active session into a mode value.
func TrainingMode(s *Session) Mode {
	return Mode{Kind: ModeTraining, Session: s}
}

// InTraining reports whether the slot holds a training session.
func (m Mode) InTraining() bool {
	return m.Kind == ModeTraining && m.Session != nil
}
