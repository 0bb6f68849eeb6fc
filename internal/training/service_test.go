package training

import (
	"context"
	"strings"
	"testing"

	"github.com/amirbiron/markdown-trainer/internal/domain"
)

// fakeModeStore keeps modes in a map.
type fakeModeStore struct {
	modes   map[int64]Mode
	modeErr error
}

func newFakeModeStore() *fakeModeStore {
	return &fakeModeStore{modes: make(map[int64]Mode)}
}

func (f *fakeModeStore) Mode(_ context.Context, userID int64) (Mode, error) {
	if f.modeErr != nil {
		return Mode{}, f.modeErr
	}
	if m, ok := f.modes[userID]; ok {
		return m, nil
	}
	return NoMode(), nil
}

func (f *fakeModeStore) SetMode(_ context.Context, userID int64, mode Mode) error {
	f.modes[userID] = mode
	return nil
}

func (f *fakeModeStore) ClearMode(_ context.Context, userID int64) error {
	delete(f.modes, userID)
	return nil
}

// fakeSessionStore records calls.
type fakeSessionStore struct {
	created    []*Session
	updates    int
	finalized  map[string]Status
	outcomes   []bool
	history    []Record
	stats      Stats
	historyErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{finalized: make(map[string]Status)}
}

func (f *fakeSessionStore) CreateRecord(_ context.Context, sess *Session) error {
	f.created = append(f.created, sess)
	return nil
}

func (f *fakeSessionStore) UpdateProgress(_ context.Context, _ string, _, _ int) error {
	f.updates++
	return nil
}

func (f *fakeSessionStore) FinalizeRecord(_ context.Context, sessionID string, status Status) error {
	f.finalized[sessionID] = status
	return nil
}

func (f *fakeSessionStore) RecordTopicOutcome(_ context.Context, _ int64, _ domain.Topic, correct bool) error {
	f.outcomes = append(f.outcomes, correct)
	return nil
}

func (f *fakeSessionStore) History(_ context.Context, _ int64, _ int) ([]Record, error) {
	return f.history, f.historyErr
}

func (f *fakeSessionStore) Stats(_ context.Context, _ int64) (Stats, error) {
	return f.stats, nil
}

// fakePublisher collects events and can fail on demand.
type fakePublisher struct {
	events []OutcomeEvent
	err    error
}

func (f *fakePublisher) PublishOutcome(_ context.Context, event OutcomeEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func setupService(t *testing.T) (*Service, *fakeModeStore, *fakeSessionStore, *fakePublisher) {
	t.Helper()

	modes := newFakeModeStore()
	store := newFakeSessionStore()
	pub := &fakePublisher{}
	svc := NewService(testBank(t), modes, store, pub, nil)
	return svc, modes, store, pub
}

func TestService_Start_ShowsTopicMenu(t *testing.T) {
	svc, _, _, _ := setupService(t)

	messages, err := svc.Start(context.Background(), 1)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("message count = %d; want 1", len(messages))
	}

	menu := messages[0]
	if len(menu.Keyboard) != 2 {
		t.Fatalf("keyboard rows = %d; want one per topic", len(menu.Keyboard))
	}
	if menu.Keyboard[0][0].Data != CallbackTopic+"tables" {
		t.Errorf("first button data = %q; want topic callback", menu.Keyboard[0][0].Data)
	}
}

func TestService_Start_ConflictWhileTraining(t *testing.T) {
	svc, modes, _, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicTables); err != nil {
		t.Fatal(err)
	}
	if !modes.modes[1].InTraining() {
		t.Fatal("user should be in training mode")
	}

	messages, err := svc.Start(ctx, 1)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !strings.Contains(messages[0].Text, "כבר באמצע אימון") {
		t.Errorf("reply = %q; want conflict message", messages[0].Text)
	}
}

func TestService_ChooseTopic(t *testing.T) {
	svc, modes, store, _ := setupService(t)
	ctx := context.Background()

	messages, err := svc.ChooseTopic(ctx, 1, domain.TopicMermaid)
	if err != nil {
		t.Fatalf("ChooseTopic() error = %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("created records = %d; want 1", len(store.created))
	}
	sess := store.created[0]
	if sess.Topic != domain.TopicMermaid || sess.Length() != 2 {
		t.Errorf("session = %+v; want a two-challenge mermaid session", sess)
	}

	mode := modes.modes[1]
	if !mode.InTraining() || mode.Session.ID != sess.ID {
		t.Error("mode slot should hold the new session")
	}

	if len(messages) != 2 {
		t.Errorf("message count = %d; want opening plus first prompt", len(messages))
	}
}

func TestService_ChooseTopic_SecondPickRejected(t *testing.T) {
	svc, modes, store, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicTables); err != nil {
		t.Fatal(err)
	}
	first := modes.modes[1].Session.ID

	messages, err := svc.ChooseTopic(ctx, 1, domain.TopicMermaid)
	if err != nil {
		t.Fatalf("ChooseTopic() error = %v", err)
	}

	if !strings.Contains(messages[0].Text, "כבר באמצע אימון") {
		t.Errorf("reply = %q; want conflict message", messages[0].Text)
	}
	if len(store.created) != 1 {
		t.Errorf("created records = %d; the second pick must not create a session", len(store.created))
	}
	if modes.modes[1].Session.ID != first {
		t.Error("the existing session must be left untouched")
	}
}

func TestService_ChooseTopic_UnknownTopic(t *testing.T) {
	svc, modes, _, _ := setupService(t)

	messages, err := svc.ChooseTopic(context.Background(), 1, domain.Topic("nope"))
	if err != nil {
		t.Fatalf("ChooseTopic() error = %v", err)
	}
	if !strings.Contains(messages[0].Text, "אין כרגע אתגרים") {
		t.Errorf("reply = %q; want empty-topic message", messages[0].Text)
	}
	if modes.modes[1].InTraining() {
		t.Error("unknown topic must not put the user in training mode")
	}
}

func TestService_SubmitAnswer(t *testing.T) {
	svc, _, store, pub := setupService(t)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicMermaid); err != nil {
		t.Fatal(err)
	}

	messages, err := svc.SubmitAnswer(ctx, 1, "ok-1")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if len(messages) == 0 {
		t.Fatal("no messages returned")
	}

	if store.updates != 1 {
		t.Errorf("progress updates = %d; want 1", store.updates)
	}
	if len(store.outcomes) != 1 || !store.outcomes[0] {
		t.Errorf("topic outcomes = %v; want one correct", store.outcomes)
	}
	if len(pub.events) != 1 {
		t.Fatalf("published events = %d; want 1", len(pub.events))
	}
	event := pub.events[0]
	if event.ChallengeID != "mer_1" || !event.Correct || event.UserID != 1 {
		t.Errorf("event = %+v; want correct mer_1 for user 1", event)
	}
}

func TestService_SubmitAnswer_NotInTraining(t *testing.T) {
	svc, _, _, _ := setupService(t)

	_, err := svc.SubmitAnswer(context.Background(), 1, "ok-1")
	if err != domain.ErrSessionNotFound {
		t.Errorf("SubmitAnswer() error = %v; want ErrSessionNotFound", err)
	}
}

func TestService_SubmitAnswer_CompletionClearsMode(t *testing.T) {
	svc, modes, store, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicMermaid); err != nil {
		t.Fatal(err)
	}
	sessID := modes.modes[1].Session.ID

	if _, err := svc.SubmitAnswer(ctx, 1, "ok-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitAnswer(ctx, 1, "ok-2"); err != nil {
		t.Fatal(err)
	}

	if modes.modes[1].InTraining() {
		t.Error("mode slot should be cleared after completion")
	}
	if store.finalized[sessID] != StatusCompleted {
		t.Errorf("finalized status = %q; want completed", store.finalized[sessID])
	}
}

func TestService_SubmitAnswer_PublishFailureIsSwallowed(t *testing.T) {
	svc, _, _, pub := setupService(t)
	pub.err = context.DeadlineExceeded
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicMermaid); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SubmitAnswer(ctx, 1, "ok-1"); err != nil {
		t.Errorf("SubmitAnswer() error = %v; analytics failure must not surface", err)
	}
}

func TestService_SubmitAnswer_StaleSessionAborted(t *testing.T) {
	svc, modes, store, _ := setupService(t)
	ctx := context.Background()

	// A persisted session referencing catalog content that no longer
	// exists.
	sess := NewSession(1, domain.TopicTables, []string{"gone_1"})
	modes.modes[1] = TrainingMode(sess)

	messages, err := svc.SubmitAnswer(ctx, 1, "anything")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}

	if !strings.Contains(messages[0].Text, "משהו השתבש") {
		t.Errorf("reply = %q; want apology", messages[0].Text)
	}
	if modes.modes[1].InTraining() {
		t.Error("stale session should clear the mode slot")
	}
	if store.finalized[sess.ID] != StatusCancelled {
		t.Errorf("finalized status = %q; want cancelled", store.finalized[sess.ID])
	}
}

func TestService_HintAndSkip_NoSession(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	// Stale button presses after a session ended get a neutral reply, not
	// an error.
	for _, call := range []func() ([]Message, error){
		func() ([]Message, error) { return svc.Hint(ctx, 1) },
		func() ([]Message, error) { return svc.Skip(ctx, 1) },
	} {
		messages, err := call()
		if err != nil {
			t.Fatalf("error = %v; want nil", err)
		}
		if !strings.Contains(messages[0].Text, "אין אימון פעיל") {
			t.Errorf("reply = %q; want neutral no-session message", messages[0].Text)
		}
	}
}

func TestService_Skip_Persists(t *testing.T) {
	svc, _, store, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicTables); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Skip(ctx, 1); err != nil {
		t.Fatal(err)
	}

	if store.updates != 1 {
		t.Errorf("progress updates = %d; want 1", store.updates)
	}
}

func TestService_Cancel(t *testing.T) {
	svc, modes, store, _ := setupService(t)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicTables); err != nil {
		t.Fatal(err)
	}
	sessID := modes.modes[1].Session.ID

	messages, err := svc.Cancel(ctx, 1)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	if !strings.Contains(messages[0].Text, "בוטל") {
		t.Errorf("reply = %q; want cancellation notice", messages[0].Text)
	}
	if modes.modes[1].InTraining() {
		t.Error("mode slot should be cleared after cancel")
	}
	if store.finalized[sessID] != StatusCancelled {
		t.Errorf("finalized status = %q; want cancelled", store.finalized[sessID])
	}
}

func TestService_Cancel_NoSession(t *testing.T) {
	svc, _, _, _ := setupService(t)

	messages, err := svc.Cancel(context.Background(), 1)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if !strings.Contains(messages[0].Text, "לא באימון") {
		t.Errorf("reply = %q; want not-in-training message", messages[0].Text)
	}
}

func TestService_InTraining(t *testing.T) {
	svc, _, _, _ := setupService(t)
	ctx := context.Background()

	got, err := svc.InTraining(ctx, 1)
	if err != nil || got {
		t.Errorf("InTraining() = %v, %v; want false, nil", got, err)
	}

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicTables); err != nil {
		t.Fatal(err)
	}

	got, err = svc.InTraining(ctx, 1)
	if err != nil || !got {
		t.Errorf("InTraining() = %v, %v; want true, nil", got, err)
	}
}

func TestService_NilAnalytics(t *testing.T) {
	modes := newFakeModeStore()
	store := newFakeSessionStore()
	svc := NewService(testBank(t), modes, store, nil, nil)
	ctx := context.Background()

	if _, err := svc.ChooseTopic(ctx, 1, domain.TopicMermaid); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SubmitAnswer(ctx, 1, "ok-1"); err != nil {
		t.Errorf("SubmitAnswer() error = %v; nil analytics must be allowed", err)
	}
}
