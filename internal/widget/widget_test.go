package widget

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/exp/golden"

	"github.com/diogo/echochat/internal/chat"
	"github.com/diogo/echochat/internal/dom"
	apierrors "github.com/diogo/echochat/internal/errors"
	"github.com/diogo/echochat/internal/schedule"
	"github.com/diogo/echochat/internal/storage"
)

type fixture struct {
	doc    *dom.Document
	kv     *storage.MemoryKV
	store  *storage.ChatStore
	clock  *schedule.Manual
	widget *Widget
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		doc:   dom.NewChatPage(),
		kv:    storage.NewMemoryKV(),
		clock: schedule.NewManual(),
	}
	f.store = storage.NewChatStore(f.kv, nil)
	return f
}

func (f *fixture) start(t *testing.T) *Widget {
	t.Helper()
	w, err := New(f.doc, f.store, WithScheduler(f.clock))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	f.widget = w
	return w
}

func (f *fixture) stored(t *testing.T) []chat.Message {
	t.Helper()
	c, ok, err := f.store.Load()
	if err != nil || !ok {
		t.Fatal("no stored chat")
	}
	return c.Messages
}

func TestNew_MissingElements(t *testing.T) {
	for _, id := range RequiredElements {
		t.Run(id, func(t *testing.T) {
			doc := dom.NewChatPage()
			doc.Remove(id)

			_, err := New(doc, nil)
			if !errors.Is(err, apierrors.ErrMissingElement) {
				t.Fatalf("expected missing element error, got %v", err)
			}
			if got := apierrors.MissingElements(err); !reflect.DeepEqual(got, []string{id}) {
				t.Errorf("MissingElements() = %v, want [%s]", got, id)
			}
		})
	}
}

func TestNew_NilDocument(t *testing.T) {
	_, err := New(nil, nil)
	if got := apierrors.MissingElements(err); len(got) != len(RequiredElements) {
		t.Errorf("expected every element reported missing, got %v", got)
	}
}

func TestInit_FreshStart(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	if len(w.Messages()) != 0 {
		t.Errorf("expected empty chat, got %+v", w.Messages())
	}
	raw, ok, _ := f.kv.Get(storage.ChatKey)
	if !ok || raw != `{"messages":[]}` {
		t.Errorf("fresh chat should be persisted, got %q (%v)", raw, ok)
	}
	if w.SendEnabled() {
		t.Error("send should start disabled")
	}
	if w.Renders() == 0 {
		t.Error("Init should render")
	}
}

func TestInit_RestoresStoredChat(t *testing.T) {
	f := newFixture(t)
	_ = f.kv.Set(storage.ChatKey, `{"messages":[{"role":"User","content":"a"},{"role":"Echo","content":"b"}]}`)

	w := f.start(t)

	want := []chat.Message{{Role: chat.RoleUser, Content: "a"}, {Role: chat.RoleEcho, Content: "b"}}
	if !reflect.DeepEqual(w.Messages(), want) {
		t.Errorf("Messages() = %+v, want %+v", w.Messages(), want)
	}
	if got := len(w.ChatArea().Children()); got != 2 {
		t.Errorf("expected 2 rendered bubbles, got %d", got)
	}
}

func TestInit_CorruptStorageStartsFresh(t *testing.T) {
	for _, raw := range []string{"", "{broken", "null"} {
		f := newFixture(t)
		_ = f.kv.Set(storage.ChatKey, raw)

		w := f.start(t)
		if len(w.Messages()) != 0 {
			t.Errorf("%q: expected empty chat", raw)
		}
		if got, _, _ := f.kv.Get(storage.ChatKey); got != `{"messages":[]}` {
			t.Errorf("%q: storage should be replaced with a fresh chat, got %q", raw, got)
		}
	}
}

func TestNew_RequiresScheduler(t *testing.T) {
	store := storage.NewChatStore(storage.NewMemoryKV(), nil)

	if _, err := New(dom.NewChatPage(), store); !errors.Is(err, apierrors.ErrNoScheduler) {
		t.Errorf("New without scheduler = %v, want ErrNoScheduler", err)
	}
	if _, err := New(dom.NewChatPage(), store, WithScheduler(nil)); !errors.Is(err, apierrors.ErrNoScheduler) {
		t.Errorf("New with nil scheduler = %v, want ErrNoScheduler", err)
	}
}

// unreadableKV fails every read and records writes.
type unreadableKV struct {
	writes int
}

func (u *unreadableKV) Get(key string) (string, bool, error) {
	return "", false, apierrors.NewStorageError("get", key, errors.New("input/output error"))
}

func (u *unreadableKV) Set(string, string) error {
	u.writes++
	return nil
}

func (u *unreadableKV) Delete(string) error { return nil }

func TestInit_ReadFailureKeepsStoredChat(t *testing.T) {
	kv := &unreadableKV{}
	w, err := New(dom.NewChatPage(), storage.NewChatStore(kv, nil), WithScheduler(schedule.NewManual()))
	if err != nil {
		t.Fatal(err)
	}

	err = w.Init()
	if !apierrors.IsStorageError(err) {
		t.Fatalf("Init error = %v, want storage error", err)
	}
	if kv.writes != 0 {
		t.Errorf("Init wrote %d times over an unreadable record", kv.writes)
	}
}

// Real timers posted to a Loop deliver the echo on the goroutine running the
// loop, so the widget is only ever touched from this test's goroutine.
func TestTimerLoop_DeliversOnOwnerGoroutine(t *testing.T) {
	loop := schedule.NewLoop(4)
	timer := schedule.NewTimer(loop.Post)
	f := newFixture(t)

	w, err := New(f.doc, f.store, WithScheduler(timer), WithReplyDelay(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Init(); err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"one", "two", "three"} {
		w.Input(text)
		w.Submit()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		timer.Wait()
		cancel()
	}()
	if err := loop.Run(ctx); errors.Is(err, context.DeadlineExceeded) {
		t.Fatal("replies never arrived")
	}

	msgs := w.Messages()
	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %+v", msgs)
	}
	echoes := 0
	for _, m := range msgs {
		if m.Role == chat.RoleEcho {
			echoes++
		}
	}
	if echoes != 3 {
		t.Errorf("expected 3 echoes, got %d", echoes)
	}
	if len(f.stored(t)) != 6 {
		t.Error("every message should be persisted")
	}
}

func TestInit_Twice(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	if err := w.Init(); !errors.Is(err, apierrors.ErrAlreadyInitialized) {
		t.Errorf("second Init = %v", err)
	}
}

func TestSendMessage_Truncation(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	for _, l := range []int{0, 1, 499, 500, 501, 1200} {
		before := len(w.Messages())
		w.SendMessage(chat.RoleUser, strings.Repeat("q", l))
		msgs := w.Messages()

		if l == 0 {
			if len(msgs) != before {
				t.Errorf("L=0 should not add a message")
			}
			continue
		}
		want := min(l, chat.MaxContentLength)
		if got := len(msgs[len(msgs)-1].Content); got != want {
			t.Errorf("L=%d: stored length %d, want %d", l, got, want)
		}
	}

	if got := len(f.stored(t)); got != 5 {
		t.Errorf("expected 5 persisted messages, got %d", got)
	}
}

func TestEndToEnd_EchoReply(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	w.Input("hi")
	w.Submit()

	want := []chat.Message{{Role: chat.RoleUser, Content: "hi"}}
	if !reflect.DeepEqual(w.Messages(), want) {
		t.Fatalf("after submit: %+v", w.Messages())
	}
	if w.InputValue() != "" {
		t.Errorf("input should be cleared, got %q", w.InputValue())
	}

	f.clock.Advance(499 * time.Millisecond)
	if len(w.Messages()) != 1 {
		t.Fatal("echo arrived early")
	}

	f.clock.Advance(time.Millisecond)
	want = append(want, chat.Message{Role: chat.RoleEcho, Content: `You said: "hi"`})
	if !reflect.DeepEqual(w.Messages(), want) {
		t.Errorf("after delay: %+v, want %+v", w.Messages(), want)
	}
	if !reflect.DeepEqual(f.stored(t), want) {
		t.Errorf("stored chat = %+v", f.stored(t))
	}
}

func TestSubmit_TrimsAndIgnoresBlank(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	w.Input("   ")
	w.Submit()
	if len(w.Messages()) != 0 || f.clock.Pending() != 0 {
		t.Error("blank input should not send or schedule a reply")
	}

	w.Input("  padded  ")
	w.Submit()
	if got := w.Messages()[0].Content; got != "padded" {
		t.Errorf("content = %q, want trimmed", got)
	}

	f.clock.Advance(DefaultReplyDelay)
	if got := w.Messages()[1].Content; got != `You said: "padded"` {
		t.Errorf("echo = %q", got)
	}
}

func TestOverlappingReplies(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	w.Input("one")
	w.Submit()
	f.clock.Advance(100 * time.Millisecond)
	w.Input("two")
	w.Submit()

	f.clock.Advance(time.Second)

	var contents []string
	for _, m := range w.Messages() {
		contents = append(contents, m.Content)
	}
	want := []string{"one", "two", `You said: "one"`, `You said: "two"`}
	if !reflect.DeepEqual(contents, want) {
		t.Errorf("messages = %v, want %v", contents, want)
	}
}

func TestReply_Cancel(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	r := w.SimulateReply("x")
	if r.ID.String() == "" || r.Text != `You said: "x"` {
		t.Errorf("unexpected reply handle %+v", r)
	}
	if !r.Cancel() {
		t.Error("Cancel should succeed before delivery")
	}
	f.clock.Advance(time.Second)
	if len(w.Messages()) != 0 {
		t.Error("cancelled reply was delivered")
	}

	var nilReply *Reply
	if nilReply.Cancel() {
		t.Error("nil reply cannot be cancelled")
	}
}

func TestReplyDelayOption(t *testing.T) {
	f := newFixture(t)
	w, _ := New(f.doc, f.store, WithScheduler(f.clock), WithReplyDelay(2*time.Second), WithReplyDelay(-1))
	_ = w.Init()

	w.SimulateReply("late")
	f.clock.Advance(time.Second)
	if len(w.Messages()) != 0 {
		t.Fatal("reply arrived before the configured delay")
	}
	f.clock.Advance(time.Second)
	if len(w.Messages()) != 1 {
		t.Error("reply should arrive after the configured delay")
	}
}

func TestCreateNewChat(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	w.SendMessage(chat.RoleUser, "a")
	w.SendMessage(chat.RoleEcho, "b")
	w.Input("draft")

	w.Reset()

	if len(w.Messages()) != 0 {
		t.Errorf("messages should be empty, got %+v", w.Messages())
	}
	if w.InputValue() != "" {
		t.Errorf("input should be empty, got %q", w.InputValue())
	}
	if w.SendEnabled() {
		t.Error("send should be disabled after reset")
	}
	if len(w.ChatArea().Children()) != 0 {
		t.Error("chat area should be empty")
	}
	if len(f.stored(t)) != 0 {
		t.Error("stored chat should be empty")
	}

	// a second reset yields the same state
	w.Reset()
	if len(w.Messages()) != 0 || w.InputValue() != "" {
		t.Error("reset is not idempotent")
	}
}

func TestReset_PendingReplyStillLands(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	w.Input("before reset")
	w.Submit()
	w.Reset()
	f.clock.Advance(DefaultReplyDelay)

	msgs := w.Messages()
	if len(msgs) != 1 || msgs[0].Role != chat.RoleEcho {
		t.Errorf("pending echo should land in the new chat, got %+v", msgs)
	}
}

func TestGate(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	tests := []struct {
		input string
		want  bool
	}{
		{"", false},
		{" ", false},
		{"\t\n", false},
		{"a", true},
		{"  a  ", true},
	}
	for _, tt := range tests {
		w.Input(tt.input)
		if w.SendEnabled() != tt.want {
			t.Errorf("input %q: enabled = %v, want %v", tt.input, w.SendEnabled(), tt.want)
		}
	}

	w.Input("msg")
	w.Submit()
	if w.SendEnabled() {
		t.Error("send should be disabled after submit clears the input")
	}
}

func TestRender_ClassesOrderAndScroll(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	roles := []chat.Role{chat.RoleUser, chat.RoleEcho, "Bot", chat.RoleUser}
	for i, r := range roles {
		w.SendMessage(r, strings.Repeat("m", i+1))
	}

	children := w.ChatArea().Children()
	if len(children) != len(roles) {
		t.Fatalf("expected %d bubbles, got %d", len(roles), len(children))
	}
	wantClass := []string{"user", "echo", "echo", "user"}
	for i, c := range children {
		if !c.HasClass("message") || !c.HasClass(wantClass[i]) {
			t.Errorf("bubble %d classes = %v, want message %s", i, c.Classes(), wantClass[i])
		}
		if c.Text != strings.Repeat("m", i+1) {
			t.Errorf("bubble %d text = %q", i, c.Text)
		}
	}
	if !w.ChatArea().AtBottom() {
		t.Error("chat area should be scrolled to the bottom")
	}
}

func TestRender_MissingChatArea(t *testing.T) {
	f := newFixture(t)
	w := f.start(t)

	f.doc.Remove(dom.IDChatArea)
	if err := w.Render(); !errors.Is(err, apierrors.ErrMissingElement) {
		t.Errorf("Render() = %v, want missing element", err)
	}

	w.SendMessage(chat.RoleUser, "lost area")
	if !apierrors.IsConfigError(w.LastError()) {
		t.Errorf("LastError() = %v", w.LastError())
	}
	w.ClearError()
	if w.LastError() != nil {
		t.Error("ClearError should reset the error")
	}
}

type brokenStore struct{ err error }

func (b brokenStore) Save(chat.Chat) error            { return b.err }
func (b brokenStore) Load() (chat.Chat, bool, error) { return chat.Chat{}, false, nil }

func TestSaveFailureIsReported(t *testing.T) {
	boom := apierrors.NewStorageError("set", storage.ChatKey, errors.New("read-only"))
	w, err := New(dom.NewChatPage(), brokenStore{err: boom}, WithScheduler(schedule.NewManual()))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Init(); err != nil {
		t.Fatalf("Init should not fail on save errors: %v", err)
	}

	w.SendMessage(chat.RoleUser, "kept in memory")
	if len(w.Messages()) != 1 {
		t.Error("message should be kept in memory")
	}
	if !apierrors.IsStorageError(w.LastError()) {
		t.Errorf("LastError() = %v, want storage error", w.LastError())
	}
}

func TestRenderMessages_Golden(t *testing.T) {
	area := dom.NewElement("div", dom.IDChatArea)
	RenderMessages(area, []chat.Message{
		{Role: chat.RoleUser, Content: "hi"},
		{Role: chat.RoleEcho, Content: `You said: "hi"`},
		{Role: chat.RoleUser, Content: "two\nlines"},
	})

	golden.RequireEqual(t, []byte(area.Outline()))
}
