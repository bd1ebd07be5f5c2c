// Package widget implements the chat widget: it keeps the page elements in
// sync with the current chat and answers every user message with an echo.
package widget

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/echochat/internal/chat"
	"github.com/diogo/echochat/internal/dom"
	apierrors "github.com/diogo/echochat/internal/errors"
	"github.com/diogo/echochat/internal/schedule"
)

// RequiredElements lists the element IDs the widget cannot start without.
var RequiredElements = []string{
	dom.IDChatArea,
	dom.IDUserInput,
	dom.IDSendButt,
	dom.IDResetButt,
	dom.IDChatForm,
}

// Store loads and saves the current chat. Load reports an error only when
// the stored record could not be read; unusable content is simply absent.
type Store interface {
	chat.Persister
	Load() (chat.Chat, bool, error)
}

// Widget binds a chat session to a page
type Widget struct {
	doc     *dom.Document
	store   Store
	session *chat.Session

	scheduler  schedule.Scheduler
	replyDelay time.Duration
	logger     *slog.Logger

	chatArea  *dom.Element
	input     *dom.Element
	sendButt  *dom.Element
	resetButt *dom.Element
	form      *dom.Element

	initialized bool
	renders     int
	lastErr     error
}

// New checks that the page carries every required element and returns a
// widget bound to it. A missing element yields a *errors.ConfigError.
//
// WithScheduler is mandatory: echo replies must be delivered on the goroutine
// that drives the widget, and only the caller knows which one that is.
func New(doc *dom.Document, store Store, opts ...Option) (*Widget, error) {
	if doc == nil {
		return nil, apierrors.NewConfigError(RequiredElements...)
	}
	if err := doc.Require(RequiredElements...); err != nil {
		return nil, err
	}

	w := &Widget{
		doc:        doc,
		store:      store,
		replyDelay: DefaultReplyDelay,
		logger:     slog.Default(),
		chatArea:   doc.GetElementByID(dom.IDChatArea),
		input:      doc.GetElementByID(dom.IDUserInput),
		sendButt:   doc.GetElementByID(dom.IDSendButt),
		resetButt:  doc.GetElementByID(dom.IDResetButt),
		form:       doc.GetElementByID(dom.IDChatForm),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.scheduler == nil {
		return nil, apierrors.ErrNoScheduler
	}
	w.session = chat.NewSession(store, w.logger)
	return w, nil
}

// Init restores the persisted chat, or starts a new one, then wires the page
// events and evaluates the send gate.
func (w *Widget) Init() error {
	if w.initialized {
		return apierrors.ErrAlreadyInitialized
	}

	stored, ok, err := w.load()
	if err != nil {
		// keep whatever is on disk; starting fresh would overwrite it
		return fmt.Errorf("load chat: %w", err)
	}
	if ok {
		w.session.Adopt(stored)
		w.logger.Info("restored chat", slog.Int("messages", w.session.Len()))
		if err := w.Render(); err != nil {
			return err
		}
	} else {
		w.logger.Info("no stored chat, starting a new one")
		if err := w.CreateNewChat(); err != nil {
			return err
		}
	}

	w.input.AddEventListener(dom.EventInput, func(*dom.Event) {
		w.UpdateGate()
	})
	w.resetButt.AddEventListener(dom.EventClick, func(e *dom.Event) {
		e.PreventDefault()
		if err := w.CreateNewChat(); err != nil {
			w.fail("reset", err)
		}
	})
	w.form.AddEventListener(dom.EventSubmit, func(e *dom.Event) {
		e.PreventDefault()
		w.handleSubmit()
	})

	w.UpdateGate()
	w.initialized = true
	return nil
}

func (w *Widget) load() (chat.Chat, bool, error) {
	if w.store == nil {
		return chat.Chat{}, false, nil
	}
	return w.store.Load()
}

func (w *Widget) handleSubmit() {
	text := strings.TrimSpace(w.input.Value)
	if text == "" {
		return
	}
	w.SendMessage(chat.RoleUser, text)
	w.input.Value = ""
	w.UpdateGate()
	w.SimulateReply(text)
}

// SendMessage appends text as a message from role, persists and re-renders.
// Empty text is ignored; long text is cut to chat.MaxContentLength.
func (w *Widget) SendMessage(role chat.Role, text string) {
	appended, err := w.session.Append(role, text)
	if !appended {
		return
	}
	if err != nil {
		w.fail("save", err)
	}
	if err := w.Render(); err != nil {
		w.fail("render", err)
	}
}

// Render rebuilds the chat area from the current messages and scrolls it to
// the bottom.
func (w *Widget) Render() error {
	area := w.doc.GetElementByID(dom.IDChatArea)
	if area == nil {
		return apierrors.NewConfigError(dom.IDChatArea)
	}
	w.chatArea = area

	RenderMessages(area, w.session.Messages())
	w.renders++
	return nil
}

// RenderMessages replaces the children of area with one bubble per message.
func RenderMessages(area *dom.Element, messages []chat.Message) {
	area.Clear()
	for _, msg := range messages {
		bubble := dom.NewElement("div", "")
		bubble.AddClass("message")
		if msg.IsUser() {
			bubble.AddClass("user")
		} else {
			bubble.AddClass("echo")
		}
		bubble.Text = msg.Content
		area.AppendChild(bubble)
	}
	area.ScrollToBottom()
}

// CreateNewChat discards the current chat, persists and renders an empty one
// and clears the input field.
func (w *Widget) CreateNewChat() error {
	if err := w.session.Reset(); err != nil {
		w.fail("save", err)
	}
	if err := w.Render(); err != nil {
		return err
	}
	w.input.Value = ""
	w.UpdateGate()
	return nil
}

// UpdateGate enables the send button only when the input holds text.
func (w *Widget) UpdateGate() {
	w.sendButt.Disabled = strings.TrimSpace(w.input.Value) == ""
}

// Reply is a pending echo answer
type Reply struct {
	ID   uuid.UUID
	Text string

	task schedule.Task
}

// Cancel stops the reply if it has not been delivered yet.
func (r *Reply) Cancel() bool {
	if r == nil || r.task == nil {
		return false
	}
	return r.task.Stop()
}

// SimulateReply schedules the echo bot's answer to text. Replies are neither
// debounced nor cancelled by a reset.
func (w *Widget) SimulateReply(text string) *Reply {
	r := &Reply{ID: uuid.New(), Text: chat.EchoReply(text)}
	w.logger.Debug("echo scheduled", slog.String("reply_id", r.ID.String()), slog.Duration("delay", w.replyDelay))

	r.task = w.scheduler.AfterFunc(w.replyDelay, func() {
		w.logger.Debug("echo delivered", slog.String("reply_id", r.ID.String()))
		w.SendMessage(chat.RoleEcho, r.Text)
	})
	return r
}

// Input replaces the text field content and fires an input event.
func (w *Widget) Input(value string) {
	w.input.Value = value
	w.input.Dispatch(dom.EventInput)
}

// Submit fires a submit event on the form.
func (w *Widget) Submit() {
	w.form.Dispatch(dom.EventSubmit)
}

// Reset fires a click event on the reset button.
func (w *Widget) Reset() {
	w.resetButt.Dispatch(dom.EventClick)
}

// Messages returns a copy of the current chat's messages.
func (w *Widget) Messages() []chat.Message {
	return w.session.Messages()
}

// InputValue returns the text field content.
func (w *Widget) InputValue() string {
	return w.input.Value
}

// SendEnabled reports whether the send button is enabled.
func (w *Widget) SendEnabled() bool {
	return !w.sendButt.Disabled
}

// ChatArea returns the element messages are rendered into.
func (w *Widget) ChatArea() *dom.Element {
	return w.chatArea
}

// Renders counts completed renders so front ends can tell when to scroll.
func (w *Widget) Renders() int {
	return w.renders
}

// LastError returns the most recent error raised inside an event handler.
func (w *Widget) LastError() error {
	return w.lastErr
}

// ClearError forgets the last handler error.
func (w *Widget) ClearError() {
	w.lastErr = nil
}

func (w *Widget) fail(op string, err error) {
	w.lastErr = fmt.Errorf("%s: %w", op, err)
	w.logger.Error("chat widget error", slog.String("op", op), slog.String("error", err.Error()))
}
