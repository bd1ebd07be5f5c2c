package dom

import (
	"strings"

	apierrors "github.com/diogo/echochat/internal/errors"
)

// Element IDs of the chat page.
const (
	IDChatArea  = "chat-area"
	IDUserInput = "user-input"
	IDSendButt  = "send-butt"
	IDResetButt = "reset-butt"
	IDChatForm  = "chat-form"
)

// Document indexes elements by ID
type Document struct {
	byID  map[string]*Element
	order []*Element
}

// NewDocument creates an empty document
func NewDocument() *Document {
	return &Document{byID: make(map[string]*Element)}
}

// Add registers elements so they can be found by ID. An element with an
// existing ID replaces the previous one.
func (d *Document) Add(elems ...*Element) {
	for _, el := range elems {
		if el.ID == "" {
			continue
		}
		if _, exists := d.byID[el.ID]; !exists {
			d.order = append(d.order, el)
		} else {
			for i, old := range d.order {
				if old.ID == el.ID {
					d.order[i] = el
				}
			}
		}
		d.byID[el.ID] = el
	}
}

// Remove unregisters the element with id
func (d *Document) Remove(id string) {
	if _, ok := d.byID[id]; !ok {
		return
	}
	delete(d.byID, id)
	for i, el := range d.order {
		if el.ID == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// GetElementByID returns the element with id or nil
func (d *Document) GetElementByID(id string) *Element {
	return d.byID[id]
}

// Require checks that every id is present. It returns a ConfigError naming
// all missing ids.
func (d *Document) Require(ids ...string) error {
	var missing []string
	for _, id := range ids {
		if d.byID[id] == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return apierrors.NewConfigError(missing...)
	}
	return nil
}

// Outline describes every registered element in insertion order.
func (d *Document) Outline() string {
	var sb strings.Builder
	for _, el := range d.order {
		el.outline(&sb, 0)
	}
	return sb.String()
}

// NewChatPage builds the page the chat widget expects.
func NewChatPage() *Document {
	doc := NewDocument()

	form := NewElement("form", IDChatForm)
	input := NewElement("input", IDUserInput)
	send := NewElement("button", IDSendButt)
	send.Text = "Send"

	reset := NewElement("button", IDResetButt)
	reset.Text = "New Chat"

	doc.Add(
		NewElement("div", IDChatArea),
		form,
		input,
		send,
		reset,
	)
	return doc
}
