// Package dom provides a small element tree that stands in for the page the
// chat widget is mounted on.
package dom

import (
	"slices"
	"strconv"
	"strings"
)

// EventType names an event dispatched to an element
type EventType string

const (
	EventInput  EventType = "input"
	EventClick  EventType = "click"
	EventSubmit EventType = "submit"
)

// Event is delivered to listeners of an element
type Event struct {
	Type   EventType
	Target *Element

	defaultPrevented bool
}

// PreventDefault marks the event so the front end skips its default action.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener called PreventDefault.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// Listener handles an event
type Listener func(e *Event)

// Element is a node of the page
type Element struct {
	ID       string
	Tag      string
	Text     string
	Value    string
	Disabled bool

	// ScrollTop and ScrollHeight are measured in text lines.
	ScrollTop    int
	ScrollHeight int

	classes   []string
	children  []*Element
	listeners map[EventType][]Listener
}

// NewElement creates an element with the given tag and id
func NewElement(tag, id string) *Element {
	return &Element{Tag: tag, ID: id}
}

// AddClass adds class names, ignoring ones already present.
func (e *Element) AddClass(names ...string) {
	for _, n := range names {
		if n != "" && !e.HasClass(n) {
			e.classes = append(e.classes, n)
		}
	}
}

// HasClass reports whether the element carries class name
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

// Classes returns the element's classes in insertion order
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// AppendChild adds child as the last child and grows the scroll height.
func (e *Element) AppendChild(child *Element) {
	e.children = append(e.children, child)
	e.ScrollHeight += child.lineCount()
}

// Children returns the direct children in order
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// Clear removes every child and resets scrolling.
func (e *Element) Clear() {
	e.children = nil
	e.ScrollTop = 0
	e.ScrollHeight = 0
}

// ScrollToBottom moves the scroll position to its maximum.
func (e *Element) ScrollToBottom() {
	e.ScrollTop = e.ScrollHeight
}

// AtBottom reports whether the element is scrolled all the way down.
func (e *Element) AtBottom() bool {
	return e.ScrollTop >= e.ScrollHeight
}

// AddEventListener registers fn for events of type t
func (e *Element) AddEventListener(t EventType, fn Listener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]Listener)
	}
	e.listeners[t] = append(e.listeners[t], fn)
}

// Dispatch runs the listeners for t in registration order and returns the
// event so callers can inspect DefaultPrevented.
func (e *Element) Dispatch(t EventType) *Event {
	ev := &Event{Type: t, Target: e}
	for _, fn := range e.listeners[t] {
		fn(ev)
	}
	return ev
}

func (e *Element) lineCount() int {
	n := strings.Count(e.Text, "\n") + 1
	for _, c := range e.children {
		n += c.lineCount()
	}
	return n
}

// Outline writes a deterministic, indented description of the subtree.
func (e *Element) Outline() string {
	var sb strings.Builder
	e.outline(&sb, 0)
	return sb.String()
}

func (e *Element) outline(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("<")
	sb.WriteString(e.Tag)
	if e.ID != "" {
		sb.WriteString(` id="` + e.ID + `"`)
	}
	if len(e.classes) > 0 {
		sb.WriteString(` class="` + strings.Join(e.classes, " ") + `"`)
	}
	if e.Disabled {
		sb.WriteString(" disabled")
	}
	if e.ScrollHeight > 0 {
		sb.WriteString(" scroll=")
		sb.WriteString(strconv.Itoa(e.ScrollTop))
		sb.WriteString("/")
		sb.WriteString(strconv.Itoa(e.ScrollHeight))
	}
	sb.WriteString(">")
	if e.Text != "" {
		sb.WriteString(strings.ReplaceAll(e.Text, "\n", `\n`))
	}
	sb.WriteString("\n")
	for _, c := range e.children {
		c.outline(sb, depth+1)
	}
}
