// Package element provides the passive UI-element abstraction the account
// editor works against, plus the in-memory tree the terminal host renders.
package element

import "strings"

// EventType names a user gesture delivered to an element.
type EventType string

const (
	Click    EventType = "click"
	FocusIn  EventType = "focusin"
	FocusOut EventType = "focusout"
	Submit   EventType = "submit"
	Change   EventType = "change"
)

// Visibility marker classes. HiddenClass hides an element but keeps its slot,
// NoneClass removes it from layout entirely.
const (
	HiddenClass = "hidden"
	NoneClass   = "none"
)

// Attributes with special meaning to the host.
const (
	AttrID       = "id"
	AttrReadonly = "readonly"
)

// Event is delivered to handlers registered with Listen.
type Event struct {
	Type   EventType
	Target Element
}

// Handler reacts to a dispatched event.
type Handler func(Event)

// ListenerID identifies a registered handler so it can be removed later.
type ListenerID uint64

// Element is the capability set the editor needs from the host.
type Element interface {
	Tag() string
	ID() string

	Value() string
	SetValue(v string)
	Text() string
	SetText(v string)

	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	AddClass(names ...string)
	RemoveClass(names ...string)
	HasClass(name string) bool
	Classes() []string

	Parent() Element
	Children() []Element
	AppendChild(child Element)
	RemoveChild(child Element)

	// Query returns the first descendant matching selector or nil.
	// Selectors are ".class", "#id" or a bare tag name.
	Query(selector string) Element
	QueryAll(selector string) []Element

	Listen(event EventType, fn Handler) ListenerID
	Unlisten(event EventType, id ListenerID) bool
	ListenerCount(event EventType) int
	Dispatch(event EventType)

	Clone(deep bool) Element
}

// Show removes the hidden marker, and with strict also the none marker.
func Show(el Element, strict bool) {
	if el == nil {
		return
	}
	el.RemoveClass(HiddenClass)
	if strict {
		el.RemoveClass(NoneClass)
	}
}

// Hide adds the hidden marker, and with strict also the none marker.
func Hide(el Element, strict bool) {
	if el == nil {
		return
	}
	el.AddClass(HiddenClass)
	if strict {
		el.AddClass(NoneClass)
	}
}

// Visible reports whether el and all of its ancestors are shown.
func Visible(el Element) bool {
	for cur := el; cur != nil; cur = cur.Parent() {
		if cur.HasClass(HiddenClass) || cur.HasClass(NoneClass) {
			return false
		}
	}
	return el != nil
}

// Mutable reports whether the element accepts typed input.
func Mutable(el Element) bool {
	if el == nil || el.Tag() != "input" {
		return false
	}
	_, ro := el.Attr(AttrReadonly)
	return !ro
}

func matches(el Element, selector string) bool {
	switch {
	case strings.HasPrefix(selector, "."):
		return el.HasClass(selector[1:])
	case strings.HasPrefix(selector, "#"):
		return el.ID() == selector[1:]
	default:
		return el.Tag() == selector
	}
}
