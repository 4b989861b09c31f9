package element

import "slices"

type listener struct {
	id ListenerID
	fn Handler
}

// Node is the in-memory Element implementation. The terminal host renders a
// tree of Nodes and tests build the same trees directly.
type Node struct {
	tag       string
	value     string
	text      string
	attrs     map[string]string
	classes   []string
	parent    *Node
	children  []*Node
	listeners map[EventType][]listener
	nextID    ListenerID
}

var _ Element = (*Node)(nil)

// New creates a detached node with the given tag and classes.
func New(tag string, classes ...string) *Node {
	n := &Node{tag: tag, attrs: map[string]string{}}
	n.AddClass(classes...)
	return n
}

// Build is a convenience for assembling trees: it appends children and returns n.
func (n *Node) Build(children ...*Node) *Node {
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

// WithAttr sets an attribute and returns n.
func (n *Node) WithAttr(name, value string) *Node {
	n.SetAttr(name, value)
	return n
}

// WithValue sets the value and returns n.
func (n *Node) WithValue(v string) *Node {
	n.value = v
	return n
}

// WithText sets the text content and returns n.
func (n *Node) WithText(v string) *Node {
	n.text = v
	return n
}

func (n *Node) Tag() string { return n.tag }

func (n *Node) ID() string { return n.attrs[AttrID] }

func (n *Node) Value() string { return n.value }

func (n *Node) SetValue(v string) { n.value = v }

func (n *Node) Text() string { return n.text }

func (n *Node) SetText(v string) { n.text = v }

func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

func (n *Node) SetAttr(name, value string) { n.attrs[name] = value }

func (n *Node) RemoveAttr(name string) { delete(n.attrs, name) }

func (n *Node) AddClass(names ...string) {
	for _, name := range names {
		if name != "" && !slices.Contains(n.classes, name) {
			n.classes = append(n.classes, name)
		}
	}
}

func (n *Node) RemoveClass(names ...string) {
	n.classes = slices.DeleteFunc(n.classes, func(c string) bool {
		return slices.Contains(names, c)
	})
}

func (n *Node) HasClass(name string) bool { return slices.Contains(n.classes, name) }

func (n *Node) Classes() []string { return slices.Clone(n.classes) }

func (n *Node) Parent() Element {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) Children() []Element {
	out := make([]Element, 0, len(n.children))
	for _, c := range n.children {
		out = append(out, c)
	}
	return out
}

// AppendChild moves child under n. Elements from other implementations are ignored.
func (n *Node) AppendChild(child Element) {
	c, ok := child.(*Node)
	if !ok || c == nil {
		return
	}
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
}

func (n *Node) RemoveChild(child Element) {
	c, ok := child.(*Node)
	if !ok || c == nil {
		return
	}
	idx := slices.Index(n.children, c)
	if idx < 0 {
		return
	}
	n.children = slices.Delete(n.children, idx, idx+1)
	c.parent = nil
}

func (n *Node) Query(selector string) Element {
	var found *Node
	n.walk(func(c *Node) bool {
		if matches(c, selector) {
			found = c
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return found
}

func (n *Node) QueryAll(selector string) []Element {
	var out []Element
	n.walk(func(c *Node) bool {
		if matches(c, selector) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// walk visits descendants depth-first in document order until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	for _, c := range n.children {
		if !fn(c) {
			return false
		}
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) Listen(event EventType, fn Handler) ListenerID {
	if n.listeners == nil {
		n.listeners = map[EventType][]listener{}
	}
	n.nextID++
	n.listeners[event] = append(n.listeners[event], listener{id: n.nextID, fn: fn})
	return n.nextID
}

func (n *Node) Unlisten(event EventType, id ListenerID) bool {
	list := n.listeners[event]
	for i, l := range list {
		if l.id == id {
			n.listeners[event] = slices.Delete(list, i, i+1)
			return true
		}
	}
	return false
}

func (n *Node) ListenerCount(event EventType) int { return len(n.listeners[event]) }

// Dispatch fires event with n as target and bubbles it up the ancestor chain.
func (n *Node) Dispatch(event EventType) {
	ev := Event{Type: event, Target: n}
	for cur := n; cur != nil; cur = cur.parent {
		for _, l := range slices.Clone(cur.listeners[event]) {
			l.fn(ev)
		}
	}
}

// Clone copies tag, value, text, attributes and classes. Listeners are never
// copied; with deep the subtree is copied too.
func (n *Node) Clone(deep bool) Element {
	return n.clone(deep)
}

func (n *Node) clone(deep bool) *Node {
	c := &Node{
		tag:     n.tag,
		value:   n.value,
		text:    n.text,
		attrs:   make(map[string]string, len(n.attrs)),
		classes: slices.Clone(n.classes),
	}
	for k, v := range n.attrs {
		c.attrs[k] = v
	}
	if deep {
		for _, child := range n.children {
			c.AppendChild(child.clone(true))
		}
	}
	return c
}
