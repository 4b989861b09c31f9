package validation

import "acctdesk/internal/element"

// CheckFunc re-validates a field when it loses focus.
type CheckFunc func(field element.Element, canBeEmpty bool) Result

type attachment struct {
	field element.Element
	in    element.ListenerID
	out   element.ListenerID
}

// Listeners keeps track of the focus handlers attached to a set of fields so
// each pair is removed exactly once.
type Listeners struct {
	attached []attachment
}

// Attach registers a focusin handler that clears the field's error and a
// focusout handler that re-runs check. Fields already attached are skipped.
func (l *Listeners) Attach(fields []element.Element, check CheckFunc, canBeEmpty bool) {
	for _, f := range fields {
		if f == nil || l.has(f) {
			continue
		}
		field := f
		in := field.Listen(element.FocusIn, func(element.Event) {
			RemoveError(field)
		})
		out := field.Listen(element.FocusOut, func(element.Event) {
			check(field, canBeEmpty)
		})
		l.attached = append(l.attached, attachment{field: field, in: in, out: out})
	}
}

// Detach removes every handler registered through Attach.
func (l *Listeners) Detach() {
	for _, a := range l.attached {
		a.field.Unlisten(element.FocusIn, a.in)
		a.field.Unlisten(element.FocusOut, a.out)
	}
	l.attached = nil
}

// Count returns the number of fields with attached handlers.
func (l *Listeners) Count() int { return len(l.attached) }

func (l *Listeners) has(field element.Element) bool {
	for _, a := range l.attached {
		if a.field == field {
			return true
		}
	}
	return false
}
