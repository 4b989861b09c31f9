package account

import "acctdesk/internal/element"

type cached struct {
	field element.Element
	value string
}

// Snapshot holds the original values of a set of fields, in capture order.
type Snapshot []cached

// Capture records the current value of each field. It must run before any
// field becomes editable.
func Capture(fields []element.Element) Snapshot {
	snap := make(Snapshot, 0, len(fields))
	for _, f := range fields {
		if f == nil {
			continue
		}
		snap = append(snap, cached{field: f, value: f.Value()})
	}
	return snap
}

// Restore writes the captured values back in capture order.
func (s Snapshot) Restore() {
	for _, c := range s {
		c.field.SetValue(c.value)
	}
}

// Len returns the number of captured fields.
func (s Snapshot) Len() int { return len(s) }
