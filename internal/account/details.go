package account

import (
	"strconv"

	"acctdesk/internal/element"
)

type rowButton struct {
	button   element.Element
	listener element.ListenerID
}

// Details manages the variable-length list of key/value rows of one record.
// Rows added or removed here are not part of an edit session's rollback.
type Details struct {
	container element.Element
	template  element.Element

	buttons map[string]rowButton
	counter int
}

// NewDetails binds the rows under container. template is cloned for new rows
// and may be nil when rows cannot be added.
func NewDetails(container, template element.Element) *Details {
	return &Details{
		container: container,
		template:  template,
		buttons:   map[string]rowButton{},
	}
}

// BindRowAddButton makes button append a new row on click.
func (d *Details) BindRowAddButton(button element.Element) {
	if button == nil {
		return
	}
	button.Listen(element.Click, func(element.Event) { d.AddRow() })
}

// Rows returns the current rows in order.
func (d *Details) Rows() []element.Element {
	if d.container == nil {
		return nil
	}
	return d.container.QueryAll("." + DetailsContentClass)
}

// Reset drops every row and leaves a single empty one.
func (d *Details) Reset() {
	if d.container == nil {
		return
	}
	for _, child := range d.container.Children() {
		d.container.RemoveChild(child)
	}
	d.resetButtons()
	d.AddRow()
}

// SetRowRemoveButtons gives every row a remove button.
func (d *Details) SetRowRemoveButtons() {
	for _, row := range d.Rows() {
		d.addRemoveButton(row)
	}
}

// UnsetRowRemoveButtons takes the remove buttons off every row.
func (d *Details) UnsetRowRemoveButtons() {
	for _, row := range d.Rows() {
		button := query(row, RemoveRowClass)
		if button == nil {
			continue
		}
		d.unlistenButton(button)
		row.RemoveChild(button)
	}
	d.resetButtons()
}

// AddRow appends an editable copy of the row template.
func (d *Details) AddRow() element.Element {
	if d.container == nil || d.template == nil {
		return nil
	}
	row := d.template.Clone(true)
	for _, in := range Inputs(row) {
		in.RemoveAttr(element.AttrReadonly)
	}
	d.container.AppendChild(row)
	d.addRemoveButton(row)
	return row
}

// ActiveButtons returns the number of remove buttons with live listeners.
func (d *Details) ActiveButtons() int { return len(d.buttons) }

func (d *Details) addRemoveButton(row element.Element) {
	if query(row, RemoveRowClass) != nil {
		return
	}
	id := strconv.Itoa(d.counter)
	d.counter++

	button := element.New("button", RemoveRowClass).WithAttr(element.AttrID, id).WithText("x")
	row.AppendChild(button)
	listener := button.Listen(element.Click, func(element.Event) {
		d.unlistenButton(button)
		d.container.RemoveChild(row)
	})
	d.buttons[id] = rowButton{button: button, listener: listener}
}

func (d *Details) unlistenButton(button element.Element) {
	rb, ok := d.buttons[button.ID()]
	if !ok {
		return
	}
	rb.button.Unlisten(element.Click, rb.listener)
	delete(d.buttons, button.ID())
}

func (d *Details) resetButtons() {
	d.buttons = map[string]rowButton{}
	d.counter = 0
}
