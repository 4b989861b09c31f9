package account

import "acctdesk/internal/element"

// Buttons keeps the record's action controls in step with the edit phase.
// Missing controls are skipped.
type Buttons struct {
	container element.Element
	change    element.Element
	save      element.Element
	rollback  element.Element
	del       element.Element
	addRow    element.Element
	exports   []element.Element
}

func NewButtons(container, change, save, rollback, del, addRow element.Element, exports ...element.Element) *Buttons {
	return &Buttons{
		container: container,
		change:    change,
		save:      save,
		rollback:  rollback,
		del:       del,
		addRow:    addRow,
		exports:   exports,
	}
}

func (b *Buttons) editControls() []element.Element {
	return []element.Element{b.save, b.rollback, b.del, b.addRow}
}

func (b *Buttons) viewControls() []element.Element {
	return append([]element.Element{b.change}, b.exports...)
}

// ShowOnStartChange reveals the editing controls and hides change and export.
func (b *Buttons) ShowOnStartChange() {
	show(b.editControls())
	hide(b.viewControls())
}

// ShowOnStopChange is the inverse of ShowOnStartChange.
func (b *Buttons) ShowOnStopChange() {
	hide(b.editControls())
	show(b.viewControls())
}

// HideRecord removes the whole record from display.
func (b *Buttons) HideRecord() {
	if b.container == nil {
		return
	}
	element.Hide(b.container.Parent(), true)
}

func show(els []element.Element) {
	for _, el := range els {
		element.Show(el, true)
	}
}

func hide(els []element.Element) {
	for _, el := range els {
		element.Hide(el, true)
	}
}
