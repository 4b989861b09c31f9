package account

import (
	"context"
	"errors"

	"acctdesk/internal/element"
	"acctdesk/internal/logging"
)

// ExportBinder attaches export gestures to a record's export buttons.
type ExportBinder interface {
	BindButtons(ctx context.Context, txt, json, csv element.Element)
}

// Editor ties one record's markup, edit session, buttons and delete/export
// collaborators together. Every transition updates the session and the
// buttons in the same call.
type Editor struct {
	id       int64
	base     element.Element
	buttons  *Buttons
	changer  *ChangeManager
	remover  *Remover
	exporter ExportBinder
	log      logging.Logger

	change   element.Element
	save     element.Element
	rollback element.Element
	del      element.Element
	exports  [3]element.Element

	deleted bool
}

func (e *Editor) ID() int64 { return e.id }

func (e *Editor) Phase() Phase { return e.changer.Phase() }

// Deleted reports whether the record was removed by a successful delete.
func (e *Editor) Deleted() bool { return e.deleted }

// Busy reports whether a submission is outstanding.
func (e *Editor) Busy() bool { return e.changer.Busy() }

// ActiveValidators returns the number of fields with focus validation attached.
func (e *Editor) ActiveValidators() int { return e.changer.ActiveValidators() }

// Init binds the click gestures and puts the buttons in the viewing layout.
func (e *Editor) Init(ctx context.Context) {
	e.listen(e.change, func() {
		if err := e.StartChange(); err != nil {
			e.log.Debug(ctx, "start change ignored", "err", err)
		}
	})
	e.listen(e.save, func() { e.ApproveChange(ctx) })
	e.listen(e.rollback, e.RollbackChange)
	e.listen(e.del, func() {
		if err := e.Delete(ctx); err != nil && !errors.Is(err, ErrDeleteFailed) {
			e.log.Error(ctx, "delete", "err", err)
		}
	})
	if e.exporter != nil {
		e.exporter.BindButtons(ctx, e.exports[0], e.exports[1], e.exports[2])
	}
	e.buttons.ShowOnStopChange()
}

func (e *Editor) StartChange() error {
	if err := e.changer.StartChange(); err != nil {
		return err
	}
	e.base.AddClass(EditClass)
	e.buttons.ShowOnStartChange()
	return nil
}

func (e *Editor) ApproveChange(ctx context.Context) Outcome {
	outcome := e.changer.ApproveChange(ctx)
	if outcome == OutcomeIgnored {
		return outcome
	}
	e.showViewing()
	return outcome
}

func (e *Editor) RollbackChange() {
	if e.changer.Phase() != Editing || e.changer.Busy() {
		return
	}
	e.changer.RollbackChange()
	e.showViewing()
}

// StopChange closes the session keeping the current values.
func (e *Editor) StopChange() {
	if e.changer.Phase() != Editing || e.changer.Busy() {
		return
	}
	e.changer.StopChange()
	e.showViewing()
}

func (e *Editor) showViewing() {
	e.base.RemoveClass(EditClass)
	e.buttons.ShowOnStopChange()
}

// Delete removes the record regardless of the edit phase. A running session
// is discarded only once the backend confirmed the delete.
func (e *Editor) Delete(ctx context.Context) error {
	if err := e.remover.Delete(ctx, e.buttons.HideRecord); err != nil {
		return err
	}
	e.deleted = true
	e.changer.StopChange()
	e.showViewing()
	return nil
}

func (e *Editor) listen(button element.Element, fn func()) {
	if button == nil {
		return
	}
	button.Listen(element.Click, func(element.Event) { fn() })
}
