package account

import (
	"context"
	"errors"
	"net/http"

	"acctdesk/internal/element"
	"acctdesk/internal/logging"
	"acctdesk/internal/transport"
	"acctdesk/internal/validation"
)

const updatePath = "/accounts/update"

var (
	// ErrSessionActive is returned when an edit session is started twice.
	ErrSessionActive = errors.New("edit session already active")
	// ErrBusy is returned while a submission is outstanding.
	ErrBusy = errors.New("submission in progress")
)

// Phase is the position of a record in the edit state machine.
type Phase int

const (
	Viewing Phase = iota
	Editing
)

func (p Phase) String() string {
	if p == Editing {
		return "editing"
	}
	return "viewing"
}

// Outcome reports how an approve attempt ended.
type Outcome int

const (
	// OutcomeIgnored: there was no session to approve, or a submission was running.
	OutcomeIgnored Outcome = iota
	// OutcomeInvalid: local validation failed, nothing was sent.
	OutcomeInvalid
	// OutcomeNoPayload: the fields were valid but yielded nothing to send.
	OutcomeNoPayload
	// OutcomeSaved: the backend accepted the change.
	OutcomeSaved
	// OutcomeRejected: the backend refused or could not be reached; values were restored.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeNoPayload:
		return "no-payload"
	case OutcomeSaved:
		return "saved"
	case OutcomeRejected:
		return "rejected"
	default:
		return "ignored"
	}
}

// ChangeManager is the edit-session state machine of a single record.
type ChangeManager struct {
	base      element.Element
	id        int64
	details   *Details
	extractor *Extractor
	tr        transport.Transport
	log       logging.Logger

	phase     Phase
	busy      bool
	cache     Snapshot
	listeners validation.Listeners
}

func NewChangeManager(base element.Element, id int64, details *Details, extractor *Extractor, tr transport.Transport, log logging.Logger) *ChangeManager {
	return &ChangeManager{
		base:      base,
		id:        id,
		details:   details,
		extractor: extractor,
		tr:        tr,
		log:       log.With("account_id", id),
	}
}

func (m *ChangeManager) Phase() Phase { return m.phase }

// Busy reports whether a submission is outstanding.
func (m *ChangeManager) Busy() bool { return m.busy }

// ActiveValidators returns the number of fields with attached focus validators.
func (m *ChangeManager) ActiveValidators() int { return m.listeners.Count() }

// StartChange opens an edit session: the original values are cached first,
// then every input is made editable and gets focus validation.
func (m *ChangeManager) StartChange() error {
	if m.busy {
		return ErrBusy
	}
	if m.phase == Editing {
		return ErrSessionActive
	}
	inputs := Inputs(m.base)
	validation.RemoveAll(inputs)

	m.cache = Capture(inputs)

	m.details.SetRowRemoveButtons()
	for _, in := range inputs {
		in.AddClass(ItemChangeClass)
		in.RemoveAttr(element.AttrReadonly)
	}
	m.listeners.Attach(inputs, validation.Check, false)
	m.phase = Editing
	return nil
}

// StopChange closes the session and keeps the current values.
func (m *ChangeManager) StopChange() {
	if m.phase != Editing || m.busy {
		return
	}
	m.teardown(true)
}

// RollbackChange restores the cached values and closes the session.
func (m *ChangeManager) RollbackChange() {
	if m.phase != Editing || m.busy {
		return
	}
	m.cache.Restore()
	m.teardown(true)
}

// ApproveChange validates the fields and submits them. The session is closed
// whatever the result. Values are rolled back only when the backend rejects
// the change; on a local validation failure the edited values and their error
// labels stay in place.
func (m *ChangeManager) ApproveChange(ctx context.Context) Outcome {
	if m.phase != Editing || m.busy {
		return OutcomeIgnored
	}
	inputs := Inputs(m.base)
	m.listeners.Detach()
	validation.RemoveAll(inputs)

	if !validation.CheckAll(inputs) {
		m.teardown(false)
		return OutcomeInvalid
	}

	payload, ok := m.extractor.Extract()
	if !ok {
		m.teardown(true)
		return OutcomeNoPayload
	}
	payload.ID = m.id

	outcome := m.submit(ctx, payload)
	m.teardown(true)
	return outcome
}

func (m *ChangeManager) submit(ctx context.Context, payload Payload) Outcome {
	m.busy = true
	resp, err := m.tr.Send(ctx, http.MethodPatch, updatePath, payload)
	m.busy = false

	if err := transport.Check(resp, err); err != nil {
		m.log.Warn(ctx, "update rejected, restoring values", "err", err)
		m.cache.Restore()
		return OutcomeRejected
	}
	m.log.Info(ctx, "account updated", "fields", len(payload.Data))
	return OutcomeSaved
}

func (m *ChangeManager) teardown(clearErrors bool) {
	inputs := Inputs(m.base)

	m.details.UnsetRowRemoveButtons()
	for _, in := range inputs {
		in.RemoveClass(ItemChangeClass)
		in.SetAttr(element.AttrReadonly, "")
	}
	m.listeners.Detach()
	if clearErrors {
		validation.RemoveAll(inputs)
	}
	m.cache = nil
	m.phase = Viewing
}
